package telegraph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderHTML writes nodes back as HTML so conversions can be compared with
// their input.
func renderHTML(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		if n.IsText() {
			sb.WriteString(n.Text)
			continue
		}
		sb.WriteString("<" + n.Tag)
		for _, k := range keptAttrs {
			if v, ok := n.Attrs[k]; ok {
				sb.WriteString(" " + k + `="` + v + `"`)
			}
		}
		sb.WriteString(">")
		if voidTags[n.Tag] {
			continue
		}
		sb.WriteString(renderHTML(n.Children))
		sb.WriteString("</" + n.Tag + ">")
	}
	return sb.String()
}

func TestConvertHTMLRoundTrip(t *testing.T) {
	fragments := []string{
		`<p>Hello <strong>world</strong></p>`,
		`<h3>Title</h3><p>text with <a href="https://telegra.ph">a link</a> and <code>code</code></p>`,
		`<blockquote><p>nested <em>quote <u>deep</u></em></p></blockquote>`,
		`<ol><li>one</li><li>two<ul><li>inner</li></ul></li></ol>`,
		`<figure><img src="/file/a.png"><figcaption>caption</figcaption></figure>`,
		`<pre><code>line 1
line 2</code></pre><hr><p>end</p>`,
	}
	for _, fragment := range fragments {
		assert.Equal(t, fragment, renderHTML(ConvertHTML(fragment)))
	}
}

func TestNodeJSON(t *testing.T) {
	nodes := []Node{
		Element("p", TextNode("a"), Node{Tag: "br"}),
		{Tag: "a", Attrs: map[string]string{"href": "https://example.com"}, Children: []Node{TextNode("x")}},
		TextNode("tail"),
	}

	data, err := json.Marshal(nodes)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"tag":"p","children":["a",{"tag":"br"}]},
		{"tag":"a","attrs":{"href":"https://example.com"},"children":["x"]},
		"tail"
	]`, string(data))

	var decoded []Node
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, nodes, decoded)

	assert.Error(t, json.Unmarshal([]byte(`[{"children":["x"]}]`), &decoded))
}
