package telegraph

import (
	"strings"

	"golang.org/x/net/html"
)

// EmptyPlaceholder is the text published when a document renders to nothing.
const EmptyPlaceholder = "(empty)"

// allowedTags are the elements Telegraph renders.
var allowedTags = map[string]bool{
	"a": true, "aside": true, "b": true, "blockquote": true, "br": true,
	"code": true, "em": true, "figcaption": true, "figure": true, "h3": true,
	"h4": true, "hr": true, "i": true, "iframe": true, "img": true, "li": true,
	"ol": true, "p": true, "pre": true, "s": true, "strong": true, "u": true,
	"ul": true, "video": true,
}

// headingMap folds the six HTML heading levels onto h3 and h4.
var headingMap = map[string]string{
	"h1": "h3",
	"h2": "h3",
	"h5": "h4",
	"h6": "h4",
}

var keptAttrs = []string{"href", "src"}

// voidTags never have content, so a start tag closes them right away.
var voidTags = map[string]bool{"br": true, "hr": true, "img": true}

// rawTextTags keep their content as plain text. Every other element that the
// HTML tokenizer would read as raw text (textarea, title, iframe and the like)
// is parsed as markup instead.
var rawTextTags = map[string]bool{"script": true, "style": true}

// normalizeTag applies the heading remap and reports whether the result is
// an allowed tag.
func normalizeTag(tag string) (string, bool) {
	if mapped, ok := headingMap[tag]; ok {
		tag = mapped
	}
	return tag, allowedTags[tag]
}

// treeBuilder assembles nodes from tokenizer events. Open elements live on
// the stack and are attached to their parent when they close.
type treeBuilder struct {
	root  []Node
	stack []Node
}

func (b *treeBuilder) target() *[]Node {
	if len(b.stack) == 0 {
		return &b.root
	}
	return &b.stack[len(b.stack)-1].Children
}

func (b *treeBuilder) open(tag string, attrs map[string]string) bool {
	tag, ok := normalizeTag(tag)
	if !ok {
		return false
	}
	b.stack = append(b.stack, Node{Tag: tag, Attrs: attrs})
	return true
}

func (b *treeBuilder) close(tag string) {
	if _, ok := normalizeTag(tag); !ok {
		return
	}
	b.pop()
}

func (b *treeBuilder) pop() {
	if len(b.stack) == 0 {
		return
	}
	finished := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if len(finished.Children) == 0 {
		finished.Children = nil
	}
	t := b.target()
	*t = append(*t, finished)
}

func (b *treeBuilder) text(data string) {
	if data == "" {
		return
	}
	t := b.target()
	*t = append(*t, TextNode(data))
}

func (b *treeBuilder) finish() []Node {
	for len(b.stack) > 0 {
		b.pop()
	}
	return b.root
}

// readAttrs keeps only href and src from the current tag.
func readAttrs(z *html.Tokenizer, hasAttr bool) map[string]string {
	var attrs map[string]string
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		for _, k := range keptAttrs {
			if string(key) == k {
				if attrs == nil {
					attrs = make(map[string]string)
				}
				attrs[k] = string(val)
			}
		}
	}
	return attrs
}

// ConvertHTML parses an HTML fragment into Telegraph nodes.
//
// Headings are remapped to h3/h4 and any other tag outside the allowed set is
// elided while its content stays in place. Unbalanced markup is tolerated: a
// close tag pops whatever element is open, and a close tag with nothing open
// is ignored.
func ConvertHTML(fragment string) []Node {
	b := &treeBuilder{}
	z := html.NewTokenizer(strings.NewReader(fragment))

	for {
		switch z.Next() {
		case html.ErrorToken:
			// strings.Reader only ever fails with io.EOF.
			return b.finish()
		case html.TextToken:
			b.text(string(z.Text()))
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if !rawTextTags[tag] {
				z.NextIsNotRawText()
			}
			if b.open(tag, readAttrs(z, hasAttr)) && voidTags[tag] {
				b.close(tag)
			}
		case html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if !rawTextTags[tag] {
				z.NextIsNotRawText()
			}
			if b.open(tag, readAttrs(z, hasAttr)) {
				b.close(tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			b.close(string(name))
		}
	}
}

// ConvertDocumentHTML flattens tables and converts fragment to nodes, falling
// back to a single placeholder paragraph when nothing renderable is left.
func ConvertDocumentHTML(fragment string) []Node {
	nodes := ConvertHTML(FlattenTables(fragment))
	if len(nodes) == 0 {
		return []Node{Element("p", TextNode(EmptyPlaceholder))}
	}
	return nodes
}
