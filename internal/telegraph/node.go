package telegraph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Node is an element of Telegraph page content. A Node with an empty Tag is a
// text leaf and serializes as a plain JSON string.
type Node struct {
	Text     string
	Tag      string
	Attrs    map[string]string
	Children []Node
}

// TextNode returns a text leaf.
func TextNode(text string) Node {
	return Node{Text: text}
}

// Element returns an element node with the given children.
func Element(tag string, children ...Node) Node {
	return Node{Tag: tag, Children: children}
}

// IsText reports whether n is a text leaf.
func (n Node) IsText() bool {
	return n.Tag == ""
}

type nodeElement struct {
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

// MarshalJSON encodes text leaves as strings and elements as
// {tag, attrs?, children?} objects.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsText() {
		return json.Marshal(n.Text)
	}
	return json.Marshal(nodeElement{Tag: n.Tag, Attrs: n.Attrs, Children: n.Children})
}

// UnmarshalJSON accepts both node shapes returned by the Telegraph API.
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*n = TextNode(text)
		return nil
	}

	var el nodeElement
	if err := json.Unmarshal(data, &el); err != nil {
		return err
	}
	if el.Tag == "" {
		return fmt.Errorf("telegraph node without tag: %s", data)
	}
	*n = Node{Tag: el.Tag, Attrs: el.Attrs, Children: el.Children}
	return nil
}
