package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown bodies to HTML.
//
// Tables are enabled so the Telegraph flattener can turn them into paragraphs,
// and soft line breaks are rendered as <br /> because Telegraph collapses
// plain newlines.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer returns a renderer configured for Telegraph output.
func NewRenderer() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
				html.WithUnsafe(),
			),
		),
	}
}

// ToHTML renders body as an HTML fragment.
func (r *Renderer) ToHTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
