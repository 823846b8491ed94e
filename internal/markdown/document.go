package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Document is a Markdown file split into its parts.
type Document struct {
	Path        string
	Title       string
	FrontMatter FrontMatter
	Body        string
}

// ParseDocument splits raw into front matter and body and derives the title.
// path is only used as the last title fallback.
func ParseDocument(path, raw string) *Document {
	meta, body := ExtractFrontMatter(raw)
	return &Document{
		Path:        path,
		Title:       DeriveTitle(meta, body, path),
		FrontMatter: meta,
		Body:        body,
	}
}

// ReadDocument loads and parses the Markdown file at path.
func ReadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseDocument(path, string(raw)), nil
}

// DeriveTitle picks the page title: the front matter title first, then the
// first level-one heading of the body, then the file name without extension.
func DeriveTitle(meta FrontMatter, body, path string) string {
	if title := strings.TrimSpace(cast.ToString(meta["title"])); title != "" {
		return title
	}
	if title := firstHeading(body); title != "" {
		return title
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// firstHeading returns the raw text of the first non-empty level-one heading.
// Lines inside code blocks are never headings.
func firstHeading(body string) string {
	source := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var title string
	ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok || heading.Level != 1 {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		lines := heading.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			sb.Write(line.Value(source))
		}
		if title = strings.TrimSpace(sb.String()); title != "" {
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	return title
}
