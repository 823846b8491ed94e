package markdown

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	t.Run("front matter wins over heading", func(t *testing.T) {
		doc := ParseDocument("/notes/file.md", "---\ntitle: Hello\n---\n# Other\n")
		assert.Equal(t, "Hello", doc.Title)
	})

	t.Run("front matter only", func(t *testing.T) {
		doc := ParseDocument("/notes/file.md", "---\ntitle: Hello\n---\n")
		assert.Equal(t, "Hello", doc.Title)
		assert.Equal(t, "", doc.Body)
	})

	t.Run("non string title", func(t *testing.T) {
		doc := ParseDocument("/notes/file.md", "---\ntitle: 2024\n---\n")
		assert.Equal(t, "2024", doc.Title)
	})

	t.Run("first level one heading", func(t *testing.T) {
		doc := ParseDocument("/notes/file.md", "intro\n## Sub\n# Main Title  \ntext\n# Second\n")
		assert.Equal(t, "Main Title", doc.Title)
	})

	t.Run("comment inside code block is not a heading", func(t *testing.T) {
		body := "Setup steps:\n\n```bash\n# install deps\nmake\n```\n\n# Real Title\n"
		assert.Equal(t, "Real Title", DeriveTitle(FrontMatter{}, body, "/n/note.md"))
	})

	t.Run("code block only falls back to file name", func(t *testing.T) {
		body := "```sh\n# install deps\n```\n\n    # indented code\n"
		assert.Equal(t, "note", DeriveTitle(FrontMatter{}, body, "/n/note.md"))
	})

	t.Run("bare hash line is not a heading with the next line", func(t *testing.T) {
		assert.Equal(t, "note", DeriveTitle(FrontMatter{}, "#\nparagraph\n", "/n/note.md"))
	})

	t.Run("empty heading is skipped", func(t *testing.T) {
		assert.Equal(t, "Later", DeriveTitle(FrontMatter{}, "#\n\n# Later\n", "/n/note.md"))
	})

	t.Run("file name fallback", func(t *testing.T) {
		doc := ParseDocument("/notes/my-note.md", "just text\n")
		assert.Equal(t, "my-note", doc.Title)
	})

	t.Run("empty title falls back", func(t *testing.T) {
		doc := ParseDocument("/notes/my-note.md", "---\ntitle: \"\"\n---\n# Heading\n")
		assert.Equal(t, "Heading", doc.Title)
	})
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	require.NoError(t, os.WriteFile(path, []byte("---\nauthor: me\n---\nHello\n"), 0644))

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "post", doc.Title)
	assert.Equal(t, "me", doc.FrontMatter["author"])
	assert.Equal(t, "Hello\n", doc.Body)

	_, err = ReadDocument(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}

func TestRendererToHTML(t *testing.T) {
	r := NewRenderer()

	html, err := r.ToHTML("")
	require.NoError(t, err)
	assert.Equal(t, "", html)

	html, err = r.ToHTML("line one\nline two\n")
	require.NoError(t, err)
	assert.Equal(t, "<p>line one<br />\nline two</p>\n", html)

	html, err = r.ToHTML("| a | b |\n|---|---|\n| c | d |\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>c</td>")
}
