// Package markdown turns Markdown source files into HTML ready for the
// Telegraph converter.
//
// It extracts the optional front matter block, derives the page title and
// renders the remaining body with goldmark.
package markdown

import (
	"regexp"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	yamlFrontMatter = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n`)
	tomlFrontMatter = regexp.MustCompile(`(?s)\A\+\+\+\s*\n(.*?)\n\+\+\+\s*\n`)
)

// FrontMatter holds the metadata found at the top of a Markdown file.
type FrontMatter map[string]any

// ExtractFrontMatter splits text into its front matter and body.
//
// A leading block delimited by "---" lines is decoded as YAML, one delimited
// by "+++" lines as TOML. A block that fails to decode still gets stripped from
// the body but yields empty metadata. Without a block, the text is returned
// unchanged.
func ExtractFrontMatter(text string) (FrontMatter, string) {
	if m := yamlFrontMatter.FindStringSubmatchIndex(text); m != nil {
		meta := FrontMatter{}
		if err := yaml.Unmarshal([]byte(text[m[2]:m[3]]), &meta); err != nil || meta == nil {
			meta = FrontMatter{}
		}
		return meta, text[m[1]:]
	}

	if m := tomlFrontMatter.FindStringSubmatchIndex(text); m != nil {
		meta := FrontMatter{}
		if err := toml.Unmarshal([]byte(text[m[2]:m[3]]), &meta); err != nil || meta == nil {
			meta = FrontMatter{}
		}
		return meta, text[m[1]:]
	}

	return FrontMatter{}, text
}
