// Package storage persists the local state of telepub: the Telegraph access
// token, the map of published pages and the docs fetch history.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenFile caches the Telegraph access token as plain text.
type TokenFile struct {
	Path string
}

// Load returns the cached token, or "" when the file is missing or blank.
func (f TokenFile) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes token to the file, creating its directory if needed.
func (f TokenFile) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Pages maps absolute source file paths to Telegraph page paths.
type Pages map[string]string

// PagesFile stores Pages as an indented JSON object.
type PagesFile struct {
	Path string
}

// Load reads the pages map. A missing file yields an empty map.
func (f PagesFile) Load() (Pages, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Pages{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pages file: %w", err)
	}

	pages := Pages{}
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse pages file %s: %w", f.Path, err)
	}
	if pages == nil {
		pages = Pages{}
	}
	return pages, nil
}

// Save rewrites the whole pages file.
func (f PagesFile) Save(pages Pages) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("failed to marshal pages: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("failed to create pages directory: %w", err)
	}
	if err := os.WriteFile(f.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write pages file: %w", err)
	}
	return nil
}
