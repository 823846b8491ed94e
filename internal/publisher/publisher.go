// Package publisher publishes Markdown files as Telegraph pages and keeps
// track of which file became which page.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tesh254/telepub/internal/markdown"
	"github.com/tesh254/telepub/internal/storage"
	"github.com/tesh254/telepub/internal/telegraph"
)

var (
	// ErrMissingFile is returned when the file to publish does not exist.
	ErrMissingFile = errors.New("file not found")
	// ErrNotMarkdown is returned for files without a .md extension.
	ErrNotMarkdown = errors.New("expected .md file")
	// ErrNotPublished is returned by Lookup for files missing from the pages map.
	ErrNotPublished = errors.New("file has not been published")
)

// State is what a publish run reads from disk and mutates: the access token
// and the pages map.
type State struct {
	Token string
	Pages storage.Pages
}

// Result describes a published page.
type Result struct {
	Title   string
	Path    string
	URL     string
	Updated bool
}

// Publisher turns Markdown files into Telegraph pages.
type Publisher struct {
	client   *telegraph.Client
	account  telegraph.Account
	tokens   storage.TokenFile
	pages    storage.PagesFile
	renderer *markdown.Renderer
}

// New creates a publisher.
func New(client *telegraph.Client, account telegraph.Account, tokens storage.TokenFile, pages storage.PagesFile) *Publisher {
	return &Publisher{
		client:   client,
		account:  account,
		tokens:   tokens,
		pages:    pages,
		renderer: markdown.NewRenderer(),
	}
}

// LoadState returns the token and pages map for a run. A non-empty token is
// used as is; otherwise the cached token is read and an account is created
// only when no token was cached yet.
func (p *Publisher) LoadState(ctx context.Context, token string) (*State, error) {
	if token == "" {
		cached, err := p.tokens.Load()
		if err != nil {
			return nil, err
		}
		token = cached
	}

	if token == "" {
		created, err := p.client.CreateAccount(ctx, p.account)
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		if err := p.tokens.Save(created); err != nil {
			return nil, err
		}
		token = created
	}

	pages, err := p.pages.Load()
	if err != nil {
		return nil, err
	}

	return &State{Token: token, Pages: pages}, nil
}

// ValidatePath checks that path names an existing Markdown file.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w, got directory: %s", ErrNotMarkdown, path)
	}
	if ext := filepath.Ext(path); strings.ToLower(ext) != ".md" {
		return fmt.Errorf("%w, got: %q", ErrNotMarkdown, ext)
	}
	return nil
}

// ResolvePath returns the key under which path is stored in the pages map:
// its absolute form with symlinks evaluated when possible.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// Build reads the Markdown file at path and returns its title and content.
func (p *Publisher) Build(path string) (string, []telegraph.Node, error) {
	doc, err := markdown.ReadDocument(path)
	if err != nil {
		return "", nil, err
	}

	html, err := p.renderer.ToHTML(doc.Body)
	if err != nil {
		return "", nil, err
	}

	return doc.Title, telegraph.ConvertDocumentHTML(html), nil
}

// Publish creates the page for path, or updates it when state already maps
// the file to a page. New pages are recorded in state and saved right away.
func (p *Publisher) Publish(ctx context.Context, state *State, path string) (*Result, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	key, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	title, content, err := p.Build(key)
	if err != nil {
		return nil, err
	}

	input := telegraph.PageInput{
		Title:      title,
		Content:    content,
		AuthorName: p.account.AuthorName,
		AuthorURL:  p.account.AuthorURL,
	}

	if pagePath, ok := state.Pages[key]; ok {
		page, err := p.client.EditPage(ctx, state.Token, pagePath, input)
		if err != nil {
			return nil, fmt.Errorf("failed to update page %s: %w", pagePath, err)
		}
		return &Result{Title: title, Path: pagePath, URL: page.URL, Updated: true}, nil
	}

	page, err := p.client.CreatePage(ctx, state.Token, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if state.Pages == nil {
		state.Pages = storage.Pages{}
	}
	state.Pages[key] = page.Path
	if err := p.pages.Save(state.Pages); err != nil {
		return nil, err
	}

	return &Result{Title: title, Path: page.Path, URL: page.URL}, nil
}

// Lookup returns the live Telegraph page that path was published as.
func (p *Publisher) Lookup(ctx context.Context, state *State, path string) (*telegraph.Page, error) {
	key, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	pagePath, ok := state.Pages[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotPublished, path)
	}
	page, err := p.client.GetPage(ctx, pagePath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", pagePath, err)
	}
	return page, nil
}
