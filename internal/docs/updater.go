package docs

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tesh254/telepub/internal/storage"
)

// Source is a documentation file to keep in sync.
type Source struct {
	// Name is the local file name inside the docs directory
	Name string `mapstructure:"name" json:"name"`
	// URL is where the file is downloaded from
	URL string `mapstructure:"url" json:"url"`
	// Description is shown in listings
	Description string `mapstructure:"description" json:"description"`
}

// DefaultSources returns the sources used when none are configured.
func DefaultSources() []Source {
	return []Source{
		{Name: "browser-use.md", URL: "https://docs.browser-use.com/llms-full.txt", Description: "Browser Use, LLM browser automation"},
		{Name: "ruff.md", URL: "https://docs.astral.sh/ruff/llms.txt", Description: "Ruff, Python linter/formatter"},
		{Name: "uv.md", URL: "https://docs.astral.sh/uv/llms.txt", Description: "uv, Python package manager"},
	}
}

// Result is the outcome of updating one source.
type Result struct {
	Source Source
	Size   int64
	Err    error
}

// Status describes what is on disk for a source.
type Status struct {
	Source Source `json:"source"`
	// Size is -1 when the file is missing
	Size int64 `json:"size"`
	// LastFetch is nil when the source was never fetched by telepub
	LastFetch *storage.SourceState `json:"last_fetch,omitempty"`
}

// Updater keeps the docs directory in sync with its sources.
type Updater struct {
	Dir     string
	Sources []Source
	fetcher *Fetcher
	// state is optional; without it fetches are not recorded
	state *storage.Storage
	out   io.Writer
	now   func() time.Time
}

// NewUpdater creates an updater writing progress lines to out.
func NewUpdater(dir string, sources []Source, fetcher *Fetcher, state *storage.Storage, out io.Writer) *Updater {
	if out == nil {
		out = io.Discard
	}
	return &Updater{
		Dir:     dir,
		Sources: sources,
		fetcher: fetcher,
		state:   state,
		out:     out,
		now:     time.Now,
	}
}

// UpdateAll downloads every source in order. A source that cannot be fetched
// is reported and skipped; errors writing to disk abort the run.
func (u *Updater) UpdateAll(ctx context.Context) ([]Result, error) {
	if err := os.MkdirAll(u.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create docs directory: %w", err)
	}

	results := make([]Result, 0, len(u.Sources))
	for _, src := range u.Sources {
		doc, err := u.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			u.printFailure(src, err)
			results = append(results, Result{Source: src, Err: err})
			continue
		}

		path := filepath.Join(u.Dir, src.Name)
		if err := os.WriteFile(path, doc.Data, 0644); err != nil {
			return results, fmt.Errorf("failed to write %s: %w", path, err)
		}

		unchanged, err := u.record(src, doc)
		if err != nil {
			return results, err
		}

		size := int64(len(doc.Data))
		u.printSuccess(src, size, doc.Converted, unchanged)
		results = append(results, Result{Source: src, Size: size})
	}
	return results, nil
}

// record stores the fetch and reports whether the content matches the
// previous fetch of the same source.
func (u *Updater) record(src Source, doc *Document) (bool, error) {
	if u.state == nil {
		return false, nil
	}
	checksum := fmt.Sprintf("%x", sha256.Sum256(doc.Data))
	prev, err := u.state.GetSource(src.Name)
	if err != nil {
		return false, err
	}

	err = u.state.PutSource(&storage.SourceState{
		Name:        src.Name,
		URL:         src.URL,
		Checksum:    checksum,
		Size:        int64(len(doc.Data)),
		ContentType: doc.ContentType,
		FetchedAt:   u.now().UTC(),
	})
	if err != nil {
		return false, err
	}
	return prev != nil && prev.URL == src.URL && prev.Checksum == checksum, nil
}

// Statuses reports the local state of every source.
func (u *Updater) Statuses() ([]Status, error) {
	fetches := map[string]*storage.SourceState{}
	if u.state != nil {
		states, err := u.state.ListSources()
		if err != nil {
			return nil, err
		}
		for _, st := range states {
			fetches[st.Name] = st
		}
	}

	statuses := make([]Status, 0, len(u.Sources))
	for _, src := range u.Sources {
		status := Status{Source: src, Size: -1}

		info, err := os.Stat(filepath.Join(u.Dir, src.Name))
		if err == nil {
			status.Size = info.Size()
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", src.Name, err)
		}

		status.LastFetch = fetches[src.Name]
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// List prints the local status of every source.
func (u *Updater) List() error {
	statuses, err := u.Statuses()
	if err != nil {
		return err
	}
	u.printStatuses(statuses)
	return nil
}
