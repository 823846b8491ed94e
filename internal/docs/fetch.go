// Package docs downloads documentation sources (llms.txt style files) into a
// local directory and reports on what is stored there.
package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htm "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// FetchConfig holds the HTTP settings used to download sources.
type FetchConfig struct {
	// UserAgent is the User-Agent header value sent with HTTP requests
	UserAgent string
	// Timeout bounds each download
	Timeout time.Duration
}

// DefaultFetchConfig returns the settings used when none are configured.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		UserAgent: "docs-updater/1.0",
		Timeout:   30 * time.Second,
	}
}

// Document is a downloaded source body.
type Document struct {
	Data        []byte
	ContentType string
	// Converted is set when an HTML page was turned into Markdown.
	Converted bool
}

// Fetcher downloads sources over HTTP.
type Fetcher struct {
	config FetchConfig
	client *http.Client
}

// NewFetcher creates a fetcher with the given settings. Zero fields take
// their value from DefaultFetchConfig.
func NewFetcher(config FetchConfig) *Fetcher {
	defaults := DefaultFetchConfig()
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	return &Fetcher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Fetch downloads url. Sources served as HTML are converted to Markdown so
// the stored file stays readable as text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	doc := &Document{Data: body, ContentType: resp.Header.Get("Content-Type")}
	if strings.Contains(doc.ContentType, "text/html") {
		markdown, err := htm.ConvertString(string(body))
		if err != nil {
			return nil, fmt.Errorf("failed to convert HTML to markdown: %w", err)
		}
		doc.Data = []byte(markdown)
		doc.Converted = true
	}
	return doc, nil
}
