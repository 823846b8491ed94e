// Package telegraph talks to the Telegraph publishing API and converts HTML
// into the Node format Telegraph pages are made of.
package telegraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public Telegraph API endpoint.
const DefaultBaseURL = "https://api.telegra.ph"

// APIError is returned when Telegraph answers with ok=false.
type APIError struct {
	Method  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegraph %s: %s", e.Method, e.Message)
}

// Account identifies the author of published pages.
type Account struct {
	ShortName  string `json:"short_name"`
	AuthorName string `json:"author_name,omitempty"`
	AuthorURL  string `json:"author_url,omitempty"`
}

// Page is the page object returned by createPage, editPage and getPage.
type Page struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorURL   string `json:"author_url,omitempty"`
	Content     []Node `json:"content,omitempty"`
	Views       int    `json:"views"`
}

// PageInput holds the fields sent when creating or editing a page.
type PageInput struct {
	Title      string
	Content    []Node
	AuthorName string
	AuthorURL  string
}

// Client is a minimal Telegraph API client.
type Client struct {
	// BaseURL can be overridden in tests to target a fake server.
	BaseURL string
	// Verbose logs every API call.
	Verbose bool
	client  *http.Client
}

// NewClient creates a client whose calls are bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// call posts params to method and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal %s params: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if c.Verbose {
		log.Printf("[INFO] telegraph %s | Status: %d | Duration: %v", method, resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code from %s: %d, body: %s", method, resp.StatusCode, string(bodyBytes))
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !result.OK {
		msg := result.Error
		if msg == "" {
			msg = "Unknown Telegraph API error"
		}
		return &APIError{Method: method, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(result.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// CreateAccount registers a new account and returns its access token.
func (c *Client) CreateAccount(ctx context.Context, account Account) (string, error) {
	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.call(ctx, "createAccount", account, &result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", &APIError{Method: "createAccount", Message: "empty access token"}
	}
	return result.AccessToken, nil
}

type pageParams struct {
	AccessToken   string `json:"access_token"`
	Path          string `json:"path,omitempty"`
	Title         string `json:"title"`
	Content       []Node `json:"content"`
	AuthorName    string `json:"author_name,omitempty"`
	AuthorURL     string `json:"author_url,omitempty"`
	ReturnContent bool   `json:"return_content"`
}

// CreatePage publishes a new page.
func (c *Client) CreatePage(ctx context.Context, token string, in PageInput) (*Page, error) {
	var page Page
	err := c.call(ctx, "createPage", pageParams{
		AccessToken: token,
		Title:       in.Title,
		Content:     in.Content,
		AuthorName:  in.AuthorName,
		AuthorURL:   in.AuthorURL,
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// EditPage replaces the title and content of the page at path.
func (c *Client) EditPage(ctx context.Context, token, path string, in PageInput) (*Page, error) {
	var page Page
	err := c.call(ctx, "editPage", pageParams{
		AccessToken: token,
		Path:        path,
		Title:       in.Title,
		Content:     in.Content,
		AuthorName:  in.AuthorName,
		AuthorURL:   in.AuthorURL,
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPage fetches the page at path. Content is only filled in when
// withContent is set.
func (c *Client) GetPage(ctx context.Context, path string, withContent bool) (*Page, error) {
	var page Page
	err := c.call(ctx, "getPage", struct {
		Path          string `json:"path"`
		ReturnContent bool   `json:"return_content"`
	}{path, withContent}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
