// Package core exposes telepub's publishing and docs tools over MCP.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tesh254/telepub/internal/docs"
	"github.com/tesh254/telepub/internal/publisher"
)

// Tools bundles what the MCP tools operate on.
type Tools struct {
	Publisher *publisher.Publisher
	// Token overrides the cached access token when set
	Token string
	// NewUpdater builds a docs updater printing its progress to out. The
	// returned closer releases the docs state database and is called as soon
	// as the tool call is done, so the CLI can use the database meanwhile.
	NewUpdater func(out io.Writer) (*docs.Updater, io.Closer, error)
}

type PublishArgs struct {
	Path string `json:"path" jsonschema:"absolute path of the markdown file to publish"`
}

type GetPageArgs struct {
	Path string `json:"path" jsonschema:"path of a markdown file published before"`
}

type UpdateDocsArgs struct{}

type ListDocsArgs struct{}

type PublishOutput struct {
	Title   string `json:"title"`
	Path    string `json:"path"`
	URL     string `json:"url"`
	Updated bool   `json:"updated"`
}

type PageOutput struct {
	Title string `json:"title"`
	Path  string `json:"path"`
	URL   string `json:"url"`
	Views int    `json:"views"`
}

type Core struct{}

// NewServer creates the MCP server with every tool registered.
func (c *Core) NewServer(tools *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "Telepub MCP Server", Version: version}, nil)
	c.registerTools(server, tools)
	return server
}

// ServeHTTP serves the MCP server over streamable HTTP on httpAddress.
func (c *Core) ServeHTTP(server *mcp.Server, httpAddress string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	log.Printf("[INFO] Telepub MCP handler listening at %s", httpAddress)
	return http.ListenAndServe(httpAddress, loggingHandler(handler))
}

// ServeStdio serves the MCP server over stdin/stdout until ctx is done.
func (c *Core) ServeStdio(ctx context.Context, server *mcp.Server) error {
	transport := &mcp.StdioTransport{}
	t := &mcp.LoggingTransport{Transport: transport, Writer: os.Stderr}
	log.Printf("[INFO] Starting Telepub MCP server with stdio transport")
	return server.Run(ctx, t)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// withUpdater runs fn with a freshly opened updater and closes it afterwards.
func withUpdater(tools *Tools, out io.Writer, fn func(u *docs.Updater) error) error {
	u, closer, err := tools.NewUpdater(out)
	if err != nil {
		return err
	}
	defer closer.Close()
	return fn(u)
}

func (c *Core) registerTools(server *mcp.Server, tools *Tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "publish_markdown",
		Description: "Publish a markdown file to Telegraph, updating the page if the file was published before.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PublishArgs) (*mcp.CallToolResult, any, error) {
		state, err := tools.Publisher.LoadState(ctx, tools.Token)
		if err != nil {
			return nil, nil, err
		}
		res, err := tools.Publisher.Publish(ctx, state, args.Path)
		if err != nil {
			return nil, nil, err
		}

		result, err := json.Marshal(PublishOutput{Title: res.Title, Path: res.Path, URL: res.URL, Updated: res.Updated})
		if err != nil {
			return nil, nil, err
		}
		return textResult(string(result)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_page",
		Description: "Show the Telegraph page a markdown file was published as, with its view count.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetPageArgs) (*mcp.CallToolResult, any, error) {
		state, err := tools.Publisher.LoadState(ctx, tools.Token)
		if err != nil {
			return nil, nil, err
		}
		page, err := tools.Publisher.Lookup(ctx, state, args.Path)
		if err != nil {
			return nil, nil, err
		}

		result, err := json.Marshal(PageOutput{Title: page.Title, Path: page.Path, URL: page.URL, Views: page.Views})
		if err != nil {
			return nil, nil, err
		}
		return textResult(string(result)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_docs",
		Description: "Download every configured documentation source into the docs directory.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args UpdateDocsArgs) (*mcp.CallToolResult, any, error) {
		var out bytes.Buffer
		var results []docs.Result
		err := withUpdater(tools, &out, func(u *docs.Updater) error {
			var err error
			results, err = u.UpdateAll(ctx)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		fmt.Fprintf(&out, "\n%d updated, %d failed\n", len(results)-failed, failed)
		return textResult(out.String()), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_docs",
		Description: "List documentation sources and their local status.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListDocsArgs) (*mcp.CallToolResult, any, error) {
		var statuses []docs.Status
		err := withUpdater(tools, io.Discard, func(u *docs.Updater) error {
			var err error
			statuses, err = u.Statuses()
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		result, err := json.Marshal(map[string]any{"sources": statuses, "total": len(statuses)})
		if err != nil {
			return nil, nil, err
		}
		return textResult(string(result)), nil, nil
	})
}
