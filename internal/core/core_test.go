package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesh254/telepub/internal/docs"
	"github.com/tesh254/telepub/internal/publisher"
	"github.com/tesh254/telepub/internal/storage"
	"github.com/tesh254/telepub/internal/telegraph"
)

func TestLoggingHandler(t *testing.T) {
	handler := loggingHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("hello"))
	}))

	t.Run("generates a request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
		assert.Equal(t, "hello", rec.Body.String())
	})

	t.Run("keeps the caller request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.Header.Set("X-Request-ID", "abc")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
	})
}

func newTelegraphServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/createAccount":
			fmt.Fprintln(w, `{"ok":true,"result":{"access_token":"tok"}}`)
		case "/createPage":
			fmt.Fprintf(w, `{"ok":true,"result":{"path":"%s-10-19","url":"https://telegra.ph/%s-10-19"}}`, body["title"], body["title"])
		case "/editPage":
			fmt.Fprintf(w, `{"ok":true,"result":{"path":"%s","url":"https://telegra.ph/%s"}}`, body["path"], body["path"])
		case "/getPage":
			fmt.Fprintf(w, `{"ok":true,"result":{"path":"%s","url":"https://telegra.ph/%s","title":"Note","views":12}}`, body["path"], body["path"])
		default:
			fmt.Fprintln(w, `{"ok":false,"error":"METHOD_NOT_FOUND"}`)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newDocsServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.txt" {
			fmt.Fprint(w, strings.Repeat("d", 2048))
			return
		}
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// connect serves tools over an in-memory transport and returns a client
// session talking to it.
func connect(t *testing.T, tools *Tools) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := (&Core{}).NewServer(tools, "test")

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	content, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestTools(t *testing.T) {
	tg := newTelegraphServer(t)
	ds := newDocsServer(t)
	dir := t.TempDir()

	note := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(note, []byte("# Note\n\nhello\n"), 0644))

	dbPath := filepath.Join(dir, "docs.db")
	docsDir := filepath.Join(dir, "docs")
	sources := []docs.Source{
		{Name: "ok.md", URL: ds.URL + "/ok.txt"},
		{Name: "down.md", URL: ds.URL + "/down.txt"},
	}

	tools := &Tools{
		Publisher: publisher.New(
			telegraph.NewClient(tg.URL, 5*time.Second),
			telegraph.Account{ShortName: "Notes"},
			storage.TokenFile{Path: filepath.Join(dir, "token")},
			storage.PagesFile{Path: filepath.Join(dir, "pages.json")},
		),
		NewUpdater: func(out io.Writer) (*docs.Updater, io.Closer, error) {
			st, err := storage.NewStorage(dbPath)
			if err != nil {
				return nil, nil, err
			}
			fetcher := docs.NewFetcher(docs.FetchConfig{Timeout: 5 * time.Second})
			return docs.NewUpdater(docsDir, sources, fetcher, st, out), st, nil
		},
	}
	session := connect(t, tools)

	t.Run("lists every tool", func(t *testing.T) {
		res, err := session.ListTools(context.Background(), nil)
		require.NoError(t, err)
		var names []string
		for _, tool := range res.Tools {
			names = append(names, tool.Name)
		}
		assert.ElementsMatch(t, []string{"publish_markdown", "get_page", "update_docs", "list_docs"}, names)
	})

	t.Run("publish then update", func(t *testing.T) {
		var out PublishOutput
		require.NoError(t, json.Unmarshal([]byte(callText(t, session, "publish_markdown", map[string]any{"path": note})), &out))
		assert.Equal(t, PublishOutput{Title: "Note", Path: "Note-10-19", URL: "https://telegra.ph/Note-10-19"}, out)

		require.NoError(t, json.Unmarshal([]byte(callText(t, session, "publish_markdown", map[string]any{"path": note})), &out))
		assert.True(t, out.Updated)
		assert.Equal(t, "Note-10-19", out.Path)
	})

	t.Run("get page", func(t *testing.T) {
		var out PageOutput
		require.NoError(t, json.Unmarshal([]byte(callText(t, session, "get_page", map[string]any{"path": note})), &out))
		assert.Equal(t, PageOutput{Title: "Note", Path: "Note-10-19", URL: "https://telegra.ph/Note-10-19", Views: 12}, out)
	})

	t.Run("update docs", func(t *testing.T) {
		text := callText(t, session, "update_docs", map[string]any{})
		assert.Contains(t, text, "ok.md")
		assert.Contains(t, text, "FAILED")
		assert.True(t, strings.HasSuffix(text, "\n1 updated, 1 failed\n"))

		data, err := os.ReadFile(filepath.Join(docsDir, "ok.md"))
		require.NoError(t, err)
		assert.Len(t, data, 2048)
	})

	t.Run("list docs", func(t *testing.T) {
		var out struct {
			Sources []docs.Status `json:"sources"`
			Total   int           `json:"total"`
		}
		require.NoError(t, json.Unmarshal([]byte(callText(t, session, "list_docs", map[string]any{})), &out))
		assert.Equal(t, 2, out.Total)
		require.Len(t, out.Sources, 2)
		assert.Equal(t, int64(2048), out.Sources[0].Size)
		require.NotNil(t, out.Sources[0].LastFetch)
		assert.Len(t, out.Sources[0].LastFetch.Checksum, 64)
		assert.Equal(t, int64(-1), out.Sources[1].Size)
		assert.Nil(t, out.Sources[1].LastFetch)
	})

	t.Run("database is released between calls", func(t *testing.T) {
		st, err := storage.NewStorage(dbPath)
		require.NoError(t, err)
		defer st.Close()
		state, err := st.GetSource("ok.md")
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, int64(2048), state.Size)
	})
}
