package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/dokuwiki"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/transport"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newRegistry(t *testing.T, tr transport.Transport) *HandlerRegistry {
	t.Helper()
	logger := quietLogger()
	return NewHandlerRegistry(dokuwiki.NewClient(tr, dokuwiki.WithLogger(logger)), logger)
}

func TestNewHandlerRegistry(t *testing.T) {
	logger := quietLogger()
	client := dokuwiki.NewClient(nil, dokuwiki.WithLogger(logger))

	registry := NewHandlerRegistry(client, logger)

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if registry.client != client {
		t.Error("Registry should hold the client reference")
	}
	if registry.logger != logger {
		t.Error("Registry should hold the logger reference")
	}
}

func TestBuildTool(t *testing.T) {
	registry := newRegistry(t, nil)

	tests := []struct {
		name      string
		spec      ToolSpec
		wantRO    bool
		wantIdem  bool
		wantDestr bool
		wantOpen  bool
	}{
		{
			name: "read-only tool",
			spec: ToolSpec{
				Name:        "dokuwiki_suggest",
				Title:       "Suggest DokuWiki Pages",
				Description: "Search for pages",
				Method:      "Suggest",
				ReadOnly:    true,
				Idempotent:  true,
			},
			wantRO:   true,
			wantIdem: true,
		},
		{
			name: "destructive tool",
			spec: ToolSpec{
				Name:        "dokuwiki_delete",
				Description: "Delete a page",
				Method:      "Delete",
				Destructive: true,
			},
			wantDestr: true,
		},
		{
			name: "open world tool",
			spec: ToolSpec{
				Name:        "dokuwiki_random_article",
				Description: "Random page",
				Method:      "RandomArticle",
				OpenWorld:   true,
			},
			wantOpen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := registry.buildTool(tt.spec)

			if tool.Name != tt.spec.Name {
				t.Errorf("Name = %q, want %q", tool.Name, tt.spec.Name)
			}
			if tool.Description != tt.spec.Description {
				t.Errorf("Description = %q, want %q", tool.Description, tt.spec.Description)
			}
			if tool.Annotations == nil {
				t.Fatal("Expected annotations")
			}
			if tool.Annotations.Title != tt.spec.Title {
				t.Errorf("Title = %q, want %q", tool.Annotations.Title, tt.spec.Title)
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			if tool.Annotations.DestructiveHint == nil || *tool.Annotations.DestructiveHint != tt.wantDestr {
				t.Errorf("DestructiveHint = %v, want %v", tool.Annotations.DestructiveHint, tt.wantDestr)
			}
			if tt.wantOpen && (tool.Annotations.OpenWorldHint == nil || !*tool.Annotations.OpenWorldHint) {
				t.Error("Expected OpenWorldHint to be true")
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	registry := newRegistry(t, nil)

	var err error
	func() {
		defer registry.recoverPanic("test_tool", &err)
		panic("test panic")
	}()

	if err == nil || !strings.Contains(err.Error(), "test_tool") {
		t.Errorf("recovered error = %v", err)
	}
}

func TestLogExecution(t *testing.T) {
	registry := newRegistry(t, nil)
	spec := ToolSpec{Name: "test_tool", Category: "discovery"}

	registry.logExecution(spec, dokuwiki.SuggestArgs{Query: "test"},
		dokuwiki.SuggestResult{Query: "test", Suggestions: []string{"start"}, Count: 1})
	registry.logExecution(spec, dokuwiki.RandomArticleArgs{},
		dokuwiki.RandomArticleResult{Found: true, ID: "start"})
	registry.logExecution(spec, dokuwiki.SubPagesArgs{ID: "start"},
		dokuwiki.SubPagesResult{ResolvedID: "start", Links: []string{}})
	registry.logExecution(spec, struct{}{}, nil)
}

func TestAllToolsNotEmpty(t *testing.T) {
	if len(AllTools) == 0 {
		t.Error("AllTools should not be empty")
	}

	seen := make(map[string]bool)
	for i, spec := range AllTools {
		if spec.Name == "" {
			t.Errorf("Tool %d has empty Name", i)
		}
		if !strings.HasPrefix(spec.Name, "dokuwiki_") {
			t.Errorf("Tool %s should be prefixed with dokuwiki_", spec.Name)
		}
		if seen[spec.Name] {
			t.Errorf("Tool %s is defined twice", spec.Name)
		}
		seen[spec.Name] = true
		if spec.Method == "" {
			t.Errorf("Tool %s has empty Method", spec.Name)
		}
		if spec.Description == "" {
			t.Errorf("Tool %s has empty Description", spec.Name)
		}
		if spec.Category == "" {
			t.Errorf("Tool %s has empty Category", spec.Name)
		}
	}
}

func TestToolSpecMethods(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	registry := newRegistry(t, nil)

	for _, spec := range AllTools {
		if !registry.registerByName(server, spec) {
			t.Errorf("Tool %s has unknown method: %s", spec.Name, spec.Method)
		}
	}
	if registry.registerByName(server, ToolSpec{Name: "dokuwiki_unknown", Method: "Unknown"}) {
		t.Error("unknown method should not register")
	}
}

func TestToolsByCategory(t *testing.T) {
	for _, category := range []string{"session", "discovery", "read", "settings"} {
		tools := ToolsByCategory(category)
		if len(tools) == 0 {
			t.Errorf("Expected tools in category %s", category)
		}
		for _, tool := range tools {
			if tool.Category != category {
				t.Errorf("Tool %s has category %s, expected %s", tool.Name, tool.Category, category)
			}
		}
	}

	if got := ToolsByCategory("unknown"); len(got) != 0 {
		t.Errorf("Expected 0 tools for unknown category, got %d", len(got))
	}
}

// connect serves the registered tools over an in-memory MCP connection
func connect(t *testing.T, registry *HandlerRegistry) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "dokuwiki-test", Version: "0"}, nil)
	registry.RegisterAll(server)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

// decodeStructured reads the structured result of a tool call into out
func decodeStructured(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal structured content %s: %v", data, err)
	}
}

func TestRegisterAll_ListsTools(t *testing.T) {
	session := connect(t, newRegistry(t, nil))

	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(res.Tools) != len(AllTools) {
		t.Errorf("server lists %d tools, want %d", len(res.Tools), len(AllTools))
	}
	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, spec := range AllTools {
		if !names[spec.Name] {
			t.Errorf("tool %s not listed", spec.Name)
		}
	}
}

func TestToolCall_RandomArticle(t *testing.T) {
	wiki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/xml")
		value := "<int>0</int>"
		switch {
		case strings.Contains(string(body), "dokuwiki.getPagelist"):
			value = "<array><data><value><string>index:main</string></value><value><string>start</string></value></data></array>"
		case strings.Contains(string(body), "<string>start</string>"):
			value = "<int>1</int>"
		}
		_, _ = w.Write([]byte(`<?xml version="1.0"?><methodResponse><params><param><value>` + value + `</value></param></params></methodResponse>`))
	}))
	defer wiki.Close()

	tr := transport.NewHTTP(wiki.URL, transport.WithHTTPClient(wiki.Client()), transport.WithLogger(quietLogger()))
	session := connect(t, newRegistry(t, tr))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "dokuwiki_random_article",
		Arguments: map[string]any{},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("tool returned an error: %+v", res.Content)
	}

	var got dokuwiki.RandomArticleResult
	decodeStructured(t, res, &got)
	if !got.Found || got.ID != "start" {
		t.Errorf("random article = %+v, want start", got)
	}
}

func TestToolCall_Errors(t *testing.T) {
	failing := transport.Func(func(context.Context, []byte) ([]byte, error) {
		return nil, errors.New("wiki unreachable")
	})
	session := connect(t, newRegistry(t, failing))
	ctx := context.Background()

	// Wiki failures degrade to a normal result
	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "dokuwiki_suggest",
		Arguments: map[string]any{"query": "start"},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if res.IsError {
		t.Errorf("wiki failure should not be a tool error: %+v", res.Content)
	}
	var suggest dokuwiki.SuggestResult
	decodeStructured(t, res, &suggest)
	if suggest.Count != 0 || len(suggest.Suggestions) != 0 {
		t.Errorf("suggest = %+v, want no suggestions", suggest)
	}

	// Invalid arguments are tool errors
	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "dokuwiki_suggest",
		Arguments: map[string]any{"query": "   "},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if !res.IsError {
		t.Error("blank query should be a tool error")
	}
}
