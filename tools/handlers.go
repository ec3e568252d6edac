package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/dokuwiki"
	"github.com/olgasafonova/dokuwiki-mcp-server/metrics"
	"github.com/olgasafonova/dokuwiki-mcp-server/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *dokuwiki.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *dokuwiki.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools", "count", registered)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "Login":
		register(h, server, tool, spec, h.client.LoginMCP)
	case "CheckStatus":
		register(h, server, tool, spec, h.client.CheckStatusMCP)
	case "RandomArticle":
		register(h, server, tool, spec, h.client.RandomArticleMCP)
	case "Suggest":
		register(h, server, tool, spec, h.client.SuggestMCP)
	case "SubPages":
		register(h, server, tool, spec, h.client.SubPagesMCP)
	case "GetPageHTML":
		register(h, server, tool, spec, h.client.GetPageHTMLMCP)
	case "PageTitle":
		register(h, server, tool, spec, h.client.PageTitleMCP)
	case "SetDebug":
		register(h, server, tool, spec, h.client.SetDebugMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	} else {
		annotations.DestructiveHint = ptr(false)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (_ *mcp.CallToolResult, _ Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		tracing.SetOutcome(span, err)
		if err != nil {
			metrics.RecordRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers and turns them into
// a tool error.
func (h *HandlerRegistry) recoverPanic(toolName string, err *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if err != nil {
			*err = fmt.Errorf("%s failed: internal error", toolName)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case dokuwiki.LoginArgs:
		attrs = append(attrs, "user", a.Username)
	case dokuwiki.SuggestArgs:
		attrs = append(attrs, "query", a.Query)
	case dokuwiki.GetPageHTMLArgs:
		attrs = append(attrs, "id", a.ID)
	case dokuwiki.SubPagesArgs:
		attrs = append(attrs, "id", a.ID)
	case dokuwiki.PageTitleArgs:
		attrs = append(attrs, "id", a.ID)
	case dokuwiki.SetDebugArgs:
		attrs = append(attrs, "enabled", a.Enabled)
	}

	// Add extractable fields from result
	switch r := result.(type) {
	case dokuwiki.LoginResult:
		attrs = append(attrs, "authenticated", r.Authenticated)
	case dokuwiki.StatusResult:
		attrs = append(attrs, "available", r.Available, "version", r.Version)
	case dokuwiki.RandomArticleResult:
		attrs = append(attrs, "found", r.Found, "page", r.ID)
	case dokuwiki.SuggestResult:
		attrs = append(attrs, "results_count", r.Count)
	case dokuwiki.PageHTMLResult:
		attrs = append(attrs, "found", r.Found, "html_bytes", len(r.HTML))
	case dokuwiki.SubPagesResult:
		attrs = append(attrs, "links", r.Count)
	case dokuwiki.PageTitleResult:
		attrs = append(attrs, "found", r.Found)
	}

	h.logger.Info("Tool executed", attrs...)
}
