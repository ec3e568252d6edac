// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are defined declaratively and registered through type-safe handlers,
// keeping main.go free of per-tool boilerplate.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a dokuwiki.Client method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "dokuwiki_random_article")
	Name string

	// Method is the client method name (e.g., "RandomArticle")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (session, discovery, read, settings)
	Category string

	// ReadOnly indicates the tool doesn't modify wiki state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ToolsByCategory returns the specs in a category, in definition order.
func ToolsByCategory(category string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			out = append(out, spec)
		}
	}
	return out
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
