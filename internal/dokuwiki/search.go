package dokuwiki

import (
	"context"
	"strings"

	"github.com/olgasafonova/dokuwiki-mcp-server/internal/xmlrpc"
)

// MaxSuggestions caps the ids returned by Suggest
const MaxSuggestions = 10

// Suggest returns up to MaxSuggestions main-namespace page ids matching
// query, in the order the wiki ranked them. It never returns nil.
func (c *Client) Suggest(ctx context.Context, query string) []string {
	c.logger.Debug("Searching", "query", query)

	entries, err := c.callList(ctx, "dokuwiki.search", xmlrpc.String(query))
	if err != nil {
		c.logFailure("Search failed", err, "query", query)
		return []string{}
	}

	ids := make([]string, 0, MaxSuggestions)
	for _, entry := range entries {
		id := entry["id"]
		if id == "" || strings.Contains(id, ":") {
			continue
		}
		ids = append(ids, id)
		if len(ids) == MaxSuggestions {
			break
		}
	}
	return ids
}
