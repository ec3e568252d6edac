package dokuwiki

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	apierrors "github.com/olgasafonova/dokuwiki-mcp-server/internal/errors"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/xmlrpc"
	"github.com/olgasafonova/dokuwiki-mcp-server/metrics"
)

// MaxRandomAttempts bounds the access checks made per resolution
const MaxRandomAttempts = 10

// reservedPrefixes name administrative namespaces never offered as articles
var reservedPrefixes = []string{"index:", "playground:"}

// Picker chooses an index in [0, n). Candidates are sampled with
// replacement.
type Picker interface {
	IntN(n int) int
}

type defaultPicker struct{}

func (defaultPicker) IntN(n int) int {
	return rand.IntN(n)
}

// ResolveRandomArticle returns a random page the caller may read. The
// second result is false when the wiki has no eligible pages, when no
// access check succeeded within MaxRandomAttempts, or on failure.
func (c *Client) ResolveRandomArticle(ctx context.Context) (string, bool) {
	id, err := c.randomArticle(ctx)
	if err != nil {
		c.logFailure("Random article not resolved", err)
		return "", false
	}
	return id, true
}

func (c *Client) randomArticle(ctx context.Context) (string, error) {
	raw, err := c.callRaw(ctx, methodGetPagelist, xmlrpc.String(""), xmlrpc.Struct(map[string]string{"depth": "0"}))
	if err != nil {
		metrics.RecordRandomResult("error")
		return "", err
	}

	pages := xmlrpc.ExtractPageIDs(raw)
	c.logger.Debug("Got pages", "count", len(pages))
	if len(pages) == 0 {
		metrics.RecordRandomResult("empty")
		return "", apierrors.NewEmptyResultError("pages")
	}

	candidates := c.eligiblePages(pages)
	c.logger.Debug("Filtered main pages", "count", len(candidates))
	if len(candidates) == 0 {
		metrics.RecordRandomResult("empty")
		return "", apierrors.NewEmptyResultError("main namespace pages")
	}

	for attempt := 1; attempt <= MaxRandomAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			metrics.RecordRandomResult("error")
			return "", err
		}

		id := candidates[c.picker.IntN(len(candidates))]
		c.logger.Debug("Trying random page", "page", id, "attempt", attempt)

		perm, err := c.aclCheck(ctx, id)
		if err != nil {
			c.logger.Debug("ACL check failed", "page", id, "error", err)
			metrics.RecordRandomAttempt("error")
			continue
		}
		if perm > 0 {
			c.logger.Debug("Found accessible page", "page", id, "permission", perm)
			metrics.RecordRandomAttempt("found")
			metrics.RecordRandomResult("found")
			return id, nil
		}
		metrics.RecordRandomAttempt("denied")
	}

	metrics.RecordRandomResult("exhausted")
	return "", apierrors.NewEmptyResultError(fmt.Sprintf("accessible page after %d attempts", MaxRandomAttempts))
}

// eligiblePages drops reserved namespaces, and all namespaced pages when
// the client is restricted to the main namespace.
func (c *Client) eligiblePages(pages []string) []string {
	out := make([]string, 0, len(pages))
	for _, id := range pages {
		if isReserved(id) {
			continue
		}
		if c.mainNamespaceOnly && strings.Contains(id, ":") {
			continue
		}
		out = append(out, id)
	}
	return out
}

func isReserved(id string) bool {
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// aclCheck returns the caller's permission level on a page. Results that
// are not integers count as no permission.
func (c *Client) aclCheck(ctx context.Context, id string) (int, error) {
	res, err := c.call(ctx, "wiki.aclCheck", xmlrpc.String(id))
	if err != nil {
		return 0, err
	}
	perm, ok := res.Integer()
	if !ok {
		return 0, nil
	}
	return perm, nil
}
