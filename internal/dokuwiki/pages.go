package dokuwiki

import (
	"context"
	"fmt"
	"strings"

	"github.com/olgasafonova/dokuwiki-mcp-server/internal/xmlrpc"
	"golang.org/x/net/html"
)

// PageDocument is a rendered page
type PageDocument struct {
	Document *html.Node
	HTML     string

	// ResolvedID is the id the page was fetched under. DokuWiki has no
	// redirects, so it always equals the requested id.
	ResolvedID string
}

// SubPages lists the wiki links found in a page's first paragraph
type SubPages struct {
	ResolvedID string
	Links      []string
}

// GetPageDocument fetches and parses the rendered HTML of a page
func (c *Client) GetPageDocument(ctx context.Context, id string) (*PageDocument, bool) {
	doc, err := c.pageDocument(ctx, id)
	if err != nil {
		c.logFailure("getPageHTML failed", err, "page", id)
		return nil, false
	}
	return doc, true
}

func (c *Client) pageDocument(ctx context.Context, id string) (*PageDocument, error) {
	res, err := c.call(ctx, "wiki.getPageHTML", xmlrpc.String(id))
	if err != nil {
		return nil, err
	}

	var body string
	if res.Truthy() {
		body = res.Text()
	}

	node, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML of %s: %w", id, err)
	}
	return &PageDocument{Document: node, HTML: body, ResolvedID: id}, nil
}

// FetchPageTitle verifies that a page exists and returns its title. The
// title is the id itself; page headings are not parsed.
func (c *Client) FetchPageTitle(ctx context.Context, id string) (string, bool) {
	res, err := c.call(ctx, "wiki.getPage", xmlrpc.String(id))
	if err != nil {
		c.logFailure("fetchPageTitle failed", err, "page", id)
		return "", false
	}
	if !res.Truthy() {
		c.logger.Debug("Page does not exist", "page", id)
		return "", false
	}
	return id, true
}

// SubPageLinks returns the local links of the first non-empty paragraph of
// a page. Any failure yields no links.
func (c *Client) SubPageLinks(ctx context.Context, id string) SubPages {
	empty := SubPages{ResolvedID: id, Links: []string{}}

	doc, err := c.pageDocument(ctx, id)
	if err != nil {
		c.logFailure("getSubPages failed", err, "page", id)
		return empty
	}

	p := firstParagraph(doc.Document)
	if p == nil {
		return SubPages{ResolvedID: doc.ResolvedID, Links: []string{}}
	}

	links := dedupeLinks(subPageTargets(hrefs(p)), c.normalize)
	return SubPages{ResolvedID: doc.ResolvedID, Links: links}
}
