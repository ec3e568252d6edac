package dokuwiki

import (
	"context"
	"fmt"
	"strings"
)

// MCP-compatible wrappers. They never return an error for a wiki failure:
// the degraded result is the answer.

// LoginMCP logs in with the given or configured credentials
func (c *Client) LoginMCP(ctx context.Context, args LoginArgs) (LoginResult, error) {
	user, pass := args.Username, args.Password
	if user == "" && pass == "" {
		user, pass = c.username, c.password
	}
	if user == "" {
		return LoginResult{Message: "no username given and DOKUWIKI_USERNAME is not set"}, nil
	}

	session := c.Login(ctx, user, pass)
	msg := "login failed"
	if session.Authenticated {
		msg = "logged in"
	}
	return LoginResult{Authenticated: session.Authenticated, User: session.User, Message: msg}, nil
}

// CheckStatusMCP reports API availability and versions
func (c *Client) CheckStatusMCP(ctx context.Context, _ CheckStatusArgs) (StatusResult, error) {
	info, err := c.APIStatus(ctx)
	if err != nil {
		c.logFailure("Status check failed", err)
		return StatusResult{Available: false}, nil
	}
	return StatusResult{Available: true, Version: info.Version, APIVersion: info.APIVersion}, nil
}

// RandomArticleMCP resolves a random readable article
func (c *Client) RandomArticleMCP(ctx context.Context, _ RandomArticleArgs) (RandomArticleResult, error) {
	id, ok := c.ResolveRandomArticle(ctx)
	if !ok {
		return RandomArticleResult{Message: fmt.Sprintf("no accessible article found within %d attempts", MaxRandomAttempts)}, nil
	}
	return RandomArticleResult{Found: true, ID: id}, nil
}

// SuggestMCP searches for page ids
func (c *Client) SuggestMCP(ctx context.Context, args SuggestArgs) (SuggestResult, error) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return SuggestResult{}, fmt.Errorf("query is required")
	}
	ids := c.Suggest(ctx, query)
	return SuggestResult{Query: query, Suggestions: ids, Count: len(ids)}, nil
}

// GetPageHTMLMCP returns the rendered HTML of a page
func (c *Client) GetPageHTMLMCP(ctx context.Context, args GetPageHTMLArgs) (PageHTMLResult, error) {
	if args.ID == "" {
		return PageHTMLResult{}, fmt.Errorf("id is required")
	}
	doc, ok := c.GetPageDocument(ctx, args.ID)
	if !ok {
		return PageHTMLResult{ResolvedID: args.ID}, nil
	}
	return PageHTMLResult{Found: true, ResolvedID: doc.ResolvedID, HTML: doc.HTML}, nil
}

// SubPagesMCP lists the links of a page's first paragraph
func (c *Client) SubPagesMCP(ctx context.Context, args SubPagesArgs) (SubPagesResult, error) {
	if args.ID == "" {
		return SubPagesResult{}, fmt.Errorf("id is required")
	}
	sub := c.SubPageLinks(ctx, args.ID)
	return SubPagesResult{ResolvedID: sub.ResolvedID, Links: sub.Links, Count: len(sub.Links)}, nil
}

// PageTitleMCP verifies a page exists and returns its title
func (c *Client) PageTitleMCP(ctx context.Context, args PageTitleArgs) (PageTitleResult, error) {
	if args.ID == "" {
		return PageTitleResult{}, fmt.Errorf("id is required")
	}
	title, ok := c.FetchPageTitle(ctx, args.ID)
	return PageTitleResult{Found: ok, Title: title}, nil
}

// SetDebugMCP toggles debug logging
func (c *Client) SetDebugMCP(_ context.Context, args SetDebugArgs) (SetDebugResult, error) {
	c.SetDebug(args.Enabled)
	return SetDebugResult{Debug: c.Debug()}, nil
}
