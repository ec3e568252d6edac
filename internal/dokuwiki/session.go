package dokuwiki

import (
	"context"

	"github.com/olgasafonova/dokuwiki-mcp-server/internal/xmlrpc"
)

// Session is the outcome of a login. The wiki keeps the session in a
// cookie; nothing in the client branches on Authenticated.
type Session struct {
	Authenticated bool
	User          string
}

// StatusInfo holds the versions reported by the wiki
type StatusInfo struct {
	Version    string
	APIVersion string
}

// Login authenticates against the wiki. Failures yield an unauthenticated
// session.
func (c *Client) Login(ctx context.Context, username, password string) Session {
	c.logger.Debug("Attempting login", "user", username)

	res, err := c.call(ctx, "dokuwiki.login", xmlrpc.String(username), xmlrpc.String(password))
	if err != nil {
		c.logFailure("Login failed", err, "user", username)
		return Session{User: username}
	}

	ok := loginSucceeded(res)
	c.logger.Info("Login result", "user", username, "authenticated", ok)
	return Session{Authenticated: ok, User: username}
}

// loginSucceeded accepts the string forms older wikis return as well as
// the boolean newer ones send.
func loginSucceeded(res xmlrpc.Result) bool {
	switch res.Kind {
	case xmlrpc.ResultString:
		return res.Str == "1" || res.Str == "true"
	case xmlrpc.ResultBool:
		return res.Bool
	case xmlrpc.ResultInt:
		return res.Int == 1
	}
	return false
}

// CheckAPIStatus reports whether both version queries succeed
func (c *Client) CheckAPIStatus(ctx context.Context) bool {
	_, err := c.APIStatus(ctx)
	if err != nil {
		c.logFailure("Status check failed", err)
		return false
	}
	return true
}

// APIStatus queries the DokuWiki and XML-RPC API versions
func (c *Client) APIStatus(ctx context.Context) (StatusInfo, error) {
	c.logger.Debug("Checking API status")

	version, err := c.call(ctx, "dokuwiki.getVersion")
	if err != nil {
		return StatusInfo{}, err
	}
	c.logger.Debug("DokuWiki version", "version", version.Text())

	apiVersion, err := c.call(ctx, "dokuwiki.getXMLRPCAPIVersion")
	if err != nil {
		return StatusInfo{}, err
	}
	c.logger.Debug("API version", "version", apiVersion.Text())

	return StatusInfo{Version: version.Text(), APIVersion: apiVersion.Text()}, nil
}
