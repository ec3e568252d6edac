// Package dokuwiki implements the session operations of a DokuWiki XML-RPC
// client: login, status checks, random article resolution, search
// suggestions, page rendering and sub-page link extraction.
//
// Every public operation swallows its errors, logs them, and returns a
// degraded result (false, an empty slice or a zero value).
package dokuwiki

import (
	"context"
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	apierrors "github.com/olgasafonova/dokuwiki-mcp-server/internal/errors"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/transport"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/xmlrpc"
	"github.com/olgasafonova/dokuwiki-mcp-server/metrics"
	"github.com/olgasafonova/dokuwiki-mcp-server/tracing"
)

// methodGetPagelist is answered with raw text instead of a decoded value
const methodGetPagelist = "dokuwiki.getPagelist"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(newEntropySource(), 0)
)

// newEntropySource seeds a ChaCha8 stream from the system random source
func newEntropySource() *rand.ChaCha8 {
	var seed [32]byte
	_, _ = cryptorand.Read(seed[:])
	return rand.NewChaCha8(seed)
}

// newRequestID returns a ULID tagging one round trip in logs and spans
func newRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Client performs DokuWiki operations over a Transport.
// It is safe for concurrent use.
type Client struct {
	transport         transport.Transport
	logger            *slog.Logger
	level             *slog.LevelVar
	picker            Picker
	normalize         func(string) string
	mainNamespaceOnly bool

	// Fallback credentials for LoginMCP
	username string
	password string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithLevelVar shares the level variable of the logger's handler so
// SetDebug changes what gets logged.
func WithLevelVar(lv *slog.LevelVar) ClientOption {
	return func(c *Client) {
		if lv != nil {
			c.level = lv
		}
	}
}

// WithPicker sets the random source used by the random article resolver
func WithPicker(p Picker) ClientOption {
	return func(c *Client) {
		if p != nil {
			c.picker = p
		}
	}
}

// WithNormalizer replaces NormalizeID for link deduplication
func WithNormalizer(fn func(string) string) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.normalize = fn
		}
	}
}

// WithMainNamespaceOnly excludes every namespaced page from random selection
func WithMainNamespaceOnly(enabled bool) ClientOption {
	return func(c *Client) {
		c.mainNamespaceOnly = enabled
	}
}

// WithCredentials sets the credentials used when dokuwiki_login is called
// without any.
func WithCredentials(username, password string) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// NewClient creates a client sending requests through t
func NewClient(t transport.Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport: t,
		logger:    slog.Default(),
		level:     new(slog.LevelVar),
		picker:    defaultPicker{},
		normalize: NormalizeID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDebug switches request/response logging on or off
func (c *Client) SetDebug(enabled bool) {
	if enabled {
		c.level.Set(slog.LevelDebug)
	} else {
		c.level.Set(slog.LevelInfo)
	}
	c.logger.Info("Debug logging changed", "enabled", enabled)
}

// Debug reports whether debug logging is enabled
func (c *Client) Debug() bool {
	return c.level.Level() <= slog.LevelDebug
}

// call performs a round trip and decodes the response value
func (c *Client) call(ctx context.Context, method string, params ...xmlrpc.Value) (xmlrpc.Result, error) {
	var result xmlrpc.Result
	err := c.roundTrip(ctx, method, params, func(body []byte) error {
		r, err := xmlrpc.DecodeValue(body)
		if err != nil {
			return err
		}
		result = r
		c.logger.Debug("Parsed result", "method", method, "kind", r.Kind, "value", r.Text())
		return nil
	})
	return result, err
}

// callRaw performs a round trip and returns the response text undecoded
func (c *Client) callRaw(ctx context.Context, method string, params ...xmlrpc.Value) (string, error) {
	var raw string
	err := c.roundTrip(ctx, method, params, func(body []byte) error {
		raw = string(body)
		return nil
	})
	return raw, err
}

// callList performs a round trip and decodes an array of structs
func (c *Client) callList(ctx context.Context, method string, params ...xmlrpc.Value) ([]map[string]string, error) {
	var entries []map[string]string
	err := c.roundTrip(ctx, method, params, func(body []byte) error {
		list, err := xmlrpc.DecodeStructList(body)
		if err != nil {
			return err
		}
		entries = list
		return nil
	})
	return entries, err
}

// roundTrip encodes the call, sends it and hands the response body to
// decode. Each round trip gets its own span, request id and metrics.
func (c *Client) roundTrip(ctx context.Context, method string, params []xmlrpc.Value, decode func([]byte) error) error {
	reqID := newRequestID()
	ctx, span := tracing.StartSpan(ctx, "xmlrpc."+method)
	defer span.End()
	tracing.AddRPCAttributes(span, method, reqID)

	body, err := xmlrpc.NewCall(method, params...).Encode()
	if err != nil {
		tracing.EndRPC(span, tracing.ClassEncode, 0, err)
		return fmt.Errorf("failed to encode %s: %w", method, err)
	}
	c.logger.Debug("XML-RPC request", "request_id", reqID, "method", method, "body", string(body))

	start := time.Now()
	resp, err := c.transport.Send(ctx, body)
	duration := time.Since(start).Seconds()
	if err != nil {
		err = withMethod(method, err)
		metrics.RecordRPC(method, duration, 0, tracing.ClassTransport)
		tracing.EndRPC(span, tracing.ClassTransport, 0, err)
		return err
	}
	c.logger.Debug("Raw response", "request_id", reqID, "method", method, "body", string(resp))

	if err := decode(resp); err != nil {
		metrics.RecordRPC(method, duration, len(resp), tracing.ClassParse)
		tracing.EndRPC(span, tracing.ClassParse, len(resp), err)
		c.logger.Debug("Failed response text", "request_id", reqID, "method", method, "error", err)
		return err
	}

	metrics.RecordRPC(method, duration, len(resp), "")
	tracing.EndRPC(span, "", len(resp), nil)
	return nil
}

// withMethod names the XML-RPC method on a transport failure. Errors
// from a Transport that are not TransportErrors are wrapped as one.
func withMethod(method string, err error) error {
	var te *apierrors.TransportError
	if !errors.As(err, &te) {
		return apierrors.NewTransportError(method, 0, err)
	}
	if te.Op != "" {
		return err
	}
	return apierrors.NewTransportError(method, te.StatusCode, te.Err)
}

// logFailure logs a swallowed error at a level matching its class
func (c *Client) logFailure(msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err)
	switch {
	case apierrors.IsEmptyResult(err):
		c.logger.Info(msg, attrs...)
	default:
		c.logger.Warn(msg, attrs...)
	}
}
