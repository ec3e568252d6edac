package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	apierrors "github.com/olgasafonova/dokuwiki-mcp-server/internal/errors"
	"github.com/olgasafonova/dokuwiki-mcp-server/internal/infra"
	"github.com/olgasafonova/dokuwiki-mcp-server/metrics"
)

const (
	// DefaultTimeout bounds a single round trip
	DefaultTimeout = 30 * time.Second

	// MaxConcurrentRequests limits parallel calls to the wiki
	MaxConcurrentRequests = 3

	// DefaultUserAgent identifies the client to the wiki
	DefaultUserAgent = "DokuWikiMCPServer/1.0 (https://github.com/olgasafonova/dokuwiki-mcp-server)"
)

// HTTP posts XML-RPC requests to a single endpoint. Session cookies set by
// dokuwiki.login are kept in a cookie jar and sent with later requests.
// It is safe for concurrent use.
type HTTP struct {
	endpoint   string
	userAgent  string
	maxRetries int
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *infra.Breaker
	semaphore  chan struct{}
}

// Option configures an HTTP transport
type Option func(*HTTP)

// WithHTTPClient sets a custom HTTP client. A client without a cookie jar
// gets one.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		h.httpClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) Option {
	return func(h *HTTP) {
		h.logger = l
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(h *HTTP) {
		if ua != "" {
			h.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.httpClient.Timeout = d
		}
	}
}

// WithMaxRetries sets how many times a failed request is re-sent.
// The default is 0: each call is a single round trip.
func WithMaxRetries(n int) Option {
	return func(h *HTTP) {
		if n >= 0 {
			h.maxRetries = n
		}
	}
}

// WithBreaker sets a custom circuit breaker
func WithBreaker(b *infra.Breaker) Option {
	return func(h *HTTP) {
		h.breaker = b
	}
}

// NewHTTP creates a transport for the given xmlrpc.php URL
func NewHTTP(endpoint string, opts ...Option) *HTTP {
	h := &HTTP{
		endpoint:   endpoint,
		userAgent:  DefaultUserAgent,
		httpClient: newHTTPClient(DefaultTimeout),
		logger:     slog.Default(),
		breaker:    infra.NewBreaker(infra.DefaultBreakerConfig()),
		semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		h.httpClient.Jar = jar
	}
	return h
}

// Endpoint returns the URL requests are posted to
func (h *HTTP) Endpoint() string {
	return h.endpoint
}

// BreakerStats returns the circuit breaker state
func (h *HTTP) BreakerStats() infra.BreakerStats {
	return h.breaker.Stats()
}

// Send posts body and returns the response body of a 200 response.
// Failures caused by the caller's context do not count against the breaker.
func (h *HTTP) Send(ctx context.Context, body []byte) ([]byte, error) {
	// Wait for a slot first so a probe admitted by the breaker is always sent
	if err := h.acquire(ctx); err != nil {
		return nil, apierrors.NewTransportError("", 0, err)
	}
	defer h.release()

	if !h.breaker.Allow() {
		metrics.BreakerRejections.Inc()
		stats := h.breaker.Stats()
		return nil, apierrors.NewTransportError("", 0, &infra.ErrBreakerOpen{
			RetryAt:  stats.RetryAt,
			Failures: stats.ConsecutiveFails,
		})
	}

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 100 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				h.breaker.Release()
				return nil, apierrors.NewTransportError("", 0, fmt.Errorf("context canceled during backoff: %w", ctx.Err()))
			}
		}

		resp, retry, err := h.post(ctx, body)
		if err == nil {
			h.breaker.RecordSuccess()
			return resp, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
		h.logger.Warn("XML-RPC request failed, retrying",
			"attempt", attempt+1,
			"max_retries", h.maxRetries,
			"error", err)
	}

	if ctx.Err() != nil {
		h.breaker.Release()
		return nil, lastErr
	}
	h.breaker.RecordFailure()
	return nil, lastErr
}

// post performs one round trip. retry reports whether the failure is
// worth another attempt.
func (h *HTTP) post(ctx context.Context, body []byte) (respBody []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, apierrors.NewTransportError("", 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, true, apierrors.NewTransportError("", 0, fmt.Errorf("request failed: %w", err))
	}

	respBody, err = io.ReadAll(resp.Body)
	_ = resp.Body.Close() // Error ignored intentionally; body already read
	if err != nil {
		return nil, true, apierrors.NewTransportError("", resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		// Client errors other than 429 will not change on a retry
		retry = resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retry, apierrors.NewTransportError("", resp.StatusCode, fmt.Errorf("%s", truncate(string(respBody), 200)))
	}
	return respBody, false, nil
}

func (h *HTTP) acquire(ctx context.Context) error {
	select {
	case h.semaphore <- struct{}{}:
		return nil
	default:
	}

	metrics.RateLimitWaits.Inc()
	select {
	case h.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context canceled while waiting for rate limiter: %w", ctx.Err())
	}
}

func (h *HTTP) release() {
	<-h.semaphore
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client with connection reuse settings
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
