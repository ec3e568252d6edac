// Package infra provides resilience components for the DokuWiki transport.
package infra

import (
	"sync"
	"time"
)

// BreakerState is the current state of a Breaker.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // requests flow normally
	BreakerOpen                         // requests are rejected
	BreakerHalfOpen                     // a limited number of probes may pass
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a Breaker.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	ResetTimeout     time.Duration // time spent open before probing
	HalfOpenMax      int           // probes allowed while half-open
}

// DefaultBreakerConfig returns the settings used by the HTTP transport.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMax:      2,
	}
}

// Breaker fails fast when the wiki endpoint keeps failing, so a dead
// server does not stall every tool call for the full request timeout.
type Breaker struct {
	mu  sync.Mutex
	cfg BreakerConfig
	now func() time.Time

	state            BreakerState
	consecutiveFails int
	lastFailure      time.Time
	halfOpenCount    int
}

// NewBreaker creates a Breaker. Zero fields in cfg take the defaults.
func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = def.HalfOpenMax
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Allow reports whether a request may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) >= b.cfg.ResetTimeout {
			b.state = BreakerHalfOpen
			b.halfOpenCount = 1
			return true
		}
		return false
	case BreakerHalfOpen:
		if b.halfOpenCount < b.cfg.HalfOpenMax {
			b.halfOpenCount++
			return true
		}
		return false
	}
	return false
}

// RecordSuccess resets the failure count and closes a half-open breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFails = 0
	if b.state == BreakerHalfOpen {
		b.state = BreakerClosed
		b.halfOpenCount = 0
	}
}

// RecordFailure counts a failure and opens the breaker at the threshold.
// Any failure while half-open reopens it.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFails++
	b.lastFailure = b.now()

	switch b.state {
	case BreakerClosed:
		if b.consecutiveFails >= b.cfg.FailureThreshold {
			b.state = BreakerOpen
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.halfOpenCount = 0
	}
}

// Release returns a slot taken by Allow without recording an outcome,
// for requests abandoned by the caller before the endpoint answered.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen && b.halfOpenCount > 0 {
		b.halfOpenCount--
	}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a snapshot for logging and status reporting.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		State:            b.state.String(),
		ConsecutiveFails: b.consecutiveFails,
		LastFailure:      b.lastFailure,
		RetryAt:          b.lastFailure.Add(b.cfg.ResetTimeout),
	}
}

// BreakerStats is a point-in-time view of a Breaker.
type BreakerStats struct {
	State            string    `json:"state"`
	ConsecutiveFails int       `json:"consecutive_failures"`
	LastFailure      time.Time `json:"last_failure,omitempty"`
	RetryAt          time.Time `json:"retry_at,omitempty"`
}

// ErrBreakerOpen is returned instead of sending a request while the breaker is open.
type ErrBreakerOpen struct {
	RetryAt  time.Time
	Failures int
}

func (e *ErrBreakerOpen) Error() string {
	return "circuit breaker is open: wiki endpoint is failing, retry after " + e.RetryAt.Format(time.RFC3339)
}
