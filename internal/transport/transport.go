// Package transport delivers encoded XML-RPC requests to a DokuWiki endpoint.
package transport

import "context"

// Transport sends one request body and returns the response body.
// Implementations report delivery failures as *errors.TransportError.
type Transport interface {
	Send(ctx context.Context, body []byte) ([]byte, error)
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, body []byte) ([]byte, error)

// Send calls f.
func (f Func) Send(ctx context.Context, body []byte) ([]byte, error) {
	return f(ctx, body)
}
