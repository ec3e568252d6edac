// Package errors provides shared error types for the DokuWiki XML-RPC client.
package errors

import (
	"errors"
	"fmt"
)

// TransportError indicates the request never produced a usable response body:
// a network failure, a non-success HTTP status, or an open circuit breaker.
type TransportError struct {
	Op         string // XML-RPC method name, if known
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Op != "":
		return fmt.Sprintf("transport error calling %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport error: HTTP %d: %v", e.StatusCode, e.Err)
	case e.Op != "":
		return fmt.Sprintf("transport error calling %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError.
func NewTransportError(op string, statusCode int, err error) *TransportError {
	return &TransportError{
		Op:         op,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ParseError indicates a response body that is not well-formed markup,
// or a value whose text cannot be read as its declared type.
type ParseError struct {
	Msg string // parser diagnostic
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("XML parse error: %s: %v", e.Msg, e.Err)
	}
	return "XML parse error: " + e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError.
func NewParseError(msg string, err error) *ParseError {
	return &ParseError{
		Msg: msg,
		Err: err,
	}
}

// EmptyResultError indicates a well-formed response with nothing usable in it.
type EmptyResultError struct {
	What string // "pages", "value", "accessible page"
}

func (e *EmptyResultError) Error() string {
	if e.What == "" {
		return "empty result"
	}
	return "empty result: no " + e.What
}

// NewEmptyResultError creates an EmptyResultError.
func NewEmptyResultError(what string) *EmptyResultError {
	return &EmptyResultError{What: what}
}

// IsTransport returns true if err is or wraps a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsParse returns true if err is or wraps a ParseError.
func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsEmptyResult returns true if err is or wraps an EmptyResultError.
func IsEmptyResult(err error) bool {
	var target *EmptyResultError
	return errors.As(err, &target)
}
