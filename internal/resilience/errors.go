// Package resilience provides the retry loop and error taxonomy shared by
// source adapters and the model invoker.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks an error as safe to retry: timeouts, 429s,
// 5xx-equivalent provider failures.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps an error as transient with an optional HTTP-ish
// status code for diagnostics.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// TerminalKind classifies failures that must never be retried.
type TerminalKind string

const (
	TerminalAuth          TerminalKind = "authentication"
	TerminalBadRequest    TerminalKind = "malformed_request"
	TerminalContentPolicy TerminalKind = "content_policy"
)

// TerminalError marks a model or source failure that retrying cannot fix.
// It propagates immediately to the orchestrator.
type TerminalError struct {
	Kind TerminalKind
	Err  error
}

func (e *TerminalError) Error() string { return string(e.Kind) + ": " + e.Err.Error() }
func (e *TerminalError) Unwrap() error { return e.Err }

// NewTerminalError wraps an error as terminal with its taxonomy kind.
func NewTerminalError(kind TerminalKind, err error) *TerminalError {
	return &TerminalError{Kind: kind, Err: err}
}

// IsTerminal reports whether the chain contains a TerminalError.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}

// IsTransient reports whether the error is safe to retry. Terminal errors
// and context cancellation are never transient; explicit TransientError
// wrappers and common network failure patterns are.
func IsTransient(err error) bool {
	if err == nil || IsTerminal(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// TransientStatus reports whether an HTTP status code indicates a
// retryable server-side condition.
func TransientStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
