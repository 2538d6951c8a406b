package resilience

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(NewTransientError(errors.New("overloaded"), 529)))
	assert.False(t, IsTransient(NewTerminalError(TerminalAuth, errors.New("bad key"))))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(errors.New("read tcp: i/o timeout")))
	assert.False(t, IsTransient(errors.New("invalid request")))
}

func TestIsTransientThroughWrapping(t *testing.T) {
	inner := NewTransientError(errors.New("overloaded"), 503)
	wrapped := eris.Wrap(inner, "serper: search")
	assert.True(t, IsTransient(wrapped))

	terminal := NewTerminalError(TerminalBadRequest, errors.New("bad json"))
	assert.False(t, IsTransient(fmt.Errorf("outer: %w", terminal)))
	assert.True(t, IsTerminal(fmt.Errorf("outer: %w", terminal)))
}

func TestTerminalErrorMessage(t *testing.T) {
	err := NewTerminalError(TerminalContentPolicy, errors.New("refused"))
	assert.Equal(t, "content_policy: refused", err.Error())
	assert.Equal(t, "refused", errors.Unwrap(err).Error())
}

func TestTransientStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, TransientStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, TransientStatus(code), "code %d", code)
	}
}
