package invoke

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/resilience"
	"github.com/sells-group/screener/pkg/anthropic"
)

// scriptedClient returns one response or error per call, in order. The last
// entry repeats.
type scriptedClient struct {
	mu      sync.Mutex
	calls   int
	replies []func() (*anthropic.MessageResponse, error)
}

func (c *scriptedClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.calls
	if idx >= len(c.replies) {
		idx = len(c.replies) - 1
	}
	c.calls++
	return c.replies[idx]()
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func ok(text string) func() (*anthropic.MessageResponse, error) {
	return func() (*anthropic.MessageResponse, error) {
		return &anthropic.MessageResponse{Text: text, Model: "claude-sonnet-4-5-20250929"}, nil
	}
}

func transient() func() (*anthropic.MessageResponse, error) {
	return func() (*anthropic.MessageResponse, error) {
		return nil, resilience.NewTransientError(eris.New("overloaded"), 529)
	}
}

func terminal() func() (*anthropic.MessageResponse, error) {
	return func() (*anthropic.MessageResponse, error) {
		return nil, resilience.NewTerminalError(resilience.TerminalAuth, eris.New("bad key"))
	}
}

func testConfig() Config {
	return Config{RPS: 1000, MaxAttempts: 3, RetryBackoff: time.Millisecond}
}

func userMessage() []anthropic.Message {
	return []anthropic.Message{{Role: "user", Content: "screen this company"}}
}

func TestInvokeSuccessFirstAttempt(t *testing.T) {
	client := &scriptedClient{replies: []func() (*anthropic.MessageResponse, error){ok(`{"summary":"fine"}`)}}
	iv := New(client, testConfig())

	res, err := iv.Invoke(context.Background(), "system", userMessage(), 0)
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"fine"}`, res.Text)
	assert.Equal(t, 0, res.Retries)
	assert.Equal(t, 1, client.callCount())
}

func TestInvokeRetriesTransientThenSucceeds(t *testing.T) {
	client := &scriptedClient{replies: []func() (*anthropic.MessageResponse, error){
		transient(), transient(), ok("done"),
	}}
	iv := New(client, testConfig())

	res, err := iv.Invoke(context.Background(), "system", userMessage(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Retries)
	assert.Equal(t, 3, client.callCount())
}

func TestInvokeExhaustsTransientRetries(t *testing.T) {
	client := &scriptedClient{replies: []func() (*anthropic.MessageResponse, error){transient()}}
	iv := New(client, testConfig())

	_, err := iv.Invoke(context.Background(), "system", userMessage(), 0)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	// Exactly MaxAttempts calls, no more.
	assert.Equal(t, 3, client.callCount())
}

func TestInvokeTerminalErrorNoRetry(t *testing.T) {
	client := &scriptedClient{replies: []func() (*anthropic.MessageResponse, error){terminal()}}
	iv := New(client, testConfig())

	_, err := iv.Invoke(context.Background(), "system", userMessage(), 0)
	require.Error(t, err)
	assert.True(t, resilience.IsTerminal(err))
	assert.Equal(t, 1, client.callCount())
}

func TestInvokeContextCancelled(t *testing.T) {
	client := &scriptedClient{replies: []func() (*anthropic.MessageResponse, error){ok("never")}}
	iv := New(client, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := iv.Invoke(ctx, "system", userMessage(), 0)
	require.Error(t, err)
}

func TestInvokeEmptyConversation(t *testing.T) {
	iv := New(&scriptedClient{replies: []func() (*anthropic.MessageResponse, error){ok("x")}}, testConfig())

	_, err := iv.Invoke(context.Background(), "system", nil, 0)
	require.Error(t, err)
}

func TestInvokeCapsInFlight(t *testing.T) {
	release := make(chan struct{})
	var active, peak int
	var mu sync.Mutex

	client := &scriptedClient{replies: []func() (*anthropic.MessageResponse, error){
		func() (*anthropic.MessageResponse, error) {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()
			<-release
			mu.Lock()
			active--
			mu.Unlock()
			return &anthropic.MessageResponse{Text: "ok"}, nil
		},
	}}

	cfg := testConfig()
	cfg.MaxInFlight = 2
	iv := New(client, cfg)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = iv.Invoke(context.Background(), "system", userMessage(), 0)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2)
	assert.Equal(t, 5, client.callCount())
}
