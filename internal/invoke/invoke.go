// Package invoke submits prompts to the model provider under a shared rate
// limit, a concurrency cap, and bounded retry.
package invoke

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/screener/internal/resilience"
	"github.com/sells-group/screener/pkg/anthropic"
)

// Config tunes the invoker. Zero values select the defaults.
type Config struct {
	Model       string
	MaxTokens   int64
	Temperature *float64

	// RPS and Burst feed the shared token-bucket limiter.
	RPS   float64
	Burst int

	// MaxInFlight caps concurrent provider calls across all screenings.
	MaxInFlight int

	// MaxAttempts bounds attempts per invocation, including the first.
	MaxAttempts int

	// RetryBackoff is the delay before the first retry.
	RetryBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = "claude-sonnet-4-5-20250929"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	if c.RPS <= 0 {
		c.RPS = 2
	}
	if c.Burst <= 0 {
		c.Burst = max(int(c.RPS), 1)
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 4
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	return c
}

// Result is one successful model invocation.
type Result struct {
	Text    string
	Model   string
	Retries int
	Usage   anthropic.TokenUsage
}

// Invoker serializes model access. The limiter and in-flight slots are
// shared by every screening in the process, so concurrent jobs cannot
// overrun the provider quota together.
type Invoker struct {
	client   anthropic.Client
	cfg      Config
	limiter  *rate.Limiter
	inflight chan struct{}
}

// New creates an Invoker over a model client.
func New(client anthropic.Client, cfg Config) *Invoker {
	cfg = cfg.withDefaults()
	return &Invoker{
		client:   client,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		inflight: make(chan struct{}, cfg.MaxInFlight),
	}
}

// Invoke sends one conversation to the model. Transient provider failures
// are retried with exponential backoff and jitter up to the attempt bound;
// terminal errors and context expiry return immediately. maxAttempts <= 0
// selects the configured default. The retry loop runs inside the in-flight
// slot so one logical request occupies one slot for its whole lifetime.
func (iv *Invoker) Invoke(ctx context.Context, system string, messages []anthropic.Message, maxAttempts int) (*Result, error) {
	if maxAttempts <= 0 {
		maxAttempts = iv.cfg.MaxAttempts
	}
	if len(messages) == 0 {
		return nil, eris.New("invoke: empty conversation")
	}

	select {
	case iv.inflight <- struct{}{}:
		defer func() { <-iv.inflight }()
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "invoke: wait for in-flight slot")
	}

	cfg := resilience.RetryConfig{
		MaxAttempts:    maxAttempts,
		InitialBackoff: iv.cfg.RetryBackoff,
		OnAttempt:      resilience.AttemptLogger("anthropic", "create_message"),
	}

	resp, retries, err := resilience.Do(ctx, cfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		if err := iv.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "invoke: rate limiter wait")
		}
		return iv.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       iv.cfg.Model,
			MaxTokens:   iv.cfg.MaxTokens,
			System:      system,
			Messages:    messages,
			Temperature: iv.cfg.Temperature,
		})
	})
	if err != nil {
		return nil, err
	}

	resp.Usage.LogCost(resp.Model, "screening")

	return &Result{
		Text:    resp.Text,
		Model:   resp.Model,
		Retries: retries,
		Usage:   resp.Usage,
	}, nil
}

// Model reports the configured model name.
func (iv *Invoker) Model() string { return iv.cfg.Model }
