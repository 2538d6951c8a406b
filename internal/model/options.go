package model

import "time"

// Options is the per-request configuration bundle accepted by the inbound
// Screen interface. Zero values take the defaults below.
type Options struct {
	// TimeoutSeconds is the overall request deadline.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	// Sources restricts the request to a subset of registered adapters.
	// Empty means all registered sources.
	Sources []string `json:"sources,omitempty"`

	// MaxModelRetries bounds retries of transient model failures.
	MaxModelRetries int `json:"max_model_retries,omitempty"`

	// MaxValidationRetries bounds reformulation attempts after schema
	// validation failures.
	MaxValidationRetries int `json:"max_validation_retries,omitempty"`
}

const (
	defaultTimeoutSeconds       = 120
	defaultMaxModelRetries      = 3
	defaultMaxValidationRetries = 3
)

// WithDefaults fills unset options with their defaults.
func (o Options) WithDefaults() Options {
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = defaultTimeoutSeconds
	}
	if o.MaxModelRetries <= 0 {
		o.MaxModelRetries = defaultMaxModelRetries
	}
	if o.MaxValidationRetries <= 0 {
		o.MaxValidationRetries = defaultMaxValidationRetries
	}
	return o
}

// Deadline returns the overall request deadline as a duration.
func (o Options) Deadline() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}
