package model

import (
	"time"

	"github.com/sells-group/screener/internal/report"
)

// FailureReason classifies a terminal screening failure so the HTTP layer
// can map it to a status code deterministically.
type FailureReason string

const (
	ReasonNoData              FailureReason = "no_data"
	ReasonModelUnavailable    FailureReason = "model_unavailable"
	ReasonValidationExhausted FailureReason = "validation_exhausted"
	ReasonDeadlineExceeded    FailureReason = "deadline_exceeded"
)

// Failure carries the taxonomy kind plus a human-readable message. Raw
// error chains never cross the outbound boundary.
type Failure struct {
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message"`
}

// OutcomeStatus describes how a single source fared within a request.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
	OutcomeOmitted OutcomeStatus = "omitted"
)

// SourceOutcome is the per-source diagnostic entry in a ScreeningResult.
type SourceOutcome struct {
	Source    string        `json:"source"`
	Status    OutcomeStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	LatencyMS int64         `json:"latency_ms,omitempty"`
}

// Usage totals the model tokens a request consumed across the initial
// invocation and every correction round.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// ScreeningResult is the final per-request outcome. Exactly one of Report
// and Failure is set. Immutable once returned by the orchestrator.
type ScreeningResult struct {
	ID                string          `json:"id"`
	Identity          Identity        `json:"identity"`
	Report            *report.Report  `json:"report,omitempty"`
	Failure           *Failure        `json:"failure,omitempty"`
	Warnings          []string        `json:"warnings,omitempty"`
	Sources           []SourceOutcome `json:"sources"`
	LatencyMS         int64           `json:"latency_ms"`
	ModelRetries      int             `json:"model_retries"`
	ValidationRetries int             `json:"validation_retries"`
	Usage             Usage           `json:"usage"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Succeeded reports whether the request produced a validated report.
func (r *ScreeningResult) Succeeded() bool {
	return r.Report != nil && r.Failure == nil
}

// JobStatus tracks the lifecycle of an asynchronous screening job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// ScreeningJob tracks one asynchronous screening request from the serve
// surface. The job carries the result once the pipeline settles.
type ScreeningJob struct {
	ID        string           `json:"id"`
	Status    JobStatus        `json:"status"`
	Identity  Identity         `json:"identity"`
	Result    *ScreeningResult `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
