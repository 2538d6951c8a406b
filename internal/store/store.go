// Package store persists screening jobs and their results.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/model"
)

// ErrNotFound is returned when a job does not exist.
var ErrNotFound = eris.New("store: not found")

// JobFilter specifies criteria for listing jobs.
type JobFilter struct {
	Status model.JobStatus `json:"status,omitempty"`
	Domain string          `json:"domain,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for screening jobs.
type Store interface {
	// CreateJob records a new pending job.
	CreateJob(ctx context.Context, id model.Identity) (*model.ScreeningJob, error)

	// UpdateJobStatus moves a job through its lifecycle. errMsg is stored
	// only for failed transitions.
	UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus, errMsg string) error

	// CompleteJob stores the result and settles the job status from the
	// result outcome.
	CompleteJob(ctx context.Context, jobID string, result *model.ScreeningResult) error

	// GetJob returns a job with its result when settled. ErrNotFound when
	// the id is unknown.
	GetJob(ctx context.Context, jobID string) (*model.ScreeningJob, error)

	// ListJobs returns jobs matching the filter, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]model.ScreeningJob, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// settledStatus derives the terminal job status from a result.
func settledStatus(result *model.ScreeningResult) model.JobStatus {
	if result.Succeeded() {
		return model.JobCompleted
	}
	return model.JobFailed
}

// resultError extracts the stored error message for a settled job.
func resultError(result *model.ScreeningResult) string {
	if result.Failure == nil {
		return ""
	}
	return result.Failure.Message
}
