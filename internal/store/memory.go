package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/screener/internal/model"
)

// MemoryStore is an in-process Store for tests and single-shot CLI runs.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]model.ScreeningJob
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]model.ScreeningJob)}
}

func (s *MemoryStore) CreateJob(_ context.Context, id model.Identity) (*model.ScreeningJob, error) {
	now := time.Now().UTC()
	job := model.ScreeningJob{
		ID:        uuid.NewString(),
		Status:    model.JobPending,
		Identity:  id,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return &job, nil
}

func (s *MemoryStore) UpdateJobStatus(_ context.Context, jobID string, status model.JobStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	s.jobs[jobID] = job
	return nil
}

func (s *MemoryStore) CompleteJob(_ context.Context, jobID string, result *model.ScreeningResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.Status = settledStatus(result)
	job.Error = resultError(result)
	job.Result = result
	job.UpdatedAt = time.Now().UTC()
	s.jobs[jobID] = job
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, jobID string) (*model.ScreeningJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

func (s *MemoryStore) ListJobs(_ context.Context, filter JobFilter) ([]model.ScreeningJob, error) {
	s.mu.RLock()
	var jobs []model.ScreeningJob
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if filter.Domain != "" && !strings.Contains(job.Identity.Domain, filter.Domain) {
			continue
		}
		jobs = append(jobs, job)
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(jobs) {
			return nil, nil
		}
		jobs = jobs[filter.Offset:]
	}
	if filter.Limit > 0 && len(jobs) > filter.Limit {
		jobs = jobs[:filter.Limit]
	}
	return jobs, nil
}

func (s *MemoryStore) Migrate(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
