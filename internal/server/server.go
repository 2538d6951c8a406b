// Package server exposes the screening pipeline as an asynchronous HTTP
// job API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/internal/store"
)

// Screener runs one screening request to completion.
type Screener interface {
	Screen(ctx context.Context, identifier string, opts model.Options) *model.ScreeningResult
}

// Server handles the job API. Jobs run in background goroutines bound to
// the server's base context, so in-flight screenings stop on shutdown.
type Server struct {
	screener Screener
	store    store.Store
	defaults model.Options

	baseCtx context.Context
}

// New creates a Server. defaults fill per-request options the caller
// omits; baseCtx bounds background job execution.
func New(baseCtx context.Context, screener Screener, st store.Store, defaults model.Options) *Server {
	return &Server{
		screener: screener,
		store:    st,
		defaults: defaults,
		baseCtx:  baseCtx,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/generate", s.handleGenerate)
	r.Get("/job/{id}", s.handleJob)
	r.Get("/report/{id}", s.handleReport)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// generateRequest is the POST /generate body.
type generateRequest struct {
	URL     string        `json:"url"`
	Options model.Options `json:"options"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	id, err := model.DeriveIdentity(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company url")
		return
	}

	job, err := s.store.CreateJob(r.Context(), id)
	if err != nil {
		zap.L().Error("server: create job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create job")
		return
	}

	opts := s.mergeOptions(req.Options)
	go s.runJob(job.ID, req.URL, opts)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(model.JobPending),
	})
}

// runJob executes one screening in the background and settles the job.
func (s *Server) runJob(jobID, url string, opts model.Options) {
	log := zap.L().With(zap.String("job_id", jobID))

	if err := s.store.UpdateJobStatus(s.baseCtx, jobID, model.JobProcessing, ""); err != nil {
		log.Error("server: mark job processing", zap.Error(err))
		return
	}

	result := s.screener.Screen(s.baseCtx, url, opts)

	// Persist with a fresh context: the result must be stored even when
	// the base context died mid-screening.
	persistCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.CompleteJob(persistCtx, jobID, result); err != nil {
		log.Error("server: complete job", zap.Error(err))
	}
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}

	switch job.Status {
	case model.JobPending, model.JobProcessing:
		writeJSON(w, http.StatusAccepted, map[string]string{
			"job_id": job.ID,
			"status": string(job.Status),
		})
	case model.JobCompleted:
		writeJSON(w, http.StatusOK, job.Result)
	default: // failed
		status := http.StatusInternalServerError
		var failure *model.Failure
		if job.Result != nil {
			failure = job.Result.Failure
		}
		if failure != nil {
			status = failureStatus(failure.Reason)
		}
		body := map[string]any{
			"job_id": job.ID,
			"status": string(job.Status),
			"error":  job.Error,
		}
		if failure != nil {
			body["reason"] = string(failure.Reason)
		}
		writeJSON(w, status, body)
	}
}

func (s *Server) lookupJob(w http.ResponseWriter, r *http.Request) (*model.ScreeningJob, bool) {
	jobID := chi.URLParam(r, "id")
	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown job id")
			return nil, false
		}
		zap.L().Error("server: get job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load job")
		return nil, false
	}
	return job, true
}

// mergeOptions overlays request options on the server defaults.
func (s *Server) mergeOptions(req model.Options) model.Options {
	opts := s.defaults
	if req.TimeoutSeconds > 0 {
		opts.TimeoutSeconds = req.TimeoutSeconds
	}
	if len(req.Sources) > 0 {
		opts.Sources = req.Sources
	}
	if req.MaxModelRetries > 0 {
		opts.MaxModelRetries = req.MaxModelRetries
	}
	if req.MaxValidationRetries > 0 {
		opts.MaxValidationRetries = req.MaxValidationRetries
	}
	return opts
}

// failureStatus maps the failure taxonomy onto HTTP statuses.
func failureStatus(reason model.FailureReason) int {
	switch reason {
	case model.ReasonNoData:
		return http.StatusUnprocessableEntity
	case model.ReasonModelUnavailable:
		return http.StatusBadGateway
	case model.ReasonValidationExhausted:
		return http.StatusBadGateway
	case model.ReasonDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
