// Package screen orchestrates one screening request end to end: fetch,
// normalize, prompt, invoke, validate.
package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/screener/internal/invoke"
	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/internal/normalize"
	"github.com/sells-group/screener/internal/prompt"
	"github.com/sells-group/screener/internal/report"
	"github.com/sells-group/screener/internal/resilience"
	"github.com/sells-group/screener/internal/source"
	"github.com/sells-group/screener/pkg/anthropic"
)

// Stage names the pipeline phases for logging and diagnostics.
type Stage string

const (
	StageFetching    Stage = "fetching"
	StageNormalizing Stage = "normalizing"
	StagePrompting   Stage = "prompting"
	StageInvoking    Stage = "invoking"
	StageValidating  Stage = "validating"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// ModelInvoker is the slice of the invoker the orchestrator needs.
type ModelInvoker interface {
	Invoke(ctx context.Context, system string, messages []anthropic.Message, maxAttempts int) (*invoke.Result, error)
}

// Orchestrator runs screening requests. Safe for concurrent use; all
// per-request state lives on the stack.
type Orchestrator struct {
	registry   *source.Registry
	normalizer *normalize.Normalizer
	invoker    ModelInvoker
	schema     *report.Schema
	builder    *prompt.Builder
}

// New creates an Orchestrator. promptMaxChars <= 0 selects the builder
// default.
func New(registry *source.Registry, normalizer *normalize.Normalizer, invoker ModelInvoker, schema *report.Schema, promptMaxChars int) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		normalizer: normalizer,
		invoker:    invoker,
		schema:     schema,
		builder:    prompt.NewBuilder(schema, promptMaxChars),
	}
}

// Screen runs the full pipeline for one company identifier. It always
// returns a result: terminal problems surface as a Failure with a taxonomy
// reason, never as a Go error. The context bounds the whole request on top
// of the per-request timeout option.
func (o *Orchestrator) Screen(ctx context.Context, identifier string, opts model.Options) *model.ScreeningResult {
	opts = opts.WithDefaults()
	start := time.Now()

	result := &model.ScreeningResult{
		ID:        uuid.NewString(),
		CreatedAt: start.UTC(),
	}
	log := zap.L().With(zap.String("screening_id", result.ID), zap.String("identifier", identifier))

	finish := func(r *model.ScreeningResult) *model.ScreeningResult {
		r.LatencyMS = time.Since(start).Milliseconds()
		if r.Succeeded() {
			log.Info("screening done",
				zap.String("stage", string(StageDone)),
				zap.Int64("latency_ms", r.LatencyMS),
				zap.Int64("input_tokens", r.Usage.InputTokens),
				zap.Int64("output_tokens", r.Usage.OutputTokens),
			)
		} else {
			log.Warn("screening failed",
				zap.String("stage", string(StageFailed)),
				zap.String("reason", string(r.Failure.Reason)),
				zap.Int64("latency_ms", r.LatencyMS),
			)
		}
		return r
	}
	fail := func(reason model.FailureReason, msg string) *model.ScreeningResult {
		result.Failure = &model.Failure{Reason: reason, Message: msg}
		return finish(result)
	}

	id, err := model.DeriveIdentity(identifier)
	if err != nil {
		return fail(model.ReasonNoData, fmt.Sprintf("invalid company identifier %q", identifier))
	}
	result.Identity = id

	adapters, err := o.registry.Select(opts.Sources)
	if err != nil {
		return fail(model.ReasonNoData, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Deadline())
	defer cancel()

	log.Info("screening started", zap.String("stage", string(StageFetching)), zap.Int("sources", len(adapters)))
	records := o.fetchAll(ctx, id, adapters)
	result.Sources, result.Warnings = summarize(o.registry, adapters, records)

	log.Debug("stage transition", zap.String("stage", string(StageNormalizing)))
	profile, err := o.normalizer.Merge(id, records)
	if err != nil {
		if ctx.Err() != nil {
			// Every source ran out of time, not out of data.
			return fail(model.ReasonDeadlineExceeded, "request deadline expired while fetching sources")
		}
		return fail(model.ReasonNoData, "no source returned usable data for this company")
	}

	log.Debug("stage transition", zap.String("stage", string(StagePrompting)))
	p, err := o.builder.Build(profile)
	if err != nil {
		return fail(model.ReasonNoData, err.Error())
	}
	if len(p.Truncated) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("prompt truncated fields: %s", strings.Join(p.Truncated, ", ")))
	}
	log.Debug("prompt built", zap.String("prompt_hash", p.Hash), zap.Int("prompt_chars", len(p.User)))

	rep, err := o.invokeAndValidate(ctx, log, p, opts, result)
	if err != nil {
		return finish(result)
	}

	result.Report = rep
	return finish(result)
}

// fetchAll runs every adapter concurrently under the shared deadline.
// Adapter panics are not guarded; adapters must return failed records
// instead of panicking.
func (o *Orchestrator) fetchAll(ctx context.Context, id model.Identity, adapters []source.Adapter) []model.RawRecord {
	records := make([]model.RawRecord, len(adapters))

	g, ctx := errgroup.WithContext(ctx)
	for i, a := range adapters {
		g.Go(func() error {
			records[i] = a.Fetch(ctx, id)
			return nil
		})
	}
	// Adapters never return errors, so Wait only synchronizes.
	_ = g.Wait()

	return records
}

// summarize builds the per-source diagnostics: one entry per registered
// source, with sources outside the requested subset marked omitted.
func summarize(registry *source.Registry, selected []source.Adapter, records []model.RawRecord) ([]model.SourceOutcome, []string) {
	selectedNames := make(map[string]int, len(selected))
	for i, a := range selected {
		selectedNames[a.Name()] = i
	}

	var outcomes []model.SourceOutcome
	var warnings []string
	for _, name := range registry.Names() {
		idx, ok := selectedNames[name]
		if !ok {
			outcomes = append(outcomes, model.SourceOutcome{Source: name, Status: model.OutcomeOmitted})
			continue
		}
		rec := records[idx]
		outcome := model.SourceOutcome{Source: name, LatencyMS: rec.LatencyMS}
		if rec.Usable() {
			outcome.Status = model.OutcomeSuccess
		} else {
			outcome.Status = model.OutcomeFailure
			outcome.Error = rec.Error
			warnings = append(warnings, fmt.Sprintf("source %s failed: %s", name, rec.Error))
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, warnings
}

// invokeAndValidate drives the model conversation: the initial request plus
// bounded correction rounds after validation failures. On failure it sets
// result.Failure and returns a non-nil error.
func (o *Orchestrator) invokeAndValidate(ctx context.Context, log *zap.Logger, p prompt.Prompt, opts model.Options, result *model.ScreeningResult) (*report.Report, error) {
	messages := []anthropic.Message{{Role: "user", Content: p.User}}

	// Correction rounds re-invoke the model, so usage accumulates across
	// the whole conversation.
	var usage anthropic.TokenUsage

	// One initial attempt plus up to MaxValidationRetries corrections.
	for round := 0; round <= opts.MaxValidationRetries; round++ {
		log.Debug("stage transition", zap.String("stage", string(StageInvoking)), zap.Int("round", round))

		res, err := o.invoker.Invoke(ctx, p.System, messages, opts.MaxModelRetries)
		if err != nil {
			result.Failure = o.classifyInvokeFailure(ctx, err)
			return nil, err
		}
		result.ModelRetries += res.Retries
		usage.Add(res.Usage)
		result.Usage = model.Usage{InputTokens: usage.InputTokens, OutputTokens: usage.OutputTokens}

		log.Debug("stage transition", zap.String("stage", string(StageValidating)), zap.Int("round", round))
		rep, err := o.schema.Parse(res.Text)
		if err == nil {
			return rep, nil
		}

		var verr *report.ValidationError
		if !errors.As(err, &verr) {
			result.Failure = &model.Failure{
				Reason:  model.ReasonValidationExhausted,
				Message: err.Error(),
			}
			return nil, err
		}

		log.Warn("report validation failed",
			zap.Int("round", round),
			zap.Strings("issues", verr.Issues),
		)

		if round == opts.MaxValidationRetries {
			result.ValidationRetries = round
			result.Failure = &model.Failure{
				Reason: model.ReasonValidationExhausted,
				Message: fmt.Sprintf("model output failed schema validation after %d attempts: %s",
					round+1, strings.Join(verr.Issues, "; ")),
			}
			return nil, err
		}

		result.ValidationRetries = round + 1
		messages = append(messages,
			anthropic.Message{Role: "assistant", Content: res.Text},
			anthropic.Message{Role: "user", Content: report.CorrectionPrompt(verr)},
		)
	}

	// Unreachable: the loop always returns.
	return nil, errors.New("screen: validation loop exited unexpectedly")
}

// classifyInvokeFailure maps an invoker error onto the failure taxonomy.
func (o *Orchestrator) classifyInvokeFailure(ctx context.Context, err error) *model.Failure {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return &model.Failure{
			Reason:  model.ReasonDeadlineExceeded,
			Message: "request deadline expired while awaiting the model",
		}
	}
	if resilience.IsTerminal(err) {
		return &model.Failure{
			Reason:  model.ReasonModelUnavailable,
			Message: "model rejected the request: " + err.Error(),
		}
	}
	return &model.Failure{
		Reason:  model.ReasonModelUnavailable,
		Message: "model unavailable after retries: " + err.Error(),
	}
}
