package source

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/perplexity"
)

// researchQuestions are asked per company. The payload key is what the
// mapping table translates; the template receives the company name and
// domain.
var researchQuestions = []struct {
	key      string
	template string
}{
	{"business", "What products and services does %s (%s) sell, and what is its business model? Answer factually in a short paragraph."},
	{"competitors", "Who are the main competitors of %s (%s)? List company names with a one-line reason each."},
	{"team", "Who are the founders and key executives of %s (%s)? List names and roles."},
	{"financials", "What is known publicly about the revenue and financial performance of %s (%s)? Answer briefly and say if nothing is public."},
}

// ResearchAdapter asks a research model a fixed set of questions about the
// company. Questions run sequentially; a partial record is returned when
// some answers fail.
type ResearchAdapter struct {
	client perplexity.Client
}

// NewResearchAdapter creates a research adapter over a Perplexity client.
func NewResearchAdapter(client perplexity.Client) *ResearchAdapter {
	return &ResearchAdapter{client: client}
}

func (a *ResearchAdapter) Name() string { return "research" }

func (a *ResearchAdapter) Fetch(ctx context.Context, id model.Identity) model.RawRecord {
	start := time.Now()
	payload := map[string]any{}
	failures := 0

	for _, q := range researchQuestions {
		resp, err := a.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
			Messages: []perplexity.Message{
				{Role: "user", Content: fmt.Sprintf(q.template, id.Name, id.Domain)},
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			zap.L().Warn("source: research question failed",
				zap.String("question", q.key),
				zap.Error(err),
			)
			failures++
			continue
		}
		if answer := resp.Answer(); answer != "" {
			payload[q.key] = answer
		}
	}

	if len(payload) == 0 {
		return model.FailedRecord(a.Name(), start, eris.New("source: all research questions failed"))
	}

	status := model.FetchOK
	if failures > 0 || len(payload) < len(researchQuestions) {
		status = model.FetchPartial
	}
	return okRecord(a.Name(), start, status, payload)
}
