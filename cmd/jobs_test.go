package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/screener/internal/model"
)

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("123456789abcdef"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatJobsList(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	jobs := []model.ScreeningJob{
		{
			ID:        "aaaabbbb-cccc-dddd-eeee-ffff00001111",
			Status:    model.JobCompleted,
			Identity:  model.Identity{URL: "https://acme.dev", Domain: "acme.dev"},
			CreatedAt: now,
			UpdatedAt: now.Add(42 * time.Second),
		},
		{
			ID:       "11112222-3333-4444-5555-666677778888",
			Status:   model.JobFailed,
			Identity: model.Identity{URL: "https://widget.io", Domain: "widget.io"},
			Result: &model.ScreeningResult{
				Failure: &model.Failure{Reason: model.ReasonNoData, Message: "nothing usable"},
			},
			CreatedAt: now,
			UpdatedAt: now.Add(5 * time.Second),
		},
	}

	var buf bytes.Buffer
	formatJobsList(&buf, jobs)
	out := buf.String()

	assert.Contains(t, out, "aaaabbbb")
	assert.Contains(t, out, "acme.dev")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "no_data")
	assert.Contains(t, out, "42s")
	// Full UUIDs never appear.
	assert.NotContains(t, out, "aaaabbbb-cccc")
}

func TestFormatJobsListTruncatesLongNames(t *testing.T) {
	jobs := []model.ScreeningJob{{
		ID:       "job-1",
		Status:   model.JobPending,
		Identity: model.Identity{Domain: strings.Repeat("x", 40) + ".com"},
	}}

	var buf bytes.Buffer
	formatJobsList(&buf, jobs)

	assert.Contains(t, buf.String(), strings.Repeat("x", 27)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 40))
}
