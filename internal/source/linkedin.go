package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/coresignal"
)

// LinkedInAdapter fetches the company's LinkedIn-derived profile from
// CoreSignal.
type LinkedInAdapter struct {
	client coresignal.Client
}

// NewLinkedInAdapter creates a LinkedIn adapter over a CoreSignal client.
func NewLinkedInAdapter(client coresignal.Client) *LinkedInAdapter {
	return &LinkedInAdapter{client: client}
}

func (a *LinkedInAdapter) Name() string { return "linkedin" }

func (a *LinkedInAdapter) Fetch(ctx context.Context, id model.Identity) model.RawRecord {
	start := time.Now()

	profile, err := a.client.CompanyProfile(ctx, id.Name)
	if err != nil {
		return model.FailedRecord(a.Name(), start, err)
	}
	if profile == nil {
		return model.FailedRecord(a.Name(), start, eris.Errorf("source: no linkedin profile for %q", id.Name))
	}

	payload := map[string]any{
		"name":         profile.Name,
		"description":  profile.Description,
		"industry":     profile.Industry,
		"headquarters": profile.Headquarters,
		"founded":      profile.Founded,
	}
	if profile.EmployeeCount > 0 {
		payload["employee_count"] = profile.EmployeeCount
	}
	if profile.Specialties != "" {
		payload["specialties"] = profile.Specialties
	}

	return okRecord(a.Name(), start, model.FetchOK, payload)
}
