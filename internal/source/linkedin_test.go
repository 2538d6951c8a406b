package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/coresignal"
)

type stubCoreSignal struct {
	profile *coresignal.CompanyProfile
	err     error
}

func (s *stubCoreSignal) CompanyProfile(context.Context, string) (*coresignal.CompanyProfile, error) {
	return s.profile, s.err
}

func TestLinkedInAdapterFetch(t *testing.T) {
	stub := &stubCoreSignal{profile: &coresignal.CompanyProfile{
		Name:          "Acme Inc",
		Description:   "Industrial anvil manufacturer.",
		Industry:      "Industrial Machinery",
		EmployeeCount: 85,
		Headquarters:  "Pittsburgh, PA",
		Founded:       "1952",
		Specialties:   "anvils, forging",
	}}

	rec := NewLinkedInAdapter(stub).Fetch(context.Background(), model.Identity{Name: "Acme"})

	require.Equal(t, model.FetchOK, rec.Status)
	assert.Equal(t, "Acme Inc", rec.Payload["name"])
	assert.Equal(t, "Industrial Machinery", rec.Payload["industry"])
	assert.Equal(t, 85, rec.Payload["employee_count"])
	assert.Equal(t, "anvils, forging", rec.Payload["specialties"])
}

func TestLinkedInAdapterOmitsZeroValues(t *testing.T) {
	stub := &stubCoreSignal{profile: &coresignal.CompanyProfile{Name: "Acme Inc"}}

	rec := NewLinkedInAdapter(stub).Fetch(context.Background(), model.Identity{Name: "Acme"})

	require.Equal(t, model.FetchOK, rec.Status)
	assert.NotContains(t, rec.Payload, "employee_count")
	assert.NotContains(t, rec.Payload, "specialties")
}

func TestLinkedInAdapterNoProfile(t *testing.T) {
	rec := NewLinkedInAdapter(&stubCoreSignal{}).Fetch(context.Background(), model.Identity{Name: "Ghost Co"})

	assert.Equal(t, model.FetchFailed, rec.Status)
	assert.Contains(t, rec.Error, "no linkedin profile")
}

func TestLinkedInAdapterError(t *testing.T) {
	rec := NewLinkedInAdapter(&stubCoreSignal{err: errors.New("rate limited")}).
		Fetch(context.Background(), model.Identity{Name: "Acme"})

	assert.Equal(t, model.FetchFailed, rec.Status)
	assert.Contains(t, rec.Error, "rate limited")
}
