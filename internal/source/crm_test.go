package source

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/model"
)

type stubSalesforce struct {
	records []crmAccount
	err     error
	gotSOQL string
}

// Query mirrors the go-salesforce contract: the records array decodes
// into a pointer to a slice of record structs.
func (s *stubSalesforce) Query(_ context.Context, soql string, out any) error {
	s.gotSOQL = soql
	if s.err != nil {
		return s.err
	}
	accounts, ok := out.(*[]crmAccount)
	if !ok {
		return eris.Errorf("query target must be a record slice pointer, got %T", out)
	}
	*accounts = s.records
	return nil
}

func TestCRMAdapterPrefill(t *testing.T) {
	sf := &stubSalesforce{records: []crmAccount{{
		Name:              "Acme Ltd",
		Website:           "https://acme.dev",
		Industry:          "Manufacturing",
		NumberOfEmployees: 40,
		AnnualRevenue:     2_500_000,
		BillingCity:       "London",
		BillingCountry:    "UK",
	}}}
	a := NewCRMAdapter(sf)

	rec := a.Fetch(context.Background(), model.Identity{Name: "Acme", Domain: "acme.dev"})

	require.Equal(t, model.FetchOK, rec.Status)
	assert.Equal(t, "Acme Ltd", rec.Payload["name"])
	assert.Equal(t, "Manufacturing", rec.Payload["industry"])
	assert.Equal(t, 40, rec.Payload["employee_count"])
	assert.Equal(t, "London, UK", rec.Payload["headquarters"])
	assert.Contains(t, sf.gotSOQL, "Website LIKE '%acme.dev%'")
}

func TestCRMAdapterNoAccount(t *testing.T) {
	a := NewCRMAdapter(&stubSalesforce{})

	rec := a.Fetch(context.Background(), model.Identity{Name: "Acme", Domain: "acme.dev"})

	require.Equal(t, model.FetchFailed, rec.Status)
	assert.Contains(t, rec.Error, "no crm account")
}

func TestSOQLEscape(t *testing.T) {
	assert.Equal(t, `o\'reilly.com`, soqlEscape("o'reilly.com"))
}
