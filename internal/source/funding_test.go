package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/tracxn"
)

type stubTracxn struct {
	company *tracxn.Company
	err     error
}

func (s *stubTracxn) CompanyByDomain(context.Context, string) (*tracxn.Company, error) {
	return s.company, s.err
}

func TestFundingAdapterFetch(t *testing.T) {
	stub := &stubTracxn{company: &tracxn.Company{
		Name:         "Acme Inc",
		Domain:       "acme.dev",
		FoundedYear:  1952,
		TotalFunding: &tracxn.Money{Amount: 12_500_000, Currency: "USD"},
		LatestRound: &tracxn.FundingRound{
			Name:   "Series A",
			Date:   "2024-03-01",
			Amount: &tracxn.Money{Amount: 8_000_000, Currency: "USD"},
		},
		Investors:     []tracxn.Investor{{Name: "Forge Capital"}, {Name: "Hammer Ventures"}},
		BusinessModel: "B2B manufacturing",
	}}

	rec := NewFundingAdapter(stub).Fetch(context.Background(), model.Identity{Domain: "acme.dev"})

	require.Equal(t, model.FetchOK, rec.Status)
	assert.Equal(t, "12.5M USD", rec.Payload["funding_total"])
	assert.Equal(t, "Series A (8.0M USD), 2024-03-01", rec.Payload["last_round"])
	assert.Equal(t, "Forge Capital, Hammer Ventures", rec.Payload["investors"])
	assert.Equal(t, "B2B manufacturing", rec.Payload["business_model"])
	assert.Equal(t, "1952", rec.Payload["founded"])
}

func TestFundingAdapterUndisclosed(t *testing.T) {
	stub := &stubTracxn{company: &tracxn.Company{Name: "Acme Inc", Domain: "acme.dev"}}

	rec := NewFundingAdapter(stub).Fetch(context.Background(), model.Identity{Domain: "acme.dev"})

	require.Equal(t, model.FetchPartial, rec.Status)
	assert.Equal(t, "undisclosed", rec.Payload["funding_total"])
	assert.True(t, rec.Usable())
}

func TestFundingAdapterNotTracked(t *testing.T) {
	rec := NewFundingAdapter(&stubTracxn{}).Fetch(context.Background(), model.Identity{Domain: "unknown.dev"})

	assert.Equal(t, model.FetchFailed, rec.Status)
	assert.Contains(t, rec.Error, "not tracked")
}

func TestFundingAdapterError(t *testing.T) {
	rec := NewFundingAdapter(&stubTracxn{err: errors.New("token expired")}).
		Fetch(context.Background(), model.Identity{Domain: "acme.dev"})

	assert.Equal(t, model.FetchFailed, rec.Status)
	assert.Contains(t, rec.Error, "token expired")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1.2B USD", formatMoney(&tracxn.Money{Amount: 1_200_000_000, Currency: "USD"}))
	assert.Equal(t, "3.5M EUR", formatMoney(&tracxn.Money{Amount: 3_500_000, Currency: "EUR"}))
	assert.Equal(t, "750000 USD", formatMoney(&tracxn.Money{Amount: 750_000}))
}
