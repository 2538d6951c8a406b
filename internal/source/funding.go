package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/tracxn"
)

// FundingAdapter fetches funding history from Tracxn by domain.
type FundingAdapter struct {
	client tracxn.Client
}

// NewFundingAdapter creates a funding adapter over a Tracxn client.
func NewFundingAdapter(client tracxn.Client) *FundingAdapter {
	return &FundingAdapter{client: client}
}

func (a *FundingAdapter) Name() string { return "funding" }

func (a *FundingAdapter) Fetch(ctx context.Context, id model.Identity) model.RawRecord {
	start := time.Now()

	company, err := a.client.CompanyByDomain(ctx, id.Domain)
	if err != nil {
		return model.FailedRecord(a.Name(), start, err)
	}
	if company == nil {
		return model.FailedRecord(a.Name(), start, eris.Errorf("source: domain %q not tracked", id.Domain))
	}

	payload := map[string]any{}
	if company.TotalFunding != nil {
		payload["funding_total"] = formatMoney(company.TotalFunding)
	}
	if r := company.LatestRound; r != nil {
		desc := r.Name
		if r.Amount != nil {
			desc = fmt.Sprintf("%s (%s)", r.Name, formatMoney(r.Amount))
		}
		if r.Date != "" {
			desc += ", " + r.Date
		}
		payload["last_round"] = desc
	}
	if len(company.Investors) > 0 {
		names := make([]string, 0, len(company.Investors))
		for _, inv := range company.Investors {
			names = append(names, inv.Name)
		}
		payload["investors"] = strings.Join(names, ", ")
	}
	if company.BusinessModel != "" {
		payload["business_model"] = company.BusinessModel
	}
	if company.FoundedYear > 0 {
		payload["founded"] = fmt.Sprintf("%d", company.FoundedYear)
	}

	status := model.FetchOK
	if len(payload) == 0 {
		// Tracked company with no disclosed financing.
		status = model.FetchPartial
		payload["funding_total"] = "undisclosed"
	}

	return okRecord(a.Name(), start, status, payload)
}

func formatMoney(m *tracxn.Money) string {
	currency := m.Currency
	if currency == "" {
		currency = "USD"
	}
	switch {
	case m.Amount >= 1e9:
		return fmt.Sprintf("%.1fB %s", m.Amount/1e9, currency)
	case m.Amount >= 1e6:
		return fmt.Sprintf("%.1fM %s", m.Amount/1e6, currency)
	default:
		return fmt.Sprintf("%.0f %s", m.Amount, currency)
	}
}
