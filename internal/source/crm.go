package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/salesforce"
)

// crmAccount is the SOQL projection used for prefill.
type crmAccount struct {
	Name              string  `json:"Name"`
	Website           string  `json:"Website"`
	Industry          string  `json:"Industry"`
	NumberOfEmployees int     `json:"NumberOfEmployees"`
	AnnualRevenue     float64 `json:"AnnualRevenue"`
	BillingCity       string  `json:"BillingCity"`
	BillingCountry    string  `json:"BillingCountry"`
	Description       string  `json:"Description"`
}

// CRMAdapter prefills the profile from an existing Salesforce account
// matched by website domain.
type CRMAdapter struct {
	client salesforce.Client
}

// NewCRMAdapter creates a CRM adapter over a Salesforce client.
func NewCRMAdapter(client salesforce.Client) *CRMAdapter {
	return &CRMAdapter{client: client}
}

func (a *CRMAdapter) Name() string { return "crm" }

func (a *CRMAdapter) Fetch(ctx context.Context, id model.Identity) model.RawRecord {
	start := time.Now()

	soql := fmt.Sprintf(
		"SELECT Name, Website, Industry, NumberOfEmployees, AnnualRevenue, BillingCity, BillingCountry, Description FROM Account WHERE Website LIKE '%%%s%%' LIMIT 1",
		soqlEscape(id.Domain),
	)

	// go-salesforce decodes the SOQL records array into a slice pointer.
	var accounts []crmAccount
	if err := a.client.Query(ctx, soql, &accounts); err != nil {
		return model.FailedRecord(a.Name(), start, err)
	}
	if len(accounts) == 0 {
		return model.FailedRecord(a.Name(), start, eris.Errorf("source: no crm account for domain %q", id.Domain))
	}

	acct := accounts[0]
	payload := map[string]any{
		"name": acct.Name,
	}
	if acct.Industry != "" {
		payload["industry"] = acct.Industry
	}
	if acct.Description != "" {
		payload["description"] = acct.Description
	}
	if acct.NumberOfEmployees > 0 {
		payload["employee_count"] = acct.NumberOfEmployees
	}
	if acct.AnnualRevenue > 0 {
		payload["annual_revenue"] = acct.AnnualRevenue
	}
	if hq := joinNonEmpty(acct.BillingCity, acct.BillingCountry); hq != "" {
		payload["headquarters"] = hq
	}

	return okRecord(a.Name(), start, model.FetchOK, payload)
}

// soqlEscape escapes quotes and backslashes for use inside a SOQL string
// literal.
func soqlEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
