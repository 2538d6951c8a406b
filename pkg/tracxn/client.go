// Package tracxn provides a client for the Tracxn company intelligence API,
// used as the funding data source.
package tracxn

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/resilience"
)

const defaultBaseURL = "https://platform.tracxn.com/api/2.2"

// Client fetches funding data from Tracxn.
type Client interface {
	// CompanyByDomain returns the company record matching a domain, or nil
	// when the domain is unknown to Tracxn.
	CompanyByDomain(ctx context.Context, domain string) (*Company, error)
}

// Company is the subset of the Tracxn company record the screener consumes.
type Company struct {
	Name          string         `json:"name"`
	Domain        string         `json:"domain"`
	FoundedYear   int            `json:"foundedYear"`
	TotalFunding  *Money         `json:"totalEquityFunding"`
	LatestRound   *FundingRound  `json:"latestEquityRound"`
	Investors     []Investor     `json:"investorList"`
	BusinessModel string         `json:"businessModel"`
	Extra         map[string]any `json:"-"`
}

// Money is an amount with its currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// FundingRound is a single financing event.
type FundingRound struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Amount *Money `json:"amount"`
}

// Investor is a participant in one or more rounds.
type Investor struct {
	Name string `json:"name"`
}

type searchResponse struct {
	Result []Company `json:"result"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Tracxn API client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) CompanyByDomain(ctx context.Context, domain string) (*Company, error) {
	payload, err := json.Marshal(map[string]any{
		"filter": map[string]any{"domain": []string{domain}},
		"size":   1,
	})
	if err != nil {
		return nil, eris.Wrap(err, "tracxn: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/companies", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "tracxn: create request")
	}
	req.Header.Set("accessToken", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "tracxn: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "tracxn: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("tracxn: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.TransientStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "tracxn: unmarshal response")
	}
	if len(result.Result) == 0 {
		return nil, nil
	}

	return &result.Result[0], nil
}
