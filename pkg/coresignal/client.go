// Package coresignal provides a client for the CoreSignal company data API,
// used as the LinkedIn data source.
package coresignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/resilience"
)

const defaultBaseURL = "https://api.coresignal.com/v1"

// Client fetches company profiles from CoreSignal.
type Client interface {
	// CompanyProfile searches for a company by name and returns the top
	// match's full profile, or nil when no match exists.
	CompanyProfile(ctx context.Context, companyName string) (*CompanyProfile, error)
}

// CompanyProfile is the subset of the CoreSignal company record the
// screener consumes.
type CompanyProfile struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Industry      string `json:"industry"`
	EmployeeCount int    `json:"employees_count"`
	Headquarters  string `json:"headquarters_new_address"`
	Founded       string `json:"founded"`
	Website       string `json:"website"`
	Type          string `json:"type"`
	Specialties   string `json:"specialties"`
}

type searchResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a CoreSignal API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
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

func (c *httpClient) CompanyProfile(ctx context.Context, companyName string) (*CompanyProfile, error) {
	payload, err := json.Marshal(map[string]any{"query": companyName, "limit": 1})
	if err != nil {
		return nil, eris.Wrap(err, "coresignal: marshal search request")
	}

	var search searchResponse
	if err := c.do(ctx, http.MethodPost, "/linkedin/company/search", payload, &search); err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		return nil, nil
	}

	var profile CompanyProfile
	path := fmt.Sprintf("/linkedin/company/%d", search.Results[0].ID)
	if err := c.do(ctx, http.MethodGet, path, nil, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrapf(err, "coresignal: create request %s", path)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "coresignal: send request %s", path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "coresignal: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("coresignal: unexpected status %d from %s: %s", resp.StatusCode, path, string(respBody))
		if resilience.TransientStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrapf(err, "coresignal: unmarshal response from %s", path)
	}
	return nil
}
