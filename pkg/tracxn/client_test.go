package tracxn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/resilience"
)

func TestCompanyByDomain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("accessToken"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		filter := req["filter"].(map[string]any)
		assert.Equal(t, []any{"acme.dev"}, filter["domain"])

		json.NewEncoder(w).Encode(searchResponse{
			Result: []Company{{
				Name:         "Acme Inc",
				Domain:       "acme.dev",
				FoundedYear:  1952,
				TotalFunding: &Money{Amount: 12_500_000, Currency: "USD"},
				LatestRound:  &FundingRound{Name: "Series A", Date: "2024-03-01"},
				Investors:    []Investor{{Name: "Forge Capital"}},
			}},
		})
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	company, err := c.CompanyByDomain(context.Background(), "acme.dev")
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, "Acme Inc", company.Name)
	assert.Equal(t, 12_500_000.0, company.TotalFunding.Amount)
	assert.Equal(t, "Series A", company.LatestRound.Name)
}

func TestCompanyByDomainNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	company, err := c.CompanyByDomain(context.Background(), "unknown.dev")
	require.NoError(t, err)
	assert.Nil(t, company)
}

func TestCompanyByDomainTransientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := c.CompanyByDomain(context.Background(), "acme.dev")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}
