package coresignal

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

func TestCompanyProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/linkedin/company/search":
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Acme", req["query"])
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{{"id": 123}},
			})
		case "/linkedin/company/123":
			json.NewEncoder(w).Encode(CompanyProfile{
				ID:            123,
				Name:          "Acme Inc",
				Industry:      "Industrial Machinery",
				EmployeeCount: 85,
				Founded:       "1952",
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	profile, err := c.CompanyProfile(context.Background(), "Acme")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Acme Inc", profile.Name)
	assert.Equal(t, 85, profile.EmployeeCount)
}

func TestCompanyProfileNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	profile, err := c.CompanyProfile(context.Background(), "Nonexistent Co")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestCompanyProfileTransientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.CompanyProfile(context.Background(), "Acme")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}
