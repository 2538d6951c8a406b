package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/serper"
)

type stubSerper struct {
	resp     *serper.SearchResponse
	err      error
	gotQuery string
}

func (s *stubSerper) Search(_ context.Context, query string, _ int) (*serper.SearchResponse, error) {
	s.gotQuery = query
	return s.resp, s.err
}

func TestSearchAdapterFetch(t *testing.T) {
	stub := &stubSerper{resp: &serper.SearchResponse{
		Organic: []serper.OrganicResult{
			{Title: "Acme Inc", Link: "https://acme.dev", Snippet: "Anvils since 1952."},
			{Title: "No snippet", Link: "https://x.dev"},
			{Title: "Review", Link: "https://reviews.dev", Snippet: "Great anvils."},
		},
		KnowledgeGraph: map[string]any{"title": "Acme Inc"},
	}}

	rec := NewSearchAdapter(stub).Fetch(context.Background(), model.Identity{Name: "Acme", Domain: "acme.dev"})

	require.Equal(t, model.FetchOK, rec.Status)
	assert.Equal(t, `"Acme" company acme.dev`, stub.gotQuery)

	snippets := rec.Payload["snippets"].(string)
	assert.Contains(t, snippets, "Acme Inc (https://acme.dev): Anvils since 1952.")
	assert.Contains(t, snippets, "Great anvils.")
	// Hits without snippets are dropped.
	assert.NotContains(t, snippets, "No snippet")

	kg := rec.Payload["knowledge_graph"].(map[string]any)
	assert.Equal(t, "Acme Inc", kg["title"])
}

func TestSearchAdapterFailure(t *testing.T) {
	stub := &stubSerper{err: errors.New("quota exceeded")}

	rec := NewSearchAdapter(stub).Fetch(context.Background(), model.Identity{Name: "Acme", Domain: "acme.dev"})

	assert.Equal(t, model.FetchFailed, rec.Status)
	assert.Contains(t, rec.Error, "quota exceeded")
	assert.False(t, rec.Usable())
}
