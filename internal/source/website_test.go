package source

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/scraper"
)

type stubScraper struct {
	pages map[string]*scraper.Page
}

func (s stubScraper) Read(_ context.Context, url string) (*scraper.Page, error) {
	page, ok := s.pages[url]
	if !ok {
		return nil, eris.Errorf("scraper: unexpected status 404: %s", url)
	}
	return page, nil
}

func TestWebsiteAdapterHomeAndAbout(t *testing.T) {
	a := NewWebsiteAdapter(stubScraper{pages: map[string]*scraper.Page{
		"https://acme.dev": {Title: "Acme", Content: "We make anvils."},
		"https://acme.dev/about": {Content: "Founded in a garage."},
	}})

	rec := a.Fetch(context.Background(), model.Identity{URL: "https://acme.dev", Name: "Acme", Domain: "acme.dev"})

	require.Equal(t, model.FetchOK, rec.Status)
	assert.Equal(t, "Acme", rec.Payload["title"])
	assert.Equal(t, "We make anvils.", rec.Payload["content"])
	assert.Equal(t, "Founded in a garage.", rec.Payload["about"])
	assert.True(t, rec.Usable())
}

func TestWebsiteAdapterPartialWithoutAbout(t *testing.T) {
	a := NewWebsiteAdapter(stubScraper{pages: map[string]*scraper.Page{
		"https://acme.dev": {Title: "Acme", Content: "We make anvils."},
	}})

	rec := a.Fetch(context.Background(), model.Identity{URL: "https://acme.dev", Name: "Acme", Domain: "acme.dev"})

	require.Equal(t, model.FetchPartial, rec.Status)
	assert.NotContains(t, rec.Payload, "about")
	assert.True(t, rec.Usable())
}

func TestWebsiteAdapterFailure(t *testing.T) {
	a := NewWebsiteAdapter(stubScraper{})

	rec := a.Fetch(context.Background(), model.Identity{URL: "https://acme.dev"})

	require.Equal(t, model.FetchFailed, rec.Status)
	assert.NotEmpty(t, rec.Error)
	assert.False(t, rec.Usable())
}
