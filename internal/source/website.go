package source

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/scraper"
)

// aboutPaths are tried in order after the landing page. The first one that
// resolves wins.
var aboutPaths = []string{"/about", "/about-us", "/company"}

// WebsiteAdapter scrapes the company's own site: the landing page plus the
// first about-style page that resolves.
type WebsiteAdapter struct {
	client scraper.Client
}

// NewWebsiteAdapter creates a website adapter over a scraping client.
func NewWebsiteAdapter(client scraper.Client) *WebsiteAdapter {
	return &WebsiteAdapter{client: client}
}

func (a *WebsiteAdapter) Name() string { return "website" }

func (a *WebsiteAdapter) Fetch(ctx context.Context, id model.Identity) model.RawRecord {
	start := time.Now()

	home, err := a.client.Read(ctx, id.URL)
	if err != nil {
		return model.FailedRecord(a.Name(), start, err)
	}

	payload := map[string]any{
		"title":   home.Title,
		"content": home.Content,
	}

	status := model.FetchOK
	base := strings.TrimRight(id.URL, "/")
	about := a.readFirst(ctx, base)
	if about == "" {
		// The landing page alone is still usable.
		status = model.FetchPartial
	} else {
		payload["about"] = about
	}

	return okRecord(a.Name(), start, status, payload)
}

func (a *WebsiteAdapter) readFirst(ctx context.Context, base string) string {
	for _, path := range aboutPaths {
		page, err := a.client.Read(ctx, base+path)
		if err != nil {
			zap.L().Debug("source: about page not readable",
				zap.String("url", base+path),
				zap.Error(err),
			)
			continue
		}
		if strings.TrimSpace(page.Content) != "" {
			return page.Content
		}
	}
	return ""
}
