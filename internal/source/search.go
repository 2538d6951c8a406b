package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/pkg/serper"
)

const searchResultCount = 10

// SearchAdapter runs a web search for the company and collects the organic
// snippets plus the knowledge graph when present.
type SearchAdapter struct {
	client serper.Client
}

// NewSearchAdapter creates a search adapter over a Serper client.
func NewSearchAdapter(client serper.Client) *SearchAdapter {
	return &SearchAdapter{client: client}
}

func (a *SearchAdapter) Name() string { return "search" }

func (a *SearchAdapter) Fetch(ctx context.Context, id model.Identity) model.RawRecord {
	start := time.Now()

	query := fmt.Sprintf("%q company %s", id.Name, id.Domain)
	resp, err := a.client.Search(ctx, query, searchResultCount)
	if err != nil {
		return model.FailedRecord(a.Name(), start, err)
	}

	payload := map[string]any{}
	if snippets := renderSnippets(resp.Organic); snippets != "" {
		payload["snippets"] = snippets
	}
	if len(resp.KnowledgeGraph) > 0 {
		payload["knowledge_graph"] = resp.KnowledgeGraph
	}

	return okRecord(a.Name(), start, model.FetchOK, payload)
}

// renderSnippets flattens organic hits into one prompt-ready block.
func renderSnippets(hits []serper.OrganicResult) string {
	var b strings.Builder
	for _, hit := range hits {
		if hit.Snippet == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", hit.Title, hit.Link, hit.Snippet)
	}
	return strings.TrimRight(b.String(), "\n")
}
