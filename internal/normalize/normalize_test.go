package normalize

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/model"
)

var testIdentity = model.Identity{URL: "https://acme.dev", Name: "Acme", Domain: "acme.dev"}

func record(source string, payload map[string]any) model.RawRecord {
	return model.RawRecord{
		Source:    source,
		Status:    model.FetchOK,
		FetchedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Payload:   payload,
	}
}

func TestCheckMappings(t *testing.T) {
	require.NoError(t, CheckMappings())
}

func TestMergePriorityWins(t *testing.T) {
	n := New(nil)

	profile, err := n.Merge(testIdentity, []model.RawRecord{
		record("website", map[string]any{"title": "acme.dev — home", "content": "We make anvils."}),
		record("linkedin", map[string]any{"name": "Acme Ltd", "industry": "Manufacturing"}),
	})
	require.NoError(t, err)

	// linkedin outranks website for the name field.
	name := profile.Fields[model.FieldName]
	assert.Equal(t, "Acme Ltd", name.Value)
	assert.Equal(t, "linkedin", name.Provenance.Source)
	assert.Equal(t, []string{"website"}, name.Provenance.Shadowed)

	// website is the only producer of website_text.
	text := profile.Fields[model.FieldWebsiteText]
	assert.Equal(t, "We make anvils.", text.Value)
	assert.Equal(t, "website", text.Provenance.Source)
	assert.Empty(t, text.Provenance.Shadowed)
}

func TestMergeDeterministicAcrossInputOrder(t *testing.T) {
	n := New(nil)
	records := []model.RawRecord{
		record("search", map[string]any{"snippets": "- hit", "knowledge_graph": map[string]any{"title": "Acme (search)"}}),
		record("crm", map[string]any{"name": "Acme Ltd", "industry": "Manufacturing"}),
		record("linkedin", map[string]any{"name": "Acme", "description": "Anvil maker"}),
	}

	forward, err := n.Merge(testIdentity, records)
	require.NoError(t, err)

	reversed := []model.RawRecord{records[2], records[1], records[0]}
	backward, err := n.Merge(testIdentity, reversed)
	require.NoError(t, err)

	// Merge order depends on configured priority, never on arrival order.
	assert.Equal(t, forward, backward)
	assert.Equal(t, "crm", forward.Fields[model.FieldName].Provenance.Source)
	assert.ElementsMatch(t, []string{"linkedin", "search"}, forward.Fields[model.FieldName].Provenance.Shadowed)
}

func TestMergeSkipsFailedAndEmptyRecords(t *testing.T) {
	n := New(nil)

	profile, err := n.Merge(testIdentity, []model.RawRecord{
		model.FailedRecord("linkedin", time.Now(), eris.New("boom")),
		record("website", map[string]any{"title": "Acme", "content": "We make anvils."}),
		{Source: "search", Status: model.FetchOK}, // ok status but empty payload
	})
	require.NoError(t, err)

	assert.Equal(t, "website", profile.Fields[model.FieldName].Provenance.Source)
	assert.NotContains(t, profile.Fields, model.FieldSearchResults)
}

func TestMergeEmptyValuesAreMissing(t *testing.T) {
	n := New(nil)

	profile, err := n.Merge(testIdentity, []model.RawRecord{
		record("linkedin", map[string]any{"name": "  ", "industry": "Manufacturing"}),
		record("website", map[string]any{"title": "Acme", "content": "text"}),
	})
	require.NoError(t, err)

	// Whitespace-only linkedin name is missing, website wins without a
	// shadowed entry for linkedin.
	name := profile.Fields[model.FieldName]
	assert.Equal(t, "Acme", name.Value)
	assert.Equal(t, "website", name.Provenance.Source)
	assert.Empty(t, name.Provenance.Shadowed)
}

func TestMergeNoUsableRecords(t *testing.T) {
	n := New(nil)

	_, err := n.Merge(testIdentity, []model.RawRecord{
		model.FailedRecord("website", time.Now(), eris.New("timeout")),
		model.FailedRecord("search", time.Now(), eris.New("quota")),
	})
	require.ErrorIs(t, err, ErrIncompleteProfile)
}

func TestMergeJoinsWebsiteSections(t *testing.T) {
	n := New(nil)

	profile, err := n.Merge(testIdentity, []model.RawRecord{
		record("website", map[string]any{"title": "Acme", "content": "Home page.", "about": "About page."}),
	})
	require.NoError(t, err)

	assert.Equal(t, "Home page.\n\nAbout page.", profile.Fields[model.FieldWebsiteText].Value)
}
