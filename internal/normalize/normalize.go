// Package normalize merges raw source records into one canonical company
// profile with per-field provenance.
package normalize

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/screener/internal/model"
)

// ErrIncompleteProfile is returned when no usable record reached the
// normalizer, so no profile can be assembled at all.
var ErrIncompleteProfile = eris.New("normalize: no usable source records")

// Normalizer translates source payloads into canonical fields and resolves
// conflicts by source priority.
type Normalizer struct {
	priority []string
	tables   map[string]sourceMapping
}

// New creates a Normalizer with the given source priority order, falling
// back to the built-in default when empty. Call CheckMappings separately at
// startup.
func New(priority []string) *Normalizer {
	if len(priority) == 0 {
		priority = defaultPriority
	}
	tables := make(map[string]sourceMapping, len(mappings))
	for _, m := range mappings {
		tables[m.source] = m
	}
	return &Normalizer{priority: priority, tables: tables}
}

// Merge builds the canonical profile from raw records. For every canonical
// field, the highest-priority source with a non-missing value wins; lower
// priority values are recorded as shadowed provenance. Records with
// status=failed or an empty payload never contribute. Returns
// ErrIncompleteProfile when no record is usable.
func (n *Normalizer) Merge(id model.Identity, records []model.RawRecord) (model.CompanyProfile, error) {
	bySource := make(map[string]model.RawRecord, len(records))
	usable := 0
	for _, rec := range records {
		if !rec.Usable() {
			continue
		}
		if n.tables[rec.Source].source == "" {
			zap.L().Warn("normalize: no mapping table for source", zap.String("source", rec.Source))
			continue
		}
		bySource[rec.Source] = rec
		usable++
	}
	if usable == 0 {
		return model.CompanyProfile{}, ErrIncompleteProfile
	}

	profile := model.CompanyProfile{
		Identity: id,
		Fields:   make(map[string]model.FieldValue),
	}

	for _, field := range model.CanonicalFields() {
		var winner *model.FieldValue
		var shadowed []string

		for _, source := range n.priority {
			rec, ok := bySource[source]
			if !ok {
				continue
			}
			value := n.extractField(source, field, rec.Payload)
			if value == nil {
				continue
			}
			if winner == nil {
				winner = &model.FieldValue{
					Field: field,
					Value: value,
					Provenance: model.Provenance{
						Source:    source,
						FetchedAt: rec.FetchedAt,
					},
				}
				continue
			}
			shadowed = append(shadowed, source)
		}

		if winner != nil {
			winner.Provenance.Shadowed = shadowed
			profile.Fields[field] = *winner
		}
	}

	return profile, nil
}

// extractField applies the source's rule for one canonical field.
func (n *Normalizer) extractField(source, field string, payload map[string]any) any {
	for _, r := range n.tables[source].rules {
		if r.field != field {
			continue
		}
		if v := r.extract(payload); v != nil {
			return v
		}
	}
	return nil
}
