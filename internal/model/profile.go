package model

import "time"

// Canonical profile field keys. Source mapping tables translate into this
// vocabulary and are checked against it at startup.
const (
	FieldName          = "name"
	FieldDescription   = "description"
	FieldIndustry      = "industry"
	FieldEmployeeCount = "employee_count"
	FieldHeadquarters  = "headquarters"
	FieldFounded       = "founded"
	FieldProducts      = "products"
	FieldBusinessModel = "business_model"
	FieldRevenue       = "revenue"
	FieldFundingTotal  = "funding_total"
	FieldLastRound     = "last_round"
	FieldInvestors     = "investors"
	FieldKeyPeople     = "key_people"
	FieldCompetitors   = "competitors"
	FieldWebsiteText   = "website_text"
	FieldSearchResults = "search_results"
)

// CanonicalFields returns the full canonical field set in prompt-priority
// order: earlier fields are more important and are truncated last when the
// prompt budget is exceeded.
func CanonicalFields() []string {
	return []string{
		FieldName,
		FieldDescription,
		FieldIndustry,
		FieldBusinessModel,
		FieldProducts,
		FieldEmployeeCount,
		FieldHeadquarters,
		FieldFounded,
		FieldRevenue,
		FieldFundingTotal,
		FieldLastRound,
		FieldInvestors,
		FieldKeyPeople,
		FieldCompetitors,
		FieldWebsiteText,
		FieldSearchResults,
	}
}

// Provenance records which source supplied a profile field and which other
// sources also had a value but lost the priority merge.
type Provenance struct {
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Shadowed  []string  `json:"shadowed,omitempty"`
}

// FieldValue is one canonical profile field with its provenance. Exactly one
// provenance entry exists per field.
type FieldValue struct {
	Field      string     `json:"field"`
	Value      any        `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// CompanyProfile is the normalized, merged view of a company across all
// sources. Immutable once returned by the normalizer.
type CompanyProfile struct {
	Identity Identity              `json:"identity"`
	Fields   map[string]FieldValue `json:"fields"`
}

// Get returns the value for a canonical field, or nil if absent.
func (p CompanyProfile) Get(field string) any {
	if fv, ok := p.Fields[field]; ok {
		return fv.Value
	}
	return nil
}

// Sources returns the distinct sources that contributed at least one field.
func (p CompanyProfile) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, fv := range p.Fields {
		if !seen[fv.Provenance.Source] {
			seen[fv.Provenance.Source] = true
			out = append(out, fv.Provenance.Source)
		}
	}
	return out
}
