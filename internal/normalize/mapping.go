package normalize

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/model"
)

// rule translates one payload entry into a canonical field. Path walks
// nested maps; join concatenates several payload entries instead.
type rule struct {
	field string
	path  []string
	join  []string
}

// sourceMapping is the static translation table for one source's payload
// vocabulary.
type sourceMapping struct {
	source string
	rules  []rule
}

// mappings is the full set of translation tables, reviewed against the
// canonical field list at startup via CheckMappings.
var mappings = []sourceMapping{
	{
		source: "crm",
		rules: []rule{
			{field: model.FieldName, path: []string{"name"}},
			{field: model.FieldDescription, path: []string{"description"}},
			{field: model.FieldIndustry, path: []string{"industry"}},
			{field: model.FieldEmployeeCount, path: []string{"employee_count"}},
			{field: model.FieldHeadquarters, path: []string{"headquarters"}},
			{field: model.FieldRevenue, path: []string{"annual_revenue"}},
		},
	},
	{
		source: "linkedin",
		rules: []rule{
			{field: model.FieldName, path: []string{"name"}},
			{field: model.FieldDescription, path: []string{"description"}},
			{field: model.FieldIndustry, path: []string{"industry"}},
			{field: model.FieldEmployeeCount, path: []string{"employee_count"}},
			{field: model.FieldHeadquarters, path: []string{"headquarters"}},
			{field: model.FieldFounded, path: []string{"founded"}},
			{field: model.FieldProducts, path: []string{"specialties"}},
		},
	},
	{
		source: "funding",
		rules: []rule{
			{field: model.FieldFundingTotal, path: []string{"funding_total"}},
			{field: model.FieldLastRound, path: []string{"last_round"}},
			{field: model.FieldInvestors, path: []string{"investors"}},
			{field: model.FieldBusinessModel, path: []string{"business_model"}},
			{field: model.FieldFounded, path: []string{"founded"}},
		},
	},
	{
		source: "filings",
		rules: []rule{
			{field: model.FieldName, path: []string{"company_name"}},
			{field: model.FieldHeadquarters, path: []string{"registered_address"}},
			{field: model.FieldFounded, path: []string{"incorporation_year"}},
		},
	},
	{
		source: "research",
		rules: []rule{
			{field: model.FieldProducts, path: []string{"business"}},
			{field: model.FieldBusinessModel, path: []string{"business"}},
			{field: model.FieldCompetitors, path: []string{"competitors"}},
			{field: model.FieldKeyPeople, path: []string{"team"}},
			{field: model.FieldRevenue, path: []string{"financials"}},
		},
	},
	{
		source: "website",
		rules: []rule{
			{field: model.FieldName, path: []string{"title"}},
			{field: model.FieldWebsiteText, join: []string{"content", "about"}},
		},
	},
	{
		source: "search",
		rules: []rule{
			{field: model.FieldSearchResults, path: []string{"snippets"}},
			{field: model.FieldName, path: []string{"knowledge_graph", "title"}},
			{field: model.FieldDescription, path: []string{"knowledge_graph", "description"}},
			{field: model.FieldIndustry, path: []string{"knowledge_graph", "type"}},
			{field: model.FieldFounded, path: []string{"knowledge_graph", "founded"}},
			{field: model.FieldHeadquarters, path: []string{"knowledge_graph", "headquarters"}},
		},
	},
}

// defaultPriority orders sources from most to least authoritative. The
// merge takes the first non-missing value per field in this order.
var defaultPriority = []string{"crm", "linkedin", "funding", "filings", "research", "website", "search"}

// CheckMappings verifies every mapping rule targets a known canonical field
// and every canonical field is producible by at least one source. Run once
// at startup so a table edit cannot silently drop a field.
func CheckMappings() error {
	known := make(map[string]bool)
	for _, f := range model.CanonicalFields() {
		known[f] = true
	}

	producible := make(map[string]bool)
	for _, m := range mappings {
		for _, r := range m.rules {
			if !known[r.field] {
				return eris.Errorf("normalize: source %q maps unknown field %q", m.source, r.field)
			}
			producible[r.field] = true
		}
	}

	var missing []string
	for _, f := range model.CanonicalFields() {
		if !producible[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("normalize: no source produces fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// extract applies one rule to a payload, returning nil when the value is
// missing or empty.
func (r rule) extract(payload map[string]any) any {
	if len(r.join) > 0 {
		var parts []string
		for _, key := range r.join {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return nil
		}
		return strings.Join(parts, "\n\n")
	}

	var cur any = payload
	for _, key := range r.path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return normalizeValue(cur)
}

// normalizeValue collapses empty strings and empty collections to nil so
// the merge treats them as missing.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return val
	case []any:
		if len(val) == 0 {
			return nil
		}
		return val
	case float64:
		return val
	case int:
		return val
	default:
		// Structured values pass through as display strings.
		return fmt.Sprintf("%v", val)
	}
}
