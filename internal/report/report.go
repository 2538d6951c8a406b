package report

import "encoding/json"

// Report is a schema-validated screening report. The only way to construct
// one is through Schema validation in this package, so a Report in hand is
// always valid against its schema.
type Report struct {
	fields map[string]any
}

// Field returns the validated value for a schema key, or nil.
func (r *Report) Field(key string) any {
	if r == nil {
		return nil
	}
	return r.fields[key]
}

// Fields returns a copy of all validated fields.
func (r *Report) Fields() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Summary returns the report's summary section.
func (r *Report) Summary() string {
	s, _ := r.Field("summary").(string)
	return s
}

// RiskFactors returns the validated risk factor list.
func (r *Report) RiskFactors() []string {
	l, _ := r.Field("risk_factors").([]string)
	return l
}

// Score returns a numeric field and whether it was present.
func (r *Report) Score(key string) (float64, bool) {
	f, ok := r.Field(key).(float64)
	return f, ok
}

// MarshalJSON serializes the validated fields.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields)
}

// UnmarshalJSON restores a report from its stored form. Used only by the
// store when reading back results that were validated before persisting.
func (r *Report) UnmarshalJSON(data []byte) error {
	raw := make(map[string]any)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// Stored string lists come back as []any; restore the validated shape.
	for k, v := range raw {
		if items, ok := v.([]any); ok {
			list := make([]string, 0, len(items))
			strings := true
			for _, it := range items {
				s, ok := it.(string)
				if !ok {
					strings = false
					break
				}
				list = append(list, s)
			}
			if strings {
				raw[k] = list
			}
		}
	}
	r.fields = raw
	return nil
}
