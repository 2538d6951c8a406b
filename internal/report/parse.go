package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError carries every schema violation found in one model
// response. It drives bounded reformulation retries upstream.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "report: validation failed: " + strings.Join(e.Issues, "; ")
}

// Parse extracts a JSON object from raw model text and validates it against
// the schema. A *Report is returned only when validation succeeds in full.
func (s *Schema) Parse(text string) (*Report, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, &ValidationError{Issues: []string{err.Error()}}
	}
	return s.Validate(raw)
}

// Validate checks a decoded object against the schema: required fields
// present, declared types, numeric ranges. All violations are collected
// before failing so a reformulation prompt can list them at once.
func (s *Schema) Validate(raw map[string]any) (*Report, error) {
	var issues []string
	fields := make(map[string]any, len(s.Fields))

	for _, spec := range s.Fields {
		v, present := raw[spec.Key]
		if !present || v == nil {
			if spec.Required {
				issues = append(issues, fmt.Sprintf("missing required field %q", spec.Key))
			}
			continue
		}

		coerced, issue := coerce(spec, v)
		if issue != "" {
			issues = append(issues, issue)
			continue
		}
		fields[spec.Key] = coerced
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return &Report{fields: fields}, nil
}

func coerce(spec FieldSpec, v any) (any, string) {
	switch spec.Type {
	case TypeString:
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Sprintf("field %q must be a string, got %T", spec.Key, v)
		}
		if strings.TrimSpace(str) == "" && spec.Required {
			return nil, fmt.Sprintf("required field %q is empty", spec.Key)
		}
		return str, ""

	case TypeNumber:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Sprintf("field %q must be a number, got %T", spec.Key, v)
		}
		if spec.Min != nil && f < *spec.Min {
			return nil, fmt.Sprintf("field %q value %v below minimum %v", spec.Key, f, *spec.Min)
		}
		if spec.Max != nil && f > *spec.Max {
			return nil, fmt.Sprintf("field %q value %v above maximum %v", spec.Key, f, *spec.Max)
		}
		return f, ""

	case TypeStringList:
		switch list := v.(type) {
		case []any:
			out := make([]string, 0, len(list))
			for i, item := range list {
				str, ok := item.(string)
				if !ok {
					return nil, fmt.Sprintf("field %q item %d must be a string, got %T", spec.Key, i, item)
				}
				out = append(out, str)
			}
			if len(out) == 0 && spec.Required {
				return nil, fmt.Sprintf("required field %q is an empty list", spec.Key)
			}
			return out, ""
		case string:
			// Models occasionally emit a single string for one-item lists.
			return []string{list}, ""
		default:
			return nil, fmt.Sprintf("field %q must be a list of strings, got %T", spec.Key, v)
		}
	}

	return nil, fmt.Sprintf("field %q has unknown type %q", spec.Key, spec.Type)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// extractJSON locates the outermost JSON object in model text, tolerating
// markdown code fences and surrounding prose.
func extractJSON(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(text)

	if i := strings.Index(cleaned, "```"); i >= 0 {
		rest := cleaned[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			cleaned = rest[:j]
		} else {
			cleaned = rest
		}
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	raw := make(map[string]any)
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("malformed JSON in model output: %v", err)
	}
	return raw, nil
}

// CorrectionPrompt renders the follow-up message sent back to the model
// after a validation failure. It names every violation so the model can fix
// them in one pass.
func CorrectionPrompt(verr *ValidationError) string {
	var b strings.Builder
	b.WriteString("Your previous response did not satisfy the report schema. Problems:\n")
	for _, issue := range verr.Issues {
		b.WriteString("- ")
		b.WriteString(issue)
		b.WriteString("\n")
	}
	b.WriteString("\nReturn the complete report again as a single valid JSON object that fixes every problem above. Do not include any text outside the JSON object.")
	return b.String()
}

// PromptSchema renders the schema as instructions for the model: one line
// per field with its type, range, and description.
func (s *Schema) PromptSchema() string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range s.Fields {
		fmt.Fprintf(&b, "  %q: ", f.Key)
		switch f.Type {
		case TypeNumber:
			b.WriteString("<number")
			if f.Min != nil && f.Max != nil {
				fmt.Fprintf(&b, " %g-%g", *f.Min, *f.Max)
			}
			b.WriteString(">")
		case TypeStringList:
			b.WriteString("[<string>, ...]")
		default:
			b.WriteString("<string>")
		}
		if i < len(s.Fields)-1 {
			b.WriteString(",")
		}
		if f.Description != "" {
			b.WriteString("  // ")
			b.WriteString(f.Description)
			if f.Required {
				b.WriteString(" (required)")
			}
		} else if f.Required {
			b.WriteString("  // required")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}
