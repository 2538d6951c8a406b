// Package prompt renders a normalized company profile into a deterministic
// model prompt with a bounded length.
package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/internal/report"
)

// DefaultMaxChars bounds the rendered user message. Instructions are never
// counted against the budget.
const DefaultMaxChars = 60_000

// truncationNotice replaces a field's value when the budget forces it out.
const truncationNotice = "[omitted for length]"

// Prompt is a fully rendered model request. Two identical profiles always
// produce byte-identical prompts, so Hash is a stable cache key.
type Prompt struct {
	System    string
	User      string
	Hash      string
	Truncated []string
}

// Builder renders prompts against one report schema.
type Builder struct {
	schema   *report.Schema
	maxChars int
}

// NewBuilder creates a Builder. maxChars <= 0 selects DefaultMaxChars.
func NewBuilder(schema *report.Schema, maxChars int) *Builder {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Builder{schema: schema, maxChars: maxChars}
}

// Build renders the profile into a prompt. Profile fields appear in
// canonical order with their source annotated; when the user message
// exceeds the budget, the least important fields are dropped first and
// listed in Truncated. At least the identity header always survives.
func (b *Builder) Build(profile model.CompanyProfile) (Prompt, error) {
	if len(profile.Fields) == 0 {
		return Prompt{}, eris.New("prompt: profile has no fields")
	}

	system := b.renderSystem()

	fields := model.CanonicalFields()
	present := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := profile.Fields[f]; ok {
			present = append(present, f)
		}
	}

	omitted := make(map[string]bool)
	user := b.renderUser(profile, present, omitted)

	// Drop fields from the tail of the priority order until the message
	// fits. The header and instructions are never truncated.
	var truncated []string
	for i := len(present) - 1; i >= 0 && len(user) > b.maxChars; i-- {
		field := present[i]
		omitted[field] = true
		truncated = append([]string{field}, truncated...)
		user = b.renderUser(profile, present, omitted)
	}

	sum := sha256.Sum256([]byte(system + "\x00" + user))

	return Prompt{
		System:    system,
		User:      user,
		Hash:      hex.EncodeToString(sum[:]),
		Truncated: truncated,
	}, nil
}

func (b *Builder) renderSystem() string {
	var sb strings.Builder
	sb.WriteString("You are an investment analyst screening companies for acquisition fit. ")
	sb.WriteString("Write a factual screening report based only on the provided source data. ")
	sb.WriteString("Where sources conflict, prefer the value marked with the higher-priority source. ")
	sb.WriteString("Do not invent facts; state when information is unavailable.\n\n")
	sb.WriteString("Respond with a single JSON object and nothing else, following this schema:\n")
	sb.WriteString(b.schema.PromptSchema())
	return sb.String()
}

func (b *Builder) renderUser(profile model.CompanyProfile, present []string, omitted map[string]bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Company: %s\nWebsite: %s\nDomain: %s\n",
		profile.Identity.Name, profile.Identity.URL, profile.Identity.Domain)

	sb.WriteString("\nSource data:\n")
	for _, field := range present {
		fv := profile.Fields[field]
		if omitted[field] {
			fmt.Fprintf(&sb, "\n## %s\n%s\n", field, truncationNotice)
			continue
		}
		fmt.Fprintf(&sb, "\n## %s (from %s)\n%s\n", field, fv.Provenance.Source, renderValue(fv.Value))
	}

	return sb.String()
}

// renderValue formats a field value for the prompt. Maps and slices render
// as stable key-sorted text via the fmt verb, which is deterministic for
// the value shapes the normalizer emits.
func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case int:
		return fmt.Sprintf("%d", val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprintf("- %v", item)
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprintf("%v", val)
	}
}
