// Package registry loads the report schema from the Notion schema database,
// falling back to the embedded default when Notion is not configured.
package registry

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/screener/internal/report"
	"github.com/sells-group/screener/pkg/notion"
)

// LoadSchema queries the Notion schema database for active report fields.
// An empty dbID selects the embedded default schema so local runs need no
// Notion token.
func LoadSchema(ctx context.Context, client notion.Client, dbID string) (*report.Schema, error) {
	if dbID == "" {
		zap.L().Debug("registry: using embedded report schema")
		return report.DefaultSchema(), nil
	}

	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Status",
			Status: &notionapi.StatusFilterCondition{
				Equals: "Active",
			},
		},
	}

	pages, err := notion.QueryAll(ctx, client, dbID, filter)
	if err != nil {
		return nil, eris.Wrap(err, "registry: load schema")
	}

	var specs []report.FieldSpec
	for _, p := range pages {
		spec, err := parseFieldPage(p)
		if err != nil {
			zap.L().Warn("registry: skipping malformed schema page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, eris.Errorf("registry: schema database %s has no active fields", dbID)
	}

	schema, err := report.NewSchema(specs)
	if err != nil {
		return nil, eris.Wrap(err, "registry: build schema")
	}
	return schema, nil
}

func parseFieldPage(p notionapi.Page) (report.FieldSpec, error) {
	var spec report.FieldSpec

	if prop, ok := p.Properties["Key"]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			spec.Key = plainText(tp.Title)
		}
	}
	if prop, ok := p.Properties["Type"]; ok {
		if sp, ok := prop.(*notionapi.SelectProperty); ok {
			spec.Type = report.FieldType(sp.Select.Name)
		}
	}
	if prop, ok := p.Properties["Required"]; ok {
		if cp, ok := prop.(*notionapi.CheckboxProperty); ok {
			spec.Required = cp.Checkbox
		}
	}
	if prop, ok := p.Properties["Min"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			v := np.Number
			spec.Min = &v
		}
	}
	if prop, ok := p.Properties["Max"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			v := np.Number
			spec.Max = &v
		}
	}
	if prop, ok := p.Properties["Description"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			spec.Description = plainText(rtp.RichText)
		}
	}

	if spec.Key == "" {
		return spec, eris.New("missing Key property")
	}
	if spec.Type == "" {
		spec.Type = report.TypeString
	}
	return spec, nil
}

func plainText(rts []notionapi.RichText) string {
	var out string
	for _, rt := range rts {
		out += rt.PlainText
	}
	return out
}
