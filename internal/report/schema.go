// Package report defines the screening report schema and the parser that
// gates Report construction on successful validation.
package report

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FieldType enumerates the value types a schema field may declare.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeNumber     FieldType = "number"
	TypeStringList FieldType = "string_list"
)

// FieldSpec declares one report field: its type, whether the model must
// supply it, and, for numbers, the valid range.
type FieldSpec struct {
	Key         string    `yaml:"key"`
	Type        FieldType `yaml:"type"`
	Required    bool      `yaml:"required"`
	Min         *float64  `yaml:"min,omitempty"`
	Max         *float64  `yaml:"max,omitempty"`
	Description string    `yaml:"description,omitempty"`
}

// Schema is the declared shape of a screening report.
type Schema struct {
	Fields []FieldSpec `yaml:"fields"`

	byKey map[string]*FieldSpec
}

//go:embed schema.yaml
var defaultSchemaYAML []byte

// DefaultSchema returns the built-in report schema. It panics on a corrupt
// embedded declaration, which only a bad build can produce.
func DefaultSchema() *Schema {
	s, err := ParseSchema(defaultSchemaYAML)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSchema decodes a YAML schema declaration and indexes it.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrap(err, "report: parse schema")
	}
	return NewSchema(s.Fields)
}

// NewSchema builds and indexes a schema from field specs.
func NewSchema(fields []FieldSpec) (*Schema, error) {
	s := Schema{Fields: fields}
	if len(s.Fields) == 0 {
		return nil, eris.New("report: schema declares no fields")
	}

	s.byKey = make(map[string]*FieldSpec, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Key == "" {
			return nil, eris.New("report: schema field with empty key")
		}
		if _, dup := s.byKey[f.Key]; dup {
			return nil, eris.Errorf("report: duplicate schema field %q", f.Key)
		}
		switch f.Type {
		case TypeString, TypeNumber, TypeStringList:
		default:
			return nil, eris.Errorf("report: field %q has unknown type %q", f.Key, f.Type)
		}
		s.byKey[f.Key] = f
	}
	return &s, nil
}

// ByKey returns the spec for a field key, or nil.
func (s *Schema) ByKey(key string) *FieldSpec {
	return s.byKey[key]
}

// Required returns the required field specs in declaration order.
func (s *Schema) Required() []FieldSpec {
	var out []FieldSpec
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}
