// Package schema declares the per-form-type field schemas the validators and
// the orchestrator run against.
package schema

import "listings-console/internal/forms/fieldpath"

// FieldType fixes the value type of a form tree leaf for the form's lifetime.
type FieldType string

const (
	TypeString      FieldType = "string"
	TypeNumber      FieldType = "number"
	TypeBoolean     FieldType = "boolean"
	TypeStringArray FieldType = "stringArray"
)

// FieldSpec describes one leaf of the form value tree.
type FieldSpec struct {
	Type      FieldType
	Label     string
	Required  bool
	MaxLength int // 0 = unlimited; over-length values are rejected, not truncated
	MinLength int
	Minimum   *float64
	Maximum   *float64
	Enum      []string

	// Image marks binary/blob reference fields. They are never persisted in
	// drafts and are hydrated separately on restore.
	Image bool

	// Scaffolding marks UI-only fields that are stripped from the wire
	// payload on submit.
	Scaffolding bool
}

// CrossRule is a blocking cross-field validation attached to a field path.
// It runs whenever that path is validated and reads sibling fields from the
// snapshot.
type CrossRule struct {
	Path  string
	Check func(snapshot map[string]interface{}) string
}

// AdvisoryRule is a non-blocking consistency check surfaced as a warning
// banner. It never prevents submission.
type AdvisoryRule struct {
	Name  string
	Check func(snapshot map[string]interface{}) string
}

// Schema is the full declaration for one form type.
type Schema struct {
	FormType   string
	Fields     map[string]FieldSpec
	CrossRules []CrossRule
	Advisories []AdvisoryRule

	// Initial builds the form's declared initial value tree.
	Initial func() map[string]interface{}
}

// Spec returns the field spec for a path, and whether the path is declared.
func (s *Schema) Spec(path string) (FieldSpec, bool) {
	spec, ok := s.Fields[path]
	return spec, ok
}

// Coerce normalizes a candidate value to the leaf's declared type. Numeric
// fields coerce non-numeric input to 0 so downstream arithmetic stays
// defined.
func (s *Schema) Coerce(path string, value interface{}) interface{} {
	spec, ok := s.Fields[path]
	if !ok {
		return value
	}

	switch spec.Type {
	case TypeNumber:
		return fieldpath.Number(value)
	case TypeString:
		return fieldpath.String(value)
	case TypeBoolean:
		return fieldpath.Bool(value)
	case TypeStringArray:
		out := fieldpath.StringSlice(value)
		if out == nil {
			out = []string{}
		}
		return out
	default:
		return value
	}
}

// IsDefault reports whether the value is the zero/default for its declared
// type. Step completion requires required fields to be non-default.
func (s *Schema) IsDefault(path string, value interface{}) bool {
	spec, ok := s.Fields[path]
	if !ok {
		return value == nil
	}

	switch spec.Type {
	case TypeNumber:
		return fieldpath.Number(value) == 0
	case TypeString:
		return fieldpath.String(value) == ""
	case TypeBoolean:
		// A boolean leaf is always considered filled; false is a real answer.
		return false
	case TypeStringArray:
		return len(fieldpath.StringSlice(value)) == 0
	default:
		return value == nil
	}
}

// InitialTree returns the declared initial value tree, or an empty tree when
// the schema declares none.
func (s *Schema) InitialTree() map[string]interface{} {
	if s.Initial == nil {
		return map[string]interface{}{}
	}
	return s.Initial()
}
