package schema

import "fmt"

// Validate checks a candidate value for the field at path against the schema
// and any cross-field rules attached to that path. It returns a
// human-readable error message, or "" when the value is acceptable.
//
// Pure and synchronous: no side effects, no I/O. Empty/default values never
// produce an error here; missing required fields make a step incomplete, not
// invalid.
func (s *Schema) Validate(path string, value interface{}, snapshot map[string]interface{}) string {
	spec, declared := s.Fields[path]
	if !declared {
		return ""
	}

	coerced := s.Coerce(path, value)

	if !s.IsDefault(path, coerced) {
		if msg := s.validateSpec(spec, coerced); msg != "" {
			return msg
		}
	}

	for _, rule := range s.CrossRules {
		if rule.Path != path {
			continue
		}
		if msg := rule.Check(snapshot); msg != "" {
			return msg
		}
	}

	return ""
}

func (s *Schema) validateSpec(spec FieldSpec, value interface{}) string {
	switch spec.Type {
	case TypeString:
		str := value.(string)
		if spec.MinLength > 0 && len(str) < spec.MinLength {
			return fmt.Sprintf("%s must be at least %d characters", labelOf(spec), spec.MinLength)
		}
		if spec.MaxLength > 0 && len(str) > spec.MaxLength {
			return fmt.Sprintf("%s must be at most %d characters", labelOf(spec), spec.MaxLength)
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, str) {
			return fmt.Sprintf("%s must be one of %v", labelOf(spec), spec.Enum)
		}

	case TypeNumber:
		num := value.(float64)
		if spec.Minimum != nil && num < *spec.Minimum {
			return fmt.Sprintf("%s must be at least %v", labelOf(spec), *spec.Minimum)
		}
		if spec.Maximum != nil && num > *spec.Maximum {
			return fmt.Sprintf("%s must be at most %v", labelOf(spec), *spec.Maximum)
		}

	case TypeStringArray:
		items := value.([]string)
		if spec.MaxLength > 0 && len(items) > spec.MaxLength {
			return fmt.Sprintf("%s allows at most %d entries", labelOf(spec), spec.MaxLength)
		}
		if len(spec.Enum) > 0 {
			for _, item := range items {
				if !contains(spec.Enum, item) {
					return fmt.Sprintf("%s must be one of %v", labelOf(spec), spec.Enum)
				}
			}
		}
	}

	return ""
}

// Warnings evaluates every advisory rule over the snapshot and returns the
// active warning messages. Advisories never block submission.
func (s *Schema) Warnings(snapshot map[string]interface{}) []string {
	var out []string
	for _, rule := range s.Advisories {
		if msg := rule.Check(snapshot); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

func labelOf(spec FieldSpec) string {
	if spec.Label != "" {
		return spec.Label
	}
	return "value"
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

// Float64Ptr is a convenience for inline Minimum/Maximum declarations.
func Float64Ptr(v float64) *float64 {
	return &v
}
