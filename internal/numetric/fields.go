// Package numetric is a client for the Numetric dataset API (v2) and the
// field-definition vocabulary it accepts.
package numetric

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// AllowedTypes is the fixed set of field types the API accepts.
var AllowedTypes = []string{
	"string", "integer", "double", "currency", "date",
	"time", "datetime", "boolean", "geo_shape", "geo_point",
}

// FieldDef describes one field of a dataset, as the API expects it.
type FieldDef struct {
	Field        string `json:"field"`
	Type         string `json:"type"`
	DisplayName  string `json:"displayName,omitempty"`
	Autocomplete bool   `json:"autocomplete"`
}

// StringField returns a plain string-typed field definition for name,
// the default when no explicit definitions are supplied.
func StringField(name string) FieldDef {
	return FieldDef{
		Field:       name,
		Type:        "string",
		DisplayName: name,
	}
}

// FieldDefinitionError reports every problem found in a field-definition
// list, one per line.
type FieldDefinitionError struct {
	Problems []string
}

func (e *FieldDefinitionError) Error() string {
	return strings.Join(e.Problems, "\n")
}

// ValidateFieldDefs checks that every definition names a field and carries an
// allowed type. All violations are collected before failing, so a bad file is
// reported in one pass.
func ValidateFieldDefs(defs []FieldDef) error {
	allowed := make(map[string]bool, len(AllowedTypes))
	for _, t := range AllowedTypes {
		allowed[t] = true
	}

	var problems []string
	for i, def := range defs {
		if def.Field == "" {
			problems = append(problems, fmt.Sprintf("missing 'field' attribute from field %d", i))
		}
		if def.Type == "" {
			problems = append(problems, fmt.Sprintf("missing 'type' attribute from field %d", i))
		} else if !allowed[def.Type] {
			problems = append(problems, fmt.Sprintf("invalid type %q for field %d, must be one of %q",
				def.Type, i, strings.Join(AllowedTypes, `", "`)))
		}
	}

	if len(problems) > 0 {
		return &FieldDefinitionError{Problems: problems}
	}
	return nil
}

// LoadFieldDefs reads a JSON array of field definitions from path and
// validates it.
func LoadFieldDefs(path string) ([]FieldDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field definitions: %w", err)
	}

	var defs []FieldDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse field definitions %s: %w", path, err)
	}

	if err := ValidateFieldDefs(defs); err != nil {
		return nil, err
	}
	return defs, nil
}
