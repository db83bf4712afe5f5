package numetric

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFieldDefs_Valid(t *testing.T) {
	defs := []FieldDef{
		{Field: "name", Type: "string"},
		{Field: "count", Type: "integer", DisplayName: "Count"},
		{Field: "where", Type: "geo_point", Autocomplete: true},
	}
	if err := ValidateFieldDefs(defs); err != nil {
		t.Errorf("ValidateFieldDefs() error = %v, want nil", err)
	}
}

func TestValidateFieldDefs_Empty(t *testing.T) {
	if err := ValidateFieldDefs(nil); err != nil {
		t.Errorf("ValidateFieldDefs(nil) error = %v, want nil", err)
	}
}

func TestValidateFieldDefs_CollectsAllViolations(t *testing.T) {
	defs := []FieldDef{
		{Field: "a", Type: "string"},
		{Field: "b", Type: "string"},
		{Field: "c"},                       // missing type: entry 2
		{Field: "d", Type: "double"},
		{Field: "e", Type: "string"},
		{Field: "f", Type: "varchar"},      // invalid type: entry 5
	}

	err := ValidateFieldDefs(defs)
	if err == nil {
		t.Fatal("ValidateFieldDefs() expected error")
	}

	var fdErr *FieldDefinitionError
	if !errors.As(err, &fdErr) {
		t.Fatalf("err = %T, want *FieldDefinitionError", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "field 2") {
		t.Errorf("error should reference entry 2: %q", msg)
	}
	if !strings.Contains(msg, "field 5") {
		t.Errorf("error should reference entry 5: %q", msg)
	}
	if len(fdErr.Problems) != 2 {
		t.Errorf("Problems count = %d, want 2", len(fdErr.Problems))
	}
}

func TestValidateFieldDefs_MissingField(t *testing.T) {
	err := ValidateFieldDefs([]FieldDef{{Type: "string"}})
	if err == nil || !strings.Contains(err.Error(), "missing 'field'") {
		t.Errorf("error = %v, want missing 'field' violation", err)
	}
}

func TestLoadFieldDefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.json")
	data := `[
		{"field": "name", "type": "string", "displayName": "Name", "autocomplete": false},
		{"field": "total", "type": "currency"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	defs, err := LoadFieldDefs(path)
	if err != nil {
		t.Fatalf("LoadFieldDefs() error = %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("len = %d, want 2", len(defs))
	}
	if defs[0].Field != "name" || defs[0].Type != "string" || defs[0].DisplayName != "Name" {
		t.Errorf("defs[0] = %+v", defs[0])
	}
	if defs[1].Type != "currency" {
		t.Errorf("defs[1].Type = %q, want currency", defs[1].Type)
	}
}

func TestLoadFieldDefs_InvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.json")
	if err := os.WriteFile(path, []byte(`[{"field": "x", "type": "nope"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	var fdErr *FieldDefinitionError
	if _, err := LoadFieldDefs(path); !errors.As(err, &fdErr) {
		t.Errorf("err = %v, want *FieldDefinitionError", err)
	}
}

func TestLoadFieldDefs_MissingFile(t *testing.T) {
	if _, err := LoadFieldDefs(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadFieldDefs() expected error for missing file")
	}
}

func TestStringField(t *testing.T) {
	def := StringField("city")
	if def.Field != "city" || def.Type != "string" || def.DisplayName != "city" || def.Autocomplete {
		t.Errorf("StringField() = %+v", def)
	}
}
