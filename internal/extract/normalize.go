package extract

import (
	"fmt"
	"strings"
)

// NormalizeFieldName converts a raw header cell into the field name used for
// upload. Whitespace is trimmed, dots become underscores (Elasticsearch
// rejects dotted field names), and a run of leading underscores is rotated to
// the end of the name (the API rejects leading underscores). A name left
// empty becomes "Column_<index>" using the zero-based column position.
//
// The result is stable: normalizing an already-normalized name returns it
// unchanged.
func NormalizeFieldName(name string, index int) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, ".", "_")

	// Rotate leading underscores to the end. A name that is nothing but
	// underscores is left alone; rotating it would never terminate.
	lead := 0
	for lead < len(name) && name[lead] == '_' {
		lead++
	}
	if lead > 0 && lead < len(name) {
		name = name[lead:] + strings.Repeat("_", lead)
	}

	if name == "" {
		return fmt.Sprintf("Column_%d", index)
	}
	return name
}

// NormalizeFieldNames applies NormalizeFieldName to every name in order.
func NormalizeFieldNames(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = NormalizeFieldName(name, i)
	}
	return out
}
