package numetric

import (
	"reflect"
	"testing"
)

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"multi-element list", "[1, 2]", []any{int64(1), int64(2)}},
		{"single element collapses", "[1]", int64(1)},
		{"empty list becomes nil", "[]", nil},
		{"plain string unchanged", "abc", "abc"},
		{"bare number unchanged", "3.5", "3.5"},
		{"bare integer unchanged", "42", "42"},
		{"float elements", "[1.5, 2.5]", []any{1.5, 2.5}},
		{"negative numbers", "[-3, +4]", []any{int64(-3), int64(4)}},
		{"exponent", "[1e3]", 1000.0},
		{"single-quoted strings", "['a', 'b']", []any{"a", "b"}},
		{"double-quoted strings", `["x"]`, "x"},
		{"escaped quote", `['it\'s']`, "it's"},
		{"escaped newline", `["a\nb"]`, "a\nb"},
		{"constants", "[True, False, None]", []any{true, false, nil}},
		{"single None collapses to nil", "[None]", nil},
		{"surrounding whitespace ok", "  [1, 2]  ", []any{int64(1), int64(2)}},
		{"inner whitespace ok", "[ 1 ,\t2 ]", []any{int64(1), int64(2)}},
		{"trailing comma ok", "[1, 2,]", []any{int64(1), int64(2)}},
		{"mixed types", `[1, 'two', 3.0]`, []any{int64(1), "two", 3.0}},
		{"unterminated list unchanged", "[1, 2", "[1, 2"},
		{"unterminated string unchanged", `['a`, `['a`},
		{"trailing garbage unchanged", "[1] x", "[1] x"},
		{"nested list unchanged", "[[1], 2]", "[[1], 2]"},
		{"dict unchanged", "{'a': 1}", "{'a': 1}"},
		{"bare word element unchanged", "[foo]", "[foo]"},
		{"missing comma unchanged", "[1 2]", "[1 2]"},
		{"empty string unchanged", "", ""},
		{"bracket only unchanged", "[", "["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceValue(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CoerceValue(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceValue_LargeIntegerFallsBackToFloat(t *testing.T) {
	got := CoerceValue("[99999999999999999999]")
	if _, ok := got.(float64); !ok {
		t.Errorf("CoerceValue() = %#v (%T), want float64 fallback", got, got)
	}
}
