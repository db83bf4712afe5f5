package extract

import "testing"

func TestNormalizeFieldName(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		index int
		want  string
	}{
		{"plain", "name", 0, "name"},
		{"trims whitespace", "  amount  ", 0, "amount"},
		{"dot to underscore", "geo.lat", 0, "geo_lat"},
		{"multiple dots", "a.b.c", 0, "a_b_c"},
		{"leading underscore rotated", "_id", 0, "id_"},
		{"leading underscore run rotated once", "__id", 0, "id__"},
		{"dot then rotation", "._x", 0, "x__"},
		{"only underscores left alone", "_", 0, "_"},
		{"empty becomes placeholder", "", 0, "Column_0"},
		{"whitespace only becomes placeholder", "   ", 7, "Column_7"},
		{"index used in placeholder", "", 3, "Column_3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFieldName(tt.in, tt.index)
			if got != tt.want {
				t.Errorf("NormalizeFieldName(%q, %d) = %q, want %q", tt.in, tt.index, got, tt.want)
			}
		})
	}
}

func TestNormalizeFieldName_Idempotent(t *testing.T) {
	inputs := []string{"name", "  x.y  ", "_id", "__deep", "", "Column_4"}
	for _, in := range inputs {
		once := NormalizeFieldName(in, 4)
		twice := NormalizeFieldName(once, 4)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeFieldNames_Order(t *testing.T) {
	got := NormalizeFieldNames([]string{"a", "", "_b"})
	want := []string{"a", "Column_1", "b_"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
