package reify

import "testing"

func TestVarianceValid(t *testing.T) {
	for _, v := range []Variance{Invariant, Out, In, Bivariant} {
		if !v.Valid() {
			t.Errorf("%s should be valid", v)
		}
	}
	if Variance(4).Valid() {
		t.Error("Variance(4) should be invalid")
	}
}

func TestParseVariance(t *testing.T) {
	tests := []struct {
		in   string
		want Variance
	}{
		{"", Invariant},
		{"inv", Invariant},
		{"invariant", Invariant},
		{"out", Out},
		{"in", In},
		{"bi", Bivariant},
		{"*", Bivariant},
	}
	for _, tt := range tests {
		got, err := ParseVariance(tt.in)
		if err != nil {
			t.Errorf("ParseVariance(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVariance(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseVariance("sideways"); err == nil {
		t.Error("ParseVariance should reject unknown keywords")
	}
}

func TestVarianceStringRoundTrip(t *testing.T) {
	for _, v := range []Variance{Invariant, Out, In, Bivariant} {
		got, err := ParseVariance(v.String())
		if err != nil || got != v {
			t.Errorf("round trip of %s = %s, %v", v, got, err)
		}
	}
}
