package query

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abcd", "bcde", 0.75},
		{"storytime", "storytime", 1.0},
		{"", "", 1.0},
		{"abc", "xyz", 0.0},
		{"story time", "storytime", 2.0 * 9.0 / 19.0},
	}

	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRatioSymmetricEnough(t *testing.T) {
	// The ratio is not strictly symmetric in general, but a full-word
	// typo should score above the fuzzy threshold in both directions.
	if Ratio("storytyme", "storytime") < fuzzyThreshold {
		t.Error("one-letter typo scored below the fuzzy threshold")
	}
	if Ratio("storytime", "storytyme") < fuzzyThreshold {
		t.Error("one-letter typo scored below the fuzzy threshold (reversed)")
	}
}
