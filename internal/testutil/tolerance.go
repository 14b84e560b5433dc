package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFramesFinite fails t on the first NaN or Inf sample.
func RequireFramesFinite(t *testing.T, frames [][2]float64) {
	t.Helper()
	for i, f := range frames {
		for ch, v := range f {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("frame %d channel %d: non-finite value %v", i, ch, v)
			}
		}
	}
}

// Energy returns the sum of squares of both channels.
func Energy(frames [][2]float64) float64 {
	var e float64
	for _, f := range frames {
		e += f[0]*f[0] + f[1]*f[1]
	}
	return e
}
