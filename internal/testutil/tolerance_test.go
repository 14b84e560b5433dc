package testutil

import "testing"

func TestRequireSliceNearlyEqualWithinTolerance(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2.05}, []float64{1, 2}, 0.1)
}

func TestRequireFramesFinite(t *testing.T) {
	RequireFramesFinite(t, [][2]float64{{0, 1}, {-1, 0.5}})
}

func TestEnergy(t *testing.T) {
	if got := Energy([][2]float64{{1, 2}, {0, -1}}); got != 6 {
		t.Fatalf("Energy = %v, want 6", got)
	}
	if got := Energy(nil); got != 0 {
		t.Fatalf("Energy(nil) = %v, want 0", got)
	}
}
