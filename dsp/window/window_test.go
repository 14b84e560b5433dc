package window

import (
	"math"
	"testing"
)

func TestGenerateEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		typ        Type
		edge, peak float64
	}{
		{"rectangular", TypeRectangular, 1, 1},
		{"hann", TypeHann, 0, 1},
		{"hamming", TypeHamming, 0.08, 1},
		{"blackman", TypeBlackman, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := Generate(tt.typ, 65)
			if got := w[0]; math.Abs(got-tt.edge) > 1e-12 {
				t.Fatalf("w[0] = %v, want %v", got, tt.edge)
			}
			if got := w[64]; math.Abs(got-tt.edge) > 1e-12 {
				t.Fatalf("w[64] = %v, want %v", got, tt.edge)
			}
			if got := w[32]; math.Abs(got-tt.peak) > 1e-12 {
				t.Fatalf("w[32] = %v, want %v", got, tt.peak)
			}
		})
	}
}

func TestGeneratePeriodic(t *testing.T) {
	t.Parallel()

	// The periodic form of length n is the symmetric form of length n+1
	// without its last sample.
	periodic := Generate(TypeBlackman, 64, WithPeriodic())
	symmetric := Generate(TypeBlackman, 65)
	for i, v := range periodic {
		if math.Abs(v-symmetric[i]) > 1e-12 {
			t.Fatalf("periodic[%d] = %v, want %v", i, v, symmetric[i])
		}
	}
}

func TestBlackmanAlpha(t *testing.T) {
	t.Parallel()

	w, err := Blackman(5, WithAlpha(0))
	if err != nil {
		t.Fatal(err)
	}
	hann := Generate(TypeHann, 5)
	for i := range w {
		if math.Abs(w[i]-hann[i]) > 1e-12 {
			t.Fatalf("w[%d] = %v, want %v", i, w[i], hann[i])
		}
	}
}

func TestInvalidLength(t *testing.T) {
	t.Parallel()

	if _, err := Blackman(0); err == nil {
		t.Fatal("Blackman(0) error = nil, want error")
	}
	if _, err := Hann(-3); err == nil {
		t.Fatal("Hann(-3) error = nil, want error")
	}
	if got := Generate(TypeHann, 0); got != nil {
		t.Fatalf("Generate(0) = %v, want nil", got)
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	buf := []float64{2, 2, 2, 2, 2}
	Apply(TypeHann, buf)
	want := []float64{0, 1, 2, 1, 0}
	for i := range buf {
		if math.Abs(buf[i]-want[i]) > 1e-12 {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestCoherentGain(t *testing.T) {
	t.Parallel()

	if got := CoherentGain(Generate(TypeBlackman, 1024, WithPeriodic())); math.Abs(got-0.42) > 1e-9 {
		t.Fatalf("CoherentGain = %v, want %v", got, 0.42)
	}
	if got := CoherentGain(nil); got != 0 {
		t.Fatalf("CoherentGain(nil) = %v, want %v", got, 0)
	}
}
