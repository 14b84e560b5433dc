package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-player/dsp/interp"
)

func TestNewRejectsNonPositiveSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Fatalf("New(%d) error = nil, want error", size)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	l, err := New(16)
	if err != nil {
		t.Fatal(err)
	}
	if got := l.Len(); got != 16 {
		t.Fatalf("Len() = %v, want %v", got, 16)
	}
	if got := l.Mode(); got != interp.Hermite {
		t.Fatalf("Mode() = %v, want %v", got, interp.Hermite)
	}

	l, err = New(16, WithMode(interp.Linear))
	if err != nil {
		t.Fatal(err)
	}
	if got := l.Mode(); got != interp.Linear {
		t.Fatalf("Mode() = %v, want %v", got, interp.Linear)
	}
}

func TestReadReturnsPastSamples(t *testing.T) {
	t.Parallel()

	l, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 5; i++ {
		l.Write(float64(i))
	}

	tests := []struct {
		delay int
		want  float64
	}{
		{1, 5},
		{2, 4},
		{5, 1},
		{6, 0},
	}
	for _, tt := range tests {
		if got := l.Read(tt.delay); got != tt.want {
			t.Fatalf("Read(%d) = %v, want %v", tt.delay, got, tt.want)
		}
	}
}

func TestReadWrapsAround(t *testing.T) {
	t.Parallel()

	l, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10; i++ {
		l.Write(float64(i))
	}
	for delay, want := range map[int]float64{1: 10, 2: 9, 4: 7, 5: 10} {
		if got := l.Read(delay); got != want {
			t.Fatalf("Read(%d) = %v, want %v", delay, got, want)
		}
	}
}

func TestReadFractional(t *testing.T) {
	t.Parallel()

	for _, mode := range []interp.Mode{interp.Linear, interp.Hermite} {
		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			l, err := New(32, WithMode(mode))
			if err != nil {
				t.Fatal(err)
			}
			// A ramp is reproduced exactly by both kernels.
			for i := range 20 {
				l.Write(float64(i))
			}
			for _, delay := range []float64{2, 2.25, 3.5, 7.75} {
				want := 20 - delay
				if got := l.ReadFractional(delay); math.Abs(got-want) > 1e-9 {
					t.Fatalf("ReadFractional(%v) = %v, want %v", delay, got, want)
				}
			}
		})
	}
}

func TestReadFractionalClamps(t *testing.T) {
	t.Parallel()

	l, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 8; i++ {
		l.Write(float64(i))
	}
	if got, want := l.ReadFractional(0), l.Read(1); got != want {
		t.Fatalf("ReadFractional(0) = %v, want %v", got, want)
	}
	if got, want := l.ReadFractional(100), l.Read(6); got != want {
		t.Fatalf("ReadFractional(100) = %v, want %v", got, want)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	l, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	l.Write(1)
	l.Write(2)
	l.Reset()
	for delay := 1; delay <= 4; delay++ {
		if got := l.Read(delay); got != 0 {
			t.Fatalf("Read(%d) after Reset = %v, want %v", delay, got, 0)
		}
	}
}
