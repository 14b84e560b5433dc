// Package window generates spectral analysis windows.
package window

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

// DefaultBlackmanAlpha gives the classic 0.42/0.5/0.08 Blackman window.
const DefaultBlackmanAlpha = 0.16

// Option configures window generation.
type Option func(*config)

type config struct {
	alpha    float64
	periodic bool
}

// WithAlpha sets the Blackman alpha. Negative values are ignored.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
		}
	}
}

// WithPeriodic generates the periodic form used for FFT framing instead of
// the symmetric form.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns length coefficients of window t, or nil for length <= 0.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}
	cfg := config{alpha: DefaultBlackmanAlpha}
	for _, opt := range opts {
		opt(&cfg)
	}

	coeffs := cosineTerms(t, cfg.alpha)
	den := float64(length - 1)
	if cfg.periodic || length == 1 {
		den = float64(length)
	}

	out := make([]float64, length)
	for i := range out {
		phase := 2 * math.Pi * float64(i) / den
		var sum float64
		for k, c := range coeffs {
			sum += c * math.Cos(float64(k)*phase)
		}
		out[i] = sum
	}
	return out
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	if err := validateLength(size); err != nil {
		return nil, err
	}
	return Generate(TypeHann, size, opts...), nil
}

// Blackman returns Blackman window coefficients.
func Blackman(size int, opts ...Option) ([]float64, error) {
	if err := validateLength(size); err != nil {
		return nil, err
	}
	return Generate(TypeBlackman, size, opts...), nil
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// CoherentGain returns the mean of the coefficients, the amplitude a
// full-scale sinusoid keeps after windowing.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range coeffs {
		sum += v
	}
	return sum / float64(len(coeffs))
}

func cosineTerms(t Type, alpha float64) []float64 {
	switch t {
	case TypeHann:
		return []float64{0.5, -0.5}
	case TypeHamming:
		return []float64{0.54, -0.46}
	case TypeBlackman:
		return []float64{(1 - alpha) / 2, -0.5, alpha / 2}
	default:
		return []float64{1}
	}
}

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}
