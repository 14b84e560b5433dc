// Package interp provides fractional-sample interpolation kernels.
package interp

// Mode selects how a fractional position between samples is resolved.
type Mode int

const (
	// Linear blends the two neighbouring samples.
	Linear Mode = iota
	// Hermite fits a cubic through four samples.
	Hermite
)

func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	default:
		return "unknown"
	}
}

// Linear2 interpolates from x0 towards x1 at t in [0, 1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 interpolates from x0 to x1 using the outer neighbours xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + x0
}
