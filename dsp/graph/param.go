package graph

import "math"

// Param is a named node parameter with a nominal range.
//
// Writes are clamped to the nominal range and non-finite values are ignored.
// Every accepted change bumps the version so nodes can refresh cached
// coefficients lazily on the next quantum.
type Param struct {
	name     string
	value    float64
	def      float64
	min, max float64
	version  uint64
}

func newParam(name string, def, minV, maxV float64) *Param {
	return &Param{name: name, value: def, def: def, min: minV, max: maxV}
}

// Name returns the parameter name.
func (p *Param) Name() string { return p.name }

// Value returns the current value.
func (p *Param) Value() float64 { return p.value }

// Default returns the value the parameter was created with.
func (p *Param) Default() float64 { return p.def }

// Range returns the nominal [min, max] range.
func (p *Param) Range() (float64, float64) { return p.min, p.max }

// Set assigns v clamped to the nominal range.
func (p *Param) Set(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	v = clamp(v, p.min, p.max)
	if v == p.value {
		return
	}
	p.value = v
	p.version++
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
