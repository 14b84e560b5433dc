package graph

// Gain scales its input by a linear factor.
type Gain struct {
	base
	gain *Param
}

// NewGain creates a gain node with the given initial linear gain.
func NewGain(id string, gain float64) *Gain {
	g := &Gain{
		base: base{id: id},
		gain: newParam("gain", 1, 0, 10),
	}
	g.gain.Set(gain)
	return g
}

// Kind reports KindGain.
func (g *Gain) Kind() Kind { return KindGain }

// Gain returns the gain parameter.
func (g *Gain) Gain() *Param { return g.gain }

// Params returns the gain parameter.
func (g *Gain) Params() []*Param { return []*Param{g.gain} }

// Process scales in by the current gain.
func (g *Gain) Process(in, out Bus) {
	out.Scale(in, g.gain.Value())
}
