package graph

import "math"

// StereoPanner applies an equal-power pan to a stereo signal.
//
// Panning left keeps the left channel and folds a cos/sin weighted share of
// the right channel into it; panning right mirrors that.
type StereoPanner struct {
	base
	pan *Param
}

// NewStereoPanner creates a panner with pan in [-1, 1], negative is left.
func NewStereoPanner(id string, pan float64) *StereoPanner {
	p := &StereoPanner{
		base: base{id: id},
		pan:  newParam("pan", 0, -1, 1),
	}
	p.pan.Set(pan)
	return p
}

// Kind reports KindStereoPanner.
func (p *StereoPanner) Kind() Kind { return KindStereoPanner }

// Pan returns the pan parameter.
func (p *StereoPanner) Pan() *Param { return p.pan }

// Params returns the pan parameter.
func (p *StereoPanner) Params() []*Param { return []*Param{p.pan} }

// Process pans a stereo input with the equal-power law.
func (p *StereoPanner) Process(in, out Bus) {
	pan := p.pan.Value()
	inL, inR := in[0], in[1]
	outL, outR := out[0], out[1]

	if pan <= 0 {
		x := (pan + 1) * math.Pi / 2
		gL, gR := math.Cos(x), math.Sin(x)
		for i := range inL {
			outL[i] = inL[i] + inR[i]*gL
			outR[i] = inR[i] * gR
		}
		return
	}

	x := pan * math.Pi / 2
	gL, gR := math.Cos(x), math.Sin(x)
	for i := range inL {
		outL[i] = inL[i] * gL
		outR[i] = inR[i] + inL[i]*gR
	}
}
