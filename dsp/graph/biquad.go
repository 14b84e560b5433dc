package graph

import (
	"fmt"
	"math"
)

// FilterType selects the response of a Biquad node.
type FilterType string

const (
	Lowpass  FilterType = "lowpass"
	Highpass FilterType = "highpass"
	Bandpass FilterType = "bandpass"
	Notch    FilterType = "notch"
	Peaking  FilterType = "peaking"
)

// ParseFilterType validates a filter type name.
func ParseFilterType(s string) (FilterType, error) {
	switch t := FilterType(s); t {
	case Lowpass, Highpass, Bandpass, Notch, Peaking:
		return t, nil
	default:
		return "", fmt.Errorf("graph: unknown filter type %q", s)
	}
}

type coefficients struct {
	b0, b1, b2, a1, a2 float64
}

// Biquad is a second-order IIR section in transposed direct form II with one
// state pair per channel.
//
// Coefficients are recomputed lazily when a parameter or the type changes.
// The state is kept across coefficient changes, so sweeping a parameter does
// not reset the filter memory.
type Biquad struct {
	base
	sampleRate float64

	typ       FilterType
	frequency *Param
	q         *Param
	gain      *Param

	coeff    coefficients
	version  uint64
	typDirty bool
	state    [Channels][2]float64
}

// NewBiquad creates a biquad node. Frequency is in Hz, gain in dB (used by
// peaking only).
func NewBiquad(id string, sampleRate float64, typ FilterType, frequency, q, gainDB float64) *Biquad {
	nyquist := sampleRate / 2
	b := &Biquad{
		base:       base{id: id},
		sampleRate: sampleRate,
		typ:        typ,
		frequency:  newParam("frequency", 350, 0, nyquist),
		q:          newParam("Q", 1, 0.0001, 1000),
		gain:       newParam("gain", 0, -40, 40),
	}
	b.frequency.Set(frequency)
	b.q.Set(q)
	b.gain.Set(gainDB)
	b.refresh()
	return b
}

// Kind reports KindBiquad.
func (b *Biquad) Kind() Kind { return KindBiquad }

// Type returns the filter response.
func (b *Biquad) Type() FilterType { return b.typ }

// SetType changes the filter response, keeping the state.
func (b *Biquad) SetType(t FilterType) {
	if t == b.typ {
		return
	}
	b.typ = t
	b.typDirty = true
}

// Frequency is the cutoff or centre frequency in Hz.
func (b *Biquad) Frequency() *Param { return b.frequency }

// Q is the quality factor.
func (b *Biquad) Q() *Param { return b.q }

// Gain is the boost or cut in dB. Only the peaking type uses it.
func (b *Biquad) Gain() *Param { return b.gain }

// Params returns frequency, Q and gain.
func (b *Biquad) Params() []*Param {
	return []*Param{b.frequency, b.q, b.gain}
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.state = [Channels][2]float64{}
}

// Process filters each channel, refreshing coefficients first when a
// parameter changed.
func (b *Biquad) Process(in, out Bus) {
	if b.typDirty || b.paramVersion() != b.version {
		b.refresh()
	}

	c := b.coeff
	for ch := range in {
		d0, d1 := b.state[ch][0], b.state[ch][1]
		src, dst := in[ch], out[ch]
		for i, x := range src {
			y := c.b0*x + d0
			d0 = c.b1*x - c.a1*y + d1
			d1 = c.b2*x - c.a2*y
			dst[i] = y
		}
		b.state[ch][0], b.state[ch][1] = flushDenormal(d0), flushDenormal(d1)
	}
}

func (b *Biquad) paramVersion() uint64 {
	return b.frequency.version + b.q.version + b.gain.version
}

func (b *Biquad) refresh() {
	b.coeff = design(b.typ, b.frequency.Value(), b.q.Value(), b.gain.Value(), b.sampleRate)
	b.version = b.paramVersion()
	b.typDirty = false
}

// Response returns the magnitude response in dB at freq.
func (b *Biquad) Response(freq float64) float64 {
	c := design(b.typ, b.frequency.Value(), b.q.Value(), b.gain.Value(), b.sampleRate)
	w := 2 * math.Pi * freq / b.sampleRate
	cw, sw := math.Cos(w), math.Sin(w)
	c2w, s2w := math.Cos(2*w), math.Sin(2*w)

	nr := c.b0 + c.b1*cw + c.b2*c2w
	ni := -(c.b1*sw + c.b2*s2w)
	dr := 1 + c.a1*cw + c.a2*c2w
	di := -(c.a1*sw + c.a2*s2w)

	mag := math.Sqrt((nr*nr + ni*ni) / (dr*dr + di*di))
	return 20 * math.Log10(mag)
}

// design computes RBJ cookbook coefficients. Frequencies outside (0, nyquist)
// are pulled just inside so the section stays stable; a lowpass at or above
// nyquist becomes transparent, a highpass at 0 likewise.
func design(typ FilterType, freq, q, gainDB, sampleRate float64) coefficients {
	nyquist := sampleRate / 2
	switch {
	case typ == Lowpass && freq >= nyquist:
		return coefficients{b0: 1}
	case typ == Highpass && freq <= 0:
		return coefficients{b0: 1}
	case typ == Peaking && gainDB == 0:
		return coefficients{b0: 1}
	}

	freq = clamp(freq, 1, 0.499*sampleRate)
	if q <= 0 {
		q = 0.0001
	}

	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch typ {
	case Highpass:
		b0 = (1 + cw) / 2
		b1 = -(1 + cw)
		b2 = (1 + cw) / 2
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	case Notch:
		b0 = 1
		b1 = -2 * cw
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	case Peaking:
		a := math.Pow(10, gainDB/40)
		b0 = 1 + alpha*a
		b1 = -2 * cw
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cw
		a2 = 1 - alpha/a
	default:
		b0 = (1 - cw) / 2
		b1 = 1 - cw
		b2 = (1 - cw) / 2
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	}

	return coefficients{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

func flushDenormal(v float64) float64 {
	if math.Abs(v) < 1e-30 {
		return 0
	}
	return v
}
