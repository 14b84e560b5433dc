package player

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-player/dsp/graph"
)

const (
	// MinEQGain and MaxEQGain bound every band gain in dB.
	MinEQGain = -12.0
	MaxEQGain = 12.0

	// EQQ is the fixed quality factor of every EQ band.
	EQQ = 1.0

	// MaxDelayTime is the capacity of the delay line in seconds.
	MaxDelayTime = 1.0
)

// EQBand is one band of the 10-band equaliser. Frequency and Label are fixed
// at creation; Gain is in dB.
type EQBand struct {
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Gain      float64 `yaml:"gain" json:"gain"`
	Label     string  `yaml:"label" json:"label"`
}

// EQFrequencies are the band centre frequencies in Hz.
var EQFrequencies = [10]float64{32, 64, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// DefaultEQBands returns the 10 bands at 0 dB, or at the given gains when
// provided. Missing gains stay at 0 dB.
func DefaultEQBands(gains ...float64) []EQBand {
	bands := make([]EQBand, len(EQFrequencies))
	for i, f := range EQFrequencies {
		bands[i] = EQBand{Frequency: f, Label: bandLabel(f)}
		if i < len(gains) {
			bands[i].Gain = clampFloat(gains[i], MinEQGain, MaxEQGain)
		}
	}
	return bands
}

func bandLabel(freq float64) string {
	if freq >= 1000 {
		return fmt.Sprintf("%gK", freq/1000)
	}
	return fmt.Sprintf("%g", freq)
}

// CompressorSettings holds the dynamics parameters. Attack and release are
// in seconds.
type CompressorSettings struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Ratio     float64 `yaml:"ratio" json:"ratio"`
	Attack    float64 `yaml:"attack" json:"attack"`
	Release   float64 `yaml:"release" json:"release"`
}

// FilterSettings holds the post-compressor filter.
type FilterSettings struct {
	Type      graph.FilterType `yaml:"type" json:"type"`
	Frequency float64          `yaml:"frequency" json:"frequency"`
	Q         float64          `yaml:"q" json:"q"`
}

// AudioEffects is the full effect state. Dry level is always 1 - Reverb.
type AudioEffects struct {
	Reverb       float64            `yaml:"reverb" json:"reverb"`
	Delay        float64            `yaml:"delay" json:"delay"`
	DelayTime    float64            `yaml:"delay_time" json:"delay_time"`
	Compressor   CompressorSettings `yaml:"compressor" json:"compressor"`
	Filter       FilterSettings     `yaml:"filter" json:"filter"`
	StereoPanner float64            `yaml:"stereo_panner" json:"stereo_panner"`
}

// DefaultEffects returns the neutral effect state.
func DefaultEffects() AudioEffects {
	return AudioEffects{
		Reverb:    0,
		Delay:     0,
		DelayTime: 0.3,
		Compressor: CompressorSettings{
			Threshold: -24,
			Ratio:     4,
			Attack:    0.003,
			Release:   0.25,
		},
		Filter: FilterSettings{
			Type:      graph.Lowpass,
			Frequency: 20000,
			Q:         1,
		},
		StereoPanner: 0,
	}
}

// DryLevel returns the complementary dry gain.
func (e AudioEffects) DryLevel() float64 {
	return 1 - e.Reverb
}

// CompressorPatch updates a subset of compressor settings.
type CompressorPatch struct {
	Threshold *float64 `json:"threshold,omitempty"`
	Ratio     *float64 `json:"ratio,omitempty"`
	Attack    *float64 `json:"attack,omitempty"`
	Release   *float64 `json:"release,omitempty"`
}

// FilterPatch updates a subset of filter settings.
type FilterPatch struct {
	Type      *graph.FilterType `json:"type,omitempty"`
	Frequency *float64          `json:"frequency,omitempty"`
	Q         *float64          `json:"q,omitempty"`
}

// EffectsPatch is a partial AudioEffects update. Nil fields are left
// untouched.
type EffectsPatch struct {
	Reverb       *float64         `json:"reverb,omitempty"`
	Delay        *float64         `json:"delay,omitempty"`
	DelayTime    *float64         `json:"delay_time,omitempty"`
	Compressor   *CompressorPatch `json:"compressor,omitempty"`
	Filter       *FilterPatch     `json:"filter,omitempty"`
	StereoPanner *float64         `json:"stereo_panner,omitempty"`
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// apply merges the patch into e. Values are clamped to the ranges the graph
// nodes accept; non-finite values and unknown filter types are dropped.
func (p EffectsPatch) apply(e AudioEffects) AudioEffects {
	set := func(dst *float64, src *float64, lo, hi float64) {
		if src == nil || math.IsNaN(*src) || math.IsInf(*src, 0) {
			return
		}
		*dst = clampFloat(*src, lo, hi)
	}

	set(&e.Reverb, p.Reverb, 0, 1)
	set(&e.Delay, p.Delay, 0, 1)
	set(&e.DelayTime, p.DelayTime, 0, MaxDelayTime)
	set(&e.StereoPanner, p.StereoPanner, -1, 1)

	if c := p.Compressor; c != nil {
		set(&e.Compressor.Threshold, c.Threshold, -100, 0)
		set(&e.Compressor.Ratio, c.Ratio, 1, 20)
		set(&e.Compressor.Attack, c.Attack, 0, 1)
		set(&e.Compressor.Release, c.Release, 0, 1)
	}
	if f := p.Filter; f != nil {
		if f.Type != nil && validFilterType(*f.Type) {
			e.Filter.Type = *f.Type
		}
		set(&e.Filter.Frequency, f.Frequency, 0, math.MaxFloat64)
		set(&e.Filter.Q, f.Q, 0.0001, 1000)
	}
	return e
}

// validFilterType reports whether t can be used by the effect filter. Peaking
// is reserved for the equaliser.
func validFilterType(t graph.FilterType) bool {
	switch t {
	case graph.Lowpass, graph.Highpass, graph.Bandpass, graph.Notch:
		return true
	default:
		return false
	}
}

// Patch returns a patch that sets every field of e.
func (e AudioEffects) Patch() EffectsPatch {
	return EffectsPatch{
		Reverb:    Ptr(e.Reverb),
		Delay:     Ptr(e.Delay),
		DelayTime: Ptr(e.DelayTime),
		Compressor: &CompressorPatch{
			Threshold: Ptr(e.Compressor.Threshold),
			Ratio:     Ptr(e.Compressor.Ratio),
			Attack:    Ptr(e.Compressor.Attack),
			Release:   Ptr(e.Compressor.Release),
		},
		Filter: &FilterPatch{
			Type:      Ptr(e.Filter.Type),
			Frequency: Ptr(e.Filter.Frequency),
			Q:         Ptr(e.Filter.Q),
		},
		StereoPanner: Ptr(e.StereoPanner),
	}
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
