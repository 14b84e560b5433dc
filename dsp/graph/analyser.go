package graph

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-player/dsp/window"
)

const (
	// DefaultFFTSize is the analyser FFT size used by the player.
	DefaultFFTSize = 256
	// DefaultSmoothing is the default smoothing time constant.
	DefaultSmoothing = 0.8
	// DefaultMinDecibels maps to byte value 0.
	DefaultMinDecibels = -100.0
	// DefaultMaxDecibels maps to byte value 255.
	DefaultMaxDecibels = -30.0

	minFFTSize = 32
	maxFFTSize = 32768
)

// Analyser passes audio through unchanged and keeps the last FFTSize samples
// of its mono downmix for inspection.
//
// Frequency data follows the Web Audio analyser: Blackman window, magnitudes
// scaled by 1/N, exponential smoothing across frames, conversion to dB and
// linear mapping of [MinDecibels, MaxDecibels] onto 0..255. Spectra are only
// recomputed when new audio arrived since the previous read.
type Analyser struct {
	base

	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	plan   *algofft.Plan[complex128]
	window []float64

	ring     []float64
	writePos int
	dirty    bool

	in, freq []complex128
	re, im   []float64
	mag      []float64
	smoothed []float64
}

// NewAnalyser creates an analyser. fftSize must be a power of two in
// [32, 32768]; smoothing must lie in [0, 1]; minDB must be below maxDB.
func NewAnalyser(id string, fftSize int, smoothing, minDB, maxDB float64) (*Analyser, error) {
	if fftSize < minFFTSize || fftSize > maxFFTSize || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("analyser fft size must be a power of two in [%d, %d]: %d", minFFTSize, maxFFTSize, fftSize)
	}
	if smoothing < 0 || smoothing > 1 || math.IsNaN(smoothing) {
		return nil, fmt.Errorf("analyser smoothing must be in [0, 1]: %f", smoothing)
	}
	if !(minDB < maxDB) {
		return nil, fmt.Errorf("analyser min decibels must be below max decibels: %f >= %f", minDB, maxDB)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyser fft plan: %w", err)
	}
	win, err := window.Blackman(fftSize, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("analyser window: %w", err)
	}

	bins := fftSize / 2
	a := &Analyser{
		base:      base{id: id},
		fftSize:   fftSize,
		smoothing: smoothing,
		minDB:     minDB,
		maxDB:     maxDB,
		plan:      plan,
		window:    win,
		ring:      make([]float64, fftSize),
		in:        make([]complex128, fftSize),
		freq:      make([]complex128, fftSize),
		re:        make([]float64, bins),
		im:        make([]float64, bins),
		mag:       make([]float64, bins),
		smoothed:  make([]float64, bins),
	}
	return a, nil
}

// Kind reports KindAnalyser.
func (a *Analyser) Kind() Kind { return KindAnalyser }

// FFTSize returns the analysis window length.
func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount returns FFTSize/2, the length of frequency data.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// Process copies in to out and appends its mono downmix to the ring.
func (a *Analyser) Process(in, out Bus) {
	out.CopyFrom(in)
	left, right := in[0], in[1]
	for i := range left {
		a.ring[a.writePos] = 0.5 * (left[i] + right[i])
		a.writePos++
		if a.writePos == a.fftSize {
			a.writePos = 0
		}
	}
	a.dirty = true
}

// FloatFrequencyData writes the smoothed spectrum in dB into dst.
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.analyse()
	n := min(len(dst), len(a.smoothed))
	for k := range n {
		dst[k] = toDB(a.smoothed[k])
	}
}

// ByteFrequencyData writes the smoothed spectrum mapped to 0..255 into dst.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.analyse()
	span := a.maxDB - a.minDB
	n := min(len(dst), len(a.smoothed))
	for k := range n {
		scaled := 255 * (toDB(a.smoothed[k]) - a.minDB) / span
		dst[k] = byte(clamp(scaled, 0, 255))
	}
}

// ByteTimeDomainData writes the most recent waveform into dst, with 128 as
// the zero line.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	n := min(len(dst), a.fftSize)
	read := a.writePos
	for i := range n {
		v := 128 * (1 + a.ring[read])
		dst[i] = byte(clamp(v, 0, 255))
		read++
		if read == a.fftSize {
			read = 0
		}
	}
}

// Reset clears the waveform history and smoothing state.
func (a *Analyser) Reset() {
	clear(a.ring)
	clear(a.smoothed)
	a.writePos = 0
	a.dirty = false
}

func (a *Analyser) analyse() {
	if !a.dirty {
		return
	}
	a.dirty = false

	read := a.writePos
	for i := range a.fftSize {
		a.in[i] = complex(a.ring[read]*a.window[i], 0)
		read++
		if read == a.fftSize {
			read = 0
		}
	}
	if err := a.plan.Forward(a.freq, a.in); err != nil {
		return
	}

	scale := 1 / float64(a.fftSize)
	for k := range a.re {
		a.re[k] = real(a.freq[k]) * scale
		a.im[k] = imag(a.freq[k]) * scale
	}
	vecmath.Magnitude(a.mag, a.re, a.im)

	s := a.smoothing
	for k, m := range a.mag {
		v := s*a.smoothed[k] + (1-s)*m
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v
	}
}

func toDB(linear float64) float64 {
	if linear <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(linear)
}
