// Package delay implements a circular sample delay line.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-player/dsp/interp"
)

// Line is a circular delay line holding the most recent Len() samples.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional read interpolation. Hermite is the default.
func WithMode(m interp.Mode) Option {
	return func(l *Line) { l.mode = m }
}

// New returns a delay line holding size samples.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	l := &Line{buffer: make([]float64, size), mode: interp.Hermite}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Len returns the buffer size in samples.
func (l *Line) Len() int { return len(l.buffer) }

// Mode returns the fractional read interpolation.
func (l *Line) Mode() interp.Mode { return l.mode }

// Write appends one sample, overwriting the oldest.
func (l *Line) Write(sample float64) {
	l.buffer[l.writePos] = sample
	l.writePos++
	if l.writePos == len(l.buffer) {
		l.writePos = 0
	}
}

// Read returns the sample written delay writes ago. Read(1) is the most
// recent sample; delays wrap modulo Len().
func (l *Line) Read(delay int) float64 {
	size := len(l.buffer)
	return l.buffer[((l.writePos-delay)%size+size)%size]
}

// ReadFractional reads between samples. delay is clamped to [1, Len()-2] so
// every neighbour used by the interpolation lies inside the buffer.
func (l *Line) ReadFractional(delay float64) float64 {
	delay = math.Max(1, math.Min(delay, float64(len(l.buffer)-2)))

	p := int(math.Floor(delay))
	t := delay - float64(p)
	x0 := l.Read(p)
	if t == 0 {
		return x0
	}
	x1 := l.Read(p + 1)
	if l.mode == interp.Linear {
		return interp.Linear2(t, x0, x1)
	}
	return interp.Hermite4(t, l.Read(max(1, p-1)), x0, x1, l.Read(p+2))
}

// Reset clears the buffer.
func (l *Line) Reset() {
	clear(l.buffer)
	l.writePos = 0
}
