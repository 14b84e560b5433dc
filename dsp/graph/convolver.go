package graph

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	convBlock = Quantum
	convFFT   = 2 * convBlock
	convBins  = convBlock + 1

	irGainCalibration           = 0.00125
	irGainCalibrationSampleRate = 44100.0
	irMinPower                  = 0.000125
)

// ErrEmptyImpulse is returned for an impulse response without samples.
var ErrEmptyImpulse = errors.New("graph: empty impulse response")

// Convolver applies a stereo impulse response with uniformly partitioned
// overlap-save convolution. Partitions are one quantum long, so the node adds
// no latency.
//
// A mono impulse response is applied to both channels; a stereo response maps
// left to left and right to right.
type Convolver struct {
	base
	sampleRate float64

	plan  *algofft.Plan[complex128]
	parts [Channels][][]complex128 // per channel, per partition: bins 0..convBlock

	fdl  [Channels][][]complex128 // spectra of past input blocks
	head int

	history [Channels][]float64
	time    []complex128
	freq    []complex128
	acc     []complex128
	scale   float64
}

// NewConvolver creates a convolver from planar impulse channels. When
// normalize is set, the response is scaled by its RMS power like a Web Audio
// ConvolverNode.
func NewConvolver(id string, sampleRate float64, ir [][]float64, normalize bool) (*Convolver, error) {
	if len(ir) == 0 || len(ir[0]) == 0 {
		return nil, ErrEmptyImpulse
	}
	if len(ir) > Channels {
		return nil, fmt.Errorf("graph: impulse response has %d channels, at most %d supported", len(ir), Channels)
	}

	plan, err := algofft.NewPlan64(convFFT)
	if err != nil {
		return nil, fmt.Errorf("graph: failed to create FFT plan: %w", err)
	}

	c := &Convolver{
		base:       base{id: id},
		sampleRate: sampleRate,
		plan:       plan,
		time:       make([]complex128, convFFT),
		freq:       make([]complex128, convFFT),
		acc:        make([]complex128, convFFT),
		scale:      1,
	}
	if normalize {
		c.scale = impulseScale(ir, sampleRate)
	}

	length := len(ir[0])
	count := (length + convBlock - 1) / convBlock
	for ch := range Channels {
		src := ir[min(ch, len(ir)-1)]
		c.parts[ch] = make([][]complex128, count)
		c.fdl[ch] = make([][]complex128, count)
		c.history[ch] = make([]float64, convFFT)
		for k := range count {
			clear(c.time)
			for i := 0; i < convBlock && k*convBlock+i < len(src); i++ {
				c.time[i] = complex(src[k*convBlock+i]*c.scale, 0)
			}
			if err := plan.Forward(c.freq, c.time); err != nil {
				return nil, fmt.Errorf("graph: impulse spectrum: %w", err)
			}
			c.parts[ch][k] = append([]complex128(nil), c.freq[:convBins]...)
			c.fdl[ch][k] = make([]complex128, convBins)
		}
	}

	return c, nil
}

// Kind reports KindConvolver.
func (c *Convolver) Kind() Kind { return KindConvolver }

// Partitions returns the number of impulse partitions per channel.
func (c *Convolver) Partitions() int { return len(c.parts[0]) }

// Scale returns the normalisation gain applied to the impulse response.
func (c *Convolver) Scale() float64 { return c.scale }

// Reset clears the input history.
func (c *Convolver) Reset() {
	for ch := range Channels {
		clear(c.history[ch])
		for _, block := range c.fdl[ch] {
			clear(block)
		}
	}
	c.head = 0
}

// Process convolves one quantum per channel.
func (c *Convolver) Process(in, out Bus) {
	count := len(c.parts[0])
	c.head = (c.head + count - 1) % count

	for ch := range Channels {
		hist := c.history[ch]
		copy(hist, hist[convBlock:])
		copy(hist[convBlock:], in[ch])

		for i, v := range hist {
			c.time[i] = complex(v, 0)
		}
		if err := c.plan.Forward(c.freq, c.time); err != nil {
			clear(out[ch])
			continue
		}
		copy(c.fdl[ch][c.head], c.freq[:convBins])

		clear(c.acc)
		for k, h := range c.parts[ch] {
			x := c.fdl[ch][(c.head+k)%count]
			for b := range convBins {
				c.acc[b] += x[b] * h[b]
			}
		}
		for b := 1; b < convBlock; b++ {
			c.acc[convFFT-b] = complex(real(c.acc[b]), -imag(c.acc[b]))
		}

		if err := c.plan.Inverse(c.freq, c.acc); err != nil {
			clear(out[ch])
			continue
		}
		dst := out[ch]
		for i := range dst {
			dst[i] = real(c.freq[convBlock+i])
		}
	}
}

// impulseScale computes the Web Audio normalisation gain for an impulse
// response.
func impulseScale(ir [][]float64, sampleRate float64) float64 {
	var power float64
	for _, ch := range ir {
		for _, v := range ch {
			power += v * v
		}
	}
	power = math.Sqrt(power / float64(len(ir)*len(ir[0])))
	if math.IsNaN(power) || math.IsInf(power, 0) || power < irMinPower {
		power = irMinPower
	}

	scale := 1 / power
	scale *= irGainCalibration
	if sampleRate > 0 {
		scale *= irGainCalibrationSampleRate / sampleRate
	}
	return scale
}
