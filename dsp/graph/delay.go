package graph

import (
	"math"

	"github.com/cwbudde/algo-player/dsp/delay"
	"github.com/cwbudde/algo-player/dsp/interp"
)

// Delay is a per-channel delay line.
//
// Delay is the only node allowed on a cycle: its output for a quantum is read
// before any node runs and its input is written after all nodes have run. The
// effective delay is therefore never shorter than one quantum.
type Delay struct {
	base
	sampleRate float64
	maxDelay   float64

	delayTime *Param
	lines     [Channels]*delay.Line
}

// NewDelay creates a delay with delayTime seconds and capacity for maxDelay
// seconds.
func NewDelay(id string, sampleRate, delayTime, maxDelay float64) *Delay {
	if maxDelay <= 0 {
		maxDelay = 1
	}
	size := int(math.Ceil(maxDelay*sampleRate)) + Quantum + 2
	d := &Delay{
		base:       base{id: id},
		sampleRate: sampleRate,
		maxDelay:   maxDelay,
		delayTime:  newParam("delayTime", 0, 0, maxDelay),
	}
	for ch := range d.lines {
		// size is always positive here.
		d.lines[ch], _ = delay.New(size, delay.WithMode(interp.Linear))
	}
	d.delayTime.Set(delayTime)
	return d
}

// Kind reports KindDelay.
func (d *Delay) Kind() Kind { return KindDelay }

// DelayTime returns the delay time parameter in seconds.
func (d *Delay) DelayTime() *Param { return d.delayTime }

// MaxDelay returns the capacity in seconds.
func (d *Delay) MaxDelay() float64 { return d.maxDelay }

// Params returns the delay time parameter.
func (d *Delay) Params() []*Param { return []*Param{d.delayTime} }

// Process delays in by the current delay time. It is used when the node is
// driven directly rather than through a Graph.
func (d *Delay) Process(in, out Bus) {
	d.read(out)
	d.write(in)
}

// Reset clears both lines.
func (d *Delay) Reset() {
	for _, l := range d.lines {
		l.Reset()
	}
}

func (d *Delay) frames() float64 {
	return math.Max(d.delayTime.Value()*d.sampleRate, Quantum)
}

func (d *Delay) read(out Bus) {
	frames := d.frames()
	for ch, l := range d.lines {
		dst := out[ch]
		for i := range dst {
			dst[i] = l.ReadFractional(frames - float64(i))
		}
	}
}

func (d *Delay) write(in Bus) {
	for ch, l := range d.lines {
		for _, v := range in[ch] {
			l.Write(flushDenormal(v))
		}
	}
}
