package graph

import "github.com/cwbudde/algo-vecmath"

// Quantum is the number of frames rendered per processing step.
const Quantum = 128

// Channels is the fixed channel count of every bus in the graph.
const Channels = 2

// Bus is a planar stereo block: Bus[0] is the left channel, Bus[1] the right.
type Bus [Channels][]float64

// NewBus allocates a zeroed bus of n frames.
func NewBus(n int) Bus {
	return Bus{make([]float64, n), make([]float64, n)}
}

// Len returns the number of frames in the bus.
func (b Bus) Len() int {
	return len(b[0])
}

// Zero clears both channels.
func (b Bus) Zero() {
	clear(b[0])
	clear(b[1])
}

// CopyFrom copies src into b.
func (b Bus) CopyFrom(src Bus) {
	copy(b[0], src[0])
	copy(b[1], src[1])
}

// Accumulate adds src into b sample by sample.
func (b Bus) Accumulate(src Bus) {
	vecmath.AddBlockInPlace(b[0], src[0])
	vecmath.AddBlockInPlace(b[1], src[1])
}

// Scale writes src*gain into b.
func (b Bus) Scale(src Bus, gain float64) {
	vecmath.ScaleBlock(b[0], src[0], gain)
	vecmath.ScaleBlock(b[1], src[1], gain)
}

// Silent reports whether every sample of the bus is zero.
func (b Bus) Silent() bool {
	for ch := range b {
		for _, v := range b[ch] {
			if v != 0 {
				return false
			}
		}
	}
	return true
}
