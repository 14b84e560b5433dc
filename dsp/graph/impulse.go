package graph

import (
	"math"
	"math/rand/v2"
)

// ImpulseResponse synthesises a decaying noise impulse response of the given
// length in seconds: white noise in [-1, 1] shaped by (1 - t/len)^2. The
// result is planar, one slice per channel.
func ImpulseResponse(sampleRate, seconds float64, channels int, rng *rand.Rand) [][]float64 {
	length := int(math.Round(sampleRate * seconds))
	if length <= 0 || channels <= 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}

	ir := make([][]float64, channels)
	for ch := range ir {
		data := make([]float64, length)
		for i := range data {
			decay := 1 - float64(i)/float64(length)
			data[i] = (rng.Float64()*2 - 1) * decay * decay
		}
		ir[ch] = data
	}
	return ir
}
