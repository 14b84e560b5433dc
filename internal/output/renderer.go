package output

import (
	"github.com/gopxl/beep/v2"

	"github.com/cwbudde/algo-player/player"
)

// streamer adapts a graph renderer to a never-ending beep streamer.
func streamer(r player.Renderer) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		r.Render(samples)
		return len(samples), true
	})
}
