package graph

// Source produces interleaved stereo frames. It matches beep.Streamer, so
// decoded beep streams can feed the graph directly.
type Source interface {
	Stream(samples [][2]float64) (n int, ok bool)
}

// MediaSource is the entry node of a graph. It pulls one quantum per render
// from its Source and outputs silence when the source is nil, drained or
// short.
type MediaSource struct {
	base
	src   Source
	frame [][2]float64
}

// NewMediaSource creates a source node reading from src.
func NewMediaSource(id string, src Source) *MediaSource {
	return &MediaSource{
		base:  base{id: id},
		src:   src,
		frame: make([][2]float64, Quantum),
	}
}

// Kind reports KindMediaSource.
func (m *MediaSource) Kind() Kind { return KindMediaSource }

// SetSource replaces the upstream source.
func (m *MediaSource) SetSource(src Source) { m.src = src }

// Process pulls one quantum from the source, zero-filling what it cannot
// supply.
func (m *MediaSource) Process(_, out Bus) {
	n := 0
	if m.src != nil {
		for n < len(m.frame) {
			got, ok := m.src.Stream(m.frame[n:])
			n += got
			if !ok || got == 0 {
				break
			}
		}
	}
	for i := range out.Len() {
		if i < n {
			out[0][i] = m.frame[i][0]
			out[1][i] = m.frame[i][1]
			continue
		}
		out[0][i] = 0
		out[1][i] = 0
	}
}
