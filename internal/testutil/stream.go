package testutil

import "fmt"

// Stereo duplicates a mono signal into interleaved stereo frames.
func Stereo(mono []float64) [][2]float64 {
	out := make([][2]float64, len(mono))
	for i, v := range mono {
		out[i] = [2]float64{v, v}
	}
	return out
}

// Channel extracts one channel of interleaved frames.
func Channel(frames [][2]float64, ch int) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f[ch]
	}
	return out
}

// Streamer replays a fixed set of frames once. It satisfies beep.StreamSeeker.
type Streamer struct {
	frames [][2]float64
	pos    int
}

// NewStreamer wraps frames in a seekable stream.
func NewStreamer(frames [][2]float64) *Streamer {
	return &Streamer{frames: frames}
}

// Stream copies the next frames into samples.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n := copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

// Err always returns nil.
func (s *Streamer) Err() error { return nil }

// Len returns the total number of frames.
func (s *Streamer) Len() int { return len(s.frames) }

// Position returns the index of the next frame.
func (s *Streamer) Position() int { return s.pos }

// Seek moves the read position.
func (s *Streamer) Seek(p int) error {
	if p < 0 || p > len(s.frames) {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, len(s.frames))
	}
	s.pos = p
	return nil
}
