package player

import (
	"context"

	"github.com/cwbudde/algo-player/dsp/graph"
	"github.com/cwbudde/algo-player/media"
)

// ContextState is the lifecycle state of an AudioContext.
type ContextState string

const (
	ContextSuspended ContextState = "suspended"
	ContextRunning   ContextState = "running"
	ContextClosed    ContextState = "closed"
)

// Renderer produces output frames. *graph.Graph implements it.
type Renderer interface {
	Render(dst [][2]float64)
}

// AudioContext is the host audio device. It starts suspended until Resume
// succeeds, which on most hosts requires a user gesture.
type AudioContext interface {
	SampleRate() float64
	State() ContextState
	Resume(ctx context.Context) error
	Attach(r Renderer) error
}

// MediaElement is the single playable source of a Player. Its Stream method
// feeds the graph's source node. Time and duration reach the player only as
// events.
type MediaElement interface {
	graph.Source

	// SetSource replaces the current source. The last call wins.
	SetSource(url string)
	Source() string
	// Play starts or resumes playback. It may block while the source loads
	// and fails with media.ErrAborted when superseded by SetSource or Pause.
	Play(ctx context.Context) error
	Pause()
	Paused() bool
	SetCurrentTime(seconds float64)
	Events() <-chan media.Event
}

// FrameScheduler runs a callback once on the next display frame. The
// callback must run asynchronously, never inside RequestFrame.
type FrameScheduler interface {
	RequestFrame(fn func())
}
