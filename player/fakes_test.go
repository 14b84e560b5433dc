package player

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/cwbudde/algo-player/media"
	"github.com/cwbudde/algo-player/session"
	"github.com/rs/zerolog"
)

const fakeSampleRate = 8000

var errNotAllowed = errors.New("play() not allowed without user gesture")

type fakeContext struct {
	mu        sync.Mutex
	state     ContextState
	resumeErr error
	resumes   int
	attached  []Renderer

	// When set, Resume signals resumeEntered and waits for resumeGate.
	resumeGate    chan struct{}
	resumeEntered chan struct{}
}

func newFakeContext() *fakeContext {
	return &fakeContext{state: ContextSuspended}
}

func (c *fakeContext) SampleRate() float64 { return fakeSampleRate }

func (c *fakeContext) State() ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeContext) Resume(context.Context) error {
	c.mu.Lock()
	gate, entered := c.resumeGate, c.resumeEntered
	c.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumes++
	if c.resumeErr != nil {
		return c.resumeErr
	}
	c.state = ContextRunning
	return nil
}

func (c *fakeContext) Attach(r Renderer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = append(c.attached, r)
	return nil
}

type fakeElement struct {
	mu      sync.Mutex
	src     string
	paused  bool
	current float64
	played  []string
	playErr error
	gates   map[string]chan struct{}
	entered chan string
	events  chan media.Event
}

func newFakeElement() *fakeElement {
	return &fakeElement{
		paused:  true,
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 64),
		events:  make(chan media.Event, 16),
	}
}

// gate makes Play for src block until the returned channel is closed.
func (e *fakeElement) gate(src string) chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch := make(chan struct{})
	e.gates[src] = ch
	return ch
}

func (e *fakeElement) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (e *fakeElement) SetSource(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.src = url
	e.current = 0
}

func (e *fakeElement) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

func (e *fakeElement) Play(ctx context.Context) error {
	e.mu.Lock()
	src := e.src
	gate := e.gates[src]
	e.mu.Unlock()

	e.entered <- src
	if gate != nil {
		<-gate
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playErr != nil {
		return e.playErr
	}
	if e.src != src {
		return media.ErrAborted
	}
	e.paused = false
	e.played = append(e.played, src)
	return nil
}

func (e *fakeElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

func (e *fakeElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *fakeElement) SetCurrentTime(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = seconds
}

func (e *fakeElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *fakeElement) Played() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.played...)
}

func (e *fakeElement) Events() <-chan media.Event { return e.events }

// manualScheduler runs frames only when flushed.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func (s *manualScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *manualScheduler) Flush() {
	s.mu.Lock()
	due := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range due {
		fn()
	}
}

type fakeSurface struct {
	mu       sync.Mutex
	metadata []session.Metadata
	states   []session.PlaybackState
	handlers map[session.Action]session.Handler
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{handlers: make(map[session.Action]session.Handler)}
}

func (f *fakeSurface) SetMetadata(m session.Metadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata = append(f.metadata, m)
}

func (f *fakeSurface) SetPlaybackState(s session.PlaybackState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, s)
}

func (f *fakeSurface) SetActionHandler(a session.Action, h session.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[a] = h
}

type fixture struct {
	ac        *fakeContext
	element   *fakeElement
	scheduler *manualScheduler
	surface   *fakeSurface
	player    *Player
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		ac:        newFakeContext(),
		element:   newFakeElement(),
		scheduler: &manualScheduler{},
		surface:   newFakeSurface(),
	}
	cfg := DefaultConfig()
	cfg.Builder.ReverbSeconds = 0.25
	cfg.Builder.Rand = rand.New(rand.NewPCG(3, 4))

	base := []Option{
		WithConfig(cfg),
		WithLogger(zerolog.Nop()),
		WithScheduler(f.scheduler),
		WithSurface(f.surface),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	p, err := New(f.ac, f.element, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.player = p
	return f
}

func track(id string) Track {
	return Track{
		ID:       id,
		Title:    "Title " + id,
		Artist:   "Artist",
		Duration: 180,
		CoverURL: "https://cdn.example/" + id + ".png",
		AudioURL: "https://cdn.example/" + id + ".mp3",
	}
}

func tracks(ids ...string) []Track {
	out := make([]Track, len(ids))
	for i, id := range ids {
		out[i] = track(id)
	}
	return out
}

func ids(ts []Track) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func currentID(p *Player) string {
	s := p.Snapshot()
	if s.CurrentTrack == nil {
		return ""
	}
	return s.CurrentTrack.ID
}
