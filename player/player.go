package player

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/cwbudde/algo-player/media"
	"github.com/cwbudde/algo-player/session"
	"github.com/rs/zerolog"
)

var (
	// ErrMissingSource is logged when a track without an audio URL is played.
	ErrMissingSource = errors.New("track has no audio source")
	// ErrNothingLoaded is logged when play is requested before any track.
	ErrNothingLoaded = errors.New("no track loaded")
)

// DefaultRestartThreshold is how far into a track, in seconds, PlayPrevious
// restarts the current track instead of moving back in the queue.
const DefaultRestartThreshold = 3.0

// Config holds the tunables of a Player.
type Config struct {
	Volume           float64
	Effects          AudioEffects
	EQGains          []float64
	RestartThreshold float64
	Builder          BuilderConfig
}

// DefaultConfig returns full volume, neutral effects and a flat EQ.
func DefaultConfig() Config {
	return Config{
		Volume:           1,
		Effects:          DefaultEffects(),
		RestartThreshold: DefaultRestartThreshold,
		Builder:          DefaultBuilderConfig(),
	}
}

// Option mutates a Player during construction.
type Option func(*Player)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(p *Player) { p.cfg = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Player) { p.logger = logger }
}

// WithScheduler sets the frame scheduler of the analysis loop.
func WithScheduler(s FrameScheduler) Option {
	return func(p *Player) { p.scheduler = s }
}

// WithSurface connects an OS media surface. Without one the media session
// bridge is disabled.
func WithSurface(s session.Surface) Option {
	return func(p *Player) { p.surface = s }
}

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(p *Player) { p.rng = r }
}

// Player is the playback engine. All methods are safe for concurrent use.
//
// Operations that wait on the host (resuming the audio context, starting the
// media element) release the lock while waiting. Each play request takes a
// new generation number; a request whose generation is no longer current
// when it completes is discarded, so the most recent request always wins.
type Player struct {
	mu sync.Mutex

	cfg       Config
	logger    zerolog.Logger
	ac        AudioContext
	element   MediaElement
	scheduler FrameScheduler
	surface   session.Surface
	rng       *rand.Rand

	builder  *Builder
	handle   *GraphHandle
	bridge   *session.Bridge
	analysis *AnalysisLoop

	state   PlaybackState
	effects AudioEffects
	bands   []EQBand
	current *Track
	loaded  *Track
	queue   queue
	gen     uint64
}

// New creates a player around a host audio context and media element.
func New(ac AudioContext, element MediaElement, opts ...Option) (*Player, error) {
	if ac == nil {
		return nil, errors.New("player: nil audio context")
	}
	if element == nil {
		return nil, errors.New("player: nil media element")
	}

	p := &Player{
		cfg:     DefaultConfig(),
		logger:  zerolog.Nop(),
		ac:      ac,
		element: element,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if p.cfg.RestartThreshold <= 0 {
		p.cfg.RestartThreshold = DefaultRestartThreshold
	}
	if p.scheduler == nil {
		return nil, errors.New("player: nil frame scheduler")
	}

	p.logger = p.logger.With().Str("component", "player").Logger()
	p.state = PlaybackState{
		Volume:     clampFloat(p.cfg.Volume, 0, 1),
		RepeatMode: RepeatOff,
	}
	p.effects = p.cfg.Effects.Patch().apply(DefaultEffects())
	p.bands = DefaultEQBands(p.cfg.EQGains...)
	p.builder = NewBuilder(p.cfg.Builder, p.logger)
	p.bridge = session.NewBridge(p.surface, p, p.logger)
	p.analysis = NewAnalysisLoop(p.scheduler, p.builder.cfg.FFTSize/2, p.IsPlaying, p.readSpectrum)

	return p, nil
}

// Analysis returns the spectrum loop for subscriptions.
func (p *Player) Analysis() *AnalysisLoop {
	return p.analysis
}

// Graph returns the built graph, or nil before the first play.
func (p *Player) Graph() *GraphHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// IsPlaying reports the transport state.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.IsPlaying
}

// Snapshot returns a consistent copy of the player state.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	s := Snapshot{
		PlaybackState: p.state,
		Queue:         slices.Clone(p.queue.items),
		IsShuffled:    p.queue.shuffled,
		Effects:       p.effects,
		EQBands:       slices.Clone(p.bands),
	}
	if p.current != nil {
		t := *p.current
		s.CurrentTrack = &t
	}
	p.mu.Unlock()

	s.AnalyserData = p.analysis.Data()
	return s
}

// PlayTrack loads t into the media element and starts it. A track without
// an audio URL is logged and ignored.
func (p *Player) PlayTrack(ctx context.Context, t Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playTrackLocked(ctx, t)
}

func (p *Player) playTrackLocked(ctx context.Context, t Track) {
	if t.AudioURL == "" {
		p.logger.Warn().Err(ErrMissingSource).Str("track", t.ID).Str("title", t.Title).Msg("cannot play track")
		return
	}

	p.element.SetSource(t.AudioURL)
	p.loaded = &t
	p.startLocked(ctx, &t)
}

// TogglePlay pauses when playing and plays otherwise.
func (p *Player) TogglePlay(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.IsPlaying {
		p.pauseLocked()
		return
	}
	p.resumeLocked(ctx)
}

// Play resumes the loaded track. It does nothing while playing.
func (p *Player) Play(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.IsPlaying {
		return
	}
	p.resumeLocked(ctx)
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseLocked()
}

// Seek moves playback to seconds and reflects it in CurrentTime at once.
func (p *Player) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seekLocked(seconds)
}

// SetVolume sets the output volume, clamped to [0, 1]. Muting is unaffected.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Volume = clampFloat(v, 0, 1)
	p.applyMasterLocked()
}

// ToggleMute silences or restores the output without touching Volume.
func (p *Player) ToggleMute() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.IsMuted = !p.state.IsMuted
	p.applyMasterLocked()
}

// Run consumes media element events until ctx is done.
func (p *Player) Run(ctx context.Context) error {
	events := p.element.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ctx, ev)
		}
	}
}

func (p *Player) handleEvent(ctx context.Context, ev media.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.Source != p.element.Source() {
		return
	}

	switch ev.Type {
	case media.EventLoadedMetadata:
		p.state.Duration = ev.Duration
	case media.EventTimeUpdate:
		p.state.CurrentTime = ev.CurrentTime
	case media.EventEnded:
		p.handleTrackEndLocked(ctx)
	case media.EventError:
		p.logger.Warn().Err(ev.Err).Str("source", ev.Source).Msg("media error")
		p.state.IsPlaying = false
		p.bridge.SetPlaying(false)
	}
}

func (p *Player) pauseLocked() {
	// Discards a start that is still in flight.
	p.gen++
	p.element.Pause()
	if p.state.IsPlaying {
		p.state.IsPlaying = false
		p.bridge.SetPlaying(false)
	}
}

func (p *Player) resumeLocked(ctx context.Context) {
	if p.element.Source() == "" || p.loaded == nil {
		p.logger.Debug().Err(ErrNothingLoaded).Msg("play ignored")
		return
	}

	var started *Track
	if p.current == nil || p.current.ID != p.loaded.ID {
		started = p.loaded
	}
	p.startLocked(ctx, started)
}

func (p *Player) seekLocked(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	p.element.SetCurrentTime(seconds)
	p.state.CurrentTime = seconds
}

// startLocked starts the loaded source. It is entered and left with p.mu
// held and releases it while the graph is built, the host resumes the
// context and the element starts. started is the track that begins playing,
// or nil when resuming.
func (p *Player) startLocked(ctx context.Context, started *Track) {
	p.gen++
	gen := p.gen
	built := p.handle != nil
	effects, bands := p.effects, slices.Clone(p.bands)

	p.mu.Unlock()
	h, err := p.startHost(ctx, built, effects, bands)
	p.mu.Lock()

	if h != nil {
		p.adoptGraphLocked(h)
	}
	if gen != p.gen {
		p.logger.Debug().Uint64("generation", gen).Msg("play request superseded")
		return
	}
	if err != nil {
		p.logger.Warn().Err(err).Msg("playback did not start")
		p.state.IsPlaying = false
		p.bridge.SetPlaying(false)
		return
	}

	p.state.IsPlaying = true
	if started != nil {
		p.current = started
		p.state.CurrentTime = 0
		p.state.Duration = float64(started.Duration)
		p.bridge.TrackStarted(metadataFor(*started))
	}
	p.bridge.SetPlaying(true)
	p.analysis.Start()
}

// startHost builds the graph on first use, resumes a suspended context and
// starts the element. It runs without p.mu.
func (p *Player) startHost(ctx context.Context, built bool, effects AudioEffects, bands []EQBand) (*GraphHandle, error) {
	var h *GraphHandle
	if !built {
		var err error
		h, err = p.builder.Build(ctx, p.ac, p.element, effects, bands)
		if err != nil {
			return nil, fmt.Errorf("build signal graph: %w", err)
		}
	}
	if p.ac.State() == ContextSuspended {
		if err := p.ac.Resume(ctx); err != nil {
			return h, fmt.Errorf("resume audio context: %w", err)
		}
	}
	return h, p.element.Play(ctx)
}

// adoptGraphLocked installs a freshly built graph. Effects and EQ changed
// while it was being built are written to the nodes before the state is read
// back from them.
func (p *Player) adoptGraphLocked(h *GraphHandle) {
	if p.handle != nil {
		return
	}
	p.handle = h
	h.Graph.Update(func() {
		h.writeEffects(p.effects.Patch(), p.effects)
		p.effects = h.readEffects(p.effects)
		for i, eq := range h.EQ {
			eq.Gain().Set(p.bands[i].Gain)
			p.bands[i].Gain = eq.Gain().Value()
		}
	})
	p.applyMasterLocked()
}

func (p *Player) applyMasterLocked() {
	h := p.handle
	if h == nil {
		return
	}
	gain := p.state.Volume
	if p.state.IsMuted {
		gain = 0
	}
	h.Graph.Update(func() { h.Master.Gain().Set(gain) })
}

func (p *Player) readSpectrum(dst []byte) {
	p.mu.Lock()
	h := p.handle
	p.mu.Unlock()
	if h == nil {
		return
	}
	h.Graph.Update(func() { h.Analyser.ByteFrequencyData(dst) })
}

func metadataFor(t Track) session.Metadata {
	return session.Metadata{
		Title:   t.Title,
		Artist:  t.Artist,
		Album:   t.Album,
		Length:  float64(t.Duration),
		TrackID: t.ID,
		Artwork: session.ArtworkFor(t.CoverURL),
	}
}
