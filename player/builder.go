package player

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/cwbudde/algo-player/dsp/graph"
	"github.com/rs/zerolog"
)

// Node IDs of the player graph.
const (
	NodeSource        = "source"
	NodeCompressor    = "compressor"
	NodeFilter        = "filter"
	NodeDelay         = "delay"
	NodeDelayFeedback = "delay-feedback"
	NodeDry           = "dry"
	NodeConvolver     = "convolver"
	NodeWet           = "wet"
	NodePanner        = "panner"
	NodeMaster        = "master"
	NodeAnalyser      = "analyser"
)

// EQNodeID returns the node ID of band i.
func EQNodeID(i int) string {
	return fmt.Sprintf("eq-%d", i)
}

// GraphHandle gives typed access to the nodes of a built graph.
type GraphHandle struct {
	Graph         *graph.Graph
	Source        *graph.MediaSource
	EQ            []*graph.Biquad
	Compressor    *graph.Compressor
	Filter        *graph.Biquad
	Delay         *graph.Delay
	DelayFeedback *graph.Gain
	Dry           *graph.Gain
	Convolver     *graph.Convolver
	Wet           *graph.Gain
	Panner        *graph.StereoPanner
	Master        *graph.Gain
	Analyser      *graph.Analyser
}

// BuilderConfig tunes graph construction.
type BuilderConfig struct {
	FFTSize       int
	Smoothing     float64
	MinDecibels   float64
	MaxDecibels   float64
	ReverbSeconds float64
	Rand          *rand.Rand
}

// DefaultBuilderConfig returns the analyser and reverb settings of the player.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		FFTSize:       graph.DefaultFFTSize,
		Smoothing:     graph.DefaultSmoothing,
		MinDecibels:   graph.DefaultMinDecibels,
		MaxDecibels:   graph.DefaultMaxDecibels,
		ReverbSeconds: 2,
	}
}

// Builder creates the player graph exactly once.
type Builder struct {
	mu     sync.Mutex
	cfg    BuilderConfig
	logger zerolog.Logger
	handle *GraphHandle
}

// NewBuilder creates a builder.
func NewBuilder(cfg BuilderConfig, logger zerolog.Logger) *Builder {
	def := DefaultBuilderConfig()
	if cfg.FFTSize == 0 {
		cfg.FFTSize = def.FFTSize
	}
	if cfg.MinDecibels == 0 && cfg.MaxDecibels == 0 {
		cfg.MinDecibels, cfg.MaxDecibels = def.MinDecibels, def.MaxDecibels
	}
	if cfg.ReverbSeconds <= 0 {
		cfg.ReverbSeconds = def.ReverbSeconds
	}
	return &Builder{
		cfg:    cfg,
		logger: logger.With().Str("component", "graph-builder").Logger(),
	}
}

// Handle returns the built graph, or nil before Build.
func (b *Builder) Handle() *GraphHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle
}

// Build wires the player graph around src and attaches it to ac. A second
// call returns the first handle without touching the graph. A suspended
// context is resumed before the graph is attached.
func (b *Builder) Build(ctx context.Context, ac AudioContext, src graph.Source, effects AudioEffects, bands []EQBand) (*GraphHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handle != nil {
		b.logger.Debug().Msg("graph already built")
		return b.handle, nil
	}

	h, err := b.wire(ac.SampleRate(), src, effects, bands)
	if err != nil {
		return nil, err
	}

	if ac.State() == ContextSuspended {
		if err := ac.Resume(ctx); err != nil {
			return nil, fmt.Errorf("resume audio context: %w", err)
		}
	}
	if err := ac.Attach(h.Graph); err != nil {
		return nil, fmt.Errorf("attach graph: %w", err)
	}

	b.handle = h
	b.logger.Info().
		Float64("sample_rate", ac.SampleRate()).
		Int("partitions", h.Convolver.Partitions()).
		Msg("signal graph built")
	return h, nil
}

func (b *Builder) wire(sampleRate float64, src graph.Source, effects AudioEffects, bands []EQBand) (*GraphHandle, error) {
	g, err := graph.New(sampleRate)
	if err != nil {
		return nil, err
	}

	ir := graph.ImpulseResponse(sampleRate, b.cfg.ReverbSeconds, 2, b.cfg.Rand)
	convolver, err := graph.NewConvolver(NodeConvolver, sampleRate, ir, true)
	if err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}
	analyser, err := graph.NewAnalyser(NodeAnalyser, b.cfg.FFTSize, b.cfg.Smoothing, b.cfg.MinDecibels, b.cfg.MaxDecibels)
	if err != nil {
		return nil, err
	}

	c := effects.Compressor
	f := effects.Filter
	h := &GraphHandle{
		Graph:         g,
		Source:        graph.NewMediaSource(NodeSource, src),
		Compressor:    graph.NewCompressor(NodeCompressor, sampleRate, c.Threshold, c.Ratio, c.Attack, c.Release),
		Filter:        graph.NewBiquad(NodeFilter, sampleRate, f.Type, f.Frequency, f.Q, 0),
		Delay:         graph.NewDelay(NodeDelay, sampleRate, effects.DelayTime, MaxDelayTime),
		DelayFeedback: graph.NewGain(NodeDelayFeedback, effects.Delay),
		Dry:           graph.NewGain(NodeDry, effects.DryLevel()),
		Convolver:     convolver,
		Wet:           graph.NewGain(NodeWet, effects.Reverb),
		Panner:        graph.NewStereoPanner(NodePanner, effects.StereoPanner),
		Master:        graph.NewGain(NodeMaster, 1),
		Analyser:      analyser,
	}

	nodes := []graph.Node{h.Source}
	prev := NodeSource
	var links []string
	for i, band := range bands {
		eq := graph.NewBiquad(EQNodeID(i), sampleRate, graph.Peaking, band.Frequency, EQQ, band.Gain)
		h.EQ = append(h.EQ, eq)
		nodes = append(nodes, eq)
		links = append(links, prev, eq.ID())
		prev = eq.ID()
	}
	nodes = append(nodes, h.Compressor, h.Filter, h.Delay, h.DelayFeedback,
		h.Dry, h.Convolver, h.Wet, h.Panner, h.Master, h.Analyser)
	links = append(links,
		prev, NodeCompressor,
		NodeCompressor, NodeFilter,
		NodeFilter, NodeDelay,
		NodeDelay, NodeDelayFeedback,
		NodeDelayFeedback, NodePanner,
		NodeFilter, NodeDry,
		NodeFilter, NodeConvolver,
		NodeConvolver, NodeWet,
		NodeDry, NodePanner,
		NodeWet, NodePanner,
		NodePanner, NodeMaster,
		NodeMaster, NodeAnalyser,
	)

	if err := g.Add(nodes...); err != nil {
		return nil, err
	}
	for i := 0; i < len(links); i += 2 {
		if err := g.Connect(links[i], links[i+1]); err != nil {
			return nil, err
		}
	}
	if err := g.ConnectFeedback(NodeDelayFeedback, NodeFilter); err != nil {
		return nil, err
	}
	if err := g.SetOutput(NodeAnalyser); err != nil {
		return nil, err
	}
	if err := g.Compile(); err != nil {
		return nil, fmt.Errorf("compile graph: %w", err)
	}
	return h, nil
}

// readEffects returns the effect state as held by the nodes. It must run
// inside Graph.Update.
func (h *GraphHandle) readEffects(e AudioEffects) AudioEffects {
	e.Reverb = h.Wet.Gain().Value()
	e.Delay = h.DelayFeedback.Gain().Value()
	e.DelayTime = h.Delay.DelayTime().Value()
	e.Compressor = CompressorSettings{
		Threshold: h.Compressor.Threshold().Value(),
		Ratio:     h.Compressor.Ratio().Value(),
		Attack:    h.Compressor.Attack().Value(),
		Release:   h.Compressor.Release().Value(),
	}
	e.Filter = FilterSettings{
		Type:      h.Filter.Type(),
		Frequency: h.Filter.Frequency().Value(),
		Q:         h.Filter.Q().Value(),
	}
	e.StereoPanner = h.Panner.Pan().Value()
	return e
}

// writeEffects applies the fields named by p from e. It must run inside
// Graph.Update.
func (h *GraphHandle) writeEffects(p EffectsPatch, e AudioEffects) {
	if p.Reverb != nil {
		h.Wet.Gain().Set(e.Reverb)
		h.Dry.Gain().Set(e.DryLevel())
	}
	if p.Delay != nil {
		h.DelayFeedback.Gain().Set(e.Delay)
	}
	if p.DelayTime != nil {
		h.Delay.DelayTime().Set(e.DelayTime)
	}
	if c := p.Compressor; c != nil {
		if c.Threshold != nil {
			h.Compressor.Threshold().Set(e.Compressor.Threshold)
		}
		if c.Ratio != nil {
			h.Compressor.Ratio().Set(e.Compressor.Ratio)
		}
		if c.Attack != nil {
			h.Compressor.Attack().Set(e.Compressor.Attack)
		}
		if c.Release != nil {
			h.Compressor.Release().Set(e.Compressor.Release)
		}
	}
	if f := p.Filter; f != nil {
		if f.Type != nil {
			h.Filter.SetType(e.Filter.Type)
		}
		if f.Frequency != nil {
			h.Filter.Frequency().Set(e.Filter.Frequency)
		}
		if f.Q != nil {
			h.Filter.Q().Set(e.Filter.Q)
		}
	}
	if p.StereoPanner != nil {
		h.Panner.Pan().Set(e.StereoPanner)
	}
}
