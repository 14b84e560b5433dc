package output

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-player/player"
)

// Null is an AudioContext that renders into a discarded buffer at real
// time.
type Null struct {
	mu sync.Mutex

	sampleRate int
	period     time.Duration
	state      player.ContextState
	logger     zerolog.Logger

	renderers []player.Renderer
	cancel    context.CancelFunc
	done      chan struct{}
	rendered  uint64
}

// NewNull creates a suspended null context that renders one block of
// period length per tick.
func NewNull(sampleRate int, period time.Duration, logger zerolog.Logger) *Null {
	if period <= 0 {
		period = 20 * time.Millisecond
	}
	return &Null{
		sampleRate: sampleRate,
		period:     period,
		state:      player.ContextSuspended,
		logger:     logger.With().Str("component", "null-output").Logger(),
	}
}

func (n *Null) SampleRate() float64 {
	return float64(n.sampleRate)
}

func (n *Null) State() player.ContextState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Resume starts the render clock.
func (n *Null) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case player.ContextRunning:
		return nil
	case player.ContextClosed:
		return errors.New("null output closed")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.done = make(chan struct{})
	n.state = player.ContextRunning
	go n.run(runCtx, n.done)

	n.logger.Debug().Int("sample_rate", n.sampleRate).Dur("period", n.period).Msg("null output running")
	return nil
}

// Attach adds r to the renderers pulled on every tick.
func (n *Null) Attach(r player.Renderer) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == player.ContextClosed {
		return errors.New("null output closed")
	}
	n.renderers = append(n.renderers, r)
	return nil
}

// Rendered returns the number of frames rendered so far.
func (n *Null) Rendered() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rendered
}

// Suspend stops the render clock.
func (n *Null) Suspend() error {
	n.mu.Lock()
	if n.state != player.ContextRunning {
		n.mu.Unlock()
		return nil
	}
	n.state = player.ContextSuspended
	n.stopLocked()
	return nil
}

// Close stops rendering for good.
func (n *Null) Close() error {
	n.mu.Lock()
	if n.state == player.ContextClosed {
		n.mu.Unlock()
		return nil
	}
	running := n.state == player.ContextRunning
	n.state = player.ContextClosed
	if !running {
		n.mu.Unlock()
		return nil
	}
	n.stopLocked()
	return nil
}

// stopLocked cancels the clock, unlocks and waits for it to exit.
func (n *Null) stopLocked() {
	cancel, done := n.cancel, n.done
	n.cancel, n.done = nil, nil
	n.mu.Unlock()

	cancel()
	<-done
}

func (n *Null) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(n.period)
	defer ticker.Stop()

	frames := int(float64(n.sampleRate) * n.period.Seconds())
	buf := make([][2]float64, max(frames, 1))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n.mu.Lock()
		renderers := n.renderers
		n.mu.Unlock()

		for _, r := range renderers {
			r.Render(buf)
		}

		n.mu.Lock()
		n.rendered += uint64(len(buf))
		n.mu.Unlock()
	}
}
