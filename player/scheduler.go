package player

import (
	"context"
	"sync"
	"time"
)

// TickerScheduler is a FrameScheduler driven by a fixed-rate ticker, for
// hosts without a display refresh callback.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending []func()
}

// NewTickerScheduler creates a scheduler running fps frames per second.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{interval: time.Second / time.Duration(fps)}
}

// RequestFrame queues fn for the next tick.
func (s *TickerScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
}

// Run fires queued callbacks on every tick until ctx is done.
func (s *TickerScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush()
		}
	}
}

// Flush runs the callbacks queued so far. Callbacks queued while flushing
// wait for the next call.
func (s *TickerScheduler) Flush() {
	s.mu.Lock()
	due := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}
