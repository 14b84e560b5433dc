package player

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestAnalysisLoopPublishesWhilePlaying(t *testing.T) {
	t.Parallel()

	s := &manualScheduler{}
	var playing atomic.Bool
	playing.Store(true)
	var value atomic.Uint32
	value.Store(7)

	l := NewAnalysisLoop(s, 4, playing.Load, func(dst []byte) {
		for i := range dst {
			dst[i] = byte(value.Load())
		}
	})

	if got := l.Data(); len(got) != 4 || got[0] != 0 {
		t.Fatalf("Data() before first frame = %v, want zeros", got)
	}

	ch, unsubscribe := l.Subscribe(1)
	defer unsubscribe()

	l.Start()
	l.Start()
	if got := s.Pending(); got != 1 {
		t.Fatalf("pending frames = %d, want 1", got)
	}

	s.Flush()
	if got := <-ch; got[3] != 7 {
		t.Fatalf("published = %v, want 7s", got)
	}
	if got := l.Data(); got[0] != 7 {
		t.Fatalf("Data() = %v, want 7s", got)
	}

	// The third frame finds the subscriber buffer full.
	value.Store(9)
	s.Flush()
	s.Flush()
	if got := l.Frames(); got != 3 {
		t.Fatalf("Frames() = %d, want 3", got)
	}
	if got := <-ch; got[0] != 9 {
		t.Fatalf("buffered frame = %v, want 9s", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("received dropped frame %v", extra)
	default:
	}

	playing.Store(false)
	s.Flush()
	if l.Running() {
		t.Fatal("loop still running after playback stopped")
	}
	if got := s.Pending(); got != 0 {
		t.Fatalf("pending frames = %d, want 0", got)
	}
	if got := l.Frames(); got != 3 {
		t.Fatalf("Frames() = %d, want 3", got)
	}
}

func TestAnalysisLoopRestartsDuringStoppingFrame(t *testing.T) {
	t.Parallel()

	s := &manualScheduler{}
	var playing atomic.Bool
	l := NewAnalysisLoop(s, 2, playing.Load, func([]byte) {})

	playing.Store(true)
	l.Start()
	playing.Store(false)
	l.Start()
	s.Flush()

	if !l.Running() || s.Pending() != 1 {
		t.Fatalf("running = %v pending = %d, want a rescheduled frame", l.Running(), s.Pending())
	}
}

func TestAnalysisDataCopies(t *testing.T) {
	t.Parallel()

	l := NewAnalysisLoop(&manualScheduler{}, 3, func() bool { return false }, func([]byte) {})
	d := l.Data()
	d[0] = 42
	if got := l.Data()[0]; got != 0 {
		t.Fatalf("Data() shares its buffer: %v", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	l := NewAnalysisLoop(&manualScheduler{}, 1, func() bool { return true }, func([]byte) {})
	ch, unsubscribe := l.Subscribe(0)
	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Fatal("channel open after unsubscribe")
	}
}

func TestPlayerAnalysisFollowsPlayback(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.player.PlayTrack(context.Background(), track("a"))
	if !f.player.Analysis().Running() {
		t.Fatal("analysis not started by playback")
	}

	f.scheduler.Flush()
	if got := f.player.Analysis().Frames(); got != 1 {
		t.Fatalf("Frames() = %d, want 1", got)
	}
	if got := len(f.player.Snapshot().AnalyserData); got != DefaultBuilderConfig().FFTSize/2 {
		t.Fatalf("AnalyserData length = %d, want %d", got, DefaultBuilderConfig().FFTSize/2)
	}

	f.player.Pause()
	f.scheduler.Flush()
	if f.player.Analysis().Running() {
		t.Fatal("analysis still running while paused")
	}
}

func TestTickerSchedulerRunsFrames(t *testing.T) {
	t.Parallel()

	s := NewTickerScheduler(200)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	done := make(chan struct{})
	s.RequestFrame(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("frame callback did not run")
	}
}
