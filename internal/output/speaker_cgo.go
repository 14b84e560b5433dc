//go:build (linux && cgo) || windows || darwin

package output

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-player/player"
)

// Available reports whether this build produces sound.
const Available = true

// Speaker is an AudioContext on the system sound device. The device is
// opened by the first Resume.
type Speaker struct {
	mu sync.Mutex

	sampleRate beep.SampleRate
	buffer     time.Duration
	state      player.ContextState
	logger     zerolog.Logger

	initialized bool
}

// New returns the audio context of this build.
func New(sampleRate int, buffer time.Duration, logger zerolog.Logger) player.AudioContext {
	return NewSpeaker(sampleRate, buffer, logger)
}

// NewSpeaker creates a suspended speaker context.
func NewSpeaker(sampleRate int, buffer time.Duration, logger zerolog.Logger) *Speaker {
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}
	return &Speaker{
		sampleRate: beep.SampleRate(sampleRate),
		buffer:     buffer,
		state:      player.ContextSuspended,
		logger:     logger.With().Str("component", "speaker").Logger(),
	}
}

func (s *Speaker) SampleRate() float64 {
	return float64(s.sampleRate)
}

func (s *Speaker) State() player.ContextState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resume opens the device on first use and resumes it afterwards.
func (s *Speaker) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case player.ContextRunning:
		return nil
	case player.ContextClosed:
		return errors.New("speaker closed")
	}

	if !s.initialized {
		if err := speaker.Init(s.sampleRate, s.sampleRate.N(s.buffer)); err != nil {
			return fmt.Errorf("init speaker: %w", err)
		}
		s.initialized = true
		s.logger.Info().Int("sample_rate", int(s.sampleRate)).Dur("buffer", s.buffer).Msg("speaker opened")
	} else if err := speaker.Resume(); err != nil {
		return fmt.Errorf("resume speaker: %w", err)
	}
	s.state = player.ContextRunning
	return nil
}

// Attach starts rendering r on the device.
func (s *Speaker) Attach(r player.Renderer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != player.ContextRunning {
		return errors.New("speaker not running")
	}
	speaker.Play(streamer(r))
	return nil
}

// Suspend stops the device callback without closing it.
func (s *Speaker) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != player.ContextRunning {
		return nil
	}
	if err := speaker.Suspend(); err != nil {
		return fmt.Errorf("suspend speaker: %w", err)
	}
	s.state = player.ContextSuspended
	return nil
}

// Close releases the device.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == player.ContextClosed {
		return nil
	}
	if s.initialized {
		speaker.Clear()
		speaker.Close()
	}
	s.state = player.ContextClosed
	return nil
}
