//go:build !((linux && cgo) || windows || darwin)

package output

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-player/player"
)

// Available reports whether this build produces sound.
const Available = false

// New returns the audio context of this build.
func New(sampleRate int, buffer time.Duration, logger zerolog.Logger) player.AudioContext {
	logger.Warn().Msg("built without cgo, audio output is silent")
	return NewNull(sampleRate, buffer, logger)
}
