// Package session bridges the player to an OS-level now-playing surface such
// as MPRIS on Linux or navigator.mediaSession in a browser.
//
// The surface is optional. A Bridge without one does nothing, so playback
// never depends on it.
package session

import (
	"context"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Action is a media control request from the surface.
type Action string

const (
	ActionPlay          Action = "play"
	ActionPause         Action = "pause"
	ActionSeekTo        Action = "seekto"
	ActionNextTrack     Action = "nexttrack"
	ActionPreviousTrack Action = "previoustrack"
)

// Actions lists every action a Bridge registers.
var Actions = []Action{ActionPlay, ActionPause, ActionSeekTo, ActionNextTrack, ActionPreviousTrack}

// ActionDetails accompanies an action. SeekTime is set for ActionSeekTo.
type ActionDetails struct {
	Action   Action
	SeekTime float64
}

// Handler receives actions from the surface.
type Handler func(ActionDetails)

// PlaybackState is the transport state shown on the surface.
type PlaybackState string

const (
	StateNone    PlaybackState = "none"
	StatePaused  PlaybackState = "paused"
	StatePlaying PlaybackState = "playing"
)

// Artwork is one cover image entry.
type Artwork struct {
	Src   string
	Sizes string
	Type  string
}

// Metadata describes the track on the surface.
type Metadata struct {
	TrackID string
	Title   string
	Artist  string
	Album   string
	Length  float64 // seconds
	Artwork []Artwork
}

// Surface is an OS media surface.
type Surface interface {
	SetMetadata(m Metadata)
	SetPlaybackState(s PlaybackState)
	SetActionHandler(a Action, h Handler)
}

// Commands are the player entry points the surface can trigger. They are the
// same methods the in-app controls call.
type Commands interface {
	Play(ctx context.Context)
	Pause()
	Seek(seconds float64)
	PlayNext(ctx context.Context)
	PlayPrevious(ctx context.Context)
}

// ArtworkSizes are the square icon sizes published for each cover.
var ArtworkSizes = []int{96, 128, 192, 256, 384, 512}

// ArtworkFor returns one artwork entry per icon size for a cover URL, or nil
// without a cover.
func ArtworkFor(url string) []Artwork {
	if url == "" {
		return nil
	}
	typ := imageType(url)
	out := make([]Artwork, len(ArtworkSizes))
	for i, size := range ArtworkSizes {
		s := strconv.Itoa(size)
		out[i] = Artwork{Src: url, Sizes: s + "x" + s, Type: typ}
	}
	return out
}

func imageType(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	switch strings.ToLower(path.Ext(url)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// Bridge connects Commands to a Surface.
type Bridge struct {
	surface Surface
	logger  zerolog.Logger
}

// NewBridge registers handlers for every action on s that invoke cmds. A nil
// surface yields a disabled bridge.
func NewBridge(s Surface, cmds Commands, logger zerolog.Logger) *Bridge {
	b := &Bridge{
		surface: s,
		logger:  logger.With().Str("component", "media-session").Logger(),
	}
	if s == nil {
		b.logger.Debug().Msg("no media session surface, bridge disabled")
		return b
	}

	ctx := context.Background()
	handlers := map[Action]Handler{
		ActionPlay:          func(ActionDetails) { cmds.Play(ctx) },
		ActionPause:         func(ActionDetails) { cmds.Pause() },
		ActionSeekTo:        func(d ActionDetails) { cmds.Seek(d.SeekTime) },
		ActionNextTrack:     func(ActionDetails) { cmds.PlayNext(ctx) },
		ActionPreviousTrack: func(ActionDetails) { cmds.PlayPrevious(ctx) },
	}
	for _, a := range Actions {
		s.SetActionHandler(a, b.logged(a, handlers[a]))
	}
	return b
}

func (b *Bridge) logged(a Action, h Handler) Handler {
	return func(d ActionDetails) {
		b.logger.Debug().Str("action", string(a)).Float64("seek_time", d.SeekTime).Msg("media session action")
		h(d)
	}
}

// Enabled reports whether a surface is connected.
func (b *Bridge) Enabled() bool {
	return b != nil && b.surface != nil
}

// TrackStarted publishes metadata for a track that just started.
func (b *Bridge) TrackStarted(m Metadata) {
	if !b.Enabled() {
		return
	}
	b.surface.SetMetadata(m)
}

// SetPlaying publishes the transport state.
func (b *Bridge) SetPlaying(playing bool) {
	if !b.Enabled() {
		return
	}
	if playing {
		b.surface.SetPlaybackState(StatePlaying)
		return
	}
	b.surface.SetPlaybackState(StatePaused)
}
