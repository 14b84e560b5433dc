package player

import "fmt"

// Track is a playable catalog entry. AudioURL is required for playback.
type Track struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Artist   string `yaml:"artist" json:"artist"`
	Album    string `yaml:"album,omitempty" json:"album,omitempty"`
	Genre    string `yaml:"genre,omitempty" json:"genre,omitempty"`
	Duration int    `yaml:"duration" json:"duration"` // seconds
	CoverURL string `yaml:"cover_url,omitempty" json:"cover_url,omitempty"`
	AudioURL string `yaml:"audio_url" json:"audio_url"`
}

// Playlist is an ordered list of track IDs.
type Playlist struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	TrackIDs []string `yaml:"tracks" json:"tracks"`
}

// RepeatMode controls what happens when a track ends.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// Next returns the following mode in the cycle off -> all -> one -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode validates a repeat mode name.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch m := RepeatMode(s); m {
	case RepeatOff, RepeatAll, RepeatOne:
		return m, nil
	default:
		return "", fmt.Errorf("unknown repeat mode %q", s)
	}
}

// PlaybackState is the transport state shown by a UI.
type PlaybackState struct {
	IsPlaying   bool
	CurrentTime float64 // seconds
	Duration    float64 // seconds
	Volume      float64 // [0, 1]
	IsMuted     bool
	RepeatMode  RepeatMode
}

// Snapshot is a consistent copy of everything a UI renders.
type Snapshot struct {
	PlaybackState
	CurrentTrack *Track
	Queue        []Track
	IsShuffled   bool
	Effects      AudioEffects
	EQBands      []EQBand
	AnalyserData []byte
}
