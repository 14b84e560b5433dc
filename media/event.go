// Package media provides the native media element: a single replaceable
// audio source that fetches, decodes and resamples a track and reports its
// progress as events.
package media

import "errors"

var (
	// ErrAborted is returned by Play when the request was superseded by
	// SetSource, Pause or a newer Play before the source finished loading.
	ErrAborted = errors.New("media: play request aborted")
	// ErrNoSource is returned by Play without a source.
	ErrNoSource = errors.New("media: no source")
	// ErrUnsupportedFormat is returned for audio that cannot be decoded.
	ErrUnsupportedFormat = errors.New("media: unsupported audio format")
)

// EventType names an element event.
type EventType string

const (
	// EventLoadedMetadata fires once a source is decoded; Duration is set.
	EventLoadedMetadata EventType = "loadedmetadata"
	// EventTimeUpdate fires periodically while playing and after seeks.
	EventTimeUpdate EventType = "timeupdate"
	// EventEnded fires once when the source plays to its end.
	EventEnded EventType = "ended"
	// EventError fires when loading or decoding fails.
	EventError EventType = "error"
)

// Event is emitted by an element. Source is the URL that was current when
// the event fired, so listeners can drop events of a replaced source.
type Event struct {
	Type        EventType
	Source      string
	CurrentTime float64
	Duration    float64
	Err         error
}
