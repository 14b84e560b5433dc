package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeUpdateInterval matches the cadence of browser media elements.
	DefaultTimeUpdateInterval = 250 * time.Millisecond

	resampleQuality = 4
	eventBuffer     = 64
)

// Option configures a StreamElement.
type Option func(*StreamElement)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(e *StreamElement) { e.client = c }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *StreamElement) { e.logger = logger }
}

// WithTimeUpdateInterval sets the timeupdate cadence.
func WithTimeUpdateInterval(d time.Duration) Option {
	return func(e *StreamElement) {
		if d > 0 {
			e.updateInterval = d
		}
	}
}

// WithLoader replaces how source bytes are fetched.
func WithLoader(load func(ctx context.Context, src string) ([]byte, error)) Option {
	return func(e *StreamElement) { e.load = load }
}

// StreamElement is a media element backed by beep decoders. Sources may be
// http(s) URLs, file URLs or plain paths to mp3 or wav files.
//
// Stream is called from the audio renderer and yields frames at the output
// rate while playing and nothing otherwise.
type StreamElement struct {
	mu sync.Mutex

	logger         zerolog.Logger
	client         *http.Client
	load           func(ctx context.Context, src string) ([]byte, error)
	rate           beep.SampleRate
	updateInterval time.Duration

	src     string
	request uint64

	loadedSrc string
	stream    beep.StreamSeekCloser
	format    beep.Format
	output    beep.Streamer

	playing     bool
	ended       bool
	pendingSeek float64
	sinceUpdate int

	events chan Event
}

// NewStreamElement creates an element producing frames at sampleRate.
func NewStreamElement(sampleRate int, opts ...Option) *StreamElement {
	e := &StreamElement{
		logger:         zerolog.Nop(),
		client:         http.DefaultClient,
		rate:           beep.SampleRate(sampleRate),
		updateInterval: DefaultTimeUpdateInterval,
		pendingSeek:    -1,
		events:         make(chan Event, eventBuffer),
	}
	e.load = e.fetch
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.logger = e.logger.With().Str("component", "media-element").Logger()
	return e
}

// Events returns the event stream.
func (e *StreamElement) Events() <-chan Event {
	return e.events
}

// Source returns the current source URL.
func (e *StreamElement) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// SetSource replaces the source. Pending loads are aborted and the element
// stops until Play.
func (e *StreamElement) SetSource(src string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.request++
	e.playing = false
	e.closeLocked()
	e.src = src
	e.ended = false
	e.pendingSeek = -1
}

// Paused reports whether the element is not producing audio.
func (e *StreamElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.playing
}

// Pause stops producing audio and aborts a pending Play.
func (e *StreamElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.request++
	e.playing = false
}

// Play loads the source if needed and starts producing audio. A source that
// played to its end restarts from the beginning.
func (e *StreamElement) Play(ctx context.Context) error {
	e.mu.Lock()
	e.request++
	req := e.request
	src := e.src
	if src == "" {
		e.mu.Unlock()
		return ErrNoSource
	}
	if e.stream != nil && e.loadedSrc == src {
		if e.ended {
			e.seekLocked(0)
		}
		e.playing = true
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	stream, format, err := e.open(ctx, src)

	e.mu.Lock()
	defer e.mu.Unlock()

	if req != e.request || src != e.src {
		if stream != nil {
			_ = stream.Close()
		}
		return ErrAborted
	}
	if err != nil {
		e.emitLocked(Event{Type: EventError, Source: src, Err: err})
		return err
	}

	e.closeLocked()
	e.stream = stream
	e.format = format
	e.loadedSrc = src
	e.output = e.resampleLocked()
	e.ended = false
	if e.pendingSeek >= 0 {
		e.seekLocked(e.pendingSeek)
		e.pendingSeek = -1
	}

	e.emitLocked(Event{
		Type:        EventLoadedMetadata,
		Source:      src,
		CurrentTime: e.currentTimeLocked(),
		Duration:    e.durationLocked(),
	})
	e.playing = true
	e.logger.Debug().Str("source", src).Int("source_rate", int(format.SampleRate)).Msg("source loaded")
	return nil
}

// SetCurrentTime seeks to seconds. Before the source is loaded the position
// is applied once loading completes.
func (e *StreamElement) SetCurrentTime(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	if e.stream == nil {
		e.pendingSeek = seconds
		return
	}
	e.seekLocked(seconds)
	e.emitLocked(Event{Type: EventTimeUpdate, Source: e.src, CurrentTime: e.currentTimeLocked(), Duration: e.durationLocked()})
}

// CurrentTime returns the playback position in seconds.
func (e *StreamElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTimeLocked()
}

// Duration returns the length of the loaded source in seconds.
func (e *StreamElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.durationLocked()
}

// Stream fills samples at the output rate. It returns 0 frames while paused
// and never reports exhaustion, so the graph keeps running between tracks.
func (e *StreamElement) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.playing || e.output == nil {
		return 0, true
	}

	n, ok := e.output.Stream(samples)
	e.sinceUpdate += n
	if e.sinceUpdate >= e.rate.N(e.updateInterval) {
		e.sinceUpdate = 0
		e.emitLocked(Event{Type: EventTimeUpdate, Source: e.src, CurrentTime: e.currentTimeLocked(), Duration: e.durationLocked()})
	}

	if !ok || n < len(samples) {
		e.playing = false
		if !e.ended {
			e.ended = true
			e.emitLocked(Event{Type: EventEnded, Source: e.src, CurrentTime: e.durationLocked(), Duration: e.durationLocked()})
		}
	}
	return n, true
}

// Close releases the decoder.
func (e *StreamElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	return e.closeLocked()
}

func (e *StreamElement) closeLocked() error {
	if e.stream == nil {
		return nil
	}
	err := e.stream.Close()
	e.stream = nil
	e.output = nil
	e.loadedSrc = ""
	return err
}

func (e *StreamElement) resampleLocked() beep.Streamer {
	if e.format.SampleRate == e.rate {
		return e.stream
	}
	return beep.Resample(resampleQuality, e.format.SampleRate, e.rate, e.stream)
}

func (e *StreamElement) seekLocked(seconds float64) {
	pos := e.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	pos = max(0, min(pos, e.stream.Len()))
	if err := e.stream.Seek(pos); err != nil {
		e.logger.Warn().Err(err).Float64("seconds", seconds).Msg("seek failed")
		return
	}
	// The resampler buffers input, so it is rebuilt at the new position.
	e.output = e.resampleLocked()
	e.ended = false
	e.sinceUpdate = 0
}

func (e *StreamElement) currentTimeLocked() float64 {
	if e.stream == nil {
		return 0
	}
	return e.format.SampleRate.D(e.stream.Position()).Seconds()
}

func (e *StreamElement) durationLocked() float64 {
	if e.stream == nil {
		return 0
	}
	return e.format.SampleRate.D(e.stream.Len()).Seconds()
}

func (e *StreamElement) emitLocked(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.logger.Debug().Str("event", string(ev.Type)).Msg("event dropped, listener too slow")
	}
}

func (e *StreamElement) open(ctx context.Context, src string) (beep.StreamSeekCloser, beep.Format, error) {
	data, err := e.load(ctx, src)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("load %s: %w", src, err)
	}
	return Decode(data)
}

// fetch reads the bytes of an http(s) URL, a file URL or a plain path.
func (e *StreamElement) fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// A single-letter scheme is a Windows drive.
		return os.ReadFile(src)
	}

	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	case "file":
		return os.ReadFile(u.Path)
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

// Decode sniffs the container of data and decodes it.
func Decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return wav.Decode(bytes.NewReader(data))
	case bytes.HasPrefix(data, []byte("ID3")), isMPEGFrame(data):
		return mp3.Decode(nopCloser{bytes.NewReader(data)})
	default:
		return nil, beep.Format{}, ErrUnsupportedFormat
	}
}

func isMPEGFrame(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// IsAudioFile reports whether a file name has an extension Decode handles.
func IsAudioFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".mp3") || strings.HasSuffix(lower, ".wav")
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
