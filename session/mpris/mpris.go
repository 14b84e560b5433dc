// Package mpris publishes the player on the D-Bus session bus as an MPRIS2
// media player, so desktop media keys and now-playing widgets control it.
//
// Server implements session.Surface. A missing session bus is reported by
// Connect; callers treat that as the surface being unavailable.
package mpris

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-player/session"
)

const (
	busPrefix = "org.mpris.MediaPlayer2."

	objectPath  dbus.ObjectPath = "/org/mpris/MediaPlayer2"
	rootIface                   = "org.mpris.MediaPlayer2"
	playerIface                 = "org.mpris.MediaPlayer2.Player"
	propsIface                  = "org.freedesktop.DBus.Properties"

	noTrack dbus.ObjectPath = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
)

var errUnknownProperty = dbus.NewError("org.freedesktop.DBus.Error.UnknownProperty", []any{"unknown property"})

// Server is an MPRIS2 surface.
type Server struct {
	conn     *dbus.Conn
	identity string
	logger   zerolog.Logger

	mu       sync.Mutex
	handlers map[session.Action]session.Handler
	metadata session.Metadata
	status   session.PlaybackState
	position float64
	quit     func()
}

// Connect claims org.mpris.MediaPlayer2.<name> on the session bus.
func Connect(name, identity string, logger zerolog.Logger) (*Server, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("mpris: session bus: %w", err)
	}

	s := newServer(conn, identity, logger)
	if err := s.export(); err != nil {
		conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(busPrefix+name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mpris: request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("mpris: bus name %s already taken", busPrefix+name)
	}

	s.logger.Info().Str("bus_name", busPrefix+name).Msg("mpris surface registered")
	return s, nil
}

func newServer(conn *dbus.Conn, identity string, logger zerolog.Logger) *Server {
	return &Server{
		conn:     conn,
		identity: identity,
		logger:   logger.With().Str("component", "mpris").Logger(),
		handlers: make(map[session.Action]session.Handler),
		status:   session.StateNone,
	}
}

func (s *Server) export() error {
	exports := []struct {
		v     any
		iface string
	}{
		{rootObject{s}, rootIface},
		{playerObject{s}, playerIface},
		{propertiesObject{s}, propsIface},
	}
	for _, e := range exports {
		if err := s.conn.Export(e.v, objectPath, e.iface); err != nil {
			return fmt.Errorf("mpris: export %s: %w", e.iface, err)
		}
	}
	return nil
}

// Close releases the bus connection.
func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// OnQuit sets the function run when a client calls Quit.
func (s *Server) OnQuit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quit = fn
}

// SetMetadata implements session.Surface.
func (s *Server) SetMetadata(m session.Metadata) {
	s.mu.Lock()
	s.metadata = m
	s.position = 0
	meta := metadataMap(m)
	s.mu.Unlock()

	s.emit(map[string]dbus.Variant{"Metadata": dbus.MakeVariant(meta)})
}

// SetPlaybackState implements session.Surface.
func (s *Server) SetPlaybackState(st session.PlaybackState) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()

	s.emit(map[string]dbus.Variant{"PlaybackStatus": dbus.MakeVariant(statusString(st))})
}

// SetActionHandler implements session.Surface.
func (s *Server) SetActionHandler(a session.Action, h session.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[a] = h
}

// SetPosition records the playback position reported through the Position
// property and used for relative seeks.
func (s *Server) SetPosition(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = seconds
}

func (s *Server) dispatch(d session.ActionDetails) {
	s.mu.Lock()
	h := s.handlers[d.Action]
	s.mu.Unlock()

	if h == nil {
		s.logger.Debug().Str("action", string(d.Action)).Msg("no handler")
		return
	}
	h(d)
}

func (s *Server) emit(changed map[string]dbus.Variant) {
	if s.conn == nil {
		return
	}
	err := s.conn.Emit(objectPath, propsIface+".PropertiesChanged", playerIface, changed, []string{})
	if err != nil {
		s.logger.Warn().Err(err).Msg("emit PropertiesChanged")
	}
}

func (s *Server) playerProperties() map[string]dbus.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(statusString(s.status)),
		"LoopStatus":     dbus.MakeVariant("None"),
		"Rate":           dbus.MakeVariant(1.0),
		"Shuffle":        dbus.MakeVariant(false),
		"Metadata":       dbus.MakeVariant(metadataMap(s.metadata)),
		"Volume":         dbus.MakeVariant(1.0),
		"Position":       dbus.MakeVariant(micros(s.position)),
		"MinimumRate":    dbus.MakeVariant(1.0),
		"MaximumRate":    dbus.MakeVariant(1.0),
		"CanGoNext":      dbus.MakeVariant(true),
		"CanGoPrevious":  dbus.MakeVariant(true),
		"CanPlay":        dbus.MakeVariant(true),
		"CanPause":       dbus.MakeVariant(true),
		"CanSeek":        dbus.MakeVariant(true),
		"CanControl":     dbus.MakeVariant(true),
	}
}

func (s *Server) rootProperties() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"CanQuit":             dbus.MakeVariant(true),
		"CanRaise":            dbus.MakeVariant(false),
		"HasTrackList":        dbus.MakeVariant(false),
		"Identity":            dbus.MakeVariant(s.identity),
		"SupportedUriSchemes": dbus.MakeVariant([]string{"file", "http", "https"}),
		"SupportedMimeTypes":  dbus.MakeVariant([]string{"audio/mpeg", "audio/wav"}),
	}
}

var unsafePath = regexp.MustCompile(`[^A-Za-z0-9_]`)

// trackPath maps a track ID to a valid D-Bus object path.
func trackPath(id string) dbus.ObjectPath {
	if id == "" {
		return noTrack
	}
	return dbus.ObjectPath("/org/algoplay/track/" + unsafePath.ReplaceAllString(id, "_"))
}

func metadataMap(m session.Metadata) map[string]dbus.Variant {
	out := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackPath(m.TrackID)),
	}
	if m.TrackID == "" {
		return out
	}
	out["mpris:length"] = dbus.MakeVariant(micros(m.Length))
	out["xesam:title"] = dbus.MakeVariant(m.Title)
	if m.Artist != "" {
		out["xesam:artist"] = dbus.MakeVariant([]string{m.Artist})
	}
	if m.Album != "" {
		out["xesam:album"] = dbus.MakeVariant(m.Album)
	}
	if n := len(m.Artwork); n > 0 {
		out["mpris:artUrl"] = dbus.MakeVariant(m.Artwork[n-1].Src)
	}
	return out
}

func statusString(st session.PlaybackState) string {
	switch st {
	case session.StatePlaying:
		return "Playing"
	case session.StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

func micros(seconds float64) int64 {
	return int64(seconds * 1e6)
}
