package mpris

import (
	"context"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-player/session"
)

func newTestServer() (*Server, *[]session.ActionDetails) {
	s := newServer(nil, "algoplay", zerolog.Nop())
	var got []session.ActionDetails
	for _, a := range session.Actions {
		s.SetActionHandler(a, func(d session.ActionDetails) { got = append(got, d) })
	}
	return s, &got
}

func TestMetadataMap(t *testing.T) {
	t.Parallel()

	m := metadataMap(session.Metadata{
		TrackID: "track-1.mp3",
		Title:   "Song",
		Artist:  "Band",
		Album:   "Record",
		Length:  90.5,
		Artwork: session.ArtworkFor("https://cdn.example/c.jpg"),
	})

	if got := m["mpris:trackid"].Value(); got != dbus.ObjectPath("/org/algoplay/track/track_1_mp3") {
		t.Errorf("trackid = %v", got)
	}
	if got := m["mpris:length"].Value(); got != int64(90_500_000) {
		t.Errorf("length = %v, want 90500000", got)
	}
	if got := m["xesam:artist"].Value().([]string); len(got) != 1 || got[0] != "Band" {
		t.Errorf("artist = %v", got)
	}
	if got := m["mpris:artUrl"].Value(); got != "https://cdn.example/c.jpg" {
		t.Errorf("artUrl = %v", got)
	}

	empty := metadataMap(session.Metadata{})
	if len(empty) != 1 || empty["mpris:trackid"].Value() != noTrack {
		t.Errorf("empty metadata = %v", empty)
	}
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	for st, want := range map[session.PlaybackState]string{
		session.StatePlaying: "Playing",
		session.StatePaused:  "Paused",
		session.StateNone:    "Stopped",
	} {
		if got := statusString(st); got != want {
			t.Errorf("statusString(%v) = %q, want %q", st, got, want)
		}
	}
}

func TestPlayerMethodsDispatchActions(t *testing.T) {
	t.Parallel()

	s, got := newTestServer()
	p := playerObject{s}

	p.Next()
	p.Previous()
	p.PlayPause()
	s.SetPlaybackState(session.StatePlaying)
	p.PlayPause()

	want := []session.Action{session.ActionNextTrack, session.ActionPreviousTrack, session.ActionPlay, session.ActionPause}
	if len(*got) != len(want) {
		t.Fatalf("actions = %v, want %v", *got, want)
	}
	for i, a := range want {
		if (*got)[i].Action != a {
			t.Fatalf("action %d = %v, want %v", i, (*got)[i].Action, a)
		}
	}
}

func TestSeekIsRelative(t *testing.T) {
	t.Parallel()

	s, got := newTestServer()
	p := playerObject{s}
	s.SetPosition(10)

	p.Seek(5_000_000)
	p.Seek(-60_000_000)

	if len(*got) != 2 || (*got)[0].SeekTime != 15 || (*got)[1].SeekTime != 0 {
		t.Fatalf("seeks = %+v, want 15 then 0", *got)
	}
}

func TestSetPositionChecksTrack(t *testing.T) {
	t.Parallel()

	s, got := newTestServer()
	p := playerObject{s}
	s.SetMetadata(session.Metadata{TrackID: "a"})

	p.SetPosition(trackPath("b"), 1_000_000)
	p.SetPosition(trackPath("a"), 2_000_000)

	if len(*got) != 1 || (*got)[0].SeekTime != 2 {
		t.Fatalf("seeks = %+v, want one to 2s", *got)
	}
}

func TestProperties(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer()
	s.SetPlaybackState(session.StatePaused)
	props := propertiesObject{s}

	v, err := props.Get(playerIface, "PlaybackStatus")
	if err != nil || v.Value() != "Paused" {
		t.Fatalf("PlaybackStatus = %v, %v", v, err)
	}
	v, err = props.Get(rootIface, "Identity")
	if err != nil || v.Value() != "algoplay" {
		t.Fatalf("Identity = %v, %v", v, err)
	}
	if _, err := props.Get(playerIface, "Bogus"); err == nil {
		t.Error("Get(Bogus) succeeded")
	}
	if _, err := props.GetAll("org.example.Other"); err == nil {
		t.Error("GetAll(unknown interface) succeeded")
	}
	if err := props.Set(playerIface, "Volume", dbus.MakeVariant(0.5)); err == nil {
		t.Error("Set succeeded on a read-only property")
	}
}

func TestWorksAsBridgeSurface(t *testing.T) {
	t.Parallel()

	s := newServer(nil, "algoplay", zerolog.Nop())
	b := session.NewBridge(s, nopCommands{}, zerolog.Nop())
	b.TrackStarted(session.Metadata{TrackID: "x", Title: "T"})
	b.SetPlaying(true)

	v, _ := propertiesObject{s}.Get(playerIface, "PlaybackStatus")
	if v.Value() != "Playing" {
		t.Fatalf("PlaybackStatus = %v, want Playing", v.Value())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.handlers) != len(session.Actions) {
		t.Fatalf("handlers = %d, want %d", len(s.handlers), len(session.Actions))
	}
}

type nopCommands struct{}

func (nopCommands) Play(context.Context)         {}
func (nopCommands) Pause()                       {}
func (nopCommands) Seek(float64)                 {}
func (nopCommands) PlayNext(context.Context)     {}
func (nopCommands) PlayPrevious(context.Context) {}
