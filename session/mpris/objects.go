package mpris

import (
	"github.com/godbus/dbus/v5"

	"github.com/cwbudde/algo-player/session"
)

type rootObject struct{ s *Server }

func (r rootObject) Raise() *dbus.Error { return nil }

func (r rootObject) Quit() *dbus.Error {
	r.s.mu.Lock()
	quit := r.s.quit
	r.s.mu.Unlock()
	if quit != nil {
		go quit()
	}
	return nil
}

type playerObject struct{ s *Server }

func (p playerObject) Next() *dbus.Error {
	p.s.dispatch(session.ActionDetails{Action: session.ActionNextTrack})
	return nil
}

func (p playerObject) Previous() *dbus.Error {
	p.s.dispatch(session.ActionDetails{Action: session.ActionPreviousTrack})
	return nil
}

func (p playerObject) Play() *dbus.Error {
	p.s.dispatch(session.ActionDetails{Action: session.ActionPlay})
	return nil
}

func (p playerObject) Pause() *dbus.Error {
	p.s.dispatch(session.ActionDetails{Action: session.ActionPause})
	return nil
}

func (p playerObject) Stop() *dbus.Error {
	return p.Pause()
}

func (p playerObject) PlayPause() *dbus.Error {
	p.s.mu.Lock()
	playing := p.s.status == session.StatePlaying
	p.s.mu.Unlock()

	if playing {
		return p.Pause()
	}
	return p.Play()
}

// Seek moves by offset microseconds relative to the current position.
// The name and signature are fixed by org.mpris.MediaPlayer2.Player, so this
// is not an io.Seeker.
//
//nolint:govet // stdmethods: D-Bus method exported under its MPRIS name.
func (p playerObject) Seek(offset int64) *dbus.Error {
	p.s.mu.Lock()
	target := p.s.position + float64(offset)/1e6
	p.s.mu.Unlock()

	p.s.dispatch(session.ActionDetails{Action: session.ActionSeekTo, SeekTime: max(target, 0)})
	return nil
}

// SetPosition seeks to an absolute position if trackID is still current.
func (p playerObject) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	p.s.mu.Lock()
	current := trackPath(p.s.metadata.TrackID)
	p.s.mu.Unlock()

	if trackID != current || position < 0 {
		return nil
	}
	p.s.dispatch(session.ActionDetails{Action: session.ActionSeekTo, SeekTime: float64(position) / 1e6})
	return nil
}

func (p playerObject) OpenUri(string) *dbus.Error {
	return dbus.NewError("org.mpris.MediaPlayer2.Player.Error.NotSupported", []any{"OpenUri is not supported"})
}

type propertiesObject struct{ s *Server }

func (o propertiesObject) Get(iface, prop string) (dbus.Variant, *dbus.Error) {
	props, err := o.GetAll(iface)
	if err != nil {
		return dbus.Variant{}, err
	}
	v, ok := props[prop]
	if !ok {
		return dbus.Variant{}, errUnknownProperty
	}
	return v, nil
}

func (o propertiesObject) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	switch iface {
	case rootIface:
		return o.s.rootProperties(), nil
	case playerIface:
		return o.s.playerProperties(), nil
	default:
		return nil, dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", []any{iface})
	}
}

// Set rejects writes; every property is read-only here.
func (o propertiesObject) Set(iface, prop string, _ dbus.Variant) *dbus.Error {
	return dbus.NewError("org.freedesktop.DBus.Error.PropertyReadOnly", []any{iface + "." + prop})
}
