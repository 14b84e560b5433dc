//go:build js && wasm

package main

import (
	"context"
	"errors"
	"sync"
	"syscall/js"

	"github.com/cwbudde/algo-player/player"
	"github.com/cwbudde/algo-player/session"
)

// webContext wraps a page AudioContext. The page pulls rendered frames
// through the exported render function.
type webContext struct {
	ctx js.Value

	mu       sync.Mutex
	renderer player.Renderer
	frames   [][2]float64
}

func newWebContext(ctx js.Value) *webContext {
	return &webContext{ctx: ctx}
}

func (w *webContext) SampleRate() float64 {
	return w.ctx.Get("sampleRate").Float()
}

func (w *webContext) State() player.ContextState {
	return player.ContextState(w.ctx.Get("state").String())
}

// Resume awaits AudioContext.resume(). It must not run on the JS event loop
// goroutine.
func (w *webContext) Resume(ctx context.Context) error {
	_, err := await(ctx, w.ctx.Call("resume"))
	return err
}

func (w *webContext) Attach(r player.Renderer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.renderer != nil {
		return errors.New("renderer already attached")
	}
	w.renderer = r
	return nil
}

// render fills an interleaved stereo Float32Array of n frames.
func (w *webContext) render(n int) js.Value {
	out := js.Global().Get("Float32Array").New(2 * n)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.renderer == nil {
		return out
	}
	if cap(w.frames) < n {
		w.frames = make([][2]float64, n)
	}
	frames := w.frames[:n]
	w.renderer.Render(frames)
	for i, f := range frames {
		out.SetIndex(2*i, f[0])
		out.SetIndex(2*i+1, f[1])
	}
	return out
}

// await blocks until a JS promise settles.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}
	done := make(chan result, 1)

	resolve := js.FuncOf(func(_ js.Value, args []js.Value) any {
		var v js.Value
		if len(args) > 0 {
			v = args[0]
		}
		done <- result{v: v}
		return nil
	})
	defer resolve.Release()
	reject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		msg := "promise rejected"
		if len(args) > 0 {
			msg = args[0].Call("toString").String()
		}
		done <- result{err: errors.New(msg)}
		return nil
	})
	defer reject.Release()

	promise.Call("then", resolve, reject)
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

// rafScheduler runs frame callbacks on requestAnimationFrame.
type rafScheduler struct{}

func (rafScheduler) RequestFrame(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	js.Global().Call("requestAnimationFrame", cb)
}

// mediaSession publishes to navigator.mediaSession.
type mediaSession struct {
	ms       js.Value
	handlers []js.Func
}

// newMediaSession returns nil when the browser has no media session API.
func newMediaSession() *mediaSession {
	ms := js.Global().Get("navigator").Get("mediaSession")
	if ms.IsUndefined() || ms.IsNull() {
		return nil
	}
	return &mediaSession{ms: ms}
}

func (m *mediaSession) SetMetadata(md session.Metadata) {
	artwork := js.Global().Get("Array").New()
	for _, a := range md.Artwork {
		artwork.Call("push", map[string]any{"src": a.Src, "sizes": a.Sizes, "type": a.Type})
	}
	fields := map[string]any{
		"title":   md.Title,
		"artist":  md.Artist,
		"album":   md.Album,
		"artwork": artwork,
	}
	m.ms.Set("metadata", js.Global().Get("MediaMetadata").New(fields))
}

func (m *mediaSession) SetPlaybackState(s session.PlaybackState) {
	m.ms.Set("playbackState", string(s))
}

func (m *mediaSession) SetActionHandler(a session.Action, h session.Handler) {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		d := session.ActionDetails{Action: a}
		if len(args) > 0 {
			if t := args[0].Get("seekTime"); t.Type() == js.TypeNumber {
				d.SeekTime = t.Float()
			}
		}
		// Handlers may block on the player, so leave the event loop first.
		go h(d)
		return nil
	})
	m.handlers = append(m.handlers, f)
	m.ms.Call("setActionHandler", string(a), f)
}
