//go:build js && wasm

// Command wasm exposes the player to a web page as the AlgoPlayer global.
package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/cwbudde/algo-player/media"
	"github.com/cwbudde/algo-player/player"
	"github.com/cwbudde/algo-player/session"
)

var (
	p     *player.Player
	host  *webContext
	funcs []js.Func
)

func main() {
	ctx := context.Background()

	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		if len(args) < 1 {
			return "init needs an AudioContext"
		}
		host = newWebContext(args[0])
		element := media.NewStreamElement(int(host.SampleRate()))

		opts := []player.Option{player.WithScheduler(rafScheduler{})}
		if ms := newMediaSession(); ms != nil {
			opts = append(opts, player.WithSurface(session.Surface(ms)))
		}
		pl, err := player.New(host, element, opts...)
		if err != nil {
			return err.Error()
		}
		p = pl
		go p.Run(ctx)
		return js.Null()
	}))

	api.Set("setQueue", export(func(args []js.Value) any {
		if p == nil || len(args) < 1 {
			return js.Null()
		}
		var tracks []player.Track
		if err := json.Unmarshal([]byte(args[0].String()), &tracks); err != nil {
			return err.Error()
		}
		p.SetQueue(tracks)
		return js.Null()
	}))

	api.Set("playTrack", export(func(args []js.Value) any {
		if p == nil || len(args) < 1 {
			return js.Null()
		}
		id := args[0].String()
		for _, t := range p.Queue() {
			if t.ID == id {
				go p.PlayTrack(ctx, t)
				return js.Null()
			}
		}
		return "unknown track " + id
	}))

	api.Set("togglePlay", export(func([]js.Value) any {
		if p != nil {
			go p.TogglePlay(ctx)
		}
		return js.Null()
	}))
	api.Set("next", export(func([]js.Value) any {
		if p != nil {
			go p.PlayNext(ctx)
		}
		return js.Null()
	}))
	api.Set("previous", export(func([]js.Value) any {
		if p != nil {
			go p.PlayPrevious(ctx)
		}
		return js.Null()
	}))

	api.Set("seek", export(func(args []js.Value) any {
		if p != nil && len(args) > 0 {
			p.Seek(args[0].Float())
		}
		return js.Null()
	}))
	api.Set("setVolume", export(func(args []js.Value) any {
		if p != nil && len(args) > 0 {
			p.SetVolume(args[0].Float())
		}
		return js.Null()
	}))
	api.Set("toggleMute", export(func([]js.Value) any {
		if p != nil {
			p.ToggleMute()
		}
		return js.Null()
	}))
	api.Set("toggleShuffle", export(func([]js.Value) any {
		if p != nil {
			p.ToggleShuffle()
		}
		return js.Null()
	}))
	api.Set("cycleRepeat", export(func([]js.Value) any {
		if p == nil {
			return js.Null()
		}
		return string(p.CycleRepeat())
	}))

	api.Set("setEqBandGain", export(func(args []js.Value) any {
		if p != nil && len(args) > 1 {
			p.SetEqBandGain(args[0].Int(), args[1].Float())
		}
		return js.Null()
	}))

	api.Set("updateEffects", export(func(args []js.Value) any {
		if p == nil || len(args) < 1 {
			return js.Null()
		}
		var patch player.EffectsPatch
		if err := json.Unmarshal([]byte(args[0].String()), &patch); err != nil {
			return err.Error()
		}
		p.UpdateEffects(patch)
		return js.Null()
	}))

	api.Set("snapshot", export(func([]js.Value) any {
		if p == nil {
			return js.Null()
		}
		s := p.Snapshot()
		s.AnalyserData = nil
		data, err := json.Marshal(s)
		if err != nil {
			return js.Null()
		}
		return string(data)
	}))

	api.Set("spectrum", export(func([]js.Value) any {
		if p == nil {
			return js.Global().Get("Uint8Array").New(0)
		}
		data := p.Analysis().Data()
		arr := js.Global().Get("Uint8Array").New(len(data))
		js.CopyBytesToJS(arr, data)
		return arr
	}))

	api.Set("render", export(func(args []js.Value) any {
		if host == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		return host.render(args[0].Int())
	}))

	js.Global().Set("AlgoPlayer", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
