package player

import (
	"context"
	"testing"

	"github.com/cwbudde/algo-player/dsp/graph"
)

func TestDefaultEQBands(t *testing.T) {
	t.Parallel()

	bands := DefaultEQBands(3, -20)
	if len(bands) != 10 {
		t.Fatalf("len = %d, want 10", len(bands))
	}
	wantLabels := []string{"32", "64", "125", "250", "500", "1K", "2K", "4K", "8K", "16K"}
	for i, b := range bands {
		if b.Label != wantLabels[i] {
			t.Errorf("band %d label = %q, want %q", i, b.Label, wantLabels[i])
		}
	}
	if bands[0].Gain != 3 || bands[1].Gain != MinEQGain || bands[2].Gain != 0 {
		t.Errorf("gains = %v, %v, %v", bands[0].Gain, bands[1].Gain, bands[2].Gain)
	}
}

func TestSetEqBandGain(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.player.SetEqBandGain(2, 6)
	f.player.SetEqBandGain(-1, 6)
	f.player.SetEqBandGain(10, 6)
	if got := f.player.EQBands()[2].Gain; got != 6 {
		t.Fatalf("band 2 gain before build = %v, want 6", got)
	}

	f.player.PlayTrack(context.Background(), track("a"))
	h := f.player.Graph()
	if got := h.EQ[2].Gain().Value(); got != 6 {
		t.Fatalf("node gain after build = %v, want 6", got)
	}

	f.player.SetEqBandGain(9, 30)
	bands := f.player.EQBands()
	if bands[9].Gain != MaxEQGain || h.EQ[9].Gain().Value() != MaxEQGain {
		t.Fatalf("band 9 = (%v, %v), want %v", bands[9].Gain, h.EQ[9].Gain().Value(), MaxEQGain)
	}

	for i, b := range bands {
		if i == 2 || i == 9 {
			continue
		}
		if b.Gain != 0 {
			t.Errorf("band %d gain = %v, want untouched 0", i, b.Gain)
		}
	}
}

func TestSetEqBandGainOutOfRangeIsNoop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.player.PlayTrack(context.Background(), track("a"))
	before := f.player.EQBands()

	f.player.SetEqBandGain(-1, 5)
	f.player.SetEqBandGain(len(before), 5)

	after := f.player.EQBands()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("band %d changed from %+v to %+v", i, before[i], after[i])
		}
	}
}

func TestUpdateEffectsPartial(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.player.PlayTrack(context.Background(), track("a"))
	before := f.player.Effects()

	f.player.UpdateEffects(EffectsPatch{
		Compressor: &CompressorPatch{Threshold: Ptr(-50.0)},
	})

	got := f.player.Effects()
	want := before
	want.Compressor.Threshold = -50
	if got != want {
		t.Fatalf("effects = %+v, want %+v", got, want)
	}
	if v := f.player.Graph().Compressor.Threshold().Value(); v != -50 {
		t.Fatalf("compressor threshold node = %v, want -50", v)
	}
	if v := f.player.Graph().Compressor.Ratio().Value(); v != before.Compressor.Ratio {
		t.Fatalf("compressor ratio node = %v, want %v", v, before.Compressor.Ratio)
	}
}

func TestUpdateEffectsReverbSetsWetAndDry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.player.PlayTrack(context.Background(), track("a"))
	h := f.player.Graph()

	f.player.UpdateEffects(EffectsPatch{Reverb: Ptr(0.3)})

	if got := h.Wet.Gain().Value(); got != 0.3 {
		t.Errorf("wet = %v, want 0.3", got)
	}
	if got := h.Dry.Gain().Value(); got != 0.7 {
		t.Errorf("dry = %v, want 0.7", got)
	}
	if got := f.player.Effects().Reverb; got != 0.3 {
		t.Errorf("Reverb = %v, want 0.3", got)
	}
}

func TestUpdateEffectsBeforeGraphIsBuildInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.player.UpdateEffects(EffectsPatch{
		Reverb:       Ptr(0.5),
		Delay:        Ptr(0.4),
		DelayTime:    Ptr(0.6),
		StereoPanner: Ptr(-0.25),
		Filter:       &FilterPatch{Type: Ptr(graph.Highpass), Frequency: Ptr(800.0), Q: Ptr(2.0)},
	})
	f.player.PlayTrack(context.Background(), track("a"))
	h := f.player.Graph()

	checks := []struct {
		name      string
		got, want float64
	}{
		{"wet", h.Wet.Gain().Value(), 0.5},
		{"dry", h.Dry.Gain().Value(), 0.5},
		{"feedback", h.DelayFeedback.Gain().Value(), 0.4},
		{"delay time", h.Delay.DelayTime().Value(), 0.6},
		{"pan", h.Panner.Pan().Value(), -0.25},
		{"filter frequency", h.Filter.Frequency().Value(), 800},
		{"filter q", h.Filter.Q().Value(), 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if h.Filter.Type() != graph.Highpass {
		t.Errorf("filter type = %v, want highpass", h.Filter.Type())
	}
}

func TestUpdateEffectsClampsAndRejects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.player.PlayTrack(context.Background(), track("a"))

	f.player.UpdateEffects(EffectsPatch{
		Reverb:     Ptr(1.5),
		DelayTime:  Ptr(4.0),
		Compressor: &CompressorPatch{Ratio: Ptr(50.0)},
		Filter:     &FilterPatch{Type: Ptr(graph.Peaking)},
	})

	e := f.player.Effects()
	if e.Reverb != 1 || e.DryLevel() != 0 {
		t.Errorf("reverb/dry = %v/%v, want 1/0", e.Reverb, e.DryLevel())
	}
	if e.DelayTime != MaxDelayTime {
		t.Errorf("DelayTime = %v, want %v", e.DelayTime, MaxDelayTime)
	}
	if e.Compressor.Ratio != 20 {
		t.Errorf("Ratio = %v, want 20", e.Compressor.Ratio)
	}
	if e.Filter.Type != graph.Lowpass {
		t.Errorf("filter type = %v, want lowpass kept", e.Filter.Type)
	}
}

func TestEffectsStateMatchesNodes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.player.PlayTrack(context.Background(), track("a"))
	f.player.UpdateEffects(EffectsPatch{
		Filter: &FilterPatch{Frequency: Ptr(1e6)},
	})

	h := f.player.Graph()
	if got, want := f.player.Effects().Filter.Frequency, h.Filter.Frequency().Value(); got != want {
		t.Fatalf("state frequency = %v, node = %v", got, want)
	}
}
