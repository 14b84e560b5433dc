package player

import (
	"encoding/json"
	"testing"

	"github.com/cwbudde/algo-player/dsp/graph"
)

func TestEffectsPatchFromJSON(t *testing.T) {
	t.Parallel()

	var patch EffectsPatch
	if err := json.Unmarshal([]byte(`{"reverb":0.5,"filter":{"type":"highpass"}}`), &patch); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if patch.Delay != nil || patch.Compressor != nil {
		t.Fatalf("patch = %+v, want only reverb and filter", patch)
	}

	got := patch.apply(DefaultEffects())
	want := DefaultEffects()
	want.Reverb = 0.5
	want.Filter.Type = graph.Highpass
	if got != want {
		t.Fatalf("apply = %+v, want %+v", got, want)
	}
}
