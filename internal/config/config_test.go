package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-player/dsp/graph"
	"github.com/cwbudde/algo-player/player"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "algoplay.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", cfg.Audio.SampleRate)
	}
	if cfg.Analyser.FFTSize != graph.DefaultFFTSize {
		t.Errorf("FFTSize = %d, want %d", cfg.Analyser.FFTSize, graph.DefaultFFTSize)
	}
	if cfg.Player.TimeUpdateInterval != 250*time.Millisecond {
		t.Errorf("TimeUpdateInterval = %v, want 250ms", cfg.Player.TimeUpdateInterval)
	}
	if cfg.Effects != player.DefaultEffects() {
		t.Errorf("Effects = %+v, want defaults", cfg.Effects)
	}
	if !cfg.MPRIS {
		t.Error("MPRIS = false, want true")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
audio:
  sample_rate: 48000
  buffer: 50ms
player:
  volume: 0.5
  repeat: all
effects:
  reverb: 0.25
  filter:
    type: highpass
    frequency: 120
eq: [3, -2]
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Audio.Buffer != 50*time.Millisecond {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Player.Volume != 0.5 || cfg.RepeatMode() != player.RepeatAll {
		t.Errorf("player = %+v", cfg.Player)
	}
	if cfg.Effects.Reverb != 0.25 || cfg.Effects.Filter.Type != graph.Highpass || cfg.Effects.Filter.Frequency != 120 {
		t.Errorf("effects = %+v", cfg.Effects)
	}
	if cfg.Effects.Filter.Q != 1 || cfg.Effects.DelayTime != 0.3 {
		t.Errorf("unset effect fields lost their defaults: %+v", cfg.Effects)
	}
	if len(cfg.EQ) != 2 || cfg.EQ[0] != 3 || cfg.EQ[1] != -2 {
		t.Errorf("EQ = %v, want [3 -2]", cfg.EQ)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}

	pc := cfg.PlayerConfig()
	if pc.Volume != 0.5 || len(pc.EQGains) != 2 || pc.Builder.FFTSize != cfg.Analyser.FFTSize {
		t.Errorf("PlayerConfig = %+v", pc)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ALGOPLAY_SAMPLE_RATE", "22050")
	t.Setenv("ALGOPLAY_VOLUME", "0.3")
	t.Setenv("ALGOPLAY_MPRIS", "false")
	t.Setenv("ALGOPLAY_TIME_UPDATE_INTERVAL", "100ms")
	t.Setenv("ALGOPLAY_LIBRARY", "/music")

	path := writeFile(t, t.TempDir(), "audio:\n  sample_rate: 48000\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want env override 22050", cfg.Audio.SampleRate)
	}
	if cfg.Player.Volume != 0.3 || cfg.MPRIS || cfg.Library != "/music" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Player.TimeUpdateInterval != 100*time.Millisecond {
		t.Errorf("TimeUpdateInterval = %v, want 100ms", cfg.Player.TimeUpdateInterval)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("ALGOPLAY_FPS", "sixty")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "ALGOPLAY_FPS") {
		t.Fatalf("Load() error = %v, want ALGOPLAY_FPS error", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) succeeded")
	}
	if _, err := Load(writeFile(t, dir, "audio: [")); err == nil {
		t.Error("Load(malformed) succeeded")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 100 }},
		{"buffer", func(c *Config) { c.Audio.Buffer = 0 }},
		{"fft size", func(c *Config) { c.Analyser.FFTSize = 300 }},
		{"smoothing", func(c *Config) { c.Analyser.Smoothing = 1.5 }},
		{"decibels", func(c *Config) { c.Analyser.MinDecibels = -10 }},
		{"fps", func(c *Config) { c.Analyser.FPS = 0 }},
		{"volume", func(c *Config) { c.Player.Volume = 2 }},
		{"interval", func(c *Config) { c.Player.TimeUpdateInterval = 0 }},
		{"repeat", func(c *Config) { c.Player.Repeat = "forever" }},
		{"eq", func(c *Config) { c.EQ = make([]float64, 11) }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate() = nil, want error")
			}
		})
	}
}

type fakeLive struct {
	patches []player.EffectsPatch
	gains   map[int]float64
}

func (f *fakeLive) UpdateEffects(p player.EffectsPatch) { f.patches = append(f.patches, p) }
func (f *fakeLive) SetEqBandGain(i int, g float64)      { f.gains[i] = g }

func TestApply(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Effects.Reverb = 0.4
	cfg.EQ = []float64{1, 2}

	live := &fakeLive{gains: map[int]float64{}}
	Apply(live, cfg)

	if len(live.patches) != 1 || *live.patches[0].Reverb != 0.4 {
		t.Fatalf("patches = %+v", live.patches)
	}
	if len(live.gains) != 2 || live.gains[1] != 2 {
		t.Fatalf("gains = %v", live.gains)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "effects:\n  reverb: 0.1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zerolog.Nop(), func(c Config) {
			select {
			case changes <- c:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(400 * time.Millisecond)
	defer tick.Stop()
	writeFile(t, dir, "effects:\n  reverb: 0.6\n")
	for {
		select {
		case c := <-changes:
			// A reload may observe the file mid-write; wait for the final one.
			if c.Effects.Reverb != 0.6 {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch() = %v", err)
			}
			return
		case <-tick.C:
			// The watcher starts asynchronously and may miss the first write.
			writeFile(t, dir, "effects:\n  reverb: 0.6\n")
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
