// Package config loads the player configuration: built-in defaults, then an
// optional YAML file, then ALGOPLAY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-player/player"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ALGOPLAY_"

// Config holds all runtime configuration.
type Config struct {
	Audio    Audio               `yaml:"audio"`
	Analyser Analyser            `yaml:"analyser"`
	Player   Player              `yaml:"player"`
	Effects  player.AudioEffects `yaml:"effects"`
	EQ       []float64           `yaml:"eq"`
	MPRIS    bool                `yaml:"mpris"`
	Library  string              `yaml:"library"`
	Log      Log                 `yaml:"log"`
}

// Audio configures the output device.
type Audio struct {
	SampleRate int           `yaml:"sample_rate"`
	Buffer     time.Duration `yaml:"buffer"`
}

// Analyser configures the spectrum display.
type Analyser struct {
	FFTSize     int     `yaml:"fft_size"`
	Smoothing   float64 `yaml:"smoothing"`
	MinDecibels float64 `yaml:"min_decibels"`
	MaxDecibels float64 `yaml:"max_decibels"`
	FPS         int     `yaml:"fps"`
}

// Player configures transport behaviour.
type Player struct {
	Volume             float64       `yaml:"volume"`
	RestartThreshold   float64       `yaml:"restart_threshold"` // seconds
	TimeUpdateInterval time.Duration `yaml:"time_update_interval"`
	Repeat             string        `yaml:"repeat"`
	Shuffle            bool          `yaml:"shuffle"`
}

// Log configures the root logger.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	b := player.DefaultBuilderConfig()
	return Config{
		Audio: Audio{
			SampleRate: 44100,
			Buffer:     100 * time.Millisecond,
		},
		Analyser: Analyser{
			FFTSize:     b.FFTSize,
			Smoothing:   b.Smoothing,
			MinDecibels: b.MinDecibels,
			MaxDecibels: b.MaxDecibels,
			FPS:         60,
		},
		Player: Player{
			Volume:             1,
			RestartThreshold:   player.DefaultRestartThreshold,
			TimeUpdateInterval: 250 * time.Millisecond,
			Repeat:             string(player.RepeatOff),
		},
		Effects: player.DefaultEffects(),
		EQ:      make([]float64, len(player.EQFrequencies)),
		MPRIS:   true,
		Log:     Log{Level: "info"},
	}
}

// Load returns the defaults overlaid with the YAML file at path, if path is
// not empty, and with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	c.Audio.SampleRate = envInt("SAMPLE_RATE", c.Audio.SampleRate, &errs)
	c.Audio.Buffer = envDuration("BUFFER", c.Audio.Buffer, &errs)
	c.Analyser.FFTSize = envInt("FFT_SIZE", c.Analyser.FFTSize, &errs)
	c.Analyser.Smoothing = envFloat("SMOOTHING", c.Analyser.Smoothing, &errs)
	c.Analyser.FPS = envInt("FPS", c.Analyser.FPS, &errs)
	c.Player.Volume = envFloat("VOLUME", c.Player.Volume, &errs)
	c.Player.RestartThreshold = envFloat("RESTART_THRESHOLD", c.Player.RestartThreshold, &errs)
	c.Player.TimeUpdateInterval = envDuration("TIME_UPDATE_INTERVAL", c.Player.TimeUpdateInterval, &errs)
	c.Player.Repeat = envStr("REPEAT", c.Player.Repeat)
	c.Player.Shuffle = envBool("SHUFFLE", c.Player.Shuffle, &errs)
	c.MPRIS = envBool("MPRIS", c.MPRIS, &errs)
	c.Library = envStr("LIBRARY", c.Library)
	c.Log.Level = envStr("LOG_LEVEL", c.Log.Level)
	c.Log.File = envStr("LOG_FILE", c.Log.File)
	return errors.Join(errs...)
}

// Validate checks ranges that would otherwise fail deep inside the engine.
func (c Config) Validate() error {
	var errs []error
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d out of range [8000, 192000]", c.Audio.SampleRate))
	}
	if c.Audio.Buffer <= 0 {
		errs = append(errs, fmt.Errorf("audio.buffer must be positive, got %v", c.Audio.Buffer))
	}
	if n := c.Analyser.FFTSize; n < 32 || n > 32768 || bits.OnesCount(uint(n)) != 1 {
		errs = append(errs, fmt.Errorf("analyser.fft_size must be a power of two in [32, 32768], got %d", n))
	}
	if s := c.Analyser.Smoothing; s < 0 || s > 1 {
		errs = append(errs, fmt.Errorf("analyser.smoothing %v out of range [0, 1]", s))
	}
	if c.Analyser.MinDecibels >= c.Analyser.MaxDecibels {
		errs = append(errs, fmt.Errorf("analyser.min_decibels %v must be below max_decibels %v", c.Analyser.MinDecibels, c.Analyser.MaxDecibels))
	}
	if c.Analyser.FPS <= 0 {
		errs = append(errs, fmt.Errorf("analyser.fps must be positive, got %d", c.Analyser.FPS))
	}
	if v := c.Player.Volume; v < 0 || v > 1 {
		errs = append(errs, fmt.Errorf("player.volume %v out of range [0, 1]", v))
	}
	if c.Player.TimeUpdateInterval <= 0 {
		errs = append(errs, fmt.Errorf("player.time_update_interval must be positive, got %v", c.Player.TimeUpdateInterval))
	}
	if _, err := player.ParseRepeatMode(c.Player.Repeat); err != nil {
		errs = append(errs, fmt.Errorf("player.repeat: %w", err))
	}
	if len(c.EQ) > len(player.EQFrequencies) {
		errs = append(errs, fmt.Errorf("eq has %d gains, at most %d bands exist", len(c.EQ), len(player.EQFrequencies)))
	}
	return errors.Join(errs...)
}

// PlayerConfig converts the configuration for player.New.
func (c Config) PlayerConfig() player.Config {
	cfg := player.DefaultConfig()
	cfg.Volume = c.Player.Volume
	cfg.Effects = c.Effects
	cfg.EQGains = append([]float64(nil), c.EQ...)
	cfg.RestartThreshold = c.Player.RestartThreshold
	cfg.Builder.FFTSize = c.Analyser.FFTSize
	cfg.Builder.Smoothing = c.Analyser.Smoothing
	cfg.Builder.MinDecibels = c.Analyser.MinDecibels
	cfg.Builder.MaxDecibels = c.Analyser.MaxDecibels
	return cfg
}

// RepeatMode returns the configured initial repeat mode.
func (c Config) RepeatMode() player.RepeatMode {
	m, err := player.ParseRepeatMode(c.Player.Repeat)
	if err != nil {
		return player.RepeatOff
	}
	return m
}

func envStr(key, fallback string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return fallback
	}
	return f
}

func envBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return fallback
	}
	return d
}
