package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-player/player"
)

const debounce = 100 * time.Millisecond

// LiveSettings is the part of a running player that Watch updates.
type LiveSettings interface {
	UpdateEffects(patch player.EffectsPatch)
	SetEqBandGain(index int, gain float64)
}

// Apply pushes the effects and EQ sections of c to p.
func Apply(p LiveSettings, c Config) {
	p.UpdateEffects(c.Effects.Patch())
	for i, gain := range c.EQ {
		p.SetEqBandGain(i, gain)
	}
}

// Watch reloads the file at path whenever it changes and passes the result
// to onChange, until ctx is done. Files that fail to load are logged and
// skipped. The directory is watched so editors that replace the file on
// save are followed.
func Watch(ctx context.Context, path string, logger zerolog.Logger, onChange func(Config)) error {
	logger = logger.With().Str("component", "config-watch").Str("path", path).Logger()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		case <-fire:
			fire = nil
			cfg, err := Load(path)
			if err != nil {
				logger.Warn().Err(err).Msg("config reload failed, keeping previous settings")
				continue
			}
			logger.Info().Msg("config reloaded")
			onChange(cfg)
		}
	}
}
