package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-player/catalog"
	"github.com/cwbudde/algo-player/internal/config"
	"github.com/cwbudde/algo-player/internal/logging"
	"github.com/cwbudde/algo-player/internal/output"
	"github.com/cwbudde/algo-player/internal/tui"
	"github.com/cwbudde/algo-player/media"
	"github.com/cwbudde/algo-player/player"
	"github.com/cwbudde/algo-player/session"
	"github.com/cwbudde/algo-player/session/mpris"
)

const positionInterval = time.Second

type playParams struct {
	Source   string `pos:"true" optional:"true" help:"Audio directory, YAML manifest or single audio file. Defaults to the configured library."`
	Config   string `short:"c" optional:"true" help:"Configuration file."`
	Playlist string `short:"l" optional:"true" help:"Play this playlist instead of the whole catalog."`
	Shuffle  bool   `short:"s" optional:"true" help:"Start shuffled."`
	Watch    bool   `short:"w" optional:"true" help:"Re-apply effects and EQ when the configuration file changes."`
	NoAudio  bool   `optional:"true" help:"Render into a silent sink instead of the sound device."`
	LogFile  string `optional:"true" help:"Write logs to this file while the player runs."`
}

func playCmd() *cobra.Command {
	return boa.CmdT[playParams]{
		Use:   "play",
		Short: "Play a library in the terminal player",
		Long: `Play tracks from a directory of mp3/wav files, a YAML manifest or a single file.

Press ? inside the player for key bindings.`,
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *playParams, cmd *cobra.Command, args []string) {
			if err := runPlay(cmd.Context(), params); err != nil {
				fmt.Fprintf(os.Stderr, "algoplay: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func runPlay(parent context.Context, params *playParams) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load(params.Config)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	logFile := params.LogFile
	if logFile == "" {
		logFile = cfg.Log.File
	}
	if logFile != "" {
		f, err := logging.ToFile(logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Output: logOut})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracks, err := loadTracks(ctx, params.Source, params.Playlist, cfg.Library)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return errors.New("no playable tracks found")
	}

	ac := openOutput(cfg, params.NoAudio, logger)
	defer ac.Close()

	element := media.NewStreamElement(cfg.Audio.SampleRate,
		media.WithLogger(logger),
		media.WithTimeUpdateInterval(cfg.Player.TimeUpdateInterval),
	)
	defer element.Close()

	scheduler := player.NewTickerScheduler(cfg.Analyser.FPS)
	go scheduler.Run(ctx)

	opts := []player.Option{
		player.WithConfig(cfg.PlayerConfig()),
		player.WithLogger(logger),
		player.WithScheduler(scheduler),
	}
	var srv *mpris.Server
	if cfg.MPRIS {
		srv, err = mpris.Connect("algoplay", "algoplay", logger)
		if err != nil {
			logger.Info().Err(err).Msg("media session unavailable")
		} else {
			defer srv.Close()
			srv.OnQuit(cancel)
			opts = append(opts, player.WithSurface(session.Surface(srv)))
		}
	}

	p, err := player.New(ac, element, opts...)
	if err != nil {
		return err
	}
	p.SetQueue(tracks)
	if params.Shuffle || cfg.Player.Shuffle {
		p.ToggleShuffle()
	}
	for p.Snapshot().RepeatMode != cfg.RepeatMode() {
		p.CycleRepeat()
	}

	go func() {
		if err := p.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("player event loop stopped")
		}
	}()
	if srv != nil {
		go reportPosition(ctx, srv, p)
	}
	if params.Watch && params.Config != "" {
		go func() {
			err := config.Watch(ctx, params.Config, logger, func(c config.Config) { config.Apply(p, c) })
			if err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("config watch stopped")
			}
		}()
	}

	spectrum, unsubscribe := p.Analysis().Subscribe(1)
	defer unsubscribe()

	first := p.Queue()[0]
	go p.PlayTrack(ctx, first)

	logger.Info().Int("tracks", len(tracks)).Str("first", first.Title).Msg("player started")
	return tui.Run(ctx, p, spectrum)
}

// loadTracks resolves the queue from source, falling back to library.
func loadTracks(ctx context.Context, source, playlist, library string) ([]player.Track, error) {
	if source == "" {
		source = library
	}
	if source == "" {
		return nil, errors.New("no source given and no library configured")
	}
	c, err := catalog.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	if playlist != "" {
		return c.PlaylistTracks(ctx, playlist)
	}
	return c.Tracks(ctx)
}

type outputDevice interface {
	player.AudioContext
	io.Closer
}

func openOutput(cfg config.Config, silent bool, logger zerolog.Logger) outputDevice {
	if silent {
		return output.NewNull(cfg.Audio.SampleRate, cfg.Audio.Buffer, logger)
	}
	if dev, ok := output.New(cfg.Audio.SampleRate, cfg.Audio.Buffer, logger).(outputDevice); ok {
		return dev
	}
	return output.NewNull(cfg.Audio.SampleRate, cfg.Audio.Buffer, logger)
}

func reportPosition(ctx context.Context, srv *mpris.Server, p *player.Player) {
	t := time.NewTicker(positionInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			srv.SetPosition(p.Snapshot().CurrentTime)
		}
	}
}
