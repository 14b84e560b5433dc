package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-player/catalog"
	"github.com/cwbudde/algo-player/internal/config"
	"github.com/cwbudde/algo-player/player"
)

type tracksParams struct {
	Source    string `pos:"true" optional:"true" help:"Audio directory, YAML manifest or single audio file. Defaults to the configured library."`
	Config    string `short:"c" optional:"true" help:"Configuration file."`
	Search    string `short:"q" optional:"true" help:"Only list tracks whose title, artist, album or genre contains this text."`
	Playlist  string `short:"l" optional:"true" help:"Only list tracks of this playlist."`
	Playlists bool   `short:"p" optional:"true" help:"List playlists instead of tracks."`
}

func tracksCmd() *cobra.Command {
	return boa.CmdT[tracksParams]{
		Use:         "tracks",
		Short:       "List the tracks or playlists of a library",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *tracksParams, cmd *cobra.Command, args []string) {
			if err := runTracks(context.Background(), params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "algoplay: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func runTracks(ctx context.Context, params *tracksParams, w io.Writer) error {
	cfg, err := config.Load(params.Config)
	if err != nil {
		return err
	}
	source := params.Source
	if source == "" {
		source = cfg.Library
	}
	if source == "" {
		return fmt.Errorf("no source given and no library configured")
	}

	c, err := catalog.Open(ctx, source)
	if err != nil {
		return err
	}

	if params.Playlists {
		playlists, err := c.Playlists(ctx)
		if err != nil {
			return err
		}
		renderPlaylists(w, playlists)
		return nil
	}

	var tracks []player.Track
	switch {
	case params.Playlist != "":
		tracks, err = c.PlaylistTracks(ctx, params.Playlist)
		if err != nil {
			return err
		}
	default:
		tracks = c.Search(params.Search)
	}
	renderTracks(w, tracks)
	return nil
}

func renderTracks(w io.Writer, tracks []player.Track) {
	if len(tracks) == 0 {
		fmt.Fprintln(w, "No tracks found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// StyleLight upper-cases footers; keep the count as written.
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"#", "TITLE", "ARTIST", "ALBUM", "LENGTH", "ID"})
	for i, tr := range tracks {
		length := "-"
		if tr.Duration > 0 {
			length = fmt.Sprintf("%d:%02d", tr.Duration/60, tr.Duration%60)
		}
		t.AppendRow(table.Row{
			i + 1,
			text.FgYellow.Sprint(tr.Title),
			tr.Artist,
			tr.Album,
			length,
			shortID(tr.ID),
		})
	}
	t.AppendFooter(table.Row{"", strconv.Itoa(len(tracks)) + " tracks"})
	t.Render()
}

func renderPlaylists(w io.Writer, playlists []player.Playlist) {
	if len(playlists) == 0 {
		fmt.Fprintln(w, "No playlists found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "NAME", "TRACKS"})
	for _, pl := range playlists {
		t.AppendRow(table.Row{pl.ID, text.FgYellow.Sprint(pl.Name), len(pl.TrackIDs)})
	}
	t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
