// Package catalog supplies tracks and playlists to the player. The player
// only reads from it; editing a library is out of scope.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/cwbudde/algo-player/media"
	"github.com/cwbudde/algo-player/player"
)

// ErrUnknownPlaylist is returned for a playlist ID not in the catalog.
var ErrUnknownPlaylist = errors.New("unknown playlist")

// Catalog is a read-only source of tracks and playlists.
type Catalog interface {
	Tracks(ctx context.Context) ([]player.Track, error)
	Playlists(ctx context.Context) ([]player.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]player.Track, error)
}

// Static is an in-memory catalog.
type Static struct {
	tracks    []player.Track
	byID      map[string]player.Track
	playlists []player.Playlist
}

// NewStatic creates a catalog over the given tracks and playlists. Track IDs
// must be unique.
func NewStatic(tracks []player.Track, playlists []player.Playlist) (*Static, error) {
	dups := lo.FindDuplicatesBy(tracks, func(t player.Track) string { return t.ID })
	if len(dups) > 0 {
		return nil, fmt.Errorf("duplicate track id %q", dups[0].ID)
	}
	return &Static{
		tracks:    slices.Clone(tracks),
		byID:      lo.KeyBy(tracks, func(t player.Track) string { return t.ID }),
		playlists: slices.Clone(playlists),
	}, nil
}

// Open loads a catalog from a directory of audio files, a YAML manifest or a
// single audio file.
func Open(ctx context.Context, path string) (*Static, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	switch {
	case info.IsDir():
		return Scan(ctx, path)
	case media.IsAudioFile(path):
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		return NewStatic([]player.Track{trackFromPath(filepath.Base(path), abs)}, nil)
	default:
		return LoadManifest(path)
	}
}

func (s *Static) Tracks(context.Context) ([]player.Track, error) {
	return slices.Clone(s.tracks), nil
}

func (s *Static) Playlists(context.Context) ([]player.Playlist, error) {
	return slices.Clone(s.playlists), nil
}

// PlaylistTracks resolves a playlist in order. IDs missing from the catalog
// are skipped.
func (s *Static) PlaylistTracks(_ context.Context, playlistID string) ([]player.Track, error) {
	pl, ok := lo.Find(s.playlists, func(p player.Playlist) bool { return p.ID == playlistID })
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlaylist, playlistID)
	}
	return lo.FilterMap(pl.TrackIDs, func(id string, _ int) (player.Track, bool) {
		t, ok := s.byID[id]
		return t, ok
	}), nil
}

// Track returns the track with the given ID.
func (s *Static) Track(id string) (player.Track, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// Search returns tracks whose title, artist, album or genre contains query,
// ignoring case.
func (s *Static) Search(query string) []player.Track {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(s.tracks)
	}
	return lo.Filter(s.tracks, func(t player.Track, _ int) bool {
		return lo.SomeBy([]string{t.Title, t.Artist, t.Album, t.Genre}, func(field string) bool {
			return strings.Contains(strings.ToLower(field), q)
		})
	})
}
