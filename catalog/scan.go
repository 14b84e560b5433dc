package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-player/media"
	"github.com/cwbudde/algo-player/player"
)

// trackNamespace seeds the name-based track IDs of scanned files.
var trackNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/cwbudde/algo-player/track"))

// TrackID returns the stable ID of a file at rel, a slash separated path
// relative to the library root.
func TrackID(rel string) string {
	return uuid.NewSHA1(trackNamespace, []byte(filepath.ToSlash(rel))).String()
}

// Scan walks root and turns every playable file into a track. Files are
// named "Artist - Title.ext" or just "Title.ext"; the containing directory
// becomes the album and a playlist.
func Scan(ctx context.Context, root string) (*Static, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	var tracks []player.Track
	albums := map[string]*player.Playlist{}
	var order []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !media.IsAudioFile(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		t := trackFromPath(rel, path)
		tracks = append(tracks, t)

		dir := filepath.ToSlash(filepath.Dir(rel))
		pl, ok := albums[dir]
		if !ok {
			pl = &player.Playlist{ID: dir, Name: playlistName(dir, root)}
			albums[dir] = pl
			order = append(order, dir)
		}
		pl.TrackIDs = append(pl.TrackIDs, t.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	playlists := make([]player.Playlist, 0, len(order))
	for _, dir := range order {
		playlists = append(playlists, *albums[dir])
	}
	return NewStatic(tracks, playlists)
}

func trackFromPath(rel, abs string) player.Track {
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	base = strings.ReplaceAll(base, "_", " ")

	t := player.Track{
		ID:       TrackID(rel),
		Title:    strings.TrimSpace(base),
		AudioURL: abs,
	}
	if artist, title, ok := strings.Cut(base, " - "); ok {
		t.Artist = strings.TrimSpace(artist)
		t.Title = strings.TrimSpace(title)
	}
	if dir := filepath.Dir(rel); dir != "." {
		t.Album = filepath.Base(dir)
	}
	return t
}

func playlistName(dir, root string) string {
	if dir == "." {
		return filepath.Base(root)
	}
	return filepath.Base(dir)
}
