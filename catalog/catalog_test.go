package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cwbudde/algo-player/player"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func trackIDs(ts []player.Track) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestNewStaticRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewStatic([]player.Track{{ID: "a"}, {ID: "b"}, {ID: "a"}}, nil)
	if err == nil {
		t.Fatal("NewStatic accepted duplicate IDs")
	}
}

func TestPlaylistTracks(t *testing.T) {
	t.Parallel()

	c, err := NewStatic(
		[]player.Track{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]player.Playlist{{ID: "mix", TrackIDs: []string{"c", "gone", "a"}}},
	)
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	ctx := context.Background()

	got, err := c.PlaylistTracks(ctx, "mix")
	if err != nil {
		t.Fatalf("PlaylistTracks: %v", err)
	}
	if ids := trackIDs(got); !slices.Equal(ids, []string{"c", "a"}) {
		t.Fatalf("tracks = %v, want [c a]", ids)
	}
	if _, err := c.PlaylistTracks(ctx, "nope"); !errors.Is(err, ErrUnknownPlaylist) {
		t.Fatalf("PlaylistTracks(nope) = %v, want ErrUnknownPlaylist", err)
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	c, err := NewStatic([]player.Track{
		{ID: "1", Title: "Blue Monday", Artist: "New Order"},
		{ID: "2", Title: "Heroes", Artist: "Bowie", Genre: "Rock"},
		{ID: "3", Title: "Windowlicker", Artist: "Aphex Twin", Album: "Blue EP"},
	}, nil)
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}

	if got := trackIDs(c.Search("blue")); !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("Search(blue) = %v, want [1 3]", got)
	}
	if got := trackIDs(c.Search("ROCK")); !slices.Equal(got, []string{"2"}) {
		t.Errorf("Search(ROCK) = %v, want [2]", got)
	}
	if got := c.Search(" "); len(got) != 3 {
		t.Errorf("Search(blank) = %d tracks, want 3", len(got))
	}
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "library.yaml")
	body := `
tracks:
  - id: intro
    title: Intro
    artist: Someone
    duration: 184
    audio_url: audio/intro.mp3
    cover_url: https://cdn.example/intro.jpg
  - id: outro
    title: Outro
    audio_url: https://cdn.example/outro.mp3
playlists:
  - id: all
    name: Everything
    tracks: [outro, intro]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	intro, ok := c.Track("intro")
	if !ok {
		t.Fatal("intro missing")
	}
	if want := filepath.Join(dir, "audio", "intro.mp3"); intro.AudioURL != want {
		t.Errorf("AudioURL = %q, want %q", intro.AudioURL, want)
	}
	if intro.CoverURL != "https://cdn.example/intro.jpg" || intro.Duration != 184 {
		t.Errorf("intro = %+v", intro)
	}
	outro, _ := c.Track("outro")
	if outro.AudioURL != "https://cdn.example/outro.mp3" {
		t.Errorf("remote AudioURL rewritten to %q", outro.AudioURL)
	}

	pls, _ := c.Playlists(context.Background())
	if len(pls) != 1 || pls[0].Name != "Everything" {
		t.Errorf("playlists = %+v", pls)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	noID := filepath.Join(dir, "noid.yaml")
	if err := os.WriteFile(noID, []byte("tracks:\n  - title: x\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadManifest(noID); err == nil {
		t.Error("LoadManifest accepted a track without id")
	}
	if _, err := LoadManifest(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadManifest(missing) succeeded")
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "Artist One - First_Song.mp3"))
	touch(t, filepath.Join(root, "album", "02 Second.wav"))
	touch(t, filepath.Join(root, "album", "cover.jpg"))
	touch(t, filepath.Join(root, "notes.txt"))

	c, err := Open(context.Background(), root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tracks, _ := c.Tracks(context.Background())
	if len(tracks) != 2 {
		t.Fatalf("tracks = %+v, want 2", tracks)
	}

	first, ok := c.Track(TrackID("Artist One - First_Song.mp3"))
	if !ok {
		t.Fatal("first track missing")
	}
	if first.Artist != "Artist One" || first.Title != "First Song" || first.Album != "" {
		t.Errorf("first = %+v", first)
	}
	if first.AudioURL != filepath.Join(root, "Artist One - First_Song.mp3") {
		t.Errorf("AudioURL = %q", first.AudioURL)
	}

	second, ok := c.Track(TrackID("album/02 Second.wav"))
	if !ok {
		t.Fatal("second track missing")
	}
	if second.Title != "02 Second" || second.Album != "album" {
		t.Errorf("second = %+v", second)
	}

	pl, err := c.PlaylistTracks(context.Background(), "album")
	if err != nil || len(pl) != 1 {
		t.Fatalf("album playlist = %v, %v", pl, err)
	}
}

func TestTrackIDIsStable(t *testing.T) {
	t.Parallel()

	a, b := TrackID("x/y.mp3"), TrackID("x/y.mp3")
	if a != b {
		t.Fatalf("TrackID not deterministic: %s != %s", a, b)
	}
	if a == TrackID("x/z.mp3") {
		t.Fatal("different paths share an ID")
	}
}

func TestOpenSingleFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Band - Tune.wav")
	touch(t, path)

	c, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tracks, _ := c.Tracks(context.Background())
	if len(tracks) != 1 {
		t.Fatalf("len(tracks) = %d, want 1", len(tracks))
	}
	if tracks[0].Artist != "Band" || tracks[0].Title != "Tune" || tracks[0].AudioURL != path {
		t.Errorf("track = %+v", tracks[0])
	}
}
