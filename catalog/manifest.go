package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-player/player"
)

// Manifest is the YAML catalog format.
//
//	tracks:
//	  - id: intro
//	    title: Intro
//	    artist: Someone
//	    duration: 184
//	    audio_url: audio/intro.mp3
//	playlists:
//	  - id: morning
//	    name: Morning
//	    tracks: [intro]
type Manifest struct {
	Tracks    []player.Track    `yaml:"tracks"`
	Playlists []player.Playlist `yaml:"playlists"`
}

// LoadManifest reads a manifest. Relative local audio and cover paths are
// resolved against the manifest directory.
func LoadManifest(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range m.Tracks {
		t := &m.Tracks[i]
		if t.ID == "" {
			return nil, fmt.Errorf("manifest %s: track %d has no id", path, i)
		}
		t.AudioURL = resolve(dir, t.AudioURL)
		t.CoverURL = resolve(dir, t.CoverURL)
	}
	return NewStatic(m.Tracks, m.Playlists)
}

func resolve(dir, ref string) string {
	if ref == "" || strings.Contains(ref, "://") || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, ref)
}
