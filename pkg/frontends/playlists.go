// Romshelf
// Copyright (c) 2026 The Romshelf Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Romshelf.
//
// Romshelf is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Romshelf is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Romshelf.  If not, see <http://www.gnu.org/licenses/>.

package frontends

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/romshelf/romshelf/pkg/prompt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	playlistExt     = ".lpl"
	playlistVersion = "1.5"
)

// Playlist is the per-category playlist record.
type Playlist struct {
	Version            string         `json:"version"`
	DefaultCorePath    string         `json:"default_core_path"`
	DefaultCoreName    string         `json:"default_core_name"`
	LabelDisplayMode   int            `json:"label_display_mode"`
	RightThumbnailMode int            `json:"right_thumbnail_mode"`
	LeftThumbnailMode  int            `json:"left_thumbnail_mode"`
	SortMode           int            `json:"sort_mode"`
	Items              []PlaylistItem `json:"items"`
}

// PlaylistItem is one entry in a playlist's append-only item list.
type PlaylistItem struct {
	Path     string `json:"path"`
	Label    string `json:"label"`
	CorePath string `json:"core_path"`
	CoreName string `json:"core_name"`
	CRC32    string `json:"crc32"`
	DBName   string `json:"db_name"`
}

// Playlists is the registry backed by a directory of playlist files, one
// per category. The destination identifier is the playlist filename stem.
type Playlists struct {
	fs  afero.Fs
	dir string
}

func NewPlaylists(fs afero.Fs, dir string) *Playlists {
	return &Playlists{fs: fs, dir: dir}
}

func (r *Playlists) SupportsCreation() bool { return r.dir != "" }

func (r *Playlists) playlistPath(destID string) string {
	return filepath.Join(r.dir, destID+playlistExt)
}

// Probe matches an archive category against existing playlist filenames
// by normalized name.
func (r *Playlists) Probe(archiveName string) (string, bool, error) {
	if r.dir == "" {
		return "", false, nil
	}
	if ok, _ := afero.DirExists(r.fs, r.dir); !ok {
		return "", false, nil
	}

	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		return "", false, fmt.Errorf("failed to read playlists directory: %w", err)
	}

	want := normalizeName(archiveName)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), playlistExt) {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if normalizeName(stem) == want {
			log.Info().
				Str("archive", archiveName).
				Str("playlist", stem).
				Msg("found existing playlist")
			return stem, true, nil
		}
	}

	return "", false, nil
}

// Create writes a fresh playlist file and returns its filename stem, the
// identifier Probe reports and AppendItem expects. An existing playlist
// with the same name is success-via-reuse and is left untouched.
func (r *Playlists) Create(sys prompt.CustomSystem, simulate bool) (string, error) {
	if r.dir == "" {
		return "", fmt.Errorf("no playlists path configured for this format")
	}

	path := r.playlistPath(sys.FullName)
	if ok, _ := afero.Exists(r.fs, path); ok {
		log.Warn().Str("playlist", sys.FullName).Msg("playlist already exists, reusing")
		return sys.FullName, nil
	}

	if simulate {
		log.Info().Str("path", path).Msg("simulate: would create playlist")
		return sys.FullName, nil
	}

	core := sys.Command
	if core == "" {
		core = "DETECT"
	}
	pl := Playlist{
		Version:         playlistVersion,
		DefaultCorePath: core,
		DefaultCoreName: sys.Name,
		Items:           []PlaylistItem{},
	}

	if err := r.save(path, &pl); err != nil {
		return "", err
	}
	return sys.FullName, nil
}

// AppendItem adds an entry to a category's playlist. Appending a path
// already present in the list is a no-op.
func (r *Playlists) AppendItem(destID string, entry PlaylistItem) error {
	path := r.playlistPath(destID)

	pl := Playlist{Version: playlistVersion, Items: []PlaylistItem{}}
	if ok, _ := afero.Exists(r.fs, path); ok {
		data, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read playlist %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &pl); err != nil {
			return fmt.Errorf("failed to parse playlist %s: %w", path, err)
		}
	}

	for i := range pl.Items {
		if pl.Items[i].Path == entry.Path {
			return nil
		}
	}

	pl.Items = append(pl.Items, entry)
	return r.save(path, &pl)
}

func (r *Playlists) save(path string, pl *Playlist) error {
	if err := r.fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create playlists directory: %w", err)
	}

	data, err := json.MarshalIndent(pl, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal playlist: %w", err)
	}
	if err := afero.WriteFile(r.fs, path, data, 0o644); err != nil { //nolint:gosec // frontend reads this file
		return fmt.Errorf("failed to write playlist %s: %w", path, err)
	}
	return nil
}
