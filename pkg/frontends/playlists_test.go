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
	"testing"

	"github.com/romshelf/romshelf/pkg/prompt"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPlaylist(t *testing.T, fs afero.Fs, path string) Playlist {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var pl Playlist
	require.NoError(t, json.Unmarshal(data, &pl))
	return pl
}

func TestPlaylistsProbe(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "playlists/Nintendo - Nintendo 64.lpl", []byte("{}"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "playlists/notes.txt", []byte("x"), 0o644))
	registry := NewPlaylists(fs, "playlists")

	tests := []struct {
		name        string
		archiveName string
		expected    string
		found       bool
	}{
		{
			name:        "normalized_match",
			archiveName: "nintendo-nintendo 64",
			expected:    "Nintendo - Nintendo 64",
			found:       true,
		},
		{
			name:        "no_match",
			archiveName: "Sega Genesis",
			found:       false,
		},
		{
			name:        "non_playlist_files_ignored",
			archiveName: "notes",
			found:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			destID, found, err := registry.Probe(tt.archiveName)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.expected, destID)
		})
	}
}

func TestPlaylistsCreate(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	registry := NewPlaylists(fs, "playlists")

	sys := prompt.CustomSystem{
		Name:     "n64",
		FullName: "Nintendo - Nintendo 64",
		Command:  "/cores/mupen64plus_next_libretro.so",
	}
	destID, err := registry.Create(sys, false)
	require.NoError(t, err)
	assert.Equal(t, "Nintendo - Nintendo 64", destID,
		"the identifier must name the playlist that was written")

	pl := readPlaylist(t, fs, "playlists/Nintendo - Nintendo 64.lpl")
	assert.Equal(t, "1.5", pl.Version)
	assert.Equal(t, "/cores/mupen64plus_next_libretro.so", pl.DefaultCorePath)
	assert.Equal(t, "n64", pl.DefaultCoreName)
	assert.Empty(t, pl.Items)
}

func TestPlaylistsCreateDefaultsCore(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	registry := NewPlaylists(fs, "playlists")

	_, err := registry.Create(prompt.CustomSystem{Name: "n64", FullName: "Nintendo 64"}, false)
	require.NoError(t, err)

	pl := readPlaylist(t, fs, "playlists/Nintendo 64.lpl")
	assert.Equal(t, "DETECT", pl.DefaultCorePath)
}

func TestPlaylistsCreateExistingReuses(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "playlists/Nintendo 64.lpl", []byte(`{"version":"1.5"}`), 0o644))
	registry := NewPlaylists(fs, "playlists")

	destID, err := registry.Create(prompt.CustomSystem{Name: "n64", FullName: "Nintendo 64"}, false)
	require.NoError(t, err)
	assert.Equal(t, "Nintendo 64", destID)

	data, err := afero.ReadFile(fs, "playlists/Nintendo 64.lpl")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.5"}`, string(data))
}

func TestPlaylistsCreateSimulate(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	registry := NewPlaylists(fs, "playlists")

	destID, err := registry.Create(prompt.CustomSystem{Name: "n64", FullName: "Nintendo 64"}, true)
	require.NoError(t, err)
	assert.Equal(t, "Nintendo 64", destID)

	exists, err := afero.Exists(fs, "playlists/Nintendo 64.lpl")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPlaylistsAppendItem(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	registry := NewPlaylists(fs, "playlists")

	entry := PlaylistItem{
		Path:     "/roms/n64/Super Mario 64 (USA).z64",
		Label:    "Super Mario 64 (USA)",
		CorePath: "DETECT",
		CoreName: "DETECT",
		CRC32:    "00000000|crc",
		DBName:   "Nintendo 64.lpl",
	}
	require.NoError(t, registry.AppendItem("Nintendo 64", entry))

	pl := readPlaylist(t, fs, "playlists/Nintendo 64.lpl")
	require.Len(t, pl.Items, 1)
	assert.Equal(t, entry, pl.Items[0])

	// Appending the same path again is a no-op.
	require.NoError(t, registry.AppendItem("Nintendo 64", entry))
	pl = readPlaylist(t, fs, "playlists/Nintendo 64.lpl")
	assert.Len(t, pl.Items, 1)

	second := entry
	second.Path = "/roms/n64/Wave Race 64 (USA).z64"
	second.Label = "Wave Race 64 (USA)"
	require.NoError(t, registry.AppendItem("Nintendo 64", second))
	pl = readPlaylist(t, fs, "playlists/Nintendo 64.lpl")
	assert.Len(t, pl.Items, 2)
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "lowercases", in: "Nintendo 64", expected: "nintendo64"},
		{name: "strips_separators", in: "Sega_Mega-Drive", expected: "segamegadrive"},
		{name: "empty", in: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, normalizeName(tt.in))
		})
	}
}
