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

package archive

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchive(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()

	files := map[string]string{
		"archive/Games/Nintendo 64/Super Mario 64 (USA).z64": "mario",
		"archive/Games/Nintendo 64/Wave Race 64 (USA).z64":   "wave",
		"archive/Games/Sega Genesis/Sonic (World).md":        "sonic",
		"archive/Metadata/Images/Nintendo 64/placeholder":    "",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	// An empty category directory still counts as a category.
	require.NoError(t, fs.MkdirAll("archive/Games/PlayStation", 0o755))

	return fs
}

func TestCatalogValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid_archive", func(t *testing.T) {
		t.Parallel()
		catalog := NewCatalog(newTestArchive(t), "archive")
		require.NoError(t, catalog.Validate())
		assert.True(t, catalog.HasMetadata())
	})

	t.Run("missing_items_dir", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("archive/Metadata", 0o755))
		catalog := NewCatalog(fs, "archive")
		assert.Error(t, catalog.Validate())
	})

	t.Run("missing_metadata_is_not_fatal", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("archive/Games/Nintendo 64", 0o755))
		catalog := NewCatalog(fs, "archive")
		require.NoError(t, catalog.Validate())
		assert.False(t, catalog.HasMetadata())
	})

	t.Run("missing_root", func(t *testing.T) {
		t.Parallel()
		catalog := NewCatalog(afero.NewMemMapFs(), "nowhere")
		assert.Error(t, catalog.Validate())
	})
}

func TestCatalogCategories(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(newTestArchive(t), "archive")
	require.NoError(t, catalog.Validate())

	names, err := catalog.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Nintendo 64", "PlayStation", "Sega Genesis"}, names)

	// Second call serves the memoized listing.
	again, err := catalog.Categories()
	require.NoError(t, err)
	assert.Equal(t, names, again)
}

func TestCatalogItems(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(newTestArchive(t), "archive")
	require.NoError(t, catalog.Validate())

	items, err := catalog.Items("Nintendo 64")
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Super Mario 64 (USA)", first.Name)
	assert.Equal(t, "Super Mario 64 (USA).z64", first.Filename)
	assert.Equal(t, ".z64", first.Extension)
	assert.Equal(t, filepath.Join("archive", "Games", "Nintendo 64", "Super Mario 64 (USA).z64"), first.SourcePath)
	assert.Equal(t, uint64(5), first.SizeBytes)

	assert.Equal(t, "Wave Race 64 (USA)", items[1].Name)
}

func TestCatalogItemsEmptyCategory(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(newTestArchive(t), "archive")
	require.NoError(t, catalog.Validate())

	items, err := catalog.Items("PlayStation")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCatalogItemsUnknownCategory(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(newTestArchive(t), "archive")
	require.NoError(t, catalog.Validate())

	_, err := catalog.Items("Atari Jaguar")
	assert.Error(t, err)
}

func TestCatalogRoots(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(afero.NewMemMapFs(), "archive")
	assert.Equal(t, filepath.Join("archive", "Games"), catalog.ItemsRoot())
	assert.Equal(t, filepath.Join("archive", "Metadata"), catalog.MetadataRoot())
}
