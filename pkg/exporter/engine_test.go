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

package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceCopy(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/game.z64", []byte("payload"), 0o644))
	engine := NewEngine(fs, ModeCopy, false)

	outcome, err := engine.Place("src/game.z64", "dest/n64/game.z64", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)

	data, err := afero.ReadFile(fs, "dest/n64/game.z64")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestPlaceIdempotent(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/game.z64", []byte("payload"), 0o644))
	engine := NewEngine(fs, ModeCopy, false)

	outcome, err := engine.Place("src/game.z64", "dest/game.z64", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)

	// Same request again: destination exists, no mutation.
	outcome, err = engine.Place("src/game.z64", "dest/game.z64", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestPlaceForceReplaces(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/old.z64", []byte("old"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/new.z64", []byte("brand new"), 0o644))
	engine := NewEngine(fs, ModeCopy, false)

	_, err := engine.Place("src/old.z64", "dest/game.z64", false)
	require.NoError(t, err)

	outcome, err := engine.Place("src/new.z64", "dest/game.z64", true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)

	data, err := afero.ReadFile(fs, "dest/game.z64")
	require.NoError(t, err)
	assert.Equal(t, "brand new", string(data))
}

func TestPlaceMissingSource(t *testing.T) {
	t.Parallel()

	engine := NewEngine(afero.NewMemMapFs(), ModeCopy, false)

	outcome, err := engine.Place("src/missing.z64", "dest/game.z64", false)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestPlaceDirectorySource(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("src/dir", 0o755))
	engine := NewEngine(fs, ModeCopy, false)

	outcome, err := engine.Place("src/dir", "dest/game.z64", false)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrSourceNotRegular)
}

func TestPlaceSimulate(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/game.z64", []byte("payload"), 0o644))
	engine := NewEngine(fs, ModeCopy, true)

	outcome, err := engine.Place("src/game.z64", "dest/game.z64", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)

	exists, err := afero.Exists(fs, "dest/game.z64")
	require.NoError(t, err)
	assert.False(t, exists, "simulate must not write")

	// Simulated pre-checks still run.
	outcome, err = engine.Place("src/missing.z64", "dest/other.z64", false)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestPlaceSimulateSkipsExisting(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/game.z64", []byte("payload"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "dest/game.z64", []byte("already here"), 0o644))
	engine := NewEngine(fs, ModeCopy, true)

	outcome, err := engine.Place("src/game.z64", "dest/game.z64", false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestPlaceLinkUnsupportedFilesystem(t *testing.T) {
	t.Parallel()

	// MemMapFs has no symlink support; link mode must fail loudly rather
	// than silently copy.
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/game.z64", []byte("payload"), 0o644))
	engine := NewEngine(fs, ModeLink, false)

	outcome, err := engine.Place("src/game.z64", "dest/game.z64", false)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrSymlinkUnsupported)
}

func TestPlaceLink(t *testing.T) {
	t.Parallel()

	fs := afero.NewOsFs()
	dir := t.TempDir()
	source := filepath.Join(dir, "game.z64")
	dest := filepath.Join(dir, "out", "game.z64")
	require.NoError(t, afero.WriteFile(fs, source, []byte("payload"), 0o644))

	engine := NewEngine(fs, ModeLink, false)

	outcome, err := engine.Place(source, dest, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)

	info, err := os.Lstat(dest)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	target, err := os.Readlink(dest)
	require.NoError(t, err)
	abs, err := filepath.Abs(source)
	require.NoError(t, err)
	assert.Equal(t, abs, filepath.Clean(target))

	// Linking again skips the existing link.
	outcome, err = engine.Place(source, dest, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestPlaceLinkForceRelinks(t *testing.T) {
	t.Parallel()

	fs := afero.NewOsFs()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.z64")
	second := filepath.Join(dir, "second.z64")
	dest := filepath.Join(dir, "out", "game.z64")
	require.NoError(t, afero.WriteFile(fs, first, []byte("one"), 0o644))
	require.NoError(t, afero.WriteFile(fs, second, []byte("two"), 0o644))

	engine := NewEngine(fs, ModeLink, false)

	_, err := engine.Place(first, dest, false)
	require.NoError(t, err)

	outcome, err := engine.Place(second, dest, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)

	target, err := os.Readlink(dest)
	require.NoError(t, err)
	abs, err := filepath.Abs(second)
	require.NoError(t, err)
	assert.Equal(t, abs, filepath.Clean(target))
}

func TestPlaceDanglingLinkCountsAsExisting(t *testing.T) {
	t.Parallel()

	fs := afero.NewOsFs()
	dir := t.TempDir()
	source := filepath.Join(dir, "game.z64")
	dest := filepath.Join(dir, "game-link.z64")
	require.NoError(t, afero.WriteFile(fs, source, []byte("payload"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone.z64"), dest))

	engine := NewEngine(fs, ModeCopy, false)

	outcome, err := engine.Place(source, dest, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}
