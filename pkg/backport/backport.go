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

// Package backport reconciles metadata found only in the destination
// back into the archive. It never deletes or overwrites an archive-side
// file; it only adds new ones, renaming to avoid collisions.
package backport

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/romshelf/romshelf/pkg/archive"
	"github.com/romshelf/romshelf/pkg/hasher"
	"github.com/romshelf/romshelf/pkg/metadata"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// renameBound caps collision-avoidance attempts per file. Exhausting it
// fails that single file, never the run.
const renameBound = 9999

// Outcome accumulates reconciliation counts for one category.
type Outcome struct {
	ByType            map[string]int
	DuplicatesSkipped int
	Renamed           int
	Failed            int
	Total             int
}

// Engine locates destination-side metadata absent from the archive and
// merges it back with content-based deduplication.
type Engine struct {
	fs       afero.Fs
	mapper   *metadata.Mapper
	simulate bool
}

func NewEngine(fs afero.Fs, mapper *metadata.Mapper, simulate bool) *Engine {
	return &Engine{fs: fs, mapper: mapper, simulate: simulate}
}

// Reconcile scans the destination for each item and metadata rule and
// backports files the archive does not already hold.
func (e *Engine) Reconcile(category, destID string, items []archive.Item) (Outcome, error) {
	outcome := Outcome{ByType: make(map[string]int)}

	for _, item := range items {
		for _, rule := range e.mapper.Rules() {
			if rule.Dest == nil {
				continue
			}
			if err := e.reconcileRule(category, destID, item, rule, &outcome); err != nil {
				return outcome, err
			}
		}
	}

	return outcome, nil
}

func (e *Engine) reconcileRule(
	category, destID string,
	item archive.Item,
	rule metadata.Rule,
	outcome *Outcome,
) error {
	destDir := e.mapper.DestDir(rule, destID)
	entries, err := afero.ReadDir(e.fs, destDir)
	if err != nil {
		// No destination directory means nothing to backport.
		return nil //nolint:nilerr // absence is the common case, not a failure
	}

	wantStem := e.mapper.DestFilename(rule, item, "")

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if strings.TrimSuffix(entry.Name(), ext) != wantStem {
			continue
		}

		destFile := filepath.Join(destDir, entry.Name())
		if err := e.backportFile(category, item, rule, destFile, ext, outcome); err != nil {
			log.Error().Err(err).Str("file", destFile).Msg("backport failed")
			outcome.Failed++
		}
	}

	return nil
}

// backportFile merges one destination-side file into the archive. Equal
// checksum against any same-prefix, same-extension archive file is a
// duplicate skip; an exact-name collision with a different checksum
// triggers a numbered rename.
func (e *Engine) backportFile(
	category string,
	item archive.Item,
	rule metadata.Rule,
	destFile, ext string,
	outcome *Outcome,
) error {
	destHash, err := hasher.ComputeFileHashes(e.fs, destFile)
	if err != nil {
		return fmt.Errorf("failed to checksum %s: %w", destFile, err)
	}

	archiveDir := e.mapper.SearchDir(rule, category)

	duplicate, exactExists, err := e.scanArchive(archiveDir, item.Name, ext, destHash.SHA1)
	if err != nil {
		return err
	}
	if duplicate {
		log.Debug().
			Str("file", filepath.Base(destFile)).
			Msg("identical file already archived, skipping")
		outcome.DuplicatesSkipped++
		return nil
	}

	targetName := item.Name + ext
	renamed := false
	if exactExists {
		targetName, err = e.nextFreeName(archiveDir, item.Name, ext)
		if err != nil {
			return err
		}
		renamed = true
	}

	targetPath := filepath.Join(archiveDir, targetName)
	if e.simulate {
		log.Info().
			Str("source", destFile).
			Str("target", targetPath).
			Msg("simulate: would backport")
	} else {
		if err := e.write(destFile, targetPath); err != nil {
			return err
		}
		log.Info().
			Str("source", filepath.Base(destFile)).
			Str("target", targetName).
			Bool("renamed", renamed).
			Msg("backported metadata file")
	}

	outcome.ByType[rule.Type]++
	outcome.Total++
	if renamed {
		outcome.Renamed++
	}
	return nil
}

// scanArchive checks every same-prefix, same-extension archive file, not
// just the exact name, for a checksum match.
func (e *Engine) scanArchive(archiveDir, itemName, ext, wantSHA1 string) (duplicate, exactExists bool, err error) {
	entries, err := afero.ReadDir(e.fs, archiveDir)
	if err != nil {
		// A missing archive directory holds no duplicates.
		return false, false, nil //nolint:nilerr // created later on write
	}

	exactName := itemName + ext
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		entryExt := filepath.Ext(name)
		if !strings.EqualFold(entryExt, ext) {
			continue
		}
		if !strings.HasPrefix(strings.TrimSuffix(name, entryExt), itemName) {
			continue
		}

		if name == exactName {
			exactExists = true
		}

		existing, hashErr := hasher.ComputeFileHashes(e.fs, filepath.Join(archiveDir, name))
		if hashErr != nil {
			return false, exactExists, fmt.Errorf("failed to checksum archive file %s: %w", name, hashErr)
		}
		if existing.SHA1 == wantSHA1 {
			return true, exactExists, nil
		}
	}

	return false, exactExists, nil
}

// nextFreeName finds the first unused zero-padded suffix name.
func (e *Engine) nextFreeName(archiveDir, itemName, ext string) (string, error) {
	for n := 1; n <= renameBound; n++ {
		candidate := fmt.Sprintf("%s_%04d%s", itemName, n, ext)
		exists, err := afero.Exists(e.fs, filepath.Join(archiveDir, candidate))
		if err != nil {
			return "", fmt.Errorf("failed to probe rename candidate %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free rename suffix for %s%s after %d attempts", itemName, ext, renameBound)
}

func (e *Engine) write(source, target string) error {
	if err := e.fs.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	in, err := e.fs.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() { _ = in.Close() }()

	out, err := e.fs.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", target, err)
	}
	return nil
}
