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

// Package metadata resolves archive-side metadata files to destination
// placements according to a format's rule table.
package metadata

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/romshelf/romshelf/pkg/archive"
	"github.com/romshelf/romshelf/pkg/config"
	"github.com/romshelf/romshelf/pkg/prompt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Placement pairs one resolved source file with one destination path.
type Placement struct {
	Source string
	Dest   string
	Type   string
}

// Mapper computes metadata placements for items. It owns the run-scoped
// multi-candidate "always use first" flag and the absent-rule dedup set.
type Mapper struct {
	fs           afero.Fs
	spec         *config.FormatSpec
	decider      prompt.Decider
	variants     *VariantCache
	absent       map[string]bool
	metadataRoot string
	destRoot     string
	rules        []Rule
	simulate     bool
	autoFirst    bool
	mu           sync.Mutex
}

func NewMapper(
	fs afero.Fs,
	metadataRoot, destRoot string,
	spec *config.FormatSpec,
	decider prompt.Decider,
	simulate bool,
) *Mapper {
	return &Mapper{
		fs:           fs,
		spec:         spec,
		decider:      decider,
		variants:     NewVariantCache(decider),
		absent:       make(map[string]bool),
		metadataRoot: metadataRoot,
		destRoot:     destRoot,
		rules:        ParseRules(spec.MetadataMappings),
		simulate:     simulate,
	}
}

func (m *Mapper) Rules() []Rule { return m.rules }

// SearchDir is the archive-side directory a rule searches for a category.
func (m *Mapper) SearchDir(rule Rule, category string) string {
	dir := filepath.Join(m.metadataRoot, rule.Type, category)
	if rule.Subdir != "" {
		dir = filepath.Join(dir, rule.Subdir)
	}
	return dir
}

// DestDir is the destination directory for a rule under the format's
// declared metadata root strategy.
func (m *Mapper) DestDir(rule Rule, destID string) string {
	sub := rule.Dest.Subdir
	switch m.spec.EffectiveMetadataRoot() {
	case config.MetadataSeparate:
		return filepath.Join(m.destRoot, "metadata", destID, sub)
	case config.MetadataCustom:
		return filepath.Join(m.spec.CustomMetadataRoot, destID, sub)
	default:
		if m.spec.RomsPath != "" {
			return filepath.Join(m.destRoot, m.spec.RomsPath, destID, sub)
		}
		return filepath.Join(m.destRoot, destID, sub)
	}
}

// DestFilename applies the format's naming mode.
func (m *Mapper) DestFilename(rule Rule, item archive.Item, sourceExt string) string {
	if m.spec.EffectiveNamingMode() == config.NamingMatchStem {
		return item.Name + sourceExt
	}
	return fmt.Sprintf("%s-%s%s", item.Name, rule.Dest.Suffix, sourceExt)
}

// PlacementsFor resolves all metadata placements for one item.
func (m *Mapper) PlacementsFor(category, destID string, item archive.Item) ([]Placement, error) {
	var placements []Placement

	for _, rule := range m.rules {
		if rule.Dest == nil {
			continue
		}

		searchDir := m.SearchDir(rule, category)
		exists, err := afero.DirExists(m.fs, searchDir)
		if err != nil {
			return nil, fmt.Errorf("failed to check metadata directory %s: %w", searchDir, err)
		}
		if !exists {
			m.recordAbsent(category, rule.ArchivePath(), searchDir)
			continue
		}

		searchPaths, err := m.resolveSearchPaths(rule, searchDir)
		if err != nil {
			return nil, err
		}

		candidates, err := m.findCandidates(rule, searchPaths, item.Name)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}

		source, ok := m.selectCandidate(item.Name, rule, candidates)
		if !ok {
			continue
		}

		ext := filepath.Ext(source)
		placements = append(placements, Placement{
			Source: source,
			Dest:   filepath.Join(m.DestDir(rule, destID), m.DestFilename(rule, item, ext)),
			Type:   rule.Type,
		})
	}

	return placements, nil
}

// resolveSearchPaths expands a rule's search directory through the
// run-global variant selection. Variant resolution happens before any
// parallel placement work, so callers may fan out afterwards.
func (m *Mapper) resolveSearchPaths(rule Rule, searchDir string) ([]string, error) {
	entries, err := afero.ReadDir(m.fs, searchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata directory %s: %w", searchDir, err)
	}

	var available []string
	for _, entry := range entries {
		if entry.IsDir() {
			available = append(available, entry.Name())
		}
	}
	if len(available) == 0 {
		return []string{searchDir}, nil
	}

	selected := m.variants.Resolve(rule.ArchivePath(), available)
	if len(selected) == 0 {
		return []string{searchDir}, nil
	}

	paths := make([]string, 0, len(selected))
	for _, variant := range selected {
		paths = append(paths, filepath.Join(searchDir, variant))
	}
	return paths, nil
}

// findCandidates collects files whose stem begins with the item name,
// honoring the video extension allow-list. Directory listing order is
// preserved, so candidate order is deterministic.
func (m *Mapper) findCandidates(rule Rule, searchPaths []string, itemName string) ([]string, error) {
	var candidates []string
	for _, dir := range searchPaths {
		entries, err := afero.ReadDir(m.fs, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			stem := strings.TrimSuffix(entry.Name(), ext)
			if !strings.HasPrefix(stem, itemName) {
				continue
			}
			if !rule.AllowsExtension(ext) {
				log.Debug().
					Str("file", entry.Name()).
					Str("rule", rule.ArchivePath()).
					Msg("skipping non-video file in video directory")
				continue
			}
			candidates = append(candidates, filepath.Join(dir, entry.Name()))
		}
	}
	return candidates, nil
}

// selectCandidate picks one file among the matches. Simulated and
// auto-first runs always take the first; otherwise the decision is
// delegated, and an "always use first" answer persists for the run.
func (m *Mapper) selectCandidate(itemName string, rule Rule, candidates []string) (string, bool) {
	if len(candidates) == 1 {
		return candidates[0], true
	}

	m.mu.Lock()
	auto := m.autoFirst
	m.mu.Unlock()

	if m.simulate || auto {
		if m.simulate {
			log.Info().
				Str("item", itemName).
				Str("rule", rule.ArchivePath()).
				Str("file", filepath.Base(candidates[0])).
				Msg("multiple metadata files, would use first")
		}
		return candidates[0], true
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = filepath.Base(c)
	}

	decision := m.decider.SelectCandidate(itemName, rule.ArchivePath(), rule.Dest.Suffix, names)
	if decision.AlwaysFirst {
		m.mu.Lock()
		m.autoFirst = true
		m.mu.Unlock()
		return candidates[0], true
	}
	if decision.Skip || decision.Index < 0 || decision.Index >= len(candidates) {
		return "", false
	}
	return candidates[decision.Index], true
}

func (m *Mapper) recordAbsent(category, rulePath, searchDir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := category + "|" + rulePath
	if m.absent[key] {
		return
	}
	m.absent[key] = true
	log.Debug().Str("path", searchDir).Msg("metadata directory not found")
}

// CountUnmappedDirs counts archive metadata directories for a category
// that no rule covers. These are reported, not errors.
func (m *Mapper) CountUnmappedDirs(category string) int {
	known := make(map[string]bool, len(m.rules))
	for _, rule := range m.rules {
		known[rule.ArchivePath()] = true
	}

	count := 0
	for _, metaType := range MetadataTypes {
		typeDir := filepath.Join(m.metadataRoot, metaType, category)
		entries, err := afero.ReadDir(m.fs, typeDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			archivePath := metaType + "/" + entry.Name()
			if !known[archivePath] {
				log.Info().
					Str("path", archivePath).
					Msg("skipping unmapped metadata directory")
				count++
			}
		}
	}
	return count
}
