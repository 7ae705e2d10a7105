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

// Package mapping resolves archive category names to destination
// identifiers.
package mapping

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/romshelf/romshelf/pkg/frontends"
	"github.com/romshelf/romshelf/pkg/prompt"
	"github.com/rs/zerolog/log"
)

// ErrUnmapped marks a category with no destination identifier. The
// category is skipped for the rest of the run; the run itself continues.
var ErrUnmapped = errors.New("category is not mapped to a destination identifier")

// Mapper maps archive category names to destination identifiers using a
// static table, a destination-side registry probe, and finally an
// interactive creation flow. A resolved mapping is never overwritten
// within a run.
type Mapper struct {
	table    map[string]string
	seen     map[string]bool
	registry frontends.Registry
	decider  prompt.Decider
	unmapped []string
	simulate bool
	mu       sync.Mutex
}

// New seeds the mapper from a format's static table. The table is copied;
// runtime extensions never touch the caller's map.
func New(table map[string]string, registry frontends.Registry, decider prompt.Decider, simulate bool) *Mapper {
	seeded := make(map[string]string, len(table))
	for k, v := range table {
		seeded[k] = v
	}
	return &Mapper{
		table:    seeded,
		seen:     make(map[string]bool),
		registry: registry,
		decider:  decider,
		simulate: simulate,
	}
}

// Resolve returns the destination identifier for an archive category, or
// ErrUnmapped once all sources are exhausted.
func (m *Mapper) Resolve(archiveName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if destID, ok := m.table[archiveName]; ok {
		return destID, nil
	}

	destID, found, err := m.registry.Probe(archiveName)
	if err != nil {
		log.Warn().Err(err).Str("category", archiveName).Msg("registry probe failed")
	}
	if found {
		m.table[archiveName] = destID
		return destID, nil
	}

	if !m.registry.SupportsCreation() || m.simulate {
		m.recordUnmapped(archiveName)
		return "", fmt.Errorf("%q: %w", archiveName, ErrUnmapped)
	}

	sys, ok := m.decider.CreateSystem(archiveName, SuggestSystem(archiveName))
	if !ok {
		m.recordUnmapped(archiveName)
		return "", fmt.Errorf("%q: %w", archiveName, ErrUnmapped)
	}
	sys.ArchiveName = archiveName

	// Memoize the identifier the registry actually persisted; playlist
	// registries key their artifact on the full name, not the short one.
	destID, err = m.registry.Create(sys, m.simulate)
	if err != nil {
		log.Error().Err(err).Str("category", archiveName).Msg("failed to create destination entry")
		m.recordUnmapped(archiveName)
		return "", fmt.Errorf("%q: %w", archiveName, ErrUnmapped)
	}

	m.table[archiveName] = destID
	return destID, nil
}

// recordUnmapped records a name once; duplicates are dropped.
func (m *Mapper) recordUnmapped(archiveName string) {
	if m.seen[archiveName] {
		return
	}
	m.seen[archiveName] = true
	m.unmapped = append(m.unmapped, archiveName)
	log.Warn().Str("category", archiveName).Msg("no platform mapping found")
}

// Unmapped returns categories that failed to resolve, in first-seen order.
func (m *Mapper) Unmapped() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.unmapped))
	copy(out, m.unmapped)
	return out
}

// SuggestSystem builds the default registration offered for an unmapped
// archive category.
func SuggestSystem(archiveName string) prompt.CustomSystem {
	name := strings.ToLower(archiveName)
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "-", "")

	return prompt.CustomSystem{
		Name:        name,
		FullName:    archiveName,
		Path:        "./roms/" + name,
		Extensions:  ".zip,.7z",
		Command:     "%EMULATOR_RETROARCH% %ROM%",
		ArchiveName: archiveName,
	}
}

// RetroArchCommand expands a core name into the frontend launch template.
func RetroArchCommand(core string) string {
	if core == "" {
		return "%EMULATOR_RETROARCH% %ROM%"
	}
	return fmt.Sprintf("%%EMULATOR_RETROARCH%% -L %%CORE_RETROARCH%%/%s_libretro.so %%ROM%%", core)
}
