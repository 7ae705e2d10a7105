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

// Package frontends implements destination-side registration artifacts
// for the supported frontend formats.
package frontends

import (
	"strings"

	"github.com/romshelf/romshelf/pkg/config"
	"github.com/romshelf/romshelf/pkg/prompt"
	"github.com/spf13/afero"
)

// Registry probes and creates destination-side category registrations.
// CategoryMapper depends only on this capability, never on the concrete
// artifact format.
type Registry interface {
	// Probe looks for an existing registration matching an archive
	// category name and returns its destination identifier.
	Probe(archiveName string) (destID string, found bool, err error)

	// Create persists a new registration and returns the destination
	// identifier it stored, which is what Probe will report on later
	// runs. Registering a name that already exists is success-via-reuse,
	// never an overwrite.
	Create(sys prompt.CustomSystem, simulate bool) (destID string, err error)

	SupportsCreation() bool
}

// ItemAppender is implemented by registries whose artifact also carries a
// per-category item list (playlist formats).
type ItemAppender interface {
	AppendItem(destID string, entry PlaylistItem) error
}

// None is the registry for formats with no registration artifact.
type None struct{}

func (None) Probe(string) (string, bool, error) { return "", false, nil }

func (None) Create(prompt.CustomSystem, bool) (string, error) { return "", nil }

func (None) SupportsCreation() bool { return false }

// ForFormat builds the registry declared by a format spec.
func ForFormat(fs afero.Fs, spec *config.FormatSpec) Registry {
	switch spec.Registry {
	case config.RegistrySystemsXML:
		return NewSystemsXML(fs, spec.CustomSystemsPath)
	case config.RegistryPlaylists:
		return NewPlaylists(fs, spec.PlaylistsPath)
	default:
		return None{}
	}
}

// normalizeName reduces a display name for lenient artifact matching.
func normalizeName(name string) string {
	name = strings.ToLower(name)
	for _, cut := range []string{" ", "-", "_"} {
		name = strings.ReplaceAll(name, cut, "")
	}
	return name
}
