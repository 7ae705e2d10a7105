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

// Package gamelist generates optional per-category listing files,
// enriched from an external item-metadata table with declarative
// field-level conversions.
package gamelist

import (
	"fmt"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/romshelf/romshelf/pkg/config"
	"github.com/spf13/afero"
)

// Entry is one listing line: at minimum a relative path and display name.
type Entry struct {
	Path string
	Name string
}

// Generator writes one listing file per category.
type Generator struct {
	fs    afero.Fs
	spec  *config.ListingSpec
	table *Table
}

// NewGenerator prepares listing generation, loading the metadata table
// when the spec references one. A nil spec disables generation.
func NewGenerator(fs afero.Fs, spec *config.ListingSpec) (*Generator, error) {
	gen := &Generator{fs: fs, spec: spec}
	if spec == nil || spec.MetadataTable == "" {
		return gen, nil
	}

	table, err := LoadTable(fs, spec.MetadataTable)
	if err != nil {
		return nil, fmt.Errorf("failed to load item metadata table: %w", err)
	}
	gen.table = table
	return gen, nil
}

func (g *Generator) Enabled() bool { return g.spec != nil }

// Generate writes the listing file for one category into dir.
func (g *Generator) Generate(dir, category string, entries []Entry) error {
	if g.spec == nil {
		return nil
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement("gameList")

	for _, entry := range entries {
		game := root.CreateElement("game")
		game.CreateElement("path").SetText("./" + entry.Path)
		game.CreateElement("name").SetText(entry.Name)

		if g.table == nil {
			continue
		}
		row, ok := g.table.Lookup(category, entry.Name)
		if !ok {
			continue
		}
		for i := range g.spec.Fields {
			mapping := &g.spec.Fields[i]
			value, ok := row.Field(mapping.Source)
			if !ok || value == "" {
				continue
			}
			game.CreateElement(mapping.Dest).SetText(Convert(value, mapping.Convert))
		}
	}

	if err := g.fs.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create listing directory: %w", err)
	}

	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize listing: %w", err)
	}

	path := filepath.Join(dir, g.spec.Filename)
	if err := afero.WriteFile(g.fs, path, data, 0o644); err != nil { //nolint:gosec // frontend reads this file
		return fmt.Errorf("failed to write listing %s: %w", path, err)
	}
	return nil
}
