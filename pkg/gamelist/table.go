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

package gamelist

import (
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
)

// MetaRow is one row of the external item-metadata table.
type MetaRow struct {
	Category    string `csv:"category"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Developer   string `csv:"developer"`
	Publisher   string `csv:"publisher"`
	Genre       string `csv:"genre"`
	Players     string `csv:"players"`
	Year        string `csv:"year"`
	Rating      string `csv:"rating"`
}

// Field returns a column value by its table name.
func (r *MetaRow) Field(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "description":
		return r.Description, true
	case "developer":
		return r.Developer, true
	case "publisher":
		return r.Publisher, true
	case "genre":
		return r.Genre, true
	case "players":
		return r.Players, true
	case "year":
		return r.Year, true
	case "rating":
		return r.Rating, true
	default:
		return "", false
	}
}

// Table indexes metadata rows by category and item name.
type Table struct {
	rows map[string]*MetaRow
}

func tableKey(category, name string) string {
	return category + "\x00" + name
}

// LoadTable reads the CSV metadata table.
func LoadTable(fs afero.Fs, path string) (*Table, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata table %s: %w", path, err)
	}

	var rows []*MetaRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse metadata table %s: %w", path, err)
	}

	table := &Table{rows: make(map[string]*MetaRow, len(rows))}
	for _, row := range rows {
		table.rows[tableKey(row.Category, row.Name)] = row
	}
	return table, nil
}

// Lookup finds the row for a category+name pair.
func (t *Table) Lookup(category, name string) (*MetaRow, bool) {
	row, ok := t.rows[tableKey(category, name)]
	return row, ok
}
