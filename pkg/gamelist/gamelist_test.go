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
	"testing"

	"github.com/beevik/etree"
	"github.com/romshelf/romshelf/pkg/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableFixture = `category,name,description,developer,publisher,genre,players,year,rating
Nintendo 64,Super Mario 64 (USA),3D platformer,Nintendo,Nintendo,Platform,1,1996,9.6
Nintendo 64,Wave Race 64 (USA),Jet ski racing,Nintendo,Nintendo,Racing,2,1996,8.1
`

func fixtureSpec() *config.ListingSpec {
	return &config.ListingSpec{
		Filename:      "gamelist.xml",
		MetadataTable: "meta.csv",
		Fields: []config.FieldMapping{
			{Source: "description", Dest: "desc"},
			{Source: "developer", Dest: "developer"},
			{Source: "year", Dest: "releasedate", Convert: &config.FieldConversion{
				Kind: ConvertDateSynthesis,
			}},
			{Source: "rating", Dest: "rating", Convert: &config.FieldConversion{
				Kind:        ConvertLinearRescale,
				SourceScale: 10,
				TargetScale: 1,
				Decimals:    2,
			}},
		},
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "meta.csv", []byte(tableFixture), 0o644))

	gen, err := NewGenerator(fs, fixtureSpec())
	require.NoError(t, err)
	require.True(t, gen.Enabled())

	entries := []Entry{
		{Path: "Super Mario 64 (USA).z64", Name: "Super Mario 64 (USA)"},
		{Path: "Unknown Game.z64", Name: "Unknown Game"},
	}
	require.NoError(t, gen.Generate("dest/n64", "Nintendo 64", entries))

	data, err := afero.ReadFile(fs, "dest/n64/gamelist.xml")
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))

	games := doc.FindElements("//gameList/game")
	require.Len(t, games, 2)

	mario := games[0]
	assert.Equal(t, "./Super Mario 64 (USA).z64", mario.SelectElement("path").Text())
	assert.Equal(t, "Super Mario 64 (USA)", mario.SelectElement("name").Text())
	assert.Equal(t, "3D platformer", mario.SelectElement("desc").Text())
	assert.Equal(t, "Nintendo", mario.SelectElement("developer").Text())
	assert.Equal(t, "19960101T000000", mario.SelectElement("releasedate").Text())
	assert.Equal(t, "0.96", mario.SelectElement("rating").Text())

	// Items without a table row still get path and name.
	unknown := games[1]
	assert.Equal(t, "Unknown Game", unknown.SelectElement("name").Text())
	assert.Nil(t, unknown.SelectElement("desc"))
}

func TestGenerateWithoutTable(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	gen, err := NewGenerator(fs, &config.ListingSpec{Filename: "gamelist.xml"})
	require.NoError(t, err)

	require.NoError(t, gen.Generate("dest/n64", "Nintendo 64", []Entry{
		{Path: "game.z64", Name: "Game"},
	}))

	data, err := afero.ReadFile(fs, "dest/n64/gamelist.xml")
	require.NoError(t, err)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	assert.Len(t, doc.FindElements("//gameList/game"), 1)
}

func TestGeneratorDisabled(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	gen, err := NewGenerator(fs, nil)
	require.NoError(t, err)
	assert.False(t, gen.Enabled())

	require.NoError(t, gen.Generate("dest/n64", "Nintendo 64", []Entry{{Path: "g.z64", Name: "G"}}))
	exists, err := afero.DirExists(fs, "dest/n64")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewGeneratorMissingTable(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(afero.NewMemMapFs(), fixtureSpec())
	assert.Error(t, err)
}

func TestTableLookup(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "meta.csv", []byte(tableFixture), 0o644))

	table, err := LoadTable(fs, "meta.csv")
	require.NoError(t, err)

	row, ok := table.Lookup("Nintendo 64", "Wave Race 64 (USA)")
	require.True(t, ok)
	assert.Equal(t, "Jet ski racing", row.Description)
	assert.Equal(t, "2", row.Players)

	_, ok = table.Lookup("Nintendo 64", "Missing Game")
	assert.False(t, ok)
	_, ok = table.Lookup("Sega Genesis", "Wave Race 64 (USA)")
	assert.False(t, ok, "lookups are scoped by category")
}

func TestMetaRowField(t *testing.T) {
	t.Parallel()

	row := &MetaRow{Genre: "Racing", Year: "1996"}

	value, ok := row.Field("genre")
	require.True(t, ok)
	assert.Equal(t, "Racing", value)

	value, ok = row.Field("Year")
	require.True(t, ok, "field names are case-insensitive")
	assert.Equal(t, "1996", value)

	_, ok = row.Field("nonexistent")
	assert.False(t, ok)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		conv     *config.FieldConversion
		name     string
		value    string
		expected string
	}{
		{
			name:     "nil_conversion_passthrough",
			value:    "1996",
			expected: "1996",
		},
		{
			name:     "unknown_kind_passthrough",
			value:    "1996",
			conv:     &config.FieldConversion{Kind: "render-upside-down"},
			expected: "1996",
		},
		{
			name:     "date_synthesis_default_format",
			value:    "1996",
			conv:     &config.FieldConversion{Kind: ConvertDateSynthesis},
			expected: "19960101T000000",
		},
		{
			name:  "date_synthesis_custom_defaults",
			value: "1996",
			conv: &config.FieldConversion{
				Kind:         ConvertDateSynthesis,
				DefaultMonth: 6,
				DefaultDay:   15,
				Format:       "2006-01-02",
			},
			expected: "1996-06-15",
		},
		{
			name:     "date_synthesis_non_numeric_passthrough",
			value:    "unknown",
			conv:     &config.FieldConversion{Kind: ConvertDateSynthesis},
			expected: "unknown",
		},
		{
			name:  "linear_rescale",
			value: "8.1",
			conv: &config.FieldConversion{
				Kind:        ConvertLinearRescale,
				SourceScale: 10,
				TargetScale: 1,
				Decimals:    2,
			},
			expected: "0.81",
		},
		{
			name:  "linear_rescale_to_percent",
			value: "0.5",
			conv: &config.FieldConversion{
				Kind:        ConvertLinearRescale,
				SourceScale: 1,
				TargetScale: 100,
			},
			expected: "50",
		},
		{
			name:     "linear_rescale_zero_source_scale_passthrough",
			value:    "8.1",
			conv:     &config.FieldConversion{Kind: ConvertLinearRescale, TargetScale: 1},
			expected: "8.1",
		},
		{
			name:     "linear_rescale_non_numeric_passthrough",
			value:    "n/a",
			conv:     &config.FieldConversion{Kind: ConvertLinearRescale, SourceScale: 10},
			expected: "n/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Convert(tt.value, tt.conv))
		})
	}
}
