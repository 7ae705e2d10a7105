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

package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

// MetadataRoot selects where a frontend expects exported metadata to live
// relative to the destination tree.
type MetadataRoot string

const (
	// MetadataColocated places metadata inside each category's item directory.
	MetadataColocated MetadataRoot = "colocated"
	// MetadataSeparate places metadata under a metadata/ tree beside the items.
	MetadataSeparate MetadataRoot = "separate"
	// MetadataCustom places metadata under a root outside the destination tree.
	MetadataCustom MetadataRoot = "custom"
)

// NamingMode selects how exported metadata files are named.
type NamingMode string

const (
	// NamingMatchStem names metadata after the item's own filename stem.
	NamingMatchStem NamingMode = "match-stem"
	// NamingSuffix names metadata "<item>-<suffix>".
	NamingSuffix NamingMode = "suffix"
)

// RegistryKind selects which destination-side registration artifact a
// frontend uses for categories unknown to the static mapping table.
type RegistryKind string

const (
	RegistrySystemsXML RegistryKind = "systems-xml"
	RegistryPlaylists  RegistryKind = "playlists"
	RegistryNone       RegistryKind = ""
)

// FieldConversion is a declarative per-field transform for generated
// listing files. Unknown kinds pass values through unchanged.
type FieldConversion struct {
	Kind         string  `json:"kind"`
	Format       string  `json:"format,omitempty"`
	DefaultMonth int     `json:"default_month,omitempty"`
	DefaultDay   int     `json:"default_day,omitempty"`
	SourceScale  float64 `json:"source_scale,omitempty"`
	TargetScale  float64 `json:"target_scale,omitempty"`
	Decimals     int     `json:"decimals,omitempty"`
}

// FieldMapping maps a metadata table column to a listing file field.
type FieldMapping struct {
	Convert *FieldConversion `json:"convert,omitempty"`
	Source  string           `json:"source" validate:"required"`
	Dest    string           `json:"dest"   validate:"required"`
}

// ListingSpec configures optional per-category listing file generation.
type ListingSpec struct {
	Filename      string         `json:"filename" validate:"required"`
	MetadataTable string         `json:"metadata_table,omitempty"`
	Fields        []FieldMapping `json:"fields,omitempty" validate:"dive"`
}

// FormatSpec describes one destination frontend.
type FormatSpec struct {
	PlatformMappings   map[string]string  `json:"platform_mappings"`
	MetadataMappings   map[string]*string `json:"metadata_mappings"`
	Listing            *ListingSpec       `json:"listing,omitempty"`
	Name               string             `json:"name" validate:"required"`
	Description        string             `json:"description" validate:"required"`
	DefaultDestination string             `json:"default_destination" validate:"required"`
	RomsPath           string             `json:"roms_path,omitempty"`
	MetadataRoot       MetadataRoot       `json:"metadata_root,omitempty" validate:"omitempty,oneof=colocated separate custom"`
	CustomMetadataRoot string             `json:"custom_metadata_root,omitempty" validate:"required_if=MetadataRoot custom"`
	NamingMode         NamingMode         `json:"naming_mode,omitempty" validate:"omitempty,oneof=match-stem suffix"`
	Registry           RegistryKind       `json:"registry,omitempty" validate:"omitempty,oneof=systems-xml playlists"`
	CustomSystemsPath  string             `json:"custom_systems_path,omitempty"`
	PlaylistsPath      string             `json:"playlists_path,omitempty"`
}

// EffectiveMetadataRoot defaults to colocated for specs predating the enum.
func (f *FormatSpec) EffectiveMetadataRoot() MetadataRoot {
	if f.MetadataRoot == "" {
		return MetadataColocated
	}
	return f.MetadataRoot
}

// EffectiveNamingMode defaults to the suffix convention.
func (f *FormatSpec) EffectiveNamingMode() NamingMode {
	if f.NamingMode == "" {
		return NamingSuffix
	}
	return f.NamingMode
}

type formatsFile struct {
	Formats map[string]*FormatSpec `json:"formats" validate:"required,dive"`
}

// LoadFormats reads and validates the frontend format descriptor file.
// All errors from here are configuration errors and abort the run before
// any filesystem mutation.
func LoadFormats(fs afero.Fs, path string) (map[string]*FormatSpec, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read formats file %s: %w", path, err)
	}

	var parsed formatsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse formats file %s: %w", path, err)
	}
	if parsed.Formats == nil {
		return nil, fmt.Errorf("formats file %s is missing the formats table", path)
	}

	// Documentation entries in the descriptor are not formats.
	delete(parsed.Formats, "_documentation")

	validate := validator.New(validator.WithRequiredStructEnabled())
	for id, spec := range parsed.Formats {
		if err := validate.Struct(spec); err != nil {
			return nil, fmt.Errorf("invalid format %q: %w", id, err)
		}
	}

	return parsed.Formats, nil
}

// LookupFormat resolves a format ID case-insensitively.
func LookupFormat(formats map[string]*FormatSpec, id string) (*FormatSpec, error) {
	want := strings.ToLower(id)
	ids := make([]string, 0, len(formats))
	for k, spec := range formats {
		if strings.ToLower(k) == want {
			return spec, nil
		}
		ids = append(ids, k)
	}

	sort.Strings(ids)
	return nil, fmt.Errorf(
		"unsupported destination format %q, supported formats: %s",
		id, strings.Join(ids, ", "),
	)
}

// FormatsPath returns the descriptor path beside the config directory,
// falling back to the working directory.
func FormatsPath(fs afero.Fs, configDir string) string {
	primary := filepath.Join(configDir, FormatsFile)
	if ok, _ := afero.Exists(fs, primary); ok {
		return primary
	}
	return FormatsFile
}
