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

// Package cli handles flag parsing and the interactive terminal prompts.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/romshelf/romshelf/pkg/config"
)

type Flags struct {
	Source        *string
	Dest          *string
	Format        *string
	Category      *string
	Items         *string
	MetadataTypes *string
	Workers       *int
	Symlink       *bool
	Force         *bool
	Simulate      *bool
	NoMetadata    *bool
	BackportOnly  *bool
	ListFormats   *bool
	ShowMappings  *bool
	Verbose       *bool
	Version       *bool
}

// SetupFlags defines all CLI flags. Call before flag.Parse.
func SetupFlags() *Flags {
	return &Flags{
		Source: flag.String(
			"source",
			"",
			"path to the archive root (overrides configured archive_root)",
		),
		Dest: flag.String(
			"dest",
			"",
			"destination directory (overrides the format default)",
		),
		Format: flag.String(
			"format",
			"",
			"destination format id (overrides configured default_format)",
		),
		Category: flag.String(
			"platform",
			"ALL",
			"platform to export: a name to search, ALL or INTERACTIVE",
		),
		Items: flag.String(
			"games",
			"ALL",
			"games to export: a name to search, ALL or INTERACTIVE",
		),
		MetadataTypes: flag.String(
			"metadata-types",
			"",
			"comma-separated metadata types to export (default all)",
		),
		Workers: flag.Int(
			"workers",
			0,
			"file placement worker count (0 uses the configured value)",
		),
		Symlink: flag.Bool(
			"symlink",
			false,
			"create symlinks instead of copying files",
		),
		Force: flag.Bool(
			"force",
			false,
			"replace files already present in the destination",
		),
		Simulate: flag.Bool(
			"dry-run",
			false,
			"report what would be done without writing anything",
		),
		NoMetadata: flag.Bool(
			"no-metadata",
			false,
			"skip metadata export and backport",
		),
		BackportOnly: flag.Bool(
			"backport",
			false,
			"only reconcile destination metadata back into the archive",
		),
		ListFormats: flag.Bool(
			"list-formats",
			false,
			"list available destination formats and exit",
		),
		ShowMappings: flag.Bool(
			"show-mappings",
			false,
			"show the platform mapping table for the format and exit",
		),
		Verbose: flag.Bool(
			"verbose",
			false,
			"enable debug logging",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// Pre parses flags and actions those that complete before any setup;
// nothing is loaded or written yet when it runs.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		os.Exit(0)
	}
}

// PrintFormats lists the available destination format ids.
func PrintFormats(w io.Writer, formats map[string]*config.FormatSpec) {
	ids := make([]string, 0, len(formats))
	for id := range formats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		_, _ = fmt.Fprintf(w, "%-12s %s\n", id, formats[id].Description)
	}
}

// ShowMappingTable prints the platform mapping table for one format.
func ShowMappingTable(id string, spec *config.FormatSpec) {
	names := make([]string, 0, len(spec.PlatformMappings))
	for name := range spec.PlatformMappings {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Printf("Platform mappings for %s:\n", id)
	for _, name := range names {
		_, _ = fmt.Printf("  %-32s -> %s\n", name, spec.PlatformMappings[name])
	}
}

// SplitTypes parses a comma-separated type list, dropping empty entries.
func SplitTypes(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
