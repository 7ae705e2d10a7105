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

package metadata

import (
	"path"
	"sort"
	"strings"
)

// MetadataTypes are the archive-side metadata roots searched for
// directories not covered by any rule.
var MetadataTypes = []string{"Images", "Videos", "Manuals", "Music"}

// videoExtensions is the allow-list applied to video-labeled rules. A
// same-prefix non-video file in a video directory is excluded, not an
// error.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".mpg":  true,
	".mpeg": true,
	".wmv":  true,
	".webm": true,
	".m4v":  true,
	".flv":  true,
}

// Target is the destination side of a rule: a subdirectory under the
// category plus the suffix used by the suffix naming mode.
type Target struct {
	Subdir string
	Suffix string
}

// Rule maps one archive metadata path to a destination template. A nil
// Dest means this destination format does not support the path.
type Rule struct {
	Dest   *Target
	Type   string
	Subdir string
}

// ArchivePath reconstructs the rule's archive-side key.
func (r Rule) ArchivePath() string {
	if r.Subdir == "" {
		return r.Type
	}
	return r.Type + "/" + r.Subdir
}

// IsVideo reports whether the rule's type denotes video content.
func (r Rule) IsVideo() bool {
	return r.Type == "Videos"
}

// AllowsExtension applies the video allow-list for video rules; other
// rules accept any extension.
func (r Rule) AllowsExtension(ext string) bool {
	if !r.IsVideo() {
		return true
	}
	return videoExtensions[strings.ToLower(ext)]
}

// ParseRules converts a format's metadata mapping table into rules,
// sorted by archive path for deterministic iteration. Keys are
// "<Type>" or "<Type>/<fixed subdirectory>"; values are
// "<dest subdir>/<suffix>" (or "<suffix>", defaulting the subdirectory to
// images), or null for unsupported paths. An entry with a fixed
// subdirectory and one without are independent rules.
func ParseRules(mappings map[string]*string) []Rule {
	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make([]Rule, 0, len(keys))
	for _, key := range keys {
		metaType, subdir, _ := strings.Cut(key, "/")
		rule := Rule{Type: metaType, Subdir: subdir}

		if value := mappings[key]; value != nil {
			destSubdir, suffix := path.Split(*value)
			destSubdir = strings.Trim(destSubdir, "/")
			if destSubdir == "" {
				destSubdir = "images"
			}
			rule.Dest = &Target{Subdir: destSubdir, Suffix: suffix}
		}

		rules = append(rules, rule)
	}
	return rules
}
