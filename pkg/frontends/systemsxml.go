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

package frontends

import (
	"fmt"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/romshelf/romshelf/pkg/prompt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// SystemsXML is the structured-entry registry backed by an
// EmulationStation custom systems XML file. Entries are <system> records
// inside a <systemList> root.
type SystemsXML struct {
	fs   afero.Fs
	path string
}

func NewSystemsXML(fs afero.Fs, path string) *SystemsXML {
	return &SystemsXML{fs: fs, path: path}
}

func (r *SystemsXML) SupportsCreation() bool { return r.path != "" }

// Probe matches an archive category against stored <fullname> entries.
func (r *SystemsXML) Probe(archiveName string) (string, bool, error) {
	if r.path == "" {
		return "", false, nil
	}
	if ok, _ := afero.Exists(r.fs, r.path); !ok {
		return "", false, nil
	}

	doc, err := r.load()
	if err != nil {
		return "", false, err
	}

	for _, system := range doc.FindElements("//systemList/system") {
		fullname := system.SelectElement("fullname")
		name := system.SelectElement("name")
		if fullname == nil || name == nil {
			continue
		}
		if fullname.Text() == archiveName {
			log.Info().
				Str("archive", archiveName).
				Str("system", name.Text()).
				Msg("found existing custom system")
			return name.Text(), true, nil
		}
	}

	return "", false, nil
}

// Create appends a <system> entry and returns the system's short name,
// the identifier Probe reports. A name collision is success-via-reuse:
// the existing entry is kept untouched.
func (r *SystemsXML) Create(sys prompt.CustomSystem, simulate bool) (string, error) {
	if r.path == "" {
		return "", fmt.Errorf("no custom systems path configured for this format")
	}

	doc, err := r.loadOrTemplate()
	if err != nil {
		return "", err
	}

	root := doc.SelectElement("systemList")
	if root == nil {
		return "", fmt.Errorf("custom systems file %s has no systemList root", r.path)
	}

	for _, existing := range root.SelectElements("system") {
		name := existing.SelectElement("name")
		if name != nil && name.Text() == sys.Name {
			log.Warn().
				Str("system", sys.Name).
				Msg("system already exists in custom systems, reusing")
			return sys.Name, nil
		}
	}

	system := root.CreateElement("system")
	system.CreateElement("name").SetText(sys.Name)
	system.CreateElement("fullname").SetText(sys.FullName)
	system.CreateElement("path").SetText(sys.Path)
	system.CreateElement("extension").SetText(sys.Extensions)
	system.CreateElement("command").SetText(sys.Command)
	// The frontend duplicates the system name into both tag fields.
	system.CreateElement("platform").SetText(sys.Name)
	system.CreateElement("theme").SetText(sys.Name)

	if simulate {
		log.Info().
			Str("system", sys.Name).
			Str("path", r.path).
			Msg("simulate: would add custom system")
		return sys.Name, nil
	}

	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create custom systems directory: %w", err)
	}

	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("failed to serialize custom systems XML: %w", err)
	}
	if err := afero.WriteFile(r.fs, r.path, data, 0o644); err != nil { //nolint:gosec // frontend reads this file
		return "", fmt.Errorf("failed to write custom systems file: %w", err)
	}

	log.Info().
		Str("system", sys.Name).
		Str("fullname", sys.FullName).
		Str("path", r.path).
		Msg("added custom system")
	return sys.Name, nil
}

func (r *SystemsXML) load() (*etree.Document, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom systems file: %w", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse custom systems XML: %w", err)
	}
	return doc, nil
}

func (r *SystemsXML) loadOrTemplate() (*etree.Document, error) {
	if ok, _ := afero.Exists(r.fs, r.path); ok {
		return r.load()
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.CreateElement("systemList")
	return doc, nil
}
