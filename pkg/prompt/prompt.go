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

// Package prompt defines the decision contract between the core and an
// external actor. The core only ever sees enumerated option sets and the
// decisions made on them; rendering and prompt text live in the CLI.
package prompt

// CustomSystem carries the information needed to register an archive
// category with a destination frontend.
type CustomSystem struct {
	Name        string
	FullName    string
	Path        string
	Extensions  string
	Command     string
	ArchiveName string
}

// CandidateDecision resolves a multi-candidate metadata file choice.
type CandidateDecision struct {
	Index       int
	Skip        bool
	AlwaysFirst bool
}

// VariantDecision resolves which variant subdirectories to search. All
// means select-all (an unset selection); otherwise Selected applies, and
// an empty Selected restricts the search to the base directory.
type VariantDecision struct {
	Selected []string
	All      bool
}

// Decider obtains decisions from an external actor given option sets the
// core has already computed.
type Decider interface {
	// ConfirmUse asks whether a single exact match should be used.
	ConfirmUse(kind, name string) bool

	// PickIndex selects one option; ok is false on quit.
	PickIndex(kind, query string, options []string) (index int, ok bool)

	// StepThrough walks options one by one and returns the indices of
	// those accepted.
	StepThrough(kind string, options []string) []int

	// SelectCandidate chooses among multiple metadata files for one item.
	SelectCandidate(item, rulePath, destName string, options []string) CandidateDecision

	// CreateSystem offers to register an unmapped category; ok is false
	// when the actor declines.
	CreateSystem(archiveName string, suggested CustomSystem) (CustomSystem, bool)

	// SelectVariants resolves the run-global variant selection for one
	// rule path.
	SelectVariants(rulePath string, available []string) VariantDecision
}
