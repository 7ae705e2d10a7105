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

package prompt

// Scripted is a non-interactive Decider returning canned decisions. A nil
// function field falls back to a deterministic default: confirm, pick the
// first option, accept everything, use the first candidate, decline
// creation, select all variants.
type Scripted struct {
	ConfirmUseFn      func(kind, name string) bool
	PickIndexFn       func(kind, query string, options []string) (int, bool)
	StepThroughFn     func(kind string, options []string) []int
	SelectCandidateFn func(item, rulePath, destName string, options []string) CandidateDecision
	CreateSystemFn    func(archiveName string, suggested CustomSystem) (CustomSystem, bool)
	SelectVariantsFn  func(rulePath string, available []string) VariantDecision
}

func (s *Scripted) ConfirmUse(kind, name string) bool {
	if s.ConfirmUseFn != nil {
		return s.ConfirmUseFn(kind, name)
	}
	return true
}

func (s *Scripted) PickIndex(kind, query string, options []string) (int, bool) {
	if s.PickIndexFn != nil {
		return s.PickIndexFn(kind, query, options)
	}
	if len(options) == 0 {
		return 0, false
	}
	return 0, true
}

func (s *Scripted) StepThrough(kind string, options []string) []int {
	if s.StepThroughFn != nil {
		return s.StepThroughFn(kind, options)
	}
	all := make([]int, len(options))
	for i := range options {
		all[i] = i
	}
	return all
}

func (s *Scripted) SelectCandidate(item, rulePath, destName string, options []string) CandidateDecision {
	if s.SelectCandidateFn != nil {
		return s.SelectCandidateFn(item, rulePath, destName, options)
	}
	return CandidateDecision{Index: 0}
}

func (s *Scripted) CreateSystem(archiveName string, suggested CustomSystem) (CustomSystem, bool) {
	if s.CreateSystemFn != nil {
		return s.CreateSystemFn(archiveName, suggested)
	}
	return CustomSystem{}, false
}

func (s *Scripted) SelectVariants(rulePath string, available []string) VariantDecision {
	if s.SelectVariantsFn != nil {
		return s.SelectVariantsFn(rulePath, available)
	}
	return VariantDecision{All: true}
}
