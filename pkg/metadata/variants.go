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
	"sync"

	"github.com/romshelf/romshelf/pkg/prompt"
)

// VariantCache memoizes the run-global variant selection per rule path.
// A rule path's selection is computed at most once; the first resolution
// wins and later lookups are cache hits.
type VariantCache struct {
	decider prompt.Decider
	entries map[string]prompt.VariantDecision
	mu      sync.Mutex
}

func NewVariantCache(decider prompt.Decider) *VariantCache {
	return &VariantCache{
		decider: decider,
		entries: make(map[string]prompt.VariantDecision),
	}
}

// Resolve returns the variant subdirectories to search for a rule path,
// given the variants available in the current category. A select-all
// decision yields every available variant; otherwise the intersection of
// the cached selection and the available set, preserving available order.
// An empty result means "search the base directory only".
func (v *VariantCache) Resolve(rulePath string, available []string) []string {
	v.mu.Lock()
	decision, ok := v.entries[rulePath]
	if !ok {
		v.mu.Unlock()
		// Decider calls can block on user input; never hold the lock.
		fresh := v.decider.SelectVariants(rulePath, available)
		v.mu.Lock()
		if cached, exists := v.entries[rulePath]; exists {
			decision = cached
		} else {
			v.entries[rulePath] = fresh
			decision = fresh
		}
	}
	v.mu.Unlock()

	if decision.All {
		return available
	}

	selected := make(map[string]bool, len(decision.Selected))
	for _, name := range decision.Selected {
		selected[name] = true
	}

	var out []string
	for _, name := range available {
		if selected[name] {
			out = append(out, name)
		}
	}
	return out
}
