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

// Package report folds per-category statistics into a final run summary.
// Accumulation is concurrency-safe; counts are never decremented.
package report

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/romshelf/romshelf/pkg/backport"
	"github.com/romshelf/romshelf/pkg/exporter"
)

// SyncOutcome accumulates forward-export counts for one category.
type SyncOutcome struct {
	Attempted       int
	Succeeded       int
	SkippedExisting int
	Failed          int
	TotalBytes      uint64
}

// MetadataOutcome accumulates metadata-export counts for one category.
type MetadataOutcome struct {
	ByType          map[string]int
	SkippedUnmapped int
	Failed          int
	Total           int
}

// Aggregator observes all run stages.
type Aggregator struct {
	clock     clockwork.Clock
	sync      map[string]*SyncOutcome
	meta      map[string]*MetadataOutcome
	backports map[string]backport.Outcome
	started   time.Time
	order     []string
	simulate  bool
	linkMode  bool
	mu        sync.Mutex
}

func NewAggregator(clock clockwork.Clock, simulate, linkMode bool) *Aggregator {
	return &Aggregator{
		clock:     clock,
		started:   clock.Now(),
		sync:      make(map[string]*SyncOutcome),
		meta:      make(map[string]*MetadataOutcome),
		backports: make(map[string]backport.Outcome),
		simulate:  simulate,
		linkMode:  linkMode,
	}
}

func (a *Aggregator) category(name string) *SyncOutcome {
	outcome, ok := a.sync[name]
	if !ok {
		outcome = &SyncOutcome{}
		a.sync[name] = outcome
		a.order = append(a.order, name)
	}
	return outcome
}

// RecordPlacement folds one placement result into a category's outcome.
func (a *Aggregator) RecordPlacement(category string, outcome exporter.Outcome, bytes uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := a.category(category)
	stats.Attempted++
	switch outcome {
	case exporter.OutcomeSuccess:
		stats.Succeeded++
		stats.TotalBytes += bytes
	case exporter.OutcomeSkipped:
		stats.SkippedExisting++
	case exporter.OutcomeFailed:
		stats.Failed++
	}
}

func (a *Aggregator) metaCategory(name string) *MetadataOutcome {
	a.category(name)
	outcome, ok := a.meta[name]
	if !ok {
		outcome = &MetadataOutcome{ByType: make(map[string]int)}
		a.meta[name] = outcome
	}
	return outcome
}

// RecordMetadata folds one metadata placement result.
func (a *Aggregator) RecordMetadata(category, metaType string, outcome exporter.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := a.metaCategory(category)
	switch outcome {
	case exporter.OutcomeSuccess:
		stats.ByType[metaType]++
		stats.Total++
	case exporter.OutcomeSkipped:
		// Existing destination metadata is left alone, not counted.
	case exporter.OutcomeFailed:
		stats.Failed++
	}
}

// RecordUnmappedMetadataDirs counts archive metadata directories the
// format's rule table does not cover.
func (a *Aggregator) RecordUnmappedMetadataDirs(category string, count int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metaCategory(category).SkippedUnmapped += count
}

// RecordBackport stores a category's reconciliation outcome.
func (a *Aggregator) RecordBackport(category string, outcome backport.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.category(category)
	a.backports[category] = outcome
}

// CategoryOutcome returns a copy of one category's sync counts.
func (a *Aggregator) CategoryOutcome(category string) SyncOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	if outcome, ok := a.sync[category]; ok {
		return *outcome
	}
	return SyncOutcome{}
}

// HasFailures reports whether any category recorded a failure, so a
// failed run is distinguishable without reading logs.
func (a *Aggregator) HasFailures() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, outcome := range a.sync {
		if outcome.Failed > 0 {
			return true
		}
	}
	for _, outcome := range a.backports {
		if outcome.Failed > 0 {
			return true
		}
	}
	for _, outcome := range a.meta {
		if outcome.Failed > 0 {
			return true
		}
	}
	return false
}

// Summary renders the final report text.
func (a *Aggregator) Summary(unmapped []string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var b strings.Builder
	line := strings.Repeat("=", 70)

	b.WriteString("\n" + line + "\n")
	if a.simulate {
		b.WriteString("EXPORT SUMMARY REPORT (SIMULATED)\n")
	} else {
		b.WriteString("EXPORT SUMMARY REPORT\n")
	}
	b.WriteString(line + "\n")

	var totalItems, totalSkipped, totalFailed int
	var totalBytes uint64

	for _, name := range a.order {
		stats := a.sync[name]
		fmt.Fprintf(&b, "\n%s:\n", name)
		fmt.Fprintf(&b, "  Items exported: %d/%d\n", stats.Succeeded, stats.Attempted)
		if stats.SkippedExisting > 0 {
			fmt.Fprintf(&b, "  Skipped (already exist): %d\n", stats.SkippedExisting)
		}
		if stats.Failed > 0 {
			fmt.Fprintf(&b, "  Failed: %d\n", stats.Failed)
		}
		fmt.Fprintf(&b, "  Total size: %s\n", FormatSize(stats.TotalBytes))

		if meta, ok := a.meta[name]; ok && meta.Total+meta.SkippedUnmapped+meta.Failed > 0 {
			fmt.Fprintf(&b, "  Metadata exported: %d", meta.Total)
			if meta.SkippedUnmapped > 0 {
				fmt.Fprintf(&b, " (unmapped dirs skipped: %d)", meta.SkippedUnmapped)
			}
			if meta.Failed > 0 {
				fmt.Fprintf(&b, " (failed: %d)", meta.Failed)
			}
			b.WriteString("\n")
		}

		if bp, ok := a.backports[name]; ok && bp.Total+bp.DuplicatesSkipped+bp.Failed > 0 {
			fmt.Fprintf(&b, "  Backported: %d (renamed: %d, duplicates skipped: %d",
				bp.Total, bp.Renamed, bp.DuplicatesSkipped)
			if bp.Failed > 0 {
				fmt.Fprintf(&b, ", failed: %d", bp.Failed)
			}
			b.WriteString(")\n")
		}

		totalItems += stats.Succeeded
		totalSkipped += stats.SkippedExisting
		totalFailed += stats.Failed
		totalBytes += stats.TotalBytes
	}

	b.WriteString("\n" + strings.Repeat("-", 70) + "\n")
	if a.simulate {
		fmt.Fprintf(&b, "TOTAL ITEMS THAT WOULD BE EXPORTED: %d\n", totalItems)
	} else {
		fmt.Fprintf(&b, "TOTAL ITEMS EXPORTED: %d\n", totalItems)
	}
	if totalSkipped > 0 {
		fmt.Fprintf(&b, "Total skipped (already exist): %d\n", totalSkipped)
	}
	if totalFailed > 0 {
		fmt.Fprintf(&b, "TOTAL FAILED: %d (see log for details)\n", totalFailed)
	}
	fmt.Fprintf(&b, "TOTAL SIZE: %s\n", FormatSize(totalBytes))
	fmt.Fprintf(&b, "Elapsed: %s\n", a.clock.Since(a.started).Round(time.Millisecond))

	switch {
	case a.simulate:
		b.WriteString("Note: simulated run, no files were created\n")
	case a.linkMode:
		b.WriteString("Note: using links, actual disk space used is minimal\n")
	default:
		fmt.Fprintf(&b, "Note: files were copied, %s of disk space used\n", FormatSize(totalBytes))
	}

	if len(unmapped) > 0 {
		b.WriteString("\nUNMAPPED CATEGORIES (skipped):\n")
		for _, name := range unmapped {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}

	b.WriteString(line + "\n")
	return b.String()
}

// FormatSize renders a byte count as MB or GB.
func FormatSize(bytes uint64) string {
	mb := float64(bytes) / (1024 * 1024)
	if gb := mb / 1024; gb >= 1 {
		return fmt.Sprintf("%.2f GB", gb)
	}
	return fmt.Sprintf("%.2f MB", mb)
}
