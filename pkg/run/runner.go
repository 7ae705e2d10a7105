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

// Package run orchestrates a full export/backport run. Each category is
// processed to completion before the next begins; per-file work inside a
// category fans out through a bounded pool.
package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/romshelf/romshelf/pkg/archive"
	"github.com/romshelf/romshelf/pkg/backport"
	"github.com/romshelf/romshelf/pkg/config"
	"github.com/romshelf/romshelf/pkg/exporter"
	"github.com/romshelf/romshelf/pkg/frontends"
	"github.com/romshelf/romshelf/pkg/gamelist"
	"github.com/romshelf/romshelf/pkg/helpers"
	"github.com/romshelf/romshelf/pkg/mapping"
	"github.com/romshelf/romshelf/pkg/matcher"
	"github.com/romshelf/romshelf/pkg/metadata"
	"github.com/romshelf/romshelf/pkg/prompt"
	"github.com/romshelf/romshelf/pkg/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Query modes shared by category and item selection.
const (
	QueryAll         = "ALL"
	QueryInteractive = "INTERACTIVE"
)

// ErrAborted reports an explicit abort from a selection prompt. Outcomes
// accumulated before the abort stay reportable.
var ErrAborted = errors.New("run aborted")

// Options configures one run.
type Options struct {
	Spec          *config.FormatSpec
	Source        string
	Destination   string
	CategoryQuery string
	ItemQuery     string
	MetadataTypes []string
	Workers       int
	Force         bool
	Simulate      bool
	LinkMode      bool
	NoMetadata    bool
	BackportOnly  bool
}

// Runner wires the run-scoped components together.
type Runner struct {
	fs       afero.Fs
	opts     Options
	decider  prompt.Decider
	catalog  *archive.Catalog
	mapper   *mapping.Mapper
	meta     *metadata.Mapper
	engine   *exporter.Engine
	backport *backport.Engine
	registry frontends.Registry
	listing  *gamelist.Generator
	report   *report.Aggregator
	destRoot string
}

func New(fs afero.Fs, clock clockwork.Clock, decider prompt.Decider, opts Options) (*Runner, error) {
	if opts.Spec == nil {
		return nil, errors.New("no destination format spec provided")
	}

	destRoot := opts.Destination
	if destRoot == "" {
		destRoot = helpers.ExpandUser(opts.Spec.DefaultDestination)
		log.Info().Str("dest", destRoot).Msg("using format default destination")
	}

	catalog := archive.NewCatalog(fs, opts.Source)
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("archive validation failed: %w", err)
	}

	if !opts.Simulate {
		if err := fs.MkdirAll(destRoot, 0o750); err != nil {
			return nil, fmt.Errorf(
				"failed to create destination directory %s (check permissions): %w",
				destRoot, err,
			)
		}
	}

	registry := frontends.ForFormat(fs, opts.Spec)
	listing, err := gamelist.NewGenerator(fs, opts.Spec.Listing)
	if err != nil {
		return nil, err
	}

	mode := exporter.ModeCopy
	if opts.LinkMode {
		mode = exporter.ModeLink
	}

	meta := metadata.NewMapper(fs, catalog.MetadataRoot(), destRoot, opts.Spec, decider, opts.Simulate)

	return &Runner{
		fs:       fs,
		opts:     opts,
		decider:  decider,
		catalog:  catalog,
		mapper:   mapping.New(opts.Spec.PlatformMappings, registry, decider, opts.Simulate),
		meta:     meta,
		engine:   exporter.NewEngine(fs, mode, opts.Simulate),
		backport: backport.NewEngine(fs, meta, opts.Simulate),
		registry: registry,
		listing:  listing,
		report:   report.NewAggregator(clock, opts.Simulate, opts.LinkMode),
		destRoot: destRoot,
	}, nil
}

// Report exposes the aggregator for summary rendering.
func (r *Runner) Report() *report.Aggregator { return r.report }

// Unmapped returns category names that could not be resolved.
func (r *Runner) Unmapped() []string { return r.mapper.Unmapped() }

// Run processes every selected category to completion.
func (r *Runner) Run(ctx context.Context) error {
	categories, err := r.selectCategories()
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		log.Info().Msg("no categories selected")
		return nil
	}

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
		if err := r.processCategory(ctx, category); err != nil {
			if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
				return err
			}
			// Category-level failures never abort the run.
			log.Error().Err(err).Str("category", category).Msg("category processing failed")
		}
	}

	return nil
}

func (r *Runner) selectCategories() ([]string, error) {
	names, err := r.catalog.Categories()
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}

	switch r.opts.CategoryQuery {
	case "", QueryAll:
		return names, nil
	case QueryInteractive:
		picked := r.decider.StepThrough("category", names)
		out := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(names) {
				out = append(out, names[idx])
			}
		}
		return out, nil
	default:
		name, ok := resolveQuery(r.decider, "category", r.opts.CategoryQuery, names)
		if !ok {
			return nil, nil
		}
		return []string{name}, nil
	}
}

func (r *Runner) selectItems(category string) ([]archive.Item, error) {
	items, err := r.catalog.Items(category)
	if err != nil {
		return nil, fmt.Errorf("failed to scan items for %s: %w", category, err)
	}

	switch r.opts.ItemQuery {
	case "", QueryAll:
		return items, nil
	case QueryInteractive:
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = fmt.Sprintf("%s (%s)", item.Name, report.FormatSize(item.SizeBytes))
		}
		picked := r.decider.StepThrough("item", labels)
		out := make([]archive.Item, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(items) {
				out = append(out, items[idx])
			}
		}
		return out, nil
	default:
		names := make([]string, len(items))
		for i, item := range items {
			names[i] = item.Name
		}
		name, ok := resolveQuery(r.decider, "item", r.opts.ItemQuery, names)
		if !ok {
			return nil, nil
		}
		for _, item := range items {
			if item.Name == name {
				return []archive.Item{item}, nil
			}
		}
		return nil, nil
	}
}

func (r *Runner) itemsDestDir(destID string) string {
	if r.opts.Spec.RomsPath != "" {
		return filepath.Join(r.destRoot, r.opts.Spec.RomsPath, destID)
	}
	return filepath.Join(r.destRoot, destID)
}

func (r *Runner) processCategory(ctx context.Context, category string) error {
	destID, err := r.mapper.Resolve(category)
	if err != nil {
		if errors.Is(err, mapping.ErrUnmapped) {
			log.Warn().Str("category", category).Msg("skipping unmapped category")
			return nil
		}
		return err
	}

	items, err := r.selectItems(category)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		log.Info().Str("category", category).Msg("no items selected, skipping")
		return nil
	}

	exported := items
	if !r.opts.BackportOnly {
		exported, err = r.exportItems(ctx, category, destID, items)
		if err != nil {
			return err
		}

		if !r.opts.NoMetadata && r.catalog.HasMetadata() {
			if err := r.exportMetadata(ctx, category, destID, items); err != nil {
				return err
			}
		}

		if err := r.writeListing(category, destID, exported); err != nil {
			log.Error().Err(err).Str("category", category).Msg("listing generation failed")
		}
	}

	if !r.opts.NoMetadata && r.catalog.HasMetadata() {
		outcome, err := r.backport.Reconcile(category, destID, items)
		r.report.RecordBackport(category, outcome)
		if err != nil {
			return err
		}
	}

	return nil
}

// exportItems places the category's item files and returns those that
// ended up present in the destination (placed now or already there).
func (r *Runner) exportItems(
	ctx context.Context,
	category, destID string,
	items []archive.Item,
) ([]archive.Item, error) {
	destDir := r.itemsDestDir(destID)

	requests := make([]exporter.Request, len(items))
	for i, item := range items {
		requests[i] = exporter.Request{
			Source: item.SourcePath,
			Dest:   filepath.Join(destDir, item.Filename),
			Label:  item.Name,
			Bytes:  item.SizeBytes,
		}
	}

	log.Info().
		Str("category", category).
		Str("dest", destID).
		Int("items", len(items)).
		Bool("simulate", r.opts.Simulate).
		Msg("exporting items")

	// Keyed on the source path: item stems are not unique per category
	// (cue sheets share theirs with the track files they reference).
	present := make([]archive.Item, 0, len(items))
	bySource := make(map[string]archive.Item, len(items))
	for _, item := range items {
		bySource[item.SourcePath] = item
	}

	var mu sync.Mutex
	record := func(res exporter.Result) {
		r.report.RecordPlacement(category, res.Outcome, res.Request.Bytes)
		if res.Err != nil {
			log.Error().Err(res.Err).Str("item", res.Request.Label).Msg("placement failed")
		}
		if res.Outcome == exporter.OutcomeFailed {
			return
		}
		mu.Lock()
		present = append(present, bySource[res.Request.Source])
		mu.Unlock()
	}

	if err := r.engine.PlaceBatch(ctx, requests, r.opts.Force, r.opts.Workers, record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAborted, err)
	}

	if err := r.appendPlaylistItems(destID, destDir, present); err != nil {
		log.Error().Err(err).Str("category", category).Msg("playlist append failed")
	}

	return present, nil
}

// appendPlaylistItems registers exported items with playlist-backed
// registries. Entries already present are no-ops.
func (r *Runner) appendPlaylistItems(destID, destDir string, items []archive.Item) error {
	appender, ok := r.registry.(frontends.ItemAppender)
	if !ok || r.opts.Simulate {
		return nil
	}

	for _, item := range items {
		entry := frontends.PlaylistItem{
			Path:     filepath.Join(destDir, item.Filename),
			Label:    item.Name,
			CorePath: "DETECT",
			CoreName: "DETECT",
			CRC32:    "00000000|crc",
			DBName:   destID + ".lpl",
		}
		if err := appender.AppendItem(destID, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) exportMetadata(ctx context.Context, category, destID string, items []archive.Item) error {
	allowed := make(map[string]bool, len(r.opts.MetadataTypes))
	for _, t := range r.opts.MetadataTypes {
		allowed[t] = true
	}

	// Placement resolution stays sequential: it drives variant-selection
	// and candidate prompts. Only the placements themselves fan out.
	var requests []exporter.Request
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
		placements, err := r.meta.PlacementsFor(category, destID, item)
		if err != nil {
			return err
		}
		for _, placement := range placements {
			if len(allowed) > 0 && !allowed[placement.Type] {
				continue
			}
			requests = append(requests, exporter.Request{
				Source: placement.Source,
				Dest:   placement.Dest,
				Label:  placement.Type,
			})
		}
	}

	record := func(res exporter.Result) {
		r.report.RecordMetadata(category, res.Request.Label, res.Outcome)
		if res.Err != nil {
			log.Error().Err(res.Err).Str("dest", res.Request.Dest).Msg("metadata placement failed")
		}
	}
	if err := r.engine.PlaceBatch(ctx, requests, r.opts.Force, r.opts.Workers, record); err != nil {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}

	r.report.RecordUnmappedMetadataDirs(category, r.meta.CountUnmappedDirs(category))
	return nil
}

func (r *Runner) writeListing(category, destID string, items []archive.Item) error {
	if !r.listing.Enabled() || r.opts.Simulate || len(items) == 0 {
		return nil
	}

	entries := make([]gamelist.Entry, len(items))
	for i, item := range items {
		entries[i] = gamelist.Entry{Path: item.Filename, Name: item.Name}
	}
	return r.listing.Generate(r.itemsDestDir(destID), category, entries)
}

// resolveQuery runs the fuzzy selection contract: exactly one exact
// match may be auto-confirmed; anything else needs an explicit pick.
func resolveQuery(decider prompt.Decider, kind, query string, candidates []string) (string, bool) {
	matches := matcher.Resolve(query, candidates, matcher.DefaultThreshold)
	if len(matches) == 0 {
		log.Info().Str("kind", kind).Str("query", query).Msg("no matches found")
		return "", false
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Candidate
	}

	if name, ok := matcher.AutoAccept(matches); ok {
		if decider.ConfirmUse(kind, name) {
			return name, true
		}
		return "", false
	}

	idx, ok := decider.PickIndex(kind, query, names)
	if !ok || idx < 0 || idx >= len(names) {
		return "", false
	}
	return names[idx], true
}
