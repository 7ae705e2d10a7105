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

// Package archive discovers categories and items in a read-only master
// archive tree. All scans are memoized for the lifetime of one run.
package archive

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/romshelf/romshelf/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Category is one platform/collection grouping of items.
type Category struct {
	Name     string
	ItemsDir string
}

// Item is a single archived unit within a category.
type Item struct {
	Name       string // filename stem
	Filename   string
	SourcePath string
	Extension  string
	SizeBytes  uint64
}

// Catalog scans the archive's items root. Pure read, memoized per run.
type Catalog struct {
	fs         afero.Fs
	items      map[string][]Item
	categories map[string]Category
	root       string
	names      []string
	coll       *collate.Collator
	mu         sync.Mutex
}

func NewCatalog(fs afero.Fs, root string) *Catalog {
	return &Catalog{
		fs:         fs,
		root:       root,
		items:      make(map[string][]Item),
		categories: make(map[string]Category),
		coll:       collate.New(language.Und, collate.IgnoreCase),
	}
}

func (c *Catalog) Root() string { return c.root }

func (c *Catalog) ItemsRoot() string {
	return filepath.Join(c.root, config.ItemsDirName)
}

func (c *Catalog) MetadataRoot() string {
	return filepath.Join(c.root, config.MetadataDirName)
}

// Validate checks the archive layout contract. A missing metadata root
// only disables metadata flows, not item sync.
func (c *Catalog) Validate() error {
	info, err := c.fs.Stat(c.root)
	if err != nil {
		return fmt.Errorf("source path does not exist: %s: %w", c.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", c.root)
	}

	if ok, _ := afero.DirExists(c.fs, c.ItemsRoot()); !ok {
		return fmt.Errorf(
			"invalid archive structure: %q directory not found under %s",
			config.ItemsDirName, c.root,
		)
	}

	if !c.HasMetadata() {
		log.Warn().
			Str("path", c.MetadataRoot()).
			Msg("metadata directory not found, metadata flows will be skipped")
	}

	return nil
}

func (c *Catalog) HasMetadata() bool {
	ok, _ := afero.DirExists(c.fs, c.MetadataRoot())
	return ok
}

// Categories returns all category names in sorted order.
func (c *Catalog) Categories() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.names != nil {
		return c.names, nil
	}

	entries, err := afero.ReadDir(c.fs, c.ItemsRoot())
	if err != nil {
		return nil, fmt.Errorf("failed to read items root: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
		c.categories[entry.Name()] = Category{
			Name:     entry.Name(),
			ItemsDir: filepath.Join(c.ItemsRoot(), entry.Name()),
		}
	}

	sort.Strings(names)
	c.names = names
	return names, nil
}

// Category returns the category record for name, scanning first if needed.
func (c *Catalog) Category(name string) (Category, bool, error) {
	if _, err := c.Categories(); err != nil {
		return Category{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cat, ok := c.categories[name]
	return cat, ok, nil
}

// Items returns all items in a category, ordered case-insensitively by
// name. The scan runs once per category.
func (c *Catalog) Items(category string) ([]Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if items, ok := c.items[category]; ok {
		return items, nil
	}

	dir := filepath.Join(c.ItemsRoot(), category)
	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read category directory %s: %w", dir, err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		items = append(items, Item{
			Name:       strings.TrimSuffix(entry.Name(), ext),
			Filename:   entry.Name(),
			SourcePath: filepath.Join(dir, entry.Name()),
			Extension:  ext,
			SizeBytes:  uint64(entry.Size()), //nolint:gosec // sizes are non-negative
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return c.coll.CompareString(items[i].Name, items[j].Name) < 0
	})

	c.items[category] = items
	return items, nil
}
