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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const SchemaVersion = 1

// CfgEnv overrides the config file location when set.
const CfgEnv = "ROMSHELF_CFG"

// Values is the on-disk application configuration.
type Values struct {
	ArchiveRoot   string `toml:"archive_root,omitempty"`
	DefaultFormat string `toml:"default_format,omitempty"`
	ConfigSchema  int    `toml:"config_schema"`
	ExportWorkers int    `toml:"export_workers,omitempty"`
	DebugLogging  bool   `toml:"debug_logging"`
}

var BaseDefaults = Values{
	ConfigSchema:  SchemaVersion,
	DefaultFormat: "es-de",
	ExportWorkers: 4,
}

// Instance wraps loaded config values with concurrency-safe access.
type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       sync.RWMutex
}

// DefaultDir returns the user config directory for the app.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return fmt.Errorf("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	newVals := c.defaults
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Warn().Msgf(
			"loaded config schema version %d, expected %d",
			newVals.ConfigSchema, SchemaVersion,
		)
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return fmt.Errorf("config path not set")
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) ArchiveRoot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ArchiveRoot
}

func (c *Instance) DefaultFormat() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DefaultFormat
}

func (c *Instance) ExportWorkers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.ExportWorkers < 1 {
		return 1
	}
	return c.vals.ExportWorkers
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}
