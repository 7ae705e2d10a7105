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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/romshelf/romshelf/pkg/cli"
	"github.com/romshelf/romshelf/pkg/config"
	"github.com/romshelf/romshelf/pkg/helpers"
	"github.com/romshelf/romshelf/pkg/run"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	fs := afero.NewOsFs()
	flags := cli.SetupFlags()
	flags.Pre()

	configDir := config.DefaultDir()
	cfg, err := config.NewConfig(configDir, config.BaseDefaults)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return 1
	}

	formats, err := config.LoadFormats(fs, config.FormatsPath(fs, configDir))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error loading format descriptors: %v\n", err)
		return 1
	}

	if *flags.ListFormats {
		cli.PrintFormats(os.Stdout, formats)
		return 0
	}

	debug := cfg.DebugLogging() || *flags.Verbose
	if err := helpers.InitLogging(configDir, debug, []io.Writer{}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error initializing logging: %v\n", err)
		return 1
	}

	formatID := *flags.Format
	if formatID == "" {
		formatID = cfg.DefaultFormat()
	}
	spec, err := config.LookupFormat(formats, formatID)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if *flags.ShowMappings {
		cli.ShowMappingTable(formatID, spec)
		return 0
	}

	source := *flags.Source
	if source == "" {
		source = cfg.ArchiveRoot()
	}
	if source == "" {
		_, _ = fmt.Fprintln(os.Stderr, "error: no archive root configured, pass -source or set archive_root")
		return 1
	}
	source = helpers.ExpandUser(source)

	workers := *flags.Workers
	if workers < 1 {
		workers = cfg.ExportWorkers()
	}

	opts := run.Options{
		Spec:          spec,
		Source:        source,
		Destination:   helpers.ExpandUser(*flags.Dest),
		CategoryQuery: *flags.Category,
		ItemQuery:     *flags.Items,
		MetadataTypes: cli.SplitTypes(*flags.MetadataTypes),
		Workers:       workers,
		Force:         *flags.Force,
		Simulate:      *flags.Simulate,
		LinkMode:      *flags.Symlink,
		NoMetadata:    *flags.NoMetadata,
		BackportOnly:  *flags.BackportOnly,
	}

	decider := cli.NewTerminalDecider(os.Stdin, os.Stdout)
	runner, err := run.New(fs, clockwork.NewRealClock(), decider, opts)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := runner.Run(ctx)
	_, _ = fmt.Println(runner.Report().Summary(runner.Unmapped()))

	switch {
	case errors.Is(runErr, run.ErrAborted), errors.Is(runErr, context.Canceled):
		log.Warn().Msg("run aborted")
		return 130
	case runErr != nil:
		log.Error().Err(runErr).Msg("run failed")
		return 1
	case runner.Report().HasFailures():
		return 2
	default:
		return 0
	}
}
