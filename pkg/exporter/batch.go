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

package exporter

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Request is one placement in a batch.
type Request struct {
	Source string
	Dest   string
	Label  string
	Bytes  uint64
}

// Result pairs a request with its outcome.
type Result struct {
	Err     error
	Request Request
	Outcome Outcome
}

// PlaceBatch runs placements through a bounded worker pool. Individual
// placements are independent, so failures never abort the batch; only
// context cancellation does. The record callback runs concurrently and
// must be safe for concurrent use.
func (e *Engine) PlaceBatch(
	ctx context.Context,
	requests []Request,
	force bool,
	workers int,
	record func(Result),
) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, req := range requests {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err //nolint:wrapcheck // context cancellation passes through
			}
			outcome, err := e.Place(req.Source, req.Dest, force)
			record(Result{Request: req, Outcome: outcome, Err: err})
			return nil
		})
	}

	return g.Wait() //nolint:wrapcheck // only context errors surface here
}
