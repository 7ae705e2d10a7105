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
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder is a concurrency-safe Result collector.
type recorder struct {
	mu      sync.Mutex
	results []Result
}

func (r *recorder) record(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) byOutcome(outcome Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

func TestPlaceBatch(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	var requests []Request
	for i := range 20 {
		source := fmt.Sprintf("src/game%02d.z64", i)
		require.NoError(t, afero.WriteFile(fs, source, []byte("payload"), 0o644))
		requests = append(requests, Request{
			Source: source,
			Dest:   fmt.Sprintf("dest/game%02d.z64", i),
			Label:  fmt.Sprintf("Game %02d", i),
			Bytes:  7,
		})
	}

	engine := NewEngine(fs, ModeCopy, false)
	rec := &recorder{}

	err := engine.PlaceBatch(context.Background(), requests, false, 4, rec.record)
	require.NoError(t, err)
	assert.Equal(t, 20, rec.byOutcome(OutcomeSuccess))

	for _, req := range requests {
		exists, err := afero.Exists(fs, req.Dest)
		require.NoError(t, err)
		assert.True(t, exists)
	}
}

func TestPlaceBatchFailuresDoNotAbort(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/good.z64", []byte("x"), 0o644))

	requests := []Request{
		{Source: "src/missing.z64", Dest: "dest/missing.z64"},
		{Source: "src/good.z64", Dest: "dest/good.z64"},
	}

	engine := NewEngine(fs, ModeCopy, false)
	rec := &recorder{}

	err := engine.PlaceBatch(context.Background(), requests, false, 2, rec.record)
	require.NoError(t, err, "per-file failures stay in the results")
	assert.Equal(t, 1, rec.byOutcome(OutcomeFailed))
	assert.Equal(t, 1, rec.byOutcome(OutcomeSuccess))
}

func TestPlaceBatchCancelled(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/game.z64", []byte("x"), 0o644))

	var requests []Request
	for i := range 50 {
		requests = append(requests, Request{
			Source: "src/game.z64",
			Dest:   fmt.Sprintf("dest/game%02d.z64", i),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(fs, ModeCopy, false)
	rec := &recorder{}

	err := engine.PlaceBatch(ctx, requests, false, 2, rec.record)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlaceBatchWorkerFloor(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/game.z64", []byte("x"), 0o644))

	engine := NewEngine(fs, ModeCopy, false)
	rec := &recorder{}

	// A worker count below one clamps to sequential execution.
	err := engine.PlaceBatch(
		context.Background(),
		[]Request{{Source: "src/game.z64", Dest: "dest/game.z64"}},
		false, 0, rec.record,
	)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.byOutcome(OutcomeSuccess))
}

func TestPlaceBatchEmpty(t *testing.T) {
	t.Parallel()

	engine := NewEngine(afero.NewMemMapFs(), ModeCopy, false)
	err := engine.PlaceBatch(context.Background(), nil, false, 4, func(Result) {
		t.Error("no results expected")
	})
	require.NoError(t, err)
}
