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

// Package exporter places archive files into the destination tree by
// link or copy, with mandatory post-write verification. It is the only
// component that mutates the destination filesystem during export.
package exporter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Mode selects the run-wide placement strategy.
type Mode int

const (
	// ModeLink creates filesystem links, saving space.
	ModeLink Mode = iota
	// ModeCopy performs byte-for-byte copies.
	ModeCopy
)

// Outcome classifies one placement attempt.
type Outcome int

const (
	// OutcomeSuccess means the file was placed and verified (or would be,
	// in a simulated run).
	OutcomeSuccess Outcome = iota
	// OutcomeSkipped means the destination already existed and force was
	// not set. No mutation happened.
	OutcomeSkipped
	// OutcomeFailed means a pre-check, write, or verification failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

var (
	ErrSourceMissing      = errors.New("source file does not exist")
	ErrSourceNotRegular   = errors.New("source is not a regular file")
	ErrSymlinkUnsupported = errors.New("filesystem does not support symlinks")
	ErrVerifyFailed       = errors.New("post-write verification failed")
)

// Engine performs link-or-copy placement. It holds no catalog state.
type Engine struct {
	fs       afero.Fs
	mode     Mode
	simulate bool
}

func NewEngine(fs afero.Fs, mode Mode, simulate bool) *Engine {
	return &Engine{fs: fs, mode: mode, simulate: simulate}
}

// Place puts source at dest. Without force an existing destination is
// skipped untouched; with force it is removed first. Simulated runs
// perform every check except the write and removal.
func (e *Engine) Place(source, dest string, force bool) (Outcome, error) {
	info, err := e.fs.Stat(source)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %s", ErrSourceMissing, source)
	}
	if !info.Mode().IsRegular() {
		return OutcomeFailed, fmt.Errorf("%w: %s", ErrSourceNotRegular, source)
	}

	destExists := e.lexists(dest)

	if e.simulate {
		if destExists && !force {
			log.Warn().Str("dest", filepath.Base(dest)).Msg("simulate: destination exists, would skip")
			return OutcomeSkipped, nil
		}
		log.Debug().Str("dest", dest).Str("source", source).Msg("simulate: would place")
		return OutcomeSuccess, nil
	}

	if err := e.fs.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to create parent directory for %s: %w", dest, err)
	}

	if destExists {
		if !force {
			log.Debug().Str("dest", filepath.Base(dest)).Msg("destination already exists, skipping")
			return OutcomeSkipped, nil
		}
		if err := e.fs.Remove(dest); err != nil {
			return OutcomeFailed, fmt.Errorf("failed to remove existing destination %s: %w", dest, err)
		}
	}

	if e.mode == ModeLink {
		if err := e.placeLink(source, dest); err != nil {
			return OutcomeFailed, err
		}
	} else {
		if err := e.placeCopy(source, dest, info.Size()); err != nil {
			return OutcomeFailed, err
		}
	}

	return OutcomeSuccess, nil
}

func (e *Engine) placeLink(source, dest string) error {
	linker, ok := e.fs.(afero.Linker)
	if !ok {
		return ErrSymlinkUnsupported
	}

	target, err := filepath.Abs(source)
	if err != nil {
		return fmt.Errorf("failed to resolve source path %s: %w", source, err)
	}

	if err := linker.SymlinkIfPossible(target, dest); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", dest, err)
	}

	// The write call succeeding is not enough; the link must exist and
	// resolve to the canonical source.
	lstater, lok := e.fs.(afero.Lstater)
	reader, rok := e.fs.(afero.LinkReader)
	if !lok || !rok {
		return ErrSymlinkUnsupported
	}

	linfo, _, err := lstater.LstatIfPossible(dest)
	if err != nil || linfo.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("%w: %s is not a symlink after creation", ErrVerifyFailed, dest)
	}

	got, err := reader.ReadlinkIfPossible(dest)
	if err != nil {
		return fmt.Errorf("%w: cannot read link %s: %w", ErrVerifyFailed, dest, err)
	}
	if filepath.Clean(got) != filepath.Clean(target) {
		return fmt.Errorf("%w: link %s points to %s, want %s", ErrVerifyFailed, dest, got, target)
	}

	log.Debug().Str("dest", dest).Str("target", target).Msg("created symlink")
	return nil
}

func (e *Engine) placeCopy(source, dest string, wantSize int64) error {
	in, err := e.fs.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", source, err)
	}
	defer func() { _ = in.Close() }()

	out, err := e.fs.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create destination %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", source, dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dest, err)
	}

	destInfo, err := e.fs.Stat(dest)
	if err != nil {
		return fmt.Errorf("%w: cannot stat copied file %s: %w", ErrVerifyFailed, dest, err)
	}
	if destInfo.Size() != wantSize {
		return fmt.Errorf(
			"%w: size mismatch for %s: source=%d dest=%d",
			ErrVerifyFailed, dest, wantSize, destInfo.Size(),
		)
	}

	log.Debug().Str("dest", dest).Str("source", source).Msg("copied file")
	return nil
}

// lexists reports destination existence without following symlinks, so a
// dangling link still counts as an existing destination.
func (e *Engine) lexists(path string) bool {
	if lstater, ok := e.fs.(afero.Lstater); ok {
		if _, _, err := lstater.LstatIfPossible(path); err == nil {
			return true
		}
		return false
	}
	ok, _ := afero.Exists(e.fs, path)
	return ok
}
