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

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/romshelf/romshelf/pkg/mapping"
	"github.com/romshelf/romshelf/pkg/prompt"
)

// TerminalDecider answers core decision prompts over a line-based
// terminal. Reads that fail (closed stdin) decline the prompt.
type TerminalDecider struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalDecider(in io.Reader, out io.Writer) *TerminalDecider {
	return &TerminalDecider{in: bufio.NewReader(in), out: out}
}

func (d *TerminalDecider) readLine() (string, bool) {
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (d *TerminalDecider) ask(format string, args ...any) (string, bool) {
	_, _ = fmt.Fprintf(d.out, format, args...)
	return d.readLine()
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (d *TerminalDecider) ConfirmUse(kind, name string) bool {
	answer, ok := d.ask("Found %s %q. Use it? [y/N]: ", kind, name)
	return ok && isYes(answer)
}

func (d *TerminalDecider) PickIndex(kind, query string, options []string) (int, bool) {
	_, _ = fmt.Fprintf(d.out, "Multiple %ss match %q:\n", kind, query)
	for i, option := range options {
		_, _ = fmt.Fprintf(d.out, "  %d) %s\n", i+1, option)
	}

	for {
		answer, ok := d.ask("Select 1-%d (q to cancel): ", len(options))
		if !ok || strings.EqualFold(answer, "q") {
			return 0, false
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(options) {
			_, _ = fmt.Fprintln(d.out, "Invalid selection.")
			continue
		}
		return n - 1, true
	}
}

func (d *TerminalDecider) StepThrough(kind string, options []string) []int {
	var picked []int
	for i, option := range options {
		answer, ok := d.ask("Include %s %q? [y/N/q]: ", kind, option)
		if !ok || strings.EqualFold(answer, "q") {
			break
		}
		if isYes(answer) {
			picked = append(picked, i)
		}
	}
	return picked
}

func (d *TerminalDecider) SelectCandidate(
	item, rulePath, destName string,
	options []string,
) prompt.CandidateDecision {
	_, _ = fmt.Fprintf(d.out, "Multiple %s files match %q (dest %s):\n", rulePath, item, destName)
	for i, option := range options {
		_, _ = fmt.Fprintf(d.out, "  %d) %s\n", i+1, option)
	}

	for {
		answer, ok := d.ask("Select 1-%d, a for always-first, s to skip: ", len(options))
		if !ok || strings.EqualFold(answer, "s") {
			return prompt.CandidateDecision{Skip: true}
		}
		if strings.EqualFold(answer, "a") {
			return prompt.CandidateDecision{Index: 0, AlwaysFirst: true}
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(options) {
			_, _ = fmt.Fprintln(d.out, "Invalid selection.")
			continue
		}
		return prompt.CandidateDecision{Index: n - 1}
	}
}

func (d *TerminalDecider) CreateSystem(
	archiveName string,
	suggested prompt.CustomSystem,
) (prompt.CustomSystem, bool) {
	answer, ok := d.ask("Platform %q is not mapped. Create a custom system? [y/N]: ", archiveName)
	if !ok || !isYes(answer) {
		return prompt.CustomSystem{}, false
	}

	sys := suggested
	sys.ArchiveName = archiveName

	fields := []struct {
		label string
		value *string
	}{
		{"Short name", &sys.Name},
		{"Full name", &sys.FullName},
		{"ROM path", &sys.Path},
		{"Extensions", &sys.Extensions},
	}
	for _, field := range fields {
		answer, ok := d.ask("%s [%s]: ", field.label, *field.value)
		if !ok {
			return prompt.CustomSystem{}, false
		}
		if answer != "" {
			*field.value = answer
		}
	}

	// A named libretro core expands into the full launch template.
	core, ok := d.ask("RetroArch core (empty for %s): ", sys.Command)
	if !ok {
		return prompt.CustomSystem{}, false
	}
	if core != "" {
		sys.Command = mapping.RetroArchCommand(core)
	}

	return sys, true
}

func (d *TerminalDecider) SelectVariants(rulePath string, available []string) prompt.VariantDecision {
	_, _ = fmt.Fprintf(d.out, "Variants available for %s:\n", rulePath)
	for i, variant := range available {
		_, _ = fmt.Fprintf(d.out, "  %d) %s\n", i+1, variant)
	}

	answer, ok := d.ask("Select numbers (comma-separated), empty for all, n for none: ")
	if !ok || answer == "" {
		return prompt.VariantDecision{All: true}
	}
	if strings.EqualFold(answer, "n") {
		return prompt.VariantDecision{Selected: []string{}}
	}

	var selected []string
	for _, part := range strings.Split(answer, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(available) {
			continue
		}
		selected = append(selected, available[n-1])
	}
	if len(selected) == 0 {
		return prompt.VariantDecision{All: true}
	}
	return prompt.VariantDecision{Selected: selected}
}
