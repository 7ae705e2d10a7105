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

package gamelist

import (
	"strconv"
	"time"

	"github.com/romshelf/romshelf/pkg/config"
)

// Conversion kinds understood by Convert. Unknown kinds pass the value
// through unchanged.
const (
	ConvertDateSynthesis = "date-synthesis"
	ConvertLinearRescale = "linear-rescale"
)

const defaultDateFormat = "20060102T150405"

// Convert applies a declarative field conversion to a raw table value.
func Convert(value string, conv *config.FieldConversion) string {
	if conv == nil {
		return value
	}

	switch conv.Kind {
	case ConvertDateSynthesis:
		return synthesizeDate(value, conv)
	case ConvertLinearRescale:
		return rescale(value, conv)
	default:
		return value
	}
}

// synthesizeDate expands a bare year into a fixed-format timestamp.
func synthesizeDate(value string, conv *config.FieldConversion) string {
	year, err := strconv.Atoi(value)
	if err != nil {
		return value
	}

	month := conv.DefaultMonth
	if month < 1 || month > 12 {
		month = 1
	}
	day := conv.DefaultDay
	if day < 1 || day > 31 {
		day = 1
	}

	format := conv.Format
	if format == "" {
		format = defaultDateFormat
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return date.Format(format)
}

// rescale maps a numeric value between scales with fixed precision.
func rescale(value string, conv *config.FieldConversion) string {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	if conv.SourceScale == 0 {
		return value
	}

	scaled := n / conv.SourceScale * conv.TargetScale
	decimals := conv.Decimals
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(scaled, 'f', decimals, 64)
}
