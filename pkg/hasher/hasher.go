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

// Package hasher computes file content checksums in a single streaming
// pass.
package hasher

import (
	"crypto/md5"  //nolint:gosec // content identity, not security
	"crypto/sha1" //nolint:gosec // content identity, not security
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/spf13/afero"
)

// FileHash contains all checksum information for a file.
type FileHash struct {
	CRC32    string
	MD5      string
	SHA1     string
	FileSize int64
}

// ComputeFileHashes calculates all checksums for a file in one pass.
func ComputeFileHashes(fs afero.Fs, path string) (*FileHash, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}

	return hashReader(file, stat.Size())
}

// hashReader computes all checksums from an io.Reader.
func hashReader(r io.Reader, size int64) (*FileHash, error) {
	crc32Hash := crc32.NewIEEE()
	md5Hash := md5.New()  //nolint:gosec // content identity, not security
	sha1Hash := sha1.New() //nolint:gosec // content identity, not security

	// io.MultiWriter computes every checksum in one streaming pass.
	w := io.MultiWriter(crc32Hash, md5Hash, sha1Hash)
	if _, err := io.Copy(w, r); err != nil {
		return nil, fmt.Errorf("failed to read file for hashing: %w", err)
	}

	return &FileHash{
		CRC32:    hex.EncodeToString(crc32Hash.Sum(nil)),
		MD5:      hex.EncodeToString(md5Hash.Sum(nil)),
		SHA1:     hex.EncodeToString(sha1Hash.Sum(nil)),
		FileSize: size,
	}, nil
}
