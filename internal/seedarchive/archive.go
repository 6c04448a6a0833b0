// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package seedarchive loads and indexes a category's packed seed
// file (spec.md §4.4): a header carrying the category's URL slug and
// display name, followed by a flat run of 8-byte big-endian seeds.
package seedarchive

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// ErrMalformed is returned for any structurally invalid seed file
// (spec.md §7 Configuration error class — fatal at boot, but the
// category registry catches it and skips the category silently per
// spec.md §4.6).
var ErrMalformed = errors.New("seedarchive: malformed seed file")

// Archive holds one category's sorted seed population in memory.
type Archive struct {
	URL  string
	Name string

	// seeds is a contiguous 8-byte-aligned buffer of big-endian
	// uint64 values, sorted ascending. Read-only after Load.
	seeds []byte
}

// Len returns the number of 8-byte seeds held.
func (a *Archive) Len() int { return len(a.seeds) / 8 }

// At returns the big-endian seed bytes at sorted index i.
func (a *Archive) At(i int) []byte { return a.seeds[i*8 : i*8+8] }

// AtUint64 returns the unsigned 64-bit value of the seed at sorted
// index i.
func (a *Archive) AtUint64(i int) uint64 { return binary.BigEndian.Uint64(a.At(i)) }

// Load reads and parses the seed file at path, gzip-decompressing
// first if the magic bytes indicate a gzip stream (spec.md §4.4: the
// format is "optionally gzip-compressed"; detecting it by content
// rather than trusting the .gz extension lets a plain file still load
// under the same code path).
func Load(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	br := make([]byte, 2)
	n, _ := io.ReadFull(f, br)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if n == 2 && br[0] == 0x1f && br[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		defer gz.Close()
		r = gz
	}

	return parse(r)
}

func parse(r io.Reader) (*Archive, error) {
	var lenURL [1]byte
	if _, err := io.ReadFull(r, lenURL[:]); err != nil {
		return nil, fmt.Errorf("%w: reading url length: %v", ErrMalformed, err)
	}
	if lenURL[0] == 0 {
		return nil, fmt.Errorf("%w: url length must be > 0", ErrMalformed)
	}
	urlBuf := make([]byte, lenURL[0])
	if _, err := io.ReadFull(r, urlBuf); err != nil {
		return nil, fmt.Errorf("%w: reading url: %v", ErrMalformed, err)
	}

	var lenName [2]byte
	if _, err := io.ReadFull(r, lenName[:]); err != nil {
		return nil, fmt.Errorf("%w: reading name length: %v", ErrMalformed, err)
	}
	nameLen := binary.BigEndian.Uint16(lenName[:])
	if nameLen == 0 {
		return nil, fmt.Errorf("%w: name length must be > 0", ErrMalformed)
	}
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, fmt.Errorf("%w: reading name: %v", ErrMalformed, err)
	}

	seeds, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading seeds: %v", ErrMalformed, err)
	}
	if len(seeds)%8 != 0 {
		return nil, fmt.Errorf("%w: seed payload not a multiple of 8 bytes", ErrMalformed)
	}

	a := &Archive{
		URL:   string(urlBuf),
		Name:  string(nameBuf),
		seeds: seeds,
	}
	a.sort()
	return a, nil
}

// sort reorders a.seeds in place ascending by unsigned big-endian
// value, per spec.md §4.4's "loader sorts the seeds in place".
func (a *Archive) sort() {
	n := a.Len()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return a.AtUint64(idx[i]) < a.AtUint64(idx[j])
	})

	sorted := make([]byte, len(a.seeds))
	for newPos, oldPos := range idx {
		copy(sorted[newPos*8:newPos*8+8], a.At(oldPos))
	}
	a.seeds = sorted
}
