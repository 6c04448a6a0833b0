// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package ticket builds and parses the fixed-size authenticated
// ticket blob described in spec.md §4.3: a 13-byte core (seed,
// category, tick) padded with an HMAC tag-tail and encrypted as a
// single AES-ECB pass. There is no nonce by design — see spec.md §9.
package ticket

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"

	"github.com/speedrun-tools/seedticket/internal/cryptoprim"
)

// ErrInvalid collapses every parse failure reason — wrong length, bad
// key, wrong seed, tag mismatch — into one outcome. Callers (C7) must
// never branch on why a ticket failed to parse.
var ErrInvalid = errors.New("ticket: invalid")

const coreSize = 13 // 8 (seed) + 1 (category) + 4 (tick)

// Blocks is the ticket length in 16-byte AES blocks, 1 or 2.
type Blocks int

// Len returns the ticket length in bytes for b blocks.
func (b Blocks) Len() int { return int(b) * 16 }

// Valid reports whether b is 1 or 2, the only supported ticket sizes.
func (b Blocks) Valid() bool { return b == 1 || b == 2 }

// Build implements spec.md §4.3 Build. seed must be 8 bytes, cat must
// fit a byte, tick is the full 32-bit tick count, salt is the process
// SALT, key is the process PRIVATE_KEY.
func Build(seed [8]byte, cat byte, tick uint32, salt, key []byte, blocks Blocks) ([]byte, error) {
	if !blocks.Valid() {
		return nil, errors.New("ticket: blocks must be 1 or 2")
	}

	core := make([]byte, 0, coreSize)
	core = append(core, seed[:]...)
	core = append(core, cat)
	var tickBuf [4]byte
	binary.BigEndian.PutUint32(tickBuf[:], tick)
	core = append(core, tickBuf[:]...)

	tag := cryptoprim.HMACSHA256(salt, core)
	tailLen := blocks.Len() - coreSize
	raw := append(core, tag[:tailLen]...)

	return cryptoprim.ECBEncrypt(raw, key)
}

// Parsed is the tuple spec.md §4.3 Parse returns on success.
type Parsed struct {
	Seed     [8]byte
	Category byte
	Tick     uint32
}

// Parse implements spec.md §4.3 Parse. seed is the claimed seed the
// caller is verifying against. salt, when non-empty, enables the tag
// check; omitting it (nil or empty salt) skips step 3, matching callers
// that only want the structural decode (e.g. diagnostics).
func Parse(claimedSeed [8]byte, ciphertext []byte, key, salt []byte) (Parsed, error) {
	blocks := len(ciphertext) / 16
	if len(ciphertext)%16 != 0 || (blocks != 1 && blocks != 2) {
		return Parsed{}, ErrInvalid
	}

	raw, err := cryptoprim.ECBDecrypt(ciphertext, key)
	if err != nil {
		return Parsed{}, ErrInvalid
	}

	if subtle.ConstantTimeCompare(raw[:8], claimedSeed[:]) != 1 {
		return Parsed{}, ErrInvalid
	}

	if len(salt) > 0 {
		tag := cryptoprim.HMACSHA256(salt, raw[:coreSize])
		tailLen := len(ciphertext) - coreSize
		if subtle.ConstantTimeCompare(tag[:tailLen], raw[coreSize:]) != 1 {
			return Parsed{}, ErrInvalid
		}
	}

	var out Parsed
	copy(out.Seed[:], raw[:8])
	out.Category = raw[8]
	out.Tick = binary.BigEndian.Uint32(raw[9:13])
	return out, nil
}
