// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package ticket

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func keyOfLen(n int) []byte {
	k := make([]byte, n)
	for i := range k {
		k[i] = byte(i * 7)
	}
	return k
}

func TestBuildParseRoundTrip(t *testing.T) {
	key := keyOfLen(32)
	salt := keyOfLen(32)
	seed := [8]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}

	for _, blocks := range []Blocks{1, 2} {
		for _, tick := range []uint32{0, 1, 100000, 4294967295} {
			for cat := 0; cat <= 255; cat += 51 {
				blob, err := Build(seed, byte(cat), tick, salt, key, blocks)
				if err != nil {
					t.Fatalf("Build: %v", err)
				}
				if len(blob) != blocks.Len() {
					t.Fatalf("blob length = %d, want %d", len(blob), blocks.Len())
				}
				got, err := Parse(seed, blob, key, salt)
				if err != nil {
					t.Fatalf("Parse: %v", err)
				}
				if got.Seed != seed || got.Category != byte(cat) || got.Tick != tick {
					t.Fatalf("Parse = %+v, want seed=%x cat=%d tick=%d", got, seed, cat, tick)
				}
			}
		}
	}
}

func TestParseRejectsSeedBitFlip(t *testing.T) {
	key, salt := keyOfLen(32), keyOfLen(32)
	seed := [8]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	blob, err := Build(seed, 7, 100000, salt, key, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for bit := 0; bit < 8; bit++ {
		flipped := seed
		flipped[0] ^= 1 << bit
		if _, err := Parse(flipped, blob, key, salt); err != ErrInvalid {
			t.Fatalf("bit %d: expected ErrInvalid, got %v", bit, err)
		}
	}
}

func TestParseRejectsWrongSalt(t *testing.T) {
	key := keyOfLen(32)
	salt := keyOfLen(32)
	otherSalt := keyOfLen(40)
	seed := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	blob, err := Build(seed, 1, 42, salt, key, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := Parse(seed, blob, key, otherSalt); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid with wrong salt, got %v", err)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	key := keyOfLen(32)
	otherKey := keyOfLen(24)
	salt := keyOfLen(32)
	seed := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	blob, err := Build(seed, 1, 42, salt, key, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := Parse(seed, blob, otherKey, salt); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid with wrong key, got %v", err)
	}
}

func TestHappyPathScenario(t *testing.T) {
	key := make([]byte, 32)
	salt := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	for i := range salt {
		salt[i] = byte(0x20 + i)
	}
	seed := [8]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}

	blob, err := Build(seed, 7, 100000, salt, key, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := Parse(seed, blob, key, salt)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Category != 7 || got.Tick != 100000 {
		t.Fatalf("got %+v", got)
	}

	// Tag mutation: flip the last byte.
	tampered := append([]byte{}, blob...)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := Parse(seed, tampered, key, salt); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid after tag mutation, got %v", err)
	}

	// Wrong seed.
	wrongSeed := seed
	wrongSeed[7]++
	if _, err := Parse(wrongSeed, blob, key, salt); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid for wrong seed, got %v", err)
	}
}

func TestPrettyCleanRoundTrip(t *testing.T) {
	for _, n := range []int{16, 32} {
		raw := make([]byte, n)
		if _, err := rand.Read(raw); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		p := Pretty(raw)
		got := Clean(p)
		if !bytes.Equal(got, raw) {
			t.Fatalf("Clean(Pretty(x)) mismatch for len %d", n)
		}
	}
}

func TestPrettyMatchesSpecExample(t *testing.T) {
	raw := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
		0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
	}
	want := "0011223344556677-8899aabbccddeeff"
	if got := Pretty(raw); got != want {
		t.Fatalf("Pretty = %q, want %q", got, want)
	}
}

func TestCleanRejectsMisplacedDash(t *testing.T) {
	// A 32-byte ticket's pretty form with a dash shifted one
	// character to the right of position 16.
	good := Pretty(bytes.Repeat([]byte{0xAB}, 32))
	bad := good[:16] + good[17:18] + "-" + good[18:]
	if got := Clean(bad); got != nil {
		t.Fatalf("expected nil for misplaced dash, got %x", got)
	}
}

func TestCleanRejectsWrongLength(t *testing.T) {
	if got := Clean("deadbeef"); got != nil {
		t.Fatalf("expected nil for short garbage, got %x", got)
	}
}
