// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package cryptoprim implements the fixed set of cryptographic
// primitives the ticket engine is built from: a hash/HMAC dual, an
// authenticated CBC blob cipher, and single-block AES-ECB. Nothing
// here chooses its own parameters; every caller in internal/ticket,
// internal/throttle, and cmd pins algorithm and key length
// explicitly.
package cryptoprim

import (
	"crypto/hmac"
	"crypto/sha256"
)

// Hash returns SHA-256(input) when key is nil or empty, and
// HMAC-SHA-256(key, input) otherwise. key, when present, must be
// 24-64 bytes (the SALT length range from spec.md §3); this is not
// re-validated here since callers already hold a validated salt.
func Hash(input []byte, key []byte) []byte {
	if len(key) == 0 {
		sum := sha256.Sum256(input)
		return sum[:]
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(input)
	return mac.Sum(nil)
}

// HMACSHA256 is Hash with a non-empty key, named for call sites that
// always authenticate (never plain-hash).
func HMACSHA256(key, input []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(input)
	return mac.Sum(nil)
}

// SHA256 is Hash with no key, named for call sites that never
// authenticate.
func SHA256(input []byte) []byte {
	sum := sha256.Sum256(input)
	return sum[:]
}
