// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package secrets loads the two process-wide immutable secrets of
// spec.md §3: PRIVATE_KEY and SALT, hex-encoded in the environment,
// falling back to securely random values (with a warning) when absent
// or malformed.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
)

// validKeyLengths are the byte lengths AES accepts (AES-128/192/256).
var validKeyLengths = map[int]bool{16: true, 24: true, 32: true}

// LoadPrivateKey reads PRIVATE_KEY from the environment as hex (32,
// 48, or 64 hex characters). An absent or malformed value is replaced
// with 32 random bytes and logged as a warning, per spec.md §6.
func LoadPrivateKey() []byte {
	return loadHexSecret("PRIVATE_KEY", validKeyLengths, 32)
}

// LoadSalt reads SALT from the environment as hex (48-128 hex
// characters, i.e. 24-64 bytes). An absent or malformed value is
// replaced with 64 random bytes and logged as a warning.
func LoadSalt() []byte {
	return loadHexSecret("SALT", nil, 64)
}

func loadHexSecret(envVar string, validLengths map[int]bool, randomLen int) []byte {
	raw, ok := os.LookupEnv(envVar)
	if !ok {
		slog.Warn("environment secret not set, generating a random value", "var", envVar)
		return randomBytes(randomLen)
	}

	decoded, err := hex.DecodeString(raw)
	if err != nil {
		slog.Warn("environment secret is not valid hex, generating a random value", "var", envVar)
		return randomBytes(randomLen)
	}

	if validLengths != nil && !validLengths[len(decoded)] {
		slog.Warn("environment secret has an invalid length, generating a random value", "var", envVar, "length", len(decoded))
		return randomBytes(randomLen)
	}
	if validLengths == nil && (len(decoded) < 24 || len(decoded) > 64) {
		slog.Warn("environment secret has an invalid length, generating a random value", "var", envVar, "length", len(decoded))
		return randomBytes(randomLen)
	}

	return decoded
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable: the process cannot
		// safely continue without a source of randomness.
		panic(fmt.Sprintf("secrets: crypto/rand unavailable: %v", err))
	}
	return b
}
