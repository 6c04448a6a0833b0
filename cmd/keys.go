// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speedrun-tools/seedticket/internal/cryptoprim"
	"github.com/speedrun-tools/seedticket/internal/secrets"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print fingerprints of the loaded PRIVATE_KEY and SALT secrets",
	Long: `keys loads PRIVATE_KEY and SALT exactly as the server does (hex from the
environment, falling back to a random value) and prints a SHA-256 fingerprint
of each, never the secret itself, so an operator can confirm two processes
share the same secrets without exchanging them.`,
	RunE: runKeys,
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	key := secrets.LoadPrivateKey()
	salt := secrets.LoadSalt()

	fmt.Printf("PRIVATE_KEY fingerprint: %s\n", fingerprint(key))
	fmt.Printf("SALT fingerprint:        %s\n", fingerprint(salt))
	return nil
}

func fingerprint(secret []byte) string {
	return hex.EncodeToString(cryptoprim.SHA256(secret)[:8])
}
