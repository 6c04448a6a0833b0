// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/speedrun-tools/seedticket/internal/ticket"
	"github.com/speedrun-tools/seedticket/internal/ticktime"
)

// Exit codes mirror the original offline verifier one for one: 0
// success, 1-7 a specific malformed-parameter condition, 127 the
// ticket itself is invalid or expired.
const (
	exitOK               = 0
	exitBadKey           = 1
	exitBadSalt          = 2
	exitBadSeed          = 3
	exitBadTicketHex     = 4
	exitBadTicketSize    = 5
	exitMissingSalt      = 6
	exitMissingCategory  = 7
	exitTicketInvalid    = 127
)

var verifyFlags struct {
	seed     int64
	cat      int
	time     int64
	key      string
	salt     string
	liveTime int64
	deadTime int64
	ticket   string
	blocks   int
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Generate or validate a seed ticket offline, without the server",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().Int64Var(&verifyFlags.seed, "seed", 404, "The seed to generate/validate")
	verifyCmd.Flags().IntVar(&verifyFlags.cat, "cat", -1, "The category that seed falls into")
	verifyCmd.Flags().Int64Var(&verifyFlags.time, "time", -1, "The time the seed becomes valid, in ticks since 2021-01-01. Leave unset to use the current time")
	verifyCmd.Flags().StringVar(&verifyFlags.key, "key", "", "The secret key, a filename or a hex string (16, 24, or 32 bytes)")
	verifyCmd.Flags().StringVar(&verifyFlags.salt, "salt", "", "The salt, a filename, hex string, or text string (24-64 bytes)")
	verifyCmd.Flags().Int64Var(&verifyFlags.liveTime, "live_time", 7200, "Seconds a ticket remains live after creation")
	verifyCmd.Flags().Int64Var(&verifyFlags.deadTime, "dead_time", 14*86400, "Seconds until a ticket transitions from dead to invalid")
	verifyCmd.Flags().StringVar(&verifyFlags.ticket, "ticket", "", "The ticket to validate, in pretty-hex form")
	verifyCmd.Flags().IntVar(&verifyFlags.blocks, "blocks", 2, "The number of 16-byte blocks in the ticket, 1 or 2. Only used for generation")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	key, ok := resolveSecret(verifyFlags.key, []int{16, 24, 32})
	if !ok {
		fmt.Println("ERROR: An invalid key was given! It must be a file or hex string, and either 16, 24, or 32 bytes long.")
		os.Exit(exitBadKey)
	}

	var salt []byte
	if verifyFlags.salt != "" {
		salt, ok = resolveSaltSecret(verifyFlags.salt)
		if !ok {
			fmt.Println("ERROR: An invalid salt was given! It must be a file or string, between 24 and 64 bytes in size.")
			os.Exit(exitBadSalt)
		}
	}

	if verifyFlags.seed >= (1<<63-1) || verifyFlags.seed < -(1 << 63) {
		fmt.Println("ERROR: An invalid seed was given! It should be smaller.")
		os.Exit(exitBadSeed)
	}
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], uint64(verifyFlags.seed))

	tick := uint32(verifyFlags.time)
	if verifyFlags.time < 0 {
		tick = ticktime.Encode(time.Now().UTC())
	}

	if verifyFlags.ticket != "" {
		verifyExistingTicket(seed, key, salt)
		return nil
	}

	if len(salt) == 0 {
		fmt.Println("ERROR: A salt is necessary for generating a ticket!")
		os.Exit(exitMissingSalt)
	}
	if verifyFlags.cat < 0 {
		fmt.Println("ERROR: A category is necessary for generating a ticket!")
		os.Exit(exitMissingCategory)
	}

	blocks := ticket.Blocks(verifyFlags.blocks)
	raw, err := ticket.Build(seed, byte(verifyFlags.cat), tick, salt, key, blocks)
	if err != nil {
		return err
	}
	fmt.Printf("Here is a ticket for seed %d:\n", verifyFlags.seed)
	fmt.Printf(" TICKET: %s\n", ticket.Pretty(raw))
	return nil
}

func verifyExistingTicket(seed [8]byte, key, salt []byte) {
	raw := ticket.Clean(verifyFlags.ticket)
	if raw == nil {
		fmt.Println("ERROR: An invalid ticket was given! It must be a hex string.")
		os.Exit(exitBadTicketHex)
	}
	if len(raw) != 16 && len(raw) != 32 {
		fmt.Println("ERROR: An invalid ticket was given! It must be either 16 or 32 bytes in size, and with the proper hyphenation.")
		os.Exit(exitBadTicketSize)
	}

	parsed, err := ticket.Parse(seed, raw, key, salt)
	if err != nil {
		fmt.Println("The ticket is INVALID/EXPIRED!")
		fmt.Printf("  TICKET: %s\n", ticket.Pretty(raw))
		os.Exit(exitTicketInvalid)
	}

	if verifyFlags.cat >= 0 && byte(verifyFlags.cat) != parsed.Category {
		fmt.Println("The ticket is INVALID/EXPIRED!")
		fmt.Printf("  TICKET: %s\n", ticket.Pretty(raw))
		os.Exit(exitTicketInvalid)
	}

	now := time.Now().UTC()
	creation := ticktime.Decode(parsed.Tick)
	seconds := int64(now.Sub(creation).Round(time.Second) / time.Second)

	if seconds > verifyFlags.deadTime {
		fmt.Println("The ticket is INVALID/EXPIRED!")
		fmt.Printf("  TICKET: %s\n", ticket.Pretty(raw))
		os.Exit(exitTicketInvalid)
	}

	if seconds > verifyFlags.liveTime {
		fmt.Println("The ticket is DEAD; if it was not submitted for verification while it was live, it is invalid.")
		fmt.Printf("    TIME: %s\n", creation.Local().Format("2006/01/02 15:04 MST"))
	} else {
		fmt.Println("The ticket is LIVE, and could be a viable record if submitted for validation.")
		remaining := verifyFlags.liveTime - seconds
		fmt.Printf(" EXPIRES: In %d hours, %d minutes, and %d seconds.\n", remaining/3600, (remaining/60)%60, remaining%60)
	}

	fmt.Printf("  TICKET: %s\n", ticket.Pretty(raw))
	fmt.Printf("    SEED: %d\n", int64(binary.BigEndian.Uint64(parsed.Seed[:])))
	fmt.Printf("     CAT: %d\n", parsed.Category)
	if len(salt) == 0 {
		fmt.Println(" WARNING: No value for the salt was provided, so this could be a forged ticket.")
	}
	os.Exit(exitOK)
}

// resolveSecret loads a key argument that may be a path to a binary or
// hex-encoded file, or a bare hex string, accepting it only if the
// decoded byte length is one of allowedLens.
func resolveSecret(value string, allowedLens []int) ([]byte, bool) {
	if raw, err := os.ReadFile(value); err == nil {
		if decoded, err := hex.DecodeString(string(raw)); err == nil && lenIn(len(decoded), allowedLens) {
			return decoded, true
		}
		if lenIn(len(raw), allowedLens) {
			return raw, true
		}
	}

	if decoded, err := hex.DecodeString(value); err == nil && lenIn(len(decoded), allowedLens) {
		return decoded, true
	}

	return nil, false
}

// resolveSaltSecret mirrors resolveSecret but additionally falls back
// to treating the value as a literal UTF-8 string, matching the
// original tool's salt-resolution order: file, hex, then plain text.
func resolveSaltSecret(value string) ([]byte, bool) {
	inRange := func(n int) bool { return n >= 24 && n <= 64 }

	if raw, err := os.ReadFile(value); err == nil {
		if decoded, err := hex.DecodeString(string(raw)); err == nil && inRange(len(decoded)) {
			return decoded, true
		}
		if inRange(len(raw)) {
			return raw, true
		}
	}

	if decoded, err := hex.DecodeString(value); err == nil && inRange(len(decoded)) {
		return decoded, true
	}

	if inRange(len(value)) {
		return []byte(value), true
	}

	return nil, false
}

func lenIn(n int, allowed []int) bool {
	for _, a := range allowed {
		if n == a {
			return true
		}
	}
	return false
}
