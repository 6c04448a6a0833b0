// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package issuance

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/speedrun-tools/seedticket/internal/category"
	"github.com/speedrun-tools/seedticket/internal/ticket"
	"github.com/speedrun-tools/seedticket/internal/throttle"
)

func writeSeedFile(t *testing.T, dir string, num int, url, name string, seeds []uint64) {
	t.Helper()
	var body bytes.Buffer
	body.WriteByte(byte(len(url)))
	body.WriteString(url)
	var nameLen [2]byte
	binary.BigEndian.PutUint16(nameLen[:], uint16(len(name)))
	body.Write(nameLen[:])
	body.WriteString(name)
	for _, s := range seeds {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], s)
		body.Write(b[:])
	}
	path := filepath.Join(dir, fmt.Sprintf("%03d.seeds.gz", num))
	if err := os.WriteFile(path, body.Bytes(), 0o600); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	seedDir := t.TempDir()
	writeSeedFile(t, seedDir, 1, "any-percent", "Any%", []uint64{10, 20, 30, 40, 50})

	reg, err := category.Load(category.LoadOptions{SeedDir: seedDir, LD50: time.Millisecond})
	if err != nil {
		t.Fatalf("category.Load: %v", err)
	}

	return &Engine{
		Registry: reg,
		Throttle: &throttle.Throttle{
			TmpDir:      t.TempDir(),
			Key:         make([]byte, 32),
			Salt:        make([]byte, 32),
			LockTimeout: time.Second,
		},
		Key:          make([]byte, 32),
		Salt:         make([]byte, 32),
		Blocks:       ticket.Blocks(2),
		LiveTime:     time.Hour,
		DeadTime:     2 * time.Hour,
		ForgeSuccess: 1e-6,
	}
}

func TestIssueAndVerifyLive(t *testing.T) {
	eng := newTestEngine(t)

	issued, err := eng.Issue(context.Background(), "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.Category != "any-percent" {
		t.Fatalf("Category = %q, want any-percent", issued.Category)
	}

	seedText := strconv.FormatInt(issued.Seed, 10)
	verdict, err := eng.Verify(context.Background(), seedText, issued.Ticket)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict.Status != StatusLive {
		t.Fatalf("Verify status = %q, want live", verdict.Status)
	}
	if verdict.RemainingSeconds <= 0 {
		t.Fatalf("RemainingSeconds = %d, want > 0", verdict.RemainingSeconds)
	}
}

func TestIssueUnknownSlug(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := eng.Issue(context.Background(), "no-such-category"); err != ErrUnknownCategory {
		t.Fatalf("Issue(no-such-category) err = %v, want ErrUnknownCategory", err)
	}
}

func TestVerifyInvalidOnWrongSeed(t *testing.T) {
	eng := newTestEngine(t)
	issued, err := eng.Issue(context.Background(), "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	verdict, err := eng.Verify(context.Background(), "0", issued.Ticket)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict.Status != StatusInvalid {
		t.Fatalf("Verify(wrong seed) status = %q, want invalid", verdict.Status)
	}
}

func TestVerifyInvalidOnGarbageTicket(t *testing.T) {
	eng := newTestEngine(t)
	verdict, err := eng.Verify(context.Background(), "0", "not-a-ticket")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict.Status != StatusInvalid {
		t.Fatalf("Verify(garbage) status = %q, want invalid", verdict.Status)
	}
}

func TestVerifyInvalidOnNonIntegerSeed(t *testing.T) {
	eng := newTestEngine(t)
	verdict, err := eng.Verify(context.Background(), "not-a-number", "not-a-ticket-either")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict.Status != StatusInvalid {
		t.Fatalf("Verify(non-integer seed) status = %q, want invalid", verdict.Status)
	}
}

func TestVerifyDeadAfterLiveTimeButBeforeDeadTime(t *testing.T) {
	eng := newTestEngine(t)
	eng.LiveTime = time.Nanosecond
	eng.DeadTime = time.Hour

	issued, err := eng.Issue(context.Background(), "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Ages are measured in 125ms ticks; sleep past two tick boundaries
	// so the ticket's age is at least one tick.
	time.Sleep(300 * time.Millisecond)
	seedText := strconv.FormatInt(issued.Seed, 10)
	verdict, err := eng.Verify(context.Background(), seedText, issued.Ticket)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict.Status != StatusDead {
		t.Fatalf("Verify(aged past live_time) status = %q, want dead", verdict.Status)
	}
	if verdict.ExpiredAt.IsZero() {
		t.Fatalf("expected a non-zero ExpiredAt for a dead verdict")
	}
}

func TestVerifyInvalidAfterDeadTime(t *testing.T) {
	eng := newTestEngine(t)
	eng.LiveTime = time.Nanosecond
	eng.DeadTime = 2 * time.Nanosecond

	issued, err := eng.Issue(context.Background(), "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	seedText := strconv.FormatInt(issued.Seed, 10)
	verdict, err := eng.Verify(context.Background(), seedText, issued.Ticket)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict.Status != StatusInvalid {
		t.Fatalf("Verify(aged past dead_time) status = %q, want invalid", verdict.Status)
	}
}

func TestVerifyInvalidOnSeedNotInArchive(t *testing.T) {
	eng := newTestEngine(t)
	cat, ok := eng.Registry.ByURL("any-percent")
	if !ok {
		t.Fatalf("category not loaded")
	}

	// A seed value that authenticates correctly (built with the real
	// key and salt) but was never a member of the category's archive,
	// simulating a revoked or unissued seed.
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], 999999)
	tick := uint32(1)
	raw, err := ticket.Build(seed, cat.Number, tick, eng.Salt, eng.Key, eng.Blocks)
	if err != nil {
		t.Fatalf("ticket.Build: %v", err)
	}

	seedText := strconv.FormatInt(int64(binary.BigEndian.Uint64(seed[:])), 10)
	verdict, err := eng.Verify(context.Background(), seedText, ticket.Pretty(raw))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verdict.Status != StatusInvalid {
		t.Fatalf("Verify(seed not in archive) status = %q, want invalid", verdict.Status)
	}
}
