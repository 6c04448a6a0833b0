// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package audit

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := Open("sqlite", path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mongo", "whatever"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestRecordAndSummarize(t *testing.T) {
	s := openTestStore(t)

	s.Record(OpIssue, 1, OutcomeOK, 5*time.Millisecond)
	s.Record(OpVerify, 1, OutcomeLive, time.Millisecond)
	s.Record(OpVerify, 1, OutcomeDead, time.Millisecond)
	s.Record(OpVerify, 2, OutcomeLive, time.Millisecond)

	rows, err := s.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	counts := map[string]int64{}
	for _, r := range rows {
		counts[string(r.Outcome)] += r.Count
	}
	if counts["live"] != 2 {
		t.Fatalf("live count = %d, want 2", counts["live"])
	}
	if counts["dead"] != 1 {
		t.Fatalf("dead count = %d, want 1", counts["dead"])
	}
	if counts["ok"] != 1 {
		t.Fatalf("ok count = %d, want 1", counts["ok"])
	}
}

func TestRecordOnNilStoreIsNoop(t *testing.T) {
	var s *Store
	s.Record(OpIssue, 1, OutcomeOK, time.Millisecond) // must not panic
}
