// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/speedrun-tools/seedticket/internal/audit"
	"github.com/speedrun-tools/seedticket/internal/issuance"
)

type validateResponse struct {
	Status           string `json:"status"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
	ExpiredAt        string `json:"expired_at,omitempty"`
}

// Validate checks a (seed, ticket) pair. Exposed as
// GET /validate/{seed}/{ticket}.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seedText := r.PathValue("seed")
	ticketText := r.PathValue("ticket")

	start := time.Now()
	verdict, err := s.Engine.Verify(r.Context(), seedText, ticketText)
	elapsed := time.Since(start)

	if err != nil {
		s.recordVerify(audit.OutcomeError, elapsed)
		if err == issuance.ErrThrottled {
			http.Error(w, "throttled, try again shortly", http.StatusServiceUnavailable)
			return
		}
		slog.Error("Error verifying ticket", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.recordVerify(outcomeFor(verdict.Status), elapsed)

	resp := validateResponse{Status: string(verdict.Status)}
	switch verdict.Status {
	case issuance.StatusLive:
		resp.RemainingSeconds = verdict.RemainingSeconds
	case issuance.StatusDead:
		resp.ExpiredAt = verdict.ExpiredAt.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error encoding validate response", "err", err)
	}
}

func outcomeFor(status issuance.Status) audit.Outcome {
	switch status {
	case issuance.StatusLive:
		return audit.OutcomeLive
	case issuance.StatusDead:
		return audit.OutcomeDead
	default:
		return audit.OutcomeInvalid
	}
}

func (s *Server) recordVerify(outcome audit.Outcome, d time.Duration) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(audit.OpVerify, 0, outcome, d)
}
