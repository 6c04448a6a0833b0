// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/speedrun-tools/seedticket/internal/ticktime"
)

type timeResponse struct {
	Tick uint32 `json:"tick"`
	UTC  string `json:"utc"`
}

// Time reports the server's current tick count, letting an offline
// client sanity-check its clock against the tick codec of spec.md
// §4.2 before computing ticket ages itself. Exposed as GET /time.
func Time(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	now := time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	resp := timeResponse{Tick: ticktime.Encode(now), UTC: now.Format(time.RFC3339)}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error encoding time response", "err", err)
	}
}
