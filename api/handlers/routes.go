// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package handlers

import (
	"net/http"

	"github.com/speedrun-tools/seedticket/internal/ratelimit"
)

// Routes builds the full HTTP mux of SPEC_FULL.md §4.11: every route
// except /health and /time passes through the per-remote-address edge
// limiter before reaching the issuance engine.
func (s *Server) Routes(limiter *ratelimit.Limiter) http.Handler {
	limited := http.NewServeMux()
	limited.HandleFunc("GET /", s.Index)
	limited.HandleFunc("GET /ticket/", s.Ticket)
	limited.HandleFunc("GET /ticket/{slug}", s.TicketCategory)
	limited.HandleFunc("GET /validate/{seed}/{ticket}", s.Validate)
	limited.HandleFunc("GET /metrics/categories", s.Metrics)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthHandler)
	mux.HandleFunc("GET /time", Time)
	mux.Handle("/", limiter.Middleware(limited))
	return mux
}
