// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package ratelimit implements the per-remote-address HTTP edge
// limiter of SPEC_FULL.md §4.11: a coarse token-bucket guard ahead of
// every route except /health and /time, distinct from and in addition to the per-category
// and global throttles of spec.md §4.5.
package ratelimit

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter holds one token bucket per remote address, created lazily
// and never evicted — acceptable for the scale this service runs at;
// see SPEC_FULL.md §5 for why this never substitutes for the
// per-category throttle.
type Limiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*rate.Limiter
}

// New builds a Limiter allowing rps requests per second per remote
// address, with the given burst allowance.
func New(rps int, burst int) *Limiter {
	return &Limiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*rate.Limiter),
	}
}

func (l *Limiter) limiterFor(addr string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.visitors[addr]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.visitors[addr] = lim
	}
	return lim
}

// Middleware wraps next, rejecting requests from addresses that have
// exhausted their token bucket with 429 Too Many Requests.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !l.limiterFor(host).Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
