// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package issuance wires together the category registry, the ticket
// codec, the seed archive membership test and the throttle to
// implement spec.md §4.7's two public operations: Issue and Verify.
package issuance

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/speedrun-tools/seedticket/internal/category"
	"github.com/speedrun-tools/seedticket/internal/ticket"
	"github.com/speedrun-tools/seedticket/internal/ticktime"
	"github.com/speedrun-tools/seedticket/internal/throttle"
)

// Status is the three-way classification Verify reports.
type Status string

const (
	StatusLive    Status = "live"
	StatusDead    Status = "dead"
	StatusInvalid Status = "invalid"
)

// Verdict is the full result tuple of spec.md §4.7's verify: a status
// plus the one payload field that applies to it (RemainingSeconds for
// LIVE, ExpiredAt for DEAD; both are zero for INVALID).
type Verdict struct {
	Status           Status
	RemainingSeconds int64
	ExpiredAt        time.Time
}

// ErrUnknownCategory is returned by Issue when asked for a URL slug
// that no loaded category uses.
var ErrUnknownCategory = errors.New("issuance: unknown category slug")

// ErrThrottled is returned when the issuance or verification throttle
// could not be satisfied (lock timeout); distinct from a successful
// Wait that merely slept.
var ErrThrottled = throttle.ErrLockTimeout

// Engine is the long-lived, boot-time-configured object that serves
// Issue and Verify for the life of the process.
type Engine struct {
	Registry     *category.Registry
	Throttle     *throttle.Throttle
	Key          []byte
	Salt         []byte
	Blocks       ticket.Blocks
	LiveTime     time.Duration
	DeadTime     time.Duration
	ForgeSuccess float64
}

// Issued is the result tuple of Issue, per spec.md §4.7: the signed
// 64-bit interpretation of the seed, the post-sleep timestamp, and
// the pretty-hex ticket.
type Issued struct {
	Seed     int64
	Ticket   string
	IssuedAt time.Time
	Category string // URL slug
}

// Issue draws a seed, either from the explicitly requested category
// slug or, when slug is empty, from the population-weighted random
// pick of spec.md §4.6, waits out that category's issuance throttle,
// and returns a fresh authenticated ticket. The ticket's tick is
// stamped after the throttle sleep completes, not at request arrival.
func (e *Engine) Issue(ctx context.Context, slug string) (Issued, error) {
	var cat *category.Category
	if slug == "" {
		c, err := e.Registry.Pick()
		if err != nil {
			return Issued{}, err
		}
		cat = c
	} else {
		c, ok := e.Registry.PickFrom(slug)
		if !ok {
			return Issued{}, ErrUnknownCategory
		}
		cat = c
	}

	tick, err := e.Throttle.Wait(ctx, cat.Number, throttle.RoleIssuance, cat.GenInterval)
	if err != nil {
		return Issued{}, err
	}

	idx, err := randIndex(cat.Archive.Len())
	if err != nil {
		return Issued{}, err
	}
	var seed [8]byte
	copy(seed[:], cat.Archive.At(idx))

	raw, err := ticket.Build(seed, cat.Number, tick, e.Salt, e.Key, e.Blocks)
	if err != nil {
		return Issued{}, err
	}

	return Issued{
		Seed:     int64(binary.BigEndian.Uint64(seed[:])),
		Ticket:   ticket.Pretty(raw),
		IssuedAt: ticktime.Decode(tick),
		Category: cat.URL(),
	}, nil
}

// Verify runs the global verification throttle before any parsing
// work, then authenticates ticketText against seedText and reports
// LIVE/DEAD/INVALID per spec.md §4.7's six-step procedure.
func (e *Engine) Verify(ctx context.Context, seedText, ticketText string) (Verdict, error) {
	interval := throttle.VerificationInterval(e.DeadTime, int(e.Blocks), e.ForgeSuccess)
	nowTick, err := e.Throttle.Wait(ctx, 0, throttle.RoleVerification, interval)
	if err != nil {
		return Verdict{}, err
	}

	seedSigned, err := strconv.ParseInt(seedText, 10, 64)
	if err != nil {
		return Verdict{Status: StatusInvalid}, nil
	}
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], uint64(seedSigned))

	raw := ticket.Clean(ticketText)
	if raw == nil {
		return Verdict{Status: StatusInvalid}, nil
	}

	parsed, err := ticket.Parse(seed, raw, e.Key, e.Salt)
	if err != nil {
		return Verdict{Status: StatusInvalid}, nil
	}

	cat, ok := e.Registry.ByNumber(parsed.Category)
	if !ok {
		return Verdict{Status: StatusInvalid}, nil
	}
	if !cat.Archive.Contains(binary.BigEndian.Uint64(seed[:])) {
		return Verdict{Status: StatusInvalid}, nil
	}

	delta := time.Duration(int64(nowTick)-int64(parsed.Tick)) * ticktime.Tick
	switch {
	case delta < e.LiveTime:
		remaining := (e.LiveTime - delta).Round(time.Second)
		return Verdict{Status: StatusLive, RemainingSeconds: int64(remaining / time.Second)}, nil
	case delta < e.DeadTime:
		expiredAt := ticktime.Decode(parsed.Tick).Add(e.LiveTime)
		return Verdict{Status: StatusDead, ExpiredAt: expiredAt}, nil
	default:
		return Verdict{Status: StatusInvalid}, nil
	}
}

// randIndex draws a uniform index in [0, n) via crypto/rand.Int, which
// performs the same rejection sampling spec.md §4.6 describes
// explicitly (discarding out-of-range draws) rather than requiring a
// hand-rolled bit-at-a-time loop.
func randIndex(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("issuance: category has no seeds")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
