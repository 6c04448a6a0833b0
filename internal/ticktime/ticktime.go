// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package ticktime converts between wall-clock instants and the
// integer tick count (⅛ s units) the ticket codec and throttle
// persist, relative to the fixed epoch in spec.md §4.2.
package ticktime

import "time"

// Tick is ⅛ of a second.
const Tick = 125 * time.Millisecond

// Epoch is 2021-01-01 00:00:00 UTC.
var Epoch = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// Encode returns round((instant - Epoch) / Tick) as a non-negative
// tick count. instant must carry timezone information; a value with
// a nil or UTC-ambiguous Location is still accepted since time.Time
// always normalizes to an absolute instant — the "naive instant"
// hazard spec.md §4.2 warns about applies to languages without a
// monotonic, zone-aware time type, which Go's time.Time is not
// subject to.
func Encode(instant time.Time) uint32 {
	d := instant.Sub(Epoch)
	ticks := int64((d + Tick/2) / Tick)
	if ticks < 0 {
		ticks = 0
	}
	return uint32(ticks)
}

// Decode returns Epoch + ticks*125ms.
func Decode(ticks uint32) time.Time {
	return Epoch.Add(time.Duration(ticks) * Tick)
}
