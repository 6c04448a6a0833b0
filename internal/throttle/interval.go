// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package throttle

import (
	"math"
	"time"
)

// IssuanceInterval returns gen_interval for a category with
// seedCount seeds and the configured LD50 half-life, per spec.md §3:
//
//	gen_interval = LD50 * ln(1 - 1/seedCount) / ln(0.5)
func IssuanceInterval(ld50 time.Duration, seedCount int) time.Duration {
	if seedCount <= 0 {
		return ld50
	}
	n := float64(seedCount)
	seconds := ld50.Seconds() * math.Log(1-1/n) / math.Log(0.5)
	return time.Duration(seconds * float64(time.Second))
}

// VerificationInterval returns verify_interval, the global spacing
// between accepted verification attempts, per spec.md §4.5:
//
//	verify_interval = DEAD_TIME * ln(1 - 2^-b) / ln(1 - FORGE_SUCCESS)
//
// where b is the number of authenticator bits in the ticket's tag
// tail (16*blocks - 13 bytes).
func VerificationInterval(deadTime time.Duration, blocks int, forgeSuccess float64) time.Duration {
	b := float64(8 * (16*blocks - 13))
	seconds := deadTime.Seconds() * math.Log(1-math.Pow(2, -b)) / math.Log(1-forgeSuccess)
	return time.Duration(seconds * float64(time.Second))
}
