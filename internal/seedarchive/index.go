// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package seedarchive

// linearScanThreshold is the window size below which Contains falls
// back to a straight scan instead of further bisecting (spec.md §4.4
// step 6).
const linearScanThreshold = 8

// Contains implements spec.md §4.4's interpolation-then-galloping-
// binary search membership test over the sorted seed table.
func (a *Archive) Contains(seed uint64) bool {
	n := a.Len()
	if n == 0 {
		return false
	}

	lo, hi := a.AtUint64(0), a.AtUint64(n-1)
	if seed < lo || seed > hi {
		return false
	}

	// Interpolation estimate.
	e := interpolate(seed, n)
	if e < 0 {
		e = 0
	}
	if e >= n {
		e = n - 1
	}
	if a.AtUint64(e) == seed {
		return true
	}

	left, right := a.gallop(seed, e, n)

	// Binary search until the window is small enough for a linear scan.
	for right-left > linearScanThreshold {
		mid := left + (right-left)/2
		v := a.AtUint64(mid)
		switch {
		case v == seed:
			return true
		case v < seed:
			left = mid
		default:
			right = mid
		}
	}

	for i := left; i <= right && i < n; i++ {
		if a.AtUint64(i) == seed {
			return true
		}
	}
	return false
}

// interpolate returns floor(seed * n / 2^64), the estimated sorted
// index of seed under a uniform distribution assumption.
func interpolate(seed uint64, n int) int {
	hi, lo := bits64Mul(seed, uint64(n))
	// (hi:lo) / 2^64 == hi, since dividing a 128-bit product by 2^64
	// is exactly the high 64 bits.
	_ = lo
	return int(hi)
}

// bits64Mul returns the 128-bit product seed*n as (hi, lo).
func bits64Mul(seed, n uint64) (hi, lo uint64) {
	const mask32 = 1<<32 - 1
	aLo, aHi := seed&mask32, seed>>32
	bLo, bHi := n&mask32, n>>32

	ll := aLo * bLo
	lh := aLo * bHi
	hl := aHi * bLo
	hh := aHi * bHi

	// Sum the middle partial products in two steps so that neither
	// sum can overflow and no carry into hi is lost.
	mid1 := lh + (ll >> 32)
	mid2 := hl + (mid1 & mask32)
	lo = (ll & mask32) | (mid2 << 32)
	hi = hh + (mid1 >> 32) + (mid2 >> 32)
	return hi, lo
}

// gallop expands outward from the interpolation estimate e, doubling
// the step each time, until it brackets seed within [left, right] or
// runs off the end of the table. Symmetric for seeds below and above
// a.AtUint64(e), per spec.md §4.4 step 4.
func (a *Archive) gallop(seed uint64, e, n int) (left, right int) {
	v := a.AtUint64(e)
	switch {
	case v < seed:
		left, step := e, 1
		right := left + step
		for right < n && a.AtUint64(right) < seed {
			step *= 2
			left = right
			right = left + step
			if right > n {
				right = n
			}
		}
		if right >= n {
			right = n - 1
		}
		return left, right
	case v > seed:
		right, step := e, 1
		left := right - step
		for left >= 0 && a.AtUint64(left) > seed {
			step *= 2
			right = left
			left = right - step
			if left < 0 {
				left = -1
			}
		}
		if left < 0 {
			left = 0
		}
		return left, right
	default:
		return e, e
	}
}
