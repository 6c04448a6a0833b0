// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package category

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ErrNoCategories is returned by Pick when the registry loaded no
// categories at all.
var ErrNoCategories = fmt.Errorf("category: registry has no loaded categories")

// Pick draws a category at random, weighted by its seed population,
// per spec.md §4.6: a category with twice the seeds of another is
// twice as likely to be chosen. The draw point is sourced from
// crypto/rand.Int, which rejects out-of-range samples internally so
// the result is exactly uniform over [0, Total()) with no modulo
// bias.
func (r *Registry) Pick() (*Category, error) {
	if r.total == 0 {
		return nil, ErrNoCategories
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(r.total)))
	if err != nil {
		return nil, fmt.Errorf("category: drawing random index: %w", err)
	}
	return r.locate(int(n.Int64())), nil
}

// PickFrom resolves an explicitly requested URL slug to its category,
// bypassing weighted selection. Returns false if no loaded category
// uses that slug.
func (r *Registry) PickFrom(url string) (*Category, bool) {
	return r.ByURL(url)
}
