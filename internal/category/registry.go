// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package category loads and indexes the 1-255 numbered categories of
// spec.md §4.6: one seed archive per category, a URL-slug lookup, and
// a population-weighted random category picker.
package category

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/speedrun-tools/seedticket/internal/seedarchive"
	"github.com/speedrun-tools/seedticket/internal/throttle"
)

// Category is one loaded, immutable-after-boot seed population.
type Category struct {
	Number      byte
	Archive     *seedarchive.Archive
	GenInterval time.Duration
}

func (c *Category) URL() string  { return c.Archive.URL }
func (c *Category) Name() string { return c.Archive.Name }

// Registry holds every successfully loaded category, indexed both by
// number and by URL slug, plus the cumulative seed-count table used
// for weighted random selection.
type Registry struct {
	byNumber map[byte]*Category
	byURL    map[string]*Category
	ordered  []*Category // load order, number ascending
	cumul    []int       // cumulative seed counts, parallel to ordered
	total    int
}

// ErrURLCollision is a Configuration error class failure (spec.md
// §7): two categories loaded the same URL slug.
type ErrURLCollision struct {
	URL          string
	FirstNumber  byte
	SecondNumber byte
}

func (e *ErrURLCollision) Error() string {
	return fmt.Sprintf("category: URL slug %q used by both category %d and %d", e.URL, e.FirstNumber, e.SecondNumber)
}

// LoadOptions configures Load.
type LoadOptions struct {
	SeedDir string
	LD50    time.Duration
}

// fileName returns the expected seed-file path for category number n,
// per spec.md §4.4: <SEED_DIR>/NNN.seeds.gz, zero-padded.
func fileName(seedDir string, n int) string {
	return filepath.Join(seedDir, fmt.Sprintf("%03d.seeds.gz", n))
}

// Load probes category numbers 1..255, loading each one's seed file.
// Any number whose file is missing or fails to parse is silently
// skipped (spec.md §4.6); category 0 is never probed (reserved, per
// spec.md §9). Probing runs concurrently via errgroup, bounded by
// GOMAXPROCS, purely for boot-time fan-out — per-category load
// failure never surfaces as a group error.
func Load(opts LoadOptions) (*Registry, error) {
	type result struct {
		num byte
		cat *Category
	}

	results := make([]*result, 256) // index by number, 0 unused
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for n := 1; n <= 255; n++ {
		n := n
		g.Go(func() error {
			path := fileName(opts.SeedDir, n)
			arc, err := seedarchive.Load(path)
			if err != nil {
				return nil // skip silently, spec.md §4.6
			}
			genInterval := throttle.IssuanceInterval(opts.LD50, arc.Len())
			mu.Lock()
			results[n] = &result{num: byte(n), cat: &Category{
				Number:      byte(n),
				Archive:     arc,
				GenInterval: genInterval,
			}}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := &Registry{
		byNumber: make(map[byte]*Category),
		byURL:    make(map[string]*Category),
	}
	for n := 1; n <= 255; n++ {
		r := results[n]
		if r == nil {
			continue
		}
		if existing, dup := reg.byURL[r.cat.URL()]; dup {
			return nil, &ErrURLCollision{URL: r.cat.URL(), FirstNumber: existing.Number, SecondNumber: r.cat.Number}
		}
		reg.byNumber[r.cat.Number] = r.cat
		reg.byURL[r.cat.URL()] = r.cat
		reg.ordered = append(reg.ordered, r.cat)
		reg.total += r.cat.Archive.Len()
		reg.cumul = append(reg.cumul, reg.total)
	}

	return reg, nil
}

// ByNumber looks up a loaded category by its numeric id.
func (r *Registry) ByNumber(n byte) (*Category, bool) {
	c, ok := r.byNumber[n]
	return c, ok
}

// ByURL looks up a loaded category by its URL slug.
func (r *Registry) ByURL(url string) (*Category, bool) {
	c, ok := r.byURL[url]
	return c, ok
}

// Len returns the number of loaded categories.
func (r *Registry) Len() int { return len(r.ordered) }

// Total returns the combined seed population across all categories.
func (r *Registry) Total() int { return r.total }

// locate returns the category whose cumulative range [C[i-1], C[i])
// contains r, via binary search over the cumulative table (spec.md
// §4.6).
func (reg *Registry) locate(r int) *Category {
	i := sort.Search(len(reg.cumul), func(i int) bool { return r < reg.cumul[i] })
	if i >= len(reg.ordered) {
		i = len(reg.ordered) - 1
	}
	return reg.ordered[i]
}
