// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package category

import (
	"testing"
	"time"
)

func TestPickWeightedByPopulation(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, 1, "small", "Small", 1)
	writeSeedFile(t, dir, 2, "big", "Big", 999)

	reg, err := Load(LoadOptions{SeedDir: dir, LD50: time.Hour})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	counts := map[byte]int{}
	const trials = 2000
	for i := 0; i < trials; i++ {
		c, err := reg.Pick()
		if err != nil {
			t.Fatalf("Pick: %v", err)
		}
		counts[c.Number]++
	}

	if counts[2] < counts[1]*10 {
		t.Fatalf("expected category 2 (999 seeds) to dominate category 1 (1 seed), got %v", counts)
	}
}

func TestPickEmptyRegistry(t *testing.T) {
	reg := &Registry{byNumber: map[byte]*Category{}, byURL: map[string]*Category{}}
	if _, err := reg.Pick(); err != ErrNoCategories {
		t.Fatalf("Pick on empty registry = %v, want ErrNoCategories", err)
	}
}

func TestPickFromResolvesSlug(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, 1, "only-slug", "Only", 5)
	reg, err := Load(LoadOptions{SeedDir: dir, LD50: time.Hour})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, ok := reg.PickFrom("only-slug")
	if !ok || c.Number != 1 {
		t.Fatalf("PickFrom(only-slug) = %+v, %v", c, ok)
	}
	if _, ok := reg.PickFrom("missing"); ok {
		t.Fatalf("expected PickFrom(missing) to fail")
	}
}
