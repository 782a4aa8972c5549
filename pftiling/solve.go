// Package pftiling finds ways to cover one linear wall dimension with panels
// from a catalog of manufacturable lengths.
package pftiling

import (
	"sort"
)

// Solve enumerates every multiset of catalog lengths that fits extent once
// joints of width gap are added between neighbours, and returns the best
// MAX_SOLUTIONS of them ranked by RankKey.
//
// An empty result is not an error: it means no catalog length fits.
func Solve(extent, gap float64, sizes []float64) []Solution {
	sizes = normalizeSizes(sizes)
	if extent <= 0 || len(sizes) == 0 {
		return nil
	}

	limit := extent + gap + FIT_TOLERANCE
	counts := make(map[float64]int, len(sizes))
	var candidates []Solution

	// depth-first over sizes, largest first. every leaf is a distinct
	// assignment; the all-zero one is skipped.
	var iter func(i int, sum float64, n int)
	iter = func(i int, sum float64, n int) {
		if i == len(sizes) {
			if n > 0 {
				candidates = append(candidates, newSolution(counts, extent, gap))
			}
			return
		}
		size := sizes[i]
		for c := 0; c <= MAX_COUNT_PER_SIZE; c++ {
			s := sum + size*float64(c)
			if totalWithGaps(s, n+c, gap) > limit {
				// adding more of this size only grows the total
				break
			}
			counts[size] = c
			iter(i+1, s, n+c)
		}
		delete(counts, size)
	}
	iter(0, 0, 0)

	return rank(candidates)
}

func rank(candidates []Solution) []Solution {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RankKey().Before(candidates[j].RankKey())
	})

	seen := make(map[string]struct{}, len(candidates))
	ranked := make([]Solution, 0, MAX_SOLUTIONS)
	for _, c := range candidates {
		sig := c.Signature()
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		ranked = append(ranked, c)
		if len(ranked) == MAX_SOLUTIONS {
			break
		}
	}
	return ranked
}

// normalizeSizes drops non-positive and repeated lengths and sorts the rest
// descending.
func normalizeSizes(sizes []float64) []float64 {
	out := make([]float64, 0, len(sizes))
	seen := make(map[float64]struct{}, len(sizes))
	for _, s := range sizes {
		if s <= 0 {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}
