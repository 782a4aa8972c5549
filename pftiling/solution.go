package pftiling

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"oss.terrastruct.com/pf/lib/geo"
)

// SizeCount is how many panels of one catalog length a solution uses.
type SizeCount struct {
	Size  float64 `json:"size"`
	Count int     `json:"count"`
}

// Solution is one way to tile an axis. Counts is sorted ascending by Size and
// never holds a zero count.
type Solution struct {
	Counts    []SizeCount `json:"counts"`
	Total     float64     `json:"total"`
	Coverage  float64     `json:"coverage"`
	NumPanels int         `json:"numPanels"`
}

func newSolution(counts map[float64]int, extent, gap float64) Solution {
	sizes := maps.Keys(counts)
	sort.Float64s(sizes)

	s := Solution{}
	sum := 0.
	for _, size := range sizes {
		c := counts[size]
		if c == 0 {
			continue
		}
		s.Counts = append(s.Counts, SizeCount{Size: size, Count: c})
		s.NumPanels += c
		sum += size * float64(c)
	}
	s.Total = totalWithGaps(sum, s.NumPanels, gap)
	s.Coverage = s.Total / extent
	return s
}

func totalWithGaps(sum float64, n int, gap float64) float64 {
	if n == 0 {
		return 0
	}
	return sum + float64(n-1)*gap
}

func (s Solution) DistinctSizes() int {
	return len(s.Counts)
}

// Count returns how many panels of the given size are used.
func (s Solution) Count(size float64) int {
	for _, sc := range s.Counts {
		if sc.Size == size {
			return sc.Count
		}
	}
	return 0
}

// Signature identifies the multiset of lengths, e.g. "24:1,48:4".
func (s Solution) Signature() string {
	parts := make([]string, 0, len(s.Counts))
	for _, sc := range s.Counts {
		parts = append(parts, fmt.Sprintf("%g:%d", sc.Size, sc.Count))
	}
	return strings.Join(parts, ",")
}

// Describe lists counts largest size first, e.g. "4×48 + 1×24".
func (s Solution) Describe() string {
	parts := make([]string, 0, len(s.Counts))
	for i := len(s.Counts) - 1; i >= 0; i-- {
		parts = append(parts, fmt.Sprintf("%d×%g", s.Counts[i].Count, s.Counts[i].Size))
	}
	return strings.Join(parts, " + ")
}

// Lengths expands the multiset, largest first.
func (s Solution) Lengths() []float64 {
	lengths := make([]float64, 0, s.NumPanels)
	for i := len(s.Counts) - 1; i >= 0; i-- {
		for j := 0; j < s.Counts[i].Count; j++ {
			lengths = append(lengths, s.Counts[i].Size)
		}
	}
	return lengths
}

func (s Solution) RankKey() RankKey {
	return RankKey{
		Coverage:      s.Coverage,
		DistinctSizes: s.DistinctSizes(),
		NumPanels:     s.NumPanels,
	}
}

// RankKey is the tie-break chain shared by axis solutions and 2D layouts:
// higher coverage first (within COVERAGE_TOLERANCE), then fewer distinct
// sizes, then fewer panels.
type RankKey struct {
	Coverage      float64
	DistinctSizes int
	NumPanels     int
}

func (k RankKey) Before(other RankKey) bool {
	if c := geo.PrecisionCompare(k.Coverage, other.Coverage, COVERAGE_TOLERANCE); c != 0 {
		return c > 0
	}
	if k.DistinctSizes != other.DistinctSizes {
		return k.DistinctSizes < other.DistinctSizes
	}
	return k.NumPanels < other.NumPanels
}
