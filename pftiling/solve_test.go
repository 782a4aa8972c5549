package pftiling_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/pf/pftiling"
)

func signatures(solutions []pftiling.Solution) []string {
	sigs := make([]string, 0, len(solutions))
	for _, s := range solutions {
		sigs = append(sigs, s.Signature())
	}
	return sigs
}

func TestSolveRanking(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		extent float64
		gap    float64
		sizes  []float64
		exp    []string
	}{
		{
			name:   "exact_coverage_tie_breaks",
			extent: 100,
			sizes:  []float64{25, 50},
			exp: []string{
				"50:2",
				"25:4",
				"25:2,50:1",
				"25:3",
				"25:1,50:1",
				"50:1",
				"25:2",
				"25:1",
			},
		},
		{
			name:   "coverage_within_tolerance_prefers_fewer_panels",
			extent: 1000,
			sizes:  []float64{500, 998},
			exp: []string{
				"998:1",
				"500:2",
				"500:1",
			},
		},
		{
			name:   "gaps_count_between_panels",
			extent: 100,
			gap:    1,
			sizes:  []float64{50},
			// 50 + 1 + 50 = 101 <= 100 + 1 + 0.01
			exp: []string{
				"50:2",
				"50:1",
			},
		},
		{
			name:   "overshoot_beyond_one_gap_is_pruned",
			extent: 100,
			gap:    0.5,
			sizes:  []float64{51},
			exp: []string{
				"51:1",
			},
		},
		{
			name:   "duplicate_and_invalid_sizes_ignored",
			extent: 100,
			sizes:  []float64{50, 50, 0, -10},
			exp: []string{
				"50:2",
				"50:1",
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			solutions := pftiling.Solve(tc.extent, tc.gap, tc.sizes)
			assert.Equal(t, tc.exp, signatures(solutions))
		})
	}
}

func TestSolveEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pftiling.Solve(240, 0.25, nil))
	assert.Empty(t, pftiling.Solve(0, 0.25, []float64{24}))
	assert.Empty(t, pftiling.Solve(-10, 0.25, []float64{24}))
	assert.Empty(t, pftiling.Solve(100, 0.25, []float64{200}))
}

func TestSolveCaps(t *testing.T) {
	t.Parallel()

	solutions := pftiling.Solve(240, 0.25, []float64{24, 48})
	assert.Len(t, solutions, pftiling.MAX_SOLUTIONS)

	// a single small size can't be used more than MAX_COUNT_PER_SIZE times
	solutions = pftiling.Solve(100, 0, []float64{1})
	require.NotEmpty(t, solutions)
	assert.Equal(t, pftiling.MAX_COUNT_PER_SIZE, solutions[0].Count(1))
	assert.InDelta(t, 0.3, solutions[0].Coverage, 1e-9)
}

func TestSolveFullHeight(t *testing.T) {
	t.Parallel()

	solutions := pftiling.Solve(120, 0.25, []float64{96, 120, 144})
	require.NotEmpty(t, solutions)
	assert.Equal(t, "120:1", solutions[0].Signature())
	assert.Equal(t, 1., solutions[0].Coverage)
	for _, s := range solutions {
		assert.Zero(t, s.Count(144), "144 can never fit on a 120 wall")
	}
}

func TestSolveProperties(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		extent := 10 + r.Float64()*400
		gap := r.Float64() * 2
		n := 1 + r.Intn(4)
		sizes := make([]float64, n)
		for j := range sizes {
			sizes[j] = math.Round(4+r.Float64()*150) / 2
		}

		solutions := pftiling.Solve(extent, gap, sizes)
		assert.LessOrEqual(t, len(solutions), pftiling.MAX_SOLUTIONS)

		seen := make(map[string]bool)
		for _, s := range solutions {
			assert.LessOrEqualf(t, s.Total, extent+gap+pftiling.FIT_TOLERANCE, "extent=%v gap=%v sizes=%v", extent, gap, sizes)
			assert.False(t, seen[s.Signature()], "duplicate signature %s", s.Signature())
			seen[s.Signature()] = true

			sum := 0.
			panels := 0
			for _, sc := range s.Counts {
				assert.Positive(t, sc.Count)
				assert.LessOrEqual(t, sc.Count, pftiling.MAX_COUNT_PER_SIZE)
				sum += sc.Size * float64(sc.Count)
				panels += sc.Count
			}
			assert.True(t, sort.SliceIsSorted(s.Counts, func(i, j int) bool {
				return s.Counts[i].Size < s.Counts[j].Size
			}))
			assert.Equal(t, panels, s.NumPanels)
			assert.InDelta(t, sum+float64(panels-1)*gap, s.Total, 1e-9)
			assert.InDelta(t, s.Total/extent, s.Coverage, 1e-12)
			assert.Len(t, s.Lengths(), s.NumPanels)
		}
	}
}

func TestSolutionStrings(t *testing.T) {
	t.Parallel()

	s := pftiling.Solution{
		Counts:    []pftiling.SizeCount{{Size: 24, Count: 1}, {Size: 48, Count: 4}},
		NumPanels: 5,
	}
	assert.Equal(t, "24:1,48:4", s.Signature())
	assert.Equal(t, "4×48 + 1×24", s.Describe())
	assert.Equal(t, []float64{48, 48, 48, 48, 24}, s.Lengths())
	assert.Equal(t, 2, s.DistinctSizes())
}

func TestRankKeyBefore(t *testing.T) {
	t.Parallel()

	better := pftiling.RankKey{Coverage: 1, DistinctSizes: 2, NumPanels: 9}
	worse := pftiling.RankKey{Coverage: 0.99, DistinctSizes: 1, NumPanels: 1}
	assert.True(t, better.Before(worse))
	assert.False(t, worse.Before(better))

	a := pftiling.RankKey{Coverage: 0.999, DistinctSizes: 1, NumPanels: 5}
	b := pftiling.RankKey{Coverage: 1.000, DistinctSizes: 2, NumPanels: 2}
	assert.True(t, a.Before(b), "coverage within tolerance falls through to distinct sizes")

	c := pftiling.RankKey{Coverage: 1.000, DistinctSizes: 1, NumPanels: 6}
	assert.True(t, a.Before(c), "then to panel count")
	assert.False(t, a.Before(a))
}
