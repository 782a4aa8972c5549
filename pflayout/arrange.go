package pflayout

import (
	"sort"

	"oss.terrastruct.com/pf/pftiling"
)

// ArrangeAxis orders the panels of one axis. The most used length (the larger
// one on a tie) forms a single run in the middle, and every other length is
// an edge piece: the first half of them, rounded up, goes before the run and
// the rest after it, so trim panels sit symmetrically at both edges.
//
//	counts {48:4, 24:2, 12:1}  =>  24 24 | 48 48 48 48 | 12
func ArrangeAxis(counts []pftiling.SizeCount) []float64 {
	if len(counts) == 0 {
		return nil
	}

	dominant := counts[0]
	for _, sc := range counts[1:] {
		if sc.Count > dominant.Count || (sc.Count == dominant.Count && sc.Size > dominant.Size) {
			dominant = sc
		}
	}

	var edges []float64
	for _, sc := range counts {
		if sc.Size == dominant.Size {
			continue
		}
		for i := 0; i < sc.Count; i++ {
			edges = append(edges, sc.Size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(edges)))

	before := (len(edges) + 1) / 2
	arranged := make([]float64, 0, len(edges)+dominant.Count)
	arranged = append(arranged, edges[:before]...)
	for i := 0; i < dominant.Count; i++ {
		arranged = append(arranged, dominant.Size)
	}
	arranged = append(arranged, edges[before:]...)
	return arranged
}
