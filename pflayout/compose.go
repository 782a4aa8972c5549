// Package pflayout combines per-axis tilings into 2D layout options and
// materializes a chosen option into a centered grid of panels.
package pflayout

import (
	"fmt"
	"sort"

	"oss.terrastruct.com/pf/pftiling"
)

// Option is a candidate wall layout: one tiling per axis.
type Option struct {
	Width  pftiling.Solution `json:"width"`
	Height pftiling.Solution `json:"height"`
	// Coverage is the mean of the two axis coverages.
	Coverage  float64 `json:"coverage"`
	NumPanels int     `json:"numPanels"`
	// DistinctSizes counts the distinct width x height panels the wall needs,
	// the product of the per axis counts. Every pairing is a separate panel
	// type to fabricate and stock, so 1 width with 3 heights (3 types) ranks
	// ahead of 2 widths with 2 heights (4 types), which a sum would tie.
	DistinctSizes int    `json:"distinctSizes"`
	Description   string `json:"description"`
}

func newOption(w, h pftiling.Solution) Option {
	o := Option{
		Width:         w,
		Height:        h,
		Coverage:      (w.Coverage + h.Coverage) / 2,
		NumPanels:     w.NumPanels * h.NumPanels,
		DistinctSizes: w.DistinctSizes() * h.DistinctSizes(),
	}
	o.Description = fmt.Sprintf("%d panels: %s wide, %s tall (%.1f%% coverage)",
		o.NumPanels, w.Describe(), h.Describe(), o.Coverage*100)
	return o
}

func (o Option) RankKey() pftiling.RankKey {
	return pftiling.RankKey{
		Coverage:      o.Coverage,
		DistinctSizes: o.DistinctSizes,
		NumPanels:     o.NumPanels,
	}
}

// Compose crosses the best MAX_AXIS_CANDIDATES solutions of each axis and
// ranks the combinations with the same tie-break chain as the axis solver.
// Either list being empty means no layout is possible and yields nil.
func Compose(widths, heights []pftiling.Solution) []Option {
	if len(widths) > MAX_AXIS_CANDIDATES {
		widths = widths[:MAX_AXIS_CANDIDATES]
	}
	if len(heights) > MAX_AXIS_CANDIDATES {
		heights = heights[:MAX_AXIS_CANDIDATES]
	}
	if len(widths) == 0 || len(heights) == 0 {
		return nil
	}

	options := make([]Option, 0, len(widths)*len(heights))
	for _, w := range widths {
		for _, h := range heights {
			options = append(options, newOption(w, h))
		}
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].RankKey().Before(options[j].RankKey())
	})
	if len(options) > MAX_OPTIONS {
		options = options[:MAX_OPTIONS]
	}
	return options
}
