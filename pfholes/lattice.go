package pfholes

import (
	"math"

	"oss.terrastruct.com/pf/lib/geo"
	"oss.terrastruct.com/pf/pftarget"
)

// latticeSize picks the number of candidate columns and rows for an interior
// of iw x ih.
func latticeSize(iw, ih float64, opts *Options) (cols, rows int) {
	g := opts.Grid
	minSpacing := math.Max(g.MinSpacing, 0)

	if g.Mode == pftarget.MODE_COUNT {
		cols = scaledCount(g.Columns, iw, opts.ReferenceWidth, minSpacing)
		rows = scaledCount(g.Rows, ih, opts.ReferenceHeight, minSpacing)
		return cols, rows
	}

	sx := math.Max(g.SpacingX, minSpacing)
	sy := math.Max(g.SpacingY, minSpacing)
	if sx <= 0 || sy <= 0 {
		return 0, 0
	}
	return int(math.Floor(iw/sx)) + 1, int(math.Floor(ih/sy)) + 1
}

// scaledCount scales a count given for the reference interior to this
// interior so point density stays even across panel sizes, then caps it so
// no two points are closer than minSpacing.
func scaledCount(count int, interior, reference, minSpacing float64) int {
	if count <= 0 {
		return 0
	}
	n := count
	if reference > 0 {
		n = int(math.Round(float64(count) * interior / reference))
	}
	if minSpacing > 0 {
		max := int(math.Floor(interior/minSpacing)) + 1
		if n > max {
			n = max
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// latticePoints lays cols x rows candidate points over interior, edges
// included. A single column or row sits on the interior's center line.
// Staggered lattices shift odd rows right by half a column pitch and drop
// their last point.
func latticePoints(interior *geo.Box, cols, rows int, pattern string) (pftarget.Lattice, []geo.Point) {
	l := pftarget.Lattice{Columns: cols, Rows: rows}
	if cols <= 0 || rows <= 0 {
		return l, nil
	}
	if cols > 1 {
		l.PitchX = interior.Width / float64(cols-1)
	}
	if rows > 1 {
		l.PitchY = interior.Height / float64(rows-1)
	}

	center := interior.Center()
	points := make([]geo.Point, 0, cols*rows)
	for r := 0; r < rows; r++ {
		y := center.Y
		if rows > 1 {
			y = interior.TopLeft.Y + float64(r)*l.PitchY
		}

		if pattern == pftarget.PATTERN_STAGGERED && r%2 == 1 {
			for c := 0; c < cols-1; c++ {
				x := interior.TopLeft.X + (float64(c)+0.5)*l.PitchX
				points = append(points, geo.Point{X: x, Y: y})
			}
			continue
		}

		for c := 0; c < cols; c++ {
			x := center.X
			if cols > 1 {
				x = interior.TopLeft.X + float64(c)*l.PitchX
			}
			points = append(points, geo.Point{X: x, Y: y})
		}
	}
	return l, points
}
