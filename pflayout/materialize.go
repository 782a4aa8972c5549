package pflayout

import (
	"strconv"

	"oss.terrastruct.com/pf/pftarget"
)

// Grid is a materialized layout. Panels are ordered row by row, top to
// bottom, left to right.
type Grid struct {
	Panels []pftarget.Panel `json:"panels"`
	// Columns and Rows are the arranged panel lengths along each axis.
	Columns    []float64 `json:"columns"`
	Rows       []float64 `json:"rows"`
	OffsetX    float64   `json:"offsetX"`
	OffsetY    float64   `json:"offsetY"`
	SpanWidth  float64   `json:"spanWidth"`
	SpanHeight float64   `json:"spanHeight"`
}

// Materialize places the panels of opt on the wall. The grid is centered on
// both axes; any wall left uncovered becomes an even margin around it.
func Materialize(opt Option, wall pftarget.WallSpec) *Grid {
	g := &Grid{
		Columns: ArrangeAxis(opt.Width.Counts),
		Rows:    ArrangeAxis(opt.Height.Counts),
	}
	g.SpanWidth = span(g.Columns, wall.Gap)
	g.SpanHeight = span(g.Rows, wall.Gap)
	g.OffsetX = (wall.Width - g.SpanWidth) / 2
	g.OffsetY = (wall.Height - g.SpanHeight) / 2

	g.Panels = make([]pftarget.Panel, 0, len(g.Columns)*len(g.Rows))
	y := g.OffsetY
	for row, height := range g.Rows {
		x := g.OffsetX
		for col, width := range g.Columns {
			g.Panels = append(g.Panels, pftarget.Panel{
				ID:        RowLabel(row) + strconv.Itoa(col+1),
				SizeLabel: pftarget.SizeLabel(width, height),
				X:         x,
				Y:         y,
				Width:     width,
				Height:    height,
				Column:    col,
				Row:       row,
			})
			x += width + wall.Gap
		}
		y += height + wall.Gap
	}
	return g
}

func span(lengths []float64, gap float64) float64 {
	if len(lengths) == 0 {
		return 0
	}
	total := 0.
	for _, l := range lengths {
		total += l
	}
	return total + float64(len(lengths)-1)*gap
}

// RowLabel names rows A..Z, then AA, AB and so on.
func RowLabel(row int) string {
	label := ""
	for n := row + 1; n > 0; n = (n - 1) / 26 {
		label = string(rune('A'+(n-1)%26)) + label
	}
	return label
}

// ReferencePanel returns the largest panel by area, the first one on a tie.
// Aperture counts given for the whole wall are specified against it.
func (g *Grid) ReferencePanel() (pftarget.Panel, bool) {
	if len(g.Panels) == 0 {
		return pftarget.Panel{}, false
	}
	ref := g.Panels[0]
	for _, p := range g.Panels[1:] {
		if p.Box().Area() > ref.Box().Area() {
			ref = p
		}
	}
	return ref, true
}

// Panel looks a panel up by ID.
func (g *Grid) Panel(id string) (pftarget.Panel, bool) {
	for _, p := range g.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return pftarget.Panel{}, false
}

func (g *Grid) NumApertures() int {
	n := 0
	for _, p := range g.Panels {
		n += len(p.Apertures)
	}
	return n
}
