// Package pfholes halftones a grayscale field onto panels: every point of a
// per-panel lattice that is dark enough becomes an aperture whose diameter,
// snapped to the hole catalog, grows with darkness.
package pfholes

import (
	"math"

	"oss.terrastruct.com/pf/lib/geo"
	"oss.terrastruct.com/pf/pfimage"
	"oss.terrastruct.com/pf/pflayout"
	"oss.terrastruct.com/pf/pftarget"
)

// lattice points on a panel edge must survive float error in the pitch
const BOUNDS_TOLERANCE = 1e-9

type Options struct {
	Grid pftarget.GridSpec
	// Threshold in [0,255]: points brighter than Threshold/255 stay solid.
	Threshold float64
	// Gamma shapes darkness before it is mapped to a diameter. Values below 1
	// favour larger holes, above 1 smaller ones. Non-positive means 1.
	Gamma float64
	Holes pftarget.HoleCatalog
	Wall  pftarget.WallSpec

	// Interior size of the reference panel. Only used with MODE_COUNT.
	ReferenceWidth  float64
	ReferenceHeight float64
}

// Generate returns the apertures of one panel, in lattice order, along with
// the lattice that was sampled. The field is addressed in wall coordinates so
// the image spans the whole facade.
func Generate(panel pftarget.Panel, field *pfimage.Field, opts *Options) ([]pftarget.Aperture, pftarget.Lattice) {
	diameters := opts.Holes.Diameters()
	if len(diameters) == 0 || opts.Wall.Width <= 0 || opts.Wall.Height <= 0 {
		return nil, pftarget.Lattice{}
	}
	interior := panel.Interior(opts.Grid.Margin)
	if interior.IsEmpty() {
		return nil, pftarget.Lattice{}
	}

	cols, rows := latticeSize(interior.Width, interior.Height, opts)
	lattice, points := latticePoints(interior, cols, rows, opts.Grid.Pattern)

	gamma := opts.Gamma
	if gamma <= 0 {
		gamma = 1
	}
	bounds := panel.LocalBox().Inset(-BOUNDS_TOLERANCE)

	apertures := make([]pftarget.Aperture, 0, len(points))
	for i := range points {
		p := &points[i]
		if !bounds.Contains(p) {
			continue
		}
		u := (panel.X + p.X) / opts.Wall.Width
		v := (panel.Y + p.Y) / opts.Wall.Height
		d, ok := Diameter(pfimage.Sample(field, u, v), opts.Threshold, gamma, diameters)
		if !ok {
			continue
		}
		apertures = append(apertures, pftarget.Aperture{X: p.X, Y: p.Y, Diameter: d})
	}
	return apertures, lattice
}

// GenerateAll returns copies of the grid's panels with their apertures
// replaced, and the lattice used for each. The reference panel for
// MODE_COUNT is the grid's largest panel.
func GenerateAll(g *pflayout.Grid, field *pfimage.Field, opts Options) ([]pftarget.Panel, []pftarget.Lattice) {
	if ref, ok := g.ReferencePanel(); ok {
		interior := ref.Interior(opts.Grid.Margin)
		opts.ReferenceWidth = interior.Width
		opts.ReferenceHeight = interior.Height
	}

	panels := make([]pftarget.Panel, 0, len(g.Panels))
	lattices := make([]pftarget.Lattice, 0, len(g.Panels))
	for _, p := range g.Panels {
		as, l := Generate(p, field, &opts)
		panels = append(panels, p.WithApertures(as))
		lattices = append(lattices, l)
	}
	return panels, lattices
}

// Diameter maps a sampled brightness to a catalog diameter. ok is false when
// the point is too bright for an aperture. diameters must be non-empty and
// ascending.
func Diameter(brightness, threshold, gamma float64, diameters []float64) (d float64, ok bool) {
	if brightness*255 > threshold {
		return 0, false
	}
	t := 1.
	if threshold > 0 {
		t = geo.Clamp01(1 - brightness/(threshold/255))
	}
	t = math.Pow(t, gamma)
	raw := geo.Lerp(diameters[0], diameters[len(diameters)-1], t)
	return Snap(raw, diameters), true
}

// Snap returns the diameter closest to raw. When two are equally close the
// first one, i.e. the smaller, wins.
func Snap(raw float64, diameters []float64) float64 {
	best := diameters[0]
	bestDist := math.Abs(raw - best)
	for _, d := range diameters[1:] {
		if dist := math.Abs(raw - d); dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best
}
