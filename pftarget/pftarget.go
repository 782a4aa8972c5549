// Package pftarget holds the value types shared by every stage of a facade
// design: the caller-owned configuration records and the panels and apertures
// derived from them.
package pftarget

import (
	"fmt"
	"sort"

	"oss.terrastruct.com/pf/lib/geo"
)

const (
	MODE_SPACING = "spacing"
	MODE_COUNT   = "count"

	PATTERN_RECTANGULAR = "rectangular"
	PATTERN_STAGGERED   = "staggered"
)

// WallSpec is the physical wall being clad. Lengths are in the caller's units.
type WallSpec struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Gap is the joint left between neighbouring panels.
	Gap float64 `json:"gap"`
}

type GridSpec struct {
	Mode string `json:"mode"`
	// Used when Mode is MODE_SPACING.
	SpacingX float64 `json:"spacingX"`
	SpacingY float64 `json:"spacingY"`
	// Used when Mode is MODE_COUNT. Counts apply to the reference panel and
	// are scaled for every other panel.
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
	// MinSpacing is the structural minimum pitch between aperture centers.
	MinSpacing float64 `json:"minSpacing"`
	Pattern    string  `json:"pattern"`
	Margin     float64 `json:"margin"`
}

type HoleSize struct {
	Diameter float64 `json:"diameter"`
	Enabled  bool    `json:"enabled"`
}

type HoleCatalog struct {
	Sizes []HoleSize `json:"sizes"`
}

// Diameters returns the enabled diameters in ascending order.
func (c HoleCatalog) Diameters() []float64 {
	var ds []float64
	for _, s := range c.Sizes {
		if s.Enabled && s.Diameter > 0 {
			ds = append(ds, s.Diameter)
		}
	}
	sort.Float64s(ds)
	return ds
}

// NewHoleCatalog enables every given diameter.
func NewHoleCatalog(diameters ...float64) HoleCatalog {
	c := HoleCatalog{}
	for _, d := range diameters {
		c.Sizes = append(c.Sizes, HoleSize{Diameter: d, Enabled: true})
	}
	return c
}

// Aperture is a single hole, positioned relative to the top left corner of
// its panel.
type Aperture struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Diameter float64 `json:"diameter"`
}

func (a Aperture) Center() *geo.Point {
	return geo.NewPoint(a.X, a.Y)
}

type Panel struct {
	// ID is the row letter followed by the column number, e.g. "B2".
	ID        string  `json:"id"`
	SizeLabel string  `json:"sizeLabel"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Column    int     `json:"column"`
	Row       int     `json:"row"`

	Apertures []Aperture `json:"apertures"`
}

// Box is the panel rectangle in wall coordinates.
func (p Panel) Box() *geo.Box {
	return geo.NewBox(geo.NewPoint(p.X, p.Y), p.Width, p.Height)
}

// LocalBox is the panel rectangle in its own coordinates.
func (p Panel) LocalBox() *geo.Box {
	return geo.NewBox(geo.NewPoint(0, 0), p.Width, p.Height)
}

// Interior is the local rectangle left for apertures once margin is kept clear.
func (p Panel) Interior(margin float64) *geo.Box {
	return p.LocalBox().Inset(margin)
}

// WithApertures returns a copy of p whose aperture list is replaced by as.
func (p Panel) WithApertures(as []Aperture) Panel {
	p.Apertures = as
	return p
}

func SizeLabel(width, height float64) string {
	return fmt.Sprintf("%gx%g", width, height)
}

// Lattice describes the candidate aperture grid chosen for one panel.
type Lattice struct {
	Columns int     `json:"columns"`
	Rows    int     `json:"rows"`
	PitchX  float64 `json:"pitchX"`
	PitchY  float64 `json:"pitchY"`
}
