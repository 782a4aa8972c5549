// Package pflib runs a facade design end to end: tiling, layout selection,
// image processing and aperture generation.
package pflib

import (
	"context"
	"image"

	"oss.terrastruct.com/pf/pfconfig"
	"oss.terrastruct.com/pf/pfimage"
	"oss.terrastruct.com/pf/pflayout"
	"oss.terrastruct.com/pf/pftarget"
	"oss.terrastruct.com/pf/pftiling"
)

const (
	STAGE_LAYOUT    = "layout"
	STAGE_IMAGE     = "image"
	STAGE_APERTURES = "apertures"
)

type Result struct {
	Widths  []pftiling.Solution `json:"widths"`
	Heights []pftiling.Solution `json:"heights"`
	Options []pflayout.Option   `json:"options"`
	// Selected indexes Options. -1 when no layout fits the wall.
	Selected int `json:"selected"`

	// Grid holds the selected layout with every panel's apertures filled in.
	Grid     *pflayout.Grid     `json:"grid,omitempty"`
	Lattices []pftarget.Lattice `json:"lattices,omitempty"`
	Field    *pfimage.Stats     `json:"field,omitempty"`

	// Recomputed lists the stages that ran to produce this result.
	Recomputed []string `json:"-"`
}

func (r *Result) NumApertures() int {
	if r.Grid == nil {
		return 0
	}
	return r.Grid.NumApertures()
}

// SelectedOption returns the option the grid was materialized from.
func (r *Result) SelectedOption() (pflayout.Option, bool) {
	if r.Selected < 0 || r.Selected >= len(r.Options) {
		return pflayout.Option{}, false
	}
	return r.Options[r.Selected], true
}

// Design computes a full design from scratch. img may be nil, in which case
// the facade stays solid.
func Design(ctx context.Context, cfg *pfconfig.Config, img image.Image) (*Result, error) {
	p := NewPipeline()
	p.SetImage(img)
	return p.Run(ctx, cfg)
}
