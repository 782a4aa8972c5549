package pflib

import (
	"context"
	"fmt"
	"image"
	"reflect"

	"cdr.dev/slog"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/pf/lib/log"
	"oss.terrastruct.com/pf/pfconfig"
	"oss.terrastruct.com/pf/pfholes"
	"oss.terrastruct.com/pf/pfimage"
	"oss.terrastruct.com/pf/pflayout"
	"oss.terrastruct.com/pf/pftarget"
	"oss.terrastruct.com/pf/pftiling"
)

// Pipeline caches the output of each stage along with the inputs it was
// computed from, so a run only redoes the stages whose inputs changed. A
// Pipeline is not safe for concurrent use.
type Pipeline struct {
	img      image.Image
	imgDirty bool

	layoutKey *layoutKey
	layout    *layoutStage

	imageKey *imageKey
	field    *pfimage.Field
	stats    *pfimage.Stats

	holesKey *pfholes.Options
	panels   []pftarget.Panel
	lattices []pftarget.Lattice
}

type layoutKey struct {
	wall    pftarget.WallSpec
	widths  []float64
	heights []float64
	option  int
}

type layoutStage struct {
	widths   []pftiling.Solution
	heights  []pftiling.Solution
	options  []pflayout.Option
	selected int
	grid     *pflayout.Grid
}

type imageKey struct {
	opts   pfimage.ProcessOptions
	maxDim int
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// SetImage replaces the source image. The next Run reprocesses it.
func (p *Pipeline) SetImage(img image.Image) {
	p.img = img
	p.imgDirty = true
}

func (p *Pipeline) Run(ctx context.Context, cfg *pfconfig.Config) (_ *Result, err error) {
	defer xdefer.Errorf(&err, "failed to design")
	ctx = log.Named(ctx, "pflib")

	res := &Result{}

	lk := &layoutKey{
		wall:    cfg.Wall,
		widths:  cfg.Panels.Widths,
		heights: cfg.Panels.Heights,
		option:  cfg.SelectedOption(),
	}
	layoutChanged := p.layout == nil || !reflect.DeepEqual(p.layoutKey, lk)
	if layoutChanged {
		stage, err := solveLayout(ctx, lk)
		if err != nil {
			return nil, err
		}
		p.layoutKey = lk
		p.layout = stage
		p.panels = nil
		res.Recomputed = append(res.Recomputed, STAGE_LAYOUT)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ik := &imageKey{
		opts:   cfg.ProcessOptions(),
		maxDim: cfg.Image.MaxDimension,
	}
	imageChanged := p.imgDirty || p.imageKey == nil || *p.imageKey != *ik
	if imageChanged {
		p.field, p.stats = processImage(ctx, p.img, ik)
		p.imageKey = ik
		p.imgDirty = false
		res.Recomputed = append(res.Recomputed, STAGE_IMAGE)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hk := cfg.HoleOptions()
	if layoutChanged || imageChanged || p.panels == nil || !reflect.DeepEqual(p.holesKey, &hk) {
		p.panels, p.lattices = nil, nil
		if p.layout.grid != nil {
			p.panels, p.lattices = pfholes.GenerateAll(p.layout.grid, p.field, hk)
		}
		if p.panels == nil {
			p.panels = []pftarget.Panel{}
		}
		p.holesKey = &hk
		res.Recomputed = append(res.Recomputed, STAGE_APERTURES)
	}

	res.Widths = p.layout.widths
	res.Heights = p.layout.heights
	res.Options = p.layout.options
	res.Selected = p.layout.selected
	res.Field = p.stats
	if p.layout.grid != nil {
		g := *p.layout.grid
		g.Panels = p.panels
		res.Grid = &g
		res.Lattices = p.lattices
	}

	log.Debug(ctx, "designed facade",
		slog.F("recomputed", res.Recomputed),
		slog.F("options", len(res.Options)),
		slog.F("apertures", res.NumApertures()),
	)
	return res, nil
}

func solveLayout(ctx context.Context, k *layoutKey) (*layoutStage, error) {
	s := &layoutStage{
		widths:   pftiling.Solve(k.wall.Width, k.wall.Gap, k.widths),
		heights:  pftiling.Solve(k.wall.Height, k.wall.Gap, k.heights),
		selected: -1,
	}
	s.options = pflayout.Compose(s.widths, s.heights)
	log.Debug(ctx, "solved layout",
		slog.F("widths", len(s.widths)),
		slog.F("heights", len(s.heights)),
		slog.F("options", len(s.options)),
	)
	if len(s.options) == 0 {
		log.Warn(ctx, "no layout fits the wall",
			slog.F("width", k.wall.Width),
			slog.F("height", k.wall.Height),
			slog.F("gap", k.wall.Gap),
		)
		return s, nil
	}
	if k.option >= len(s.options) {
		return nil, fmt.Errorf("layout option %d out of range: only %d options fit the wall", k.option, len(s.options))
	}
	s.selected = k.option
	s.grid = pflayout.Materialize(s.options[s.selected], k.wall)
	return s, nil
}

func processImage(ctx context.Context, img image.Image, k *imageKey) (*pfimage.Field, *pfimage.Stats) {
	if img == nil {
		return nil, nil
	}
	img = pfimage.Fit(img, k.maxDim)
	f := pfimage.Process(img, k.opts)
	stats := f.Stats()
	log.Debug(ctx, "processed image",
		slog.F("width", f.Width),
		slog.F("height", f.Height),
		slog.F("mean", stats.Mean),
	)
	return f, &stats
}
