// Package pfconfig reads facade design files.
//
// A design file is JSON:
//
//	{
//	  "wall": {"width": 240, "height": 120, "gap": 0.25},
//	  "panels": {"widths": [24, 48], "heights": [96, 120, 144]},
//	  "image": {"path": "facade.png", "contrast": 20},
//	  "grid": {"mode": "spacing", "spacingX": 4, "margin": 2},
//	  "apertures": {"threshold": 200, "sizes": [{"diameter": 0.5}, {"diameter": 1}]}
//	}
//
// Every section is optional. Missing values are filled by SetDefaults.
package pfconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"oss.terrastruct.com/util-go/go2"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/pf/pfholes"
	"oss.terrastruct.com/pf/pfimage"
	"oss.terrastruct.com/pf/pftarget"
)

const (
	DEFAULT_THRESHOLD = 128.
	DEFAULT_GAMMA     = 1.
)

type Config struct {
	Wall      pftarget.WallSpec `json:"wall"`
	Panels    PanelCatalog      `json:"panels"`
	Layout    LayoutConfig      `json:"layout"`
	Image     ImageConfig       `json:"image"`
	Grid      pftarget.GridSpec `json:"grid"`
	Apertures ApertureConfig    `json:"apertures"`

	// dir is the directory of the design file. Relative image paths resolve
	// against it.
	dir string
}

// PanelCatalog lists the stock panel lengths available on each axis.
type PanelCatalog struct {
	Widths  []float64 `json:"widths"`
	Heights []float64 `json:"heights"`
}

type LayoutConfig struct {
	// Option is the index of the ranked layout option to materialize.
	Option *int `json:"option,omitempty"`
}

type ImageConfig struct {
	Path       string  `json:"path"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Invert     bool    `json:"invert"`
	// MaxDimension downscales the decoded image before processing. 0 keeps it as is.
	MaxDimension int `json:"maxDimension"`
}

type ApertureConfig struct {
	Threshold *float64   `json:"threshold,omitempty"`
	Gamma     *float64   `json:"gamma,omitempty"`
	Sizes     []HoleSize `json:"sizes"`
}

// HoleSize is a catalog entry. Enabled defaults to true.
type HoleSize struct {
	Diameter float64 `json:"diameter"`
	Enabled  *bool   `json:"enabled,omitempty"`
}

// Parse decodes a design file. Unknown fields are rejected so typos surface
// instead of silently falling back to defaults.
func Parse(b []byte) (_ *Config, err error) {
	defer xdefer.Errorf(&err, "failed to parse design")

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	cfg := &Config{}
	err = dec.Decode(cfg)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after design object")
	}
	cfg.SetDefaults()
	return cfg, nil
}

// Load reads, parses and validates the design file at path.
func Load(path string) (_ *Config, err error) {
	defer xdefer.Errorf(&err, "failed to load %q", path)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.SetDir(filepath.Dir(path))
	return cfg, cfg.Validate()
}

func (c *Config) SetDir(dir string) {
	c.dir = dir
}

func (c *Config) SetDefaults() {
	if c.Layout.Option == nil {
		c.Layout.Option = go2.Pointer(0)
	}
	if c.Grid.Mode == "" {
		c.Grid.Mode = pftarget.MODE_SPACING
	}
	if c.Grid.Pattern == "" {
		c.Grid.Pattern = pftarget.PATTERN_RECTANGULAR
	}
	if c.Grid.SpacingY == 0 {
		c.Grid.SpacingY = c.Grid.SpacingX
	}
	if c.Grid.Rows == 0 {
		c.Grid.Rows = c.Grid.Columns
	}
	if c.Apertures.Threshold == nil {
		c.Apertures.Threshold = go2.Pointer(DEFAULT_THRESHOLD)
	}
	if c.Apertures.Gamma == nil {
		c.Apertures.Gamma = go2.Pointer(DEFAULT_GAMMA)
	}
}

// Validate reports every problem with the design at once. Designs that merely
// cannot be tiled or perforated are valid: they produce empty results.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, v ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf(format, v...))
	}

	if c.Wall.Width < 0 || c.Wall.Height < 0 {
		add("wall dimensions must not be negative: %gx%g", c.Wall.Width, c.Wall.Height)
	}
	if c.Wall.Gap < 0 {
		add("wall gap must not be negative: %g", c.Wall.Gap)
	}
	for _, w := range c.Panels.Widths {
		if w <= 0 {
			add("panel width must be positive: %g", w)
		}
	}
	for _, h := range c.Panels.Heights {
		if h <= 0 {
			add("panel height must be positive: %g", h)
		}
	}
	if c.Layout.Option != nil && *c.Layout.Option < 0 {
		add("layout option must not be negative: %d", *c.Layout.Option)
	}

	if c.Image.Brightness < -100 || c.Image.Brightness > 100 {
		add("image brightness must be within [-100, 100]: %g", c.Image.Brightness)
	}
	if c.Image.Contrast < -100 || c.Image.Contrast > 100 {
		add("image contrast must be within [-100, 100]: %g", c.Image.Contrast)
	}
	if c.Image.MaxDimension < 0 {
		add("image maxDimension must not be negative: %d", c.Image.MaxDimension)
	}

	switch c.Grid.Mode {
	case pftarget.MODE_SPACING:
		if c.Grid.SpacingX <= 0 || c.Grid.SpacingY <= 0 {
			add("grid spacing must be positive: %gx%g", c.Grid.SpacingX, c.Grid.SpacingY)
		}
	case pftarget.MODE_COUNT:
		if c.Grid.Columns <= 0 || c.Grid.Rows <= 0 {
			add("grid counts must be positive: %dx%d", c.Grid.Columns, c.Grid.Rows)
		}
	default:
		add("unknown grid mode %q, expected %q or %q", c.Grid.Mode, pftarget.MODE_SPACING, pftarget.MODE_COUNT)
	}
	switch c.Grid.Pattern {
	case pftarget.PATTERN_RECTANGULAR, pftarget.PATTERN_STAGGERED:
	default:
		add("unknown grid pattern %q, expected %q or %q", c.Grid.Pattern, pftarget.PATTERN_RECTANGULAR, pftarget.PATTERN_STAGGERED)
	}
	if c.Grid.MinSpacing < 0 {
		add("grid minSpacing must not be negative: %g", c.Grid.MinSpacing)
	}
	if c.Grid.Margin < 0 {
		add("grid margin must not be negative: %g", c.Grid.Margin)
	}

	if t := c.Apertures.Threshold; t != nil && (*t < 0 || *t > 255) {
		add("aperture threshold must be within [0, 255]: %g", *t)
	}
	if g := c.Apertures.Gamma; g != nil && *g <= 0 {
		add("aperture gamma must be positive: %g", *g)
	}
	for _, s := range c.Apertures.Sizes {
		if s.Diameter <= 0 {
			add("hole diameter must be positive: %g", s.Diameter)
		}
	}
	return errs
}

// ImagePath is the source image path, resolved against the design file's
// directory. Empty when the design has no image.
func (c *Config) ImagePath() string {
	if c.Image.Path == "" || filepath.IsAbs(c.Image.Path) {
		return c.Image.Path
	}
	return filepath.Join(c.dir, c.Image.Path)
}

func (c *Config) HoleCatalog() pftarget.HoleCatalog {
	catalog := pftarget.HoleCatalog{}
	for _, s := range c.Apertures.Sizes {
		catalog.Sizes = append(catalog.Sizes, pftarget.HoleSize{
			Diameter: s.Diameter,
			Enabled:  s.Enabled == nil || *s.Enabled,
		})
	}
	return catalog
}

func (c *Config) ProcessOptions() pfimage.ProcessOptions {
	return pfimage.ProcessOptions{
		Brightness: c.Image.Brightness,
		Contrast:   c.Image.Contrast,
		Invert:     c.Image.Invert,
	}
}

// HoleOptions returns the aperture generation options. The reference panel
// is filled in per grid by pfholes.GenerateAll.
func (c *Config) HoleOptions() pfholes.Options {
	opts := pfholes.Options{
		Grid:      c.Grid,
		Threshold: DEFAULT_THRESHOLD,
		Gamma:     DEFAULT_GAMMA,
		Holes:     c.HoleCatalog(),
		Wall:      c.Wall,
	}
	if c.Apertures.Threshold != nil {
		opts.Threshold = *c.Apertures.Threshold
	}
	if c.Apertures.Gamma != nil {
		opts.Gamma = *c.Apertures.Gamma
	}
	return opts
}

// SelectedOption is the requested layout option index.
func (c *Config) SelectedOption() int {
	if c.Layout.Option == nil {
		return 0
	}
	return *c.Layout.Option
}
