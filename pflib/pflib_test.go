package pflib_test

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"cdr.dev/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/pf/lib/log"
	"oss.terrastruct.com/pf/pfconfig"
	"oss.terrastruct.com/pf/pflib"
)

const design = `{
  "wall": {"width": 240, "height": 120, "gap": 0.25},
  "panels": {"widths": [24, 48], "heights": [96, 120, 144]},
  "grid": {"spacingX": 4, "margin": 2},
  "apertures": {"threshold": 200, "sizes": [{"diameter": 0.25}, {"diameter": 0.5}, {"diameter": 1}]}
}`

func parse(t *testing.T, s string) *pfconfig.Config {
	cfg, err := pfconfig.Parse([]byte(s))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

// gradient is black on the left and white on the right.
func gradient(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(255 * x / (w - 1))})
		}
	}
	return img
}

func TestDesign(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	res, err := pflib.Design(ctx, parse(t, design), gradient(64, 32))
	require.NoError(t, err)

	assert.Equal(t, []string{pflib.STAGE_LAYOUT, pflib.STAGE_IMAGE, pflib.STAGE_APERTURES}, res.Recomputed)
	require.NotEmpty(t, res.Options)
	assert.Equal(t, 0, res.Selected)
	opt, ok := res.SelectedOption()
	require.True(t, ok)
	assert.Equal(t, "120:1", opt.Height.Signature())

	require.NotNil(t, res.Grid)
	assert.Len(t, res.Lattices, len(res.Grid.Panels))
	assert.Positive(t, res.NumApertures())

	require.NotNil(t, res.Field)
	assert.InDelta(t, 0.5, res.Field.Mean, 0.02)

	// the dark left edge is perforated, the bright right side is not
	assert.NotEmpty(t, res.Grid.Panels[0].Apertures)
	for _, p := range res.Grid.Panels {
		for _, a := range p.Apertures {
			assert.Less(t, p.X+a.X, 200.)
		}
	}
}

func TestDesignWithoutImage(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	res, err := pflib.Design(ctx, parse(t, design), nil)
	require.NoError(t, err)

	require.NotNil(t, res.Grid)
	assert.Nil(t, res.Field)
	assert.Equal(t, 0, res.NumApertures())
}

func TestDesignNoLayout(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	cfg := parse(t, `{
  "wall": {"width": 240, "height": 120},
  "panels": {"widths": [500], "heights": [60]},
  "grid": {"spacingX": 4}
}`)
	res, err := pflib.Design(ctx, cfg, gradient(8, 8))
	require.NoError(t, err)

	assert.Empty(t, res.Widths)
	assert.NotEmpty(t, res.Heights)
	assert.Empty(t, res.Options)
	assert.Equal(t, -1, res.Selected)
	assert.Nil(t, res.Grid)
	_, ok := res.SelectedOption()
	assert.False(t, ok)
	assert.Equal(t, 0, res.NumApertures())
}

type recordSink struct {
	mu      sync.Mutex
	entries []slog.SinkEntry
}

func (s *recordSink) LogEntry(_ context.Context, e slog.SinkEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func (s *recordSink) Sync() {}

func TestDesignNoLayoutWarns(t *testing.T) {
	t.Parallel()

	sink := &recordSink{}
	ctx := log.With(context.Background(), slog.Make(sink))
	cfg := parse(t, `{
  "wall": {"width": 240, "height": 120},
  "panels": {"widths": [500], "heights": [60]},
  "grid": {"spacingX": 4}
}`)
	_, err := pflib.Design(ctx, cfg, nil)
	require.NoError(t, err)

	var warns []slog.SinkEntry
	for _, e := range sink.entries {
		if e.Level == slog.LevelWarn {
			warns = append(warns, e)
		}
	}
	require.Len(t, warns, 1)
	assert.Equal(t, "no layout fits the wall", warns[0].Message)
	assert.Equal(t, []string{"pflib"}, warns[0].LoggerNames)
}

func TestDesignOptionOutOfRange(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	cfg := parse(t, design)
	*cfg.Layout.Option = 99

	_, err := pflib.Design(ctx, cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout option 99 out of range")
}

func TestDesignCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(log.WithTB(context.Background(), t, nil))
	cancel()

	_, err := pflib.Design(ctx, parse(t, design), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	cfg := parse(t, design)
	p := pflib.NewPipeline()
	p.SetImage(gradient(64, 32))

	first, err := p.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{pflib.STAGE_LAYOUT, pflib.STAGE_IMAGE, pflib.STAGE_APERTURES}, first.Recomputed)
	n := first.NumApertures()

	res, err := p.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Empty(t, res.Recomputed)
	assert.Equal(t, first.Grid, res.Grid)

	threshold := 100.
	cfg.Apertures.Threshold = &threshold
	res, err = p.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{pflib.STAGE_APERTURES}, res.Recomputed)
	assert.Less(t, res.NumApertures(), first.NumApertures())

	cfg.Image.Contrast = 30
	res, err = p.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{pflib.STAGE_IMAGE, pflib.STAGE_APERTURES}, res.Recomputed)

	p.SetImage(gradient(16, 16))
	res, err = p.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{pflib.STAGE_IMAGE, pflib.STAGE_APERTURES}, res.Recomputed)

	cfg.Wall.Gap = 0.5
	res, err = p.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{pflib.STAGE_LAYOUT, pflib.STAGE_APERTURES}, res.Recomputed)
	require.NotNil(t, res.Grid)
	assert.NotEqual(t, first.Grid.OffsetX, res.Grid.OffsetX)

	// earlier results are not disturbed by later runs
	assert.Equal(t, n, first.NumApertures())
}
