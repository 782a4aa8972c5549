package pfimage_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/pf/pfimage"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestLuma(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1, pfimage.Luma(color.White), 1e-9)
	assert.InDelta(t, 0, pfimage.Luma(color.Black), 1e-9)
	assert.InDelta(t, 0.299, pfimage.Luma(color.NRGBA{R: 255, A: 255}), 1e-9)
	assert.InDelta(t, 0.587, pfimage.Luma(color.NRGBA{G: 255, A: 255}), 1e-9)
	assert.InDelta(t, 0.114, pfimage.Luma(color.NRGBA{B: 255, A: 255}), 1e-9)
	// straight alpha: a half transparent white is still white
	assert.InDelta(t, 1, pfimage.Luma(color.NRGBA{R: 255, G: 255, B: 255, A: 128}), 1e-9)
}

func TestProcess(t *testing.T) {
	t.Parallel()

	gray := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	mid := 128. / 255

	testCases := []struct {
		name string
		img  image.Image
		opts pfimage.ProcessOptions
		exp  float64
	}{
		{
			name: "identity",
			img:  solid(3, 2, gray),
			exp:  mid,
		},
		{
			name: "brightness_lifts_black",
			img:  solid(3, 2, color.Black),
			opts: pfimage.ProcessOptions{Brightness: 50},
			exp:  0.5,
		},
		{
			name: "brightness_clamps",
			img:  solid(3, 2, color.White),
			opts: pfimage.ProcessOptions{Brightness: 100},
			exp:  1,
		},
		{
			name: "full_contrast_saturates",
			img:  solid(3, 2, gray),
			opts: pfimage.ProcessOptions{Contrast: 100},
			exp:  1,
		},
		{
			name: "negative_contrast_flattens",
			img:  solid(3, 2, color.Black),
			opts: pfimage.ProcessOptions{Contrast: -100},
			exp:  0.5,
		},
		{
			name: "invert",
			img:  solid(3, 2, color.Black),
			opts: pfimage.ProcessOptions{Invert: true},
			exp:  1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := pfimage.Process(tc.img, tc.opts)
			require.Equal(t, 3, f.Width)
			require.Equal(t, 2, f.Height)
			for _, v := range f.Values {
				assert.InDelta(t, tc.exp, v, 1e-3)
				assert.GreaterOrEqual(t, v, 0.)
				assert.LessOrEqual(t, v, 1.)
			}
		})
	}
}

func TestProcessSubImage(t *testing.T) {
	t.Parallel()

	img := solid(4, 4, color.White)
	img.Set(2, 2, color.Black)
	sub := img.SubImage(image.Rect(2, 2, 4, 4))

	f := pfimage.Process(sub, pfimage.ProcessOptions{})
	require.Equal(t, 2, f.Width)
	assert.InDelta(t, 0, f.At(0, 0), 1e-3)
	assert.InDelta(t, 1, f.At(1, 1), 1e-3)
}

func TestSample(t *testing.T) {
	t.Parallel()

	f := pfimage.NewField(2, 2)
	f.Set(0, 0, 0)
	f.Set(1, 0, 1)
	f.Set(0, 1, 1)
	f.Set(1, 1, 0)

	assert.Equal(t, 0., pfimage.Sample(f, 0, 0))
	assert.Equal(t, 1., pfimage.Sample(f, 1, 0))
	assert.Equal(t, 0.5, pfimage.Sample(f, 0.5, 0.5))
	assert.Equal(t, 0.5, pfimage.Sample(f, 0.5, 0))
	assert.Equal(t, 0.25, pfimage.Sample(f, 0.25, 0))
	// out of range coordinates clamp
	assert.Equal(t, pfimage.Sample(f, 0, 0), pfimage.Sample(f, -3, -0.1))
	assert.Equal(t, pfimage.Sample(f, 1, 1), pfimage.Sample(f, 7, 1.5))

	assert.Equal(t, 1., pfimage.Sample(nil, 0.3, 0.3))
	assert.Equal(t, 1., pfimage.Sample(&pfimage.Field{}, 0.3, 0.3))
	assert.Equal(t, 0.2, pfimage.Sample(pfimage.UniformField(1, 1, 0.2), 0.7, 0.1))
}

func TestStats(t *testing.T) {
	t.Parallel()

	f := pfimage.NewField(2, 1)
	f.Set(0, 0, 0.25)
	f.Set(1, 0, 0.75)
	s := f.Stats()
	assert.InDelta(t, 0.5, s.Mean, 1e-12)
	assert.Equal(t, 0.25, s.Min)
	assert.Equal(t, 0.75, s.Max)
	assert.Positive(t, s.StdDev)

	s = pfimage.UniformField(1, 1, 0.4).Stats()
	assert.Equal(t, 0.4, s.Mean)
	assert.Zero(t, s.StdDev)

	assert.Equal(t, pfimage.Stats{}, (*pfimage.Field)(nil).Stats())
}

func TestFit(t *testing.T) {
	t.Parallel()

	img := solid(400, 200, color.White)
	fit := pfimage.Fit(img, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 50), fit.Bounds())

	tall := solid(10, 40, color.White)
	assert.Equal(t, image.Rect(0, 0, 5, 20), pfimage.Fit(tall, 20).Bounds())

	assert.Same(t, img, pfimage.Fit(img, 0))
	assert.Same(t, img, pfimage.Fit(img, 400))
}

func TestDecodeBytes(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, solid(5, 3, color.Black)))

	img, format, err := pfimage.DecodeBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())

	_, _, err = pfimage.DecodeBytes([]byte("not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode image")
}
