package pfimage

import (
	"image"
	"image/color"

	"oss.terrastruct.com/pf/lib/geo"
)

// keeps the contrast factor finite at contrast=100
const CONTRAST_EPSILON = 1e-4

type ProcessOptions struct {
	// Brightness and Contrast range over [-100,100].
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Invert     bool    `json:"invert"`
}

// Process converts img to a Field: Rec. 601 luma, then brightness and
// contrast around mid gray, clamped, then optionally inverted. No resampling
// happens here, see Fit.
func Process(img image.Image, opts ProcessOptions) *Field {
	b := img.Bounds()
	f := NewField(b.Dx(), b.Dy())
	cf := ContrastFactor(opts.Contrast)
	offset := opts.Brightness / 100

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := Luma(img.At(x, y))
			v = geo.Clamp01((v+offset-0.5)*cf + 0.5)
			if opts.Invert {
				v = 1 - v
			}
			f.Set(x-b.Min.X, y-b.Min.Y, v)
		}
	}
	return f
}

func ContrastFactor(contrast float64) float64 {
	return (1 + contrast/100) / (1 - contrast/100 + CONTRAST_EPSILON)
}

// Luma returns the Rec. 601 luma of c in [0,1] over straight (not
// premultiplied) channels.
func Luma(c color.Color) float64 {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return (0.299*float64(n.R) + 0.587*float64(n.G) + 0.114*float64(n.B)) / 0xffff
}
