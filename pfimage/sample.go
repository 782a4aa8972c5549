package pfimage

import (
	"math"

	"oss.terrastruct.com/pf/lib/geo"
)

// Sample returns the bilinearly interpolated brightness at normalized
// coordinates (u,v), each clamped to [0,1]. Without a field everything is
// fully lit.
func Sample(f *Field, u, v float64) float64 {
	if f.Empty() {
		return 1
	}
	x := geo.Clamp01(u) * float64(f.Width-1)
	y := geo.Clamp01(v) * float64(f.Height-1)

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	if x1 > f.Width-1 {
		x1 = f.Width - 1
	}
	y1 := y0 + 1
	if y1 > f.Height-1 {
		y1 = f.Height - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	top := geo.Lerp(f.At(x0, y0), f.At(x1, y0), fx)
	bottom := geo.Lerp(f.At(x0, y1), f.At(x1, y1), fx)
	return geo.Lerp(top, bottom, fy)
}
