// Package pfimage turns a raster image into a normalized grayscale field and
// samples that field by normalized coordinate.
package pfimage

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Field is a dense brightness map at source resolution. Values are row major,
// each in [0,1], 0 being black.
type Field struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Values []float64 `json:"-"`
}

func NewField(width, height int) *Field {
	return &Field{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// UniformField is a field where every pixel has brightness v.
func UniformField(width, height int, v float64) *Field {
	f := NewField(width, height)
	for i := range f.Values {
		f.Values[i] = v
	}
	return f
}

func (f *Field) Empty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Values) < f.Width*f.Height
}

func (f *Field) At(x, y int) float64 {
	return f.Values[y*f.Width+x]
}

func (f *Field) Set(x, y int, v float64) {
	f.Values[y*f.Width+x] = v
}

type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func (f *Field) Stats() Stats {
	if f.Empty() {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(f.Values, nil)
	s := Stats{
		Mean:   mean,
		StdDev: std,
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}
	if math.IsNaN(s.StdDev) {
		// a single sample has no spread
		s.StdDev = 0
	}
	for _, v := range f.Values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s
}
