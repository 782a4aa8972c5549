package geo

import (
	"math"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

func (p *Point) Translate(dx, dy float64) *Point {
	return NewPoint(p.X+dx, p.Y+dy)
}

// Clamp01 limits v to the unit interval.
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
