package geo

type Box struct {
	TopLeft *Point
	Width   float64
	Height  float64
}

func NewBox(tl *Point, width, height float64) *Box {
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

func (b *Box) Center() *Point {
	return NewPoint(b.TopLeft.X+b.Width/2, b.TopLeft.Y+b.Height/2)
}

func (b *Box) Area() float64 {
	return b.Width * b.Height
}

// Inset shrinks the box by d on every side. The result may have non-positive
// dimensions, which callers treat as an empty box.
func (b *Box) Inset(d float64) *Box {
	return NewBox(b.TopLeft.Translate(d, d), b.Width-2*d, b.Height-2*d)
}

func (b *Box) IsEmpty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

// Contains reports whether p lies inside b, edges included.
func (b *Box) Contains(p *Point) bool {
	return p.X >= b.TopLeft.X && p.X <= b.TopLeft.X+b.Width &&
		p.Y >= b.TopLeft.Y && p.Y <= b.TopLeft.Y+b.Height
}
