package geo

import (
	"testing"
)

func TestBoxInset(t *testing.T) {
	b := NewBox(NewPoint(10, 20), 48, 120)
	inner := b.Inset(2)

	if *inner.TopLeft != (Point{12, 22}) || inner.Width != 44 || inner.Height != 116 {
		t.Fatalf("unexpected inset box %+v at %+v", inner, inner.TopLeft)
	}
	if inner.IsEmpty() {
		t.Fatalf("inset box should not be empty")
	}
	if !b.Inset(24).IsEmpty() {
		t.Fatalf("box inset by half its width should be empty")
	}
}

func TestBoxContains(t *testing.T) {
	b := NewBox(NewPoint(0, 0), 10, 5)

	if !b.Contains(NewPoint(0, 0)) || !b.Contains(NewPoint(10, 5)) {
		t.Fatalf("edges must be contained")
	}
	if b.Contains(NewPoint(10.001, 2)) || b.Contains(NewPoint(3, -0.001)) {
		t.Fatalf("points outside must not be contained")
	}
}

func TestPrecisionCompare(t *testing.T) {
	if PrecisionCompare(0.9, 0.902, 0.003) != 0 {
		t.Fatalf("values within precision should be equal")
	}
	if PrecisionCompare(0.9, 0.91, 0.003) != -1 {
		t.Fatalf("expected -1")
	}
	if PrecisionCompare(0.91, 0.9, 0.003) != 1 {
		t.Fatalf("expected 1")
	}
}
