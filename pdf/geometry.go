package pdf

import (
	"encoding/json"
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in page coordinate space (origin top-left)
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// NewRect builds a Rect from its four coordinates
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// IsEmpty reports whether the rectangle encloses no area
func (r Rect) IsEmpty() bool {
	return r.X0 >= r.X1 || r.Y0 >= r.Y1
}

// Width returns the horizontal extent, zero for inverted rectangles
func (r Rect) Width() float64 {
	return math.Max(0, r.X1-r.X0)
}

// Height returns the vertical extent, zero for inverted rectangles
func (r Rect) Height() float64 {
	return math.Max(0, r.Y1-r.Y0)
}

// Area returns the enclosed area
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// Expand grows the rectangle by margin on all four sides
func (r Rect) Expand(margin float64) Rect {
	return Rect{X0: r.X0 - margin, Y0: r.Y0 - margin, X1: r.X1 + margin, Y1: r.Y1 + margin}
}

// Contains reports whether o lies entirely inside r (edges inclusive)
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

// Intersect returns the overlapping region, which may be empty
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, o.X0),
		Y0: math.Max(r.Y0, o.Y0),
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
	}
}

// Union returns the smallest rectangle covering both r and o.
// An empty receiver is treated as absent.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// Center returns the midpoint of the rectangle
func (r Rect) Center() (float64, float64) {
	return (r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2
}

// ContainsPoint reports whether (x, y) lies inside r (edges inclusive)
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X0, r.Y0, r.X1, r.Y1)
}

// MarshalJSON encodes the rectangle as [x0, y0, x1, y1]
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X0, r.Y0, r.X1, r.Y1})
}

// UnmarshalJSON decodes a [x0, y0, x1, y1] array
func (r *Rect) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("bbox must be an array of 4 numbers: %w", err)
	}
	if len(coords) != 4 {
		return fmt.Errorf("bbox must have 4 coordinates, got %d", len(coords))
	}
	*r = Rect{X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3]}
	return nil
}

// IntersectPercent returns the fraction of r's area covered by ref.
//
// ref is first grown by tolerance on every side; if the grown rectangle
// fully contains r the result is 1. Otherwise the plain intersection of r
// and ref is measured against r's area. Degenerate (zero-area) r yields 0.
func IntersectPercent(r, ref Rect, tolerance float64) float64 {
	area := r.Area()
	if area <= 0 {
		return 0
	}
	if ref.Expand(tolerance).Contains(r) {
		return 1
	}
	inter := r.Intersect(ref)
	if inter.IsEmpty() {
		return 0
	}
	return inter.Area() / area
}
