// Package region holds the normalized selection rectangle shared by every
// preview surface.
package region

import (
	"errors"
	"math"
)

// ErrEmptySurface is returned when a surface has no pixel area to normalize against.
var ErrEmptySurface = errors.New("region: surface has zero width or height")

// Point is a pointer position in a surface's local pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a surface's pixel dimensions.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Empty reports whether the size has no area.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Clamp pins p into [0,W]x[0,H].
func (s Size) Clamp(p Point) Point {
	return Point{
		X: clamp(p.X, 0, float64(s.W)),
		Y: clamp(p.Y, 0, float64(s.H)),
	}
}

// Region is a rectangle in fractional image coordinates, each field in [0,1].
type Region struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Default is the centered box used before the first drag.
func Default() Region {
	return Region{X: 0.4, Y: 0.4, W: 0.2, H: 0.2}
}

// FromDrag builds the region spanned by an anchor and the current pointer on a
// surface of the given size. Negative extents are flipped onto the anchor, so
// the result does not depend on drag direction. Both points are clamped into
// the surface first.
func FromDrag(anchor, current Point, size Size) (Region, error) {
	if size.Empty() {
		return Region{}, ErrEmptySurface
	}
	a := size.Clamp(anchor)
	c := size.Clamp(current)

	x, y := a.X, a.Y
	w := c.X - a.X
	h := c.Y - a.Y
	if w < 0 {
		x += w
		w = -w
	}
	if h < 0 {
		y += h
		h = -h
	}

	fw, fh := float64(size.W), float64(size.H)
	return Region{X: x / fw, Y: y / fh, W: w / fw, H: h / fh}, nil
}

// Valid reports whether r lies inside the unit square.
func (r Region) Valid() bool {
	const eps = 1e-9
	return r.X >= 0 && r.Y >= 0 && r.W >= 0 && r.H >= 0 &&
		r.X+r.W <= 1+eps && r.Y+r.H <= 1+eps
}

// Clamp returns r pinned into the unit square.
func (r Region) Clamp() Region {
	x := clamp(r.X, 0, 1)
	y := clamp(r.Y, 0, 1)
	return Region{
		X: x,
		Y: y,
		W: clamp(r.W, 0, 1-x),
		H: clamp(r.H, 0, 1-y),
	}
}

// Rect is a rectangle in surface pixels.
type Rect struct {
	X, Y, W, H float64
}

// Pixels denormalizes r onto a surface of the given size.
func (r Region) Pixels(size Size) Rect {
	fw, fh := float64(size.W), float64(size.H)
	return Rect{X: r.X * fw, Y: r.Y * fh, W: r.W * fw, H: r.H * fh}
}

// Round returns integer pixel bounds (x0, y0, x1, y1).
func (p Rect) Round() (int, int, int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y)),
		int(math.Round(p.X + p.W)), int(math.Round(p.Y + p.H))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
