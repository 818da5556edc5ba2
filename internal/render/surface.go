// Package render redraws preview surfaces: the latest component image scaled
// to the surface, with the shared selection region stroked on top.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/coreman2200/funtimes-ftmixer/internal/region"
)

// Style controls how the selection overlay is drawn.
type Style struct {
	Stroke      color.NRGBA
	Fill        color.NRGBA
	FillEnabled bool
	LineWidth   int
	Dash        int // on/off run length in pixels; 0 draws a solid line
}

// DefaultStyle matches the console's dashed teal outline with no fill.
func DefaultStyle() Style {
	return Style{
		Stroke:    color.NRGBA{R: 0x4f, G: 0xa0, B: 0x8b, A: 0xff},
		Fill:      color.NRGBA{R: 0x4f, G: 0xa0, B: 0x8b, A: 0x30},
		LineWidth: 2,
		Dash:      5,
	}
}

// ParseColor parses "#rrggbb" (or "#rgb") with the given opacity in [0,1].
func ParseColor(hex string, opacity float64) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("render: bad colour %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(opacity*255 + 0.5)}, nil
}

// Surface clears dst, draws component scaled to dst's bounds (when non-nil),
// then draws the region overlay at dst's resolution.
func Surface(dst *image.RGBA, component image.Image, r region.Region, st Style) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.Transparent, image.Point{}, draw.Src)
	if b.Empty() {
		return
	}

	if component != nil && !component.Bounds().Empty() {
		scaled := imaging.Resize(component, b.Dx(), b.Dy(), imaging.Linear)
		draw.Draw(dst, b, scaled, image.Point{}, draw.Over)
	}

	x0, y0, x1, y1 := r.Pixels(region.Size{W: b.Dx(), H: b.Dy()}).Round()
	rect := image.Rect(x0, y0, x1, y1).Add(b.Min)

	if st.FillEnabled && st.Fill.A > 0 {
		draw.Draw(dst, rect.Intersect(b), &image.Uniform{C: st.Fill}, image.Point{}, draw.Over)
	}
	strokeRect(dst, rect, st)
}

// strokeRect walks the perimeter clockwise from the top-left corner so the dash
// pattern runs continuously around the rectangle.
func strokeRect(dst *image.RGBA, r image.Rectangle, st Style) {
	lw := st.LineWidth
	if lw <= 0 {
		lw = 1
	}
	lo := -lw / 2
	hi := lo + lw

	on := func(d int) bool {
		if st.Dash <= 0 {
			return true
		}
		return (d/st.Dash)%2 == 0
	}
	plot := func(x, y int) {
		for o := lo; o < hi; o++ {
			for p := lo; p < hi; p++ {
				pt := image.Pt(x+o, y+p)
				if pt.In(dst.Bounds()) {
					dst.Set(pt.X, pt.Y, st.Stroke)
				}
			}
		}
	}

	d := 0
	for x := r.Min.X; x < r.Max.X; x++ {
		if on(d) {
			plot(x, r.Min.Y)
		}
		d++
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if on(d) {
			plot(r.Max.X, y)
		}
		d++
	}
	for x := r.Max.X; x > r.Min.X; x-- {
		if on(d) {
			plot(x, r.Max.Y)
		}
		d++
	}
	for y := r.Max.Y; y > r.Min.Y; y-- {
		if on(d) {
			plot(r.Min.X, y)
		}
		d++
	}
}
