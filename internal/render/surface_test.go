package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ftmixer/internal/region"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSurfaceScalesComponentAndStrokes(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	grey := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	st := DefaultStyle()
	st.LineWidth = 1

	Surface(dst, solid(8, 8, grey), region.Region{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}, st)

	// background comes from the scaled component
	assert.Equal(t, grey, dst.RGBAAt(2, 2))
	// dash starts on at the top-left corner
	assert.Equal(t, color.RGBA{R: 0x4f, G: 0xa0, B: 0x8b, A: 0xff}, dst.RGBAAt(10, 10))
	// pixels 5..9 along the top edge fall in the first gap
	assert.Equal(t, grey, dst.RGBAAt(17, 10))
	// inside the rectangle stays untouched without fill
	assert.Equal(t, grey, dst.RGBAAt(20, 20))
}

func TestSurfaceClearsWithoutComponent(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range dst.Pix {
		dst.Pix[i] = 0xff
	}
	Surface(dst, nil, region.Region{}, DefaultStyle())
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(9, 9))
}

func TestSurfaceFill(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	st := DefaultStyle()
	st.FillEnabled = true
	st.Fill = color.NRGBA{R: 255, A: 255}
	Surface(dst, nil, region.Region{X: 0, Y: 0, W: 1, H: 1}, st)
	assert.Equal(t, uint8(255), dst.RGBAAt(10, 10).R)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#4fa08b", 1)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x4f, G: 0xa0, B: 0x8b, A: 0xff}, c)

	c, err = ParseColor("#ff0000", 0.5)
	require.NoError(t, err)
	assert.Equal(t, uint8(128), c.A)

	_, err = ParseColor("teal", 1)
	assert.Error(t, err)
}
