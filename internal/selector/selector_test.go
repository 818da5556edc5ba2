package selector

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ftmixer/internal/region"
	"github.com/coreman2200/funtimes-ftmixer/internal/render"
)

func newFour(p Policy) *Selector {
	s := New(region.Default(), p, render.DefaultStyle())
	for id := SurfaceID(1); id <= 4; id++ {
		s.Register(id, region.Size{W: 200, H: 200})
	}
	return s
}

func TestDragLifecycle(t *testing.T) {
	s := newFour(Policy{})
	assert.Equal(t, Idle, s.State())

	started, ended := s.BeginDrag(1, region.Point{X: 150, Y: 100})
	require.True(t, started)
	assert.False(t, ended)
	assert.Equal(t, Dragging, s.State())

	r, ok := s.UpdateDrag(region.Point{X: 50, Y: 40})
	require.True(t, ok)
	assert.InDelta(t, 0.25, r.X, 1e-9)
	assert.InDelta(t, 0.2, r.Y, 1e-9)
	assert.InDelta(t, 0.5, r.W, 1e-9)
	assert.InDelta(t, 0.3, r.H, 1e-9)

	assert.True(t, s.EndDrag())
	assert.Equal(t, Idle, s.State())
	assert.False(t, s.EndDrag(), "second release is a no-op")
	assert.Equal(t, r, s.Region())
}

func TestUnknownSurfaceIsNoop(t *testing.T) {
	s := newFour(Policy{})
	started, _ := s.BeginDrag(9, region.Point{})
	assert.False(t, started)
	_, ok := s.UpdateDrag(region.Point{X: 10, Y: 10})
	assert.False(t, ok)
	assert.Equal(t, region.Default(), s.Region())
}

func TestSecondPressIgnoredByDefault(t *testing.T) {
	s := newFour(Policy{})
	s.BeginDrag(1, region.Point{X: 0, Y: 0})
	started, ended := s.BeginDrag(2, region.Point{X: 100, Y: 100})
	assert.False(t, started)
	assert.False(t, ended)
	id, dragging := s.Active()
	assert.True(t, dragging)
	assert.Equal(t, SurfaceID(1), id)
}

func TestSecondPressCancelsWhenConfigured(t *testing.T) {
	s := newFour(Policy{CancelOnSecondPress: true})
	s.BeginDrag(1, region.Point{X: 0, Y: 0})
	started, ended := s.BeginDrag(2, region.Point{X: 100, Y: 100})
	assert.True(t, started)
	assert.True(t, ended)
	id, _ := s.Active()
	assert.Equal(t, SurfaceID(2), id)
}

func TestLeavePolicy(t *testing.T) {
	s := newFour(Policy{})
	s.BeginDrag(3, region.Point{})
	assert.False(t, s.Leave(3))
	assert.Equal(t, Dragging, s.State())

	s = newFour(Policy{EndOnLeave: true})
	s.BeginDrag(3, region.Point{})
	assert.False(t, s.Leave(1), "leaving another surface does not end the drag")
	assert.True(t, s.Leave(3))
	assert.Equal(t, Idle, s.State())
}

func TestRedrawUsesEachSurfaceResolution(t *testing.T) {
	s := New(region.Region{X: 0, Y: 0, W: 0.5, H: 0.5}, Policy{}, render.DefaultStyle())
	s.Register(1, region.Size{W: 20, H: 20})
	s.Register(2, region.Size{W: 80, H: 40})
	s.Redraw()

	stroke := color.RGBA{R: 0x4f, G: 0xa0, B: 0x8b, A: 0xff}
	f1, ok := s.Frame(1)
	require.True(t, ok)
	f2, ok := s.Frame(2)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 20, 20), f1.Bounds())
	assert.Equal(t, image.Rect(0, 0, 80, 40), f2.Bounds())
	// right edge at half width on each surface
	assert.Equal(t, stroke, f1.RGBAAt(10, 1))
	assert.Equal(t, stroke, f2.RGBAAt(40, 1))
}

func TestSetComponentRedraws(t *testing.T) {
	s := newFour(Policy{})
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	s.SetComponent(2, img)
	f, _ := s.Frame(2)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, f.RGBAAt(0, 199))
	s.SetComponent(42, img)
}
