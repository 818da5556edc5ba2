package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDragReverseCorner(t *testing.T) {
	r, err := FromDrag(Point{150, 100}, Point{50, 40}, Size{200, 200})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, r.X, 1e-9)
	assert.InDelta(t, 0.2, r.Y, 1e-9)
	assert.InDelta(t, 0.5, r.W, 1e-9)
	assert.InDelta(t, 0.3, r.H, 1e-9)
}

func TestFromDragDirectionIndependent(t *testing.T) {
	size := Size{320, 240}
	corners := []struct{ a, b Point }{
		{Point{10, 20}, Point{300, 200}},
		{Point{0, 0}, Point{320, 240}},
		{Point{160, 0}, Point{0, 240}},
		{Point{5.5, 7.25}, Point{6.5, 8.25}},
	}
	for _, c := range corners {
		fwd, err := FromDrag(c.a, c.b, size)
		require.NoError(t, err)
		rev, err := FromDrag(c.b, c.a, size)
		require.NoError(t, err)
		assert.InDeltaf(t, fwd.X, rev.X, 1e-9, "x for %v", c)
		assert.InDeltaf(t, fwd.Y, rev.Y, 1e-9, "y for %v", c)
		assert.InDeltaf(t, fwd.W, rev.W, 1e-9, "w for %v", c)
		assert.InDeltaf(t, fwd.H, rev.H, 1e-9, "h for %v", c)
		assert.True(t, fwd.Valid())
	}
}

func TestFromDragClampsOutsidePointer(t *testing.T) {
	r, err := FromDrag(Point{100, 100}, Point{450, -30}, Size{200, 200})
	require.NoError(t, err)
	assert.True(t, r.Valid(), "region %+v escaped the unit square", r)
	assert.InDelta(t, 0.5, r.X, 1e-9)
	assert.InDelta(t, 0.0, r.Y, 1e-9)
	assert.InDelta(t, 0.5, r.W, 1e-9)
	assert.InDelta(t, 0.5, r.H, 1e-9)
}

func TestFromDragEmptySurface(t *testing.T) {
	_, err := FromDrag(Point{}, Point{1, 1}, Size{0, 10})
	assert.ErrorIs(t, err, ErrEmptySurface)
}

func TestPixelsRoundTrip(t *testing.T) {
	r := Region{X: 0.25, Y: 0.2, W: 0.5, H: 0.3}
	x0, y0, x1, y1 := r.Pixels(Size{400, 100}).Round()
	assert.Equal(t, []int{100, 20, 300, 50}, []int{x0, y0, x1, y1})
}

func TestClamp(t *testing.T) {
	r := Region{X: 0.9, Y: -0.2, W: 0.5, H: 2}.Clamp()
	assert.True(t, r.Valid())
	assert.InDelta(t, 0.1, r.W, 1e-9)
	assert.InDelta(t, 1.0, r.H, 1e-9)
}
