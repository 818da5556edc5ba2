package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ftmixer/internal/controls"
	"github.com/coreman2200/funtimes-ftmixer/internal/mix"
	"github.com/coreman2200/funtimes-ftmixer/internal/region"
)

func setup() (*controls.Panel, *controls.Table, *Cache) {
	p := controls.NewPanel(string(mix.MagnitudePhase), string(mix.Inner), mix.Options(mix.MagnitudePhase))
	t := controls.NewTable()
	p.Bind(t)
	return p, t, NewCache(t)
}

func TestSwitchRoundTrip(t *testing.T) {
	panel, tbl, c := setup()
	tbl.SetFloat(controls.SliderID(1, 1), 80)
	tbl.SetFloat(controls.SliderID(2, 4), 15)
	tbl.SetText(controls.RadioID(2, 3), "outer")
	tbl.SetText(controls.ModeID, string(mix.RealImaginary))
	before := *panel

	require.NoError(t, c.SwitchTo(Port2))
	assert.Equal(t, Port2, c.Active())
	assert.Equal(t, 0.0, panel.Sliders[0][0], "port 2 starts from defaults")
	assert.Equal(t, string(mix.MagnitudePhase), panel.Mode)

	require.NoError(t, c.SwitchTo(Port1))
	assert.Equal(t, before.Sliders, panel.Sliders)
	assert.Equal(t, before.Radios, panel.Radios)
	assert.Equal(t, before.Mode, panel.Mode)
}

func TestCaptureApplyIdempotent(t *testing.T) {
	panel, tbl, c := setup()
	tbl.SetFloat(controls.SliderID(1, 2), 33)
	tbl.SetText(controls.RadioID(1, 2), "outer")

	s := c.CaptureActive()
	c.ApplyToControls(s)
	once := *panel
	c.ApplyToControls(s)
	assert.Equal(t, once, *panel)
	assert.Equal(t, s, c.CaptureActive())
}

func TestPortsNeverAlias(t *testing.T) {
	_, tbl, c := setup()
	p2, err := c.Get(Port2)
	require.NoError(t, err)

	tbl.SetFloat(controls.SliderID(1, 1), 99)
	tbl.SetText(controls.RadioID(1, 1), "outer")
	c.CaptureActive()

	got, _ := c.Get(Port2)
	assert.Equal(t, p2, got)

	s, _ := c.Get(Port1)
	s.Sliders1[1] = 12
	stored, _ := c.Get(Port1)
	assert.Equal(t, 0.0, stored.Sliders1[1], "Get returns a copy")
}

func TestUnknownPort(t *testing.T) {
	_, _, c := setup()
	assert.ErrorIs(t, c.SwitchTo(3), ErrUnknownPort)
	_, err := c.Get(0)
	assert.ErrorIs(t, err, ErrUnknownPort)
	assert.Equal(t, Port1, c.Active())
}

func TestApplyToleratesMissingControls(t *testing.T) {
	c := NewCache(controls.NewTable())
	assert.NotPanics(t, func() {
		c.ApplyToControls(DefaultState())
		c.CaptureActive()
		_ = c.SwitchTo(Port2)
	})
}

func TestRequestScalesWeights(t *testing.T) {
	s := DefaultState()
	s.Sliders1 = [mix.Slots]float64{100, 50, 0, 25}
	s.Radios2[3] = mix.Outer
	req := s.Request(3, Port2, region.Region{X: 0.25, Y: 0.2, W: 0.5, H: 0.3}, true)

	assert.Equal(t, uint64(3), req.RequestID)
	assert.Equal(t, 2, req.Port)
	assert.Equal(t, [mix.Slots]float64{1, 0.5, 0, 0.25}, req.Weights1)
	assert.Equal(t, mix.Outer, req.RegionSettings2[3])
	assert.Equal(t, 0.5, req.Region.Width)
	assert.True(t, req.RegionEnabled)
}
