package controls

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boundPanel() (*Panel, *Table) {
	p := NewPanel("magnitude_phase", "inner", []string{"magnitude", "phase"})
	t := NewTable()
	p.Bind(t)
	return p, t
}

func TestPanelBindsEveryRequiredControl(t *testing.T) {
	_, tbl := boundPanel()
	require.NoError(t, tbl.Validate(Required()))
	assert.Len(t, tbl.IDs(), len(Required()))
}

func TestValidateReportsAllMissing(t *testing.T) {
	tbl := NewTable()
	tbl.BindText(ModeID, TextBinding{Get: func() string { return "" }, Set: func(string) {}})
	err := tbl.Validate([]ID{ModeID, SliderID(1, 1), RadioID(2, 4)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbound)
	assert.Contains(t, err.Error(), "slider1_img1")
	assert.Contains(t, err.Error(), "r2_img4")
}

func TestSetConvertsLooseValues(t *testing.T) {
	p, tbl := boundPanel()

	require.NoError(t, tbl.Set(SliderID(1, 2), "42"))
	require.NoError(t, tbl.Set(SliderID(2, 3), 250.0))
	require.NoError(t, tbl.Set(RadioID(1, 4), "outer"))
	require.NoError(t, tbl.Set(SelectID(1), 1.0))
	require.NoError(t, tbl.Set(RegionEnabledID, false))

	assert.Equal(t, 42.0, p.Sliders[0][1])
	assert.Equal(t, 100.0, p.Sliders[1][2], "slider clamps to its range")
	assert.Equal(t, "outer", p.Radios[0][3])
	assert.Equal(t, "phase", p.SelectedOption(1))
	assert.False(t, p.RegionEnabled)

	assert.ErrorIs(t, tbl.Set("nope", 1.0), ErrUnbound)
	assert.Error(t, tbl.Set(SliderID(1, 1), "abc"))
	assert.Error(t, tbl.Set(ModeID, 3.0))

	for _, v := range []any{"NaN", "+Inf", math.Inf(-1), math.NaN()} {
		assert.ErrorIs(t, tbl.Set(SliderID(1, 1), v), ErrNotFinite, "%v", v)
		assert.ErrorIs(t, tbl.Set(SelectID(2), v), ErrNotFinite, "%v", v)
	}
	assert.Zero(t, p.Sliders[0][0])
	assert.Equal(t, 0, p.Selected[1])
}

func TestUnboundAccessIsSkipped(t *testing.T) {
	tbl := NewTable()
	assert.False(t, tbl.SetFloat(SliderID(1, 1), 3))
	_, ok := tbl.Text(ModeID)
	assert.False(t, ok)
}

func TestSelectOutOfRangeResets(t *testing.T) {
	p, tbl := boundPanel()
	tbl.SetIndex(SelectID(2), 7)
	assert.Equal(t, 0, p.Selected[1])
}
