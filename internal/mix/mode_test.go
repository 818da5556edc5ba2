package mix

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ftmixer/internal/region"
)

func TestLabelsPerMode(t *testing.T) {
	a, b := Labels(MagnitudePhase)
	assert.Equal(t, "Magnitude", a)
	assert.Equal(t, "Phase", b)

	a, b = Labels(RealImaginary)
	assert.Equal(t, "Real", a)
	assert.Equal(t, "Imaginary", b)
}

func TestReselectKeepsIndexInRange(t *testing.T) {
	// selector on "Phase" (index 1) survives a switch to real/imaginary
	idx := Reselect(1, len(Components(RealImaginary)))
	assert.Equal(t, 1, idx)
	assert.Equal(t, Imaginary, Components(RealImaginary)[idx])

	assert.Equal(t, 0, Reselect(2, 2))
	assert.Equal(t, 0, Reselect(-1, 2))
}

func TestParse(t *testing.T) {
	m, err := ParseMode("real_imaginary")
	require.NoError(t, err)
	assert.Equal(t, RealImaginary, m)
	_, err = ParseMode("hsv")
	assert.Error(t, err)

	p, err := ParsePolicy("outer")
	require.NoError(t, err)
	assert.Equal(t, Outer, p)
	_, err = ParsePolicy("both")
	assert.Error(t, err)
}

func TestRequestWireShape(t *testing.T) {
	req := Request{
		RequestID:     7,
		Port:          2,
		Mode:          MagnitudePhase,
		Weights1:      [Slots]float64{1, 0.5, 0, 0},
		RegionEnabled: true,
		Region:        FromRegion(region.Region{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}),
	}
	for i := range req.RegionSettings1 {
		req.RegionSettings1[i] = Inner
		req.RegionSettings2[i] = Outer
	}
	b, err := json.Marshal(req)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"mode", "weights_1", "weights_2", "region_settings_1", "region_settings_2", "region_enabled", "region", "request_id"} {
		assert.Contains(t, m, k)
	}
	assert.Len(t, m["weights_1"], Slots)
	reg := m["region"].(map[string]any)
	assert.Equal(t, 0.3, reg["width"])
	assert.Equal(t, 0.4, reg["height"])
}
