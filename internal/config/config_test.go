package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NotNil(t, c)
	assert.Equal(t, Default(), c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
backend:
  url: http://mixer:5000
  timeout: 5s
surface:
  width: 256
  height: 128
region: {x: 0.1, y: 0.1, w: 0.3, h: 0.3}
overlay:
  fill: "#ff0000"
  fill_opacity: 0.5
drag:
  end_on_leave: true
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Listen)
	assert.Equal(t, "http://mixer:5000", c.Backend.URL)
	assert.Equal(t, 5*time.Second, c.Backend.Timeout)
	assert.Equal(t, 256, c.Surface.Width)
	assert.Equal(t, 0.3, c.Region.W)
	assert.True(t, c.Drag.EndOnLeave)
	assert.Equal(t, "#4fa08b", c.Overlay.Stroke, "unset keys keep defaults")

	st, err := c.Style()
	require.NoError(t, err)
	assert.True(t, st.FillEnabled)
	assert.Equal(t, uint8(255), st.Fill.R)
	assert.Equal(t, uint8(128), st.Fill.A)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Surface.Width = 0
	c.Region.X = 0.9
	c.Overlay.Stroke = "green"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surface size")
	assert.Contains(t, err.Error(), "unit square")
	assert.Contains(t, err.Error(), "overlay.stroke")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Drag.CancelOnSecondPress = true
	require.NoError(t, Save(path, c))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
