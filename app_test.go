package goportal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	cfg := DefaultConfig()
	w, err := cfg.BuildWorld()
	require.NoError(t, err)
	g := NewGame(w)
	defer g.Close()

	a, err := NewApp(g, cfg)
	require.NoError(t, err)
	lw, lh := a.Layout(100, 100)
	assert.Equal(t, cfg.Window.Width, lw)
	assert.Equal(t, cfg.Window.Height, lh)

	rw, rh := a.raster.Size()
	assert.Equal(t, cfg.Window.Width/cfg.Window.Scale, rw)
	assert.Equal(t, cfg.Window.Height/cfg.Window.Scale, rh)
	assert.InDelta(t, 1.0/float64(cfg.Window.TPS), a.dt, 1e-6)

	cfg.Controls = map[string][]string{"forward": {"NoSuchKey"}}
	_, err = NewApp(g, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
