package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"COVERMAP_DATASET_URL", "COVERMAP_SERVICES", "COVERMAP_SURFACE",
		"COVERMAP_ZOOM_STRATEGY", "COVERMAP_LOG_LEVEL", "COVERMAP_LOG_FILE",
		"COVERMAP_INITIAL_ZOOM",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, SurfaceVector, cfg.Interaction.Surface)
	assert.Equal(t, StrategyComputed, cfg.Interaction.ZoomStrategy)
	assert.Equal(t, 300*time.Millisecond, cfg.GetDebounce())
	assert.Equal(t, 750*time.Millisecond, cfg.GetTransition())
	assert.Equal(t, 0.6, cfg.Interaction.FitPadding)
	assert.Len(t, cfg.FixedZoom, 6)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Map, cfg.Map)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "conf", "covermap.yaml")

	cfg := DefaultConfig()
	cfg.Map.CenterLat = 48.5
	cfg.Interaction.Surface = SurfaceRaster
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 48.5, loaded.Map.CenterLat)
	assert.Equal(t, SurfaceRaster, loaded.Interaction.Surface)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "covermap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("map:\n  initial_zoom: 2\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Map.InitialZoom)
	assert.Equal(t, 16.0, cfg.Map.MaxScale)
	assert.Equal(t, "300ms", cfg.Interaction.Debounce)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covermap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("map: [unterminated"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("dataset and services", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COVERMAP_DATASET_URL", "file:///tmp/world.geojson")
		t.Setenv("COVERMAP_SERVICES", "/etc/covermap/services.csv")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "file:///tmp/world.geojson", cfg.Dataset.URL)
		assert.Equal(t, "/etc/covermap/services.csv", cfg.Services.Path)
	})

	t.Run("surface is lowercased", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COVERMAP_SURFACE", "RASTER")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, SurfaceRaster, cfg.Interaction.Surface)
	})

	t.Run("bad initial zoom is ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COVERMAP_INITIAL_ZOOM", "lots")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 1.0, cfg.Map.InitialZoom)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted scale range", func(c *Config) { c.Map.MinScale, c.Map.MaxScale = 4, 2 }},
		{"initial zoom outside range", func(c *Config) { c.Map.InitialZoom = 40 }},
		{"center out of range", func(c *Config) { c.Map.CenterLat = 120 }},
		{"empty dataset", func(c *Config) { c.Dataset.URL = "" }},
		{"unknown surface", func(c *Config) { c.Interaction.Surface = "webgl" }},
		{"unknown strategy", func(c *Config) { c.Interaction.ZoomStrategy = "guess" }},
		{"fixed without table", func(c *Config) {
			c.Interaction.ZoomStrategy = StrategyFixed
			c.FixedZoom = nil
		}},
		{"padding zero", func(c *Config) { c.Interaction.FitPadding = 0 }},
		{"continent range inverted", func(c *Config) { c.Interaction.ContinentScaleMin = 20 }},
		{"wheel factor", func(c *Config) { c.Interaction.WheelFactor = 1 }},
		{"bad debounce", func(c *Config) { c.Interaction.Debounce = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dataset.Timeout = "bogus"
	cfg.Interaction.Transition = ""
	assert.Equal(t, 30*time.Second, cfg.GetDatasetTimeout())
	assert.Equal(t, 750*time.Millisecond, cfg.GetTransition())
}
