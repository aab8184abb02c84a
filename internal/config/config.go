package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all covermap configuration.
type Config struct {
	Map         MapConfig         `yaml:"map"`
	Dataset     DatasetConfig     `yaml:"dataset"`
	Services    ServicesConfig    `yaml:"services"`
	Interaction InteractionConfig `yaml:"interaction"`
	Logging     LoggingConfig     `yaml:"logging"`

	// ContinentsFile overrides the embedded continent table.
	ContinentsFile string `yaml:"continents_file"`

	// FixedZoom holds hand-tuned transforms per continent for the fixed zoom strategy.
	FixedZoom map[string]FixedTransform `yaml:"fixed_zoom"`
}

// MapConfig is the map configuration record supplied by the content store.
type MapConfig struct {
	CenterLat   float64 `yaml:"center_lat"`
	CenterLng   float64 `yaml:"center_lng"`
	InitialZoom float64 `yaml:"initial_zoom"`
	MinScale    float64 `yaml:"min_scale"`
	MaxScale    float64 `yaml:"max_scale"`
}

// DatasetConfig locates the world boundary dataset.
type DatasetConfig struct {
	URL       string   `yaml:"url"` // http(s) URL, file:// URL or path
	NameKeys  []string `yaml:"name_keys"`
	Timeout   string   `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
}

// ServicesConfig locates the service catalog.
type ServicesConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// InteractionConfig tunes zoom, hover and rendering behaviour.
type InteractionConfig struct {
	Surface           string  `yaml:"surface"`       // vector, raster
	ZoomStrategy      string  `yaml:"zoom_strategy"` // computed, fixed
	Debounce          string  `yaml:"debounce"`
	Transition        string  `yaml:"transition"`
	FitPadding        float64 `yaml:"fit_padding"`
	ContinentScaleMin float64 `yaml:"continent_scale_min"`
	ContinentScaleMax float64 `yaml:"continent_scale_max"`
	WheelFactor       float64 `yaml:"wheel_factor"`
	MarkerRadius      float64 `yaml:"marker_radius"`
	StrokeWidth       float64 `yaml:"stroke_width"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty disables logging
}

// FixedTransform is one entry of the fixed zoom table.
type FixedTransform struct {
	TranslateX float64 `yaml:"translate_x"`
	TranslateY float64 `yaml:"translate_y"`
	Scale      float64 `yaml:"scale"`
}

const (
	SurfaceVector = "vector"
	SurfaceRaster = "raster"

	StrategyComputed = "computed"
	StrategyFixed    = "fixed"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Map: MapConfig{
			CenterLat:   0,
			CenterLng:   0,
			InitialZoom: 1,
			MinScale:    1,
			MaxScale:    16,
		},
		Dataset: DatasetConfig{
			URL:       "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_admin_0_countries.geojson",
			NameKeys:  []string{"name", "NAME", "ADMIN", "name_long"},
			Timeout:   "30s",
			UserAgent: "covermap",
		},
		Services: ServicesConfig{
			Path:  "services.yaml",
			Watch: true,
		},
		Interaction: InteractionConfig{
			Surface:           SurfaceVector,
			ZoomStrategy:      StrategyComputed,
			Debounce:          "300ms",
			Transition:        "750ms",
			FitPadding:        0.6,
			ContinentScaleMin: 3,
			ContinentScaleMax: 12,
			WheelFactor:       1.2,
			MarkerRadius:      6,
			StrokeWidth:       1,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "covermap.log",
		},
		FixedZoom: map[string]FixedTransform{
			"Africa":        {TranslateX: -1210, TranslateY: -527, Scale: 3.2},
			"Asia":          {TranslateX: -1653, TranslateY: -135, Scale: 3},
			"Europe":        {TranslateX: -2595, TranslateY: -215, Scale: 6},
			"North America": {TranslateX: -286, TranslateY: -88, Scale: 3},
			"South America": {TranslateX: -624, TranslateY: -842, Scale: 3.4},
			"Oceania":       {TranslateX: -2917, TranslateY: -1103, Scale: 4},
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies COVERMAP_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("COVERMAP_DATASET_URL"); v != "" {
		c.Dataset.URL = v
	}
	if v := os.Getenv("COVERMAP_SERVICES"); v != "" {
		c.Services.Path = v
	}
	if v := os.Getenv("COVERMAP_SURFACE"); v != "" {
		c.Interaction.Surface = strings.ToLower(v)
	}
	if v := os.Getenv("COVERMAP_ZOOM_STRATEGY"); v != "" {
		c.Interaction.ZoomStrategy = strings.ToLower(v)
	}
	if v := os.Getenv("COVERMAP_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("COVERMAP_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("COVERMAP_INITIAL_ZOOM"); v != "" {
		// ignore parse errors, keep the file value
		if z, err := strconv.ParseFloat(v, 64); err == nil {
			c.Map.InitialZoom = z
		}
	}
}

// Validate checks the configuration for values the map cannot work with.
func (c *Config) Validate() error {
	if c.Map.MinScale <= 0 || c.Map.MaxScale < c.Map.MinScale {
		return fmt.Errorf("invalid scale range [%g, %g]", c.Map.MinScale, c.Map.MaxScale)
	}
	if c.Map.InitialZoom < c.Map.MinScale || c.Map.InitialZoom > c.Map.MaxScale {
		return fmt.Errorf("initial_zoom %g outside scale range [%g, %g]", c.Map.InitialZoom, c.Map.MinScale, c.Map.MaxScale)
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 || c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		return fmt.Errorf("map center (%g, %g) out of range", c.Map.CenterLat, c.Map.CenterLng)
	}
	if c.Dataset.URL == "" {
		return fmt.Errorf("dataset url is required")
	}
	switch c.Interaction.Surface {
	case SurfaceVector, SurfaceRaster:
	default:
		return fmt.Errorf("unknown surface %q", c.Interaction.Surface)
	}
	switch c.Interaction.ZoomStrategy {
	case StrategyComputed:
	case StrategyFixed:
		if len(c.FixedZoom) == 0 {
			return fmt.Errorf("fixed zoom strategy needs a fixed_zoom table")
		}
	default:
		return fmt.Errorf("unknown zoom strategy %q", c.Interaction.ZoomStrategy)
	}
	if c.Interaction.FitPadding <= 0 || c.Interaction.FitPadding > 1 {
		return fmt.Errorf("fit_padding must be in (0, 1], got %g", c.Interaction.FitPadding)
	}
	if c.Interaction.ContinentScaleMin <= 0 || c.Interaction.ContinentScaleMax < c.Interaction.ContinentScaleMin {
		return fmt.Errorf("invalid continent scale range [%g, %g]", c.Interaction.ContinentScaleMin, c.Interaction.ContinentScaleMax)
	}
	if c.Interaction.WheelFactor <= 1 {
		return fmt.Errorf("wheel_factor must be > 1, got %g", c.Interaction.WheelFactor)
	}
	for _, d := range []struct{ name, v string }{
		{"dataset.timeout", c.Dataset.Timeout},
		{"interaction.debounce", c.Interaction.Debounce},
		{"interaction.transition", c.Interaction.Transition},
	} {
		if _, err := time.ParseDuration(d.v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.v, err)
		}
	}
	return nil
}

// GetDatasetTimeout returns the dataset fetch timeout as a duration.
func (c *Config) GetDatasetTimeout() time.Duration {
	return parseDuration(c.Dataset.Timeout, 30*time.Second)
}

// GetDebounce returns the pointer resolution debounce window.
func (c *Config) GetDebounce() time.Duration {
	return parseDuration(c.Interaction.Debounce, 300*time.Millisecond)
}

// GetTransition returns the programmatic zoom animation length.
func (c *Config) GetTransition() time.Duration {
	return parseDuration(c.Interaction.Transition, 750*time.Millisecond)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
