package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/micrograph-features/internal/imaging"
	"github.com/ironsheep/micrograph-features/internal/overlay"
	"github.com/ironsheep/micrograph-features/internal/segmentation"
)

// Config represents the pipeline configuration loaded from YAML
type Config struct {
	// Normalize parameters
	Normalize struct {
		// MedianSize is the median filter window edge; <= 1 disables filtering
		MedianSize int `yaml:"medianSize"`

		// PLow and PHigh are the percentiles mapped to 0 and 1
		PLow  float64 `yaml:"pLow"`
		PHigh float64 `yaml:"pHigh"`
	} `yaml:"normalize"`

	// Segment parameters
	Segment struct {
		// MinSize removes foreground objects smaller than this many pixels
		MinSize int `yaml:"minSize"`

		// HoleSize fills enclosed holes smaller than this many pixels
		HoleSize int `yaml:"holeSize"`

		// MorphRadius is the disk radius for opening and closing
		MorphRadius int `yaml:"morphRadius"`
	} `yaml:"segment"`

	// Features parameters
	Features struct {
		// Intensity adds mean/min/max intensity columns measured on the
		// normalized image
		Intensity bool `yaml:"intensity"`
	} `yaml:"features"`

	// Overlay parameters
	Overlay struct {
		// Enabled controls whether the overlay figure is written
		Enabled bool `yaml:"enabled"`

		Title   string   `yaml:"title"`
		Alpha   float64  `yaml:"alpha"`
		Width   int      `yaml:"width"`
		Height  int      `yaml:"height"`
		Palette []string `yaml:"palette"`
	} `yaml:"overlay"`

	// Output file names, relative to the output directory
	Output struct {
		FeaturesFile string `yaml:"featuresFile"`
		OverlayFile  string `yaml:"overlayFile"`
		SummaryFile  string `yaml:"summaryFile"`
	} `yaml:"output"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// Format is "console" or "json"
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	norm := imaging.DefaultNormalizeOptions()
	cfg.Normalize.MedianSize = norm.MedianSize
	cfg.Normalize.PLow = norm.PLow
	cfg.Normalize.PHigh = norm.PHigh

	seg := segmentation.DefaultOptions()
	cfg.Segment.MinSize = seg.MinSize
	cfg.Segment.HoleSize = seg.HoleSize
	cfg.Segment.MorphRadius = seg.MorphRadius

	cfg.Features.Intensity = true

	ov := overlay.DefaultOptions()
	cfg.Overlay.Enabled = true
	cfg.Overlay.Title = ov.Title
	cfg.Overlay.Alpha = ov.Alpha
	cfg.Overlay.Width = ov.Width
	cfg.Overlay.Height = ov.Height
	cfg.Overlay.Palette = append([]string{}, ov.Palette...)

	cfg.Output.FeaturesFile = "region_features.csv"
	cfg.Output.OverlayFile = "overlay.png"
	cfg.Output.SummaryFile = "summary.json"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate checks every section and reports the first problem found
func (c *Config) Validate() error {
	if err := c.NormalizeOptions().Validate(); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if err := c.SegmentOptions().Validate(); err != nil {
		return fmt.Errorf("segment: %w", err)
	}
	if err := c.OverlayOptions().Validate(); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	if len(c.Overlay.Palette) > 0 {
		if _, err := overlay.ParsePalette(c.Overlay.Palette); err != nil {
			return fmt.Errorf("overlay: %w", err)
		}
	}
	for _, f := range []struct{ name, value string }{
		{"featuresFile", c.Output.FeaturesFile},
		{"overlayFile", c.Output.OverlayFile},
		{"summaryFile", c.Output.SummaryFile},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("output: %s must not be empty", f.name)
		}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging: unknown format %q", c.Logging.Format)
	}
	return nil
}

// NormalizeOptions returns the normalize section as stage options
func (c *Config) NormalizeOptions() imaging.NormalizeOptions {
	return imaging.NormalizeOptions{
		MedianSize: c.Normalize.MedianSize,
		PLow:       c.Normalize.PLow,
		PHigh:      c.Normalize.PHigh,
	}
}

// SegmentOptions returns the segment section as stage options
func (c *Config) SegmentOptions() segmentation.Options {
	return segmentation.Options{
		MinSize:     c.Segment.MinSize,
		HoleSize:    c.Segment.HoleSize,
		MorphRadius: c.Segment.MorphRadius,
	}
}

// OverlayOptions returns the overlay section as renderer options
func (c *Config) OverlayOptions() overlay.Options {
	return overlay.Options{
		Title:   c.Overlay.Title,
		Alpha:   c.Overlay.Alpha,
		Width:   c.Overlay.Width,
		Height:  c.Overlay.Height,
		Palette: c.Overlay.Palette,
	}
}
