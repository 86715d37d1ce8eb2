// Package config loads blur settings from YAML or JSON files.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-stackblur/images"
	"github.com/nvr-ai/go-stackblur/images/kernels"
)

// Config holds everything the stackblur command needs to process a picture.
type Config struct {
	// Radius of the blur, 1 to kernels.MaxRadius. Larger values are clamped.
	Radius int `json:"radius" yaml:"radius"`
	// BlurAlpha blurs the alpha channel too.
	BlurAlpha bool `json:"blurAlpha" yaml:"blurAlpha"`
	// Divisor is "exact" or "table".
	Divisor string `json:"divisor" yaml:"divisor"`
	// Update is "incremental" or "recompute".
	Update string `json:"update" yaml:"update"`
	// Parallel spreads rows and columns over goroutines.
	Parallel bool `json:"parallel" yaml:"parallel"`
	// Linear blurs in linear light.
	Linear bool `json:"linear" yaml:"linear"`
	// MaxSize downscales larger pictures first; 0 keeps the size.
	MaxSize int `json:"maxSize" yaml:"maxSize"`
	// Quality of JPEG and WebP output.
	Quality int `json:"quality" yaml:"quality"`
}

// Default returns the settings used when no file or flag says otherwise.
func Default() Config {
	return Config{
		Radius:  15,
		Divisor: kernels.DivideExact.String(),
		Update:  kernels.UpdateIncremental.String(),
		Linear:  true,
		Quality: images.DefaultQuality,
	}
}

// Load reads a YAML (or JSON) file over Default. Fields missing from the file
// keep their default value.
//
// Arguments:
//   - path: The configuration file.
//
// Returns:
//   - Config: The loaded and validated configuration.
//   - error: If the file cannot be read, parsed or validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Validate checks ranges and strategy names.
func (c Config) Validate() error {
	if c.Radius < 1 {
		return errors.Errorf("radius %d is below 1", c.Radius)
	}
	if c.MaxSize < 0 {
		return errors.Errorf("maxSize %d is negative", c.MaxSize)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return errors.Errorf("quality %d is outside [0, 100]", c.Quality)
	}
	_, err := c.Options()
	return err
}

// Options converts the kernel part of the configuration.
func (c Config) Options() (kernels.Options, error) {
	div, err := kernels.ParseDivisorStrategy(c.Divisor)
	if err != nil {
		return kernels.Options{}, err
	}
	upd, err := kernels.ParseWindowUpdate(c.Update)
	if err != nil {
		return kernels.Options{}, err
	}
	return kernels.Options{
		Radius:    c.Radius,
		BlurAlpha: c.BlurAlpha,
		Divisor:   div,
		Update:    upd,
		Parallel:  c.Parallel,
	}, nil
}

// Settings converts the configuration into pipeline settings.
func (c Config) Settings() (images.Settings, error) {
	opt, err := c.Options()
	if err != nil {
		return images.Settings{}, err
	}
	return images.Settings{
		Options: opt,
		Linear:  c.Linear,
		MaxSize: c.MaxSize,
		Quality: c.Quality,
	}, nil
}
