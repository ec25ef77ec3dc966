// Package config loads the upscaler's YAML configuration and applies
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for options left unset.
const (
	DefaultTileSize       = 512
	DefaultContextPadding = 12
	DefaultModelFile      = "model.onnx"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full application configuration.
type Config struct {
	Model    Model  `yaml:"model"`
	Tiling   Tiling `yaml:"tiling"`
	Output   Output `yaml:"output"`
	LogLevel string `yaml:"log_level"`
}

// Model selects and names the inference model.
type Model struct {
	// Source is a local .onnx path or a HuggingFace repo id (owner/name).
	Source string `yaml:"source"`

	// File is the model file within a HuggingFace repo. Default model.onnx.
	File string `yaml:"file"`

	// InputName/OutputName are the model's tensor names.
	InputName  string `yaml:"input_name"`
	OutputName string `yaml:"output_name"`

	// CacheDir is where downloaded models are stored.
	CacheDir string `yaml:"cache_dir"`

	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string `yaml:"library_path"`
}

// Tiling carries the compositor options.
type Tiling struct {
	// TileSizeDefault is used when the model declares a degenerate fixed
	// input size. Default 512.
	TileSizeDefault int `yaml:"tile_size_default"`

	// ContextPadding is the context strip around each tile's committed
	// region. Default 12.
	ContextPadding int `yaml:"context_padding"`

	// FailurePolicy is "abort" (default) or "skip".
	FailurePolicy string `yaml:"failure_policy"`
}

// Output controls post-processing of the assembled image.
type Output struct {
	Sharpen       bool    `yaml:"sharpen"`
	SharpenAmount float64 `yaml:"sharpen_amount"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Model: Model{
			File: DefaultModelFile,
		},
		Tiling: Tiling{
			TileSizeDefault: DefaultTileSize,
			ContextPadding:  DefaultContextPadding,
			FailurePolicy:   "abort",
		},
		LogLevel: "info",
	}
}

// Load reads the configuration from path. An empty path checks
// $UPSCALER_CONFIG, then ./upscaler.yaml; when neither exists the defaults
// are returned. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("UPSCALER_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat("upscaler.yaml"); err == nil {
			path = "upscaler.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file values from the environment. Unparseable numeric
// values are ignored rather than fatal.
func applyEnv(cfg *Config) {
	if v := os.Getenv("UPSCALER_MODEL"); v != "" {
		cfg.Model.Source = v
	}
	if v := os.Getenv("UPSCALER_MODEL_FILE"); v != "" {
		cfg.Model.File = v
	}
	if v := os.Getenv("UPSCALER_TILE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tiling.TileSizeDefault = n
		}
	}
	if v := os.Getenv("UPSCALER_PADDING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tiling.ContextPadding = n
		}
	}
	if v := os.Getenv("UPSCALER_FAILURE_POLICY"); v != "" {
		cfg.Tiling.FailurePolicy = v
	}
	if v := os.Getenv("UPSCALER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks option ranges. Degenerate model shape declarations are
// not validated here; the resolver corrects those at request time.
func (c Config) Validate() error {
	if c.Tiling.TileSizeDefault <= 0 {
		return fmt.Errorf("%w: tile_size_default must be positive, got %d",
			ErrInvalidConfig, c.Tiling.TileSizeDefault)
	}
	if c.Tiling.ContextPadding < 0 {
		return fmt.Errorf("%w: context_padding must not be negative, got %d",
			ErrInvalidConfig, c.Tiling.ContextPadding)
	}
	switch c.Tiling.FailurePolicy {
	case "abort", "skip":
	default:
		return fmt.Errorf("%w: failure_policy must be \"abort\" or \"skip\", got %q",
			ErrInvalidConfig, c.Tiling.FailurePolicy)
	}
	return nil
}
