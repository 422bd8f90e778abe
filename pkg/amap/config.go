package amap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile is the optional per-project configuration file.
	ConfigFile = "amap.yaml"

	// EnvPrefix prefixes the environment overrides (AMAP_KEY, AMAP_VERSION,
	// AMAP_PLUGINS, AMAP_STYLE).
	EnvPrefix = "AMAP"

	// DefaultVersion is the engine version requested when none is set.
	DefaultVersion = "2.0"

	// DefaultStyle is the map style used when none is set.
	DefaultStyle = "amap://styles/whitesmoke"

	// MinEngineVersion is the oldest engine version maps can load.
	MinEngineVersion = "v1.4.0"
)

// ErrUnsupportedVersion is returned for engine versions that are malformed
// or older than MinEngineVersion.
var ErrUnsupportedVersion = errors.New("amap: unsupported engine version")

// Config holds engine defaults shared by every [Map] that leaves the
// corresponding prop empty.
type Config struct {
	Key     string   `yaml:"key" envconfig:"KEY" validate:"required"`
	Version string   `yaml:"version" envconfig:"VERSION" validate:"required"`
	Plugins []string `yaml:"plugins,omitempty" envconfig:"PLUGINS" validate:"dive,required,startswith=AMap."`
	Style   string   `yaml:"style,omitempty" envconfig:"STYLE" validate:"omitempty,startswith=amap://"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required fields, plugin names, the style URL and the
// engine version.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return CheckVersion(c.Version)
}

// LoadConfig reads amap.yaml from dir if present, applies AMAP_*
// environment overrides and validates the result.
func LoadConfig(dir string) (*Config, error) {
	cfg := &Config{
		Version: DefaultVersion,
		Style:   DefaultStyle,
	}

	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s_* environment: %w", EnvPrefix, err)
	}

	cfg.Key = strings.TrimSpace(cfg.Key)
	cfg.Version = strings.TrimSpace(cfg.Version)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CheckVersion reports whether version names an engine build of at least
// MinEngineVersion. The "v" prefix is optional.
func CheckVersion(version string) error {
	canonical := semver.Canonical("v" + strings.TrimPrefix(version, "v"))
	if canonical == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	if semver.Compare(canonical, MinEngineVersion) < 0 {
		return fmt.Errorf("%w: %s is older than %s", ErrUnsupportedVersion, version, MinEngineVersion)
	}
	return nil
}

var defaultConfig atomic.Pointer[Config]

// SetDefaultConfig installs process-wide defaults for [Map]. Pass nil to
// clear them.
func SetDefaultConfig(cfg *Config) {
	defaultConfig.Store(cfg)
}

// DefaultConfig returns the installed defaults, or the built-in ones.
func DefaultConfig() Config {
	if cfg := defaultConfig.Load(); cfg != nil {
		return *cfg
	}
	return Config{Version: DefaultVersion, Style: DefaultStyle}
}
