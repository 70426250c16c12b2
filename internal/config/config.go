// Package config loads wardsweep settings from defaults, an optional YAML
// file and WARDSWEEP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WARDSWEEP_SWEEP_WORKERS.
const EnvPrefix = "WARDSWEEP"

// Config holds all application configuration
type Config struct {
	Logging Logging `mapstructure:"logging"`
	Sweep   Sweep   `mapstructure:"sweep"`
	NMF     NMF     `mapstructure:"nmf"`
	Plot    Plot    `mapstructure:"plot"`
	Spectra Spectra `mapstructure:"spectra"`
}

// Logging holds logger configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

// Sweep holds clustering sweep configuration
type Sweep struct {
	Neighbors         int    `mapstructure:"neighbors"`
	MinClusters       int    `mapstructure:"min_clusters"`
	MaxClusters       int    `mapstructure:"max_clusters"`
	Workers           int    `mapstructure:"workers"`
	DisconnectPolicy  string `mapstructure:"disconnect_policy"`
	NeighborAlgorithm string `mapstructure:"neighbor_algorithm"`
}

// NMF holds factorization configuration
type NMF struct {
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxIter       int     `mapstructure:"max_iter"`
	MinComponents int     `mapstructure:"min_components"`
	MaxComponents int     `mapstructure:"max_components"`
}

// Plot holds image configuration; sizes are in inches.
type Plot struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Format string  `mapstructure:"format"`
}

// Spectra holds reformatting configuration
type Spectra struct {
	Interval float64 `mapstructure:"interval"`
}

// Load reads configuration. An empty configFile looks for .wardsweep.yaml
// in the working directory and then $HOME; a missing default file is not an
// error, a missing explicit file is.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".wardsweep")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// Default returns the built-in configuration, ignoring files and the
// environment.
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("sweep.neighbors", 10)
	v.SetDefault("sweep.min_clusters", 2)
	v.SetDefault("sweep.max_clusters", 9)
	v.SetDefault("sweep.workers", 1)
	v.SetDefault("sweep.disconnect_policy", "bridge")
	v.SetDefault("sweep.neighbor_algorithm", "auto")

	v.SetDefault("nmf.tolerance", 1e-4)
	v.SetDefault("nmf.max_iter", 2000)
	v.SetDefault("nmf.min_components", 1)
	v.SetDefault("nmf.max_components", 8)

	v.SetDefault("plot.width", 8.0)
	v.SetDefault("plot.height", 6.0)
	v.SetDefault("plot.format", "png")

	v.SetDefault("spectra.interval", 0.04562)
}

func validateConfig(cfg *Config) error {
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", cfg.Logging.Level)
	}

	s := cfg.Sweep
	if s.Neighbors < 1 {
		return fmt.Errorf("sweep.neighbors must be >= 1, got %d", s.Neighbors)
	}
	if s.MinClusters < 1 || s.MaxClusters < s.MinClusters {
		return fmt.Errorf("sweep cluster range [%d, %d] is invalid", s.MinClusters, s.MaxClusters)
	}
	if s.Workers < 1 {
		return fmt.Errorf("sweep.workers must be >= 1, got %d", s.Workers)
	}
	switch s.DisconnectPolicy {
	case "bridge", "fail":
	default:
		return fmt.Errorf("invalid sweep.disconnect_policy %q", s.DisconnectPolicy)
	}
	switch s.NeighborAlgorithm {
	case "auto", "brute", "kdtree", "balltree":
	default:
		return fmt.Errorf("invalid sweep.neighbor_algorithm %q", s.NeighborAlgorithm)
	}

	n := cfg.NMF
	if n.Tolerance <= 0 || n.MaxIter < 1 {
		return fmt.Errorf("nmf tolerance and max_iter must be positive")
	}
	if n.MinComponents < 1 || n.MaxComponents < n.MinComponents {
		return fmt.Errorf("nmf component range [%d, %d] is invalid", n.MinComponents, n.MaxComponents)
	}

	if cfg.Plot.Width <= 0 || cfg.Plot.Height <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g", cfg.Plot.Width, cfg.Plot.Height)
	}
	if cfg.Spectra.Interval <= 0 {
		return fmt.Errorf("spectra.interval must be positive, got %g", cfg.Spectra.Interval)
	}
	return nil
}
