// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Graph  GraphConfig  `yaml:"graph" mapstructure:"graph"`
	Access AccessConfig `yaml:"access" mapstructure:"access"`
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// GraphConfig configures graph construction.
type GraphConfig struct {
	Strategy        string  `yaml:"strategy" mapstructure:"strategy"`
	ThresholdM      float64 `yaml:"threshold_m" mapstructure:"threshold_m"`
	Metric          string  `yaml:"metric" mapstructure:"metric"`
	UseEdgeDistance bool    `yaml:"use_edge_distance" mapstructure:"use_edge_distance"`
	FootprintIDCol  string  `yaml:"footprint_id_col" mapstructure:"footprint_id_col"`
}

// AccessConfig configures accessibility scoring.
type AccessConfig struct {
	RadiusM float64 `yaml:"radius_m" mapstructure:"radius_m"`
}

// PathsConfig configures the sampled shortest-path export.
type PathsConfig struct {
	MaxPairs int   `yaml:"max_pairs" mapstructure:"max_pairs"`
	Seed     int64 `yaml:"seed" mapstructure:"seed"`
}

// StoreConfig configures the embedded analysis store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BUILDNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("graph.strategy", "threshold")
	v.SetDefault("graph.threshold_m", 200.0)
	v.SetDefault("graph.metric", "geodesic")
	v.SetDefault("graph.use_edge_distance", false)
	v.SetDefault("graph.footprint_id_col", "building_id")
	v.SetDefault("access.radius_m", 500.0)
	v.SetDefault("paths.max_pairs", 1000)
	// Seed 1 keeps path sampling reproducible between runs; set -1 for an
	// unseeded sample.
	v.SetDefault("paths.seed", 1)
	v.SetDefault("store.path", "buildnet.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
