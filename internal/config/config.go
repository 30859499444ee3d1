// Package config loads application configuration and bootstraps logging.
package config

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wasatch-geo/riskmodel/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Model  ModelConfig  `yaml:"model" mapstructure:"model"`
	CV     CVConfig     `yaml:"cv" mapstructure:"cv"`
	Raster RasterConfig `yaml:"raster" mapstructure:"raster"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the local run store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ModelConfig holds default model-fitting parameters, overridable per
// command by flags.
type ModelConfig struct {
	Variant     string  `yaml:"variant" mapstructure:"variant"`
	MaxIter     int     `yaml:"max_iter" mapstructure:"max_iter"`
	Tol         float64 `yaml:"tol" mapstructure:"tol"`
	Trees       int     `yaml:"trees" mapstructure:"trees"`
	FeatureRate float64 `yaml:"feature_rate" mapstructure:"feature_rate"`
	MinLeaf     int     `yaml:"min_leaf" mapstructure:"min_leaf"`
	Importance  bool    `yaml:"importance" mapstructure:"importance"`
	Seed        int64   `yaml:"seed" mapstructure:"seed"`
	Threshold   float64 `yaml:"threshold" mapstructure:"threshold"`
}

// ToModel converts the configuration into a model.Config.
func (m ModelConfig) ToModel() model.Config {
	return model.Config{
		Variant:     model.Variant(m.Variant),
		MaxIter:     m.MaxIter,
		Tol:         m.Tol,
		Trees:       m.Trees,
		FeatureRate: m.FeatureRate,
		MinLeaf:     m.MinLeaf,
		Importance:  m.Importance,
		Seed:        m.Seed,
	}
}

// CVConfig holds cross-validation defaults.
type CVConfig struct {
	Folds    int   `yaml:"folds" mapstructure:"folds"`
	Stratify bool  `yaml:"stratify" mapstructure:"stratify"`
	Workers  int   `yaml:"workers" mapstructure:"workers"`
	Seed     int64 `yaml:"seed" mapstructure:"seed"`
}

// RasterConfig holds raster prediction defaults.
type RasterConfig struct {
	SRID    int `yaml:"srid" mapstructure:"srid"`
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from riskmodel.yaml (working directory or
// ~/.riskmodel) and RISKMODEL_* environment variables, over built-in
// defaults. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("riskmodel")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.riskmodel")

	v.SetEnvPrefix("RISKMODEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "riskmodel.db")

	v.SetDefault("model.variant", "logistic")
	v.SetDefault("model.max_iter", model.DefaultMaxIter)
	v.SetDefault("model.tol", model.DefaultTol)
	v.SetDefault("model.trees", model.DefaultTrees)
	v.SetDefault("model.min_leaf", model.DefaultMinLeaf)
	v.SetDefault("model.threshold", 0.5)

	v.SetDefault("cv.folds", 5)
	v.SetDefault("cv.stratify", true)
	v.SetDefault("cv.workers", 0)
	v.SetDefault("cv.seed", 42)

	v.SetDefault("raster.srid", 4326)
	v.SetDefault("raster.workers", 0)

	v.SetDefault("server.port", 8080)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
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
