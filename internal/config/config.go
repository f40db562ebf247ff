// Package config loads the tunable knobs of the discovery pipeline
// from a YAML file via spf13/viper, with environment-variable
// overrides and an optional fsnotify-backed hot reload.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full set of recognized options. No persisted state,
// environment variables beyond these overrides, or file formats are
// part of the discovery core itself — this struct is its entire
// configuration surface.
type Config struct {
	NVD     NVDConfig
	Cache   CacheConfig
	Search  SearchConfig
	Scoring ScoringConfig
	Ranking RankingConfig
	Logging LoggingConfig
}

// NVDConfig controls the catalog client and its rate limit.
type NVDConfig struct {
	APIKey      string        `mapstructure:"apiKey"`
	MinInterval time.Duration `mapstructure:"minInterval"`
}

// CacheConfig controls response memoization.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// SearchConfig controls the progressive narrowing orchestrator.
type SearchConfig struct {
	NarrowTarget int `mapstructure:"narrowTarget"`
}

// ScoringConfig holds the four composite weights; they must sum to
// 1.0.
type ScoringConfig struct {
	Weights WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig mirrors scoring.Weights for unmarshalling.
type WeightsConfig struct {
	Vendor       float64 `mapstructure:"vendor"`
	Product      float64 `mapstructure:"product"`
	Version      float64 `mapstructure:"version"`
	TokenOverlap float64 `mapstructure:"tokenOverlap"`
}

// RankingConfig bounds the caller-requested topN.
type RankingConfig struct {
	TopNMax     int `mapstructure:"topNMax"`
	TopNDefault int `mapstructure:"topNDefault"`
}

// LoggingConfig controls internal/pkg/logger's Manager.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"filePath"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
	Compress   bool   `mapstructure:"compress"`
	Caller     bool   `mapstructure:"caller"`
}

const envPrefix = "CPEDISCOVER"

// Default returns a Config populated with the recommended defaults
// for every knob.
func Default() Config {
	return Config{
		NVD:     NVDConfig{MinInterval: 6 * time.Second},
		Cache:   CacheConfig{TTL: 5 * time.Minute},
		Search:  SearchConfig{NarrowTarget: 10},
		Scoring: ScoringConfig{Weights: WeightsConfig{Vendor: 0.25, Product: 0.35, Version: 0.25, TokenOverlap: 0.15}},
		Ranking: RankingConfig{TopNMax: 20, TopNDefault: 5},
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stdout", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 28},
	}
}

// Load reads configFile (YAML) layered over Default(), with
// CPEDISCOVER_-prefixed environment variables taking precedence over
// the file. An empty configFile skips the file read entirely and
// returns defaults plus any environment overrides.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("nvd.apiKey", d.NVD.APIKey)
	v.SetDefault("nvd.minInterval", d.NVD.MinInterval)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("search.narrowTarget", d.Search.NarrowTarget)
	v.SetDefault("scoring.weights.vendor", d.Scoring.Weights.Vendor)
	v.SetDefault("scoring.weights.product", d.Scoring.Weights.Product)
	v.SetDefault("scoring.weights.version", d.Scoring.Weights.Version)
	v.SetDefault("scoring.weights.tokenOverlap", d.Scoring.Weights.TokenOverlap)
	v.SetDefault("ranking.topNMax", d.Ranking.TopNMax)
	v.SetDefault("ranking.topNDefault", d.Ranking.TopNDefault)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.filePath", d.Logging.FilePath)
	v.SetDefault("logging.maxSizeMB", d.Logging.MaxSizeMB)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("logging.maxAgeDays", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)
	v.SetDefault("logging.caller", d.Logging.Caller)
}

func validate(cfg *Config) error {
	if cfg.NVD.MinInterval < 0 {
		return fmt.Errorf("nvd.minInterval must be non-negative")
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be non-negative")
	}
	if cfg.Search.NarrowTarget <= 0 {
		return fmt.Errorf("search.narrowTarget must be positive")
	}
	sum := cfg.Scoring.Weights.Vendor + cfg.Scoring.Weights.Product +
		cfg.Scoring.Weights.Version + cfg.Scoring.Weights.TokenOverlap
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("scoring.weights must sum to 1.0, got %f", sum)
	}
	if cfg.Ranking.TopNMax <= 0 || cfg.Ranking.TopNMax > 20 {
		return fmt.Errorf("ranking.topNMax must be in (0,20]")
	}
	if cfg.Ranking.TopNDefault <= 0 || cfg.Ranking.TopNDefault > cfg.Ranking.TopNMax {
		return fmt.Errorf("ranking.topNDefault must be in (0,topNMax]")
	}
	return nil
}
