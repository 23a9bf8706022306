// Package config loads newslab configuration from YAML files and
// NEWSLAB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. NEWSLAB_STORAGE_BACKEND.
const EnvPrefix = "NEWSLAB"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config represents the complete application configuration.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"     yaml:"storage"`
	Providers  ProvidersConfig  `mapstructure:"providers"   yaml:"providers"`
	RateLimits RateLimitsConfig `mapstructure:"rate_limits" yaml:"rate_limits"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"    yaml:"analysis"`
	Metrics    MetricsConfig    `mapstructure:"metrics"     yaml:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"     yaml:"logging"`
}

// StorageConfig selects the store backend.
// ClickHouseDSN, when set, moves price bars and correlation rows to ClickHouse.
type StorageConfig struct {
	Backend       string `mapstructure:"backend"        yaml:"backend"`
	PostgresDSN   string `mapstructure:"postgres_dsn"   yaml:"postgres_dsn"`
	ClickHouseDSN string `mapstructure:"clickhouse_dsn" yaml:"clickhouse_dsn"`
}

// ProvidersConfig holds provider credentials and endpoints.
type ProvidersConfig struct {
	Timeout      time.Duration  `mapstructure:"timeout"      yaml:"timeout"`
	NewsAPI      EndpointConfig `mapstructure:"newsapi"      yaml:"newsapi"`
	AlphaVantage EndpointConfig `mapstructure:"alphavantage" yaml:"alphavantage"`
	Finnhub      FinnhubConfig  `mapstructure:"finnhub"      yaml:"finnhub"`
	Yahoo        EndpointConfig `mapstructure:"yahoo"        yaml:"yahoo"`
	RSSFeeds     []string       `mapstructure:"rss_feeds"    yaml:"rss_feeds"`
}

// EndpointConfig is an API key and base URL pair.
type EndpointConfig struct {
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// FinnhubConfig adds the websocket endpoint to the REST settings.
type FinnhubConfig struct {
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	WSURL   string `mapstructure:"ws_url"   yaml:"ws_url"`
}

// RateLimitsConfig holds one token bucket per provider class.
type RateLimitsConfig struct {
	Generic   LimitConfig `mapstructure:"generic"    yaml:"generic"`
	PreScored LimitConfig `mapstructure:"pre_scored" yaml:"pre_scored"`
	Headline  LimitConfig `mapstructure:"headline"   yaml:"headline"`
	Price     LimitConfig `mapstructure:"price"      yaml:"price"`
}

// LimitConfig is a token bucket: Burst tokens, one added per Interval.
type LimitConfig struct {
	Burst    int           `mapstructure:"burst"    yaml:"burst"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// AnalysisConfig holds window sizes and pool sizes of the pipeline.
type AnalysisConfig struct {
	CorrelationWindowDays int `mapstructure:"correlation_window_days" yaml:"correlation_window_days"`
	NewsWindowDays        int `mapstructure:"news_window_days"        yaml:"news_window_days"`
	PriceBars             int `mapstructure:"price_bars"              yaml:"price_bars"`
	CorrelationHistory    int `mapstructure:"correlation_history"     yaml:"correlation_history"`
	RecentNews            int `mapstructure:"recent_news"             yaml:"recent_news"`
	IngestNewsDays        int `mapstructure:"ingest_news_days"        yaml:"ingest_news_days"`
	PriceLookbackDays     int `mapstructure:"price_lookback_days"     yaml:"price_lookback_days"`
	Workers               int `mapstructure:"workers"                 yaml:"workers"`
}

// MetricsConfig holds the /metrics listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LoggingConfig holds log.Logger settings.
type LoggingConfig struct {
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	Flags  int    `mapstructure:"flags"  yaml:"flags"`
}

// Load reads configuration from the default search path and environment.
// Config file search order:
//  1. ./config/newslab.yaml
//  2. ~/.newslab/newslab.yaml
//
// A missing file is not an error.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("newslab")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newslab"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at construction.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for backend %q", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be positive, got %d", c.Analysis.Workers)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")

	v.SetDefault("providers.timeout", 10*time.Second)
	v.SetDefault("providers.newsapi.api_key", "")
	v.SetDefault("providers.newsapi.base_url", "https://newsapi.org")
	v.SetDefault("providers.alphavantage.api_key", "")
	v.SetDefault("providers.alphavantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("providers.finnhub.api_key", "")
	v.SetDefault("providers.finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("providers.finnhub.ws_url", "wss://ws.finnhub.io")
	v.SetDefault("providers.yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("providers.rss_feeds", []string{})

	// Free-tier quotas.
	v.SetDefault("rate_limits.generic.burst", 5)
	v.SetDefault("rate_limits.generic.interval", time.Second)
	v.SetDefault("rate_limits.pre_scored.burst", 5)
	v.SetDefault("rate_limits.pre_scored.interval", 12*time.Second)
	v.SetDefault("rate_limits.headline.burst", 30)
	v.SetDefault("rate_limits.headline.interval", time.Second)
	v.SetDefault("rate_limits.price.burst", 2)
	v.SetDefault("rate_limits.price.interval", 500*time.Millisecond)

	v.SetDefault("analysis.correlation_window_days", 30)
	v.SetDefault("analysis.news_window_days", 7)
	v.SetDefault("analysis.price_bars", 5)
	v.SetDefault("analysis.correlation_history", 10)
	v.SetDefault("analysis.recent_news", 3)
	v.SetDefault("analysis.ingest_news_days", 14)
	v.SetDefault("analysis.price_lookback_days", 90)
	v.SetDefault("analysis.workers", 5)

	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("logging.prefix", "[newslab] ")
	v.SetDefault("logging.flags", 19) // log.LstdFlags | log.Lshortfile
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
