// Package config handles configuration loading for stockcast.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/seenimoa/stockcast/pkg/models"
	"github.com/seenimoa/stockcast/pkg/utils"
)

// Config represents the complete application configuration.
type Config struct {
	Universe  UniverseConfig  `mapstructure:"universe"  yaml:"universe"`
	History   HistoryConfig   `mapstructure:"history"   yaml:"history"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Model     ModelConfig     `mapstructure:"model"     yaml:"model"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"  yaml:"analysis"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	Postgres  PostgresConfig  `mapstructure:"postgres"  yaml:"postgres"`
	Kafka     KafkaConfig     `mapstructure:"kafka"     yaml:"kafka"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// UniverseConfig selects the tickers to forecast.
type UniverseConfig struct {
	URL     string   `mapstructure:"url"     yaml:"url"     validate:"required,url"`
	Tickers []string `mapstructure:"tickers" yaml:"tickers"` // static list; replaces scraping when set
	Limit   int      `mapstructure:"limit"   yaml:"limit"   validate:"gte=0"`
}

// HistoryConfig holds price-history settings.
type HistoryConfig struct {
	Start    string `mapstructure:"start"     yaml:"start"     validate:"required,datetime=2006-01-02"`
	End      string `mapstructure:"end"       yaml:"end"       validate:"omitempty,datetime=2006-01-02"` // empty = now
	ChartURL string `mapstructure:"chart_url" yaml:"chart_url" validate:"required,url"`
	// RequestsPerSecond bounds chart API calls across all tickers.
	RequestsPerSecond int `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gt=0"`
}

// SentimentConfig holds news and classifier settings.
type SentimentConfig struct {
	Providers      []string          `mapstructure:"providers"        yaml:"providers"        validate:"dive,oneof=cnbc rss"`
	CNBCURL        string            `mapstructure:"cnbc_url"         yaml:"cnbc_url"         validate:"required,url"`
	RSSURLTemplate string            `mapstructure:"rss_url_template" yaml:"rss_url_template" validate:"required"`
	PageSize       int               `mapstructure:"page_size"        yaml:"page_size"        validate:"gt=0"`
	Classifier     string            `mapstructure:"classifier"       yaml:"classifier"       validate:"oneof=lexicon huggingface"`
	HuggingFace    HuggingFaceConfig `mapstructure:"huggingface"      yaml:"huggingface"`
}

// HuggingFaceConfig points at a hosted text-classification model.
type HuggingFaceConfig struct {
	URL   string `mapstructure:"url"   yaml:"url"   validate:"required,url"`
	Model string `mapstructure:"model" yaml:"model" validate:"required"`
	Token string `mapstructure:"token" yaml:"token"`
}

// ModelConfig holds training hyper-parameters shared by both models.
type ModelConfig struct {
	TestRatio       float64          `mapstructure:"test_ratio"       yaml:"test_ratio"       validate:"gt=0,lt=1"`
	Seed            int64            `mapstructure:"seed"             yaml:"seed"`
	Lookback        int              `mapstructure:"lookback"         yaml:"lookback"         validate:"gt=0"`
	Epochs          int              `mapstructure:"epochs"           yaml:"epochs"           validate:"gt=0"`
	BatchSize       int              `mapstructure:"batch_size"       yaml:"batch_size"       validate:"gt=0"`
	LearningRate    float64          `mapstructure:"learning_rate"    yaml:"learning_rate"    validate:"gt=0"`
	Hidden          int              `mapstructure:"hidden"           yaml:"hidden"           validate:"gt=0"`
	ActionThreshold float64          `mapstructure:"action_threshold" yaml:"action_threshold" validate:"gte=0"`
	Horizons        []models.Horizon `mapstructure:"horizons"         yaml:"horizons"         validate:"required,min=1,dive"`
}

// AnalysisConfig holds pipeline execution settings.
type AnalysisConfig struct {
	ConcurrentFetches int `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches" validate:"gt=0"`
	RequestTimeout    int `mapstructure:"request_timeout"    yaml:"request_timeout"    validate:"gt=0"` // seconds
}

// OutputConfig selects where results are written.
type OutputConfig struct {
	Path     string   `mapstructure:"path"      yaml:"path"      validate:"required"`
	HTMLPath string   `mapstructure:"html_path" yaml:"html_path" validate:"required"`
	Sinks    []string `mapstructure:"sinks"     yaml:"sinks"     validate:"min=1,dive,oneof=csv html postgres kafka"`
}

// CacheConfig holds price-history caching settings.
type CacheConfig struct {
	TTL   int         `mapstructure:"ttl"   yaml:"ttl"   validate:"gte=0"` // seconds
	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig holds the optional persistent cache connection.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"  yaml:"enabled"`
	Addr     string `mapstructure:"addr"     yaml:"addr"     validate:"required_if=Enabled true"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db"       yaml:"db"`
}

// PostgresConfig holds the results-store connection.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// KafkaConfig holds the forecast-event publisher settings.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic"   yaml:"topic"`
}

// MetricsConfig holds Prometheus export settings.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"` // node-exporter textfile path; empty disables
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console text json"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.stockcast/config.yaml (home directory)
//  3. /etc/stockcast/config.yaml (system)
//
// Environment variables override config file values.
// Format: STOCKCAST_<SECTION>_<KEY>, e.g., STOCKCAST_POSTGRES_DSN
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stockcast"))
	v.AddConfigPath("/etc/stockcast")

	v.SetEnvPrefix("STOCKCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("STOCKCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Universe defaults
	v.SetDefault("universe.url", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies")
	v.SetDefault("universe.limit", 10)

	// History defaults
	v.SetDefault("history.start", "2020-01-01")
	v.SetDefault("history.chart_url", "https://query1.finance.yahoo.com")
	v.SetDefault("history.requests_per_second", 5)

	// Sentiment defaults
	v.SetDefault("sentiment.providers", []string{"cnbc"})
	v.SetDefault("sentiment.cnbc_url", "https://api.cnbc.com/api/search/cnbc/feeds/rs/search")
	v.SetDefault("sentiment.rss_url_template", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")
	v.SetDefault("sentiment.page_size", 10)
	v.SetDefault("sentiment.classifier", "lexicon")
	v.SetDefault("sentiment.huggingface.url", "https://api-inference.huggingface.co/models")
	v.SetDefault("sentiment.huggingface.model", "distilbert/distilbert-base-uncased-finetuned-sst-2-english")

	// Model defaults
	v.SetDefault("model.test_ratio", 0.2)
	v.SetDefault("model.seed", 42)
	v.SetDefault("model.lookback", 30)
	v.SetDefault("model.epochs", 100)
	v.SetDefault("model.batch_size", 32)
	v.SetDefault("model.learning_rate", 0.001)
	v.SetDefault("model.hidden", 64)
	v.SetDefault("model.action_threshold", 0.01)
	v.SetDefault("model.horizons", []map[string]any{
		{"label": "1d", "steps": 1},
		{"label": "7d", "steps": 7},
		{"label": "1month", "steps": 30},
	})

	// Analysis defaults
	v.SetDefault("analysis.concurrent_fetches", 5)
	v.SetDefault("analysis.request_timeout", 30)

	// Output defaults
	v.SetDefault("output.path", "mse_comparison.csv")
	v.SetDefault("output.html_path", "mse_comparison.html")
	v.SetDefault("output.sinks", []string{"csv"})

	// Cache defaults
	v.SetDefault("cache.ttl", 900) // 15 minutes
	v.SetDefault("cache.redis.addr", "localhost:6379")

	// Kafka defaults
	v.SetDefault("kafka.topic", "stockcast.forecasts")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("STOCKCAST_SENTIMENT_HUGGINGFACE_TOKEN"); key != "" {
		cfg.Sentiment.HuggingFace.Token = key
	}
	if dsn := os.Getenv("STOCKCAST_POSTGRES_DSN"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if pw := os.Getenv("STOCKCAST_CACHE_REDIS_PASSWORD"); pw != "" {
		cfg.Cache.Redis.Password = pw
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-section requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, sink := range c.Output.Sinks {
		switch sink {
		case "postgres":
			if c.Postgres.DSN == "" {
				return errors.New("invalid config: postgres sink requires postgres.dsn")
			}
		case "kafka":
			if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
				return errors.New("invalid config: kafka sink requires kafka.brokers and kafka.topic")
			}
		}
	}
	if c.Sentiment.Classifier == "huggingface" && c.Sentiment.HuggingFace.Token == "" {
		return errors.New("invalid config: huggingface classifier requires sentiment.huggingface.token")
	}
	return nil
}

// StartDate returns the parsed history start date.
func (c *Config) StartDate() (time.Time, error) {
	return utils.ParseDate(c.History.Start)
}

// EndDate returns the parsed history end date, or now when unset.
func (c *Config) EndDate() (time.Time, error) {
	if c.History.End == "" {
		return utils.NowET(), nil
	}
	return utils.ParseDate(c.History.End)
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Analysis.RequestTimeout) * time.Second
}

// CacheTTL returns the price-history cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// HasSink reports whether the named sink is enabled.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Output.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
