package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sensitiveEnv = []string{
	"STOCKCAST_SENTIMENT_HUGGINGFACE_TOKEN",
	"STOCKCAST_POSTGRES_DSN",
	"STOCKCAST_CACHE_REDIS_PASSWORD",
}

func unsetSensitiveEnv() {
	for _, e := range sensitiveEnv {
		os.Unsetenv(e)
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	unsetSensitiveEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Universe defaults
	if !strings.Contains(cfg.Universe.URL, "List_of_S%26P_500_companies") {
		t.Errorf("Universe.URL: got %q", cfg.Universe.URL)
	}
	if cfg.Universe.Limit != 10 {
		t.Errorf("Universe.Limit: got %d, want 10", cfg.Universe.Limit)
	}

	// History defaults
	if cfg.History.Start != "2020-01-01" {
		t.Errorf("History.Start: got %q, want %q", cfg.History.Start, "2020-01-01")
	}
	if cfg.History.End != "" {
		t.Errorf("History.End: got %q, want empty", cfg.History.End)
	}
	if cfg.History.RequestsPerSecond != 5 {
		t.Errorf("History.RequestsPerSecond: got %d, want 5", cfg.History.RequestsPerSecond)
	}

	// Sentiment defaults
	if len(cfg.Sentiment.Providers) != 1 || cfg.Sentiment.Providers[0] != "cnbc" {
		t.Errorf("Sentiment.Providers: got %v, want [cnbc]", cfg.Sentiment.Providers)
	}
	if cfg.Sentiment.PageSize != 10 {
		t.Errorf("Sentiment.PageSize: got %d, want 10", cfg.Sentiment.PageSize)
	}
	if cfg.Sentiment.Classifier != "lexicon" {
		t.Errorf("Sentiment.Classifier: got %q, want %q", cfg.Sentiment.Classifier, "lexicon")
	}

	// Model defaults
	if cfg.Model.TestRatio != 0.2 {
		t.Errorf("Model.TestRatio: got %f, want 0.2", cfg.Model.TestRatio)
	}
	if cfg.Model.Seed != 42 {
		t.Errorf("Model.Seed: got %d, want 42", cfg.Model.Seed)
	}
	if cfg.Model.Lookback != 30 {
		t.Errorf("Model.Lookback: got %d, want 30", cfg.Model.Lookback)
	}
	if cfg.Model.Epochs != 100 || cfg.Model.BatchSize != 32 || cfg.Model.Hidden != 64 {
		t.Errorf("Model epochs/batch/hidden: got %d/%d/%d", cfg.Model.Epochs, cfg.Model.BatchSize, cfg.Model.Hidden)
	}
	if cfg.Model.LearningRate != 0.001 {
		t.Errorf("Model.LearningRate: got %f, want 0.001", cfg.Model.LearningRate)
	}
	if len(cfg.Model.Horizons) != 3 {
		t.Fatalf("Model.Horizons: got %d, want 3", len(cfg.Model.Horizons))
	}
	if cfg.Model.Horizons[2].Label != "1month" || cfg.Model.Horizons[2].Steps != 30 {
		t.Errorf("Model.Horizons[2]: got %+v", cfg.Model.Horizons[2])
	}

	// Output defaults
	if cfg.Output.Path != "mse_comparison.csv" {
		t.Errorf("Output.Path: got %q", cfg.Output.Path)
	}
	if cfg.Output.HTMLPath != "mse_comparison.html" {
		t.Errorf("Output.HTMLPath: got %q", cfg.Output.HTMLPath)
	}
	if !cfg.HasSink("csv") || cfg.HasSink("postgres") {
		t.Errorf("Output.Sinks: got %v, want [csv]", cfg.Output.Sinks)
	}

	// Analysis defaults
	if cfg.Analysis.ConcurrentFetches != 5 {
		t.Errorf("Analysis.ConcurrentFetches: got %d, want 5", cfg.Analysis.ConcurrentFetches)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
universe:
  tickers: ["AAPL", "MSFT"]
  limit: 2
history:
  start: "2021-06-01"
  end: "2024-06-01"
model:
  epochs: 5
  horizons:
    - label: "1d"
      steps: 1
    - label: "5d"
      steps: 5
output:
  path: "out.csv"
  sinks: ["csv", "postgres"]
postgres:
  dsn: "postgres://u:p@localhost/stockcast?sslmode=disable"
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	unsetSensitiveEnv()

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if len(cfg.Universe.Tickers) != 2 || cfg.Universe.Tickers[1] != "MSFT" {
		t.Errorf("Universe.Tickers: got %v", cfg.Universe.Tickers)
	}
	if cfg.Model.Epochs != 5 {
		t.Errorf("Model.Epochs: got %d, want 5", cfg.Model.Epochs)
	}
	if cfg.Model.Lookback != 30 {
		t.Errorf("Model.Lookback default lost: got %d", cfg.Model.Lookback)
	}
	if len(cfg.Model.Horizons) != 2 || cfg.Model.Horizons[1].Steps != 5 {
		t.Errorf("Model.Horizons: got %+v", cfg.Model.Horizons)
	}
	if !cfg.HasSink("postgres") {
		t.Error("expected postgres sink")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want json", cfg.Logging.Format)
	}

	start, err := cfg.StartDate()
	if err != nil || start.Year() != 2021 || start.Month() != 6 {
		t.Errorf("StartDate: got %v, %v", start, err)
	}
	end, err := cfg.EndDate()
	if err != nil || end.Year() != 2024 {
		t.Errorf("EndDate: got %v, %v", end, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestExampleConfigIsValid(t *testing.T) {
	unsetSensitiveEnv()
	cfg, err := LoadFromFile(filepath.Join("..", "..", "config", "config.example.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if len(cfg.Model.Horizons) != 3 || cfg.Model.Horizons[2].Steps != 30 {
		t.Errorf("Horizons = %+v", cfg.Model.Horizons)
	}
	if !cfg.HasSink("html") || len(cfg.Sentiment.Providers) != 2 {
		t.Errorf("sinks = %v, providers = %v", cfg.Output.Sinks, cfg.Sentiment.Providers)
	}
}

// ── Validate ──

func validConfig(t *testing.T) *Config {
	t.Helper()
	unsetSensitiveEnv()
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad start date", func(c *Config) { c.History.Start = "01/01/2020" }, "Start"},
		{"zero history rate", func(c *Config) { c.History.RequestsPerSecond = 0 }, "RequestsPerSecond"},
		{"zero lookback", func(c *Config) { c.Model.Lookback = 0 }, "Lookback"},
		{"test ratio out of range", func(c *Config) { c.Model.TestRatio = 1.5 }, "TestRatio"},
		{"unknown sink", func(c *Config) { c.Output.Sinks = []string{"s3"} }, "Sinks"},
		{"unknown classifier", func(c *Config) { c.Sentiment.Classifier = "vader" }, "Classifier"},
		{"postgres without dsn", func(c *Config) { c.Output.Sinks = []string{"csv", "postgres"} }, "postgres.dsn"},
		{"kafka without brokers", func(c *Config) { c.Output.Sinks = []string{"kafka"} }, "kafka.brokers"},
		{"huggingface without token", func(c *Config) { c.Sentiment.Classifier = "huggingface" }, "token"},
		{"empty horizons", func(c *Config) { c.Model.Horizons = nil }, "Horizons"},
		{"redis without addr", func(c *Config) { c.Cache.Redis.Enabled = true; c.Cache.Redis.Addr = "" }, "Addr"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	cfg := &Config{}

	t.Setenv("STOCKCAST_SENTIMENT_HUGGINGFACE_TOKEN", "hf_test_token_123456")
	t.Setenv("STOCKCAST_POSTGRES_DSN", "postgres://env")
	t.Setenv("STOCKCAST_CACHE_REDIS_PASSWORD", "redis-secret")

	overrideFromEnv(cfg)

	if cfg.Sentiment.HuggingFace.Token != "hf_test_token_123456" {
		t.Errorf("HuggingFace.Token: got %q", cfg.Sentiment.HuggingFace.Token)
	}
	if cfg.Postgres.DSN != "postgres://env" {
		t.Errorf("Postgres.DSN: got %q", cfg.Postgres.DSN)
	}
	if cfg.Cache.Redis.Password != "redis-secret" {
		t.Errorf("Redis.Password: got %q", cfg.Cache.Redis.Password)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	unsetSensitiveEnv()

	cfg := &Config{
		Postgres: PostgresConfig{DSN: "from-config"},
	}
	overrideFromEnv(cfg)

	if cfg.Postgres.DSN != "from-config" {
		t.Errorf("DSN should stay as 'from-config' when env is unset, got %q", cfg.Postgres.DSN)
	}
}

// ── Credentials ──

func TestRedact(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"hf_abcdef1234567890xyz", "hf_...xyz"},
	}
	for _, tc := range tests {
		if got := redact(tc.input); got != tc.want {
			t.Errorf("redact(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCredentialsUnset(t *testing.T) {
	unsetSensitiveEnv()

	creds := Credentials(&Config{})
	if len(creds) != 3 {
		t.Fatalf("Credentials: got %d entries, want 3", len(creds))
	}
	for _, c := range creds {
		if c.Set() || c.Origin != OriginUnset || c.Hint != "" {
			t.Errorf("%s: got %+v, want unset", c.Name, c)
		}
		if !strings.HasPrefix(c.EnvVar, "STOCKCAST_") {
			t.Errorf("%s: env var %q", c.Name, c.EnvVar)
		}
	}
}

func TestCredentialsOrigin(t *testing.T) {
	unsetSensitiveEnv()
	t.Setenv("STOCKCAST_POSTGRES_DSN", "postgres://user:pass@db/stockcast")

	cfg := &Config{}
	cfg.Sentiment.HuggingFace.Token = "hf_config_token_value"
	cfg.Postgres.DSN = "postgres://user:pass@db/stockcast"

	byName := map[string]Credential{}
	for _, c := range Credentials(cfg) {
		byName[c.Name] = c
	}
	if c := byName["Hugging Face token"]; c.Origin != OriginFile || c.Hint != "hf_...lue" {
		t.Errorf("token: got %+v", c)
	}
	if c := byName["Postgres DSN"]; c.Origin != OriginEnv {
		t.Errorf("dsn origin: got %q, want %q", c.Origin, OriginEnv)
	}
	if c := byName["Redis password"]; c.Set() {
		t.Errorf("redis password should be unset, got %+v", c)
	}
}
