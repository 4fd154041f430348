// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for tracker configuration.
	DefaultConfigDir = ".tracker"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite file name inside the config dir.
	DefaultDatabaseFile = "tracker.db"
)

// Extractor strategies.
const (
	StrategyRules = "rules"
	StrategyLLM   = "llm"
	StrategyChain = "chain"
)

// News providers.
const (
	ProviderNewsAPI = "newsapi"
	ProviderFixture = "fixture"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	News      NewsConfig      `yaml:"news,omitempty"`
	Refresh   RefreshConfig   `yaml:"refresh,omitempty"`
	Resolver  ResolverConfig  `yaml:"resolver,omitempty"`
	Extractor ExtractorConfig `yaml:"extractor,omitempty"`
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Embedder  EmbedderConfig  `yaml:"embedder,omitempty"`
	Qdrant    QdrantConfig    `yaml:"qdrant,omitempty"`
	Evidence  EvidenceConfig  `yaml:"evidence,omitempty"`
	SQLite    SQLiteConfig    `yaml:"sqlite,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Review    ReviewConfig    `yaml:"review,omitempty"`
}

// NewsConfig holds configuration for the news source.
type NewsConfig struct {
	Provider    string        `yaml:"provider,omitempty"`
	APIKey      string        `yaml:"api_key,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	QueryPause  time.Duration `yaml:"query_pause,omitempty"`
	PageSize    int           `yaml:"page_size,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	MaxRetries  int           `yaml:"max_retries,omitempty"`
	FixturePath string        `yaml:"fixture_path,omitempty"`
}

// RefreshConfig holds refresh run settings.
type RefreshConfig struct {
	LookbackDays int           `yaml:"lookback_days,omitempty"`
	Pause        time.Duration `yaml:"pause,omitempty"`
	Interval     time.Duration `yaml:"interval,omitempty"`
}

// ResolverConfig holds the plausibility thresholds for monetary changes.
type ResolverConfig struct {
	DecreaseTolerance float64 `yaml:"decrease_tolerance,omitempty"`
	Materiality       float64 `yaml:"materiality,omitempty"`
}

// ExtractorConfig selects the extraction strategy.
type ExtractorConfig struct {
	Strategy string `yaml:"strategy,omitempty"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// BaseURL overrides the API endpoint (proxies, compatible servers).
	BaseURL string `yaml:"base_url,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// EvidenceConfig controls semantic de-duplication of news evidence.
type EvidenceConfig struct {
	Dedup      bool    `yaml:"dedup,omitempty"`
	Similarity float64 `yaml:"similarity,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database, relative to the base path
	// when not absolute. Empty means .tracker/tracker.db.
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

// ReviewConfig holds review defaults.
type ReviewConfig struct {
	Reviewer string `yaml:"reviewer,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		News: NewsConfig{
			Provider:   ProviderNewsAPI,
			BaseURL:    "https://newsapi.org",
			QueryPause: 500 * time.Millisecond,
			PageSize:   20,
			Timeout:    15 * time.Second,
			MaxRetries: 3,
		},
		Refresh: RefreshConfig{
			LookbackDays: 30,
			Pause:        time.Second,
			Interval:     24 * time.Hour,
		},
		Resolver: ResolverConfig{
			DecreaseTolerance: 0.9,
			Materiality:       0.05,
		},
		Extractor: ExtractorConfig{
			Strategy: StrategyRules,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "tracker_evidence",
		},
		Evidence: EvidenceConfig{
			Similarity: 0.95,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the .tracker directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'tracker init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("NEWS_API_KEY"); key != "" && c.News.APIKey == "" {
		c.News.APIKey = key
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = key
	}
	if reviewer := os.Getenv("TRACKER_REVIEWER"); reviewer != "" {
		c.Review.Reviewer = reviewer
	}
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	switch c.News.Provider {
	case ProviderNewsAPI, ProviderFixture:
	default:
		return fmt.Errorf("news.provider must be %q or %q, got %q", ProviderNewsAPI, ProviderFixture, c.News.Provider)
	}
	if c.News.Provider == ProviderFixture && c.News.FixturePath == "" {
		return fmt.Errorf("news.fixture_path is required for the fixture provider")
	}
	if c.News.QueryPause < 0 || c.Refresh.Pause < 0 {
		return fmt.Errorf("pauses must not be negative")
	}
	if c.Refresh.LookbackDays < 1 {
		return fmt.Errorf("refresh.lookback_days must be at least 1, got %d", c.Refresh.LookbackDays)
	}
	if c.Refresh.Interval < time.Minute {
		return fmt.Errorf("refresh.interval must be at least 1m, got %s", c.Refresh.Interval)
	}
	if c.Resolver.DecreaseTolerance <= 0 || c.Resolver.DecreaseTolerance > 1 {
		return fmt.Errorf("resolver.decrease_tolerance must be in (0, 1], got %g", c.Resolver.DecreaseTolerance)
	}
	if c.Resolver.Materiality < 0 || c.Resolver.Materiality >= 1 {
		return fmt.Errorf("resolver.materiality must be in [0, 1), got %g", c.Resolver.Materiality)
	}
	switch c.Extractor.Strategy {
	case StrategyRules, StrategyLLM, StrategyChain:
	default:
		return fmt.Errorf("extractor.strategy must be one of rules, llm, chain, got %q", c.Extractor.Strategy)
	}
	if c.Evidence.Similarity <= 0 || c.Evidence.Similarity > 1 {
		return fmt.Errorf("evidence.similarity must be in (0, 1], got %g", c.Evidence.Similarity)
	}
	return nil
}

// NeedsLLM reports whether the configured extractor calls the LLM.
func (c *Config) NeedsLLM() bool {
	return c.Extractor.Strategy == StrategyLLM || c.Extractor.Strategy == StrategyChain
}

// ConfigDir returns the path to the .tracker config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// SQLitePath returns the database path for the config.
func (c *Config) SQLitePath(basePath string) string {
	p := strings.TrimSpace(c.SQLite.Path)
	if p == "" {
		return filepath.Join(basePath, DefaultConfigDir, DefaultDatabaseFile)
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// Exists checks if a tracker config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
