package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Diagnostics Tracker Configuration

news:
  provider: newsapi
  base_url: https://newsapi.org
  query_pause: 500ms
  # api_key: your-api-key (or set NEWS_API_KEY env var)
  # provider: fixture
  # fixture_path: testdata/news.json

refresh:
  lookback_days: 30
  pause: 1s
  interval: 24h

resolver:
  decrease_tolerance: 0.9
  materiality: 0.05

extractor:
  strategy: rules # rules, llm or chain

llm:
  provider: openai
  model: gpt-4o-mini
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

embedder:
  provider: openai
  model: text-embedding-3-small

qdrant:
  host: localhost
  port: 6334
  collection: tracker_evidence
  # api_key: your-api-key (for Qdrant Cloud)

evidence:
  dedup: false
  similarity: 0.95

logging:
  level: info
  json: false
`

// WriteDefault creates the .tracker directory and writes a default config file.
func WriteDefault(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configFile := ConfigFilePath(basePath)
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
