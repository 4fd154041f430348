package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))
	assert.True(t, Exists(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ProviderNewsAPI, cfg.News.Provider)
	assert.Equal(t, 500*time.Millisecond, cfg.News.QueryPause)
	assert.Equal(t, 30, cfg.Refresh.LookbackDays)
	assert.Equal(t, time.Second, cfg.Refresh.Pause)
	assert.Equal(t, 24*time.Hour, cfg.Refresh.Interval)
	assert.InDelta(t, 0.9, cfg.Resolver.DecreaseTolerance, 1e-9)
	assert.InDelta(t, 0.05, cfg.Resolver.Materiality, 1e-9)
	assert.Equal(t, StrategyRules, cfg.Extractor.Strategy)
	assert.False(t, cfg.Evidence.Dedup)
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))
	assert.Error(t, WriteDefault(dir))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracker init")
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte("extractor:\n  strategy: chain\nrefresh:\n  pause: 2s\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, StrategyChain, cfg.Extractor.Strategy)
	assert.True(t, cfg.NeedsLLM())
	assert.Equal(t, 2*time.Second, cfg.Refresh.Pause)
	assert.Equal(t, 30, cfg.Refresh.LookbackDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NEWS_API_KEY", "news-test")
	t.Setenv("QDRANT_API_KEY", "qd-test")
	t.Setenv("TRACKER_REVIEWER", "alice")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "sk-test", cfg.Embedder.APIKey)
	assert.Equal(t, "news-test", cfg.News.APIKey)
	assert.Equal(t, "qd-test", cfg.Qdrant.APIKey)
	assert.Equal(t, "alice", cfg.Review.Reviewer)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.News.Provider = "bing" }, wantErr: "news.provider"},
		{name: "fixture without path", mutate: func(c *Config) { c.News.Provider = ProviderFixture }, wantErr: "fixture_path"},
		{name: "zero lookback", mutate: func(c *Config) { c.Refresh.LookbackDays = 0 }, wantErr: "lookback_days"},
		{name: "tiny interval", mutate: func(c *Config) { c.Refresh.Interval = time.Second }, wantErr: "interval"},
		{name: "tolerance above one", mutate: func(c *Config) { c.Resolver.DecreaseTolerance = 1.5 }, wantErr: "decrease_tolerance"},
		{name: "materiality of one", mutate: func(c *Config) { c.Resolver.Materiality = 1 }, wantErr: "materiality"},
		{name: "unknown strategy", mutate: func(c *Config) { c.Extractor.Strategy = "magic" }, wantErr: "extractor.strategy"},
		{name: "similarity zero", mutate: func(c *Config) { c.Evidence.Similarity = 0 }, wantErr: "similarity"},
		{name: "negative pause", mutate: func(c *Config) { c.Refresh.Pause = -time.Second }, wantErr: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/base", ".tracker", "tracker.db"), cfg.SQLitePath("/base"))

	cfg.SQLite.Path = "data/t.db"
	assert.Equal(t, filepath.Join("/base", "data", "t.db"), cfg.SQLitePath("/base"))

	cfg.SQLite.Path = "/abs/t.db"
	assert.Equal(t, "/abs/t.db", cfg.SQLitePath("/base"))
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Extractor.Strategy = StrategyLLM
	cfg.Refresh.Pause = 3 * time.Second
	require.NoError(t, Write(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, StrategyLLM, loaded.Extractor.Strategy)
	assert.Equal(t, 3*time.Second, loaded.Refresh.Pause)
}
