package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// Defaults
// ==========================

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: content-analyzer
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ModeSimulated, cfg.Analyzer.Mode)
	assert.Equal(t, 1500, cfg.Analyzer.MinDelayMs)
	assert.Equal(t, 2500, cfg.Analyzer.MaxDelayMs)
	assert.Equal(t, 30*time.Second, cfg.Analyzer.LiveTimeout())
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, StoreNone, cfg.Store.Backend)
	assert.Equal(t, "content-analyzer", cfg.Observability.ServiceName)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Camunda.Enabled)
}

func TestLoadFromFile_ZeroDelayIsKeptWhenOnlyMaxIsSet(t *testing.T) {
	path := writeConfig(t, `
analyzer:
  min_delay_ms: 0
  max_delay_ms: 10
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Analyzer.MinDelayMs)
	assert.Equal(t, 10, cfg.Analyzer.MaxDelayMs)
}

// ==========================
// Environment handling
// ==========================

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_AGENT_URL", "https://agent.internal/analyze")
	path := writeConfig(t, `
analyzer:
  mode: live
  endpoint: ${TEST_AGENT_URL}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ModeLive, cfg.Analyzer.Mode)
	assert.Equal(t, "https://agent.internal/analyze", cfg.Analyzer.Endpoint)
}

func TestLoadFromFile_EnvOverridesEmptySecrets(t *testing.T) {
	t.Setenv("ANALYZER_API_KEY", "sk-test")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	path := writeConfig(t, `
analyzer:
  api_key: ""
store:
  backend: redis
database:
  redis:
    address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Analyzer.APIKey)
	assert.Equal(t, "hunter2", cfg.Database.Redis.Password)
}

// ==========================
// Validation
// ==========================

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "unknown mode",
			body:    "analyzer:\n  mode: turbo\n",
			message: "analyzer.mode",
		},
		{
			name:    "inverted delay range",
			body:    "analyzer:\n  min_delay_ms: 500\n  max_delay_ms: 100\n",
			message: "delay range",
		},
		{
			name:    "camunda without broker",
			body:    "camunda:\n  enabled: true\n",
			message: "camunda.broker_address",
		},
		{
			name:    "redis store without address",
			body:    "store:\n  backend: redis\n",
			message: "database.redis.address",
		},
		{
			name:    "postgres store without host",
			body:    "store:\n  backend: postgres\n",
			message: "database.postgres.host",
		},
		{
			name:    "unknown store",
			body:    "store:\n  backend: mongo\n",
			message: "store.backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWorkerConfigHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"analyze-content": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "analyze-content"))
	assert.True(t, IsWorkerEnabled(cfg, "other"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "analyze-content").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "other").MaxJobsActive)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "analyzer", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=analyzer sslmode=disable", p.GetDSN())
}
