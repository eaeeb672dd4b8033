package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-analyzer/internal/common/config"
	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/engine"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "content-analyzer"},
		Analyzer: config.AnalyzerConfig{
			Mode:          engine.ModeSimulated,
			LiveTimeoutMs: 1000,
		},
		Logging: config.LoggingConfig{Level: "debug", Format: "console", Output: "stderr"},
	}
}

func TestLogger(t *testing.T) {
	log, err := Logger(testConfig())
	require.NoError(t, err)
	log.Info("bootstrap logger ready", map[string]interface{}{"test": true})
}

func TestCatalog(t *testing.T) {
	cfg := testConfig()
	cat, err := Catalog(cfg)
	require.NoError(t, err)
	assert.Equal(t, 8, cat.Len())

	cfg.Analyzer.CatalogPath = filepath.Join(t.TempDir(), "missing.json")
	_, err = Catalog(cfg)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFixtureLoadFailure))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"scenarios":"nope"}`), 0o600))
	cfg.Analyzer.CatalogPath = bad
	_, err = Catalog(cfg)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFixtureLoadFailure))
}

func TestEngine_FromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Analyzer.Endpoint = "https://agent.example.com"
	cat, err := Catalog(cfg)
	require.NoError(t, err)

	e, err := Engine(cfg, cat, logger.NewTestLogger(t), engine.WithDelayer(engine.NoDelay{}))
	require.NoError(t, err)

	s := e.Settings()
	assert.Equal(t, engine.ModeSimulated, s.Mode)
	assert.Equal(t, "https://agent.example.com", s.Endpoint)

	res, err := e.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Source)
}

func TestEngine_RejectsUnknownMode(t *testing.T) {
	cfg := testConfig()
	cfg.Analyzer.Mode = "batch"
	cat, err := Catalog(cfg)
	require.NoError(t, err)

	_, err = Engine(cfg, cat, logger.NewTestLogger(t))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidSettings))
}
