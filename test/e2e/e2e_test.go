//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"content-analyzer/internal/bootstrap"
	"content-analyzer/internal/common/camunda"
	"content-analyzer/internal/common/config"
	"content-analyzer/internal/common/database"
	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/engine"
	"content-analyzer/internal/models"
	"content-analyzer/internal/store"
	analyzecontent "content-analyzer/internal/workers/analysis/analyze-content"
)

const processID = "analyze-content"

// Run with: go test -tags e2e ./test/e2e/... against local Zeebe, Redis and
// PostgreSQL (see configs/config.yaml).
func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	// Force localhost for E2E tests.
	cfg.Camunda.Enabled = true
	cfg.Camunda.BrokerAddress = "localhost:26500"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Postgres.Host = "localhost"

	log := logger.NewZapAdapter(zaptest.NewLogger(t))

	t.Log("🔍 Checking service connectivity...")
	assertServicesConnectivity(ctx, t, cfg)

	zb, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	require.NoError(t, err, "❌ Zeebe connection failed")
	defer func() { _ = zb.Close() }()

	deployProcess(ctx, t, zb)

	for _, backend := range []string{config.StoreRedis, config.StorePostgres} {
		t.Run(backend, func(t *testing.T) {
			cfg.Store.Backend = backend
			history, err := store.Open(ctx, cfg, log)
			require.NoError(t, err)
			defer func() { _ = history.Close() }()

			runWorkflow(ctx, t, cfg, zb, history, log)
		})
	}

	t.Log("✅ Full E2E workflow successful")
}

func assertServicesConnectivity(ctx context.Context, t *testing.T, cfg *config.Config) {
	t.Helper()

	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, database.PingPostgres(ctx, db), "❌ PostgreSQL ping failed")
	_ = db.Close()
	t.Log("✅ PostgreSQL connected")

	rdb := database.NewRedis(cfg.Database.Redis)
	assert.NoError(t, database.PingRedis(ctx, rdb), "❌ Redis ping failed")
	_ = rdb.Close()
	t.Log("✅ Redis connected")
}

func deployProcess(ctx context.Context, t *testing.T, zb *camunda.Client) {
	t.Helper()

	var path string
	for _, dir := range []string{"bpmn", "../bpmn", "../../bpmn"} {
		candidate := filepath.Join(dir, processID+".bpmn")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	require.NotEmpty(t, path, "❌ BPMN file not found")

	_, err := zb.Zeebe().NewDeployResourceCommand().AddResourceFile(path).Send(ctx)
	require.NoError(t, err, "❌ BPMN deployment failed")
	t.Logf("✅ Deployed: %s", path)
}

func runWorkflow(ctx context.Context, t *testing.T, cfg *config.Config, zb *camunda.Client, history store.Store, log logger.Logger) {
	t.Helper()

	cat, err := bootstrap.Catalog(cfg)
	require.NoError(t, err)
	eng, err := bootstrap.Engine(cfg, cat, log, engine.WithDelayer(engine.NoDelay{}))
	require.NoError(t, err)

	handler, err := analyzecontent.NewHandler(analyzecontent.HandlerOptions{
		AppConfig: cfg,
		Analyzer:  eng,
		Store:     history,
		Logger:    log,
	})
	require.NoError(t, err)

	w := camunda.StartWorker(zb.Zeebe(), analyzecontent.TaskType,
		config.GetWorkerConfig(cfg, analyzecontent.TaskType), handler, log)
	require.NotNil(t, w)
	defer w.Stop()

	cmd, err := zb.Zeebe().NewCreateInstanceCommand().
		BPMNProcessId(processID).
		LatestVersion().
		VariablesFromMap(map[string]interface{}{
			"text":      "Our API integration returns 403 Forbidden for every call",
			"requestId": "e2e-" + history.Backend(),
		})
	require.NoError(t, err)

	resp, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err, "❌ process instance did not complete")

	var out analyzecontent.Output
	require.NoError(t, json.Unmarshal([]byte(resp.GetVariables()), &out))
	assert.Equal(t, models.SourceScenario, out.Source)
	assert.Equal(t, "technical-support", out.ScenarioID)
	assert.Equal(t, "e2e-"+history.Backend(), out.RequestID)
	require.NotEmpty(t, out.AnalysisID)

	rec, err := history.Get(ctx, out.AnalysisID)
	require.NoError(t, err, "❌ analysis was not stored")
	assert.Equal(t, "technical-support", rec.ScenarioID)
	t.Logf("✅ %s: analysis %s stored", history.Backend(), out.AnalysisID)
}
