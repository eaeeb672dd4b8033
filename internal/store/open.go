// internal/store/open.go
package store

import (
	"context"
	"fmt"
	"time"

	"content-analyzer/internal/common/config"
	"content-analyzer/internal/common/database"
	"content-analyzer/internal/common/logger"
)

// Open builds the store selected by cfg.Store.Backend and verifies that its
// backend is reachable.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	backend := cfg.Store.Backend
	if backend == "" {
		backend = BackendNone
	}
	log = log.WithFields(map[string]interface{}{"component": "store", "backend": backend})

	switch backend {
	case BackendNone:
		log.Info("analysis history disabled", nil)
		return NopStore{}, nil

	case BackendRedis:
		client := database.NewRedis(cfg.Database.Redis)
		if err := database.PingRedis(ctx, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		ttl := time.Duration(cfg.Store.TTL) * time.Second
		log.Info("redis analysis store ready", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
			"ttl":     ttl.String(),
		})
		return NewRedisStore(client, ttl, cfg.Store.RecentLimit), nil

	case BackendPostgres:
		db, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := database.PingPostgres(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		s := NewPostgresStore(db, cfg.Store.RecentLimit)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("postgres analysis store ready", map[string]interface{}{
			"host":     cfg.Database.Postgres.Host,
			"database": cfg.Database.Postgres.Database,
		})
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
