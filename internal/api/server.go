// internal/api/server.go
package api

import (
	"net/http"
	"time"

	"content-analyzer/internal/common/config"
)

// NewServer applies the configured timeouts; zero values fall back to
// conservative defaults.
func NewServer(cfg config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           h,
		ReadTimeout:       msOr(cfg.ReadTimeout, 15*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      msOr(cfg.WriteTimeout, 75*time.Second),
		IdleTimeout:       2 * time.Minute,
	}
}

func msOr(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
