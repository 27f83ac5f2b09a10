package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/opsflow/internal/api/response"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheFlusher drops every cached analytics entry
type CacheFlusher interface {
	FlushAll(ctx context.Context) (int64, error)
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports ready once every dependency answers a ping
func ReadyCheck(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, dep := range deps {
			if err := dep.Ping(r.Context()); err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("Readiness check failed")
				response.ServiceUnavailable(w, name+" not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// FlushCache clears all cached analytics
func FlushCache(cache CacheFlusher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cache == nil {
			response.OK(w, map[string]any{
				"message":      "cache disabled",
				"keys_deleted": 0,
			})
			return
		}

		deleted, err := cache.FlushAll(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.OK(w, map[string]any{
			"message":      "cache flushed successfully",
			"keys_deleted": deleted,
		})
	}
}
