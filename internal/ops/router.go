package ops

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/foreveruup/wp-bot/internal/greenapi"
	"github.com/foreveruup/wp-bot/pkg/logging"
)

// StateProber reports the gateway instance authorization state.
type StateProber interface {
	GetStateInstance(ctx context.Context) (string, error)
}

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	MetricsHandler http.Handler
	StateProber    StateProber
}

// New creates the operational HTTP surface: liveness, gateway readiness and
// Prometheus metrics.
func New(cfg *Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.StateProber != nil {
		r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
			state, err := cfg.StateProber.GetStateInstance(req.Context())
			if err != nil {
				logger.Error("gateway state probe failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unreachable"})
				return
			}
			if state != greenapi.StateAuthorized {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": state})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": state})
		})
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
