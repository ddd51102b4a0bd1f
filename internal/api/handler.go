package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetmon/fleetmon/internal/config"
	"github.com/fleetmon/fleetmon/internal/nlq"
	"github.com/fleetmon/fleetmon/internal/observability"
	"github.com/fleetmon/fleetmon/internal/store"
)

type ReadinessCheck func(ctx context.Context) error

// Asker runs one natural-language question through the query pipeline.
type Asker interface {
	Ask(ctx context.Context, question string) (nlq.Response, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Store             store.Repository
	Ask               Asker
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/devices", func(w http.ResponseWriter, r *http.Request) {
		handleCreateDevice(deps, w, r)
	})
	protected.HandleFunc("GET /v1/devices", func(w http.ResponseWriter, r *http.Request) {
		handleListDevices(deps, w, r)
	})
	protected.HandleFunc("GET /v1/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetDevice(deps, w, r)
	})
	protected.HandleFunc("PUT /v1/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleUpdateDevice(deps, w, r)
	})
	protected.HandleFunc("DELETE /v1/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleDeleteDevice(deps, w, r)
	})
	protected.HandleFunc("GET /v1/devices/{id}/readings", func(w http.ResponseWriter, r *http.Request) {
		handleListDeviceReadings(deps, w, r)
	})
	protected.HandleFunc("POST /v1/readings", func(w http.ResponseWriter, r *http.Request) {
		handleCreateReading(cfg, deps, w, r)
	})
	protected.HandleFunc("GET /v1/readings/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetReading(deps, w, r)
	})
	protected.HandleFunc("POST /v1/ask", func(w http.ResponseWriter, r *http.Request) {
		handleAsk(cfg, deps, w, r)
	})
	protected.HandleFunc("GET /v1/ask/examples", func(w http.ResponseWriter, r *http.Request) {
		handleAskExamples(w, r)
	})

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	mux.Handle("POST /v1/devices", protectedHandler)
	mux.Handle("GET /v1/devices", protectedHandler)
	mux.Handle("GET /v1/devices/{id}", protectedHandler)
	mux.Handle("PUT /v1/devices/{id}", protectedHandler)
	mux.Handle("DELETE /v1/devices/{id}", protectedHandler)
	mux.Handle("GET /v1/devices/{id}/readings", protectedHandler)
	mux.Handle("POST /v1/readings", protectedHandler)
	mux.Handle("GET /v1/readings/{id}", protectedHandler)
	mux.Handle("POST /v1/ask", protectedHandler)
	mux.Handle("GET /v1/ask/examples", protectedHandler)

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CheckDBDSN(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.DB.DSN == "" {
			return errors.New("fleet db dsn is not configured")
		}
		return nil
	}
}

func CheckStore(repo store.Repository) ReadinessCheck {
	return func(ctx context.Context) error {
		if repo == nil {
			return errors.New("fleet store is not configured")
		}
		return repo.HealthCheck(ctx)
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
