package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Varun5711/modesta/internal/middleware"
	"github.com/Varun5711/modesta/internal/response"
)

const (
	ServiceName = "Modesta API Server"
	Version     = "1.0.0"
)

// Pinger is any dependency whose liveness is reported on /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsFunc reports a point-in-time figure for the admin status view.
type StatsFunc func(ctx context.Context) (interface{}, error)

type HealthHandler struct {
	checks map[string]Pinger
	stats  map[string]StatsFunc
}

// NewHealthHandler takes named dependencies; nil entries are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	h := &HealthHandler{
		checks: make(map[string]Pinger, len(checks)),
		stats:  make(map[string]StatsFunc),
	}
	for name, p := range checks {
		if p != nil {
			h.checks[name] = p
		}
	}
	return h
}

func (h *HealthHandler) WithStats(name string, fn StatsFunc) *HealthHandler {
	h.stats[name] = fn
	return h
}

type RootResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthResponse struct {
	Success      bool              `json:"success"`
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, RootResponse{
		Success: true,
		Message: ServiceName,
		Version: Version,
		Endpoints: map[string]string{
			"health": "/health",
			"auth":   "/api/auth/*",
			"docs":   "/docs",
		},
	})
}

// Health always answers 200 while the process is up; a failing dependency
// turns status into "degraded".
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	status := "ok"
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "disconnected"
			status = "degraded"
			continue
		}
		deps[name] = "connected"
	}

	response.JSON(w, http.StatusOK, HealthResponse{
		Success:      true,
		Status:       status,
		Message:      "Server is running",
		Dependencies: deps,
	})
}

func AdminPing(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "pong",
		"userId":  middleware.GetUserID(r.Context()),
	})
}

// AdminStatus reports connection pool and queue figures. A failing source is
// reported as its error text rather than failing the whole response.
func (h *HealthHandler) AdminStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	stats := make(map[string]interface{}, len(h.stats))
	for name, fn := range h.stats {
		v, err := fn(ctx)
		if err != nil {
			stats[name] = map[string]string{"error": err.Error()}
			continue
		}
		stats[name] = v
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"version": Version,
		"stats":   stats,
	})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	response.Message(w, http.StatusNotFound, "Route not found")
}
