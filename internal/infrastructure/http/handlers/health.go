package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler handles GET /health — liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HealthDependenciesHandler handles GET /health/ready — readiness probe.
// Either dependency may be nil when it is not configured. The remote backend
// is never required: its loss degrades the service to local storage. A
// configured Redis that cannot be reached makes the service unready.
type HealthDependenciesHandler struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewHealthDependenciesHandler(db *mongo.Database, rdb *redis.Client) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		mongo: db,
		redis: rdb,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

const (
	statusOK            = "ok"
	statusUnhealthy     = "unhealthy"
	statusNotConfigured = "not_configured"
)

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	degraded := false
	ready := true

	// --- MongoDB (remote backend) ---
	switch {
	case h.mongo == nil:
		deps["mongodb"] = dependencyStatus{Status: statusNotConfigured}
		degraded = true
	default:
		if err := h.mongo.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			deps["mongodb"] = dependencyStatus{Status: statusUnhealthy, Error: err.Error()}
			degraded = true
		} else {
			deps["mongodb"] = dependencyStatus{Status: statusOK}
		}
	}

	// --- Redis (local store) ---
	switch {
	case h.redis == nil:
		deps["redis"] = dependencyStatus{Status: statusNotConfigured}
	default:
		if _, err := h.redis.Ping(ctx).Result(); err != nil {
			deps["redis"] = dependencyStatus{Status: statusUnhealthy, Error: err.Error()}
			ready = false
		} else {
			deps["redis"] = dependencyStatus{Status: statusOK}
		}
	}

	status := statusOK
	httpStatus := http.StatusOK
	switch {
	case !ready:
		status = statusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	case degraded:
		status = "degraded"
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
