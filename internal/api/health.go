package api

import (
	"context"
	"time"

	"github.com/wordlens/wordlens/internal/services/cache"
	"github.com/wordlens/wordlens/internal/services/database"
	"github.com/wordlens/wordlens/internal/services/llm"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	redisTier *cache.RedisTier
	db        *database.DB
	client    llm.Client
}

// NewHealthHandler creates a new health check handler. The redis tier and
// database may be nil when those backends are not configured.
func NewHealthHandler(redisTier *cache.RedisTier, db *database.DB, client llm.Client) *HealthHandler {
	return &HealthHandler{redisTier: redisTier, db: db, client: client}
}

// HealthCheck returns the health status of the service and its dependencies
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	redisStatus := h.checkRedis()
	dbStatus := h.checkDatabase()
	modelStatus := h.checkModel()

	overallStatus := "healthy"
	statusCode := fiber.StatusOK

	if redisStatus == "unhealthy" || dbStatus == "unhealthy" || modelStatus == "unhealthy" {
		overallStatus = "degraded"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": fiber.Map{
			"redis":    redisStatus,
			"database": dbStatus,
			"model":    modelStatus,
		},
	})
}

// checkRedis verifies connectivity to the optional second cache tier.
func (h *HealthHandler) checkRedis() string {
	if h.redisTier == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.redisTier.Ping(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// checkDatabase verifies the embedding store's database connection.
func (h *HealthHandler) checkDatabase() string {
	if h.db == nil {
		return "disabled"
	}

	if err := h.db.Ping(); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// checkModel verifies the model server answers. Local model servers can take
// a while to load weights on first contact, so the timeout is generous.
func (h *HealthHandler) checkModel() string {
	if h.client == nil {
		return "unknown"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := h.client.Ping(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}
