package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/voltai/billing-service/internal/persistence"
	"github.com/voltai/billing-service/internal/service"
)

// HealthHandler responds to health, liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	customers   *service.CustomerService
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	logger      *zap.Logger
}

// NewHealthHandler returns a new handler instance. Nil or disabled
// dependencies are skipped by the readiness probe.
func NewHealthHandler(serviceName, version string, customers *service.CustomerService, postgres *persistence.Postgres, redis *persistence.Redis, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		customers:   customers,
		postgres:    postgres,
		redis:       redis,
		logger:      logger,
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	count, err := h.customers.Count(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "DEGRADED",
			"timestamp": timestamp,
			"customers": nil,
		})
	}
	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": timestamp,
		"customers": count,
	})
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking configured dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if h.postgres.Enabled() {
		if err := h.postgres.Ping(ctx); err != nil {
			h.logger.Warn("postgres not ready", zap.Error(err))
			depStatus["postgres"] = err.Error()
			ready = false
		} else {
			depStatus["postgres"] = "ok"
		}
	}

	if h.redis.Enabled() {
		if err := h.redis.Ping(ctx); err != nil {
			h.logger.Warn("redis not ready", zap.Error(err))
			depStatus["redis"] = err.Error()
			ready = false
		} else {
			depStatus["redis"] = "ok"
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
