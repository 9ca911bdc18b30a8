// Package http implements the inbound HTTP adapters.
package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"quickmail_server/pkg/cache"
)

type HealthHandler struct {
	mongoPing            func(ctx context.Context) error
	cache                *cache.RedisCache
	classifierConfigured bool
	version              string
}

func NewHealthHandler(mongoPing func(ctx context.Context) error, cache *cache.RedisCache, classifierConfigured bool, version string) *HealthHandler {
	return &HealthHandler{
		mongoPing:            mongoPing,
		cache:                cache,
		classifierConfigured: classifierConfigured,
		version:              version,
	}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":                "ok",
		"version":               h.version,
		"classifier_configured": h.classifierConfigured,
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	// Check MongoDB
	if h.mongoPing != nil {
		if err := h.mongoPing(ctx); err != nil {
			checks["mongodb"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["mongodb"] = "healthy"
		}
	} else {
		checks["mongodb"] = "not configured"
	}

	// Check Redis
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := "ready"
	statusCode := fiber.StatusOK
	if !allHealthy {
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
