package handler

import (
	"context"
	"time"

	"refermatch/internal/database"
	"refermatch/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	db    database.DB
	redis *redis.Client
}

func NewHealthHandler(db database.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	dbOK := h.db != nil && h.db.Ping(ctx) == nil
	redisOK := h.redis != nil && h.redis.Ping(ctx).Err() == nil

	data := fiber.Map{
		"database": dbOK,
		"redis":    redisOK,
		"time":     time.Now().UTC().Format(time.RFC3339),
	}

	if !dbOK || !redisOK {
		return response.Error(c, fiber.StatusServiceUnavailable, "degraded", data)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
