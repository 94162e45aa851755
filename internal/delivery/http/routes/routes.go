package routes

import (
	"refermatch/internal/delivery/http/handler"
	"refermatch/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	runsWS *ws.Handler
	v1     V1Deps
}

func NewRegistry(health *handler.HealthHandler, runsWS *ws.Handler, v1 V1Deps) *Registry {
	return &Registry{health: health, runsWS: runsWS, v1: v1}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)
	app.Get("/ws/runs", r.runsWS.HandleRunsWS)

	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1)
}
