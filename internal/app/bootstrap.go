package app

import (
	"fmt"
	"strings"

	"refermatch/internal/delivery/http/handler"
	"refermatch/internal/delivery/http/middleware"
	"refermatch/internal/delivery/http/routes"
	"refermatch/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
	Hub   *ws.Hub
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	hub := ws.NewHub(c.Logger)

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c, hub)

	return &App{Fiber: f, Hub: hub}
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container, hub *ws.Hub) {
	if app == nil {
		return
	}

	registry := routes.NewRegistry(
		handler.NewHealthHandler(c.DB, c.Redis),
		ws.NewHandler(hub, c.Logger),
		routes.V1Deps{
			Config: c.Config,
			DB:     c.DB,
			Queue:  c.Queue,
			Runs:   c.Runs,
			Logger: c.Logger,
		},
	)
	registry.Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
