package routes

import (
	v1 "refermatch/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

type V1Deps = v1.Deps

func RegisterV1(r fiber.Router, deps V1Deps) {
	if r == nil {
		return
	}

	v1.Register(r, deps)
}
