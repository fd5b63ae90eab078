// handlers/gym_routes.go
package handlers

import (
	"trickipedia/middleware"
	"trickipedia/services"

	"github.com/gofiber/fiber/v2"
)

// SetupGymRoutes mounts the gym sandbox API. The sandbox is demo data —
// every collection is CRUD-able and the whole thing can be reset — but it
// still sits behind user context so resets are attributable.
func SetupGymRoutes(app *fiber.App, gymService *services.GymService) {
	gym := app.Group("/gym", middleware.UserContextMiddleware())
	gymService.RegisterRoutes(gym)
}
