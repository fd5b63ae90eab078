// handlers/trick_routes.go
package handlers

import (
	"trickipedia/middleware"
	"trickipedia/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTrickRoutes(app *fiber.App, trickService *services.TrickService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/tricks", trickService.GetAllTricks)
	app.Get("/tricks/minimal", trickService.GetMinimalTricks)
	app.Get("/tricks/:slug", trickService.GetTrickBySlug)
	app.Get("/categories", trickService.GetCategories)

	// 🔐 Secured routes — require user context (userID, roles), enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/tricks", trickService.CreateTrick)
	secured.Put("/tricks/:id", trickService.UpdateTrick)
	secured.Patch("/tricks/:id", trickService.UpdateTrick)
	secured.Delete("/tricks/:id", trickService.DeleteTrick)

	// ✅ Publishing — immediate or scheduled (publish_at in body)
	secured.Post("/tricks/:id/publish", trickService.PublishTrick)

	// ✅ Media — single file or zipped bundle
	secured.Post("/tricks/:id/media", trickService.UploadTrickMedia)
	secured.Post("/tricks/:id/media/bundle", trickService.ImportMediaBundle)

	secured.Post("/categories", trickService.CreateCategory)
}
