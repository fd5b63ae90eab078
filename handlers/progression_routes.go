// handlers/progression_routes.go
package handlers

import (
	"strconv"

	"trickipedia/middleware"
	"trickipedia/models"
	"trickipedia/services"
	"trickipedia/xp"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, progressionService *services.ProgressionService, badgeService *services.BadgeService, authClient *services.AuthServiceClient) {
	// 🔓 Public routes — the level ladder is static config, safe to expose
	app.Get("/levels", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"levels": xp.DefaultLevels})
	})
	app.Get("/users/search", progressionService.SearchUsers)

	// 🔐 Secured routes — require user context (userID, roles)
	// The gateway forwards paths like /api/v1/tricks/s/user/progress -> /user/progress
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prof, progress, err := progressionService.GetProgress(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve progress",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"id":               prof.ID,
			"xp":               prof.XP,
			"level":            progress.Current.Level,
			"level_name":       progress.Current.Name,
			"level_color":      progress.Current.Color,
			"next_level":       progress.Next,
			"progress_pct":     progress.ProgressPct,
			"xp_to_next":       progress.XPToNext,
			"tricks_created":   prof.TricksCreated,
			"tricks_edited":    prof.TricksEdited,
			"last_level_up_at": prof.LastLevelUpAt,
		})
	})

	securedGroup.Get("/user/notifications", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))

		notes, err := progressionService.GetRecentNotifications(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get notifications",
				"cause": err.Error(),
			})
		}
		return c.JSON(notes)
	})

	securedGroup.Patch("/user/notifications/:id/read", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if err := progressionService.MarkNotificationRead(userID, c.Params("id")); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to mark notification read",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "marked read"})
	})

	securedGroup.Get("/user/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		badges, err := badgeService.GetUserBadges(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badges",
				"cause": err.Error(),
			})
		}

		// Enrich with the static trigger catalog (badge_type_id stores the code)
		byCode := make(map[string]models.BadgeType, len(models.BadgeTriggers))
		for _, t := range models.BadgeTriggers {
			byCode[t.Code] = t
		}

		response := make([]fiber.Map, 0, len(badges))
		for _, ub := range badges {
			t := byCode[ub.BadgeTypeID]
			response = append(response, fiber.Map{
				"id":          ub.ID,
				"code":        ub.BadgeTypeID,
				"name":        t.Name,
				"description": t.Description,
				"icon_url":    t.IconURL,
				"rarity":      t.Rarity,
				"awarded_at":  ub.AwardedAt,
				"metadata":    ub.Metadata,
			})
		}
		return c.JSON(response)
	})

	// 📡 SSE stream — EventSource can't set headers, so auth rides on query params
	app.Get("/user/notifications/stream",
		middleware.SSEAuthMiddleware(authClient),
		progressionService.StreamUserNotificationsSSE)

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			XP     int64  `json:"xp" validate:"required,min=1"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if _, err := progressionService.AwardXP(req.UserID, req.XP, req.Reason); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "XP award failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message": "XP granted successfully",
			"user_id": req.UserID,
			"xp":      req.XP,
		})
	})
}
