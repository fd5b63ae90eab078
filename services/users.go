// services/users.go
package services

import (
	"strconv"
	"strings"

	"trickipedia/models"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers searches the local UserProfile mirror table.
func (s *ProgressionService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var users []models.UserProfile
	db := s.DB.Model(&models.UserProfile{}).Limit(limit)

	// Apply search filter if query is provided
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where(
			"LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?",
			searchTerm, searchTerm,
		)
	}

	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	// Minimal response shape: the external id is the key identifier for
	// consumers; internal fields stay private.
	type UserSummary struct {
		ID             string `json:"id"`
		ExternalUserID string `json:"external_user_id"`
		Username       string `json:"username"`
		DisplayName    string `json:"display_name"`
		AvatarURL      string `json:"avatar_url,omitempty"`
		XP             int64  `json:"xp"`
	}

	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{
			ID:             u.ID,
			ExternalUserID: u.ExternalUserID,
			Username:       u.Username,
			DisplayName:    u.DisplayName,
			AvatarURL:      u.AvatarURL,
			XP:             u.XP,
		}
	}
	return c.JSON(res)
}
