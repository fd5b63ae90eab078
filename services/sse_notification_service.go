package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"trickipedia/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StreamUserNotificationsSSE streams real-time notifications (XP awards,
// level-ups, badges, publishes) for the authenticated user
func (s *ProgressionService) StreamUserNotificationsSSE(c *fiber.Ctx) error {
	// SSEAuthMiddleware sets "userID"; UserContextMiddleware sets "user_id".
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		userID, _ = c.Locals("user_id").(string)
	}
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	// Use fasthttp stream writer (THIS replaces Flush)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastMaxCreatedAt time.Time

		// Initialize cursor
		var latest models.Notification
		if err := s.DB.
			Where("external_user_id = ?", userID).
			Order("created_at DESC").
			First(&latest).Error; err == nil {
			lastMaxCreatedAt = latest.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for user %s: %v", userID, err)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for range ticker.C {
			var notes []models.Notification
			err := s.DB.
				Where("external_user_id = ? AND created_at > ?", userID, lastMaxCreatedAt).
				Order("created_at ASC").
				Find(&notes).Error
			if err != nil {
				log.Printf("SSE poll error for user %s: %v", userID, err)
				continue
			}

			for _, note := range notes {
				payload, err := json.Marshal(note)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload); err != nil {
					// Client went away; fasthttp tears the stream down.
					return
				}
				lastMaxCreatedAt = note.CreatedAt
			}

			// Keepalive between batches
			if len(notes) == 0 {
				if _, err := w.WriteString(":\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})

	return nil
}
