// services/scheduler.go
package services

import (
	"log"
	"time"

	"trickipedia/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

func (s *TrickService) StartPublishScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: publish scheduled tricks
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var tricks []models.Trick
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_at <= ?", models.TrickStatusScheduled, now).
				Find(&tricks).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, t := range tricks {
				old := t
				t.Status = models.TrickStatusPublished
				t.PublishAt = nil
				if err := s.DB.Save(&t).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish trick %s: %v", t.ID, err)
					continue
				}
				log.Printf("✅ Auto-published trick: %s", t.Name)

				// The author still earns the publish award.
				if _, err := s.Progression.RecordTrickEdit(t.CreatedBy, &old, &t); err != nil {
					log.Printf("[Scheduler] XP award failed for %s: %v", t.Slug, err)
				}

				note := models.Notification{
					ID:             uuid.NewString(),
					ExternalUserID: t.CreatedBy,
					Type:           models.NotificationTypeTrickPublished,
					Title:          "Trick published",
					Message:        t.Name + " is now live",
					Data:           models.JSONMap{"trick_id": t.ID, "slug": t.Slug},
				}
				if err := s.DB.Create(&note).Error; err != nil {
					log.Printf("[Scheduler] Failed to create publish notification: %v", err)
				}
			}
		}),
	)
}
