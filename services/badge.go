package services

import (
	"fmt"
	"log"

	"trickipedia/models"
	"trickipedia/xp"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// AutoAwardBadges checks all badge triggers for a user after a progress update
func (s *BadgeService) AutoAwardBadges(externalUserID string, levels []xp.Level) error {
	var prof models.UserProfile
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
		return err
	}

	level := xp.Resolve(levels, prof.XP).Current.Level

	var awarded []string
	for _, trigger := range models.BadgeTriggers {
		if s.meetsThreshold(&prof, level, trigger.Threshold) {
			// Check if already awarded
			var count int64
			s.DB.Model(&models.UserBadge{}).
				Where("external_user_id = ? AND badge_type_id = ?", externalUserID, trigger.Code).
				Count(&count)
			if count == 0 {
				// Award!
				userBadge := models.UserBadge{
					ID:             uuid.NewString(),
					ExternalUserID: externalUserID,
					BadgeTypeID:    trigger.Code,
				}
				if err := s.DB.Create(&userBadge).Error; err != nil {
					return err
				}
				awarded = append(awarded, trigger.Name)
				log.Printf("🎖️ Badge awarded: %s → %s", trigger.Name, externalUserID)

				note := models.Notification{
					ID:             uuid.NewString(),
					ExternalUserID: externalUserID,
					Type:           models.NotificationTypeBadgeAwarded,
					Title:          fmt.Sprintf("🎉 You earned: %q!", trigger.Name),
					Message:        trigger.Description,
					Data:           models.JSONMap{"badge_code": trigger.Code, "rarity": trigger.Rarity},
				}
				_ = s.DB.Create(&note).Error
			}
		}
	}

	if len(awarded) > 0 {
		log.Printf("🎖️ %d new badge(s) for %s", len(awarded), externalUserID)
	}
	return nil
}

func (s *BadgeService) meetsThreshold(prof *models.UserProfile, level int, req map[string]int64) bool {
	for key, required := range req {
		switch key {
		case "tricks_created":
			if prof.TricksCreated < required {
				return false
			}
		case "tricks_edited":
			if prof.TricksEdited < required {
				return false
			}
		case "level":
			if int64(level) < required {
				return false
			}
		case "event": // special: always true (e.g., signup)
			return true
		}
	}
	return true
}

// GetUserBadges lists every badge a user has earned.
func (s *BadgeService) GetUserBadges(externalUserID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("awarded_at DESC").
		Find(&badges).Error
	return badges, err
}
