package services

import (
	"fmt"
	"log"
	"time"

	"trickipedia/models"
	"trickipedia/xp"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressionService struct {
	DB     *gorm.DB
	Levels []xp.Level
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db, Levels: xp.DefaultLevels}
}

// AwardResult is what the notification/UI layer needs after an award.
type AwardResult struct {
	Profile   *models.UserProfile `json:"profile"`
	Points    int64               `json:"points"`
	LeveledUp bool                `json:"leveled_up"`
	Progress  xp.Progress         `json:"progress"`
	Unlocked  []string            `json:"unlocked,omitempty"`
}

// EnsureProfile ensures a UserProfile row exists (idempotent)
func (s *ProgressionService) EnsureProfile(externalUserID string) (*models.UserProfile, error) {
	var prof models.UserProfile
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error
	if err == gorm.ErrRecordNotFound {
		prof = models.UserProfile{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			XP:             0,
		}
		if err := s.DB.Create(&prof).Error; err != nil {
			return nil, err
		}
		return &prof, nil
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// AwardXP atomically adds a non-negative delta to the stored XP total and
// returns the updated profile with level/unlock info. A missing profile is
// created with the delta as its initial XP rather than failing.
func (s *ProgressionService) AwardXP(externalUserID string, points int64, reason string) (*AwardResult, error) {
	if points < 0 {
		return nil, fmt.Errorf("negative XP award (%d) for %s", points, externalUserID)
	}

	var result *AwardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var prof models.UserProfile
		if err := tx.Where("external_user_id = ?", externalUserID).First(&prof).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			prof = models.UserProfile{
				ID:             uuid.NewString(),
				ExternalUserID: externalUserID,
			}
			if err := tx.Create(&prof).Error; err != nil {
				return err
			}
		}

		oldXP := prof.XP
		prof.XP += points

		before := xp.Resolve(s.Levels, oldXP)
		after := xp.Resolve(s.Levels, prof.XP)
		leveledUp := after.Current.Level > before.Current.Level
		unlocked := xp.NewlyUnlocked(s.Levels, oldXP, prof.XP)

		if leveledUp {
			now := time.Now()
			prof.LastLevelUpAt = &now
		}

		if err := tx.Save(&prof).Error; err != nil {
			return err
		}

		if err := s.createAwardNotifications(tx, &prof, points, reason, after, leveledUp, unlocked); err != nil {
			return err
		}

		// Copy for return (avoid pointer to stack var)
		saved := prof
		result = &AwardResult{
			Profile:   &saved,
			Points:    points,
			LeveledUp: leveledUp,
			Progress:  after,
			Unlocked:  unlocked,
		}

		log.Printf("🛹 XP Awarded: %s → +%d XP (total=%d, level=%d) (reason: %s)",
			externalUserID, points, prof.XP, after.Current.Level, reason)

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Auto-award badges — after commit so the badge pass sees the new totals
	badgeSvc := NewBadgeService(s.DB)
	_ = badgeSvc.AutoAwardBadges(externalUserID, s.Levels) // fire-and-forget

	return result, nil
}

// createAwardNotifications persists the toast data for the UI: one entry
// for the award itself, one more when a level boundary was crossed.
func (s *ProgressionService) createAwardNotifications(tx *gorm.DB, prof *models.UserProfile,
	points int64, reason string, after xp.Progress, leveledUp bool, unlocked []string) error {

	award := models.Notification{
		ID:             uuid.NewString(),
		ExternalUserID: prof.ExternalUserID,
		Type:           models.NotificationTypeXPAwarded,
		Title:          fmt.Sprintf("+%d XP", points),
		Message:        reason,
		Data: models.JSONMap{
			"points":   points,
			"total_xp": prof.XP,
		},
	}
	if err := tx.Create(&award).Error; err != nil {
		return err
	}

	if !leveledUp {
		return nil
	}

	levelUp := models.Notification{
		ID:             uuid.NewString(),
		ExternalUserID: prof.ExternalUserID,
		Type:           models.NotificationTypeLevelUp,
		Title:          fmt.Sprintf("Level %d — %s!", after.Current.Level, after.Current.Name),
		Message:        fmt.Sprintf("You reached level %d", after.Current.Level),
		Data: models.JSONMap{
			"new_level": after.Current.Level,
			"name":      after.Current.Name,
			"unlocks":   unlocked,
		},
	}
	return tx.Create(&levelUp).Error
}

// RecordTrickCreation scores a new trick and awards the author.
func (s *ProgressionService) RecordTrickCreation(externalUserID string, trick *models.Trick) (*AwardResult, error) {
	points := int64(xp.ScoreCreation(trick.Snapshot()))

	if err := s.incrementCounter(externalUserID, "tricks_created"); err != nil {
		return nil, err
	}
	return s.AwardXP(externalUserID, points, fmt.Sprintf("trick_created:%s", trick.Slug))
}

// RecordTrickEdit scores the diff between two versions and awards the editor.
func (s *ProgressionService) RecordTrickEdit(externalUserID string, old, updated *models.Trick) (*AwardResult, error) {
	points := int64(xp.ScoreEdit(old.Snapshot(), updated.Snapshot()))

	if err := s.incrementCounter(externalUserID, "tricks_edited"); err != nil {
		return nil, err
	}
	return s.AwardXP(externalUserID, points, fmt.Sprintf("trick_edited:%s", updated.Slug))
}

func (s *ProgressionService) incrementCounter(externalUserID, column string) error {
	if _, err := s.EnsureProfile(externalUserID); err != nil {
		return err
	}
	return s.DB.Model(&models.UserProfile{}).
		Where("external_user_id = ?", externalUserID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// GetProgress resolves the stored XP total for rendering progress bars.
func (s *ProgressionService) GetProgress(externalUserID string) (*models.UserProfile, xp.Progress, error) {
	prof, err := s.EnsureProfile(externalUserID)
	if err != nil {
		return nil, xp.Progress{}, err
	}
	return prof, xp.Resolve(s.Levels, prof.XP), nil
}

// GetRecentNotifications returns the newest notifications for a user.
func (s *ProgressionService) GetRecentNotifications(externalUserID string, limit int) ([]models.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var notes []models.Notification
	err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

// MarkNotificationRead flags one notification as read.
func (s *ProgressionService) MarkNotificationRead(externalUserID, notificationID string) error {
	return s.DB.Model(&models.Notification{}).
		Where("id = ? AND external_user_id = ?", notificationID, externalUserID).
		Update("read", true).Error
}
