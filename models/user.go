package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile mirrors the profile service's user record and owns the
// persisted XP total (denormalized for fast progress rendering).
type UserProfile struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Role        string `gorm:"type:varchar(16);default:'member'" json:"role"` // member | moderator | admin

	// Core progression — XP only grows, one award at a time
	XP int64 `json:"xp" gorm:"default:0"`

	// Contribution counters
	TricksCreated int64 `json:"tricks_created" gorm:"default:0"`
	TricksEdited  int64 `json:"tricks_edited" gorm:"default:0"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
