package models

import (
	"time"
)

// BadgeType: static config (loaded from DB or JSON)
type BadgeType struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Code        string `gorm:"uniqueIndex;not null"` // e.g., "FIRST_TRICK", "WIKI_GNOME"
	Name        string `gorm:"not null"`             // "First Trick", "Wiki Gnome"
	Description string
	IconURL     string           `gorm:"type:text"`                         // e.g., R2 URL to SVG/png
	Rarity      string           `gorm:"type:varchar(16);default:'common'"` // common, rare, epic, legendary
	Threshold   map[string]int64 `gorm:"type:jsonb"`                        // e.g., {"tricks_created": 10}, {"level": 5}
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
}

// UserBadge: awarded instance (many-to-many)
type UserBadge struct {
	ID             string    `gorm:"primaryKey;type:uuid"`
	ExternalUserID string    `gorm:"index;not null"`
	BadgeTypeID    string    `gorm:"index;not null"`
	AwardedAt      time.Time `gorm:"autoCreateTime"`
	Metadata       string    `gorm:"type:jsonb"` // e.g., {"trick_id": "...", "points": 105}
}

// Predefined badge triggers
var BadgeTriggers = []BadgeType{
	{
		Code:        "WELCOME",
		Name:        "Welcome Aboard!",
		Description: "Joined Trickipedia",
		Rarity:      "common",
		Threshold:   map[string]int64{"event": 1}, // awarded on signup
	},
	{
		Code:        "FIRST_TRICK",
		Name:        "First Trick",
		Description: "Contributed your first trick",
		Rarity:      "common",
		Threshold:   map[string]int64{"tricks_created": 1},
	},
	{
		Code:        "TRICK_LIBRARY",
		Name:        "Trick Library",
		Description: "Contributed 25 tricks",
		Rarity:      "epic",
		Threshold:   map[string]int64{"tricks_created": 25},
	},
	{
		Code:        "WIKI_GNOME",
		Name:        "Wiki Gnome",
		Description: "Made 50 edits to existing tricks",
		Rarity:      "rare",
		Threshold:   map[string]int64{"tricks_edited": 50},
	},
	{
		Code:        "VETERAN",
		Name:        "Veteran",
		Description: "Reached level 5",
		Rarity:      "rare",
		Threshold:   map[string]int64{"level": 5},
	},
	{
		Code:        "LEGEND",
		Name:        "Living Legend",
		Description: "Reached the top of the ladder",
		Rarity:      "legendary",
		Threshold:   map[string]int64{"level": 8},
	},
}
