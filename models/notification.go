package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	NotificationTypeXPAwarded      = "xp_awarded"
	NotificationTypeLevelUp        = "level_up"
	NotificationTypeBadgeAwarded   = "badge_awarded"
	NotificationTypeTrickPublished = "trick_published"
)

// JSONMap stores arbitrary notification payload data as JSONB.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		m = JSONMap{}
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
}

// Notification is one toast/badge item for the UI. The backend only
// produces the data; rendering and dispatch belong to the client.
type Notification struct {
	ID             string  `json:"id" gorm:"primaryKey;type:uuid"`
	ExternalUserID string  `json:"external_user_id" gorm:"index;not null"`
	Type           string  `json:"type" gorm:"type:varchar(32);not null"`
	Title          string  `json:"title"`
	Message        string  `json:"message"`
	Data           JSONMap `json:"data" gorm:"type:jsonb"` // e.g., {"points": 105, "new_level": 3, "unlocks": [...]}
	Read           bool    `json:"read" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
