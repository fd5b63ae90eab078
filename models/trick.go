package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"trickipedia/xp"
)

const (
	TrickStatusDraft     = "draft"
	TrickStatusScheduled = "scheduled"
	TrickStatusPublished = "published"
)

// StringList stores a []string as a JSONB column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Category groups tricks by discipline (e.g., skateboarding, parkour).
type Category struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url,omitempty"`

	Timestamps
}

type Trick struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	CategoryID string `json:"category_id" gorm:"index;not null"`
	Name       string `json:"name" gorm:"not null"`
	Slug       string `json:"slug" gorm:"uniqueIndex;not null"`

	// 📝 Content
	Description    string `json:"description"`
	StepGuide      string `json:"step_by_step_guide"`
	TipsAndTricks  string `json:"tips_and_tricks"`
	CommonMistakes string `json:"common_mistakes"`
	SafetyNotes    string `json:"safety_notes"`

	// 🖼️ Media + references
	VideoURLs  StringList `json:"video_urls" gorm:"type:jsonb"`
	ImageURLs  StringList `json:"image_urls" gorm:"type:jsonb"`
	SourceURLs StringList `json:"source_urls" gorm:"type:jsonb"`

	// 🏷️ Classification
	Tags            StringList `json:"tags" gorm:"type:jsonb"`
	PrerequisiteIDs StringList `json:"prerequisite_ids" gorm:"type:jsonb"`
	Difficulty      int        `json:"difficulty" gorm:"default:1"` // 1–10
	IsCombo         bool       `json:"is_combo"`
	ComboComponents StringList `json:"combo_components" gorm:"type:jsonb"`

	// 🎛️ Publishing state
	Status    string     `json:"status" gorm:"default:'draft'"` // draft | scheduled | published
	PublishAt *time.Time `json:"publish_at"`                    // only used if scheduled

	CreatedBy string `json:"created_by" gorm:"index"` // external user id of the author

	Timestamps
}

// Snapshot projects a trick into the XP engine's scoring view.
func (t *Trick) Snapshot() xp.Snapshot {
	return xp.Snapshot{
		Description:     t.Description,
		StepGuide:       t.StepGuide,
		TipsAndTricks:   t.TipsAndTricks,
		CommonMistakes:  t.CommonMistakes,
		SafetyNotes:     t.SafetyNotes,
		VideoURLs:       t.VideoURLs,
		ImageURLs:       t.ImageURLs,
		Tags:            t.Tags,
		Prerequisites:   t.PrerequisiteIDs,
		SourceURLs:      t.SourceURLs,
		ComboComponents: t.ComboComponents,
		Difficulty:      t.Difficulty,
		IsCombo:         t.IsCombo,
		Published:       t.Status == TrickStatusPublished,
	}
}
