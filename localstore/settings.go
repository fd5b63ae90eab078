package localstore

import (
	"context"
	"encoding/json"
	"time"
)

// settingsID is the fixed id of the meta singleton inside the settings
// collection.
const settingsID = "gym-settings"

// Settings is the gym demo configuration singleton.
type Settings struct {
	ID                          string    `json:"id"`
	DemoMode                    bool      `json:"demo_mode"`
	AllowOverEnrollment         bool      `json:"allow_over_enrollment"`
	AutoCreateMemberOnSignature bool      `json:"auto_create_member_on_signature"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

func (s Settings) RecordID() string { return s.ID }

// settingsFlagDefaults maps each flag's JSON key to its default value.
// Flags introduced in later schema versions are backfilled from here when
// an older persisted record is first read (migration-by-read).
var settingsFlagDefaults = map[string]any{
	"demo_mode":                       true,
	"allow_over_enrollment":           false,
	"auto_create_member_on_signature": true,
}

func defaultSettings(now time.Time) Settings {
	return Settings{
		ID:                          settingsID,
		DemoMode:                    true,
		AllowOverEnrollment:         false,
		AutoCreateMemberOnSignature: true,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
}

// rawSettings lets the backfill see which keys were actually persisted,
// which the typed struct cannot distinguish from zero values.
type rawSettings map[string]json.RawMessage

func (r rawSettings) RecordID() string {
	var id string
	if raw, ok := r["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	return id
}

// GetOrInitSettings returns the settings singleton. Absent: it is created
// with defaults and persisted before returning. Present but written by an
// older schema: missing flags are backfilled with their defaults and the
// repaired record is persisted, so a second read returns it verbatim.
func (s *Store) GetOrInitSettings(ctx context.Context) (Settings, error) {
	raw, found, err := GetByID[rawSettings](ctx, s, SettingsCollection, settingsID)
	if err != nil {
		return Settings{}, err
	}

	now := time.Now().UTC()
	if !found {
		settings := defaultSettings(now)
		if err := Put(ctx, s, SettingsCollection, settings); err != nil {
			return Settings{}, err
		}
		return settings, nil
	}

	changed := false
	for key, def := range settingsFlagDefaults {
		if _, ok := raw[key]; !ok {
			encoded, _ := json.Marshal(def)
			raw[key] = encoded
			changed = true
		}
	}
	if _, ok := raw["created_at"]; !ok {
		encoded, _ := json.Marshal(now)
		raw["created_at"] = encoded
		changed = true
	}

	var settings Settings
	merged, err := json.Marshal(raw)
	if err != nil {
		return Settings{}, err
	}
	if err := json.Unmarshal(merged, &settings); err != nil {
		return Settings{}, err
	}
	settings.ID = settingsID

	if changed {
		settings.UpdatedAt = now
		if err := Put(ctx, s, SettingsCollection, settings); err != nil {
			return Settings{}, err
		}
	}
	return settings, nil
}

// SettingsPatch carries partial settings updates; nil fields are left
// untouched.
type SettingsPatch struct {
	DemoMode                    *bool `json:"demo_mode,omitempty"`
	AllowOverEnrollment         *bool `json:"allow_over_enrollment,omitempty"`
	AutoCreateMemberOnSignature *bool `json:"auto_create_member_on_signature,omitempty"`
}

// UpdateSettings merges a patch onto the current settings (initializing
// defaults first when absent), stamps UpdatedAt, persists, and returns the
// result. Concurrent updates are last-write-wins.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) (Settings, error) {
	settings, err := s.GetOrInitSettings(ctx)
	if err != nil {
		return Settings{}, err
	}

	if patch.DemoMode != nil {
		settings.DemoMode = *patch.DemoMode
	}
	if patch.AllowOverEnrollment != nil {
		settings.AllowOverEnrollment = *patch.AllowOverEnrollment
	}
	if patch.AutoCreateMemberOnSignature != nil {
		settings.AutoCreateMemberOnSignature = *patch.AutoCreateMemberOnSignature
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := Put(ctx, s, SettingsCollection, settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
