// src/models/settings.go
package models

import (
	"database/sql"
	"errors"
)

// Setting keys persisted for the dashboard. These mirror the two preferences
// the settings page exposes; everything else the backend serves is derived.
const (
	SettingUseMockData    = "use_mock_data"
	SettingCustomEndpoint = "custom_rpc_endpoint"
)

// GetSetting returns the stored value for key, or "" when unset.
func GetSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetSetting upserts a preference value.
func SetSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}
