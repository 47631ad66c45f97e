package store

import (
	"encoding/json"
	"fmt"

	"github.com/Forkful/MealNudge/internal/models"
)

// Settings keys shared by the SQL backends.
const (
	settingQuietHours    = "quiet_hours"
	settingAuthorization = "authorization_state"
)

// encodeRequest serializes a notification request for the pending table.
func encodeRequest(req models.NotificationRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode pending request %s: %w", req.Identifier, err)
	}
	return string(data), nil
}

// decodeRequest deserializes a pending-table row.
func decodeRequest(payload string) (models.NotificationRequest, error) {
	var req models.NotificationRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, fmt.Errorf("failed to decode pending request: %w", err)
	}
	return req, nil
}

// encodeQuietHours serializes quiet-hours settings for the settings table.
func encodeQuietHours(settings models.QuietHoursSettings) (string, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("failed to encode quiet-hours settings: %w", err)
	}
	return string(data), nil
}

// decodeQuietHours deserializes a settings-table value.
func decodeQuietHours(value string) (models.QuietHoursSettings, error) {
	var settings models.QuietHoursSettings
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return settings, fmt.Errorf("failed to decode quiet-hours settings: %w", err)
	}
	return settings, nil
}
