// Package push maps already-delivered remote-push payloads to internal
// application events.
//
// Payloads are untyped field bags owned by the backend. Routing never
// fails: unrecognized payloads yield no event, and recognized ones fill
// missing fields with documented defaults.
package push

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/Forkful/MealNudge/internal/models"
	"github.com/google/uuid"
)

// Payload is a decoded push payload as received from the transport layer.
type Payload map[string]interface{}

// Route validates the payload's route field and, on a match, extracts a
// normalized activity event. ok is false for payloads addressed elsewhere.
func Route(payload Payload) (models.ActivityEvent, bool) {
	route, _ := payload[models.PushFieldRoute].(string)
	if route != models.PushRouteActivity {
		slog.Debug("push.Route: payload ignored", "route", route)
		return models.ActivityEvent{}, false
	}

	evt := models.ActivityEvent{
		ID:           uuid.NewString(),
		Burned:       intField(payload, models.PushFieldBurned, 0),
		Activity:     stringField(payload, models.PushFieldActivity, models.DefaultActivityName),
		Duration:     stringField(payload, models.PushFieldDuration, models.DefaultDurationText),
		CaloriesLeft: intField(payload, models.PushFieldCaloriesLeft, 0),
		ReceivedAt:   time.Now(),
	}
	slog.Debug("push.Route: activity event extracted", "id", evt.ID, "burned", evt.Burned, "activity", evt.Activity)
	return evt, true
}

// stringField extracts a non-empty string field or returns the default.
func stringField(payload Payload, key, fallback string) string {
	if s, ok := payload[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// intField extracts a numeric field. JSON decoding yields float64; string
// numbers are tolerated because some push providers stringify everything.
func intField(payload Payload, key string, fallback int) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
