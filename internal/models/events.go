package models

import "time"

// PushRouteActivity is the payload route value the push router recognizes.
const PushRouteActivity = "activity_recognition"

// Push payload field keys, as defined by the backend. The payload is an
// untyped field bag; every field has a documented default.
const (
	PushFieldRoute        = "route"
	PushFieldBurned       = "calories_burned"
	PushFieldActivity     = "activity_name"
	PushFieldDuration     = "duration_text"
	PushFieldCaloriesLeft = "calories_left"
)

// Defaults applied when push payload fields are missing or malformed.
const (
	DefaultActivityName = "Workout"
	DefaultDurationText = "a few minutes"
)

// ActivityEvent is the internal event republished when an
// activity-recognition push payload is routed.
type ActivityEvent struct {
	ID           string    `json:"id"`
	Burned       int       `json:"burned"`
	Activity     string    `json:"activity"`
	Duration     string    `json:"duration"`
	CaloriesLeft int       `json:"calories_left"`
	ReceivedAt   time.Time `json:"received_at"`
}
