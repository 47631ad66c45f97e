// Package models defines the core data structures for MealNudge.
//
// It includes types for reminder copy, delivery triggers, notification
// requests, quiet-hours settings, and the authorization lifecycle, which are
// shared across modules.
package models

import (
	"errors"
	"fmt"
	"time"
)

// MealCategory identifies one of the fixed daily meal reminders.
type MealCategory string

const (
	MealBreakfast MealCategory = "breakfast"
	MealLunch     MealCategory = "lunch"
	MealDinner    MealCategory = "dinner"
)

// IsValidMealCategory checks if the given meal category is supported.
func IsValidMealCategory(c MealCategory) bool {
	switch c {
	case MealBreakfast, MealLunch, MealDinner:
		return true
	default:
		return false
	}
}

// Validation constants for input validation
const (
	// MaxNotificationTitleLength defines the maximum allowed length for a notification title
	MaxNotificationTitleLength = 128
	// MaxNotificationBodyLength defines the maximum allowed length for a notification body
	MaxNotificationBodyLength = 1024
	// MaxScheduledMealIDLength defines the maximum allowed length for a scheduled-meal id
	MaxScheduledMealIDLength = 64
)

// Error variables for better error handling and testability
var (
	ErrInvalidMealCategory  = errors.New("invalid meal category")
	ErrInvalidTimeOfDay     = errors.New("time of day out of range")
	ErrEmptyIdentifier      = errors.New("reminder identifier cannot be empty")
	ErrIdentifierTooLong    = errors.New("scheduled-meal id exceeds maximum length")
	ErrInvalidTrigger       = errors.New("invalid notification trigger")
	ErrInvalidQuietWindow   = errors.New("quiet-hours window out of range")
	ErrEmptyTemplateCatalog = errors.New("copy catalog is empty")
)

// CopyTemplate is one entry of a copy catalog: the title and body shown when
// a reminder fires. Activity templates carry placeholder tokens substituted
// at fire time.
type CopyTemplate struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Placeholder tokens recognized in activity copy templates.
const (
	PlaceholderBurned   = "{burned}"
	PlaceholderActivity = "{activity}"
	PlaceholderDuration = "{duration}"
	PlaceholderLeft     = "{left}"
)

// TimeOfDay is a wall-clock hour/minute pair used for recurring reminders.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Validate checks that the time of day is within wall-clock range.
func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, t.Hour, t.Minute)
	}
	return nil
}

// Minutes returns the time of day as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// QuietHoursSettings is the configured quiet-hours window plus its on/off
// flag. The window is wall-clock and may wrap past midnight (start > end).
type QuietHoursSettings struct {
	Enabled bool      `json:"enabled"`
	Start   TimeOfDay `json:"start"`
	End     TimeOfDay `json:"end"`
}

// Validate checks both window edges.
func (q QuietHoursSettings) Validate() error {
	if err := q.Start.Validate(); err != nil {
		return fmt.Errorf("%w: start %s", ErrInvalidQuietWindow, q.Start)
	}
	if err := q.End.Validate(); err != nil {
		return fmt.Errorf("%w: end %s", ErrInvalidQuietWindow, q.End)
	}
	return nil
}

// DefaultQuietHours returns the shipped quiet-hours configuration: disabled,
// 22:00-07:00.
func DefaultQuietHours() QuietHoursSettings {
	return QuietHoursSettings{
		Enabled: false,
		Start:   TimeOfDay{Hour: 22},
		End:     TimeOfDay{Hour: 7},
	}
}

// InterruptionLevel is how intrusively a delivered notification presents
// itself.
type InterruptionLevel string

const (
	// InterruptionPassive delivers silently; the notification is still posted.
	InterruptionPassive InterruptionLevel = "passive"
	// InterruptionActive delivers with sound/alert.
	InterruptionActive InterruptionLevel = "active"
)

// AuthorizationState tracks the notification permission lifecycle. Once a
// terminal state is reached the engine never prompts again.
type AuthorizationState string

const (
	AuthorizationNotDetermined AuthorizationState = "not_determined"
	AuthorizationAuthorized    AuthorizationState = "authorized"
	AuthorizationDenied        AuthorizationState = "denied"
)

// IsTerminal reports whether the state is an end state of the lifecycle.
func (s AuthorizationState) IsTerminal() bool {
	return s == AuthorizationAuthorized || s == AuthorizationDenied
}

// NotificationContent is what a delivered notification shows.
type NotificationContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NotificationRequest is one submission to the delivery capability: stable
// identifier, content, and the trigger governing when it fires. At most one
// pending request may exist per identifier.
type NotificationRequest struct {
	Identifier string              `json:"identifier"`
	Content    NotificationContent `json:"content"`
	Trigger    Trigger             `json:"trigger"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Validate performs basic validation on a notification request.
func (r NotificationRequest) Validate() error {
	if r.Identifier == "" {
		return ErrEmptyIdentifier
	}
	if len(r.Content.Title) > MaxNotificationTitleLength || len(r.Content.Body) > MaxNotificationBodyLength {
		return fmt.Errorf("notification content too long for %s", r.Identifier)
	}
	return r.Trigger.Validate()
}

// DeliveredNotification is a fired notification retained in the delivered
// list until scrubbed.
type DeliveredNotification struct {
	Identifier  string              `json:"identifier"`
	Content     NotificationContent `json:"content"`
	Level       InterruptionLevel   `json:"level"`
	DeliveredAt time.Time           `json:"delivered_at"`
}

// Recurrence selects how a scheduled-meal reminder repeats.
type Recurrence string

const (
	RecurrenceNone  Recurrence = "none"
	RecurrenceDaily Recurrence = "daily"
)
