package models

import "strings"

// Identifier prefixes for the two reminder families. The identifier is the
// stable key guaranteeing at most one pending request per logical reminder.
const (
	MealReminderPrefix  = "meal_reminder_"
	ScheduledMealPrefix = "scheduled_meal_"

	// WorkoutPlanIdentifier keys the one-shot workout-plan notification.
	WorkoutPlanIdentifier = "workout_plan"

	// ActivityBurnPrefix prefixes the per-event activity-burn identifiers.
	ActivityBurnPrefix = "activity_burn_"
)

// MealReminderIdentifier returns the identifier for a fixed meal category.
func MealReminderIdentifier(category MealCategory) string {
	return MealReminderPrefix + string(category)
}

// ScheduledMealIdentifier returns the identifier for a scheduled-meal id.
func ScheduledMealIdentifier(id string) string {
	return ScheduledMealPrefix + id
}

// IsReminderIdentifier reports whether the identifier belongs to a reminder
// family this engine owns.
func IsReminderIdentifier(identifier string) bool {
	return strings.HasPrefix(identifier, MealReminderPrefix) ||
		strings.HasPrefix(identifier, ScheduledMealPrefix) ||
		strings.HasPrefix(identifier, ActivityBurnPrefix) ||
		identifier == WorkoutPlanIdentifier
}
