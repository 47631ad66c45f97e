// Package quiet implements the quiet-hours policy.
//
// The policy is a pure function of wall-clock time and the configured
// window. It never suppresses delivery, only downgrades the interruption
// level: quiet reminders are still posted, silently.
package quiet

import (
	"time"

	"github.com/Forkful/MealNudge/internal/models"
)

// IsQuiet reports whether now falls inside the configured window. Both
// window edges are inclusive. A window whose start is after its end wraps
// past midnight.
func IsQuiet(now time.Time, settings models.QuietHoursSettings) bool {
	if !settings.Enabled {
		return false
	}

	current := now.Hour()*60 + now.Minute()
	start := settings.Start.Minutes()
	end := settings.End.Minutes()

	if start <= end {
		return current >= start && current <= end
	}
	// Overnight window, e.g. 22:00-07:00.
	return current >= start || current <= end
}

// Level maps the quiet decision to an interruption level: quiet reminders
// deliver passively, everything else actively.
func Level(now time.Time, settings models.QuietHoursSettings) models.InterruptionLevel {
	if IsQuiet(now, settings) {
		return models.InterruptionPassive
	}
	return models.InterruptionActive
}
