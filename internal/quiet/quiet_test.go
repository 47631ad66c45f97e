package quiet

import (
	"testing"
	"time"

	"github.com/Forkful/MealNudge/internal/models"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func overnight() models.QuietHoursSettings {
	return models.QuietHoursSettings{
		Enabled: true,
		Start:   models.TimeOfDay{Hour: 22},
		End:     models.TimeOfDay{Hour: 7},
	}
}

func TestOvernightWindow(t *testing.T) {
	settings := overnight()
	cases := []struct {
		hour, minute int
		quiet        bool
	}{
		{23, 30, true},
		{6, 30, true},
		{12, 0, false},
		{22, 0, true}, // start edge inclusive
		{7, 0, true},  // end edge inclusive
		{7, 1, false},
		{21, 59, false},
		{0, 0, true},
	}
	for _, c := range cases {
		if got := IsQuiet(at(c.hour, c.minute), settings); got != c.quiet {
			t.Errorf("IsQuiet(%02d:%02d) = %v, want %v", c.hour, c.minute, got, c.quiet)
		}
	}
}

func TestSameDayWindow(t *testing.T) {
	settings := models.QuietHoursSettings{
		Enabled: true,
		Start:   models.TimeOfDay{Hour: 13},
		End:     models.TimeOfDay{Hour: 15, Minute: 30},
	}
	cases := []struct {
		hour, minute int
		quiet        bool
	}{
		{12, 59, false},
		{13, 0, true},
		{14, 0, true},
		{15, 30, true},
		{15, 31, false},
	}
	for _, c := range cases {
		if got := IsQuiet(at(c.hour, c.minute), settings); got != c.quiet {
			t.Errorf("IsQuiet(%02d:%02d) = %v, want %v", c.hour, c.minute, got, c.quiet)
		}
	}
}

func TestDisabledWindowIsNeverQuiet(t *testing.T) {
	settings := overnight()
	settings.Enabled = false
	if IsQuiet(at(23, 30), settings) {
		t.Error("disabled quiet hours must never be quiet")
	}
}

func TestLevelMapping(t *testing.T) {
	settings := overnight()
	if got := Level(at(23, 30), settings); got != models.InterruptionPassive {
		t.Errorf("inside window: expected passive, got %s", got)
	}
	if got := Level(at(12, 0), settings); got != models.InterruptionActive {
		t.Errorf("outside window: expected active, got %s", got)
	}
}
