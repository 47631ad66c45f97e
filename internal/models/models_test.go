package models

import (
	"testing"
	"time"
)

func TestDailyTriggerNextFire(t *testing.T) {
	trig := DailyTrigger(TimeOfDay{Hour: 8, Minute: 30})
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

	fireAt, ok := trig.NextFire(now)
	if !ok {
		t.Fatal("daily trigger should always have a next fire")
	}
	want := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	if !fireAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, fireAt)
	}

	// Past today's fire time: rolls to tomorrow.
	now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fireAt, _ = trig.NextFire(now)
	want = time.Date(2026, 3, 11, 8, 30, 0, 0, time.UTC)
	if !fireAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, fireAt)
	}
}

func TestDateTriggerInPastHasNoNextFire(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	trig := DateTrigger(now.Add(-time.Minute))
	if _, ok := trig.NextFire(now); ok {
		t.Error("past calendar_date trigger should not fire")
	}
}

func TestTriggerValidate(t *testing.T) {
	if err := DailyTrigger(TimeOfDay{Hour: 24}).Validate(); err == nil {
		t.Error("expected error for out-of-range hour")
	}
	if err := IntervalTrigger(0).Validate(); err == nil {
		t.Error("expected error for non-positive delay")
	}
	if err := (Trigger{Kind: "weekly"}).Validate(); err == nil {
		t.Error("expected error for unknown trigger kind")
	}
}

func TestMealReminderIdentifiers(t *testing.T) {
	if got := MealReminderIdentifier(MealBreakfast); got != "meal_reminder_breakfast" {
		t.Errorf("unexpected identifier %q", got)
	}
	if got := ScheduledMealIdentifier("42"); got != "scheduled_meal_42" {
		t.Errorf("unexpected identifier %q", got)
	}
	if !IsReminderIdentifier(WorkoutPlanIdentifier) {
		t.Error("workout_plan should be a reminder identifier")
	}
	if IsReminderIdentifier("unrelated_key") {
		t.Error("unrelated key should not be a reminder identifier")
	}
}
