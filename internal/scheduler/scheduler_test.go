package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Forkful/MealNudge/internal/auth"
	"github.com/Forkful/MealNudge/internal/catalog"
	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/rotation"
	"github.com/Forkful/MealNudge/internal/store"
	"github.com/Forkful/MealNudge/internal/testutil"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, center *testutil.FakeCenter) *Scheduler {
	t.Helper()
	repo := store.NewInMemoryStore()
	gate := auth.NewGate(repo, center)
	return New(center, rotation.New(repo), gate, WithClock(testutil.FixedClock(testNow)), WithActivityJitter(0))
}

func TestScheduleMealReminderCancelBeforeAdd(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)
	at := models.TimeOfDay{Hour: 8, Minute: 30}

	if err := sched.ScheduleMealReminder(context.Background(), models.MealBreakfast, at, true); err != nil {
		t.Fatalf("first schedule: %v", err)
	}
	if err := sched.ScheduleMealReminder(context.Background(), models.MealBreakfast, at, true); err != nil {
		t.Fatalf("re-schedule: %v", err)
	}

	pending := center.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected exactly 1 pending request, got %d", len(pending))
	}
	req := pending[0]
	if req.Identifier != "meal_reminder_breakfast" {
		t.Errorf("unexpected identifier %q", req.Identifier)
	}
	if req.Trigger.Kind != models.TriggerCalendarDaily || req.Trigger.At != at {
		t.Errorf("unexpected trigger %+v", req.Trigger)
	}
	// The removal preceding each add is what makes re-scheduling idempotent.
	if len(center.RemovedPending) != 2 {
		t.Errorf("expected cancel-before-add on both calls, got removals %v", center.RemovedPending)
	}
}

func TestScheduleMealReminderDisabledRemovesAndSkips(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)
	at := models.TimeOfDay{Hour: 19}

	if err := sched.ScheduleMealReminder(context.Background(), models.MealDinner, at, true); err != nil {
		t.Fatal(err)
	}
	if err := sched.ScheduleMealReminder(context.Background(), models.MealDinner, at, false); err != nil {
		t.Fatal(err)
	}

	if len(center.Pending()) != 0 {
		t.Error("disabling a category must remove its pending request")
	}
	if len(center.Submissions) != 1 {
		t.Errorf("disabled call must not submit, got %d submissions", len(center.Submissions))
	}
}

func TestScheduleMealReminderUnauthorizedIsSilentNoOp(t *testing.T) {
	center := testutil.NewFakeCenter()
	center.AuthState = models.AuthorizationDenied
	sched := newTestScheduler(t, center)

	err := sched.ScheduleMealReminder(context.Background(), models.MealLunch, models.TimeOfDay{Hour: 12}, true)
	if err != nil {
		t.Fatalf("unauthorized schedule must not error, got %v", err)
	}
	if len(center.Submissions) != 0 {
		t.Error("unauthorized schedule must not submit")
	}
	// The stale-request removal still happens before the gate check.
	if len(center.RemovedPending) != 1 {
		t.Errorf("expected stale removal even when unauthorized, got %v", center.RemovedPending)
	}
}

func TestScheduleMealReminderRejectsInvalidCategory(t *testing.T) {
	sched := newTestScheduler(t, testutil.NewFakeCenter())
	err := sched.ScheduleMealReminder(context.Background(), "brunch", models.TimeOfDay{Hour: 10}, true)
	if err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestScheduleMealReminderRotatesCopy(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)
	at := models.TimeOfDay{Hour: 8}

	sched.ScheduleMealReminder(context.Background(), models.MealBreakfast, at, true)
	sched.ScheduleMealReminder(context.Background(), models.MealBreakfast, at, true)

	if center.Submissions[0].Content == center.Submissions[1].Content {
		t.Error("consecutive schedules should rotate to different copy")
	}
}

func TestScheduleScheduledMealOneShot(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)
	target := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	err := sched.ScheduleScheduledMeal(context.Background(), "42", models.RecurrenceNone, target, "18:15", "taco night")
	if err != nil {
		t.Fatalf("ScheduleScheduledMeal: %v", err)
	}

	pending := center.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	req := pending[0]
	if req.Identifier != "scheduled_meal_42" {
		t.Errorf("unexpected identifier %q", req.Identifier)
	}
	want := time.Date(2026, 3, 12, 18, 15, 0, 0, time.UTC)
	if req.Trigger.Kind != models.TriggerCalendarDate || !req.Trigger.FireAt.Equal(want) {
		t.Errorf("unexpected trigger %+v", req.Trigger)
	}
	if !strings.Contains(req.Content.Body, "taco night") {
		t.Errorf("label missing from body %q", req.Content.Body)
	}
}

func TestScheduleScheduledMealPastFireTimeSkips(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)
	// testNow is 12:00; 09:00 the same day has already passed.
	target := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	err := sched.ScheduleScheduledMeal(context.Background(), "7", models.RecurrenceNone, target, "09:00", "")
	if err != nil {
		t.Fatalf("past fire time must not error, got %v", err)
	}
	if len(center.Submissions) != 0 {
		t.Error("past fire time must not submit")
	}
	if len(center.Pending()) != 0 {
		t.Error("past fire time must not alter pending state")
	}
}

func TestScheduleScheduledMealPastSkipKeepsExistingPending(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)

	future := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	if err := sched.ScheduleScheduledMeal(context.Background(), "7", models.RecurrenceNone, future, "18:00", ""); err != nil {
		t.Fatal(err)
	}

	// Re-scheduling the same id with an already-passed fire time must not
	// destroy the reminder that is still armed.
	past := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if err := sched.ScheduleScheduledMeal(context.Background(), "7", models.RecurrenceNone, past, "09:00", ""); err != nil {
		t.Fatal(err)
	}

	pending := center.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected the original pending request to survive, got %d", len(pending))
	}
	want := time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC)
	if !pending[0].Trigger.FireAt.Equal(want) {
		t.Errorf("surviving request has trigger %v, want fire at %v", pending[0].Trigger, want)
	}
}

func TestScheduleScheduledMealDailyIgnoresDate(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)
	// A date deep in the past is fine for a daily repeat.
	target := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	err := sched.ScheduleScheduledMeal(context.Background(), "9", models.RecurrenceDaily, target, "07:45", "oatmeal")
	if err != nil {
		t.Fatal(err)
	}
	pending := center.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	trig := pending[0].Trigger
	if trig.Kind != models.TriggerCalendarDaily || trig.At != (models.TimeOfDay{Hour: 7, Minute: 45}) {
		t.Errorf("unexpected trigger %+v", trig)
	}
}

func TestScheduleScheduledMealMalformedTimeFallsBack(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)
	target := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	for _, timeString := range []string{"", "25:61", "noonish", "12"} {
		if err := sched.ScheduleScheduledMeal(context.Background(), "5", models.RecurrenceNone, target, timeString, ""); err != nil {
			t.Fatalf("time string %q: %v", timeString, err)
		}
	}
	for _, req := range center.Submissions {
		if req.Trigger.FireAt.Hour() != 9 || req.Trigger.FireAt.Minute() != 0 {
			t.Errorf("expected 09:00 fallback, got %v", req.Trigger.FireAt)
		}
	}
}

func TestCancelRemovesPendingAndDelivered(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)

	sched.ScheduleMealReminder(context.Background(), models.MealLunch, models.TimeOfDay{Hour: 12}, true)
	center.AddDelivered(models.DeliveredNotification{Identifier: "meal_reminder_lunch"})

	sched.Cancel("meal_reminder_lunch")

	if len(center.Pending()) != 0 {
		t.Error("cancel must remove the pending request")
	}
	if len(center.Delivered()) != 0 {
		t.Error("cancel must scrub the delivered copy")
	}
}

func TestNotifyActivityBurnSubstitutesPlaceholders(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)

	vals := catalog.ActivityValues{Burned: 320, Activity: "Running", Duration: "25 min", CaloriesLeft: 480}
	err := sched.NotifyActivityBurn(context.Background(), vals)
	if err != nil {
		t.Fatal(err)
	}
	if len(center.Submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(center.Submissions))
	}
	req := center.Submissions[0]
	full := req.Content.Title + " " + req.Content.Body
	if strings.Contains(full, "{") || strings.Contains(full, "}") {
		t.Errorf("unsubstituted placeholder in %q", full)
	}
	if !strings.Contains(full, "320") || !strings.Contains(full, "Running") ||
		!strings.Contains(full, "25 min") || !strings.Contains(full, "480") {
		t.Errorf("missing substituted value in %q", full)
	}
	if req.Trigger.Kind != models.TriggerInterval {
		t.Errorf("activity notification must be a relative-delay one-shot, got %s", req.Trigger.Kind)
	}
	if !strings.HasPrefix(req.Identifier, models.ActivityBurnPrefix) {
		t.Errorf("unexpected identifier %q", req.Identifier)
	}
}

func TestScheduleWorkoutPlanClampsDelay(t *testing.T) {
	center := testutil.NewFakeCenter()
	sched := newTestScheduler(t, center)

	if err := sched.ScheduleWorkoutPlan(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	req := center.Submissions[0]
	if req.Identifier != models.WorkoutPlanIdentifier {
		t.Errorf("unexpected identifier %q", req.Identifier)
	}
	if req.Trigger.Delay != time.Second {
		t.Errorf("expected clamped 1s delay, got %v", req.Trigger.Delay)
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]models.TimeOfDay{
		"08:30":  {Hour: 8, Minute: 30},
		"23:59":  {Hour: 23, Minute: 59},
		"0:05":   {Hour: 0, Minute: 5},
		"24:00":  DefaultScheduledTime,
		"12:60":  DefaultScheduledTime,
		"-1:30":  DefaultScheduledTime,
		"":       DefaultScheduledTime,
		"noon":   DefaultScheduledTime,
		"1html2": DefaultScheduledTime,
	}
	for in, want := range cases {
		if got := ParseClock(in); got != want {
			t.Errorf("ParseClock(%q) = %v, want %v", in, got, want)
		}
	}
}
