// Package scheduler decides when reminders fire and what copy they carry.
//
// It owns the two scheduling modes (recurring daily meal reminders and
// one-shot/daily scheduled-meal reminders), the activity-burn and
// workout-plan one-shots, and the cancel-before-add idempotency that keeps
// the delivery capability at exactly one pending request per reminder
// identity. Platform-delivery failures are logged, never propagated: the
// caller re-submits naturally on the next relevant event.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Forkful/MealNudge/internal/auth"
	"github.com/Forkful/MealNudge/internal/catalog"
	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/notify"
	"github.com/Forkful/MealNudge/internal/rotation"
	"github.com/Forkful/MealNudge/internal/util"
	"github.com/google/uuid"
)

// Defaults for scheduled-meal time parsing and near-immediate one-shots.
var (
	// DefaultScheduledTime is used when a scheduled-meal time string is
	// missing or malformed.
	DefaultScheduledTime = models.TimeOfDay{Hour: 9, Minute: 0}
	// DefaultActivityDelay is the base delay before an activity-burn
	// notification presents.
	DefaultActivityDelay = 3 * time.Second
	// DefaultActivityJitter staggers bursts of activity notifications.
	DefaultActivityJitter = 2 * time.Second
)

// Workout-plan fixed copy.
var workoutPlanContent = models.NotificationContent{
	Title: "Your workout plan is ready",
	Body:  "We put together today's workout for you. Open the app to get started.",
}

// Opts holds configuration options for the Scheduler.
type Opts struct {
	Clock          func() time.Time
	ActivityDelay  time.Duration
	ActivityJitter time.Duration
}

// Option defines a configuration option for the Scheduler.
type Option func(*Opts)

// WithClock injects a time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) { o.Clock = clock }
}

// WithActivityDelay sets the base delay for activity-burn notifications.
func WithActivityDelay(d time.Duration) Option {
	return func(o *Opts) { o.ActivityDelay = d }
}

// WithActivityJitter sets the random spread added to the activity delay.
func WithActivityJitter(d time.Duration) Option {
	return func(o *Opts) { o.ActivityJitter = d }
}

// Scheduler builds notification requests and submits them through the
// delivery center.
type Scheduler struct {
	center         notify.Center
	rotation       *rotation.Store
	gate           *auth.Gate
	clock          func() time.Time
	activityDelay  time.Duration
	activityJitter time.Duration
}

// New creates a Scheduler.
func New(center notify.Center, rot *rotation.Store, gate *auth.Gate, opts ...Option) *Scheduler {
	cfg := Opts{
		Clock:          time.Now,
		ActivityDelay:  DefaultActivityDelay,
		ActivityJitter: DefaultActivityJitter,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scheduler{
		center:         center,
		rotation:       rot,
		gate:           gate,
		clock:          cfg.Clock,
		activityDelay:  cfg.ActivityDelay,
		activityJitter: cfg.ActivityJitter,
	}
}

// ScheduleMealReminder schedules (or re-schedules) the recurring daily
// reminder for a fixed meal category. Any pending request for the category
// is removed first, so disabling always takes effect and re-scheduling
// never duplicates. A disabled category or an unauthorized install is a
// silent no-op after that removal.
func (s *Scheduler) ScheduleMealReminder(ctx context.Context, category models.MealCategory, at models.TimeOfDay, enabled bool) error {
	if !models.IsValidMealCategory(category) {
		return fmt.Errorf("%w: %q", models.ErrInvalidMealCategory, category)
	}
	identifier := models.MealReminderIdentifier(category)

	// Cancel-before-add: stale state goes away even when we end up not
	// scheduling anything.
	s.center.RemovePending(identifier)

	if !enabled {
		slog.Info("Scheduler.ScheduleMealReminder: category disabled, reminder removed", "category", category)
		return nil
	}
	if !s.authorized(ctx, identifier) {
		return nil
	}
	if err := at.Validate(); err != nil {
		return err
	}

	tpl := s.rotation.Next(string(category))
	req := models.NotificationRequest{
		Identifier: identifier,
		Content:    models.NotificationContent{Title: tpl.Title, Body: tpl.Body},
		Trigger:    models.DailyTrigger(at),
		CreatedAt:  s.clock(),
	}
	s.submit(req)
	return nil
}

// ScheduleScheduledMeal schedules a reminder for a user-created scheduled
// meal. With daily recurrence only the time of day matters; otherwise the
// reminder is a one-shot composed from the target date and the time string,
// and a fire time that is not strictly in the future skips the scheduling
// call entirely.
func (s *Scheduler) ScheduleScheduledMeal(ctx context.Context, id string, recurrence models.Recurrence, targetDate time.Time, timeString string, label string) error {
	if id == "" {
		return models.ErrEmptyIdentifier
	}
	if len(id) > models.MaxScheduledMealIDLength {
		return fmt.Errorf("%w: %q", models.ErrIdentifierTooLong, id)
	}
	identifier := models.ScheduledMealIdentifier(id)

	at := ParseClock(timeString)
	var trigger models.Trigger
	if recurrence == models.RecurrenceDaily {
		// The target date is irrelevant for a daily repeat.
		trigger = models.DailyTrigger(at)
	} else {
		fireAt := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), at.Hour, at.Minute, 0, 0, targetDate.Location())
		// A skipped call must leave any existing pending request for this
		// id untouched, so the skip check runs before the removal below.
		if !fireAt.After(s.clock()) {
			slog.Info("Scheduler.ScheduleScheduledMeal: fire time in the past, skipping", "identifier", identifier, "fire_at", fireAt)
			return nil
		}
		trigger = models.DateTrigger(fireAt)
	}

	if !s.authorized(ctx, identifier) {
		return nil
	}

	if label == "" {
		label = "your scheduled meal"
	}
	content := models.NotificationContent{
		Title: "Meal reminder",
		Body:  fmt.Sprintf("It's time for %s.", label),
	}

	s.center.RemovePending(identifier)
	s.submit(models.NotificationRequest{
		Identifier: identifier,
		Content:    content,
		Trigger:    trigger,
		CreatedAt:  s.clock(),
	})
	return nil
}

// NotifyActivityBurn builds a one-shot, near-immediate notification from
// the next activity template with all placeholders substituted.
func (s *Scheduler) NotifyActivityBurn(ctx context.Context, vals catalog.ActivityValues) error {
	identifier := models.ActivityBurnPrefix + uuid.NewString()
	if !s.authorized(ctx, identifier) {
		return nil
	}

	tpl := catalog.FillActivity(s.rotation.Next(catalog.Activity), vals)
	s.submit(models.NotificationRequest{
		Identifier: identifier,
		Content:    models.NotificationContent{Title: tpl.Title, Body: tpl.Body},
		Trigger:    models.IntervalTrigger(util.Jitter(s.activityDelay, s.activityJitter)),
		CreatedAt:  s.clock(),
	})
	return nil
}

// ScheduleWorkoutPlan schedules the fixed-copy workout-plan notification
// after the given delay. Non-positive delays are clamped to one second.
func (s *Scheduler) ScheduleWorkoutPlan(ctx context.Context, delaySeconds int) error {
	if !s.authorized(ctx, models.WorkoutPlanIdentifier) {
		return nil
	}
	if delaySeconds <= 0 {
		delaySeconds = 1
	}

	s.center.RemovePending(models.WorkoutPlanIdentifier)
	s.submit(models.NotificationRequest{
		Identifier: models.WorkoutPlanIdentifier,
		Content:    workoutPlanContent,
		Trigger:    models.IntervalTrigger(time.Duration(delaySeconds) * time.Second),
		CreatedAt:  s.clock(),
	})
	return nil
}

// Cancel retracts a reminder: the pending request goes away, and a copy
// already sitting in the delivered list is scrubbed too (a logged meal must
// pull back a reminder the user has not acted on yet).
func (s *Scheduler) Cancel(identifier string) {
	s.center.RemovePending(identifier)
	s.center.RemoveDelivered(identifier)
	slog.Debug("Scheduler.Cancel: reminder cancelled", "identifier", identifier)
}

// CancelDelivered scrubs only the delivered copy, leaving any pending
// request armed.
func (s *Scheduler) CancelDelivered(identifier string) {
	s.center.RemoveDelivered(identifier)
}

// authorized runs the gate and logs the silent no-op cases.
func (s *Scheduler) authorized(ctx context.Context, identifier string) bool {
	ok, err := s.gate.EnsureAuthorized(ctx)
	if err != nil {
		slog.Error("Scheduler: authorization check failed", "error", err, "identifier", identifier)
		return false
	}
	if !ok {
		slog.Info("Scheduler: notifications not authorized, skipping", "identifier", identifier)
	}
	return ok
}

// submit sends the request to the center; failures are logged only.
func (s *Scheduler) submit(req models.NotificationRequest) {
	if err := s.center.Submit(req); err != nil {
		slog.Error("Scheduler: submit failed", "error", err, "identifier", req.Identifier)
		return
	}
	slog.Info("Scheduler: reminder submitted", "identifier", req.Identifier, "kind", req.Trigger.Kind)
}

// ParseClock parses an "HH:MM" time string, falling back to the default
// scheduled time (09:00) when the string is missing or malformed.
func ParseClock(timeString string) models.TimeOfDay {
	parts := strings.SplitN(timeString, ":", 2)
	if len(parts) != 2 {
		return parseClockFallback(timeString)
	}
	hour, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	minute, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return parseClockFallback(timeString)
	}
	at := models.TimeOfDay{Hour: hour, Minute: minute}
	if err := at.Validate(); err != nil {
		return parseClockFallback(timeString)
	}
	return at
}

func parseClockFallback(timeString string) models.TimeOfDay {
	if timeString != "" {
		slog.Warn("scheduler.ParseClock: malformed time string, using default", "time_string", timeString, "default", DefaultScheduledTime)
	}
	return DefaultScheduledTime
}
