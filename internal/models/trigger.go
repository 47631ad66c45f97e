// Package models defines the core data structures for MealNudge.
//
// This file defines delivery triggers: the rules governing when a submitted
// notification fires.
package models

import (
	"fmt"
	"time"
)

// TriggerKind discriminates the trigger variants.
type TriggerKind string

const (
	// TriggerCalendarDaily fires every day at a fixed time of day.
	TriggerCalendarDaily TriggerKind = "calendar_daily"
	// TriggerCalendarDate fires once at a specific instant.
	TriggerCalendarDate TriggerKind = "calendar_date"
	// TriggerInterval fires once after a relative delay.
	TriggerInterval TriggerKind = "interval"
)

// Trigger describes when a notification fires. Only the fields of the
// selected kind are meaningful.
type Trigger struct {
	Kind   TriggerKind   `json:"kind"`
	At     TimeOfDay     `json:"at,omitempty"`      // calendar_daily
	FireAt time.Time     `json:"fire_at,omitempty"` // calendar_date
	Delay  time.Duration `json:"delay,omitempty"`   // interval
}

// DailyTrigger builds a repeating time-of-day trigger.
func DailyTrigger(at TimeOfDay) Trigger {
	return Trigger{Kind: TriggerCalendarDaily, At: at}
}

// DateTrigger builds a one-shot trigger for a specific instant.
func DateTrigger(fireAt time.Time) Trigger {
	return Trigger{Kind: TriggerCalendarDate, FireAt: fireAt}
}

// IntervalTrigger builds a one-shot relative-delay trigger.
func IntervalTrigger(delay time.Duration) Trigger {
	return Trigger{Kind: TriggerInterval, Delay: delay}
}

// Repeats reports whether the trigger re-arms itself after firing.
func (t Trigger) Repeats() bool {
	return t.Kind == TriggerCalendarDaily
}

// Validate checks the trigger's variant-specific fields.
func (t Trigger) Validate() error {
	switch t.Kind {
	case TriggerCalendarDaily:
		if err := t.At.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
		}
		return nil
	case TriggerCalendarDate:
		if t.FireAt.IsZero() {
			return fmt.Errorf("%w: calendar_date trigger has no fire time", ErrInvalidTrigger)
		}
		return nil
	case TriggerInterval:
		if t.Delay <= 0 {
			return fmt.Errorf("%w: interval trigger delay must be positive", ErrInvalidTrigger)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTrigger, t.Kind)
	}
}

// NextFire computes the next instant the trigger fires strictly after now.
// ok is false when the trigger has no future fire time (a stale one-shot).
func (t Trigger) NextFire(now time.Time) (fireAt time.Time, ok bool) {
	switch t.Kind {
	case TriggerCalendarDaily:
		next := time.Date(now.Year(), now.Month(), now.Day(), t.At.Hour, t.At.Minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next, true
	case TriggerCalendarDate:
		if t.FireAt.After(now) {
			return t.FireAt, true
		}
		return time.Time{}, false
	case TriggerInterval:
		if t.Delay <= 0 {
			return time.Time{}, false
		}
		return now.Add(t.Delay), true
	default:
		return time.Time{}, false
	}
}
