// Package notify implements the notification-delivery capability.
//
// A Center is the engine's stand-in for the host platform's notification
// service: it accepts submissions keyed by identifier, evaluates triggers,
// keeps the pending and delivered sets, and answers authorization requests.
// Submissions are asynchronous: Submit returns once the request is armed,
// and delivery outcomes are logged rather than reported to the caller.
package notify

import (
	"context"
	"time"

	"github.com/Forkful/MealNudge/internal/models"
)

// Center is the external notification-delivery contract the engine depends on.
type Center interface {
	// RequestAuthorization issues the platform permission prompt and returns
	// the terminal state the user chose. Callers must gate this behind the
	// authorization lifecycle; the center itself does not track prompts.
	RequestAuthorization(ctx context.Context) (models.AuthorizationState, error)

	// Submit registers a notification request, replacing any pending request
	// with the same identifier.
	Submit(req models.NotificationRequest) error

	// RemovePending cancels pending requests by identifier. Unknown
	// identifiers are ignored.
	RemovePending(identifiers ...string)

	// RemoveDelivered scrubs delivered notifications by identifier.
	RemoveDelivered(identifiers ...string)

	// Pending returns a snapshot of the pending request set.
	Pending() []models.NotificationRequest

	// Delivered returns a snapshot of the delivered list, newest first.
	Delivered() []models.DeliveredNotification
}

// LevelFunc resolves the interruption level for a delivery happening at the
// given instant; the quiet-hours policy is injected this way so the center
// stays policy-agnostic.
type LevelFunc func(now time.Time) models.InterruptionLevel
