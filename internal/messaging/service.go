// Package messaging provides the presentation sinks a fired notification is
// delivered through.
//
// A sink plays the role of the device notification surface: it shows the
// reminder to the user at the interruption level the quiet-hours policy
// resolved. Sinks are best-effort; failures are logged by callers, never
// retried.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/Forkful/MealNudge/internal/models"
)

// ErrServiceStopped is returned when presenting through a stopped service.
var ErrServiceStopped = errors.New("messaging service is stopped")

// phoneNumberRegex strips everything but digits during recipient canonicalization.
var phoneNumberRegex = regexp.MustCompile(`\D`)

// MinimumPhoneDigits is the minimum digit count of a canonical recipient.
const MinimumPhoneDigits = 6

// Service defines a pluggable notification presentation abstraction.
type Service interface {
	// Present shows a fired notification at the given interruption level.
	Present(ctx context.Context, content models.NotificationContent, level models.InterruptionLevel) error

	// Start begins any background processing.
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error
}

// CanonicalizeRecipient validates and canonicalizes a phone-number recipient:
// strips non-digits and requires a minimum length.
func CanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < MinimumPhoneDigits {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum %d digits required)", canonical, MinimumPhoneDigits)
	}
	if canonical != recipient {
		slog.Debug("messaging.CanonicalizeRecipient modified recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}

// Format renders notification content as a single message body. Active
// deliveries carry an alert marker; passive ones do not.
func Format(content models.NotificationContent, level models.InterruptionLevel) string {
	if level == models.InterruptionActive {
		return fmt.Sprintf("[!] %s\n%s", content.Title, content.Body)
	}
	return fmt.Sprintf("%s\n%s", content.Title, content.Body)
}

// ConsoleService presents notifications on the process log. It is the
// default sink for development and tests.
type ConsoleService struct{}

// NewConsoleService creates a console sink.
func NewConsoleService() *ConsoleService {
	return &ConsoleService{}
}

func (s *ConsoleService) Present(ctx context.Context, content models.NotificationContent, level models.InterruptionLevel) error {
	slog.Info("ConsoleService.Present: notification delivered", "title", content.Title, "body", content.Body, "level", level)
	return nil
}

func (s *ConsoleService) Start(ctx context.Context) error { return nil }

func (s *ConsoleService) Stop() error { return nil }
