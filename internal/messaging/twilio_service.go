package messaging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/twiliosms"
)

// TwilioService presents notifications as SMS messages via the Twilio API.
type TwilioService struct {
	client  twiliosms.Sender
	to      string
	mu      sync.RWMutex
	stopped bool
}

// NewTwilioService creates a Twilio SMS sink delivering to the given
// recipient number.
func NewTwilioService(client twiliosms.Sender, recipient string) (*TwilioService, error) {
	to, err := CanonicalizeRecipient(recipient)
	if err != nil {
		return nil, err
	}
	return &TwilioService{client: client, to: "+" + to}, nil
}

func (s *TwilioService) Present(ctx context.Context, content models.NotificationContent, level models.InterruptionLevel) error {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		return ErrServiceStopped
	}

	if err := s.client.SendSMS(ctx, s.to, Format(content, level)); err != nil {
		slog.Error("TwilioService.Present: send failed", "error", err, "to", s.to)
		return err
	}
	slog.Debug("TwilioService.Present: notification delivered", "to", s.to, "level", level)
	return nil
}

// Start is a no-op; the Twilio client is stateless between sends.
func (s *TwilioService) Start(ctx context.Context) error { return nil }

// Stop marks the service stopped; later Present calls fail fast.
func (s *TwilioService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}
