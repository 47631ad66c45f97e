package messaging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/whatsapp"
)

// WhatsAppService presents notifications as WhatsApp messages.
type WhatsAppService struct {
	client  whatsapp.Sender
	to      string
	mu      sync.RWMutex
	stopped bool
}

// NewWhatsAppService creates a WhatsApp sink delivering to the given
// recipient number.
func NewWhatsAppService(client whatsapp.Sender, recipient string) (*WhatsAppService, error) {
	to, err := CanonicalizeRecipient(recipient)
	if err != nil {
		return nil, err
	}
	return &WhatsAppService{client: client, to: to}, nil
}

func (s *WhatsAppService) Present(ctx context.Context, content models.NotificationContent, level models.InterruptionLevel) error {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		return ErrServiceStopped
	}

	if err := s.client.SendMessage(ctx, s.to, Format(content, level)); err != nil {
		slog.Error("WhatsAppService.Present: send failed", "error", err, "to", s.to)
		return err
	}
	slog.Debug("WhatsAppService.Present: notification delivered", "to", s.to, "level", level)
	return nil
}

// Start is a no-op; the underlying client connects at construction.
func (s *WhatsAppService) Start(ctx context.Context) error { return nil }

// Stop marks the service stopped; later Present calls fail fast.
func (s *WhatsAppService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}
