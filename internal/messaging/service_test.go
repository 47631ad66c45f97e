package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/twiliosms"
	"github.com/Forkful/MealNudge/internal/whatsapp"
)

func TestCanonicalizeRecipient(t *testing.T) {
	got, err := CanonicalizeRecipient("+1 (555) 123-4567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "15551234567" {
		t.Errorf("expected digits only, got %q", got)
	}

	if _, err := CanonicalizeRecipient(""); err == nil {
		t.Error("expected error for empty recipient")
	}
	if _, err := CanonicalizeRecipient("123"); err == nil {
		t.Error("expected error for too-short recipient")
	}
	if _, err := CanonicalizeRecipient("no digits"); err == nil {
		t.Error("expected error for recipient without digits")
	}
}

func TestFormatCarriesAlertMarkerOnlyWhenActive(t *testing.T) {
	content := models.NotificationContent{Title: "Dinner time", Body: "Log your dinner."}
	active := Format(content, models.InterruptionActive)
	passive := Format(content, models.InterruptionPassive)

	if !strings.HasPrefix(active, "[!] ") {
		t.Errorf("active format missing alert marker: %q", active)
	}
	if strings.Contains(passive, "[!]") {
		t.Errorf("passive format must not carry alert marker: %q", passive)
	}
}

func TestTwilioServicePresent(t *testing.T) {
	mock := twiliosms.NewMockClient()
	svc, err := NewTwilioService(mock, "+1 555 123 4567")
	if err != nil {
		t.Fatalf("NewTwilioService: %v", err)
	}

	content := models.NotificationContent{Title: "Lunch break?", Body: "Log your lunch."}
	if err := svc.Present(context.Background(), content, models.InterruptionActive); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(mock.SentMessages) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(mock.SentMessages))
	}
	if mock.SentMessages[0].To != "+15551234567" {
		t.Errorf("unexpected recipient %q", mock.SentMessages[0].To)
	}

	if err := svc.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := svc.Present(context.Background(), content, models.InterruptionActive); err != ErrServiceStopped {
		t.Errorf("expected ErrServiceStopped after Stop, got %v", err)
	}
}

func TestWhatsAppServiceRejectsBadRecipient(t *testing.T) {
	if _, err := NewWhatsAppService(whatsapp.NewMockClient(), "bad"); err == nil {
		t.Error("expected recipient validation error")
	}
}
