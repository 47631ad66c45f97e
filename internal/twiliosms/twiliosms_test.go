package twiliosms

import (
	"context"
	"testing"
)

func TestMockClient_SendSMS(t *testing.T) {
	ctx := context.Background()
	mock := NewMockClient()

	err := mock.SendSMS(ctx, "+15551234567", "Lunch break?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.SentMessages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mock.SentMessages))
	}
	if mock.SentMessages[0].Body != "Lunch break?" {
		t.Errorf("expected body %q, got %q", "Lunch break?", mock.SentMessages[0].Body)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error without credentials")
	}
}
