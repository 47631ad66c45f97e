package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/store"
)

// promptCounter implements notify.Center for gate tests, counting prompts.
type promptCounter struct {
	grant   bool
	err     error
	prompts int
}

func (p *promptCounter) RequestAuthorization(ctx context.Context) (models.AuthorizationState, error) {
	p.prompts++
	if p.err != nil {
		return models.AuthorizationNotDetermined, p.err
	}
	if p.grant {
		return models.AuthorizationAuthorized, nil
	}
	return models.AuthorizationDenied, nil
}

func (p *promptCounter) Submit(models.NotificationRequest) error { return nil }
func (p *promptCounter) RemovePending(...string) {}
func (p *promptCounter) RemoveDelivered(...string) {}
func (p *promptCounter) Pending() []models.NotificationRequest { return nil }
func (p *promptCounter) Delivered() []models.DeliveredNotification { return nil }

func TestFirstCallPromptsOnce(t *testing.T) {
	center := &promptCounter{grant: true}
	gate := NewGate(store.NewInMemoryStore(), center)

	ok, err := gate.EnsureAuthorized(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected authorized, got %v, %v", ok, err)
	}
	if center.prompts != 1 {
		t.Errorf("expected 1 prompt, got %d", center.prompts)
	}

	// Second call returns from state without prompting.
	ok, _ = gate.EnsureAuthorized(context.Background())
	if !ok || center.prompts != 1 {
		t.Errorf("expected cached authorized with 1 prompt, got ok=%v prompts=%d", ok, center.prompts)
	}
}

func TestDeniedNeverPromptsAgain(t *testing.T) {
	center := &promptCounter{grant: false}
	repo := store.NewInMemoryStore()
	gate := NewGate(repo, center)

	if ok, _ := gate.EnsureAuthorized(context.Background()); ok {
		t.Fatal("expected denial")
	}
	if ok, _ := gate.EnsureAuthorized(context.Background()); ok {
		t.Fatal("expected denial to stick")
	}
	if center.prompts != 1 {
		t.Errorf("denied install must never prompt twice, got %d prompts", center.prompts)
	}
	if gate.Status() != models.AuthorizationDenied {
		t.Errorf("expected persisted denied state, got %s", gate.Status())
	}
}

func TestDenialPersistsAcrossGateInstances(t *testing.T) {
	repo := store.NewInMemoryStore()
	first := &promptCounter{grant: false}
	NewGate(repo, first).EnsureAuthorized(context.Background())

	second := &promptCounter{grant: true}
	if ok, _ := NewGate(repo, second).EnsureAuthorized(context.Background()); ok {
		t.Error("a fresh gate over the same store must honor the persisted denial")
	}
	if second.prompts != 0 {
		t.Errorf("fresh gate must not re-prompt, got %d prompts", second.prompts)
	}
}

func TestPromptFailureStaysNotDetermined(t *testing.T) {
	center := &promptCounter{err: errors.New("platform unavailable")}
	gate := NewGate(store.NewInMemoryStore(), center)

	if ok, err := gate.EnsureAuthorized(context.Background()); ok || err == nil {
		t.Fatalf("expected error, got ok=%v err=%v", ok, err)
	}
	if gate.Status() != models.AuthorizationNotDetermined {
		t.Errorf("failed prompt must not reach a terminal state, got %s", gate.Status())
	}

	// Once the platform recovers, the prompt may be retried.
	center.err = nil
	center.grant = true
	if ok, err := gate.EnsureAuthorized(context.Background()); !ok || err != nil {
		t.Errorf("expected authorization after recovery, got ok=%v err=%v", ok, err)
	}
}
