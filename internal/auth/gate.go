// Package auth tracks the notification permission lifecycle.
//
// The platform disallows re-prompting once the user has decided, so the
// gate makes a second prompt structurally impossible: terminal states are
// persisted and answered without any platform call.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/notify"
	"github.com/Forkful/MealNudge/internal/store"
)

// Gate serializes authorization decisions over a delivery center.
type Gate struct {
	mu     sync.Mutex
	repo   store.Store
	center notify.Center
}

// NewGate creates a gate persisting its state in the given store.
func NewGate(repo store.Store, center notify.Center) *Gate {
	return &Gate{repo: repo, center: center}
}

// Status returns the current authorization state without prompting.
func (g *Gate) Status() models.AuthorizationState {
	state, err := g.repo.GetAuthorizationState()
	if err != nil {
		slog.Error("Gate.Status: state read failed, treating as not determined", "error", err)
		return models.AuthorizationNotDetermined
	}
	return state
}

// EnsureAuthorized returns whether notifications may be scheduled, prompting
// at most once per install:
//   - authorized: true, no platform call
//   - denied: false, no platform call
//   - not determined: exactly one prompt, then the chosen terminal state
func (g *Gate) EnsureAuthorized(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch state := g.Status(); state {
	case models.AuthorizationAuthorized:
		return true, nil
	case models.AuthorizationDenied:
		return false, nil
	}

	state, err := g.center.RequestAuthorization(ctx)
	if err != nil {
		// The prompt never reached the user; stay not-determined so a later
		// call may retry.
		slog.Error("Gate.EnsureAuthorized: authorization prompt failed", "error", err)
		return false, fmt.Errorf("authorization prompt failed: %w", err)
	}
	if !state.IsTerminal() {
		return false, fmt.Errorf("authorization prompt returned non-terminal state %q", state)
	}

	if err := g.repo.SetAuthorizationState(state); err != nil {
		slog.Error("Gate.EnsureAuthorized: failed to persist state", "error", err, "state", state)
	}
	slog.Info("Gate.EnsureAuthorized: authorization decided", "state", state)
	return state == models.AuthorizationAuthorized, nil
}
