// Package testutil provides common test utilities and helpers for MealNudge tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Forkful/MealNudge/internal/models"
)

// FakeCenter is an in-memory notify.Center double recording every call.
type FakeCenter struct {
	mu sync.Mutex

	// AuthState is the answer RequestAuthorization gives; AuthErr, when
	// set, is returned instead.
	AuthState models.AuthorizationState
	AuthErr   error
	// SubmitErr, when set, fails every Submit.
	SubmitErr error

	Prompts          int
	Submissions      []models.NotificationRequest
	RemovedPending   []string
	RemovedDelivered []string

	pending   map[string]models.NotificationRequest
	delivered []models.DeliveredNotification
}

// NewFakeCenter creates a fake center that grants authorization.
func NewFakeCenter() *FakeCenter {
	return &FakeCenter{
		AuthState: models.AuthorizationAuthorized,
		pending:   make(map[string]models.NotificationRequest),
	}
}

func (f *FakeCenter) RequestAuthorization(ctx context.Context) (models.AuthorizationState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts++
	if f.AuthErr != nil {
		return models.AuthorizationNotDetermined, f.AuthErr
	}
	return f.AuthState, nil
}

func (f *FakeCenter) Submit(req models.NotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return f.SubmitErr
	}
	f.Submissions = append(f.Submissions, req)
	f.pending[req.Identifier] = req
	return nil
}

func (f *FakeCenter) RemovePending(identifiers ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, identifier := range identifiers {
		f.RemovedPending = append(f.RemovedPending, identifier)
		delete(f.pending, identifier)
	}
}

func (f *FakeCenter) RemoveDelivered(identifiers ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	drop := make(map[string]bool, len(identifiers))
	for _, identifier := range identifiers {
		f.RemovedDelivered = append(f.RemovedDelivered, identifier)
		drop[identifier] = true
	}
	kept := f.delivered[:0]
	for _, d := range f.delivered {
		if !drop[d.Identifier] {
			kept = append(kept, d)
		}
	}
	f.delivered = kept
}

func (f *FakeCenter) Pending() []models.NotificationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.NotificationRequest, 0, len(f.pending))
	for _, req := range f.pending {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

func (f *FakeCenter) Delivered() []models.DeliveredNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.DeliveredNotification, len(f.delivered))
	copy(out, f.delivered)
	return out
}

// AddDelivered seeds the delivered list for cancellation tests.
func (f *FakeCenter) AddDelivered(d models.DeliveredNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append([]models.DeliveredNotification{d}, f.delivered...)
}

// FixedClock returns a clock function pinned to the given instant.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}
