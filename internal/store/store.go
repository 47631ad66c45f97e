// Package store provides storage backends for MealNudge.
//
// It persists rotation cursors, engine settings (quiet hours, authorization
// state), and the pending-notification set, with in-memory, SQLite, and
// PostgreSQL implementations.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/Forkful/MealNudge/internal/models"
)

// Store is the durable key-value capability the engine depends on.
type Store interface {
	// GetCursor returns the rotation cursor for a catalog. A catalog that
	// has never been read has cursor 0.
	GetCursor(catalog string) (int, error)
	// SetCursor persists the rotation cursor for a catalog.
	SetCursor(catalog string, position int) error

	// GetQuietHours returns the quiet-hours configuration, or the default
	// configuration if none has been saved.
	GetQuietHours() (models.QuietHoursSettings, error)
	// SetQuietHours persists the quiet-hours configuration.
	SetQuietHours(settings models.QuietHoursSettings) error

	// GetAuthorizationState returns the persisted authorization state, or
	// not_determined if none has been saved.
	GetAuthorizationState() (models.AuthorizationState, error)
	// SetAuthorizationState persists the authorization state.
	SetAuthorizationState(state models.AuthorizationState) error

	// UpsertPending saves a pending notification request, replacing any
	// existing request with the same identifier.
	UpsertPending(req models.NotificationRequest) error
	// DeletePending removes a pending request by identifier. Removing an
	// absent identifier is not an error.
	DeletePending(identifier string) error
	// ListPending returns all pending requests ordered by identifier.
	ListPending() ([]models.NotificationRequest, error)

	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite" so callers can
// pick a backend from a single connection-string setting.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a non-durable Store used in tests and when no DSN is
// configured.
type InMemoryStore struct {
	mu        sync.RWMutex
	cursors   map[string]int
	quiet     *models.QuietHoursSettings
	authState models.AuthorizationState
	pending   map[string]models.NotificationRequest
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		cursors:   make(map[string]int),
		authState: models.AuthorizationNotDetermined,
		pending:   make(map[string]models.NotificationRequest),
	}
}

func (s *InMemoryStore) GetCursor(catalog string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[catalog], nil
}

func (s *InMemoryStore) SetCursor(catalog string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[catalog] = position
	return nil
}

func (s *InMemoryStore) GetQuietHours() (models.QuietHoursSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.quiet == nil {
		return models.DefaultQuietHours(), nil
	}
	return *s.quiet, nil
}

func (s *InMemoryStore) SetQuietHours(settings models.QuietHoursSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiet = &settings
	return nil
}

func (s *InMemoryStore) GetAuthorizationState() (models.AuthorizationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authState, nil
}

func (s *InMemoryStore) SetAuthorizationState(state models.AuthorizationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authState = state
	return nil
}

func (s *InMemoryStore) UpsertPending(req models.NotificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[req.Identifier] = req
	return nil
}

func (s *InMemoryStore) DeletePending(identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, identifier)
	return nil
}

func (s *InMemoryStore) ListPending() ([]models.NotificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NotificationRequest, 0, len(s.pending))
	for _, req := range s.pending {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
