// Package rotation hands out reminder copy without repeating itself.
//
// It keeps one durable cursor per catalog; every template in a catalog is
// used exactly once before any repeats. The cursor is read modulo the
// current catalog length, so growing a catalog between releases never skips
// entries (though it can shift which entries repeat first).
package rotation

import (
	"log/slog"
	"sync"

	"github.com/Forkful/MealNudge/internal/catalog"
	"github.com/Forkful/MealNudge/internal/models"
	"github.com/Forkful/MealNudge/internal/store"
)

// Store serves the next copy template per catalog and advances the
// persisted cursor.
type Store struct {
	repo store.Store
	// In-process callers are serialized per store; the read-then-advance is
	// still not atomic across processes, which callers must sequence
	// themselves.
	mu sync.Mutex
}

// New creates a rotation store over the given persistence backend.
func New(repo store.Store) *Store {
	return &Store{repo: repo}
}

// Next returns the template at the current cursor for the named catalog and
// advances the cursor. An unknown or empty catalog yields the safe fallback
// template without touching any cursor; persistence failures degrade to
// cursor 0 rather than failing the reminder.
func (s *Store) Next(catalogName string) models.CopyTemplate {
	templates := catalog.Templates(catalogName)
	if len(templates) == 0 {
		slog.Warn("rotation.Next: empty catalog, using fallback", "catalog", catalogName)
		return catalog.Fallback()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, err := s.repo.GetCursor(catalogName)
	if err != nil {
		slog.Error("rotation.Next: cursor read failed, starting from 0", "error", err, "catalog", catalogName)
		cursor = 0
	}
	if cursor < 0 {
		cursor = 0
	}

	idx := cursor % len(templates)
	tpl := templates[idx]

	next := (cursor + 1) % len(templates)
	if err := s.repo.SetCursor(catalogName, next); err != nil {
		// The reminder still goes out; the same template may repeat next
		// time, which beats dropping a notification.
		slog.Error("rotation.Next: cursor advance failed", "error", err, "catalog", catalogName, "next", next)
	}

	slog.Debug("rotation.Next: template served", "catalog", catalogName, "index", idx, "next_cursor", next)
	return tpl
}
