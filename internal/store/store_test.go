package store

import (
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/Forkful/MealNudge/internal/models"
)

func testRequest(identifier string) models.NotificationRequest {
	return models.NotificationRequest{
		Identifier: identifier,
		Content:    models.NotificationContent{Title: "Lunch break?", Body: "Log your lunch."},
		Trigger:    models.DailyTrigger(models.TimeOfDay{Hour: 12, Minute: 30}),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	// Cursors default to 0 and round-trip.
	pos, err := s.GetCursor("breakfast")
	if err != nil || pos != 0 {
		t.Fatalf("fresh cursor: got %d, %v", pos, err)
	}
	if err := s.SetCursor("breakfast", 3); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}
	if err := s.SetCursor("breakfast", 4); err != nil {
		t.Fatalf("SetCursor overwrite: %v", err)
	}
	if pos, _ = s.GetCursor("breakfast"); pos != 4 {
		t.Errorf("cursor: expected 4, got %d", pos)
	}

	// Quiet hours default then round-trip.
	qs, err := s.GetQuietHours()
	if err != nil {
		t.Fatalf("GetQuietHours: %v", err)
	}
	if qs.Enabled {
		t.Error("quiet hours should default to disabled")
	}
	qs.Enabled = true
	qs.Start = models.TimeOfDay{Hour: 21, Minute: 15}
	if err := s.SetQuietHours(qs); err != nil {
		t.Fatalf("SetQuietHours: %v", err)
	}
	got, _ := s.GetQuietHours()
	if !got.Enabled || got.Start.Hour != 21 || got.Start.Minute != 15 {
		t.Errorf("quiet hours did not round-trip: %+v", got)
	}

	// Authorization state default then round-trip.
	state, _ := s.GetAuthorizationState()
	if state != models.AuthorizationNotDetermined {
		t.Errorf("expected not_determined, got %s", state)
	}
	if err := s.SetAuthorizationState(models.AuthorizationDenied); err != nil {
		t.Fatalf("SetAuthorizationState: %v", err)
	}
	if state, _ = s.GetAuthorizationState(); state != models.AuthorizationDenied {
		t.Errorf("expected denied, got %s", state)
	}

	// Pending upsert replaces, delete is idempotent.
	req := testRequest("meal_reminder_lunch")
	if err := s.UpsertPending(req); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}
	req.Content.Title = "Midday check-in"
	if err := s.UpsertPending(req); err != nil {
		t.Fatalf("UpsertPending replace: %v", err)
	}
	pending, err := s.ListPending()
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	if pending[0].Content.Title != "Midday check-in" {
		t.Errorf("upsert did not replace content: %+v", pending[0])
	}
	if pending[0].Trigger.Kind != models.TriggerCalendarDaily || pending[0].Trigger.At.Minute != 30 {
		t.Errorf("trigger did not round-trip: %+v", pending[0].Trigger)
	}
	if err := s.DeletePending(req.Identifier); err != nil {
		t.Fatalf("DeletePending: %v", err)
	}
	if err := s.DeletePending(req.Identifier); err != nil {
		t.Fatalf("DeletePending absent: %v", err)
	}
	if pending, _ = s.ListPending(); len(pending) != 0 {
		t.Errorf("expected empty pending set, got %d", len(pending))
	}
}

func TestInMemoryStore(t *testing.T) {
	exerciseStore(t, NewInMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "mealnudge.db")
	s, err := NewSQLiteStore(WithSQLiteDSN(dsn))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	// Requires a running PostgreSQL instance; set DATABASE_URL to run.
	connStr := getenvOrSkip(t, "DATABASE_URL")
	s, err := NewPostgresStore(WithPostgresDSN(connStr))
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer s.Close()
	s.db.Exec("DELETE FROM rotation_cursors")
	s.db.Exec("DELETE FROM engine_settings")
	s.db.Exec("DELETE FROM pending_notifications")
	exerciseStore(t, s)
}

func TestDetectDSNType(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost/db":   "postgres",
		"postgresql://u:p@localhost/db": "postgres",
		"host=localhost user=mealnudge": "postgres",
		"/var/lib/mealnudge/state.db":   "sqlite",
		"state.db":                      "sqlite",
	}
	for dsn, want := range cases {
		if got := DetectDSNType(dsn); got != want {
			t.Errorf("DetectDSNType(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func getenvOrSkip(t *testing.T, key string) string {
	v := ""
	if val, ok := syscall.Getenv(key); ok {
		v = val
	}
	if v == "" {
		t.Skipf("env %s not set", key)
	}
	return v
}
