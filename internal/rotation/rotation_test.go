package rotation

import (
	"testing"

	"github.com/Forkful/MealNudge/internal/catalog"
	"github.com/Forkful/MealNudge/internal/store"
)

func TestFullCycleBeforeRepeat(t *testing.T) {
	repo := store.NewInMemoryStore()
	rot := New(repo)

	templates := catalog.Templates(catalog.Breakfast)
	n := len(templates)

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		tpl := rot.Next(catalog.Breakfast)
		key := tpl.Title + "|" + tpl.Body
		if seen[key] {
			t.Fatalf("call %d repeated template %q before full cycle", i, tpl.Title)
		}
		seen[key] = true
	}

	// The (N+1)th call wraps back to the first template.
	again := rot.Next(catalog.Breakfast)
	if again != templates[0] {
		t.Errorf("expected wrap to first template %q, got %q", templates[0].Title, again.Title)
	}
}

func TestCursorPersistsAcrossStoreInstances(t *testing.T) {
	repo := store.NewInMemoryStore()

	first := New(repo).Next(catalog.Dinner)
	second := New(repo).Next(catalog.Dinner)
	if first == second {
		t.Error("a fresh rotation store over the same repo should continue, not restart")
	}
}

func TestCursorsAreIndependentPerCatalog(t *testing.T) {
	repo := store.NewInMemoryStore()
	rot := New(repo)

	rot.Next(catalog.Breakfast)
	rot.Next(catalog.Breakfast)

	pos, _ := repo.GetCursor(catalog.Lunch)
	if pos != 0 {
		t.Errorf("lunch cursor moved to %d without any lunch reads", pos)
	}
}

func TestEmptyCatalogFallsBack(t *testing.T) {
	repo := store.NewInMemoryStore()
	rot := New(repo)

	tpl := rot.Next("brunch")
	if tpl != catalog.Fallback() {
		t.Errorf("unknown catalog should serve the fallback, got %+v", tpl)
	}
	if pos, _ := repo.GetCursor("brunch"); pos != 0 {
		t.Errorf("fallback must not advance a cursor, got %d", pos)
	}
}

func TestNextToleratesOversizedPersistedCursor(t *testing.T) {
	repo := store.NewInMemoryStore()
	// Simulate a cursor saved against a longer catalog in a past release.
	if err := repo.SetCursor(catalog.Lunch, 17); err != nil {
		t.Fatal(err)
	}
	rot := New(repo)

	tpl := rot.Next(catalog.Lunch)
	templates := catalog.Templates(catalog.Lunch)
	want := templates[17%len(templates)]
	if tpl != want {
		t.Errorf("expected template at cursor mod length, got %q", tpl.Title)
	}
}
