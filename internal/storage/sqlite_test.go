package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveResult(Result{
		Won:         true,
		Wave:        10,
		TowerHealth: 420.5,
		Money:       1300,
		Duration:    95 * time.Second,
		Difficulty:  "hard",
	})
	if err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("Expected positive ID, got %d", id)
	}

	results, err := store.TopResults(10)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	r := results[0]
	if !r.Won || r.Wave != 10 || r.TowerHealth != 420.5 || r.Money != 1300 {
		t.Errorf("Unexpected result: %+v", r)
	}
	if r.Duration != 95*time.Second {
		t.Errorf("Expected duration 95s, got %v", r.Duration)
	}
	if r.Difficulty != "hard" {
		t.Errorf("Expected difficulty hard, got %q", r.Difficulty)
	}
}

func TestStoreDefaultDifficulty(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveResult(Result{Wave: 1}); err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}
	results, _ := store.TopResults(1)
	if len(results) != 1 || results[0].Difficulty != "normal" {
		t.Errorf("Expected difficulty to default to normal, got %+v", results)
	}
}

func TestStoreTopResultsOrder(t *testing.T) {
	store := openTestStore(t)

	store.SaveResult(Result{Won: false, Wave: 9, TowerHealth: 0})
	store.SaveResult(Result{Won: true, Wave: 10, TowerHealth: 100})
	store.SaveResult(Result{Won: false, Wave: 4, TowerHealth: 0})
	store.SaveResult(Result{Won: true, Wave: 10, TowerHealth: 800})

	results, err := store.TopResults(10)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(results))
	}

	// Victories first, then the furthest wave, then the healthiest tower.
	want := []struct {
		won    bool
		wave   int
		health float64
	}{
		{true, 10, 800},
		{true, 10, 100},
		{false, 9, 0},
		{false, 4, 0},
	}
	for i, w := range want {
		r := results[i]
		if r.Won != w.won || r.Wave != w.wave || r.TowerHealth != w.health {
			t.Errorf("results[%d] = %+v, expected %+v", i, r, w)
		}
	}
}

func TestStoreTopResultsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveResult(Result{Wave: i + 1})
	}

	results, err := store.TopResults(3)
	if err != nil {
		t.Fatalf("TopResults() failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Expected 3 results with limit, got %d", len(results))
	}
	if results[0].Wave != 5 || results[1].Wave != 4 || results[2].Wave != 3 {
		t.Errorf("Results not in expected order: %v", results)
	}

	// Non-positive limits fall back to ten.
	all, _ := store.TopResults(0)
	if len(all) != 5 {
		t.Errorf("Expected 5 results with default limit, got %d", len(all))
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.Games != 0 || stats.Wins != 0 || stats.BestWave != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if !stats.LastPlayed.IsZero() {
		t.Errorf("Expected zero LastPlayed, got %v", stats.LastPlayed)
	}

	store.SaveResult(Result{Won: true, Wave: 10})
	store.SaveResult(Result{Won: false, Wave: 6})
	store.SaveResult(Result{Won: false, Wave: 3})

	stats, err = store.GetStats()
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.Games != 3 || stats.Wins != 1 || stats.BestWave != 10 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestStoreClearResults(t *testing.T) {
	store := openTestStore(t)

	store.SaveResult(Result{Wave: 1})
	store.SaveResult(Result{Wave: 2})

	if err := store.ClearResults(); err != nil {
		t.Fatalf("ClearResults() failed: %v", err)
	}

	results, _ := store.TopResults(10)
	if len(results) != 0 {
		t.Errorf("Expected 0 results after clear, got %d", len(results))
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
