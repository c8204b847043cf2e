package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-defence/internal/storage"
)

func TestResultRows(t *testing.T) {
	rows := resultRows([]storage.Result{
		{Won: true, Wave: 5, TowerHealth: 640.4, Money: 1230, Duration: 90 * time.Second, Difficulty: "easy"},
		{Won: false, Wave: 3, TowerHealth: 0, Money: 15, Duration: time.Minute, Difficulty: "hard"},
	})

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	want := []string{"#1", "won", "5", "640", "1230", "1m30s", "easy"}
	for i, w := range want {
		if rows[0][i] != w {
			t.Errorf("rows[0][%d] = %q, expected %q", i, rows[0][i], w)
		}
	}
	if rows[1][0] != "#2" || rows[1][1] != "lost" {
		t.Errorf("Unexpected second row %v", rows[1])
	}
}

func TestScoreboardEmpty(t *testing.T) {
	m := NewScoreboardModel(nil, 100, 30)
	if !strings.Contains(m.View(), "No games recorded yet") {
		t.Error("Expected empty message without a store")
	}
}

func TestScoreboardLoadsResults(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	store.SaveResult(storage.Result{Won: true, Wave: 5, TowerHealth: 100})
	store.SaveResult(storage.Result{Won: false, Wave: 2})

	m := NewScoreboardModel(store, 100, 30)
	if len(m.results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(m.results))
	}
	if m.stats == nil || m.stats.Games != 2 || m.stats.Wins != 1 {
		t.Errorf("Unexpected stats %+v", m.stats)
	}
	if !strings.Contains(m.View(), "2 games") {
		t.Error("Summary line missing from view")
	}
}

func TestScoreboardBackQuits(t *testing.T) {
	m := NewScoreboardModel(nil, 80, 24)

	next, cmd := m.Update(keyMsg("esc"))
	if cmd == nil {
		t.Fatal("Back should quit the board")
	}
	if sm := next.(ScoreboardModel); sm.View() != "" {
		t.Error("View should be empty after quitting")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Back should return tea.Quit")
	}
}
