package scores

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var twelve = []int{50, 90, 10, 100, 70, 20, 80, 30, 60, 40, 95, 5}

func openTemp(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "scores.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func checkCapAndOrder(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	for i, sc := range twelve {
		if _, err := st.Submit(ctx, "findPlaceHighScores", "p"+string(rune('a'+i)), sc); err != nil {
			t.Fatalf("submit %d: %v", sc, err)
		}
	}
	top, err := st.Top(ctx, "findPlaceHighScores", 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, len(top))
	}
	want := []int{100, 95, 90, 80, 70, 60, 50, 40, 30, 20}
	for i, w := range want {
		if top[i].Score != w {
			t.Fatalf("rank %d: expected %d, got %d (%v)", i+1, w, top[i].Score, top)
		}
	}
}

// --- Leaderboard cap and order ---

func TestMemory_CapAndOrder(t *testing.T) {
	checkCapAndOrder(t, NewMemory())
}

func TestSQLStore_CapAndOrder(t *testing.T) {
	checkCapAndOrder(t, openTemp(t))
}

func checkTies(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []string{"first", "second", "third"} {
		if _, err := st.Submit(ctx, "g", p, 500); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	top, _ := st.Top(ctx, "g", 3)
	if top[0].Player != "first" || top[1].Player != "second" || top[2].Player != "third" {
		t.Fatalf("ties should keep insertion order, got %v", top)
	}
}

func TestMemory_TiesKeepInsertionOrder(t *testing.T) {
	checkTies(t, NewMemory())
}

func TestSQLStore_TiesKeepInsertionOrder(t *testing.T) {
	checkTies(t, openTemp(t))
}

// --- Last score and qualification ---

func checkLastScore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	if _, ok, err := st.LastScore(ctx, "g"); err != nil || ok {
		t.Fatalf("no last score expected, ok=%v err=%v", ok, err)
	}
	st.Submit(ctx, "g", "a", 300)
	st.Submit(ctx, "g", "b", 100)
	last, ok, err := st.LastScore(ctx, "g")
	if err != nil || !ok || last != 100 {
		t.Fatalf("last score should be 100, got %d ok=%v err=%v", last, ok, err)
	}
	if _, ok, _ := st.LastScore(ctx, "other"); ok {
		t.Fatal("last score is per game")
	}
}

func TestMemory_LastScore(t *testing.T) { checkLastScore(t, NewMemory()) }
func TestSQLStore_LastScore(t *testing.T) { checkLastScore(t, openTemp(t)) }

func TestSQLStore_IsNewHighScore(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	if ok, _ := st.IsNewHighScore(ctx, "g", 0); !ok {
		t.Fatal("any score qualifies on a board with free slots")
	}
	for i := 1; i <= Capacity; i++ {
		st.Submit(ctx, "g", "p", i*10)
	}
	if ok, _ := st.IsNewHighScore(ctx, "g", 10); ok {
		t.Fatal("tying the lowest score on a full board does not qualify")
	}
	if ok, _ := st.IsNewHighScore(ctx, "g", 11); !ok {
		t.Fatal("beating the lowest score qualifies")
	}
}

func TestSQLStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(path, quiet)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Submit(context.Background(), "g", "Ada", 1234); err != nil {
		t.Fatalf("submit: %v", err)
	}
	s.Close()

	s2, err := Open(path, quiet)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	top, err := s2.Top(context.Background(), "g", 0)
	if err != nil || len(top) != 1 || top[0].Player != "Ada" || top[0].ID == "" {
		t.Fatalf("entry should survive reopen, got %v err=%v", top, err)
	}
}

// --- Formatting ---

func TestEntry_Describe(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := Entry{Player: "Ada", Score: 12340, At: now.Add(-3 * time.Minute)}
	line := e.Describe(1, now)
	if !strings.Contains(line, "12,340") {
		t.Fatalf("score should carry thousands separators: %q", line)
	}
	if !strings.Contains(line, "3 minutes ago") {
		t.Fatalf("age should be relative: %q", line)
	}
	if !strings.HasPrefix(line, " 1. Ada") {
		t.Fatalf("rank prefix missing: %q", line)
	}
}

func TestCleanPlayer(t *testing.T) {
	if got := CleanPlayer("   "); got != anonymous {
		t.Fatalf("blank name should become %q, got %q", anonymous, got)
	}
	if got := CleanPlayer("  Ada   Lovelace "); got != "Ada Lovelace" {
		t.Fatalf("whitespace should collapse, got %q", got)
	}
	long := strings.Repeat("é", 40)
	if got := CleanPlayer(long); len([]rune(got)) != maxPlayerLen {
		t.Fatalf("name should be cut to %d runes, got %d", maxPlayerLen, len([]rune(got)))
	}
}
