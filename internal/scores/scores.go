// Package scores persists capped per-game leaderboards and the last score
// of each game.
package scores

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Capacity is the number of entries kept per game.
const Capacity = 10

// maxPlayerLen bounds stored player names, in runes.
const maxPlayerLen = 24

// anonymous replaces empty player names.
const anonymous = "Anonymous"

// Entry is one leaderboard row.
type Entry struct {
	ID     string
	Game   string
	Player string
	Score  int
	At     time.Time
	seq    int64
}

// Describe formats the entry as a leaderboard line.
//
//	 1. Ada            12,340  3 minutes ago
func (e Entry) Describe(rank int, now time.Time) string {
	return fmt.Sprintf("%2d. %-*s %8s  %s", rank, maxPlayerLen, e.Player,
		humanize.Comma(int64(e.Score)), humanize.RelTime(e.At, now, "ago", "from now"))
}

// Store is a leaderboard backend.
type Store interface {
	// Submit records a score and returns the game's leaderboard afterwards.
	Submit(ctx context.Context, game, player string, score int) ([]Entry, error)
	// Top returns up to n entries, best first.
	Top(ctx context.Context, game string, n int) ([]Entry, error)
	// LastScore returns the most recently submitted score of a game.
	LastScore(ctx context.Context, game string) (int, bool, error)
	// IsNewHighScore reports whether score would enter the leaderboard.
	IsNewHighScore(ctx context.Context, game string, score int) (bool, error)
	Close() error
}

// CleanPlayer trims and bounds a player name.
func CleanPlayer(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return anonymous
	}
	if utf8.RuneCountInString(name) > maxPlayerLen {
		r := []rune(name)
		name = string(r[:maxPlayerLen])
	}
	return name
}

func newEntry(game, player string, score int, at time.Time) Entry {
	return Entry{
		ID:     uuid.New().String(),
		Game:   game,
		Player: CleanPlayer(player),
		Score:  score,
		At:     at,
	}
}

// sortEntries orders by score descending, then insertion order.
func sortEntries(es []Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		if es[i].Score != es[j].Score {
			return es[i].Score > es[j].Score
		}
		return es[i].seq < es[j].seq
	})
}

// qualifies reports whether score would enter a leaderboard holding top.
func qualifies(top []Entry, score int) bool {
	if len(top) < Capacity {
		return true
	}
	return score > top[len(top)-1].Score
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*Memory)(nil)
)
