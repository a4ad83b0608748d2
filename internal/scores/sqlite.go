package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLStore keeps leaderboards in a SQLite database.
type SQLStore struct {
	conn   *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

type entryRow struct {
	Seq    int64  `db:"seq"`
	ID     string `db:"id"`
	Game   string `db:"game"`
	Player string `db:"player"`
	Score  int    `db:"score"`
	AtMs   int64  `db:"at_ms"`
}

func (r entryRow) entry() Entry {
	return Entry{
		ID:     r.ID,
		Game:   r.Game,
		Player: r.Player,
		Score:  r.Score,
		At:     time.UnixMilli(r.AtMs),
		seq:    r.Seq,
	}
}

// Open opens or creates the database at path. The parent directory is
// created when missing.
func Open(path string, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &SQLStore{conn: conn, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("scores_opened", "path", path)
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.conn.Close()
}

func (s *SQLStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		game TEXT NOT NULL,
		player TEXT NOT NULL,
		score INTEGER NOT NULL,
		at_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS last_scores (
		game TEXT PRIMARY KEY,
		score INTEGER NOT NULL,
		at_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_game ON scores(game, score DESC, seq);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Submit inserts a score, trims the game's board to Capacity and records
// the last score, all in one transaction.
func (s *SQLStore) Submit(ctx context.Context, game, player string, score int) ([]Entry, error) {
	e := newEntry(game, player, score, s.now())
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scores (id, game, player, score, at_ms) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Game, e.Player, e.Score, e.At.UnixMilli()); err != nil {
		return nil, fmt.Errorf("insert score: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scores WHERE game = ? AND seq NOT IN (
			SELECT seq FROM scores WHERE game = ? ORDER BY score DESC, seq ASC LIMIT ?)`,
		game, game, Capacity); err != nil {
		return nil, fmt.Errorf("trim scores: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO last_scores (game, score, at_ms) VALUES (?, ?, ?)
		ON CONFLICT(game) DO UPDATE SET score = excluded.score, at_ms = excluded.at_ms`,
		game, score, e.At.UnixMilli()); err != nil {
		return nil, fmt.Errorf("last score: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("score_saved", "game", game, "player", e.Player, "score", score)
	return s.Top(ctx, game, Capacity)
}

// Top returns up to n entries of a game, best first. n <= 0 means Capacity.
func (s *SQLStore) Top(ctx context.Context, game string, n int) ([]Entry, error) {
	if n <= 0 || n > Capacity {
		n = Capacity
	}
	var rows []entryRow
	if err := s.conn.SelectContext(ctx, &rows,
		`SELECT seq, id, game, player, score, at_ms FROM scores
		WHERE game = ? ORDER BY score DESC, seq ASC LIMIT ?`, game, n); err != nil {
		return nil, fmt.Errorf("select scores: %w", err)
	}
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = r.entry()
	}
	return out, nil
}

// LastScore returns the last submitted score of a game.
func (s *SQLStore) LastScore(ctx context.Context, game string) (int, bool, error) {
	var score int
	err := s.conn.GetContext(ctx, &score, `SELECT score FROM last_scores WHERE game = ?`, game)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("select last score: %w", err)
	}
	return score, true, nil
}

// IsNewHighScore reports whether score would enter the game's board.
func (s *SQLStore) IsNewHighScore(ctx context.Context, game string, score int) (bool, error) {
	top, err := s.Top(ctx, game, Capacity)
	if err != nil {
		return false, err
	}
	return qualifies(top, score), nil
}
