package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/scores"
)

// LeaderboardKey is the leaderboard of the find-the-place mode.
const LeaderboardKey = "findPlaceHighScores"

const saveTimeout = 3 * time.Second

// Command is one player intent. The set is closed.
type Command interface{ isCommand() }

// StartPath begins a path game. Empty Start/End picks a random pair.
type StartPath struct{ Start, End string }

// ChooseGroup begins a name-all game over one grouping.
type ChooseGroup struct{ Name string }

// StartPin begins a find-the-place game.
type StartPin struct{}

// Submit is a typed region name.
type Submit struct{ Text string }

// PlacePin is a guess at map coordinates.
type PlacePin struct{ X, Y float64 }

// NextRound advances a scored find-the-place round.
type NextRound struct{}

// TogglePinMode switches between panning and pin placement.
type TogglePinMode struct{}

// SaveScore records the finished find-the-place total.
type SaveScore struct{ Player string }

// Reset leaves the current mode.
type Reset struct{}

func (StartPath) isCommand()     {}
func (ChooseGroup) isCommand()   {}
func (StartPin) isCommand()      {}
func (Submit) isCommand()        {}
func (PlacePin) isCommand()      {}
func (NextRound) isCommand()     {}
func (TogglePinMode) isCommand() {}
func (SaveScore) isCommand()     {}
func (Reset) isCommand()         {}

// Result is what a command produced. Only the fields relevant to the
// command are set.
type Result struct {
	Outcome Outcome
	Round   RoundResult
	Saved   bool
	NewHigh bool // the saved score entered the leaderboard
	Entries []scores.Entry
	PinMode bool
	Err     error
}

// SessionConfig tunes a Session. Zero values mean defaults.
type SessionConfig struct {
	Rounds int
	Rand   *rand.Rand
	Clock  func() time.Time
	Logger *slog.Logger
	// MapW and MapH declare an equirectangular map for great-circle
	// distances in round results.
	MapW, MapH float64
}

// Session owns the atlas and the three mode controllers. Only one mode is
// active at a time.
type Session struct {
	atlas  *atlas.Atlas
	log    *EventLog
	store  scores.Store
	logger *slog.Logger

	path  *PathGame
	names *NameAllGame
	pins  *PinGame

	places  []Place
	mode    Mode
	pinMode bool
	saved   bool
}

// NewSession wires the controllers for one player. store may be nil, in
// which case scores are kept in memory.
func NewSession(a *atlas.Atlas, places []Place, store scores.Store, cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if store == nil {
		store = scores.NewMemory()
	}
	log := NewEventLog()
	s := &Session{
		atlas:  a,
		log:    log,
		store:  store,
		logger: cfg.Logger,
		path:   NewPathGame(a, log, cfg.Clock),
		names:  NewNameAllGame(a, log, cfg.Clock),
		pins:   NewPinGame(places, cfg.Rounds, cfg.Rand, log),
		places: append([]Place(nil), places...),
	}
	if cfg.MapW > 0 && cfg.MapH > 0 {
		s.pins.SetMapSize(cfg.MapW, cfg.MapH)
	}
	return s
}

func (s *Session) Mode() Mode            { return s.mode }
func (s *Session) PinMode() bool         { return s.pinMode }
func (s *Session) Atlas() *atlas.Atlas   { return s.atlas }
func (s *Session) Log() *EventLog        { return s.log }
func (s *Session) Path() *PathGame       { return s.path }
func (s *Session) NameAll() *NameAllGame { return s.names }
func (s *Session) Pins() *PinGame        { return s.pins }
func (s *Session) Store() scores.Store   { return s.store }
func (s *Session) Places() []Place       { return append([]Place(nil), s.places...) }
func (s *Session) Saved() bool           { return s.saved }

// SetStore swaps the leaderboard backend.
func (s *Session) SetStore(st scores.Store) { s.store = st }

// SetPlaces replaces the find-the-place locations. They take effect at the
// next StartPin.
func (s *Session) SetPlaces(places []Place) {
	s.places = append([]Place(nil), places...)
}

// enter resets every controller and region flag, then switches mode.
func (s *Session) enter(m Mode) {
	s.path.Reset()
	s.names.Reset()
	s.pins.Reset()
	s.atlas.ResetHighlights()
	s.pinMode = false
	s.saved = false
	s.mode = m
	s.log.SetMode(m)
	s.log.Add(CatMode, "enter", m.String(), 0)
}

// Dispatch applies one command.
func (s *Session) Dispatch(cmd Command) Result {
	switch c := cmd.(type) {
	case StartPath:
		return s.startPath(c)
	case ChooseGroup:
		return s.chooseGroup(c)
	case StartPin:
		return s.startPin()
	case Submit:
		return s.submit(c)
	case PlacePin:
		if s.mode != ModePin {
			return Result{Err: fmt.Errorf("%w: place pin in %s mode", ErrWrongState, s.mode)}
		}
		r, err := s.pins.Place(c.X, c.Y)
		return Result{Round: r, Err: err}
	case NextRound:
		if s.mode != ModePin {
			return Result{Err: fmt.Errorf("%w: next round in %s mode", ErrWrongState, s.mode)}
		}
		return Result{Err: s.pins.Next()}
	case TogglePinMode:
		s.pinMode = !s.pinMode
		s.log.Add(CatPin, "pin_mode", fmt.Sprintf("%t", s.pinMode), 0)
		return Result{PinMode: s.pinMode}
	case SaveScore:
		return s.saveScore(c)
	case Reset:
		s.enter(ModeNone)
		return Result{}
	}
	return Result{Err: fmt.Errorf("quiz: unknown command %T", cmd)}
}

func (s *Session) startPath(c StartPath) Result {
	s.enter(ModePath)
	var err error
	if c.Start == "" && c.End == "" {
		err = s.path.Start()
	} else {
		err = s.path.StartWith(atlas.Pair{Start: c.Start, End: c.End})
	}
	if err != nil {
		s.logger.Warn("path_start_failed", "err", err)
	}
	return Result{Err: err}
}

func (s *Session) chooseGroup(c ChooseGroup) Result {
	s.enter(ModeNameAll)
	if err := s.names.SelectGroup(c.Name); err != nil {
		return Result{Err: err}
	}
	return Result{Err: s.names.Begin()}
}

func (s *Session) startPin() Result {
	s.enter(ModePin)
	if err := s.pins.SetPlaces(s.places); err != nil {
		return Result{Err: err}
	}
	if err := s.pins.Start(); err != nil {
		return Result{Err: err}
	}
	s.pinMode = true
	return Result{PinMode: true}
}

func (s *Session) submit(c Submit) Result {
	var (
		out Outcome
		err error
	)
	switch s.mode {
	case ModePath:
		out, err = s.path.Submit(c.Text)
	case ModeNameAll:
		out, err = s.names.Submit(c.Text)
	default:
		err = fmt.Errorf("%w: submit in %s mode", ErrWrongState, s.mode)
	}
	return Result{Outcome: out, Err: err}
}

// saveScore stores the pin total once per completed game. A storage failure
// is logged and reported as not saved.
func (s *Session) saveScore(c SaveScore) Result {
	if s.mode != ModePin || s.pins.State() != PinComplete {
		return Result{Err: fmt.Errorf("%w: save score before the game is complete", ErrWrongState)}
	}
	if s.saved {
		return Result{Saved: true}
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	high, err := s.store.IsNewHighScore(ctx, LeaderboardKey, s.pins.Total())
	if err != nil {
		s.logger.Warn("high_score_check_failed", "game", LeaderboardKey, "err", err)
	}
	entries, err := s.store.Submit(ctx, LeaderboardKey, c.Player, s.pins.Total())
	if err != nil {
		s.logger.Error("score_not_saved", "game", LeaderboardKey, "err", err)
		s.log.Add(CatScore, "save_failed", err.Error(), float64(s.pins.Total()))
		return Result{Err: err}
	}
	s.saved = true
	s.log.Add(CatScore, "saved", scores.CleanPlayer(c.Player), float64(s.pins.Total()))
	if high {
		s.log.Add(CatScore, "new_high", scores.CleanPlayer(c.Player), float64(s.pins.Total()))
	}
	return Result{Saved: true, NewHigh: high, Entries: entries}
}

// QualifiesForLeaderboard reports whether the finished pin game's total
// would enter the leaderboard.
func (s *Session) QualifiesForLeaderboard() (bool, error) {
	if s.mode != ModePin || s.pins.State() != PinComplete {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.store.IsNewHighScore(ctx, LeaderboardKey, s.pins.Total())
}

// LastScore returns the most recently saved find-the-place score.
func (s *Session) LastScore() (int, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.store.LastScore(ctx, LeaderboardKey)
}

// Leaderboard returns the find-the-place top entries.
func (s *Session) Leaderboard() ([]scores.Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.store.Top(ctx, LeaderboardKey, scores.Capacity)
}
