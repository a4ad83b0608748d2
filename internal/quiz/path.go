package quiz

import (
	"fmt"
	"strings"
	"time"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
)

// PathState is the path-building mode state.
type PathState uint8

const (
	PathIdle PathState = iota
	PathActive
	PathWon
)

func (s PathState) String() string {
	switch s {
	case PathIdle:
		return "idle"
	case PathActive:
		return "active"
	case PathWon:
		return "won"
	}
	return "unknown"
}

// PathGame asks the player to connect a start and an end region through a
// chain of neighbouring regions.
type PathGame struct {
	atlas *atlas.Atlas
	log   *EventLog
	clock func() time.Time

	state    PathState
	start    string
	end      string
	path     []string
	moves    int
	errors   int
	began    time.Time
	finished time.Time
}

// NewPathGame creates an idle path game. A nil clock uses time.Now.
func NewPathGame(a *atlas.Atlas, log *EventLog, clock func() time.Time) *PathGame {
	if clock == nil {
		clock = time.Now
	}
	return &PathGame{atlas: a, log: log, clock: clock}
}

func (g *PathGame) State() PathState { return g.state }

// Endpoints returns the start and end regions of the current game.
func (g *PathGame) Endpoints() (string, string) { return g.start, g.end }

// Path returns a copy of the current path, start first.
func (g *PathGame) Path() []string { return append([]string(nil), g.path...) }

// Current is the last region on the path.
func (g *PathGame) Current() string {
	if len(g.path) == 0 {
		return ""
	}
	return g.path[len(g.path)-1]
}

func (g *PathGame) Moves() int  { return g.moves }
func (g *PathGame) Errors() int { return g.errors }

// InPath reports whether a region is already on the path.
func (g *PathGame) InPath(name string) bool {
	for _, p := range g.path {
		if p == name {
			return true
		}
	}
	return false
}

// Elapsed is the wall-clock time since the start, frozen on win.
func (g *PathGame) Elapsed() time.Duration {
	switch g.state {
	case PathActive:
		return g.clock().Sub(g.began)
	case PathWon:
		return g.finished.Sub(g.began)
	}
	return 0
}

// Start picks a random valid pair and begins a game.
func (g *PathGame) Start() error {
	if g.state != PathIdle {
		return wrongState("start", g.state)
	}
	p, ok := g.atlas.RandomPair()
	if !ok {
		return ErrNoPair
	}
	return g.StartWith(p)
}

// StartWith begins a game with a fixed pair.
func (g *PathGame) StartWith(p atlas.Pair) error {
	if g.state != PathIdle {
		return wrongState("start", g.state)
	}
	s, okS := g.atlas.Region(p.Start)
	e, okE := g.atlas.Region(p.End)
	if !okS || !okE || s == e {
		return fmt.Errorf("%w: %q to %q", ErrNoPair, p.Start, p.End)
	}
	g.start, g.end = s.Name, e.Name
	g.atlas.SetEndpoint(g.start, true)
	g.atlas.SetEndpoint(g.end, false)
	g.path = []string{g.start}
	g.moves, g.errors = 0, 0
	g.began = g.clock()
	g.state = PathActive
	g.log.Add(CatPath, "start", g.start+" -> "+g.end, 0)
	return nil
}

// Submit validates one typed region name against the path.
func (g *PathGame) Submit(text string) (Outcome, error) {
	if g.state != PathActive {
		return Outcome{}, wrongState("submit", g.state)
	}
	r, ok := g.atlas.FindRegion(text)
	if !ok {
		return g.reject(atlas.Normalize(text), ReasonNotFound), nil
	}
	name := r.Name
	if g.InPath(name) {
		return g.reject(name, ReasonAlreadyUsed), nil
	}
	if !g.atlas.AreAdjacent(g.Current(), name) {
		return g.reject(name, ReasonNotAdjacent), nil
	}

	g.path = append(g.path, name)
	g.moves++
	g.atlas.SetHighlight(name, true)
	g.log.Add(CatPath, "accept", name, float64(g.moves))

	out := Outcome{Accepted: true, Region: name}
	if name == g.end {
		g.state = PathWon
		g.finished = g.clock()
		out.Won = true
		g.log.Add(CatPath, "won", strings.Join(g.path, " > "), float64(g.moves))
	}
	return out, nil
}

func (g *PathGame) reject(name string, why Reason) Outcome {
	g.errors++
	g.log.Add(CatPath, "reject", why.String()+": "+name, float64(g.errors))
	return Outcome{Region: name, Reason: why}
}

// Reset returns to idle and clears the path.
func (g *PathGame) Reset() {
	*g = PathGame{atlas: g.atlas, log: g.log, clock: g.clock}
}
