package quiz

import (
	"fmt"
	"time"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
)

// NameAllState is the name-all mode state.
type NameAllState uint8

const (
	NameAllIdle NameAllState = iota
	NameAllRegionSelected
	NameAllActive
	NameAllWon
)

func (s NameAllState) String() string {
	switch s {
	case NameAllIdle:
		return "idle"
	case NameAllRegionSelected:
		return "region_selected"
	case NameAllActive:
		return "active"
	case NameAllWon:
		return "won"
	}
	return "unknown"
}

// NameAllGame asks the player to name every member of one grouping.
type NameAllGame struct {
	atlas *atlas.Atlas
	log   *EventLog
	clock func() time.Time

	state    NameAllState
	group    string
	members  []string
	named    map[string]bool
	order    []string
	errors   int
	began    time.Time
	finished time.Time
}

// NewNameAllGame creates an idle game. A nil clock uses time.Now.
func NewNameAllGame(a *atlas.Atlas, log *EventLog, clock func() time.Time) *NameAllGame {
	if clock == nil {
		clock = time.Now
	}
	return &NameAllGame{atlas: a, log: log, clock: clock, named: map[string]bool{}}
}

func (g *NameAllGame) State() NameAllState { return g.state }
func (g *NameAllGame) Group() string       { return g.group }
func (g *NameAllGame) Errors() int         { return g.errors }

// Named returns named regions in the order they were named.
func (g *NameAllGame) Named() []string { return append([]string(nil), g.order...) }

// IsNamed reports whether a region has been named.
func (g *NameAllGame) IsNamed(name string) bool { return g.named[name] }

// Counts returns named, total and remaining member counts.
func (g *NameAllGame) Counts() (named, total, remaining int) {
	return len(g.order), len(g.members), len(g.members) - len(g.order)
}

// AreAllNamed reports whether every member of the grouping is named.
func (g *NameAllGame) AreAllNamed() bool {
	return len(g.members) > 0 && len(g.order) == len(g.members)
}

// Elapsed is the time since Begin, frozen on win.
func (g *NameAllGame) Elapsed() time.Duration {
	switch g.state {
	case NameAllActive:
		return g.clock().Sub(g.began)
	case NameAllWon:
		return g.finished.Sub(g.began)
	}
	return 0
}

// SelectGroup chooses the grouping to play. It may be called again to change
// the choice before Begin.
func (g *NameAllGame) SelectGroup(name string) error {
	if g.state != NameAllIdle && g.state != NameAllRegionSelected {
		return wrongState("select group", g.state)
	}
	members, ok := g.atlas.GroupMembers(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
	if len(members) == 0 {
		return fmt.Errorf("%w: %q has no regions on this map", ErrUnknownGroup, name)
	}
	g.group = name
	g.members = members
	g.state = NameAllRegionSelected
	g.log.Add(CatName, "group", name, float64(len(members)))
	return nil
}

// Begin starts accepting names and starts the clock.
func (g *NameAllGame) Begin() error {
	if g.state != NameAllRegionSelected {
		return wrongState("begin", g.state)
	}
	g.state = NameAllActive
	g.began = g.clock()
	return nil
}

// Submit validates one typed name against the grouping.
func (g *NameAllGame) Submit(text string) (Outcome, error) {
	if g.state != NameAllActive {
		return Outcome{}, wrongState("submit", g.state)
	}
	name, ok := g.atlas.InGroup(g.group, text)
	if !ok {
		return g.reject(atlas.Normalize(text), ReasonNotInGroup), nil
	}
	if g.named[name] {
		return g.reject(name, ReasonAlreadyNamed), nil
	}
	g.named[name] = true
	g.order = append(g.order, name)
	g.atlas.SetNamed(name, true)
	g.log.Add(CatName, "accept", name, float64(len(g.order)))

	out := Outcome{Accepted: true, Region: name}
	if g.AreAllNamed() {
		g.state = NameAllWon
		g.finished = g.clock()
		out.Won = true
		g.log.Add(CatName, "won", g.group, float64(len(g.order)))
	}
	return out, nil
}

func (g *NameAllGame) reject(name string, why Reason) Outcome {
	g.errors++
	g.log.Add(CatName, "reject", why.String()+": "+name, float64(g.errors))
	return Outcome{Region: name, Reason: why}
}

// Reset returns to idle and forgets the grouping and named set.
func (g *NameAllGame) Reset() {
	*g = NameAllGame{atlas: g.atlas, log: g.log, clock: g.clock, named: map[string]bool{}}
}
