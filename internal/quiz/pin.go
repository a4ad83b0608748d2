package quiz

import (
	"fmt"
	"math/rand"
	"time"
)

// PinState is the find-the-place mode state.
type PinState uint8

const (
	PinIdle PinState = iota
	PinRoundActive
	PinRoundScored
	PinComplete
)

func (s PinState) String() string {
	switch s {
	case PinIdle:
		return "idle"
	case PinRoundActive:
		return "round_active"
	case PinRoundScored:
		return "round_scored"
	case PinComplete:
		return "complete"
	}
	return "unknown"
}

// PinKind tags a pin as the player's guess or the true location.
type PinKind uint8

const (
	PinGuess PinKind = iota
	PinTarget
)

// Pin is a marker in map space. Pins live for one round.
type Pin struct {
	X, Y float64
	Kind PinKind
}

// RoundResult is the scoring of one placed pin.
type RoundResult struct {
	Round      int
	Place      Place
	GuessX     float64
	GuessY     float64
	DistanceKm float64
	Score      int
	Total      int
	Final      bool // no further round follows

	// GreatCircleKm is the surface distance when the map is known to be
	// equirectangular (see SetMapSize), else 0.
	GreatCircleKm float64
}

// PinGame runs a fixed number of find-the-place rounds.
type PinGame struct {
	places []Place
	rounds int
	rng    *rand.Rand
	log    *EventLog
	mapW   float64
	mapH   float64

	state   PinState
	used    map[int]bool
	current int
	round   int
	pins    []Pin
	results []RoundResult
	total   int
}

// NewPinGame creates an idle game over places. rounds <= 0 means DefaultRounds.
func NewPinGame(places []Place, rounds int, rng *rand.Rand, log *EventLog) *PinGame {
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}
	return &PinGame{
		places:  append([]Place(nil), places...),
		rounds:  rounds,
		rng:     rng,
		log:     log,
		used:    map[int]bool{},
		current: -1,
	}
}

func (g *PinGame) State() PinState { return g.state }
func (g *PinGame) Round() int      { return g.round }
func (g *PinGame) Rounds() int     { return g.rounds }
func (g *PinGame) Total() int      { return g.total }

// Pins returns the pins of the current round.
func (g *PinGame) Pins() []Pin { return append([]Pin(nil), g.pins...) }

// Results returns the scored rounds so far.
func (g *PinGame) Results() []RoundResult { return append([]RoundResult(nil), g.results...) }

// SetMapSize declares the map as an equirectangular projection of the given
// size, enabling great-circle distances in results.
func (g *PinGame) SetMapSize(w, h float64) {
	g.mapW, g.mapH = w, h
}

// SetPlaces replaces the location set. Only valid while idle.
func (g *PinGame) SetPlaces(places []Place) error {
	if g.state != PinIdle {
		return wrongState("set places", g.state)
	}
	g.places = append([]Place(nil), places...)
	return nil
}

// Current returns the place being searched for.
func (g *PinGame) Current() (Place, bool) {
	if g.current < 0 || g.state == PinComplete || g.state == PinIdle {
		return Place{}, false
	}
	return g.places[g.current], true
}

// Start begins the first round.
func (g *PinGame) Start() error {
	if g.state != PinIdle {
		return wrongState("start", g.state)
	}
	if len(g.places) == 0 {
		return ErrNoPlaces
	}
	g.nextPlace()
	return nil
}

func (g *PinGame) unused() []int {
	var out []int
	for i := range g.places {
		if !g.used[i] {
			out = append(out, i)
		}
	}
	return out
}

func (g *PinGame) nextPlace() {
	free := g.unused()
	g.current = free[g.rng.Intn(len(free))]
	g.used[g.current] = true
	g.round++
	g.pins = nil
	g.state = PinRoundActive
	g.log.Add(CatPin, "round", fmt.Sprintf("%d/%d %s", g.round, g.rounds, g.places[g.current].Name), float64(g.round))
}

// Place scores a guess at map coordinates. Only one pin is accepted per round.
func (g *PinGame) Place(x, y float64) (RoundResult, error) {
	if g.state != PinRoundActive {
		return RoundResult{}, wrongState("place pin", g.state)
	}
	p := g.places[g.current]
	d := MapDistanceKm(x, y, p.X, p.Y)
	s := Score(d)
	g.total += s
	g.pins = []Pin{{X: x, Y: y, Kind: PinGuess}, {X: p.X, Y: p.Y, Kind: PinTarget}}
	res := RoundResult{
		Round:      g.round,
		Place:      p,
		GuessX:     x,
		GuessY:     y,
		DistanceKm: d,
		Score:      s,
		Total:      g.total,
		Final:      g.round >= g.rounds || len(g.unused()) == 0,
	}
	if g.mapW > 0 && g.mapH > 0 {
		la1, lo1 := Unproject(x, y, g.mapW, g.mapH)
		la2, lo2 := Unproject(p.X, p.Y, g.mapW, g.mapH)
		res.GreatCircleKm = Haversine(la1, lo1, la2, lo2)
	}
	g.results = append(g.results, res)
	g.state = PinRoundScored
	g.log.Add(CatPin, "scored", fmt.Sprintf("%s %.0fkm", p.Name, d), float64(s))
	return res, nil
}

// Next advances to the next round, or completes the game when the round
// count is reached or no unused places remain.
func (g *PinGame) Next() error {
	if g.state != PinRoundScored {
		return wrongState("next round", g.state)
	}
	if g.round >= g.rounds || len(g.unused()) == 0 {
		g.state = PinComplete
		g.pins = nil
		g.log.Add(CatPin, "complete", fmt.Sprintf("%d rounds", g.round), float64(g.total))
		return nil
	}
	g.nextPlace()
	return nil
}

// Reset returns to idle, clearing pins, results and used places.
func (g *PinGame) Reset() {
	*g = PinGame{
		places:  g.places,
		rounds:  g.rounds,
		rng:     g.rng,
		log:     g.log,
		mapW:    g.mapW,
		mapH:    g.mapH,
		used:    map[int]bool{},
		current: -1,
	}
}
