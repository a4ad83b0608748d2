package quiz

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/scores"
)

// Harness is a headless quiz built from in-memory data. It is used by tests
// and by the headless report, and needs no map files.
type Harness struct {
	Atlas   *atlas.Atlas
	Session *Session
	Log     *EventLog
	Store   *scores.Memory

	MapW, MapH float64

	regions   []*atlas.Region
	adjacency map[string][]string
	groups    map[string][]string
	order     []string
	pairs     []atlas.Pair
	places    []Place
	rounds    int
	seed      int64
	logger    *slog.Logger
}

// harnessOptionKind controls the pass in which an option is applied.
type harnessOptionKind int

const (
	harnessOptInfra    harnessOptionKind = iota // seed, map size, rounds, logger
	harnessOptRegion                            // regions and places
	harnessOptRelation                          // edges, groups, pairs; applied once regions exist
)

// HarnessOption is a builder function applied to a Harness during construction.
type HarnessOption struct {
	kind harnessOptionKind
	fn   func(*Harness)
}

// WithSeed sets the RNG seed for deterministic pair and place selection.
func WithSeed(seed int64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.seed = seed }}
}

// WithMapSize sets the map-space size used by the pin mode.
func WithMapSize(w, hgt float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.MapW, h.MapH = w, hgt }}
}

// WithRounds sets the number of find-the-place rounds.
func WithRounds(n int) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.rounds = n }}
}

// WithHarnessLogger routes controller logging. The default discards it.
func WithHarnessLogger(l *slog.Logger) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.logger = l }}
}

// WithRegion adds a region drawn by raw path data.
func WithRegion(name, group string, paths ...string) HarnessOption {
	return HarnessOption{harnessOptRegion, func(h *Harness) {
		h.regions = append(h.regions, &atlas.Region{ID: name, Name: name, Group: group, Paths: paths})
	}}
}

// WithRectRegion adds an axis-aligned rectangular region.
func WithRectRegion(name, group string, x, y, w, hgt float64) HarnessOption {
	d := fmt.Sprintf("M%g %gH%gV%gH%gZ", x, y, x+w, y+hgt, x)
	return WithRegion(name, group, d)
}

// WithPlace adds a find-the-place location at map coordinates.
func WithPlace(name string, x, y float64) HarnessOption {
	return HarnessOption{harnessOptRegion, func(h *Harness) {
		h.places = append(h.places, Place{Name: name, X: x, Y: y})
	}}
}

// WithEdge records a one-directional adjacency; lookups are symmetric.
func WithEdge(a, b string) HarnessOption {
	return HarnessOption{harnessOptRelation, func(h *Harness) {
		h.adjacency[a] = append(h.adjacency[a], b)
	}}
}

// WithGroup defines a grouping. Members without a group tag receive it.
func WithGroup(name string, members ...string) HarnessOption {
	return HarnessOption{harnessOptRelation, func(h *Harness) {
		if _, ok := h.groups[name]; !ok {
			h.order = append(h.order, name)
		}
		h.groups[name] = append(h.groups[name], members...)
		for _, r := range h.regions {
			for _, m := range members {
				if r.Name == m && r.Group == "" {
					r.Group = name
				}
			}
		}
	}}
}

// WithPair adds a curated start/end pair.
func WithPair(start, end string) HarnessOption {
	return HarnessOption{harnessOptRelation, func(h *Harness) {
		h.pairs = append(h.pairs, atlas.Pair{Start: start, End: end})
	}}
}

// NewHarness builds an atlas and a session from the options in ordered passes:
//  1. Infrastructure (seed, map size, rounds, logger)
//  2. Regions and places
//  3. Edges, groups and pairs
//
// Scores go to an in-memory store.
func NewHarness(opts ...HarnessOption) *Harness {
	h := &Harness{
		MapW:      1000,
		MapH:      500,
		adjacency: map[string][]string{},
		groups:    map[string][]string{},
		seed:      1,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, kind := range []harnessOptionKind{harnessOptInfra, harnessOptRegion, harnessOptRelation} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(h)
			}
		}
	}
	for _, r := range h.regions {
		if r.Group == "" {
			r.Group = "Unknown"
		}
	}

	rng := rand.New(rand.NewSource(h.seed)) // #nosec G404 -- test harness
	h.Atlas = atlas.New(h.regions, h.adjacency, h.groups, h.order, h.pairs,
		atlas.WithRand(rng), atlas.WithLogger(h.logger))
	h.Store = scores.NewMemory()
	h.Session = NewSession(h.Atlas, h.places, h.Store, SessionConfig{
		Rounds: h.rounds,
		Rand:   rng,
		Logger: h.logger,
		MapW:   h.MapW,
		MapH:   h.MapH,
	})
	h.Log = h.Session.Log()
	return h
}

// Do dispatches a command and returns its result and error.
func (h *Harness) Do(cmd Command) (Result, error) {
	r := h.Session.Dispatch(cmd)
	return r, r.Err
}

// SubmitAll submits names in order and returns the outcomes.
func (h *Harness) SubmitAll(names ...string) []Outcome {
	out := make([]Outcome, 0, len(names))
	for _, n := range names {
		out = append(out, h.Session.Dispatch(Submit{Text: n}).Outcome)
	}
	return out
}

// PlayPins places one pin per round at the given guesses, advancing after
// each, until the game completes or guesses run out.
func (h *Harness) PlayPins(guesses ...[2]float64) ([]RoundResult, error) {
	var out []RoundResult
	for _, g := range guesses {
		if h.Session.Pins().State() != PinRoundActive {
			break
		}
		r := h.Session.Dispatch(PlacePin{X: g[0], Y: g[1]})
		if r.Err != nil {
			return out, r.Err
		}
		out = append(out, r.Round)
		if r := h.Session.Dispatch(NextRound{}); r.Err != nil {
			return out, r.Err
		}
	}
	return out, nil
}
