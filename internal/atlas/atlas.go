// Package atlas holds the quiz's geographic data model: regions parsed from
// the map geometry, the adjacency graph between them, and the named region
// groupings used by the "name all" mode.
package atlas

import (
	"image/color"
	"log/slog"
	"math/rand"
	"sort"
	"time"
)

// WorldGroup is the grouping that always contains every loaded region.
const WorldGroup = "World"

// unknownGroup is the group tag given to geometry entries without a class.
const unknownGroup = "Unknown"

// Region is one quiz-selectable area (a country), possibly made of several
// disjoint landmasses.
type Region struct {
	ID      string
	Name    string
	Group   string     // continent / class tag from the geometry source
	Fill    color.RGBA // declared fill colour
	HasFill bool
	Paths   []string // raw path data, one entry per polygon

	// Transient game state. Cleared by ResetHighlights.
	Selected bool
	IsStart  bool
	IsEnd    bool
	Named    bool
}

// Pair is a start/end pair for the path-building mode.
type Pair struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Atlas owns the region set, the adjacency graph and the groupings.
// It is recreated wholesale each time a map is loaded.
type Atlas struct {
	regions map[string]*Region
	order   []string // region names in geometry order (rendering order)

	// adjacency[a] holds the neighbours recorded for a. Edges may be
	// recorded on one side only; AreAdjacent checks both directions.
	adjacency map[string]map[string]struct{}

	groups     map[string][]string
	groupOrder []string

	pairs []Pair

	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures an Atlas at construction time.
type Option func(*Atlas)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Atlas) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRand sets the random source used for pair selection and fallback
// adjacency generation.
func WithRand(r *rand.Rand) Option {
	return func(a *Atlas) {
		if r != nil {
			a.rng = r
		}
	}
}

func newAtlas(opts []Option) *Atlas {
	a := &Atlas{
		regions:   make(map[string]*Region),
		adjacency: make(map[string]map[string]struct{}),
		groups:    make(map[string][]string),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- game only
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// New builds an atlas from in-memory data. Regions sharing a name are merged.
// Group members that are not present in regions are dropped, and the World
// group is added when missing.
func New(regions []*Region, adjacency map[string][]string, groups map[string][]string, groupOrder []string, pairs []Pair, opts ...Option) *Atlas {
	a := newAtlas(opts)
	for _, r := range regions {
		a.addRegion(r)
	}
	for name, neighbours := range adjacency {
		a.addNeighbours(name, neighbours)
	}
	seen := make(map[string]bool, len(groupOrder))
	for _, g := range groupOrder {
		if members, ok := groups[g]; ok && !seen[g] {
			a.setGroup(g, members)
			seen[g] = true
		}
	}
	// Groups not named in groupOrder follow in sorted order.
	var rest []string
	for g := range groups {
		if !seen[g] {
			rest = append(rest, g)
		}
	}
	sort.Strings(rest)
	for _, g := range rest {
		a.setGroup(g, groups[g])
	}
	a.ensureWorld()
	a.pairs = append(a.pairs, pairs...)
	return a
}

func (a *Atlas) addRegion(r *Region) {
	if r == nil || r.Name == "" {
		return
	}
	if existing, ok := a.regions[r.Name]; ok {
		existing.Paths = append(existing.Paths, r.Paths...)
		return
	}
	cp := *r
	cp.Paths = append([]string(nil), r.Paths...)
	if cp.Group == "" {
		cp.Group = unknownGroup
	}
	a.regions[cp.Name] = &cp
	a.order = append(a.order, cp.Name)
}

func (a *Atlas) addNeighbours(name string, neighbours []string) {
	set, ok := a.adjacency[name]
	if !ok {
		set = make(map[string]struct{}, len(neighbours))
		a.adjacency[name] = set
	}
	for _, n := range neighbours {
		if n == "" || n == name {
			continue
		}
		set[n] = struct{}{}
	}
}

// setGroup stores a grouping, keeping only members present in the geometry.
// It returns how many members were dropped.
func (a *Atlas) setGroup(name string, members []string) int {
	kept := make([]string, 0, len(members))
	dropped := 0
	dup := make(map[string]bool, len(members))
	for _, m := range members {
		if _, ok := a.regions[m]; !ok {
			dropped++
			continue
		}
		if dup[m] {
			continue
		}
		dup[m] = true
		kept = append(kept, m)
	}
	if _, exists := a.groups[name]; !exists {
		a.groupOrder = append(a.groupOrder, name)
	}
	a.groups[name] = kept
	return dropped
}

// ensureWorld sets World to every loaded region in load order. A World list
// from the groupings file keeps its position but not its members.
func (a *Atlas) ensureWorld() {
	if _, ok := a.groups[WorldGroup]; !ok {
		a.groupOrder = append(a.groupOrder, WorldGroup)
	}
	a.groups[WorldGroup] = append([]string(nil), a.order...)
}

// Len returns the number of regions.
func (a *Atlas) Len() int { return len(a.order) }

// Regions returns all regions in rendering order. The returned records are
// owned by the atlas; callers mutate them only through the atlas methods.
func (a *Atlas) Regions() []*Region {
	out := make([]*Region, len(a.order))
	for i, name := range a.order {
		out[i] = a.regions[name]
	}
	return out
}

// Names returns the region names in rendering order.
func (a *Atlas) Names() []string {
	return append([]string(nil), a.order...)
}

// Region returns the region with exactly this name.
func (a *Atlas) Region(name string) (*Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// AreAdjacent reports whether a and b share a border. The graph is treated
// as undirected even when the edge was recorded on one side only.
func (a *Atlas) AreAdjacent(x, y string) bool {
	if x == y {
		return false
	}
	if set, ok := a.adjacency[x]; ok {
		if _, ok := set[y]; ok {
			return true
		}
	}
	if set, ok := a.adjacency[y]; ok {
		if _, ok := set[x]; ok {
			return true
		}
	}
	return false
}

// Neighbors returns every region adjacent to name in either direction, sorted.
func (a *Atlas) Neighbors(name string) []string {
	seen := make(map[string]struct{})
	for n := range a.adjacency[name] {
		seen[n] = struct{}{}
	}
	for other, set := range a.adjacency {
		if _, ok := set[name]; ok {
			seen[other] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// EdgeCount returns the number of distinct undirected edges.
func (a *Atlas) EdgeCount() int {
	type edge struct{ a, b string }
	seen := make(map[edge]struct{})
	for x, set := range a.adjacency {
		for y := range set {
			e := edge{x, y}
			if y < x {
				e = edge{y, x}
			}
			seen[e] = struct{}{}
		}
	}
	return len(seen)
}

// OneSidedEdges returns how many edges are recorded in only one direction.
func (a *Atlas) OneSidedEdges() int {
	n := 0
	for x, set := range a.adjacency {
		for y := range set {
			if back, ok := a.adjacency[y]; !ok || !hasKey(back, x) {
				n++
			}
		}
	}
	return n
}

func hasKey(set map[string]struct{}, k string) bool {
	_, ok := set[k]
	return ok
}

// Groups returns grouping names in load order. World is always present.
func (a *Atlas) Groups() []string {
	return append([]string(nil), a.groupOrder...)
}

// GroupMembers returns the ordered member list of a grouping.
func (a *Atlas) GroupMembers(group string) ([]string, bool) {
	m, ok := a.groups[group]
	if !ok {
		return nil, false
	}
	return append([]string(nil), m...), true
}

// Pairs returns the curated start/end pairs.
func (a *Atlas) Pairs() []Pair {
	return append([]Pair(nil), a.pairs...)
}

// SetHighlight marks a region as selected (or clears it).
func (a *Atlas) SetHighlight(name string, on bool) bool {
	r, ok := a.FindRegion(name)
	if !ok {
		return false
	}
	r.Selected = on
	return true
}

// SetEndpoint flags a region as the start or end of a path.
func (a *Atlas) SetEndpoint(name string, start bool) bool {
	r, ok := a.FindRegion(name)
	if !ok {
		return false
	}
	if start {
		r.IsStart = true
	} else {
		r.IsEnd = true
	}
	return true
}

// SetNamed marks a region as named in the "name all" mode. Named regions are
// highlighted as well.
func (a *Atlas) SetNamed(name string, on bool) bool {
	r, ok := a.FindRegion(name)
	if !ok {
		return false
	}
	r.Named = on
	r.Selected = on
	return true
}

// ResetHighlights clears every transient flag on every region.
func (a *Atlas) ResetHighlights() {
	for _, r := range a.regions {
		r.Selected = false
		r.IsStart = false
		r.IsEnd = false
		r.Named = false
	}
}

// RandomPair picks a start/end pair for the path mode. Curated pairs are
// preferred; otherwise a start with at least one neighbour is drawn (up to
// 100 attempts) and the end is biased toward the same group or a neighbour.
func (a *Atlas) RandomPair() (Pair, bool) {
	if len(a.order) < 2 {
		return Pair{}, false
	}
	if len(a.pairs) > 0 {
		p := a.pairs[a.rng.Intn(len(a.pairs))]
		_, okS := a.regions[p.Start]
		_, okE := a.regions[p.End]
		if okS && okE && p.Start != p.End {
			return p, true
		}
	}
	return a.generatePair()
}

const maxStartAttempts = 100

func (a *Atlas) generatePair() (Pair, bool) {
	start := ""
	for i := 0; i < maxStartAttempts && start == ""; i++ {
		cand := a.order[a.rng.Intn(len(a.order))]
		if len(a.Neighbors(cand)) > 0 {
			start = cand
		}
	}
	if start == "" {
		a.logger.Warn("pair_no_connected_start", "regions", len(a.order))
		return Pair{Start: a.order[0], End: a.order[1]}, true
	}

	startGroup := a.regions[start].Group
	var ends []string
	for _, name := range a.order {
		if name == start {
			continue
		}
		g := a.regions[name].Group
		if (g == startGroup && startGroup != unknownGroup) || a.AreAdjacent(start, name) {
			ends = append(ends, name)
		}
	}
	if len(ends) == 0 {
		for _, name := range a.order {
			if name != start {
				ends = append(ends, name)
			}
		}
	}
	return Pair{Start: start, End: ends[a.rng.Intn(len(ends))]}, true
}
