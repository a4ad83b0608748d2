package atlas

import (
	"math/rand"
	"testing"
)

func rect(name, group string) *Region {
	return &Region{Name: name, Group: group, Paths: []string{"M0 0 L10 0 L10 10 Z"}}
}

func threeCountries() *Atlas {
	return New(
		[]*Region{rect("Alpha", "Test"), rect("Beta", "Test"), rect("Gamma", "Test")},
		map[string][]string{"Alpha": {"Beta"}, "Gamma": {"Beta"}},
		map[string][]string{"TestRegion": {"Alpha", "Beta", "Missing"}},
		[]string{"TestRegion"},
		nil,
		WithRand(rand.New(rand.NewSource(1))),
	)
}

// --- Adjacency ---

func TestAtlas_AdjacencySymmetric(t *testing.T) {
	a := threeCountries()
	names := a.Names()
	for _, x := range names {
		for _, y := range names {
			if a.AreAdjacent(x, y) != a.AreAdjacent(y, x) {
				t.Fatalf("AreAdjacent(%s,%s)=%v but reverse=%v", x, y, a.AreAdjacent(x, y), a.AreAdjacent(y, x))
			}
		}
	}
	if !a.AreAdjacent("Beta", "Alpha") {
		t.Fatal("edge recorded Alpha->Beta should be visible from Beta")
	}
	if a.AreAdjacent("Alpha", "Gamma") {
		t.Fatal("Alpha and Gamma share no edge")
	}
	if a.AreAdjacent("Alpha", "Alpha") {
		t.Fatal("a region is not adjacent to itself")
	}
}

func TestAtlas_NeighborsBothDirections(t *testing.T) {
	a := threeCountries()
	got := a.Neighbors("Beta")
	if len(got) != 2 || got[0] != "Alpha" || got[1] != "Gamma" {
		t.Fatalf("expected [Alpha Gamma], got %v", got)
	}
	if a.EdgeCount() != 2 {
		t.Fatalf("expected 2 edges, got %d", a.EdgeCount())
	}
	if a.OneSidedEdges() != 2 {
		t.Fatalf("expected 2 one-sided edges, got %d", a.OneSidedEdges())
	}
}

// --- Groupings ---

func TestAtlas_GroupMembersFiltered(t *testing.T) {
	a := threeCountries()
	m, ok := a.GroupMembers("TestRegion")
	if !ok {
		t.Fatal("TestRegion missing")
	}
	if len(m) != 2 {
		t.Fatalf("missing member should be dropped; got %v", m)
	}
	groups := a.Groups()
	if groups[len(groups)-1] != WorldGroup {
		t.Fatalf("World should be appended last, got %v", groups)
	}
	world, _ := a.GroupMembers(WorldGroup)
	if len(world) != 3 {
		t.Fatalf("World should hold every region, got %v", world)
	}
}

func TestAtlas_WorldFromFileIsEveryRegion(t *testing.T) {
	a := New(
		[]*Region{rect("A", "x"), rect("B", "x"), rect("C", "y")},
		nil,
		map[string][]string{WorldGroup: {"A", "B"}, "Europe": {"C"}},
		[]string{WorldGroup, "Europe"},
		nil,
	)
	world, _ := a.GroupMembers(WorldGroup)
	if len(world) != 3 || world[0] != "A" || world[1] != "B" || world[2] != "C" {
		t.Fatalf("World should be every region in load order, got %v", world)
	}
	if groups := a.Groups(); len(groups) != 2 || groups[0] != WorldGroup {
		t.Fatalf("World should keep its document position, got %v", groups)
	}
}

func TestAtlas_InGroupWorldUnion(t *testing.T) {
	a := threeCountries()
	if got, ok := a.InGroup(WorldGroup, "  gamma "); !ok || got != "Gamma" {
		t.Fatalf("World should contain Gamma, got %q ok=%v", got, ok)
	}
	if _, ok := a.InGroup("TestRegion", "Gamma"); ok {
		t.Fatal("Gamma is not a TestRegion member")
	}
	if _, ok := a.InGroup("Nope", "Alpha"); ok {
		t.Fatal("unknown group should match nothing")
	}
}

// --- Name resolution ---

func TestAtlas_FindRegionCaseAndWhitespace(t *testing.T) {
	a := threeCountries()
	r, ok := a.FindRegion("   bEtA  ")
	if !ok || r.Name != "Beta" {
		t.Fatalf("expected Beta, got %v ok=%v", r, ok)
	}
	if _, ok := a.FindRegion(""); ok {
		t.Fatal("empty input should not match")
	}
	if _, ok := a.FindRegion("Bet"); ok {
		t.Fatal("partial input should not match")
	}
}

func TestAtlas_FindRegionAlias(t *testing.T) {
	a := New([]*Region{rect("United States", "North America"), rect("Canada", "North America")}, nil, nil, nil, nil)
	r, ok := a.FindRegion("USA")
	if !ok || r.Name != "United States" {
		t.Fatalf("alias USA should resolve, got %v ok=%v", r, ok)
	}
	if _, ok := a.FindRegion("uk"); ok {
		t.Fatal("alias to a region not in the atlas must resolve to not found")
	}
}

// --- State mutators ---

func TestAtlas_ResetHighlights(t *testing.T) {
	a := threeCountries()
	a.SetEndpoint("alpha", true)
	a.SetEndpoint("Gamma", false)
	a.SetHighlight("Beta", true)
	a.SetNamed("Beta", true)
	if r, _ := a.Region("Alpha"); !r.IsStart {
		t.Fatal("Alpha should be the start")
	}
	if a.SetHighlight("Nowhere", true) {
		t.Fatal("unknown region should report false")
	}
	a.ResetHighlights()
	for _, r := range a.Regions() {
		if r.Selected || r.IsStart || r.IsEnd || r.Named {
			t.Fatalf("region %s still flagged after reset: %+v", r.Name, r)
		}
	}
}

func TestAtlas_MergeSameName(t *testing.T) {
	a := New([]*Region{rect("Islands", "Asia"), rect("Islands", "Asia"), rect("Main", "Asia")}, nil, nil, nil, nil)
	if a.Len() != 2 {
		t.Fatalf("expected 2 regions after merge, got %d", a.Len())
	}
	r, _ := a.Region("Islands")
	if len(r.Paths) != 2 {
		t.Fatalf("merged region should keep both paths, got %d", len(r.Paths))
	}
}

// --- Random pairs ---

func TestAtlas_RandomPairCurated(t *testing.T) {
	a := New([]*Region{rect("A", "X"), rect("B", "X")}, nil, nil, nil,
		[]Pair{{Start: "A", End: "B"}}, WithRand(rand.New(rand.NewSource(3))))
	p, ok := a.RandomPair()
	if !ok || p.Start != "A" || p.End != "B" {
		t.Fatalf("expected curated pair, got %+v ok=%v", p, ok)
	}
}

func TestAtlas_RandomPairGenerated(t *testing.T) {
	a := threeCountries()
	for i := 0; i < 50; i++ {
		p, ok := a.RandomPair()
		if !ok {
			t.Fatal("pair expected")
		}
		if p.Start == p.End {
			t.Fatalf("start and end must differ: %+v", p)
		}
		if len(a.Neighbors(p.Start)) == 0 {
			t.Fatalf("start %s has no neighbours", p.Start)
		}
	}
}

func TestAtlas_RandomPairTooFew(t *testing.T) {
	a := New([]*Region{rect("Solo", "X")}, nil, nil, nil, nil)
	if _, ok := a.RandomPair(); ok {
		t.Fatal("one region cannot form a pair")
	}
}
