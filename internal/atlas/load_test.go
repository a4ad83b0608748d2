package atlas

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"testing/fstest"
)

const testSVG = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50">
  <g>
    <path id="fr" name="France" class="Europe" fill="#336699" d="M10 10 L20 10 L20 20 Z"/>
    <path id="de" name="Germany" class="Europe" d="M20 10 L30 10 L30 20 Z"/>
    <path id="jp1" name="Japan" class="Eastern Asia" fill="#abc" d="M80 10 L85 10 L85 15 Z"/>
    <path id="jp2" name="Japan" class="Eastern Asia" d="M86 16 L90 16 L90 20 Z"/>
    <path id="empty" name="Nowhere" d=""/>
    <path id="xx" d="M0 0 L1 0 L1 1 Z"/>
  </g>
</svg>`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullFS() fstest.MapFS {
	return fstest.MapFS{
		"world.svg":              {Data: []byte(testSVG)},
		"country_adjacency.json": {Data: []byte(`{"adjacency":{"France":["Germany"]}}`)},
		"country_pairs.json":     {Data: []byte(`{"validPairs":[{"start":"France","end":"Germany"}]}`)},
		"countries_by_region.json": {Data: []byte(`{"regions":{
			"Western Europe":["Germany","France","Atlantis"],
			"Asia":["Japan"]}}`)},
	}
}

// --- Geometry ---

func TestLoad_GeometryMerge(t *testing.T) {
	a, rep, err := Load(fullFS(), DefaultSources(), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rep.Regions != 4 {
		t.Fatalf("expected 4 regions (France, Germany, Japan, xx), got %d", rep.Regions)
	}
	if rep.Paths != 5 {
		t.Fatalf("expected 5 paths, got %d", rep.Paths)
	}
	jp, ok := a.Region("Japan")
	if !ok || len(jp.Paths) != 2 {
		t.Fatalf("Japan should merge two paths, got %+v", jp)
	}
	if !jp.HasFill || jp.Fill.R != 0xaa || jp.Fill.G != 0xbb || jp.Fill.B != 0xcc {
		t.Fatalf("short hex fill misparsed: %+v", jp.Fill)
	}
	de, _ := a.Region("Germany")
	if de.HasFill || de.Fill != defaultFill {
		t.Fatalf("missing fill should default, got %+v", de.Fill)
	}
	if _, ok := a.Region("xx"); !ok {
		t.Fatal("entry without a name should fall back to its id")
	}
	if _, ok := a.Region("Nowhere"); ok {
		t.Fatal("entry with empty path data should be ignored")
	}
}

func TestLoad_NoGeometry(t *testing.T) {
	_, _, err := Load(fstest.MapFS{}, DefaultSources(), WithLogger(quietLogger()))
	if !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("expected ErrNoGeometry, got %v", err)
	}
	fsys := fstest.MapFS{"world.svg": {Data: []byte(`<svg></svg>`)}}
	if _, _, err := Load(fsys, DefaultSources(), WithLogger(quietLogger())); !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("empty svg should be ErrNoGeometry, got %v", err)
	}
}

// --- Groupings ---

func TestLoad_GroupingsOrderAndFilter(t *testing.T) {
	a, rep, err := Load(fullFS(), DefaultSources(), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	groups := a.Groups()
	want := []string{"Western Europe", "Asia", WorldGroup}
	if len(groups) != len(want) {
		t.Fatalf("expected %v, got %v", want, groups)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Fatalf("group order: expected %v, got %v", want, groups)
		}
	}
	if rep.DroppedMembers != 1 {
		t.Fatalf("Atlantis should be dropped, got %d", rep.DroppedMembers)
	}
	m, _ := a.GroupMembers("Western Europe")
	if len(m) != 2 || m[0] != "Germany" {
		t.Fatalf("member order should follow the document, got %v", m)
	}
	if rep.AdjacencyFallback || rep.GroupingsFallback || rep.PairsMissing {
		t.Fatalf("no stage should fall back: %+v", rep)
	}
}

// --- Fallbacks ---

func TestLoad_FallbacksStayPlayable(t *testing.T) {
	fsys := fstest.MapFS{
		"world.svg":                {Data: []byte(testSVG)},
		"country_adjacency.json":   {Data: []byte(`{not json`)},
		"countries_by_region.json": {Data: []byte(`{"regions":{}}`)},
	}
	a, rep, err := Load(fsys, DefaultSources(), WithLogger(quietLogger()), WithRand(rand.New(rand.NewSource(7))))
	if err != nil {
		t.Fatalf("geometry loaded so the atlas must be usable: %v", err)
	}
	if !rep.AdjacencyFallback || !rep.GroupingsFallback || !rep.PairsMissing {
		t.Fatalf("expected every secondary stage to fall back: %+v", rep)
	}
	eu, ok := a.GroupMembers("Europe")
	if !ok || len(eu) != 2 {
		t.Fatalf("continent fallback should build Europe from class tags, got %v", eu)
	}
	asia, ok := a.GroupMembers("Asia")
	if !ok || len(asia) != 1 || asia[0] != "Japan" {
		t.Fatalf("Eastern Asia should bucket into Asia, got %v", asia)
	}
	if _, ok := a.GroupMembers(WorldGroup); !ok {
		t.Fatal("World must be present")
	}
	// Generated edges only ever join regions of the same group.
	for _, x := range a.Names() {
		for _, y := range a.Neighbors(x) {
			rx, _ := a.Region(x)
			ry, _ := a.Region(y)
			if rx.Group != ry.Group {
				t.Fatalf("fallback edge %s-%s crosses groups", x, y)
			}
		}
	}
}

func TestContinentOf(t *testing.T) {
	cases := map[string]string{
		"Northern Europe": "Europe",
		"South America":   "America",
		"Caribbean":       "America",
		"Middle East":     "Asia",
		"Eastern Africa":  "Africa",
		"Oceania":         "Other",
	}
	for in, want := range cases {
		if got := continentOf(in); got != want {
			t.Fatalf("continentOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseColor(t *testing.T) {
	if _, ok := ParseColor("red"); ok {
		t.Fatal("named colours are not supported")
	}
	c, ok := ParseColor("#55d6c2")
	if !ok || c.R != 0x55 || c.G != 0xd6 || c.B != 0xc2 || c.A != 0xff {
		t.Fatalf("got %+v ok=%v", c, ok)
	}
}
