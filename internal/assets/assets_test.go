package assets

import (
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/mapview"
	"github.com/Garsondee/GeoQuizz/internal/quiz"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func loadDemo(t *testing.T) *atlas.Atlas {
	t.Helper()
	a, rep, err := atlas.Load(Embedded(), atlas.DefaultSources(), atlas.WithLogger(quiet()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rep.AdjacencyFallback || rep.PairsMissing || rep.GroupingsFallback || rep.DroppedMembers != 0 {
		t.Fatalf("demo data should load without fallbacks: %+v", rep)
	}
	return a
}

// --- Dataset consistency ---

func TestEmbedded_LoadsCleanly(t *testing.T) {
	a := loadDemo(t)
	if a.Len() != 35 {
		t.Fatalf("expected 35 regions, got %d", a.Len())
	}
	if _, ok := a.Region("Placeholder"); ok {
		t.Fatal("entries without path data must be ignored")
	}
	us, _ := a.Region("United States")
	if len(us.Paths) != 2 {
		t.Fatalf("United States should merge two paths, got %d", len(us.Paths))
	}
	groups := a.Groups()
	if groups[len(groups)-1] != atlas.WorldGroup || groups[0] != "Europe" {
		t.Fatalf("unexpected group order %v", groups)
	}
}

func TestEmbedded_PairsAreConnected(t *testing.T) {
	a := loadDemo(t)
	for _, p := range a.Pairs() {
		if !reachable(a, p.Start, p.End) {
			t.Fatalf("pair %s -> %s has no path", p.Start, p.End)
		}
	}
}

func reachable(a *atlas.Atlas, from, to string) bool {
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return true
		}
		for _, n := range a.Neighbors(cur) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

func TestEmbedded_EveryRegionIsHittable(t *testing.T) {
	a := loadDemo(t)
	r := mapview.NewRaster(4000, 2000, a.Regions(), quiet())
	if len(r.Skipped()) != 0 {
		t.Fatalf("regions skipped: %v", r.Skipped())
	}
	cov := r.Hit().Coverage()
	for _, name := range a.Names() {
		if cov[name] == 0 {
			t.Fatalf("%s owns no pixels", name)
		}
	}
	if got, ok := r.Hit().RegionAt(2020, 480); !ok || got != "France" {
		t.Fatalf("expected France near Paris, got %q", got)
	}
}

func TestEmbedded_Places(t *testing.T) {
	places, ok := quiz.LoadPlaces(Embedded(), PlacesFile, 4000, 2000, quiet())
	if !ok || len(places) != 13 {
		t.Fatalf("expected 13 places, got %d ok=%v", len(places), ok)
	}
	var withImage int
	for _, p := range places {
		if p.Image == "" {
			continue
		}
		withImage++
		f, err := Embedded().Open(p.Image)
		if err != nil {
			t.Fatalf("%s: image missing: %v", p.Name, err)
		}
		if _, err := png.Decode(f); err != nil {
			t.Fatalf("%s: image does not decode: %v", p.Name, err)
		}
		f.Close()
	}
	if withImage == 0 {
		t.Fatal("at least one place should carry an image")
	}
}

func TestOpen_Dir(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := atlas.Load(Open(dir), atlas.DefaultSources(), atlas.WithLogger(quiet())); err == nil {
		t.Fatal("an empty data dir has no geometry")
	}
}
