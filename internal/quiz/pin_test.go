package quiz

import (
	"errors"
	"math"
	"testing"
	"testing/fstest"
)

// --- Score curve ---

func TestScore_Decay(t *testing.T) {
	if got := Score(0); got != 1000 {
		t.Fatalf("Score(0) = %d, want 1000", got)
	}
	if got := Score(MaxDistance); got != 368 {
		t.Fatalf("Score(MaxDistance) = %d, want 368", got)
	}
	prev := Score(0)
	for d := 10.0; d <= 30000; d += 10 {
		s := Score(d)
		if s > prev {
			t.Fatalf("score increased from %d to %d at %.0f km", prev, s, d)
		}
		prev = s
	}
}

func TestScore_DegenerateInput(t *testing.T) {
	if Score(-5) != 1000 {
		t.Fatal("negative distances clamp to zero")
	}
	if Score(math.NaN()) != 0 {
		t.Fatal("NaN distance scores nothing")
	}
}

func TestMapDistanceKm_Scaled(t *testing.T) {
	if got := MapDistanceKm(0, 0, 30, 40); got != 125 {
		t.Fatalf("expected 50px * 2.5 = 125km, got %v", got)
	}
}

// --- Rounds ---

func pinHarness(rounds int) *Harness {
	return NewHarness(
		WithRounds(rounds),
		WithPlace("North", 100, 100),
		WithPlace("South", 500, 400),
	)
}

func TestPinGame_PerfectRound(t *testing.T) {
	h := pinHarness(2)
	if _, err := h.Do(StartPin{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !h.Session.PinMode() {
		t.Fatal("starting the pin game enables pin mode")
	}
	p, ok := h.Session.Pins().Current()
	if !ok {
		t.Fatal("no current place")
	}
	r, err := h.Do(PlacePin{X: p.X, Y: p.Y})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if r.Round.Score != MaxRoundScore || r.Round.DistanceKm != 0 {
		t.Fatalf("exact guess should score 1000 at 0km, got %+v", r.Round)
	}
	pins := h.Session.Pins().Pins()
	if len(pins) != 2 || pins[0].Kind != PinGuess || pins[1].Kind != PinTarget {
		t.Fatalf("expected guess and target pins, got %+v", pins)
	}
}

func TestPinGame_OnePinPerRound(t *testing.T) {
	h := pinHarness(2)
	h.Do(StartPin{})
	h.Do(PlacePin{X: 0, Y: 0})
	if _, err := h.Do(PlacePin{X: 10, Y: 10}); !errors.Is(err, ErrWrongState) {
		t.Fatalf("second pin in a round should be refused, got %v", err)
	}
	if got := len(h.Session.Pins().Results()); got != 1 {
		t.Fatalf("expected 1 result, got %d", got)
	}
}

func TestPinGame_DistanceScore(t *testing.T) {
	h := NewHarness(WithRounds(1), WithPlace("Only", 100, 100))
	h.Do(StartPin{})
	r, _ := h.Do(PlacePin{X: 100, Y: 1300})
	if r.Round.DistanceKm != 3000 || r.Round.Score != 368 {
		t.Fatalf("1200px away should be 3000km and 368 points, got %+v", r.Round)
	}
	if !r.Round.Final {
		t.Fatal("single round should be final")
	}
}

func TestPinGame_CompletesWhenPlacesRunOut(t *testing.T) {
	h := pinHarness(5)
	h.Do(StartPin{})
	res, err := h.PlayPins([2]float64{0, 0}, [2]float64{0, 0}, [2]float64{0, 0})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("two places allow two rounds, got %d", len(res))
	}
	if !res[1].Final {
		t.Fatal("last available place should be final")
	}
	g := h.Session.Pins()
	if g.State() != PinComplete {
		t.Fatalf("expected complete, got %s", g.State())
	}
	if res[0].Place.Name == res[1].Place.Name {
		t.Fatal("a place must not repeat within a game")
	}
	if g.Total() != res[0].Score+res[1].Score || res[1].Total != g.Total() {
		t.Fatalf("total mismatch: %d vs %+v", g.Total(), res)
	}
	if len(g.Pins()) != 0 {
		t.Fatal("pins are cleared when the game completes")
	}
}

func TestPinGame_NoPlaces(t *testing.T) {
	h := NewHarness()
	if _, err := h.Do(StartPin{}); !errors.Is(err, ErrNoPlaces) {
		t.Fatalf("expected ErrNoPlaces, got %v", err)
	}
}

func TestPinGame_GreatCircleDistance(t *testing.T) {
	h := NewHarness(WithMapSize(3600, 1800), WithRounds(1), WithPlace("Equator", 1800, 900))
	h.Do(StartPin{})
	// 10 px per degree: 90 px east is 9 degrees of longitude.
	r, _ := h.Do(PlacePin{X: 1890, Y: 900})
	want := 6371.0 * 9 * math.Pi / 180
	if math.Abs(r.Round.GreatCircleKm-want) > 0.5 {
		t.Fatalf("expected ~%.1f km, got %.1f", want, r.Round.GreatCircleKm)
	}
}

// --- Places ---

func TestProject_RoundTrip(t *testing.T) {
	x, y := Project(27.1751, 78.0421, 4000, 2000)
	lat, lon := Unproject(x, y, 4000, 2000)
	if math.Abs(lat-27.1751) > 1e-9 || math.Abs(lon-78.0421) > 1e-9 {
		t.Fatalf("round trip drifted: %v,%v", lat, lon)
	}
	if cx, cy := Project(0, 0, 4000, 2000); cx != 2000 || cy != 1000 {
		t.Fatalf("origin should map to the centre, got %v,%v", cx, cy)
	}
}

func TestLoadPlaces_MixedCoordinates(t *testing.T) {
	fsys := fstest.MapFS{"places.json": {Data: []byte(`{"places":[
		{"name":"Map","coordinates":{"x":10,"y":20}},
		{"name":"Geo","coordinates":{"latitude":0,"longitude":0}},
		{"name":"Broken","coordinates":{}},
		{"name":"","coordinates":{"x":1,"y":1}}
	]}`)}}
	places, ok := LoadPlaces(fsys, "places.json", 4000, 2000, quietLogger())
	if !ok || len(places) != 2 {
		t.Fatalf("expected 2 usable places, got %d ok=%v", len(places), ok)
	}
	if places[0].X != 10 || places[0].Y != 20 {
		t.Fatalf("map coordinates should be used as-is, got %+v", places[0])
	}
	if places[1].X != 2000 || places[1].Y != 1000 {
		t.Fatalf("lat/lon should be projected, got %+v", places[1])
	}
}

func TestLoadPlaces_Fallback(t *testing.T) {
	for name, fsys := range map[string]fstest.MapFS{
		"missing":   {},
		"malformed": {"places.json": {Data: []byte(`{"places":`)}},
		"empty":     {"places.json": {Data: []byte(`{"places":[]}`)}},
	} {
		places, ok := LoadPlaces(fsys, "places.json", 4000, 2000, quietLogger())
		if ok || len(places) != 1 || places[0].Name != "Taj Mahal" {
			t.Fatalf("%s: expected the fallback place, got %+v ok=%v", name, places, ok)
		}
	}
}
