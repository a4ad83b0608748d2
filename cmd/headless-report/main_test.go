package main

import (
	"bytes"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/Garsondee/GeoQuizz/internal/assets"
	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/quiz"
	"github.com/Garsondee/GeoQuizz/internal/scores"
)

func chain() *atlas.Atlas {
	return atlas.New(
		[]*atlas.Region{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "Island"}},
		map[string][]string{"A": {"B"}, "C": {"B"}, "D": {"A"}},
		nil, nil,
		[]atlas.Pair{{Start: "D", End: "C"}, {Start: "A", End: "Island"}},
	)
}

func TestShortestPath_FollowsOneSidedEdges(t *testing.T) {
	got := shortestPath(chain(), "D", "C")
	if strings.Join(got, ",") != "D,A,B,C" {
		t.Fatalf("expected D,A,B,C, got %v", got)
	}
	if p := shortestPath(chain(), "A", "Island"); p != nil {
		t.Fatalf("island should be unreachable, got %v", p)
	}
	if p := shortestPath(chain(), "A", "A"); len(p) != 1 {
		t.Fatalf("same start and end is a one-region route, got %v", p)
	}
}

func TestStepsOf_DropsStart(t *testing.T) {
	if s := stepsOf([]string{"A", "B", "C"}); strings.Join(s, ",") != "B,C" {
		t.Fatalf("unexpected steps %v", s)
	}
	if s := stepsOf([]string{"A"}); s != nil {
		t.Fatalf("single region route has no steps, got %v", s)
	}
}

func TestUnreachablePairs(t *testing.T) {
	bad := unreachablePairs(chain())
	if len(bad) != 1 || bad[0].End != "Island" {
		t.Fatalf("expected only the island pair, got %v", bad)
	}
}

func TestSmallestCoverage_Ordering(t *testing.T) {
	cov := map[string]int{"Big": 900, "Small": 4, "Mid": 50}
	got := smallestCoverage(cov, []string{"Big", "Small", "Mid", "Missing"}, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].name != "Missing" || got[0].pixels != 0 || got[1].name != "Small" || got[2].name != "Mid" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestReplay_EmbeddedDataset(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	data := assets.Embedded()
	a, _, err := atlas.Load(data, atlas.DefaultSources(),
		atlas.WithLogger(logger), atlas.WithRand(rand.New(rand.NewSource(7))))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	places, _ := quiz.LoadPlaces(data, assets.PlacesFile, 4000, 2000, logger)
	store := scores.NewMemory()

	rs, log := replay(1, 7, a, places, store, 3, 0, 4000, 2000, logger)
	if !rs.won || rs.errors != 0 {
		t.Fatalf("shortest route replay should win cleanly, got %+v", rs)
	}
	if rs.moves != len(rs.route)-1 {
		t.Fatalf("moves %d should match route %v", rs.moves, rs.route)
	}
	if len(rs.pinRounds) != 3 || rs.pinTotal != 3*quiz.MaxRoundScore {
		t.Fatalf("zero jitter should score perfectly, got %d rounds total %d", len(rs.pinRounds), rs.pinTotal)
	}
	if !rs.saved {
		t.Fatal("score should be saved")
	}
	if !log.HasEntry(quiz.CatScore, "saved", "run-1") {
		t.Fatalf("save event missing:\n%s", log.Format())
	}
}

func TestFormatLeaderboard(t *testing.T) {
	if formatLeaderboard(nil) != "(empty)\n" {
		t.Fatal("empty board should say so")
	}
	m := scores.NewMemory()
	entries, _ := m.Submit(t.Context(), quiz.LeaderboardKey, "Ada", 2500)
	out := formatLeaderboard(entries)
	if !strings.Contains(out, "Ada") || !strings.Contains(out, "2,500") {
		t.Fatalf("unexpected leaderboard %q", out)
	}
}

func TestPrintDataset_ListsGroups(t *testing.T) {
	var buf bytes.Buffer
	a := chain()
	printDataset(&buf, a, atlas.Report{Regions: a.Len()})
	if !strings.Contains(buf.String(), "group World") || !strings.Contains(buf.String(), "regions=5") {
		t.Fatalf("unexpected dataset report:\n%s", buf.String())
	}
}
