package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Garsondee/GeoQuizz/internal/assets"
	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/mapview"
	"github.com/Garsondee/GeoQuizz/internal/quiz"
	"github.com/Garsondee/GeoQuizz/internal/scores"
)

type runStats struct {
	runIndex int
	seed     int64

	start, end string
	route      []string // planned shortest route, start and end included
	moves      int
	errors     int
	won        bool

	pinRounds []quiz.RoundResult
	pinTotal  int
	saved     bool
}

type regionCoverage struct {
	name   string
	pixels int
}

func main() {
	var runs int
	var seedBase int64
	var seedStep int64
	var dataDir string
	var dbPath string
	var mapW, mapH int
	var rounds int
	var jitter float64
	var showEvents bool

	flag.IntVar(&runs, "runs", 3, "number of replayed sessions")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&dataDir, "data", "", "dataset directory (default: embedded demo data)")
	flag.StringVar(&dbPath, "db", "", "sqlite leaderboard path (default: in memory)")
	flag.IntVar(&mapW, "map-w", 4000, "map width in pixels")
	flag.IntVar(&mapH, "map-h", 2000, "map height in pixels")
	flag.IntVar(&rounds, "rounds", quiz.DefaultRounds, "find-the-place rounds per run")
	flag.Float64Var(&jitter, "jitter", 300, "max pin offset from the target in map pixels")
	flag.BoolVar(&showEvents, "events", false, "print the event log of every run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if mapW <= 0 || mapH <= 0 {
		fmt.Println("error: -map-w and -map-h must be > 0")
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	data := assets.Open(dataDir)

	fmt.Printf("=== Headless GeoQuizz Report ===\n")
	fmt.Printf("data=%s runs=%d seed_base=%d seed_step=%d map=%dx%d rounds=%d\n\n",
		orDefault(dataDir, "embedded"), runs, seedBase, seedStep, mapW, mapH, rounds)

	a, rep, err := atlas.Load(data, atlas.DefaultSources(), atlas.WithLogger(logger))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	printDataset(os.Stdout, a, rep)

	raster := mapview.NewRaster(mapW, mapH, a.Regions(), logger)
	printCoverage(os.Stdout, raster, a)

	if bad := unreachablePairs(a); len(bad) > 0 {
		fmt.Printf("unreachable_pairs=%d\n", len(bad))
		for _, p := range bad {
			fmt.Printf("  %s -> %s\n", p.Start, p.End)
		}
		fmt.Println()
	}

	places, ok := quiz.LoadPlaces(data, assets.PlacesFile, float64(mapW), float64(mapH), logger)
	fmt.Printf("places=%d fallback=%t\n\n", len(places), !ok)

	var store scores.Store = scores.NewMemory()
	if dbPath != "" {
		db, err := scores.Open(dbPath, logger)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		store = db
	}
	defer store.Close()

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		// Each run reloads so region flags and fallbacks start fresh.
		ra, _, err := atlas.Load(data, atlas.DefaultSources(),
			atlas.WithLogger(logger),
			atlas.WithRand(rand.New(rand.NewSource(seed))), // #nosec G404 -- report only
		)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		rs, log := replay(i+1, seed, ra, places, store, rounds, jitter, float64(mapW), float64(mapH), logger)
		all = append(all, rs)
		printRun(rs)
		if showEvents {
			fmt.Print(log.Format())
			fmt.Println()
		}
	}
	printAggregate(all)

	top, err := store.Top(context.Background(), quiz.LeaderboardKey, scores.Capacity)
	if err != nil {
		fmt.Printf("leaderboard: error: %v\n", err)
		return
	}
	fmt.Printf("\n=== Leaderboard (%s) ===\n", quiz.LeaderboardKey)
	fmt.Print(formatLeaderboard(top))
}

// replay solves one path game along the shortest route and plays a full
// find-the-place game with jittered guesses.
func replay(runIndex int, seed int64, a *atlas.Atlas, places []quiz.Place, store scores.Store,
	rounds int, jitter, mapW, mapH float64, logger *slog.Logger) (runStats, *quiz.EventLog) {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- report only
	s := quiz.NewSession(a, places, store, quiz.SessionConfig{
		Rounds: rounds,
		Rand:   rng,
		Logger: logger,
		MapW:   mapW,
		MapH:   mapH,
	})
	rs := runStats{runIndex: runIndex, seed: seed}

	if res := s.Dispatch(quiz.StartPath{}); res.Err == nil {
		rs.start, rs.end = s.Path().Endpoints()
		rs.route = shortestPath(a, rs.start, rs.end)
		for _, name := range stepsOf(rs.route) {
			if r := s.Dispatch(quiz.Submit{Text: name}); r.Err != nil {
				break
			}
		}
		rs.moves = s.Path().Moves()
		rs.errors = s.Path().Errors()
		rs.won = s.Path().State() == quiz.PathWon
	}

	if res := s.Dispatch(quiz.StartPin{}); res.Err == nil {
		for s.Pins().State() == quiz.PinRoundActive {
			p, _ := s.Pins().Current()
			gx := p.X + (rng.Float64()*2-1)*jitter
			gy := p.Y + (rng.Float64()*2-1)*jitter
			r := s.Dispatch(quiz.PlacePin{X: gx, Y: gy})
			if r.Err != nil {
				break
			}
			rs.pinRounds = append(rs.pinRounds, r.Round)
			if r := s.Dispatch(quiz.NextRound{}); r.Err != nil {
				break
			}
		}
		rs.pinTotal = s.Pins().Total()
		rs.saved = s.Dispatch(quiz.SaveScore{Player: fmt.Sprintf("run-%d", runIndex)}).Saved
	}
	return rs, s.Log()
}

// shortestPath is a breadth-first search over the undirected adjacency
// graph. It returns nil when end is unreachable.
func shortestPath(a *atlas.Atlas, start, end string) []string {
	if start == end {
		return []string{start}
	}
	prev := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range a.Neighbors(cur) {
			if _, seen := prev[n]; seen {
				continue
			}
			prev[n] = cur
			if n == end {
				var path []string
				for at := end; at != ""; at = prev[at] {
					path = append(path, at)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, n)
		}
	}
	return nil
}

// stepsOf drops the start region, which the player never types.
func stepsOf(route []string) []string {
	if len(route) < 2 {
		return nil
	}
	return route[1:]
}

func unreachablePairs(a *atlas.Atlas) []atlas.Pair {
	var out []atlas.Pair
	for _, p := range a.Pairs() {
		if shortestPath(a, p.Start, p.End) == nil {
			out = append(out, p)
		}
	}
	return out
}

// smallestCoverage lists regions by hit-test pixel count, smallest first.
// Regions with no pixels at all come first.
func smallestCoverage(cov map[string]int, names []string, n int) []regionCoverage {
	out := make([]regionCoverage, 0, len(names))
	for _, name := range names {
		out = append(out, regionCoverage{name: name, pixels: cov[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].pixels < out[j].pixels })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func printDataset(w io.Writer, a *atlas.Atlas, rep atlas.Report) {
	fmt.Fprintf(w, "--- Dataset ---\n")
	fmt.Fprintf(w, "regions=%d paths=%d edges=%d one_sided=%d pairs=%d\n",
		rep.Regions, rep.Paths, a.EdgeCount(), a.OneSidedEdges(), len(a.Pairs()))
	fmt.Fprintf(w, "fallbacks: adjacency=%t pairs_missing=%t groupings=%t dropped_members=%d\n",
		rep.AdjacencyFallback, rep.PairsMissing, rep.GroupingsFallback, rep.DroppedMembers)
	for _, g := range a.Groups() {
		m, _ := a.GroupMembers(g)
		fmt.Fprintf(w, "  group %-16s %3d\n", g, len(m))
	}
	fmt.Fprintln(w)
}

func printCoverage(w io.Writer, r *mapview.Raster, a *atlas.Atlas) {
	cov := r.Hit().Coverage()
	fmt.Fprintf(w, "--- Hit index ---\n")
	fmt.Fprintf(w, "drawn=%d skipped=%d\n", r.Len(), len(r.Skipped()))
	if sk := r.Skipped(); len(sk) > 0 {
		fmt.Fprintf(w, "skipped_regions: %s\n", strings.Join(sk, ", "))
	}
	fmt.Fprintf(w, "smallest:\n")
	for _, c := range smallestCoverage(cov, a.Names(), 5) {
		fmt.Fprintf(w, "  %-24s %s px\n", c.name, humanize.Comma(int64(c.pixels)))
	}
	fmt.Fprintln(w)
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	if rs.start == "" {
		fmt.Printf("path: no pair available\n")
	} else {
		fmt.Printf("path: %s -> %s route_len=%d moves=%d errors=%d won=%t\n",
			rs.start, rs.end, len(rs.route), rs.moves, rs.errors, rs.won)
		if len(rs.route) > 0 {
			fmt.Printf("route: %s\n", strings.Join(rs.route, " > "))
		}
	}
	for _, r := range rs.pinRounds {
		fmt.Printf("pin round %d: %-22s dist=%6.0fkm globe=%6.0fkm score=%4d\n",
			r.Round, r.Place.Name, r.DistanceKm, r.GreatCircleKm, r.Score)
	}
	fmt.Printf("pin: rounds=%d total=%s saved=%t\n\n", len(rs.pinRounds), humanize.Comma(int64(rs.pinTotal)), rs.saved)
}

func printAggregate(all []runStats) {
	won, moves, pinTotal, rounds := 0, 0, 0, 0
	best := 0
	for _, rs := range all {
		if rs.won {
			won++
		}
		moves += rs.moves
		pinTotal += rs.pinTotal
		rounds += len(rs.pinRounds)
		best = max(best, rs.pinTotal)
	}
	fmt.Printf("=== Aggregate ===\n")
	fmt.Printf("paths_won=%d/%d avg_moves=%.1f\n", won, len(all), float64(moves)/float64(len(all)))
	avgRound := 0.0
	if rounds > 0 {
		avgRound = float64(pinTotal) / float64(rounds)
	}
	fmt.Printf("pin_avg_total=%.1f pin_avg_round=%.1f pin_best=%d\n",
		float64(pinTotal)/float64(len(all)), avgRound, best)
}

func formatLeaderboard(entries []scores.Entry) string {
	if len(entries) == 0 {
		return "(empty)\n"
	}
	var sb strings.Builder
	now := time.Now()
	for i, e := range entries {
		sb.WriteString(e.Describe(i+1, now))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
