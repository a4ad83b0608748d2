package game

import (
	"image"
	"io/fs"
	"log/slog"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/GeoQuizz/internal/assets"
	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/config"
	"github.com/Garsondee/GeoQuizz/internal/mapview"
	"github.com/Garsondee/GeoQuizz/internal/quiz"
	"github.com/Garsondee/GeoQuizz/internal/scores"
	"github.com/Garsondee/GeoQuizz/internal/timer"
)

// screen is the top-level UI state.
type screen uint8

const (
	screenLoading screen = iota
	screenLoadFailed
	screenMenu
	screenGroupSelect
	screenPlaying
	screenScores
)

func (s screen) String() string {
	switch s {
	case screenLoading:
		return "loading"
	case screenLoadFailed:
		return "load_failed"
	case screenMenu:
		return "menu"
	case screenGroupSelect:
		return "group_select"
	case screenPlaying:
		return "playing"
	case screenScores:
		return "scores"
	}
	return "unknown"
}

// Deps are the collaborators handed to the game by main.
type Deps struct {
	Data   fs.FS // dataset; nil means the embedded demo data
	Store  scores.Store
	Logger *slog.Logger
}

// loadResult is produced by the background loader.
type loadResult struct {
	atlas  *atlas.Atlas
	report atlas.Report
	raster *mapview.Raster
	canvas *mapCanvas
	err    error
}

type Game struct {
	cfg    config.Config
	data   fs.FS
	store  scores.Store
	logger *slog.Logger
	rng    *rand.Rand

	screen  screen
	width   int // canvas pixels
	height  int
	dpr     float64
	loadErr error

	loadCh   chan loadResult
	placesCh chan []quiz.Place
	places   []quiz.Place

	atlas   *atlas.Atlas
	raster  *mapview.Raster
	session *quiz.Session
	palette mapview.Palette

	canvas *mapCanvas
	mapImg *ebiten.Image
	fitted bool

	vp      mapview.Viewport
	gesture mapview.Gesture

	hover     string
	hoverImg  *ebiten.Image
	hoverAt   image.Point
	cursorX   float64 // screen pixels
	cursorY   float64
	inspector Inspector

	input     textBox
	nameEntry textBox

	feedback *FeedbackLog
	clock    *timer.Timer
	clockStr string

	groupCursor int
	board       []scores.Entry
	boardErr    error
	lastScore   int
	hasLast     bool

	lastPin  [2]float64
	hasPin   bool
	location locationCache

	ui    *fonts
	frame int
}

// New creates the game and starts loading the map in the background. The
// game shows a loading screen and ignores input until the geometry arrives.
func New(cfg config.Config, deps Deps) *Game {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Data == nil {
		deps.Data = assets.Embedded()
	}
	if deps.Store == nil {
		deps.Store = scores.NewMemory()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:       cfg,
		data:      deps.Data,
		store:     deps.Store,
		logger:    deps.Logger,
		rng:       rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
		screen:    screenLoading,
		width:     cfg.WindowWidth,
		height:    cfg.WindowHeight,
		dpr:       1,
		loadCh:    make(chan loadResult, 1),
		placesCh:  make(chan []quiz.Place, 1),
		palette:   mapview.DefaultPalette(),
		vp:        mapview.NewViewport(),
		feedback:  NewFeedbackLog(),
		input:     textBox{limit: inputLimit},
		nameEntry: textBox{limit: nameLimit},
		location:  newLocationCache(deps.Data, deps.Logger),
	}
	if cfg.HighContrast {
		g.palette = mapview.HighContrastPalette()
	}

	ui, err := loadFonts()
	if err != nil {
		g.logger.Warn("fonts_unavailable", "err", err)
	}
	g.ui = ui

	go func() {
		g.loadCh <- loadMap(g.data, cfg.MapWidth, cfg.MapHeight, g.palette, seed, g.logger)
	}()
	go func() {
		places, _ := quiz.LoadPlaces(g.data, assets.PlacesFile, float64(cfg.MapWidth), float64(cfg.MapHeight), g.logger)
		g.placesCh <- places
	}()
	return g
}

// loadMap reads the dataset and rasterises it. It runs off the game loop and
// touches no ebiten state.
func loadMap(data fs.FS, w, h int, pal mapview.Palette, seed int64, logger *slog.Logger) loadResult {
	start := time.Now()
	a, rep, err := atlas.Load(data, atlas.DefaultSources(),
		atlas.WithLogger(logger),
		atlas.WithRand(rand.New(rand.NewSource(seed+1))), // #nosec G404 -- game only
	)
	if err != nil {
		return loadResult{err: err}
	}
	r := mapview.NewRaster(w, h, a.Regions(), logger)
	c := newMapCanvas(r, a.Regions(), pal.FillFunc(mapview.StylePlain), pal.Border)
	logger.Info("map_ready",
		"regions", rep.Regions,
		"drawn", r.Len(),
		"skipped", len(r.Skipped()),
		"took_ms", time.Since(start).Milliseconds(),
	)
	return loadResult{atlas: a, report: rep, raster: r, canvas: c}
}

// pollLoad picks up background results without blocking the frame.
func (g *Game) pollLoad() {
	select {
	case res := <-g.loadCh:
		g.finishLoad(res)
	default:
	}
	select {
	case places := <-g.placesCh:
		g.places = places
		if g.session != nil {
			g.session.SetPlaces(places)
		}
	default:
	}
}

func (g *Game) finishLoad(res loadResult) {
	if res.err != nil {
		g.loadErr = res.err
		g.screen = screenLoadFailed
		g.logger.Error("map_load_failed", "err", res.err)
		return
	}
	g.atlas = res.atlas
	g.raster = res.raster
	g.canvas = res.canvas
	w, h := g.raster.Size()
	g.mapImg = ebiten.NewImage(w, h)
	g.mapImg.WritePixels(g.canvas.pix.Pix)

	g.session = quiz.NewSession(g.atlas, g.places, g.store, quiz.SessionConfig{
		Rounds: g.cfg.Rounds,
		Rand:   g.rng,
		Logger: g.logger,
		MapW:   float64(w),
		MapH:   float64(h),
	})
	if res.report.AdjacencyFallback {
		g.feedback.Add(feedbackBad, "Adjacency data missing: neighbours are guessed")
	}
	if res.report.GroupingsFallback {
		g.feedback.Add(feedbackBad, "Region lists missing: using continents")
	}
	g.fitted = false
	g.screen = screenMenu
}

func (g *Game) Update() error {
	g.frame++
	g.pollLoad()
	g.fitView()

	switch g.screen {
	case screenLoading, screenLoadFailed:
		// Input is ignored until the map is usable.
	case screenMenu:
		g.updateMenu()
	case screenGroupSelect:
		g.updateGroupSelect()
	case screenScores:
		g.updateScores()
	case screenPlaying:
		g.updatePlaying()
	}
	return nil
}

// fitView sizes the map to the window once, and again after a resize.
func (g *Game) fitView() {
	if g.fitted || g.raster == nil {
		return
	}
	w, h := g.raster.Size()
	g.vp.DPR = g.dpr
	g.vp.Fit(float64(g.width)/g.dpr, float64(g.height)/g.dpr, float64(w), float64(h))
	g.fitted = true
}

// Layout reports the canvas size in device pixels so the map stays sharp on
// high-density displays.
func (g *Game) Layout(outsideW, outsideH int) (int, int) {
	s := ebiten.Monitor().DeviceScaleFactor()
	if s <= 0 {
		s = 1
	}
	w, h := int(float64(outsideW)*s), int(float64(outsideH)*s)
	if w != g.width || h != g.height || s != g.dpr {
		g.width, g.height, g.dpr = w, h, s
		g.fitted = false
	}
	return w, h
}

// dispatch sends a command to the session and refreshes the map if region
// state may have changed.
func (g *Game) dispatch(cmd quiz.Command) quiz.Result {
	res := g.session.Dispatch(cmd)
	g.gesture.SetPinMode(g.session.PinMode())
	g.refreshMap()
	return res
}

// style is the fill style of the current mode.
func (g *Game) style() mapview.Style {
	switch g.session.Mode() {
	case quiz.ModePath:
		return mapview.StylePath
	case quiz.ModeNameAll:
		return mapview.StyleNameAll
	}
	return mapview.StylePlain
}

// refreshMap repaints regions whose fill changed and uploads only that area.
func (g *Game) refreshMap() {
	if g.canvas == nil {
		return
	}
	area := g.canvas.update(g.atlas.Regions(), g.palette.FillFunc(g.style()), g.palette.Border)
	g.upload(area)
}

// setHighContrast switches palettes and repaints the visible map. The hit
// index is untouched.
func (g *Game) setHighContrast(on bool) {
	if on {
		g.palette = mapview.HighContrastPalette()
	} else {
		g.palette = mapview.DefaultPalette()
	}
	g.canvas.repaintAll(g.atlas.Regions(), g.palette.FillFunc(g.style()), g.palette.Border)
	g.upload(g.raster.Bounds())
	g.setHover("")
	g.feedback.Add(feedbackInfo, "High contrast "+onOff(on))
}

func (g *Game) upload(area image.Rectangle) {
	if area.Empty() || g.mapImg == nil {
		return
	}
	if area == g.raster.Bounds() {
		g.mapImg.WritePixels(g.canvas.pix.Pix)
		return
	}
	sub := g.mapImg.SubImage(area).(*ebiten.Image)
	sub.WritePixels(g.canvas.pixels(area))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (g *Game) Draw(dst *ebiten.Image) {
	dst.Fill(g.palette.Background)
	switch g.screen {
	case screenLoading:
		g.drawLoading(dst)
		return
	case screenLoadFailed:
		g.drawLoadFailed(dst)
		return
	}

	g.drawMap(dst)
	switch g.screen {
	case screenMenu:
		g.drawMenu(dst)
		g.feedback.Draw(dst, g.ui, 12*g.dpr, float64(g.height)-12*g.dpr, g.dpr)
	case screenGroupSelect:
		g.drawGroupSelect(dst)
	case screenScores:
		g.drawScores(dst)
	case screenPlaying:
		g.drawPins(dst)
		g.drawTooltip(dst)
		g.drawHUD(dst)
		g.drawInspector(dst)
	}
}
