package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/GeoQuizz/internal/mapview"
	"github.com/Garsondee/GeoQuizz/internal/quiz"
	"github.com/Garsondee/GeoQuizz/internal/scores"
	"github.com/Garsondee/GeoQuizz/internal/timer"
)

const (
	inputLimit     = 48
	nameLimit      = 24
	keyPanSpeed    = 8  // screen pixels per frame
	keyZoomSteps   = 10 // wheel steps per key press
	repeatDelay    = 30 // frames before a held key repeats
	repeatInterval = 3
)

// textBox is a single-line text entry.
type textBox struct {
	runes []rune
	limit int
}

// Insert appends printable runes up to the limit.
func (b *textBox) Insert(rs []rune) {
	for _, r := range rs {
		if b.limit > 0 && len(b.runes) >= b.limit {
			return
		}
		if !unicode.IsPrint(r) {
			continue
		}
		b.runes = append(b.runes, r)
	}
}

// Backspace removes the last rune.
func (b *textBox) Backspace() {
	if len(b.runes) > 0 {
		b.runes = b.runes[:len(b.runes)-1]
	}
}

func (b *textBox) String() string { return string(b.runes) }

func (b *textBox) Clear() { b.runes = b.runes[:0] }

// Take returns the trimmed text and empties the box.
func (b *textBox) Take() string {
	s := strings.TrimSpace(b.String())
	b.Clear()
	return s
}

// repeating reports a key press, repeating while the key is held.
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	if d == 1 {
		return true
	}
	return d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

func altHeld() bool {
	return ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight)
}

// --- Menus ---

func (g *Game) updateMenu() {
	g.checkContrastKey()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		g.startPath()
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		g.groupCursor = groupIndex(g.atlas.Groups(), g.session.NameAll().Group())
		g.screen = screenGroupSelect
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		g.startPin()
	case inpututil.IsKeyJustPressed(ebiten.Key4):
		g.openScores()
	}
}

func (g *Game) updateGroupSelect() {
	groups := g.atlas.Groups()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.screen = screenMenu
	case repeating(ebiten.KeyArrowUp):
		g.groupCursor = (g.groupCursor - 1 + len(groups)) % len(groups)
	case repeating(ebiten.KeyArrowDown):
		g.groupCursor = (g.groupCursor + 1) % len(groups)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter):
		g.chooseGroup(groups[g.groupCursor])
	}
}

func (g *Game) openScores() {
	g.board, g.boardErr = g.session.Leaderboard()
	if g.boardErr != nil {
		g.logger.Warn("leaderboard_unavailable", "err", g.boardErr)
	}
	var err error
	g.lastScore, g.hasLast, err = g.session.LastScore()
	if err != nil {
		g.logger.Warn("last_score_unavailable", "err", err)
	}
	g.screen = screenScores
}

func (g *Game) updateScores() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.screen = screenMenu
	}
}

// --- Starting modes ---

func (g *Game) startPlaying() {
	g.feedback.Clear()
	g.input.Clear()
	g.nameEntry.Clear()
	g.inspector.selected = ""
	g.hasPin = false
	g.clock = nil
	g.clockStr = timer.Format(0)
	g.screen = screenPlaying
}

// startStopwatch runs the frame-driven timer shown in the HUD.
func (g *Game) startStopwatch() {
	g.clock = timer.New(0, true, func(s string) { g.clockStr = s }, nil)
	g.clock.Start()
}

func (g *Game) startPath() {
	g.startPlaying()
	res := g.dispatch(quiz.StartPath{})
	if res.Err != nil {
		g.feedback.Add(feedbackBad, "No start and goal could be chosen")
		return
	}
	start, end := g.session.Path().Endpoints()
	g.feedback.Add(feedbackInfo, fmt.Sprintf("Get from %s to %s through neighbouring countries", start, end))
	g.startStopwatch()
}

func (g *Game) chooseGroup(name string) {
	g.startPlaying()
	if res := g.dispatch(quiz.ChooseGroup{Name: name}); res.Err != nil {
		g.feedback.Add(feedbackBad, res.Err.Error())
		return
	}
	_, total, _ := g.session.NameAll().Counts()
	g.feedback.Add(feedbackInfo, fmt.Sprintf("%d countries to name in %s", total, name))
	g.startStopwatch()
}

func (g *Game) startPin() {
	g.startPlaying()
	if res := g.dispatch(quiz.StartPin{}); res.Err != nil {
		g.feedback.Add(feedbackBad, "No places to find")
		return
	}
	g.feedback.Add(feedbackInfo, "Click where you think the place is")
}

// --- Playing ---

func (g *Game) updatePlaying() {
	if g.clock != nil {
		g.clock.Advance(time.Second / time.Duration(ebiten.TPS()))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.dispatch(quiz.Reset{})
		g.setHover("")
		g.screen = screenMenu
		return
	}
	g.checkContrastKey()
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.inspector.rawView = !g.inspector.rawView
	}

	if box, ok := g.activeBox(); ok {
		g.updateTextBox(box)
	} else {
		g.updatePinKeys()
	}
	g.updateKeyboardView()
	g.updatePointer()
}

// activeBox is the text entry receiving keystrokes, if any.
func (g *Game) activeBox() (*textBox, bool) {
	switch g.session.Mode() {
	case quiz.ModePath:
		if g.session.Path().State() == quiz.PathActive {
			return &g.input, true
		}
	case quiz.ModeNameAll:
		if g.session.NameAll().State() == quiz.NameAllActive {
			return &g.input, true
		}
	case quiz.ModePin:
		if g.session.Pins().State() == quiz.PinComplete && !g.session.Saved() {
			return &g.nameEntry, true
		}
	}
	return nil, false
}

func (g *Game) checkContrastKey() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) || (altHeld() && inpututil.IsKeyJustPressed(ebiten.KeyH)) {
		g.setHighContrast(!g.palette.HighContrast)
	}
}

func (g *Game) updateTextBox(box *textBox) {
	// Alt+H is a shortcut, not text.
	if !altHeld() {
		box.Insert(ebiten.AppendInputChars(nil))
	}
	if repeating(ebiten.KeyBackspace) {
		box.Backspace()
	}
	if !inpututil.IsKeyJustPressed(ebiten.KeyEnter) && !inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		return
	}
	if box == &g.nameEntry {
		g.saveScore(box.Take())
		return
	}
	if text := box.Take(); text != "" {
		g.submit(text)
	}
}

func (g *Game) submit(text string) {
	res := g.dispatch(quiz.Submit{Text: text})
	if res.Err != nil {
		g.feedback.Add(feedbackBad, res.Err.Error())
		return
	}
	g.feedback.Add(outcomeFeedback(g.session, text, res.Outcome))
	if res.Outcome.Won && g.clock != nil {
		g.clock.Stop()
	}
}

// outcomeFeedback turns a submission outcome into a feedback line.
func outcomeFeedback(s *quiz.Session, text string, out quiz.Outcome) (feedbackKind, string) {
	name := out.Region
	if name == "" {
		name = text
	}
	if !out.Accepted {
		return feedbackBad, out.Reason.Message() + ": " + name
	}
	switch s.Mode() {
	case quiz.ModePath:
		p := s.Path()
		if out.Won {
			return feedbackGood, fmt.Sprintf("Path complete in %d moves with %d errors", p.Moves(), p.Errors())
		}
		return feedbackGood, fmt.Sprintf("%s added (%d moves)", name, p.Moves())
	case quiz.ModeNameAll:
		n := s.NameAll()
		named, total, _ := n.Counts()
		if out.Won {
			return feedbackGood, fmt.Sprintf("All %d countries of %s named with %d errors", total, n.Group(), n.Errors())
		}
		return feedbackGood, fmt.Sprintf("%s (%d/%d)", name, named, total)
	}
	return feedbackInfo, name
}

func (g *Game) saveScore(player string) {
	res := g.dispatch(quiz.SaveScore{Player: player})
	if res.Err != nil {
		g.feedback.Add(feedbackBad, "Score not saved: "+res.Err.Error())
		return
	}
	rank := 0
	who := scores.CleanPlayer(player)
	for i, e := range res.Entries {
		if e.Score == g.session.Pins().Total() && e.Player == who {
			rank = i + 1
			break
		}
	}
	switch {
	case res.NewHigh && rank > 0:
		g.feedback.Add(feedbackGood, fmt.Sprintf("New high score! You are number %d", rank))
	case rank > 0:
		g.feedback.Add(feedbackGood, fmt.Sprintf("Saved! You are number %d", rank))
	default:
		g.feedback.Add(feedbackInfo, "Saved, but not in the top scores")
	}
}

// updatePinKeys handles the single-key shortcuts of the pin game.
func (g *Game) updatePinKeys() {
	if g.session.Mode() != quiz.ModePin {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		res := g.dispatch(quiz.TogglePinMode{})
		g.feedback.Add(feedbackInfo, "Pin mode "+onOff(res.PinMode))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && g.hasPin {
		g.copyPin()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.nextRound()
	}
}

func (g *Game) nextRound() {
	if g.session.Pins().State() != quiz.PinRoundScored {
		return
	}
	if res := g.dispatch(quiz.NextRound{}); res.Err != nil {
		g.feedback.Add(feedbackBad, res.Err.Error())
		return
	}
	if g.session.Pins().State() != quiz.PinComplete {
		return
	}
	g.feedback.Add(feedbackGood, "Game over. Final score "+fmt.Sprint(g.session.Pins().Total()))
	high, err := g.session.QualifiesForLeaderboard()
	if err != nil {
		g.logger.Warn("high_score_check_failed", "err", err)
	}
	if high {
		g.feedback.Add(feedbackGood, "New high score! Type your name to save it")
	}
}

// updateKeyboardView pans with the arrows (and WASD, +/- when no text box
// has focus).
func (g *Game) updateKeyboardView() {
	_, typing := g.activeBox()
	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || (!typing && ebiten.IsKeyPressed(ebiten.KeyA)) {
		dx += keyPanSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || (!typing && ebiten.IsKeyPressed(ebiten.KeyD)) {
		dx -= keyPanSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || (!typing && ebiten.IsKeyPressed(ebiten.KeyW)) {
		dy += keyPanSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || (!typing && ebiten.IsKeyPressed(ebiten.KeyS)) {
		dy -= keyPanSpeed
	}
	if dx != 0 || dy != 0 {
		g.vp.ApplyPan(dx, dy)
	}
	if typing {
		return
	}
	cx, cy := g.vp.CanvasToScreen(float64(g.width)/2, float64(g.height)/2)
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		g.vp.ApplyZoom(keyZoomSteps, cx, cy)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		g.vp.ApplyZoom(-keyZoomSteps, cx, cy)
	}
}

// updatePointer handles wheel zoom, drag panning, hover and clicks. Cursor
// positions arrive in canvas pixels and are converted to screen pixels
// before they reach the viewport.
func (g *Game) updatePointer() {
	px, py := ebiten.CursorPosition()
	sx, sy := g.vp.CanvasToScreen(float64(px), float64(py))
	g.cursorX, g.cursorY = sx, sy

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.vp.ApplyZoom(wy, sx, sy)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.gesture.Press(sx, sy)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if dx, dy, ok := g.gesture.Move(sx, sy); ok {
			g.vp.ApplyPan(dx, dy)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.gesture.Release() {
		g.click(sx, sy)
	}

	mx, my := g.vp.ScreenToMap(sx, sy)
	name, _ := g.raster.Hit().RegionAt(mx, my)
	g.setHover(name)
}

// click places a pin in pin mode, otherwise it selects a region for the
// inspector.
func (g *Game) click(sx, sy float64) {
	mx, my := g.vp.ScreenToMap(sx, sy)
	if g.session.PinMode() && g.session.Pins().State() == quiz.PinRoundActive {
		g.placePin(mx, my)
		return
	}
	g.inspector.selectAt(g.raster.Hit(), mx, my)
}

func (g *Game) placePin(mx, my float64) {
	res := g.dispatch(quiz.PlacePin{X: mx, Y: my})
	if res.Err != nil {
		if !errors.Is(res.Err, quiz.ErrWrongState) {
			g.feedback.Add(feedbackBad, res.Err.Error())
		}
		return
	}
	g.lastPin = [2]float64{mx, my}
	g.hasPin = true
	r := res.Round
	if fx, fy, ok := pinFocus(&g.vp, r.GuessX, r.GuessY, r.Place.X, r.Place.Y, float64(g.width)/g.dpr, float64(g.height)/g.dpr); ok {
		g.vp.CenterOn(fx, fy, float64(g.width)/g.dpr/2, float64(g.height)/g.dpr/2)
	}
	kind := feedbackGood
	if res.Round.Score < quiz.MaxRoundScore/2 {
		kind = feedbackBad
	}
	g.feedback.Add(kind, roundSummary(res.Round))
}

// pinFocus returns the midpoint of the guess and the target when the target
// lies outside the visible w x h screen area.
func pinFocus(vp *mapview.Viewport, gx, gy, tx, ty, w, h float64) (float64, float64, bool) {
	sx, sy := vp.MapToScreen(tx, ty)
	if sx >= 0 && sy >= 0 && sx <= w && sy <= h {
		return 0, 0, false
	}
	return (gx + tx) / 2, (gy + ty) / 2, true
}
