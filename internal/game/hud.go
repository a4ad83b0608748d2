package game

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/quiz"
)

const (
	hudFontSize   = 16
	titleFontSize = 44
	menuFontSize  = 22
	inputFontSize = 20
	hudPad        = 10
)

var (
	panelBg     = color.RGBA{R: 14, G: 14, B: 28, A: 220}
	panelBorder = color.RGBA{R: 80, G: 80, B: 130, A: 255}
	textDim     = color.RGBA{R: 160, G: 160, B: 190, A: 255}
	textBright  = color.RGBA{R: 255, G: 220, B: 120, A: 255}
)

// hudLines is the status text for the active mode.
func hudLines(s *quiz.Session, clock string) []string {
	switch s.Mode() {
	case quiz.ModePath:
		p := s.Path()
		start, end := p.Endpoints()
		lines := []string{
			fmt.Sprintf("Connect %s to %s", start, end),
			fmt.Sprintf("Moves %d   Errors %d   Time %s", p.Moves(), p.Errors(), clock),
			"Path: " + strings.Join(p.Path(), " > "),
		}
		if p.State() == quiz.PathWon {
			lines = append(lines, "Complete! Esc for menu")
		}
		return lines
	case quiz.ModeNameAll:
		n := s.NameAll()
		named, total, remaining := n.Counts()
		lines := []string{
			"Name every country in " + n.Group(),
			fmt.Sprintf("Named %d/%d   Remaining %d   Errors %d   Time %s", named, total, remaining, n.Errors(), clock),
		}
		if n.State() == quiz.NameAllWon {
			lines = append(lines, "All named! Esc for menu")
		}
		return lines
	case quiz.ModePin:
		g := s.Pins()
		switch g.State() {
		case quiz.PinComplete:
			lines := []string{"Final score " + humanize.Comma(int64(g.Total()))}
			if s.Saved() {
				lines = append(lines, "Score saved. Esc for menu")
			} else {
				lines = append(lines, "Type your name and press Enter to save")
			}
			return lines
		case quiz.PinRoundActive, quiz.PinRoundScored:
			lines := []string{
				fmt.Sprintf("Round %d/%d   Total %s", g.Round(), g.Rounds(), humanize.Comma(int64(g.Total()))),
			}
			if g.State() == quiz.PinRoundScored {
				rs := g.Results()
				lines = append(lines, roundSummary(rs[len(rs)-1]))
				if rs[len(rs)-1].Final {
					lines = append(lines, "Space to finish")
				} else {
					lines = append(lines, "Space for the next round")
				}
			} else if s.PinMode() {
				lines = append(lines, "Click the map to drop your pin")
			} else {
				lines = append(lines, "Pin mode off: drag to pan, P to resume")
			}
			return lines
		}
	}
	return nil
}

// roundSummary is the one-line result of a scored round.
func roundSummary(r quiz.RoundResult) string {
	s := fmt.Sprintf("%s: %s km, %d pts", r.Place.Name, humanize.Comma(int64(r.DistanceKm+0.5)), r.Score)
	if r.GreatCircleKm > 0 {
		s += fmt.Sprintf(" (%s km on the globe)", humanize.Comma(int64(r.GreatCircleKm+0.5)))
	}
	return s
}

// helpLine lists the keys that work right now.
func helpLine(s *quiz.Session) string {
	switch s.Mode() {
	case quiz.ModePath, quiz.ModeNameAll:
		return "Type a country + Enter   Arrows pan   Wheel zoom   F1 contrast   Esc menu"
	case quiz.ModePin:
		switch s.Pins().State() {
		case quiz.PinComplete:
			return "Enter save   Esc menu"
		case quiz.PinRoundScored:
			return "Space next   C copy pin   WASD pan   +/- zoom   Esc menu"
		}
		return "Click pin   P pin mode   C copy pin   WASD pan   +/- zoom   F1 contrast   Esc menu"
	}
	return ""
}

// wrap breaks s into lines no wider than maxW.
func wrap(s string, ui *fonts, size, maxW float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		next := line + " " + w
		if ui.measure(next, size, false) > maxW {
			lines = append(lines, line)
			line = w
			continue
		}
		line = next
	}
	return append(lines, line)
}

// panel draws a framed box.
func (g *Game) panel(dst *ebiten.Image, x, y, w, h float64) {
	vector.FillRect(dst, float32(x), float32(y), float32(w), float32(h), panelBg, false)
	vector.StrokeRect(dst, float32(x), float32(y), float32(w), float32(h), float32(g.dpr), panelBorder, false)
}

func (g *Game) drawHUD(dst *ebiten.Image) {
	s := g.dpr
	size := hudFontSize * s
	lh := g.ui.lineHeight(size)
	lines := hudLines(g.session, g.clockStr)
	if len(lines) > 0 {
		w := 0.0
		for _, l := range lines {
			w = max(w, g.ui.measure(l, size, false))
		}
		pad := hudPad * s
		g.panel(dst, 12*s, 12*s, w+2*pad, lh*float64(len(lines))+2*pad)
		y := 12*s + pad
		for i, l := range lines {
			c := color.Color(color.White)
			if i == 0 {
				c = textBright
			}
			g.ui.print(dst, l, 12*s+pad, y, size, false, c)
			y += lh
		}
	}

	if g.session.Mode() == quiz.ModePin {
		if p, ok := g.session.Pins().Current(); ok {
			g.drawLocation(dst, p)
		}
	}

	bottom := float64(g.height) - 12*s
	help := helpLine(g.session)
	g.ui.print(dst, help, 12*s, bottom-lh, 13*s, false, textDim)
	bottom -= lh + 6*s
	if box, ok := g.activeBox(); ok {
		bottom = g.drawInputBox(dst, box, bottom)
	}
	g.feedback.Draw(dst, g.ui, 12*s, bottom-6*s, s)
}

// drawInputBox draws the text entry above bottom and returns its top edge.
func (g *Game) drawInputBox(dst *ebiten.Image, box *textBox, bottom float64) float64 {
	s := g.dpr
	size := inputFontSize * s
	pad := 8 * s
	h := g.ui.lineHeight(size) + 2*pad
	w := 460 * s
	top := bottom - h
	g.panel(dst, 12*s, top, w, h)
	prompt := "> "
	if box == &g.nameEntry {
		prompt = "Name: "
	}
	caret := ""
	if (g.frame/30)%2 == 0 {
		caret = "_"
	}
	g.ui.print(dst, prompt+box.String()+caret, 12*s+pad, top+pad, size, false, color.White)
	return top
}

func (g *Game) drawLoading(dst *ebiten.Image) {
	s := g.dpr
	dots := strings.Repeat(".", (g.frame/20)%4)
	g.ui.printCentered(dst, "Loading map"+dots, float64(g.width)/2, float64(g.height)/2, menuFontSize*s, color.White)
}

func (g *Game) drawLoadFailed(dst *ebiten.Image) {
	s := g.dpr
	cx, cy := float64(g.width)/2, float64(g.height)/2
	g.ui.printCentered(dst, "The map could not be loaded", cx, cy-40*s, menuFontSize*s, textBright)
	if g.loadErr != nil {
		g.ui.printCentered(dst, g.loadErr.Error(), cx, cy, hudFontSize*s, color.White)
	}
	g.ui.printCentered(dst, "Check GEOQUIZ_DATA_DIR and restart", cx, cy+30*s, hudFontSize*s, textDim)
}

var menuItems = []string{
	"1  Build a path between two countries",
	"2  Name every country in a region",
	"3  Find the place",
	"4  High scores",
}

func (g *Game) drawMenu(dst *ebiten.Image) {
	s := g.dpr
	cx := float64(g.width) / 2
	lh := g.ui.lineHeight(menuFontSize * s)
	h := g.ui.lineHeight(titleFontSize*s) + lh*float64(len(menuItems)+1) + 40*s
	w := 560 * s
	top := float64(g.height)/2 - h/2
	g.panel(dst, cx-w/2, top, w, h)
	y := top + 16*s
	g.ui.printCentered(dst, "GeoQuizz", cx, y, titleFontSize*s, textBright)
	y += g.ui.lineHeight(titleFontSize*s) + 8*s
	for _, item := range menuItems {
		g.ui.print(dst, item, cx-w/2+40*s, y, menuFontSize*s, false, color.White)
		y += lh
	}
	g.ui.printCentered(dst, fmt.Sprintf("%d countries   F1 high contrast", g.atlas.Len()), cx, y+8*s, 13*s, textDim)
}

func (g *Game) drawGroupSelect(dst *ebiten.Image) {
	s := g.dpr
	groups := g.atlas.Groups()
	cx := float64(g.width) / 2
	size := menuFontSize * s
	lh := g.ui.lineHeight(size)
	w := 460 * s
	h := lh*float64(len(groups)+2) + 32*s
	top := float64(g.height)/2 - h/2
	g.panel(dst, cx-w/2, top, w, h)
	y := top + 12*s
	g.ui.printCentered(dst, "Choose a region", cx, y, size, textBright)
	y += lh + 8*s
	for i, name := range groups {
		members, _ := g.atlas.GroupMembers(name)
		label := fmt.Sprintf("%s (%d)", name, len(members))
		c := color.Color(textDim)
		if i == g.groupCursor {
			vector.FillRect(dst, float32(cx-w/2+8*s), float32(y-2*s), float32(w-16*s), float32(lh), color.RGBA{R: 60, G: 60, B: 110, A: 255}, false)
			c = color.White
		}
		g.ui.print(dst, label, cx-w/2+24*s, y, size, false, c)
		y += lh
	}
	g.ui.printCentered(dst, "Up/Down choose   Enter start   Esc back", cx, y+4*s, 13*s, textDim)
}

func (g *Game) drawScores(dst *ebiten.Image) {
	s := g.dpr
	cx := float64(g.width) / 2
	size := 17 * s
	lh := g.ui.lineHeight(size)
	rows := max(len(g.board), 1)
	w := 640 * s
	h := lh*float64(rows+4) + 32*s
	top := float64(g.height)/2 - h/2
	g.panel(dst, cx-w/2, top, w, h)
	y := top + 12*s
	g.ui.printCentered(dst, "Find the place: high scores", cx, y, menuFontSize*s, textBright)
	y += lh + 12*s
	x := cx - w/2 + 24*s
	switch {
	case g.boardErr != nil:
		g.ui.print(dst, "Scores unavailable: "+g.boardErr.Error(), x, y, size, false, textDim)
	case len(g.board) == 0:
		g.ui.print(dst, "No scores yet", x, y, size, false, textDim)
	}
	now := time.Now()
	for i, e := range g.board {
		g.ui.print(dst, e.Describe(i+1, now), x, y, size, true, color.White)
		y += lh
	}
	g.ui.print(dst, lastScoreLine(g.lastScore, g.hasLast), x, top+h-2*lh-12*s, size, false, textDim)
	g.ui.printCentered(dst, "Esc back", cx, top+h-lh-8*s, 13*s, textDim)
}

// lastScoreLine shows the most recently saved score, best or not.
func lastScoreLine(score int, ok bool) string {
	if !ok {
		return "Last score: none"
	}
	return "Last score: " + humanize.Comma(int64(score))
}

// groupIndex finds a group in the ordered group list, defaulting to World.
func groupIndex(groups []string, name string) int {
	for i, gname := range groups {
		if gname == name {
			return i
		}
	}
	for i, gname := range groups {
		if gname == atlas.WorldGroup {
			return i
		}
	}
	return 0
}
