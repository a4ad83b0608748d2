package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/mapview"
	"github.com/Garsondee/GeoQuizz/internal/quiz"
)

const (
	inspWidth    = 300
	inspPad      = 8
	inspFontSize = 13
)

// Inspector holds the clicked region and the view toggle.
type Inspector struct {
	selected string
	rawView  bool // false = player view, true = raw dump
}

// selectAt picks the region under a map point. Clicking empty sea clears the
// selection. Returns true if a region was hit.
func (in *Inspector) selectAt(hit *mapview.HitIndex, mx, my float64) bool {
	name, ok := hit.RegionAt(mx, my)
	if !ok {
		in.selected = ""
		return false
	}
	in.selected = name
	return true
}

// inspectorLines builds the panel text. The player view never reveals a name
// the current mode hides.
func inspectorLines(a *atlas.Atlas, r *mapview.Raster, mode quiz.Mode, name string, raw bool) []string {
	reg, ok := a.Region(name)
	if !ok {
		return nil
	}
	if !raw {
		label := quiz.TooltipLabel(mode, reg)
		lines := []string{"[ " + label + " ]"}
		if label == name {
			lines = append(lines, "Group: "+reg.Group)
		}
		var flags []string
		if reg.IsStart {
			flags = append(flags, "start")
		}
		if reg.IsEnd {
			flags = append(flags, "goal")
		}
		if reg.Selected {
			flags = append(flags, "on path")
		}
		if reg.Named {
			flags = append(flags, "named")
		}
		if len(flags) > 0 {
			lines = append(lines, "Status: "+strings.Join(flags, ", "))
		}
		return lines
	}

	lines := []string{
		"name:   " + reg.Name,
		"id:     " + reg.ID,
		"group:  " + reg.Group,
		fmt.Sprintf("paths:  %d", len(reg.Paths)),
	}
	if k, ok := r.Hit().Key(name); ok {
		lines = append(lines, fmt.Sprintf("key:    #%06x", k))
	}
	if b, ok := r.RegionBounds(name); ok {
		lines = append(lines, fmt.Sprintf("bounds: %d,%d %dx%d", b.Min.X, b.Min.Y, b.Dx(), b.Dy()))
	}
	if ns := a.Neighbors(name); len(ns) > 0 {
		lines = append(lines, fmt.Sprintf("adj(%d):", len(ns)))
		for _, n := range ns {
			lines = append(lines, "  "+n)
		}
	} else {
		lines = append(lines, "adj:    none")
	}
	return lines
}

// drawInspector renders the selected region panel on the right edge.
func (g *Game) drawInspector(dst *ebiten.Image) {
	if g.inspector.selected == "" {
		return
	}
	lines := inspectorLines(g.atlas, g.raster, g.session.Mode(), g.inspector.selected, g.inspector.rawView)
	if len(lines) == 0 {
		return
	}
	s := g.dpr
	lh := g.ui.lineHeight(inspFontSize * s)
	w := float32(inspWidth * s)
	h := float32(lh*float64(len(lines)+1) + 2*inspPad*s)
	x := float32(g.width) - w - float32(12*s)
	y := float32(12 * s)
	if g.session.Mode() == quiz.ModePin {
		// The location panel owns the top-right corner.
		y = float32(g.height) - h - float32(48*s)
	}

	border := color.RGBA{R: 80, G: 80, B: 130, A: 255}
	vector.FillRect(dst, x, y, w, h, color.RGBA{R: 14, G: 14, B: 28, A: 230}, false)
	vector.StrokeRect(dst, x, y, w, h, float32(s), border, false)

	ly := float64(y) + inspPad*s
	lx := float64(x) + inspPad*s
	view := "player"
	if g.inspector.rawView {
		view = "raw"
	}
	g.ui.print(dst, "view: "+view+"  [Tab] toggle", lx, ly, inspFontSize*s, false, color.RGBA{R: 150, G: 150, B: 180, A: 255})
	ly += lh
	for _, l := range lines {
		g.ui.print(dst, l, lx, ly, inspFontSize*s, g.inspector.rawView, color.White)
		ly += lh
	}
}

// drawTooltip labels the hovered region next to the cursor.
func (g *Game) drawTooltip(dst *ebiten.Image) {
	if g.hover == "" {
		return
	}
	reg, ok := g.atlas.Region(g.hover)
	if !ok {
		return
	}
	label := quiz.TooltipLabel(g.session.Mode(), reg)
	if label == "" {
		return
	}
	s := g.dpr
	cx, cy := g.vp.ScreenToCanvas(g.cursorX, g.cursorY)
	size := 15 * s
	tw := g.ui.measure(label, size, false)
	pad := 5 * s
	x, y := cx+14*s, cy+14*s
	// Keep the tooltip on screen.
	if x+tw+2*pad > float64(g.width) {
		x = cx - tw - 2*pad - 6*s
	}
	if y+size+2*pad > float64(g.height) {
		y = cy - size - 2*pad - 6*s
	}
	vector.FillRect(dst, float32(x), float32(y), float32(tw+2*pad), float32(g.ui.lineHeight(size)+2*pad), color.RGBA{R: 0, G: 0, B: 0, A: 200}, false)
	g.ui.print(dst, label, x+pad, y+pad, size, false, color.White)
}
