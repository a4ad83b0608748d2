package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/GeoQuizz/internal/quiz"
)

const (
	pinBaseRadius = 8
	pinZoomGrowth = 0.2
	pulsePeriod   = 60 // frames
	dashLen       = 8
	dashGap       = 6
	hoverAlpha    = 0.55
)

// pinRadius is the on-screen pin radius at a zoom level; pins grow slowly as
// the map is zoomed in.
func pinRadius(zoom float64) float64 {
	return pinBaseRadius * (1 + zoom*pinZoomGrowth)
}

// pulse returns the ring scale and opacity for the player pin animation.
func pulse(frame int) (scale, alpha float64) {
	phase := float64(frame%pulsePeriod) / pulsePeriod
	return 1 + phase, 1 - phase
}

// dashes splits the segment (x0,y0)-(x1,y1) into dash segments. The last
// dash is clipped at the end point.
func dashes(x0, y0, x1, y1, dash, gap float64) [][4]float64 {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 || dash <= 0 {
		return nil
	}
	ux, uy := dx/length, dy/length
	var out [][4]float64
	for d := 0.0; d < length; d += dash + gap {
		e := math.Min(d+dash, length)
		out = append(out, [4]float64{x0 + ux*d, y0 + uy*d, x0 + ux*e, y0 + uy*e})
	}
	return out
}

// mapToCanvas converts a map point to device pixels.
func (g *Game) mapToCanvas(mx, my float64) (float32, float32) {
	sx, sy := g.vp.MapToScreen(mx, my)
	cx, cy := g.vp.ScreenToCanvas(sx, sy)
	return float32(cx), float32(cy)
}

// drawMap blits the painted map and the hover overlay through the viewport.
func (g *Game) drawMap(dst *ebiten.Image) {
	if g.mapImg == nil {
		return
	}
	s, tx, ty := g.vp.Transform()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(tx, ty)
	if s < 1 {
		op.Filter = ebiten.FilterLinear
	}
	dst.DrawImage(g.mapImg, op)

	if g.hoverImg == nil {
		return
	}
	hop := &ebiten.DrawImageOptions{}
	hop.GeoM.Translate(float64(g.hoverAt.X), float64(g.hoverAt.Y))
	hop.GeoM.Scale(s, s)
	hop.GeoM.Translate(tx, ty)
	hop.Filter = op.Filter
	hop.ColorScale.ScaleAlpha(hoverAlpha)
	dst.DrawImage(g.hoverImg, hop)
}

// setHover swaps the hover overlay to another region. An empty name clears it.
func (g *Game) setHover(name string) {
	if name == g.hover {
		return
	}
	if g.hoverImg != nil {
		g.hoverImg.Deallocate()
		g.hoverImg = nil
	}
	g.hover = name
	if name == "" || g.raster == nil {
		return
	}
	img, at, ok := g.raster.Overlay(name, g.palette.Hover)
	if !ok || img.Bounds().Empty() {
		return
	}
	g.hoverImg = ebiten.NewImageFromImage(img)
	g.hoverAt = at
}

// drawPins renders the round's pins and the dashed connector between the
// guess and the target.
func (g *Game) drawPins(dst *ebiten.Image) {
	pins := g.session.Pins().Pins()
	if len(pins) == 0 {
		return
	}
	var guess, target *quiz.Pin
	for i := range pins {
		switch pins[i].Kind {
		case quiz.PinGuess:
			guess = &pins[i]
		case quiz.PinTarget:
			target = &pins[i]
		}
	}
	width := float32(2 * g.dpr)
	if guess != nil && target != nil {
		gx, gy := g.mapToCanvas(guess.X, guess.Y)
		tx, ty := g.mapToCanvas(target.X, target.Y)
		for _, d := range dashes(float64(gx), float64(gy), float64(tx), float64(ty), dashLen*g.dpr, dashGap*g.dpr) {
			vector.StrokeLine(dst, float32(d[0]), float32(d[1]), float32(d[2]), float32(d[3]), width, g.palette.Connector, true)
		}
	}

	r := float32(pinRadius(g.vp.Zoom) * g.dpr)
	for _, p := range pins {
		x, y := g.mapToCanvas(p.X, p.Y)
		fill := g.palette.TargetPin
		if p.Kind == quiz.PinGuess {
			fill = g.palette.PlayerPin
			scale, alpha := pulse(g.frame)
			ring := color.NRGBA{R: 255, G: 255, B: 255, A: uint8(alpha * 255)}
			vector.StrokeCircle(dst, x, y, r*float32(scale), width, ring, true)
		}
		vector.FillCircle(dst, x, y, r, fill, true)
		vector.StrokeCircle(dst, x, y, r, width, g.palette.PinOutline, true)
	}
}
