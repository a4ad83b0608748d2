package game

import (
	"bytes"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// debugGlyphW and debugLineH describe the ebitenutil debug font, used when
// the TrueType faces fail to load.
const (
	debugGlyphW = 6
	debugLineH  = 16
)

type fonts struct {
	regular *text.GoTextFaceSource
	mono    *text.GoTextFaceSource
	faces   map[faceKey]*text.GoTextFace
}

type faceKey struct {
	size float64
	mono bool
}

func loadFonts() (*fonts, error) {
	r, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	m, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		return nil, err
	}
	return &fonts{regular: r, mono: m, faces: make(map[faceKey]*text.GoTextFace)}, nil
}

func (f *fonts) face(size float64, mono bool) *text.GoTextFace {
	k := faceKey{size: size, mono: mono}
	if fc, ok := f.faces[k]; ok {
		return fc
	}
	src := f.regular
	if mono {
		src = f.mono
	}
	fc := &text.GoTextFace{Source: src, Size: size}
	f.faces[k] = fc
	return fc
}

// print draws s with its top-left corner at (x, y). A nil receiver falls
// back to the debug font, which ignores size and colour.
func (f *fonts) print(dst *ebiten.Image, s string, x, y, size float64, mono bool, c color.Color) {
	if f == nil {
		ebitenutil.DebugPrintAt(dst, s, int(x), int(y))
		return
	}
	fc := f.face(size, mono)
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	op.LineSpacing = f.lineHeight(size)
	text.Draw(dst, s, fc, op)
}

// printCentered draws s centred horizontally on cx.
func (f *fonts) printCentered(dst *ebiten.Image, s string, cx, y, size float64, c color.Color) {
	f.print(dst, s, cx-f.measure(s, size, false)/2, y, size, false, c)
}

func (f *fonts) lineHeight(size float64) float64 {
	if f == nil {
		return debugLineH
	}
	return size * 1.35
}

func (f *fonts) measure(s string, size float64, mono bool) float64 {
	if f == nil {
		return float64(len(s) * debugGlyphW)
	}
	w, _ := text.Measure(s, f.face(size, mono), f.lineHeight(size))
	return w
}
