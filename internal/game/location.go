package game

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoders for location pictures
	_ "image/png"
	"io/fs"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	_ "golang.org/x/image/webp"

	"github.com/Garsondee/GeoQuizz/internal/quiz"
)

const (
	locationPanelWidth = 280
	locationImageMaxH  = 170
	locationFontSize   = 14
)

// decodePicture reads and decodes an image file from fsys.
func decodePicture(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

// locationCache decodes each place picture once. Missing or broken files
// are remembered so they are not retried every frame.
type locationCache struct {
	fsys   fs.FS
	logger *slog.Logger
	images map[string]*ebiten.Image
	failed map[string]bool
}

func newLocationCache(fsys fs.FS, logger *slog.Logger) locationCache {
	return locationCache{
		fsys:   fsys,
		logger: logger,
		images: make(map[string]*ebiten.Image),
		failed: make(map[string]bool),
	}
}

func (lc *locationCache) get(name string) (*ebiten.Image, bool) {
	if name == "" || lc.failed[name] {
		return nil, false
	}
	if img, ok := lc.images[name]; ok {
		return img, true
	}
	src, err := decodePicture(lc.fsys, name)
	if err != nil {
		lc.failed[name] = true
		lc.logger.Warn("place_image_unavailable", "image", name, "err", err)
		return nil, false
	}
	img := ebiten.NewImageFromImage(src)
	lc.images[name] = img
	return img, true
}

// fitSize scales w x h down to fit inside maxW x maxH, never up.
func fitSize(w, h, maxW, maxH float64) float64 {
	if w <= 0 || h <= 0 {
		return 0
	}
	s := min(maxW/w, maxH/h)
	return min(s, 1)
}

// drawLocation shows the place to find with its picture and description.
func (g *Game) drawLocation(dst *ebiten.Image, p quiz.Place) {
	s := g.dpr
	pad := 8 * s
	w := locationPanelWidth * s
	x := float64(g.width) - w - 12*s
	y := 12 * s
	lh := g.ui.lineHeight(locationFontSize * s)

	desc := wrap(p.Description, g.ui, locationFontSize*s, w-2*pad)
	img, hasImg := g.location.get(p.Image)
	var iw, ih, scale float64
	if hasImg {
		b := img.Bounds()
		scale = fitSize(float64(b.Dx()), float64(b.Dy()), w-2*pad, locationImageMaxH*s)
		iw, ih = float64(b.Dx())*scale, float64(b.Dy())*scale
	}
	h := pad + g.ui.lineHeight(18*s) + float64(len(desc))*lh + pad
	if hasImg {
		h += ih + pad
	}

	vector.FillRect(dst, float32(x), float32(y), float32(w), float32(h), color.RGBA{R: 14, G: 14, B: 28, A: 230}, false)
	vector.StrokeRect(dst, float32(x), float32(y), float32(w), float32(h), float32(s), color.RGBA{R: 80, G: 80, B: 130, A: 255}, false)

	ly := y + pad
	g.ui.print(dst, "Find: "+p.Name, x+pad, ly, 18*s, false, color.RGBA{R: 255, G: 220, B: 120, A: 255})
	ly += g.ui.lineHeight(18 * s)
	if hasImg {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(x+(w-iw)/2, ly)
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(img, op)
		ly += ih + pad
	}
	for _, l := range desc {
		g.ui.print(dst, l, x+pad, ly, locationFontSize*s, false, color.RGBA{R: 210, G: 210, B: 220, A: 255})
		ly += lh
	}
}
