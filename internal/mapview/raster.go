// Package mapview is the map interaction engine: it rasterises region
// geometry into a visible image and a colour-keyed hit bitmap, and keeps the
// zoom/pan state that maps pointer positions back into map space.
package mapview

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	"golang.org/x/image/vector"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
)

// hitThreshold is the coverage at which a pixel belongs to a region in the
// hit bitmap. The hit bitmap is never anti-aliased.
const hitThreshold = 0x80

// FillFunc picks the visible colour of a region.
type FillFunc func(r *atlas.Region) color.RGBA

type regionMask struct {
	region *atlas.Region
	rect   image.Rectangle // mask bounds in map pixels
	alpha  *image.Alpha    // coverage, origin at rect.Min
}

// Raster holds one coverage mask per drawable region. The hit bitmap and
// the visible image are both produced from these masks in the same order.
type Raster struct {
	w, h    int
	masks   []regionMask
	byName  map[string]int
	ids     []*atlas.Region
	skipped []string
	hit     *HitIndex
	logger  *slog.Logger
}

// NewRaster parses and rasterises every region at map resolution w×h.
// Regions whose path data is malformed, or which fall entirely outside the
// map, are skipped and logged.
func NewRaster(w, h int, regions []*atlas.Region, logger *slog.Logger) *Raster {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Raster{w: w, h: h, logger: logger}
	r.build(regions)
	return r
}

// Size returns the map resolution.
func (r *Raster) Size() (int, int) { return r.w, r.h }

// Bounds returns the full map rectangle.
func (r *Raster) Bounds() image.Rectangle { return image.Rect(0, 0, r.w, r.h) }

// Hit returns the current hit index.
func (r *Raster) Hit() *HitIndex { return r.hit }

// Skipped lists regions that could not be drawn.
func (r *Raster) Skipped() []string { return append([]string(nil), r.skipped...) }

// Len returns the number of drawable regions.
func (r *Raster) Len() int { return len(r.masks) }

// Sync rebuilds the masks and the hit index when the region list identity
// changed. Highlight changes alone never require a rebuild.
func (r *Raster) Sync(regions []*atlas.Region) bool {
	if len(regions) == len(r.ids) {
		same := true
		for i := range regions {
			if regions[i] != r.ids[i] {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}
	r.build(regions)
	return true
}

func (r *Raster) build(regions []*atlas.Region) {
	r.ids = append([]*atlas.Region(nil), regions...)
	r.masks = r.masks[:0]
	r.byName = make(map[string]int, len(regions))
	r.skipped = nil
	r.hit = newHitIndex(r.w, r.h)

	z := vector.NewRasterizer(1, 1)
	z.DrawOp = draw.Src
	for _, reg := range regions {
		m, err := r.rasterise(z, reg)
		if err != nil {
			r.logger.Warn("region_skipped", "region", reg.Name, "err", err)
			r.skipped = append(r.skipped, reg.Name)
			continue
		}
		if m.alpha == nil {
			r.logger.Debug("region_off_map", "region", reg.Name)
			r.skipped = append(r.skipped, reg.Name)
			continue
		}
		r.byName[reg.Name] = len(r.masks)
		r.masks = append(r.masks, m)
	}

	// Later regions overwrite earlier ones, matching the visible paint order.
	for i, m := range r.masks {
		c := r.hit.assign(i, m.region.Name)
		for y := m.rect.Min.Y; y < m.rect.Max.Y; y++ {
			mo := m.alpha.PixOffset(0, y-m.rect.Min.Y)
			ho := r.hit.img.PixOffset(m.rect.Min.X, y)
			for x := 0; x < m.rect.Dx(); x++ {
				if m.alpha.Pix[mo+x] >= hitThreshold {
					p := r.hit.img.Pix[ho+4*x : ho+4*x+4 : ho+4*x+4]
					p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
				}
			}
		}
	}
	r.logger.Debug("raster_built", "regions", len(r.masks), "skipped", len(r.skipped))
}

// rasterise parses all of a region's paths and fills them into one mask
// covering their clipped bounding box. Any malformed path skips the region.
func (r *Raster) rasterise(z *vector.Rasterizer, reg *atlas.Region) (regionMask, error) {
	paths := make([]Path, 0, len(reg.Paths))
	lo := Point{math.Inf(1), math.Inf(1)}
	hi := Point{math.Inf(-1), math.Inf(-1)}
	for _, d := range reg.Paths {
		p, err := ParsePath(d)
		if err != nil {
			return regionMask{}, err
		}
		plo, phi, ok := p.Bounds()
		if !ok {
			continue
		}
		lo.X, lo.Y = math.Min(lo.X, plo.X), math.Min(lo.Y, plo.Y)
		hi.X, hi.Y = math.Max(hi.X, phi.X), math.Max(hi.Y, phi.Y)
		paths = append(paths, p)
	}
	m := regionMask{region: reg}
	if len(paths) == 0 {
		return m, nil
	}
	rect := image.Rect(
		int(math.Floor(lo.X)), int(math.Floor(lo.Y)),
		int(math.Ceil(hi.X))+1, int(math.Ceil(hi.Y))+1,
	).Intersect(r.Bounds())
	if rect.Empty() {
		return m, nil
	}

	z.Reset(rect.Dx(), rect.Dy())
	ox, oy := float32(rect.Min.X), float32(rect.Min.Y)
	pt := func(p Point) (float32, float32) { return float32(p.X) - ox, float32(p.Y) - oy }
	for _, p := range paths {
		open := false
		for _, s := range p {
			switch s.Op {
			case OpMove:
				if open {
					z.ClosePath()
				}
				z.MoveTo(pt(s.P[0]))
				open = true
			case OpLine:
				z.LineTo(pt(s.P[0]))
			case OpQuad:
				bx, by := pt(s.P[0])
				cx, cy := pt(s.P[1])
				z.QuadTo(bx, by, cx, cy)
			case OpCubic:
				bx, by := pt(s.P[0])
				cx, cy := pt(s.P[1])
				dx, dy := pt(s.P[2])
				z.CubeTo(bx, by, cx, cy, dx, dy)
			case OpClose:
				z.ClosePath()
				open = false
			}
		}
		if open {
			z.ClosePath()
		}
	}
	m.rect = rect
	m.alpha = image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	z.Draw(m.alpha, m.alpha.Bounds(), image.Opaque, image.Point{})
	return m, nil
}

// RegionBounds returns the map rectangle covered by a region's mask.
func (r *Raster) RegionBounds(name string) (image.Rectangle, bool) {
	i, ok := r.byName[name]
	if !ok {
		return image.Rectangle{}, false
	}
	return r.masks[i].rect, true
}

// Paint draws every region into dst (sized to the map) and then the borders.
func (r *Raster) Paint(dst *image.RGBA, fill FillFunc, border color.RGBA) {
	r.Repaint(dst, r.Bounds(), fill, border)
}

// Repaint redraws only the given map rectangle of dst: it is cleared to
// transparent, every intersecting region mask is composited in rendering
// order, then borders are drawn where neighbouring hit keys differ.
func (r *Raster) Repaint(dst *image.RGBA, area image.Rectangle, fill FillFunc, border color.RGBA) {
	area = area.Intersect(r.Bounds()).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	draw.Draw(dst, area, image.Transparent, image.Point{}, draw.Src)
	for _, m := range r.masks {
		clip := m.rect.Intersect(area)
		if clip.Empty() {
			continue
		}
		src := image.NewUniform(fill(m.region))
		draw.DrawMask(dst, clip, src, image.Point{}, m.alpha, clip.Min.Sub(m.rect.Min), draw.Over)
	}
	r.paintBorders(dst, area, border)
}

func (r *Raster) paintBorders(dst *image.RGBA, area image.Rectangle, border color.RGBA) {
	hi := r.hit
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			k := hi.keyAt(x, y)
			if k == hi.keyAt(x+1, y) && k == hi.keyAt(x-1, y) &&
				k == hi.keyAt(x, y+1) && k == hi.keyAt(x, y-1) {
				continue
			}
			o := dst.PixOffset(x, y)
			p := dst.Pix[o : o+4 : o+4]
			p[0], p[1], p[2], p[3] = border.R, border.G, border.B, border.A
		}
	}
}

// Overlay renders a single region in colour c into a small image covering
// its mask, for hover effects. The returned point is the image's map-space
// origin.
func (r *Raster) Overlay(name string, c color.RGBA) (*image.RGBA, image.Point, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, image.Point{}, false
	}
	m := r.masks[i]
	img := image.NewRGBA(image.Rect(0, 0, m.rect.Dx(), m.rect.Dy()))
	draw.DrawMask(img, img.Bounds(), image.NewUniform(c), image.Point{}, m.alpha, image.Point{}, draw.Src)
	return img, m.rect.Min, true
}
