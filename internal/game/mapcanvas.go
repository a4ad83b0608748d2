package game

import (
	"image"
	"image/color"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
	"github.com/Garsondee/GeoQuizz/internal/mapview"
)

// mapCanvas is the CPU copy of the visible map and the fill each region was
// last painted with. Only regions whose fill changes are repainted.
type mapCanvas struct {
	raster  *mapview.Raster
	pix     *image.RGBA
	painted map[string]color.RGBA
}

func newMapCanvas(r *mapview.Raster, regions []*atlas.Region, fill mapview.FillFunc, border color.RGBA) *mapCanvas {
	c := &mapCanvas{
		raster:  r,
		pix:     image.NewRGBA(r.Bounds()),
		painted: make(map[string]color.RGBA, len(regions)),
	}
	c.repaintAll(regions, fill, border)
	return c
}

func (c *mapCanvas) repaintAll(regions []*atlas.Region, fill mapview.FillFunc, border color.RGBA) {
	c.raster.Paint(c.pix, fill, border)
	for _, reg := range regions {
		c.painted[reg.Name] = fill(reg)
	}
}

// update repaints the union of the bounds of regions whose fill changed and
// returns that area. An empty rectangle means nothing changed.
func (c *mapCanvas) update(regions []*atlas.Region, fill mapview.FillFunc, border color.RGBA) image.Rectangle {
	var area image.Rectangle
	for _, reg := range regions {
		f := fill(reg)
		if old, ok := c.painted[reg.Name]; ok && old == f {
			continue
		}
		c.painted[reg.Name] = f
		if b, ok := c.raster.RegionBounds(reg.Name); ok {
			area = area.Union(b)
		}
	}
	if !area.Empty() {
		c.raster.Repaint(c.pix, area, fill, border)
	}
	return area
}

// pixels copies the rectangle r out of the canvas, rows packed, as
// WritePixels on a sub-image expects.
func (c *mapCanvas) pixels(r image.Rectangle) []byte {
	r = r.Intersect(c.pix.Bounds())
	if r.Empty() {
		return nil
	}
	row := r.Dx() * 4
	out := make([]byte, 0, row*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		o := c.pix.PixOffset(r.Min.X, y)
		out = append(out, c.pix.Pix[o:o+row]...)
	}
	return out
}
