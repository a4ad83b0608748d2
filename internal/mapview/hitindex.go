package mapview

import (
	"image"
	"image/color"
	"math"
)

// KeyColor returns the flat identity colour of the region at rendering index
// i. Keys are i+1 packed into R (low byte), G and B, so the transparent
// background never collides with a region.
func KeyColor(i int) color.RGBA {
	k := uint32(i + 1)
	return color.RGBA{R: uint8(k), G: uint8(k >> 8), B: uint8(k >> 16), A: 0xff}
}

func keyOf(c color.RGBA) uint32 {
	if c.A == 0 {
		return 0
	}
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16
}

// HitIndex maps map-space points to region names through a bitmap in which
// each region is flat-filled with its key colour.
type HitIndex struct {
	img    *image.RGBA
	byKey  map[uint32]string
	byName map[string]uint32
}

func newHitIndex(w, h int) *HitIndex {
	return &HitIndex{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		byKey:  make(map[uint32]string),
		byName: make(map[string]uint32),
	}
}

func (hi *HitIndex) assign(i int, name string) color.RGBA {
	c := KeyColor(i)
	k := keyOf(c)
	hi.byKey[k] = name
	hi.byName[name] = k
	return c
}

// keyAt returns the raw key at an integer pixel, 0 outside the bitmap.
func (hi *HitIndex) keyAt(x, y int) uint32 {
	if !(image.Point{x, y}.In(hi.img.Rect)) {
		return 0
	}
	o := hi.img.PixOffset(x, y)
	p := hi.img.Pix[o : o+4 : o+4]
	if p[3] == 0 {
		return 0
	}
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
}

// RegionAt resolves the region under a map-space point. Points outside the
// bitmap or over the background report false.
func (hi *HitIndex) RegionAt(mapX, mapY float64) (string, bool) {
	if hi == nil || math.IsNaN(mapX) || math.IsNaN(mapY) {
		return "", false
	}
	fx, fy := math.Floor(mapX), math.Floor(mapY)
	if fx < 0 || fy < 0 || fx >= float64(hi.img.Rect.Dx()) || fy >= float64(hi.img.Rect.Dy()) {
		return "", false
	}
	k := hi.keyAt(int(fx), int(fy))
	if k == 0 {
		return "", false
	}
	name, ok := hi.byKey[k]
	return name, ok
}

// Key returns the packed key assigned to a region.
func (hi *HitIndex) Key(name string) (uint32, bool) {
	k, ok := hi.byName[name]
	return k, ok
}

// Color returns the identity colour assigned to a region.
func (hi *HitIndex) Color(name string) (color.RGBA, bool) {
	k, ok := hi.byName[name]
	if !ok {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(k), G: uint8(k >> 8), B: uint8(k >> 16), A: 0xff}, true
}

// Len returns the number of indexed regions.
func (hi *HitIndex) Len() int { return len(hi.byName) }

// Coverage counts the pixels owned by each region.
func (hi *HitIndex) Coverage() map[string]int {
	out := make(map[string]int, len(hi.byName))
	w, h := hi.img.Rect.Dx(), hi.img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if k := hi.keyAt(x, y); k != 0 {
				out[hi.byKey[k]]++
			}
		}
	}
	return out
}
