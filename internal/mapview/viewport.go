package mapview

import "math"

// Zoom defaults.
const (
	DefaultMinZoom = 0.5
	DefaultMaxZoom = 10.0
	ZoomStep       = 1.02 // per wheel step
	fitMargin      = 0.9
)

// Viewport is the zoom/pan state between screen space and map space.
//
//	screen = map*BaseScale*Zoom + Offset
//	canvas = screen*DPR
//
// Offsets are in screen pixels. BaseScale is the fit ratio of the map into
// its container.
type Viewport struct {
	Zoom      float64
	MinZoom   float64
	MaxZoom   float64
	OffsetX   float64
	OffsetY   float64
	BaseScale float64
	DPR       float64
}

// NewViewport returns an identity viewport with the default zoom bounds.
func NewViewport() Viewport {
	return Viewport{
		Zoom:      1,
		MinZoom:   DefaultMinZoom,
		MaxZoom:   DefaultMaxZoom,
		BaseScale: 1,
		DPR:       1,
	}
}

// Scale is the combined map-to-screen scale.
func (v *Viewport) Scale() float64 { return v.BaseScale * v.Zoom }

// ScreenToMap inverts the render transform.
func (v *Viewport) ScreenToMap(sx, sy float64) (float64, float64) {
	s := v.Scale()
	if s == 0 {
		return 0, 0
	}
	return (sx - v.OffsetX) / s, (sy - v.OffsetY) / s
}

// MapToScreen applies the render transform.
func (v *Viewport) MapToScreen(mx, my float64) (float64, float64) {
	s := v.Scale()
	return mx*s + v.OffsetX, my*s + v.OffsetY
}

// CanvasToScreen converts device pixels to screen pixels.
func (v *Viewport) CanvasToScreen(cx, cy float64) (float64, float64) {
	if v.DPR <= 0 {
		return cx, cy
	}
	return cx / v.DPR, cy / v.DPR
}

// ScreenToCanvas converts screen pixels to device pixels.
func (v *Viewport) ScreenToCanvas(sx, sy float64) (float64, float64) {
	if v.DPR <= 0 {
		return sx, sy
	}
	return sx * v.DPR, sy * v.DPR
}

func (v *Viewport) clamp(z float64) float64 {
	lo, hi := v.MinZoom, v.MaxZoom
	if lo <= 0 {
		lo = DefaultMinZoom
	}
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, z))
}

// ApplyZoom multiplies the zoom by ZoomStep^steps (positive steps zoom in),
// clamped to the bounds, keeping the map point under the anchor fixed on
// screen. It reports whether the zoom changed.
func (v *Viewport) ApplyZoom(steps, anchorX, anchorY float64) bool {
	return v.SetZoom(v.Zoom*math.Pow(ZoomStep, steps), anchorX, anchorY)
}

// SetZoom sets an absolute zoom level anchored at a screen point.
func (v *Viewport) SetZoom(zoom, anchorX, anchorY float64) bool {
	nz := v.clamp(zoom)
	if nz == v.Zoom {
		return false
	}
	mx, my := v.ScreenToMap(anchorX, anchorY)
	v.Zoom = nz
	v.OffsetX = anchorX - mx*v.BaseScale*nz
	v.OffsetY = anchorY - my*v.BaseScale*nz
	return true
}

// ApplyPan translates the view by a screen-space delta.
func (v *Viewport) ApplyPan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// Fit sizes the map to 90% of the container, centred, and resets the zoom.
func (v *Viewport) Fit(containerW, containerH, mapW, mapH float64) {
	if mapW <= 0 || mapH <= 0 || containerW <= 0 || containerH <= 0 {
		return
	}
	v.BaseScale = math.Min(containerW/mapW, containerH/mapH) * fitMargin
	v.Zoom = 1
	v.OffsetX = (containerW - mapW*v.BaseScale) / 2
	v.OffsetY = (containerH - mapH*v.BaseScale) / 2
}

// CenterOn pans so that a map point sits at the given screen point.
func (v *Viewport) CenterOn(mx, my, sx, sy float64) {
	s := v.Scale()
	v.OffsetX = sx - mx*s
	v.OffsetY = sy - my*s
}

// Transform returns the scale and translation that take map pixels to
// canvas pixels, in the order ebiten.GeoM expects (Scale, then Translate).
func (v *Viewport) Transform() (scale, tx, ty float64) {
	dpr := v.DPR
	if dpr <= 0 {
		dpr = 1
	}
	return v.Scale() * dpr, v.OffsetX * dpr, v.OffsetY * dpr
}
