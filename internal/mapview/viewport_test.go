package mapview

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-6

func randomViewport(r *rand.Rand) Viewport {
	v := NewViewport()
	v.BaseScale = 0.1 + r.Float64()*2
	v.Zoom = DefaultMinZoom + r.Float64()*(DefaultMaxZoom-DefaultMinZoom)
	v.OffsetX = (r.Float64() - 0.5) * 4000
	v.OffsetY = (r.Float64() - 0.5) * 4000
	return v
}

// --- Transforms ---

func TestViewport_InverseTransform(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		v := randomViewport(r)
		sx, sy := r.Float64()*1600, r.Float64()*900
		mx, my := v.ScreenToMap(sx, sy)
		bx, by := v.MapToScreen(mx, my)
		if math.Abs(bx-sx) > eps || math.Abs(by-sy) > eps {
			t.Fatalf("round trip drifted: (%.6f,%.6f) -> (%.6f,%.6f) with %+v", sx, sy, bx, by, v)
		}
	}
}

func TestViewport_AnchorPreservingZoom(t *testing.T) {
	r := rand.New(rand.NewSource(12))
	for i := 0; i < 1000; i++ {
		v := randomViewport(r)
		ax, ay := r.Float64()*1600, r.Float64()*900
		bx, by := v.ScreenToMap(ax, ay)
		v.ApplyZoom((r.Float64()-0.5)*40, ax, ay)
		cx, cy := v.ScreenToMap(ax, ay)
		if math.Abs(bx-cx) > eps || math.Abs(by-cy) > eps {
			t.Fatalf("anchor moved: (%.6f,%.6f) -> (%.6f,%.6f)", bx, by, cx, cy)
		}
		if v.Zoom < v.MinZoom || v.Zoom > v.MaxZoom {
			t.Fatalf("zoom %.3f escaped bounds", v.Zoom)
		}
	}
}

func TestViewport_ZoomClamp(t *testing.T) {
	v := NewViewport()
	v.ApplyZoom(10000, 0, 0)
	if v.Zoom != DefaultMaxZoom {
		t.Fatalf("expected max zoom, got %f", v.Zoom)
	}
	if v.ApplyZoom(1, 0, 0) {
		t.Fatal("zooming past the bound should report no change")
	}
	v.ApplyZoom(-10000, 0, 0)
	if v.Zoom != DefaultMinZoom {
		t.Fatalf("expected min zoom, got %f", v.Zoom)
	}
}

func TestViewport_ZoomStepFactor(t *testing.T) {
	v := NewViewport()
	v.ApplyZoom(1, 0, 0)
	if math.Abs(v.Zoom-ZoomStep) > 1e-12 {
		t.Fatalf("one step should multiply by %.2f, got %f", ZoomStep, v.Zoom)
	}
}

func TestViewport_PanIsScreenSpace(t *testing.T) {
	v := NewViewport()
	v.BaseScale = 0.25
	v.Zoom = 4
	v.ApplyPan(30, -12)
	if v.OffsetX != 30 || v.OffsetY != -12 {
		t.Fatalf("pan should add deltas directly, got %f,%f", v.OffsetX, v.OffsetY)
	}
}

func TestViewport_Fit(t *testing.T) {
	v := NewViewport()
	v.Fit(1600, 900, 4000, 2000)
	// min(0.4, 0.45) * 0.9
	if math.Abs(v.BaseScale-0.36) > 1e-12 {
		t.Fatalf("expected base scale 0.36, got %f", v.BaseScale)
	}
	sx, sy := v.MapToScreen(2000, 1000)
	if math.Abs(sx-800) > eps || math.Abs(sy-450) > eps {
		t.Fatalf("map centre should land on the container centre, got %f,%f", sx, sy)
	}
}

func TestViewport_CenterOnKeepsZoom(t *testing.T) {
	v := NewViewport()
	v.Fit(1600, 900, 4000, 2000)
	v.ApplyZoom(30, 100, 100)
	zoom := v.Zoom
	v.CenterOn(3000, 500, 800, 450)
	sx, sy := v.MapToScreen(3000, 500)
	if math.Abs(sx-800) > eps || math.Abs(sy-450) > eps {
		t.Fatalf("map point should land on 800,450, got %f,%f", sx, sy)
	}
	if v.Zoom != zoom {
		t.Fatalf("centring should not change zoom, got %f want %f", v.Zoom, zoom)
	}
}

func TestViewport_DeviceScale(t *testing.T) {
	v := NewViewport()
	v.DPR = 2
	sx, sy := v.CanvasToScreen(200, 100)
	if sx != 100 || sy != 50 {
		t.Fatalf("expected 100,50 got %f,%f", sx, sy)
	}
	v.OffsetX, v.OffsetY, v.BaseScale = 10, 20, 0.5
	s, tx, ty := v.Transform()
	if s != 1 || tx != 20 || ty != 40 {
		t.Fatalf("canvas transform should include DPR, got %f %f %f", s, tx, ty)
	}
}

// --- Gesture ---

func TestGesture_ClickVersusDrag(t *testing.T) {
	var g Gesture
	g.Press(10, 10)
	if _, _, pan := g.Move(10, 10); pan {
		t.Fatal("no movement should not pan")
	}
	if !g.Release() {
		t.Fatal("press and release in place is a click")
	}

	g.Press(10, 10)
	dx, dy, pan := g.Move(14, 7)
	if !pan || dx != 4 || dy != -3 {
		t.Fatalf("expected pan 4,-3 got %f,%f pan=%v", dx, dy, pan)
	}
	if g.State() != GestureDragging {
		t.Fatalf("expected dragging, got %s", g.State())
	}
	if g.Release() {
		t.Fatal("a drag must not click")
	}
	if g.State() != GestureIdle {
		t.Fatalf("expected idle after release, got %s", g.State())
	}
}

func TestGesture_PinModeAlwaysClicks(t *testing.T) {
	var g Gesture
	g.SetPinMode(true)
	g.Press(0, 0)
	if _, _, pan := g.Move(50, 50); pan {
		t.Fatal("pin mode must never pan")
	}
	if !g.Release() {
		t.Fatal("pin mode release is always a click")
	}
	if g.Release() {
		t.Fatal("release without press is not a click")
	}
}

func TestGesture_MoveWithoutPress(t *testing.T) {
	var g Gesture
	if _, _, pan := g.Move(5, 5); pan {
		t.Fatal("moving while idle should not pan")
	}
	g.Press(0, 0)
	g.Cancel()
	if g.Release() {
		t.Fatal("cancelled gesture is not a click")
	}
}
