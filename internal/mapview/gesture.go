package mapview

// GestureState is the pointer state used to tell a drag from a click.
type GestureState uint8

const (
	GestureIdle GestureState = iota
	GesturePressed
	GestureDragging
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GesturePressed:
		return "pressed"
	case GestureDragging:
		return "dragging"
	}
	return "unknown"
}

// Gesture disambiguates pan drags from clicks. Any movement while pressed
// turns the press into a drag. In pin mode nothing pans and every release
// counts as a click.
type Gesture struct {
	state        GestureState
	lastX, lastY float64
	pinMode      bool
}

// State returns the current state.
func (g *Gesture) State() GestureState { return g.state }

// PinMode reports whether pin mode is on.
func (g *Gesture) PinMode() bool { return g.pinMode }

// SetPinMode toggles pin mode. A drag in progress is demoted to a press.
func (g *Gesture) SetPinMode(on bool) {
	g.pinMode = on
	if on && g.state == GestureDragging {
		g.state = GesturePressed
	}
}

// Press starts a gesture at a screen point.
func (g *Gesture) Press(x, y float64) {
	g.state = GesturePressed
	g.lastX, g.lastY = x, y
}

// Move feeds the pointer position while pressed and returns the pan delta.
func (g *Gesture) Move(x, y float64) (dx, dy float64, panning bool) {
	if g.state == GestureIdle {
		return 0, 0, false
	}
	dx, dy = x-g.lastX, y-g.lastY
	g.lastX, g.lastY = x, y
	if g.pinMode || (dx == 0 && dy == 0) {
		return 0, 0, false
	}
	g.state = GestureDragging
	return dx, dy, true
}

// Release ends the gesture and reports whether it was a click.
func (g *Gesture) Release() bool {
	click := g.state == GesturePressed || (g.pinMode && g.state != GestureIdle)
	g.state = GestureIdle
	return click
}

// Cancel drops the gesture without a click.
func (g *Gesture) Cancel() { g.state = GestureIdle }
