package mapview

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrBadPath wraps every path-data parse failure.
var ErrBadPath = errors.New("mapview: bad path data")

// Point is a position in map space.
type Point struct{ X, Y float64 }

// Op is a path segment kind.
type Op uint8

const (
	OpMove Op = iota
	OpLine
	OpQuad
	OpCubic
	OpClose
)

// Segment is one drawing instruction. P holds the control and end points;
// only the first 1 (move, line), 2 (quad) or 3 (cubic) entries are used.
type Segment struct {
	Op Op
	P  [3]Point
}

// Path is a flattened list of absolute segments.
type Path []Segment

// Bounds returns the box enclosing every point of the path, control points
// included. ok is false for a path with no points.
func (p Path) Bounds() (lo, hi Point, ok bool) {
	lo = Point{math.Inf(1), math.Inf(1)}
	hi = Point{math.Inf(-1), math.Inf(-1)}
	for _, s := range p {
		for _, pt := range s.P[:s.Op.points()] {
			lo.X = math.Min(lo.X, pt.X)
			lo.Y = math.Min(lo.Y, pt.Y)
			hi.X = math.Max(hi.X, pt.X)
			hi.Y = math.Max(hi.Y, pt.Y)
			ok = true
		}
	}
	return lo, hi, ok
}

func (o Op) points() int {
	switch o {
	case OpMove, OpLine:
		return 1
	case OpQuad:
		return 2
	case OpCubic:
		return 3
	}
	return 0
}

// ParsePath parses SVG path data (M L H V C S Q T A Z, upper and lower case)
// into absolute segments. Elliptical arcs become cubic curves.
func ParsePath(d string) (Path, error) {
	sc := &pathScanner{s: d}
	var (
		out     Path
		cur     Point
		start   Point
		ctrl    Point // last control point, for S and T reflection
		cmd     byte
		prev    byte
		started bool
		open    bool
	)

	for {
		c, ok := sc.command()
		if !ok {
			if sc.done() {
				break
			}
			if cmd == 0 {
				return nil, fmt.Errorf("%w: must start with a command at %d", ErrBadPath, sc.i)
			}
			if cmd == 'Z' || cmd == 'z' || !sc.hasNumber() {
				return nil, fmt.Errorf("%w: unexpected %q at %d", ErrBadPath, sc.s[sc.i], sc.i)
			}
			c = cmd
			switch c {
			case 'M':
				c = 'L'
			case 'm':
				c = 'l'
			}
		}
		cmd = c
		rel := c >= 'a'
		up := c &^ 0x20

		if up != 'M' && up != 'Z' && !open {
			if !started {
				return nil, fmt.Errorf("%w: must begin with moveto", ErrBadPath)
			}
			out = append(out, Segment{Op: OpMove, P: [3]Point{start}})
			open = true
		}

		abs := func(p Point) Point {
			if rel {
				return Point{cur.X + p.X, cur.Y + p.Y}
			}
			return p
		}

		switch up {
		case 'M':
			p, err := sc.point()
			if err != nil {
				return nil, err
			}
			cur = abs(p)
			start = cur
			out = append(out, Segment{Op: OpMove, P: [3]Point{cur}})
			started, open = true, true
		case 'L':
			p, err := sc.point()
			if err != nil {
				return nil, err
			}
			cur = abs(p)
			out = append(out, Segment{Op: OpLine, P: [3]Point{cur}})
		case 'H':
			x, err := sc.number()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur.X
			}
			cur = Point{x, cur.Y}
			out = append(out, Segment{Op: OpLine, P: [3]Point{cur}})
		case 'V':
			y, err := sc.number()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur.Y
			}
			cur = Point{cur.X, y}
			out = append(out, Segment{Op: OpLine, P: [3]Point{cur}})
		case 'C', 'S':
			var c1 Point
			if up == 'C' {
				p, err := sc.point()
				if err != nil {
					return nil, err
				}
				c1 = abs(p)
			} else {
				c1 = cur
				if pu := prev &^ 0x20; pu == 'C' || pu == 'S' {
					c1 = Point{2*cur.X - ctrl.X, 2*cur.Y - ctrl.Y}
				}
			}
			p2, err := sc.point()
			if err != nil {
				return nil, err
			}
			p3, err := sc.point()
			if err != nil {
				return nil, err
			}
			c2, end := abs(p2), abs(p3)
			out = append(out, Segment{Op: OpCubic, P: [3]Point{c1, c2, end}})
			ctrl, cur = c2, end
		case 'Q', 'T':
			var c1 Point
			if up == 'Q' {
				p, err := sc.point()
				if err != nil {
					return nil, err
				}
				c1 = abs(p)
			} else {
				c1 = cur
				if pu := prev &^ 0x20; pu == 'Q' || pu == 'T' {
					c1 = Point{2*cur.X - ctrl.X, 2*cur.Y - ctrl.Y}
				}
			}
			p, err := sc.point()
			if err != nil {
				return nil, err
			}
			end := abs(p)
			out = append(out, Segment{Op: OpQuad, P: [3]Point{c1, end}})
			ctrl, cur = c1, end
		case 'A':
			rx, err := sc.number()
			if err != nil {
				return nil, err
			}
			ry, err := sc.number()
			if err != nil {
				return nil, err
			}
			rot, err := sc.number()
			if err != nil {
				return nil, err
			}
			large, err := sc.flag()
			if err != nil {
				return nil, err
			}
			sweep, err := sc.flag()
			if err != nil {
				return nil, err
			}
			p, err := sc.point()
			if err != nil {
				return nil, err
			}
			end := abs(p)
			out = append(out, arcSegments(cur, rx, ry, rot, large, sweep, end)...)
			cur = end
		case 'Z':
			if open {
				out = append(out, Segment{Op: OpClose})
				open = false
			}
			cur = start
		default:
			return nil, fmt.Errorf("%w: unknown command %q", ErrBadPath, c)
		}
		prev = c
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadPath)
	}
	return out, nil
}

type pathScanner struct {
	s string
	i int
}

func (sc *pathScanner) skip() {
	for sc.i < len(sc.s) {
		switch sc.s[sc.i] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			sc.i++
		default:
			return
		}
	}
}

func (sc *pathScanner) done() bool {
	sc.skip()
	return sc.i >= len(sc.s)
}

func isCommand(c byte) bool {
	switch c &^ 0x20 {
	case 'M', 'L', 'H', 'V', 'C', 'S', 'Q', 'T', 'A', 'Z':
		return true
	}
	return false
}

func (sc *pathScanner) command() (byte, bool) {
	sc.skip()
	if sc.i < len(sc.s) && isCommand(sc.s[sc.i]) {
		c := sc.s[sc.i]
		sc.i++
		return c, true
	}
	return 0, false
}

func (sc *pathScanner) hasNumber() bool {
	sc.skip()
	if sc.i >= len(sc.s) {
		return false
	}
	c := sc.s[sc.i]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (sc *pathScanner) number() (float64, error) {
	sc.skip()
	begin := sc.i
	s := sc.s
	i := sc.i
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: expected number at %d", ErrBadPath, begin)
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '-' || s[j] == '+') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[begin:i], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadPath, err)
	}
	sc.i = i
	return v, nil
}

func (sc *pathScanner) point() (Point, error) {
	x, err := sc.number()
	if err != nil {
		return Point{}, err
	}
	y, err := sc.number()
	if err != nil {
		return Point{}, err
	}
	return Point{x, y}, nil
}

// flag reads an arc flag, which may be packed against the next token.
func (sc *pathScanner) flag() (bool, error) {
	sc.skip()
	if sc.i < len(sc.s) {
		switch sc.s[sc.i] {
		case '0':
			sc.i++
			return false, nil
		case '1':
			sc.i++
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: expected arc flag at %d", ErrBadPath, sc.i)
}

// arcSegments converts an SVG endpoint-parameterised arc to cubic segments of
// at most a quarter turn each.
func arcSegments(from Point, rx, ry, rotDeg float64, large, sweep bool, to Point) []Segment {
	if from == to {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return []Segment{{Op: OpLine, P: [3]Point{to}}}
	}
	phi := rotDeg * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)

	dx2 := (from.X - to.X) / 2
	dy2 := (from.Y - to.Y) / 2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	if lambda := x1p*x1p/(rx*rx) + y1p*y1p/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx
	cx := cosPhi*cxp - sinPhi*cyp + (from.X+to.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (from.Y+to.Y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	}
	theta := angle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	delta := angle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	mapPt := func(ux, uy float64) Point {
		return Point{
			X: cx + cosPhi*rx*ux - sinPhi*ry*uy,
			Y: cy + sinPhi*rx*ux + cosPhi*ry*uy,
		}
	}

	n := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := delta / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		t1 := theta + float64(i)*step
		t2 := t1 + step
		s1, c1 := math.Sincos(t1)
		s2, c2 := math.Sincos(t2)
		end := mapPt(c2, s2)
		if i == n-1 {
			end = to
		}
		segs = append(segs, Segment{Op: OpCubic, P: [3]Point{
			mapPt(c1-k*s1, s1+k*c1),
			mapPt(c2+k*s2, s2-k*c2),
			end,
		}})
	}
	return segs
}
