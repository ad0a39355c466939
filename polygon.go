package glyphmesh

import (
	"math"
)

// Winding is the direction in which a closed contour is traversed, with the y-axis pointing up.
type Winding int

// see Winding
const (
	CounterClockwise Winding = iota
	Clockwise
)

// Opposite returns the reverse winding.
func (w Winding) Opposite() Winding {
	if w == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

func (w Winding) String() string {
	if w == Clockwise {
		return "CW"
	}
	return "CCW"
}

// Polygon is a closed contour, the last point connects to the first.
type Polygon []Point

// SignedArea returns the polygon's area, positive for counter clockwise and negative for clockwise polygons.
func (p Polygon) SignedArea() float64 {
	a := 0.0
	for i := range p {
		a += p[i].PerpDot(p[(i+1)%len(p)])
	}
	return a / 2.0
}

// Area returns the polygon's absolute area.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Winding returns the direction of the polygon by the sign of its area.
func (p Polygon) Winding() Winding {
	if p.SignedArea() < 0.0 {
		return Clockwise
	}
	return CounterClockwise
}

// Reverse returns the polygon with the opposite winding.
func (p Polygon) Reverse() Polygon {
	q := make(Polygon, len(p))
	for i := range p {
		q[len(p)-1-i] = p[i]
	}
	return q
}

// FillCount returns the number of times the test point is enclosed by the polygon. Counter clockwise enclosures are counted positively and clockwise enclosures negatively.
func (p Polygon) FillCount(test Point) int {
	if len(p) == 0 {
		return 0
	}
	count := 0
	prevCoord := p[len(p)-1]
	for _, coord := range p {
		// see https://wrf.ecse.rpi.edu//Research/Short_Notes/pnpoly.html
		if (test.Y < coord.Y) != (test.Y < prevCoord.Y) &&
			test.X < (prevCoord.X-coord.X)*(test.Y-coord.Y)/(prevCoord.Y-coord.Y)+coord.X {
			if prevCoord.Y < coord.Y {
				count++
			} else {
				count--
			}
		}
		prevCoord = coord
	}
	return count
}

// Contains returns true if the test point lies in the interior of the polygon.
func (p Polygon) Contains(test Point) bool {
	return p.FillCount(test) != 0
}

// ContainsPolygon returns true if all points of q lie in the interior of p or on a shared vertex.
func (p Polygon) ContainsPolygon(q Polygon) bool {
	inside := false
	for _, pt := range q {
		if p.hasVertex(pt) {
			continue
		} else if !p.Contains(pt) {
			return false
		}
		inside = true
	}
	return inside
}

func (p Polygon) hasVertex(q Point) bool {
	for _, pt := range p {
		if pt.Equals(q) {
			return true
		}
	}
	return false
}

// Clean removes consecutive duplicate points, including a closing point equal to the first.
func (p Polygon) Clean() Polygon {
	q := make(Polygon, 0, len(p))
	for _, pt := range p {
		if len(q) == 0 || !q[len(q)-1].Equals(pt) {
			q = append(q, pt)
		}
	}
	for 1 < len(q) && q[len(q)-1].Equals(q[0]) {
		q = q[:len(q)-1]
	}
	return q
}
