package glyphmesh

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for geometric comparisons.
const Epsilon = 1e-10

// equal returns true if a and b are equal with tolerance Epsilon.
func equal(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// angleNorm returns the angle theta in the range [0,2PI).
func angleNorm(theta float64) float64 {
	theta = math.Mod(theta, 2.0*math.Pi)
	if theta < 0.0 {
		theta += 2.0 * math.Pi
	}
	return theta
}

////////////////////////////////////////////////////////////////

// Point is a coordinate in 2D space, in font units for glyph meshes.
type Point struct {
	X, Y float64
}

// Equals returns true if P and Q are equal with tolerance Epsilon.
func (p Point) Equals(q Point) bool {
	return equal(p.X, q.X) && equal(p.Y, q.Y)
}

// Add adds Q to P.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub subtracts Q from P.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul multiplies x and y by f.
func (p Point) Mul(f float64) Point {
	return Point{f * p.X, f * p.Y}
}

// Dot returns the dot product between OP and OQ, ie. zero if perpendicular and |OP|*|OQ| if aligned.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// PerpDot returns the perp dot product between OP and OQ, ie. zero if aligned and |OP|*|OQ| if perpendicular.
func (p Point) PerpDot(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// AngleBetween returns the angle between OP and OQ, positive when Q is counter clockwise from P.
func (p Point) AngleBetween(q Point) float64 {
	return math.Atan2(p.PerpDot(q), p.Dot(q))
}

// Interpolate returns a point on PQ that is linearly interpolated by t, ie. t=0 returns P and t=1 returns Q.
func (p Point) Interpolate(q Point, t float64) Point {
	return Point{(1-t)*p.X + t*q.X, (1-t)*p.Y + t*q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("[%g; %g]", p.X, p.Y)
}

////////////////////////////////////////////////////////////////

// orient returns twice the signed area of triangle ABC, positive when counter clockwise.
func orient(a, b, c Point) float64 {
	return b.Sub(a).PerpDot(c.Sub(a))
}

func orientSign(a, b, c Point) int {
	o := orient(a, b, c)
	if o < -Epsilon {
		return -1
	} else if Epsilon < o {
		return 1
	}
	return 0
}

// interiorAngle returns the angle at curr on the side where the polygon's interior lies, in [0,2PI). A convex vertex has an angle below PI.
func interiorAngle(prev, curr, next Point, winding Winding) float64 {
	a, b := prev.Sub(curr), next.Sub(curr)
	if winding == Clockwise {
		a, b = b, a
	}
	return angleNorm(b.AngleBetween(a))
}

// inWedge returns true if the direction from curr to q lies strictly within the interior angle at curr.
func inWedge(prev, curr, next, q Point, winding Winding, margin float64) bool {
	a, b, d := prev.Sub(curr), next.Sub(curr), q.Sub(curr)
	if winding == Clockwise {
		a, b = b, a
	}
	theta := angleNorm(b.AngleBetween(a))
	phi := angleNorm(b.AngleBetween(d))
	return margin < phi && phi < theta-margin
}

// inTriangle returns true if p lies inside or on the boundary of triangle ABC.
func inTriangle(p, a, b, c Point) bool {
	d0, d1, d2 := orientSign(a, b, p), orientSign(b, c, p), orientSign(c, a, p)
	neg := d0 < 0 || d1 < 0 || d2 < 0
	pos := 0 < d0 || 0 < d1 || 0 < d2
	return !(neg && pos)
}

// inAngle returns true if q lies strictly within the angle at V of triangle VUW, where sign is the triangle's orientation.
func inAngle(v, u, w, q Point, sign int) bool {
	return 0 < sign*orientSign(v, u, q) && 0 < sign*orientSign(v, q, w)
}

// onSegment returns true if p, known to be collinear with AB, lies within its extent.
func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X)-Epsilon <= p.X && p.X <= math.Max(a.X, b.X)+Epsilon &&
		math.Min(a.Y, b.Y)-Epsilon <= p.Y && p.Y <= math.Max(a.Y, b.Y)+Epsilon
}

// segmentsCross returns true if AB and CD cross at a single point interior to both.
func segmentsCross(a, b, c, d Point) bool {
	return orientSign(a, b, c)*orientSign(a, b, d) < 0 && orientSign(c, d, a)*orientSign(c, d, b) < 0
}

// segmentsIntersect returns true if AB and CD have any point in common, including touching end points and collinear overlap.
func segmentsIntersect(a, b, c, d Point) bool {
	o0, o1 := orientSign(a, b, c), orientSign(a, b, d)
	o2, o3 := orientSign(c, d, a), orientSign(c, d, b)
	if o0*o1 < 0 && o2*o3 < 0 {
		return true
	}
	return o0 == 0 && onSegment(a, b, c) || o1 == 0 && onSegment(a, b, d) ||
		o2 == 0 && onSegment(c, d, a) || o3 == 0 && onSegment(c, d, b)
}
