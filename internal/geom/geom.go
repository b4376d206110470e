// Package geom holds the small amount of continuous-space geometry the
// simulation needs: points, axis-aligned rectangles and circles.
package geom

import "math"

// Point is a position or vector in world space.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by k on both axes.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the vector length.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// IsZero reports whether both components are zero.
func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// WithLength returns p rescaled to length l. The zero vector stays zero.
func (p Point) WithLength(l float64) Point {
	n := p.Len()
	if n == 0 {
		return Point{}
	}
	return p.Scale(l / n)
}

// Lerp returns the point at fraction alpha along the segment from p to q.
// Alpha is not clamped, so values above 1 extrapolate past q.
func (p Point) Lerp(q Point, alpha float64) Point {
	return Point{p.X + (q.X-p.X)*alpha, p.Y + (q.Y-p.Y)*alpha}
}

// Signum returns the per-axis sign of p (-1, 0 or 1).
func (p Point) Signum() Point {
	return Point{Sign(p.X), Sign(p.Y)}
}

// AngleDeg returns the direction of p in degrees, counter-clockwise from +X.
func (p Point) AngleDeg() float64 {
	a := math.Atan2(p.Y, p.X) * 180 / math.Pi
	if a < 0 {
		a += 360
	}
	return a
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Rect is an axis-aligned rectangle anchored at its bottom-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Min returns the anchor corner.
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Center returns the rectangle centre.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Overlaps reports whether r and o share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Circle is a disc used for sight and hearing checks.
type Circle struct {
	Center Point
	Radius float64
}

// Contains reports whether p lies inside the circle (boundary inclusive).
func (c Circle) Contains(p Point) bool {
	d := p.Sub(c.Center)
	return d.X*d.X+d.Y*d.Y <= c.Radius*c.Radius
}
