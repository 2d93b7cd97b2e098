// Package geom holds the pure geometry used by the editor: points, rectangles
// and the cubic connector curves drawn for wires. Nothing in here knows about
// a rendering surface.
package geom

import "math"

// Point is a 2D position or vector
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales both components by f
func (p Point) Mul(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Div divides both components by f
func (p Point) Div(f float64) Point {
	return Point{X: p.X / f, Y: p.Y / f}
}

// Dist2 returns the squared distance between p and q
func (p Point) Dist2(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Dist returns the distance between p and q
func (p Point) Dist(q Point) float64 {
	return math.Sqrt(p.Dist2(q))
}

// Rect is an axis-aligned rectangle, Min inclusive and Max exclusive
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectXYWH builds a rectangle from its origin and size
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Min: Point{X: x, Y: y}, Max: Point{X: x + w, Y: y + h}}
}

// Width of the rectangle
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height of the rectangle
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of the rectangle
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Translate moves the rectangle by d
func (r Rect) Translate(d Point) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

// Finite reports whether every value is neither NaN nor infinite
func Finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
