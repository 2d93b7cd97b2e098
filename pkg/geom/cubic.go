package geom

import (
	"math"
	"strconv"
	"strings"
)

// Bend controls how far a connector's control points reach out horizontally
// from each endpoint: clamp(|dx|*Factor, Min, Max).
type Bend struct {
	Factor float64 `yaml:"bendFactor" toml:"bend_factor"`
	Min    float64 `yaml:"minBend" toml:"min_bend"`
	Max    float64 `yaml:"maxBend" toml:"max_bend"`
}

// DefaultBend keeps short wires from looking cramped and long ones from
// overshooting.
var DefaultBend = Bend{Factor: 0.5, Min: 40, Max: 200}

// Cubic is a cubic Bézier segment
type Cubic struct {
	P0 Point `json:"p0"`
	C1 Point `json:"c1"`
	C2 Point `json:"c2"`
	P1 Point `json:"p1"`
}

// Connector routes a wire from a to b. The control points leave each endpoint
// horizontally, mirrored toward the other endpoint.
func Connector(a, b Point, bend Bend) Cubic {
	dx := Clamp(math.Abs(b.X-a.X)*bend.Factor, bend.Min, bend.Max)
	if b.X < a.X {
		dx = -dx
	}
	return Cubic{
		P0: a,
		C1: Point{X: a.X + dx, Y: a.Y},
		C2: Point{X: b.X - dx, Y: b.Y},
		P1: b,
	}
}

// At evaluates the curve at t in [0, 1]
func (c Cubic) At(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return Point{
		X: a*c.P0.X + b*c.C1.X + d*c.C2.X + e*c.P1.X,
		Y: a*c.P0.Y + b*c.C1.Y + d*c.C2.Y + e*c.P1.Y,
	}
}

// Sample returns n+1 evenly spaced points along the curve, endpoints included
func (c Cubic) Sample(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, c.At(float64(i)/float64(n)))
	}
	return pts
}

// SVG formats the curve as path data: "M x y C c1x c1y, c2x c2y, x y"
func (c Cubic) SVG() string {
	var b strings.Builder
	b.WriteString("M ")
	writePair(&b, c.P0)
	b.WriteString(" C ")
	writePair(&b, c.C1)
	b.WriteString(", ")
	writePair(&b, c.C2)
	b.WriteString(", ")
	writePair(&b, c.P1)
	return b.String()
}

func writePair(b *strings.Builder, p Point) {
	b.WriteString(FormatFloat(p.X))
	b.WriteByte(' ')
	b.WriteString(FormatFloat(p.Y))
}

// FormatFloat renders v with at most three decimals and no trailing zeros
func FormatFloat(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
