package geom

import (
	"math"
	"testing"
)

func TestConnector_ControlOffsets(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Point
		wantC1 Point
		wantC2 Point
	}{
		{
			name:   "short wire uses minimum bend",
			a:      Pt(0, 0),
			b:      Pt(20, 10),
			wantC1: Pt(40, 0),
			wantC2: Pt(-20, 10),
		},
		{
			name:   "medium wire uses half the span",
			a:      Pt(0, 0),
			b:      Pt(300, 50),
			wantC1: Pt(150, 0),
			wantC2: Pt(150, 50),
		},
		{
			name:   "long wire caps at maximum bend",
			a:      Pt(0, 0),
			b:      Pt(1000, 0),
			wantC1: Pt(200, 0),
			wantC2: Pt(800, 0),
		},
		{
			name:   "backwards wire mirrors outward",
			a:      Pt(300, 0),
			b:      Pt(0, 40),
			wantC1: Pt(150, 0),
			wantC2: Pt(150, 40),
		},
		{
			name:   "backwards short wire",
			a:      Pt(100, 0),
			b:      Pt(90, 0),
			wantC1: Pt(60, 0),
			wantC2: Pt(130, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Connector(tt.a, tt.b, DefaultBend)
			if c.P0 != tt.a || c.P1 != tt.b {
				t.Fatalf("endpoints = %v,%v want %v,%v", c.P0, c.P1, tt.a, tt.b)
			}
			if c.C1 != tt.wantC1 {
				t.Errorf("C1 = %v, want %v", c.C1, tt.wantC1)
			}
			if c.C2 != tt.wantC2 {
				t.Errorf("C2 = %v, want %v", c.C2, tt.wantC2)
			}
		})
	}
}

func TestCubic_SVG(t *testing.T) {
	c := Connector(Pt(10, 20), Pt(110.5, 60), DefaultBend)
	want := "M 10 20 C 60.25 20, 60.25 60, 110.5 60"
	if got := c.SVG(); got != want {
		t.Errorf("SVG() = %q, want %q", got, want)
	}
}

func TestCubic_AtEndpoints(t *testing.T) {
	c := Connector(Pt(-5, 3), Pt(70, -40), DefaultBend)
	if p := c.At(0); p != c.P0 {
		t.Errorf("At(0) = %v, want %v", p, c.P0)
	}
	end := c.At(1)
	if math.Abs(end.X-c.P1.X) > 1e-9 || math.Abs(end.Y-c.P1.Y) > 1e-9 {
		t.Errorf("At(1) = %v, want %v", end, c.P1)
	}
	if n := len(c.Sample(8)); n != 9 {
		t.Errorf("Sample(8) returned %d points, want 9", n)
	}
}

func TestRect(t *testing.T) {
	r := RectXYWH(10, 10, 100, 28)
	if !r.Contains(Pt(10, 10)) {
		t.Error("min corner should be inside")
	}
	if r.Contains(Pt(110, 20)) {
		t.Error("max edge should be outside")
	}
	if c := r.Center(); c != Pt(60, 24) {
		t.Errorf("Center() = %v", c)
	}
	if got := Clamp(5, 0.4, 2.5); got != 2.5 {
		t.Errorf("Clamp high = %v", got)
	}
	if got := FormatFloat(-0.0001); got != "0" {
		t.Errorf("FormatFloat(-0.0001) = %q, want 0", got)
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		vs   []float64
		want bool
	}{
		{nil, true},
		{[]float64{0, -3.5, 1e300}, true},
		{[]float64{1, math.NaN()}, false},
		{[]float64{math.Inf(1)}, false},
		{[]float64{math.Inf(-1), 2}, false},
	}
	for _, tt := range tests {
		if got := Finite(tt.vs...); got != tt.want {
			t.Errorf("Finite(%v) = %v, want %v", tt.vs, got, tt.want)
		}
	}
}
