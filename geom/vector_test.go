package geom

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vector2
		want Vector2
	}{
		{"zero stays zero", V(0, 0), V(0, 0)},
		{"axis", V(5, 0), V(1, 0)},
		{"diagonal", V(3, 4), V(0.6, 0.8)},
		{"negative", V(0, -2), V(0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("%v.Normalize() = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(4, 6)

	if got := a.Add(b); got != V(5, 8) {
		t.Errorf("Add = %v, want (5,8)", got)
	}
	if got := b.Sub(a); got != V(3, 4) {
		t.Errorf("Sub = %v, want (3,4)", got)
	}
	if got := a.Scale(3); got != V(3, 6) {
		t.Errorf("Scale = %v, want (3,6)", got)
	}
	if got := b.Sub(a).Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
	if got := a.DistanceTo(b); got != 5 {
		t.Errorf("DistanceTo = %v, want 5", got)
	}
	if got := a.Dot(b); got != 16 {
		t.Errorf("Dot = %v, want 16", got)
	}
}

func TestLimit(t *testing.T) {
	if got := V(30, 40).Limit(5); math.Abs(got.Len()-5) > 1e-9 {
		t.Errorf("Limit length = %v, want 5", got.Len())
	}
	if got := V(1, 1).Limit(5); got != V(1, 1) {
		t.Errorf("Limit below max changed vector: %v", got)
	}
}

func TestClamp(t *testing.T) {
	b := Bounds{Width: 800, Height: 600}
	tests := []struct {
		in, want Vector2
	}{
		{V(-10, 50), V(0, 50)},
		{V(900, 700), V(800, 600)},
		{V(400, -1), V(400, 0)},
		{V(800, 600), V(800, 600)},
	}

	for _, tt := range tests {
		got := tt.in.Clamp(b)
		if got != tt.want {
			t.Errorf("%v.Clamp = %v, want %v", tt.in, got, tt.want)
		}
		if !b.Contains(got) {
			t.Errorf("clamped %v outside bounds", got)
		}
	}
}

func TestFromAngle(t *testing.T) {
	v := FromAngle(math.Pi / 2)
	if math.Abs(v.X) > 1e-9 || math.Abs(v.Y-1) > 1e-9 {
		t.Errorf("FromAngle(pi/2) = %v, want (0,1)", v)
	}
	if math.Abs(v.Angle()-math.Pi/2) > 1e-9 {
		t.Errorf("Angle = %v, want pi/2", v.Angle())
	}
}
