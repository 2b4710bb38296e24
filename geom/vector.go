// Package geom provides 2D vector math for agent positions and headings.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector2 is a 2D point or direction. Methods return new values.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vector2{X: x, Y: y}.
func V(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// FromAngle returns the unit vector pointing at angle radians.
func FromAngle(angle float64) Vector2 {
	return Vector2{X: math.Cos(angle), Y: math.Sin(angle)}
}

func (v Vector2) r2() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

func fromR2(v r2.Vec) Vector2 {
	return Vector2{X: v.X, Y: v.Y}
}

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 {
	return fromR2(r2.Add(v.r2(), o.r2()))
}

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return fromR2(r2.Sub(v.r2(), o.r2()))
}

// Scale returns v * f.
func (v Vector2) Scale(f float64) Vector2 {
	return fromR2(r2.Scale(f, v.r2()))
}

// Len returns the Euclidean length of v.
func (v Vector2) Len() float64 {
	return r2.Norm(v.r2())
}

// IsZero reports whether both components are zero.
func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalize returns the unit vector in the direction of v.
// A zero vector is returned unchanged.
func (v Vector2) Normalize() Vector2 {
	if v.IsZero() {
		return v
	}
	return fromR2(r2.Unit(v.r2()))
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vector2) DistanceTo(o Vector2) float64 {
	return r2.Norm(r2.Sub(v.r2(), o.r2()))
}

// Dot returns the dot product of v and o.
func (v Vector2) Dot(o Vector2) float64 {
	return r2.Dot(v.r2(), o.r2())
}

// Limit returns v scaled down so its length does not exceed max.
func (v Vector2) Limit(max float64) Vector2 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// Angle returns the heading of v in radians.
func (v Vector2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Clamp returns v with each component clamped into b.
func (v Vector2) Clamp(b Bounds) Vector2 {
	return Vector2{X: clamp(v.X, 0, b.Width), Y: clamp(v.Y, 0, b.Height)}
}

// Bounds is the rectangular field [0,Width]×[0,Height].
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether v lies inside the field, edges included.
func (b Bounds) Contains(v Vector2) bool {
	return v.X >= 0 && v.X <= b.Width && v.Y >= 0 && v.Y <= b.Height
}

// Center returns the midpoint of the field.
func (b Bounds) Center() Vector2 {
	return Vector2{X: b.Width / 2, Y: b.Height / 2}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
