package physics

import "math"

type Vec2 struct{ Xv, Yv float64 }

func V2(x, y float64) Vec2 { return Vec2{Xv: x, Yv: y} }

func (v Vec2) X() float64 { return v.Xv }
func (v Vec2) Y() float64 { return v.Yv }

func (v Vec2) Add(o Vec2) Vec2           { return Vec2{v.Xv + o.Xv, v.Yv + o.Yv} }
func (v Vec2) Sub(o Vec2) Vec2           { return Vec2{v.Xv - o.Xv, v.Yv - o.Yv} }
func (v Vec2) Scale(f float64) Vec2      { return Vec2{v.Xv * f, v.Yv * f} }
func (v Vec2) Len() float64              { return math.Hypot(v.Xv, v.Yv) }
func (v Vec2) SqrLen() float64           { return v.Xv*v.Xv + v.Yv*v.Yv }
func (v Vec2) DistanceTo(o Vec2) float64 { return Distance2(v.Xv, v.Yv, o.Xv, o.Yv) }

// Normalize returns the unit vector in the direction of v, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// ClampLen limits the length of v to maxLen, keeping its direction.
func (v Vec2) ClampLen(maxLen float64) Vec2 {
	if v.SqrLen() > maxLen*maxLen {
		return v.Normalize().Scale(maxLen)
	}
	return v
}

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(x1, y1, x2, y2 float64) float64 { return math.Hypot(x2-x1, y2-y1) }
