package spatial

import (
	"math"

	"github.com/golang/geo/r3"
)

// Quaternion is a rotation in WXYZ order. Operations that represent
// orientations expect unit quaternions.
type Quaternion struct {
	W, X, Y, Z float64
}

func Identity() Quaternion {
	return Quaternion{W: 1}
}

// FromAxisAngle builds a rotation of angle radians about axis.
func FromAxisAngle(axis r3.Vector, angle float64) Quaternion {
	n := axis.Norm()
	if n == 0 {
		return Identity()
	}
	s := math.Sin(angle/2) / n
	return Quaternion{
		W: math.Cos(angle / 2),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Inverse of a unit quaternion is its conjugate.
func (q Quaternion) Inverse() Quaternion {
	n2 := q.Dot(q)
	if n2 == 0 {
		return Identity()
	}
	c := q.Conjugate()
	return Quaternion{W: c.W / n2, X: c.X / n2, Y: c.Y / n2, Z: c.Z / n2}
}

func (q Quaternion) Dot(r Quaternion) float64 {
	return q.W*r.W + q.X*r.X + q.Y*r.Y + q.Z*r.Z
}

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.Dot(q))
}

func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n == 0 {
		return Identity()
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Rotate applies the rotation to v.
func (q Quaternion) Rotate(v r3.Vector) r3.Vector {
	p := Quaternion{X: v.X, Y: v.Y, Z: v.Z}
	r := q.Mul(p).Mul(q.Conjugate())
	return r3.Vector{X: r.X, Y: r.Y, Z: r.Z}
}

// Slerp interpolates from a to b by t along the shorter arc. For nearly
// parallel inputs it degrades to linear interpolation.
func Slerp(a, b Quaternion, t float64) Quaternion {
	dot := a.Dot(b)
	if dot < 0 {
		b = Quaternion{W: -b.W, X: -b.X, Y: -b.Y, Z: -b.Z}
		dot = -dot
	}
	if dot > 0.9995 {
		q := Quaternion{
			W: a.W + t*(b.W-a.W),
			X: a.X + t*(b.X-a.X),
			Y: a.Y + t*(b.Y-a.Y),
			Z: a.Z + t*(b.Z-a.Z),
		}
		return q.Normalize()
	}
	theta := math.Acos(dot)
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return Quaternion{
		W: wa*a.W + wb*b.W,
		X: wa*a.X + wb*b.X,
		Y: wa*a.Y + wb*b.Y,
		Z: wa*a.Z + wb*b.Z,
	}
}

func (q Quaternion) IsValid() bool {
	for _, v := range []float64{q.W, q.X, q.Y, q.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
