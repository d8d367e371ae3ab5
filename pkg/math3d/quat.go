package math3d

import "math"

// Quat is a rotation quaternion (x, y, z, w), the layout glTF uses.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat returns the no-rotation quaternion.
func IdentityQuat() Quat {
	return Quat{0, 0, 0, 1}
}

// QuatFromAxisAngle builds a rotation of angle radians about a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s := math.Sin(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, math.Cos(angle / 2)}
}

// Normalize returns the unit quaternion.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return IdentityQuat()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Mat4 converts q to a rotation matrix.
func (q Quat) Mat4() Mat4 {
	return QuatToMat4(q.X, q.Y, q.Z, q.W)
}

// Slerp spherically interpolates from q to r.
func (q Quat) Slerp(r Quat, t float64) Quat {
	dot := q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W
	if dot < 0 {
		r = Quat{-r.X, -r.Y, -r.Z, -r.W}
		dot = -dot
	}
	if dot > 0.9995 {
		return Quat{
			q.X + (r.X-q.X)*t,
			q.Y + (r.Y-q.Y)*t,
			q.Z + (r.Z-q.Z)*t,
			q.W + (r.W-q.W)*t,
		}.Normalize()
	}
	theta := math.Acos(dot)
	sin := math.Sin(theta)
	a := math.Sin((1-t)*theta) / sin
	b := math.Sin(t*theta) / sin
	return Quat{
		q.X*a + r.X*b,
		q.Y*a + r.Y*b,
		q.Z*a + r.Z*b,
		q.W*a + r.W*b,
	}
}
