// Package math3d provides the vector, matrix, box and ray types shared by the
// loaders, the scene graph and the viewport controller.
package math3d

import (
	"encoding/json"
	"fmt"
	"math"
)

// Vec3 represents a 3D vector or point.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Zero3 returns the zero vector.
func Zero3() Vec3 {
	return Vec3{}
}

// Up is the world up axis.
func Up() Vec3 {
	return Vec3{0, 1, 0}
}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns a * s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Mul returns the component-wise product.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Dot returns a · b.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the length of the vector.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.LenSq())
}

// LenSq returns the squared length.
func (a Vec3) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y + a.Z*a.Z
}

// Normalize returns the unit vector, or the zero vector if a has no length.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Negate returns -a.
func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

// Distance returns the distance between two points.
func (a Vec3) Distance(b Vec3) float64 {
	return a.Sub(b).Len()
}

// Lerp interpolates between a and b. t=0 yields a, t=1 yields b up to
// rounding; callers that need the exact endpoint should assign b.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// Min returns the component-wise minimum.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// Max returns the component-wise maximum.
func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// MaxComponent returns the largest of X, Y and Z.
func (a Vec3) MaxComponent() float64 {
	return math.Max(a.X, math.Max(a.Y, a.Z))
}

// Component returns X, Y or Z for i = 0, 1, 2.
func (a Vec3) Component(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// ApplyAxisAngle rotates a about a unit axis by angle radians (Rodrigues).
func (a Vec3) ApplyAxisAngle(axis Vec3, angle float64) Vec3 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return a.Scale(cos).
		Add(axis.Cross(a).Scale(sin)).
		Add(axis.Scale(axis.Dot(a) * (1 - cos)))
}

// ApproxEqual reports whether a and b differ by at most eps per component.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

// Array returns the vector as [x, y, z].
func (a Vec3) Array() [3]float64 {
	return [3]float64{a.X, a.Y, a.Z}
}

// FromArray builds a Vec3 from [x, y, z].
func FromArray(v [3]float64) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// MarshalJSON encodes the vector as [x, y, z].
func (a Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Array())
}

// UnmarshalJSON accepts [x, y, z] or an {"x","y","z"} object.
func (a *Vec3) UnmarshalJSON(data []byte) error {
	var arr [3]float64
	if err := json.Unmarshal(data, &arr); err == nil {
		*a = FromArray(arr)
		return nil
	}
	var obj struct {
		X, Y, Z *float64
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("vec3: %w", err)
	}
	if obj.X == nil || obj.Y == nil || obj.Z == nil {
		return fmt.Errorf("vec3: missing component in %s", data)
	}
	*a = Vec3{*obj.X, *obj.Y, *obj.Z}
	return nil
}
