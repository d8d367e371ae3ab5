package math3d

// Vec4 is a homogeneous coordinate: W is 1 for points, 0 for directions.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// Point lifts p to homogeneous form.
func Point(p Vec3) Vec4 {
	return Vec4{p.X, p.Y, p.Z, 1}
}

// XYZ drops W without dividing.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// PerspectiveDivide divides by W. A zero W leaves XYZ as is.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return v.XYZ()
	}
	return v.XYZ().Scale(1 / v.W)
}

// Unproject maps a device-space point at depth z (-1 near, 1 far) back to
// world space. inv is the inverse of the view-projection matrix.
func Unproject(inv Mat4, ndc Vec2, z float64) Vec3 {
	return inv.MulVec4(V4(ndc.X, ndc.Y, z, 1)).PerspectiveDivide()
}
