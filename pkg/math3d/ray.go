package math3d

import "math"

// Ray is a half-line from Origin along the unit direction Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// IntersectBox runs the slab test and returns the entry distance.
func (r Ray) IntersectBox(b Box3) (float64, bool) {
	if b.IsEmpty() {
		return 0, false
	}
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	for i := range 3 {
		o := r.Origin.Component(i)
		d := r.Dir.Component(i)
		lo := b.Min.Component(i)
		hi := b.Max.Component(i)

		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}

	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		// Origin is inside the box.
		return 0, true
	}
	return tmin, true
}

// IntersectTriangle returns the distance to triangle (a, b, c) using
// Möller–Trumbore. Both faces are hit.
func (r Ray) IntersectTriangle(a, b, c Vec3) (float64, bool) {
	const eps = 1e-9
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < eps {
		return 0, false
	}
	return t, true
}
