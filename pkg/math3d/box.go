package math3d

import "math"

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// EmptyBox returns a box that contains nothing; expanding it by any point
// yields a degenerate box at that point.
func EmptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint grows the box to include p.
func (b Box3) ExpandByPoint(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both.
func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return Box3{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the midpoint. An empty box has its center at the origin.
func (b Box3) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// MaxDim returns the largest extent.
func (b Box3) MaxDim() float64 {
	return b.Size().MaxComponent()
}

// Contains reports whether p lies inside or on the box.
func (b Box3) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Corners returns the eight corners of the box.
func (b Box3) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// Transform returns the axis-aligned box enclosing b after applying m.
func (b Box3) Transform(m Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for _, c := range b.Corners() {
		out = out.ExpandByPoint(m.MulVec3(c))
	}
	return out
}

// Translate shifts the box by v.
func (b Box3) Translate(v Vec3) Box3 {
	if b.IsEmpty() {
		return b
	}
	return Box3{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}
