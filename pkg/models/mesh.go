// Package models holds triangle geometry and the per-format parsers that
// produce it. Meshes are in the local space of the node that owns them.
package models

import (
	"math"

	"github.com/taigrr/meshview/pkg/math3d"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounds is the local-space box, refreshed by CalculateBounds.
	Bounds math3d.Box3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2 // bottom-left origin
}

// Face is a triangle with an optional material index (-1 for none).
type Face struct {
	V        [3]int
	Material int
}

// Material is the appearance state the viewer toggles when highlighting.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA 0-1
	Emissive  [3]float64 // RGB 0-1, black when not glowing
	Metallic  float64
	Roughness float64
}

// DefaultMaterial is the neutral grey applied to formats without materials.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		BaseColor: [4]float64{0x88 / 255.0, 0x88 / 255.0, 0x88 / 255.0, 1},
		Roughness: 1,
	}
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:   name,
		Bounds: math3d.EmptyBox(),
	}
}

// CalculateBounds recomputes the local bounding box from vertex positions.
func (m *Mesh) CalculateBounds() {
	b := math3d.EmptyBox()
	for _, v := range m.Vertices {
		b = b.ExpandByPoint(v.Position)
	}
	m.Bounds = b
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.Bounds.Center()
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.Bounds.Size()
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the positions of face i.
func (m *Mesh) Triangle(i int) (a, b, c math3d.Vec3) {
	f := m.Faces[i].V
	return m.Vertices[f[0]].Position, m.Vertices[f[1]].Position, m.Vertices[f[2]].Position
}

func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	a := m.Vertices[f.V[0]].Position
	b := m.Vertices[f.V[1]].Position
	c := m.Vertices[f.V[2]].Position
	return b.Sub(a).Cross(c.Sub(a))
}

// CalculateNormals assigns flat face normals to each face's vertices.
// Shared vertices end up with the normal of the last face that touched them.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		n := m.faceNormal(f).Normalize()
		for _, vi := range f.V {
			m.Vertices[vi].Normal = n
		}
	}
}

// CalculateSmoothNormals averages area-weighted face normals per vertex.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}
	for _, f := range m.Faces {
		n := m.faceNormal(f)
		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(n)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform bakes mat into the vertex data and refreshes the bounds.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		Bounds:    m.Bounds,
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Faces, m.Faces)
	copy(c.Materials, m.Materials)
	return c
}

// faceKey sorts the three indices so that any winding of the same triangle
// maps to one key.
func faceKey(v0, v1, v2 int) [3]int {
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	if v1 > v2 {
		v1, v2 = v2, v1
	}
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	return [3]int{v0, v1, v2}
}

// Clean drops degenerate and duplicate faces, then compacts the vertex list.
// It returns the number of faces removed.
func (m *Mesh) Clean() int {
	removed := m.RemoveDegenerateFaces() + m.DeduplicateFaces()
	m.RemoveUnreferencedVertices()
	m.CalculateBounds()
	return removed
}

// DeduplicateFaces keeps the first of any faces sharing the same three
// vertices, regardless of winding.
func (m *Mesh) DeduplicateFaces() int {
	seen := make(map[[3]int]struct{}, len(m.Faces))
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		k := faceKey(f.V[0], f.V[1], f.V[2])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, f)
	}
	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// RemoveDegenerateFaces drops faces with repeated indices or near-zero area.
func (m *Mesh) RemoveDegenerateFaces() int {
	const minArea = 1e-10
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		if f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[0] == f.V[2] {
			continue
		}
		if m.faceNormal(f).Len()*0.5 <= minArea {
			continue
		}
		kept = append(kept, f)
	}
	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// RemoveUnreferencedVertices compacts the vertex list and rewrites face indices.
func (m *Mesh) RemoveUnreferencedVertices() {
	if len(m.Vertices) == 0 {
		return
	}
	remap := make([]int, len(m.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	verts := make([]MeshVertex, 0, len(m.Vertices))
	for fi := range m.Faces {
		for k, vi := range m.Faces[fi].V {
			if remap[vi] < 0 {
				remap[vi] = len(verts)
				verts = append(verts, m.Vertices[vi])
			}
			m.Faces[fi].V[k] = remap[vi]
		}
	}
	m.Vertices = verts
}

// meshBuilder welds vertices by quantized position while a parser appends
// triangles.
type meshBuilder struct {
	mesh      *Mesh
	tolerance float64
	index     map[[3]int64]int
}

func newMeshBuilder(name string, tolerance float64) *meshBuilder {
	if tolerance <= 0 {
		tolerance = 1e-9
	}
	return &meshBuilder{
		mesh:      NewMesh(name),
		tolerance: tolerance,
		index:     make(map[[3]int64]int),
	}
}

func (b *meshBuilder) vertex(v MeshVertex) int {
	s := 1 / b.tolerance
	key := [3]int64{
		int64(math.Round(v.Position.X * s)),
		int64(math.Round(v.Position.Y * s)),
		int64(math.Round(v.Position.Z * s)),
	}
	if i, ok := b.index[key]; ok {
		return i
	}
	i := len(b.mesh.Vertices)
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	b.index[key] = i
	return i
}

func (b *meshBuilder) triangle(a, c, d int, material int) {
	b.mesh.Faces = append(b.mesh.Faces, Face{V: [3]int{a, c, d}, Material: material})
}

func (b *meshBuilder) finish() *Mesh {
	b.mesh.CalculateBounds()
	return b.mesh
}
