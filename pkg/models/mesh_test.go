package models

import (
	"testing"

	"github.com/taigrr/meshview/pkg/math3d"
)

func quad() *Mesh {
	m := NewMesh("quad")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 0, 0)},
		{Position: math3d.V3(0, 1, 0)},
		{Position: math3d.V3(1, 1, 0)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: -1},
		{V: [3]int{1, 3, 2}, Material: -1},
	}
	m.CalculateBounds()
	return m
}

func TestFaceKey(t *testing.T) {
	tests := []struct {
		v0, v1, v2 int
		want       [3]int
	}{
		{0, 1, 2, [3]int{0, 1, 2}},
		{2, 1, 0, [3]int{0, 1, 2}},
		{1, 2, 0, [3]int{0, 1, 2}},
		{5, 10, 3, [3]int{3, 5, 10}},
	}
	for _, tt := range tests {
		if got := faceKey(tt.v0, tt.v1, tt.v2); got != tt.want {
			t.Errorf("faceKey(%d, %d, %d) = %v, want %v", tt.v0, tt.v1, tt.v2, got, tt.want)
		}
	}
}

func TestMeshBounds(t *testing.T) {
	m := quad()
	if m.Bounds.Min != math3d.V3(0, 0, 0) || m.Bounds.Max != math3d.V3(1, 1, 0) {
		t.Errorf("Bounds = %v, want (0,0,0)-(1,1,0)", m.Bounds)
	}
	if got := m.Center(); got != math3d.V3(0.5, 0.5, 0) {
		t.Errorf("Center() = %v, want (0.5,0.5,0)", got)
	}
	if !NewMesh("empty").Bounds.IsEmpty() {
		t.Error("new mesh bounds should be empty")
	}
}

func TestMeshClean(t *testing.T) {
	m := quad()
	m.Vertices = append(m.Vertices, MeshVertex{Position: math3d.V3(9, 9, 9)}) // unreferenced
	m.Faces = append(m.Faces,
		Face{V: [3]int{2, 0, 1}}, // duplicate of face 0, rotated
		Face{V: [3]int{0, 0, 1}}, // repeated index
	)
	removed := m.Clean()
	if removed != 2 {
		t.Errorf("Clean() removed %d faces, want 2", removed)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", m.VertexCount())
	}
	if m.Bounds.Max != math3d.V3(1, 1, 0) {
		t.Errorf("Bounds.Max = %v, want (1,1,0)", m.Bounds.Max)
	}
}

func TestRemoveDegenerateCollinear(t *testing.T) {
	m := NewMesh("line")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 0, 0)},
		{Position: math3d.V3(2, 0, 0)},
	}
	m.Faces = []Face{{V: [3]int{0, 1, 2}}}
	if got := m.RemoveDegenerateFaces(); got != 1 {
		t.Errorf("RemoveDegenerateFaces() = %d, want 1", got)
	}
}

func TestMeshTransform(t *testing.T) {
	m := quad()
	m.Transform(math3d.Translate(math3d.V3(0, 0, 5)))
	if m.Bounds.Min.Z != 5 || m.Bounds.Max.Z != 5 {
		t.Errorf("Bounds after translate = %v, want z=5", m.Bounds)
	}
}

func TestMeshClone(t *testing.T) {
	m := quad()
	c := m.Clone()
	m.Vertices[0].Position = math3d.V3(9, 9, 9)
	if c.Vertices[0].Position.X != 0 {
		t.Error("clone was affected by original modification")
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := quad()
	m.CalculateSmoothNormals()
	for i, v := range m.Vertices {
		if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-9) {
			t.Errorf("vertex %d normal = %v, want (0,0,1)", i, v.Normal)
		}
	}
}
