package scene

import (
	"math"
	"testing"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/models"
)

func unitCube(name string) *models.Mesh {
	m := models.NewMesh(name)
	for _, p := range []math3d.Vec3{
		math3d.V3(-0.5, -0.5, -0.5), math3d.V3(0.5, -0.5, -0.5),
		math3d.V3(0.5, 0.5, -0.5), math3d.V3(-0.5, 0.5, 0.5),
	} {
		m.Vertices = append(m.Vertices, models.MeshVertex{Position: p})
	}
	m.Faces = []models.Face{{V: [3]int{0, 1, 2}}, {V: [3]int{0, 2, 3}}}
	m.CalculateBounds()
	return m
}

func buildScene() *Scene {
	s := New("bike")
	frame := NewMeshNode("Frame", unitCube("frame"))
	frame.Translation = math3d.V3(2, 0, 0)
	wheel := NewMeshNode("Wheel", unitCube("wheel"))
	wheel.Translation = math3d.V3(0, 3, 0)
	frame.Add(wheel)
	unnamed := NewNode("")
	s.Root.Add(frame, unnamed)
	return s
}

func TestWorldMatrixComposesParents(t *testing.T) {
	s := buildScene()
	wheel := s.FindByName("Wheel")
	if wheel == nil {
		t.Fatal("FindByName(Wheel) = nil")
	}
	got := wheel.WorldMatrix().MulVec3(math3d.Vec3{})
	if got != math3d.V3(2, 3, 0) {
		t.Errorf("wheel origin = %v, want (2,3,0)", got)
	}
}

func TestTraverseOrder(t *testing.T) {
	s := buildScene()
	var names []string
	s.Traverse(func(n *Node) bool {
		names = append(names, n.Name)
		return true
	})
	want := []string{"bike", "Frame", "Wheel", ""}
	if len(names) != len(want) {
		t.Fatalf("visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("visit %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSceneBounds(t *testing.T) {
	s := buildScene()
	b := s.Bounds()
	if b.Min != math3d.V3(1.5, -0.5, -0.5) || b.Max != math3d.V3(2.5, 3.5, 0.5) {
		t.Errorf("Bounds = %v", b)
	}
	st := s.Stats()
	if st.Nodes != 4 || st.Meshes != 2 || st.Triangles != 4 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestDisplayNameFallsBackToID(t *testing.T) {
	n := NewNode("")
	if n.DisplayName() != n.ID || n.ID == "" {
		t.Errorf("DisplayName = %q, ID = %q", n.DisplayName(), n.ID)
	}
	s := buildScene()
	var unnamed *Node
	s.Traverse(func(n *Node) bool {
		if n.Name == "" {
			unnamed = n
		}
		return true
	})
	if got := s.FindByID(unnamed.ID); got != unnamed {
		t.Errorf("FindByID = %v, want unnamed node", got)
	}
}

func TestAppearanceReset(t *testing.T) {
	n := NewMeshNode("Frame", unitCube("f"))
	n.SetEmissive([3]float64{0, 1, 0})
	if !n.Highlighted() {
		t.Error("Highlighted() = false after SetEmissive")
	}
	n.ResetAppearance()
	if n.Highlighted() || n.Material.Emissive != ([3]float64{}) {
		t.Errorf("emissive after reset = %v", n.Material.Emissive)
	}
}

func TestAddReparents(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	a.Add(c)
	b.Add(c)
	if len(a.Children) != 0 || c.Parent != b {
		t.Errorf("child not moved: a.Children=%d parent=%v", len(a.Children), c.Parent.Name)
	}
}

func TestMixerLoops(t *testing.T) {
	n := NewNode("spinner")
	clip := &Clip{
		Name:     "slide",
		Duration: 2,
		Channels: []Channel{{
			Target: n,
			Path:   PathTranslation,
			Times:  []float64{0, 2},
			Values: [][4]float64{{0, 0, 0}, {4, 0, 0}},
		}},
	}
	m := NewMixer([]*Clip{clip})
	m.PlayAll()
	if !m.Playing() {
		t.Fatal("Playing() = false after PlayAll")
	}
	m.Update(0.5)
	if math.Abs(n.Translation.X-1) > 1e-9 {
		t.Errorf("x at 0.5s = %v, want 1", n.Translation.X)
	}
	m.Update(2) // 2.5s wraps to 0.5s
	if math.Abs(n.Translation.X-1) > 1e-9 {
		t.Errorf("x at 2.5s = %v, want 1", n.Translation.X)
	}
	m.Stop()
	m.Update(1)
	if m.Playing() || math.Abs(n.Translation.X-1) > 1e-9 {
		t.Error("mixer advanced after Stop")
	}
}

func TestRotationChannelSlerps(t *testing.T) {
	n := NewNode("r")
	q := math3d.QuatFromAxisAngle(math3d.Up(), math.Pi/2)
	clip := &Clip{Duration: 1, Channels: []Channel{{
		Target: n, Path: PathRotation,
		Times:  []float64{0, 1},
		Values: [][4]float64{{0, 0, 0, 1}, {q.X, q.Y, q.Z, q.W}},
	}}}
	clip.Apply(1)
	if math.Abs(n.Rotation.Y-q.Y) > 1e-9 {
		t.Errorf("rotation at end = %v, want %v", n.Rotation, q)
	}
}

func TestRelease(t *testing.T) {
	s := buildScene()
	frame := s.FindByName("Frame")
	s.Release()
	if frame.Mesh != nil || s.Root != nil {
		t.Error("Release left geometry reachable")
	}
}
