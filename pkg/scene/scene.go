package scene

import (
	"github.com/google/uuid"

	"github.com/taigrr/meshview/pkg/math3d"
)

// Scene is a loaded model: a root node, the clips that animate it, and the
// model id stamped on manifests and annotations.
type Scene struct {
	ID     string
	Name   string
	Format string
	Root   *Node
	Clips  []*Clip
}

// New creates an empty scene with a fresh model id.
func New(name string) *Scene {
	return &Scene{
		ID:   uuid.NewString(),
		Name: name,
		Root: NewNode(name),
	}
}

// Traverse walks the whole hierarchy depth-first in document order.
func (s *Scene) Traverse(fn func(*Node) bool) {
	if s.Root != nil {
		s.Root.Traverse(fn)
	}
}

// FindByName returns the first node, in traversal order, whose display name
// matches.
func (s *Scene) FindByName(name string) *Node {
	var found *Node
	s.Traverse(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.DisplayName() == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByID returns the node with the given id.
func (s *Scene) FindByID(id string) *Node {
	var found *Node
	s.Traverse(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Meshes lists the nodes that carry geometry, in traversal order.
func (s *Scene) Meshes() []*Node {
	var out []*Node
	s.Traverse(func(n *Node) bool {
		if n.Mesh != nil {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Bounds is the world-space box of all geometry.
func (s *Scene) Bounds() math3d.Box3 {
	if s.Root == nil {
		return math3d.EmptyBox()
	}
	return s.Root.SubtreeBounds()
}

// Stats summarises the scene.
type Stats struct {
	Nodes     int
	Meshes    int
	Vertices  int
	Triangles int
	Clips     int
}

// Stats counts nodes and geometry.
func (s *Scene) Stats() Stats {
	st := Stats{Clips: len(s.Clips)}
	s.Traverse(func(n *Node) bool {
		st.Nodes++
		if n.Mesh != nil {
			st.Meshes++
			st.Vertices += n.Mesh.VertexCount()
			st.Triangles += n.Mesh.TriangleCount()
		}
		return true
	})
	return st
}

// Release drops geometry and clips so nothing from a discarded scene stays
// reachable through stale node pointers.
func (s *Scene) Release() {
	s.Traverse(func(n *Node) bool {
		n.Mesh = nil
		return true
	})
	s.Clips = nil
	s.Root = nil
}

// NewID returns a random identifier in the same form as node and model ids.
func NewID() string {
	return uuid.NewString()
}
