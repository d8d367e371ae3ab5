// Package scene is the in-memory scene graph produced by the loaders and
// driven by the viewport: nodes with TRS transforms, optional meshes,
// per-node material state and animation clips.
package scene

import (
	"github.com/google/uuid"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/models"
)

// Node is one element of the scene hierarchy.
type Node struct {
	ID       string
	Name     string
	Parent   *Node
	Children []*Node

	Translation math3d.Vec3
	Rotation    math3d.Quat
	Scale       math3d.Vec3
	// Matrix, when set, replaces the TRS fields as the local transform.
	Matrix *math3d.Mat4

	Mesh *models.Mesh

	// Material is the node's own appearance, cloned from its mesh on load
	// so highlighting one node never affects another sharing the mesh.
	Material models.Material
	base     models.Material
}

// NewNode creates an identity-transform node with a fresh id.
func NewNode(name string) *Node {
	return &Node{
		ID:       uuid.NewString(),
		Name:     name,
		Rotation: math3d.IdentityQuat(),
		Scale:    math3d.V3(1, 1, 1),
	}
}

// NewMeshNode creates a node owning mesh. The first mesh material becomes the
// node's appearance, or the default grey when the mesh has none.
func NewMeshNode(name string, mesh *models.Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	mat := models.DefaultMaterial()
	if mesh != nil && len(mesh.Materials) > 0 {
		mat = mesh.Materials[0]
	}
	n.SetMaterial(mat)
	return n
}

// Add appends children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c.Parent != nil {
			c.Parent.remove(c)
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
}

func (n *Node) remove(c *Node) {
	for i, ch := range n.Children {
		if ch == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return
		}
	}
}

// DisplayName is the name used in manifests and lookups: Name, or the id
// when the node is unnamed.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// LocalMatrix returns the node's transform relative to its parent.
func (n *Node) LocalMatrix() math3d.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	return math3d.Compose(n.Translation, n.Rotation, n.Scale)
}

// WorldMatrix composes local matrices from the root down to n.
func (n *Node) WorldMatrix() math3d.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Traverse visits n and its descendants depth-first, parents before
// children, children in insertion order. Returning false from fn skips the
// node's subtree.
func (n *Node) Traverse(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// WorldBounds returns the world-space box of the node's own mesh.
func (n *Node) WorldBounds() math3d.Box3 {
	if n.Mesh == nil {
		return math3d.EmptyBox()
	}
	return n.Mesh.Bounds.Transform(n.WorldMatrix())
}

// SubtreeBounds returns the world-space box enclosing every mesh at or
// below n.
func (n *Node) SubtreeBounds() math3d.Box3 {
	box := math3d.EmptyBox()
	n.Traverse(func(c *Node) bool {
		box = box.Union(c.WorldBounds())
		return true
	})
	return box
}

// SetMaterial replaces both the current and the default appearance.
func (n *Node) SetMaterial(m models.Material) {
	n.Material = m
	n.base = m
}

// SetEmissive overrides the glow color until ResetAppearance.
func (n *Node) SetEmissive(rgb [3]float64) {
	n.Material.Emissive = rgb
}

// ResetAppearance restores the material assigned at load time.
func (n *Node) ResetAppearance() {
	n.Material = n.base
}

// Highlighted reports whether the node currently glows differently from its
// default appearance.
func (n *Node) Highlighted() bool {
	return n.Material.Emissive != n.base.Emissive
}
