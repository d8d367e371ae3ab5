package viewport

import (
	"encoding/json"
	"io"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/scene"
)

// Manifest describes a scene's hierarchy and mesh bounds.
type Manifest struct {
	ModelID  string                   `json:"modelId"`
	Nodes    []ManifestNode           `json:"nodes"`
	Geometry map[string]GeometryEntry `json:"geometry"`
}

// ManifestNode is one hierarchy entry. Parent is nil for the root.
type ManifestNode struct {
	Name   string  `json:"node_name"`
	Parent *string `json:"parent"`
	Path   string  `json:"path"`
}

// GeometryEntry holds a mesh's world-space box.
type GeometryEntry struct {
	AABB math3d.Box3 `json:"aabb"`
}

// GenerateManifest walks s depth-first in document order. Paths carry only
// the immediate parent, "/parent/name", or "/name" at the root. Meshes
// sharing a name share one geometry entry; the last one wins.
func GenerateManifest(s *scene.Scene, modelID string) Manifest {
	m := Manifest{
		ModelID:  modelID,
		Nodes:    []ManifestNode{},
		Geometry: map[string]GeometryEntry{},
	}
	s.Traverse(func(n *scene.Node) bool {
		name := n.DisplayName()
		entry := ManifestNode{Name: name, Path: "/" + name}
		if n.Parent != nil {
			parent := n.Parent.DisplayName()
			entry.Parent = &parent
			entry.Path = "/" + parent + "/" + name
		}
		m.Nodes = append(m.Nodes, entry)
		if n.Mesh != nil {
			m.Geometry[name] = GeometryEntry{AABB: n.WorldBounds()}
		}
		return true
	})
	return m
}

// WriteJSON writes m pretty-printed.
func (m Manifest) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
