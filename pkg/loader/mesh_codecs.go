package loader

import (
	"bytes"
	"context"

	"github.com/taigrr/meshview/pkg/models"
	"github.com/taigrr/meshview/pkg/scene"
)

// OBJCodec decodes Wavefront OBJ. Each object or group becomes a child of
// the scene root.
type OBJCodec struct {
	SmoothNormals bool
}

func (c *OBJCodec) Decode(_ context.Context, res Resource) (*scene.Scene, error) {
	l := models.NewOBJLoader()
	l.SmoothNormals = c.SmoothNormals
	meshes, err := l.Load(bytes.NewReader(res.Data), res.Name)
	if err != nil {
		return nil, err
	}
	s := scene.New(res.Name)
	for _, m := range meshes {
		s.Root.Add(scene.NewMeshNode(m.Name, m))
	}
	return s, nil
}

// STLCodec decodes STL. STL has no hierarchy, so the single mesh is wrapped
// in a group node that serves as the scene root.
type STLCodec struct {
	SmoothNormals bool
}

func (c *STLCodec) Decode(_ context.Context, res Resource) (*scene.Scene, error) {
	l := models.NewSTLLoader()
	l.SmoothNormals = c.SmoothNormals
	mesh, err := l.LoadBytes(res.Data, res.Name)
	if err != nil {
		return nil, err
	}
	s := scene.New(res.Name)
	node := scene.NewMeshNode(mesh.Name, mesh)
	node.SetMaterial(models.DefaultMaterial())
	s.Root.Add(node)
	return s, nil
}
