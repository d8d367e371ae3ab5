package loader

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	fbx "github.com/flywave/ofbx"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/models"
	"github.com/taigrr/meshview/pkg/scene"
)

// FBXCodec decodes binary FBX. The FBX object graph is flattened: every mesh
// becomes a child of the root carrying its global transform.
type FBXCodec struct{}

func (c *FBXCodec) Decode(ctx context.Context, res Resource) (*scene.Scene, error) {
	doc, err := fbx.Load(bytes.NewReader(res.Data))
	if err != nil {
		return nil, fmt.Errorf("decode fbx: %w", err)
	}

	s := scene.New(res.Name)
	for _, mh := range doc.Meshes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if mh.Geometry == nil {
			continue
		}
		name := fbxName(mh.Name())
		if name == "" {
			name = fmt.Sprintf("mesh_%d", mh.ID())
		}
		mesh := fbxMesh(name, mh)
		if len(mesh.Faces) == 0 {
			continue
		}
		node := scene.NewMeshNode(name, mesh)
		mtx := fbx.GetGlobalMatrix(mh)
		arr := mtx.ToArray()
		m := columnMajor(arr[:])
		node.Matrix = &m
		if len(mh.Materials) > 0 && mh.Materials[0] != nil {
			node.SetMaterial(fbxMaterial(mh.Materials[0]))
		}
		s.Root.Add(node)
	}
	if len(s.Root.Children) == 0 {
		return nil, fmt.Errorf("decode fbx: %w", models.ErrEmptyMesh)
	}
	return s, nil
}

func fbxMesh(name string, mh *fbx.Mesh) *models.Mesh {
	g := mh.Geometry
	mesh := models.NewMesh(name)
	for _, v := range g.Vertices {
		mesh.Vertices = append(mesh.Vertices, models.MeshVertex{
			Position: math3d.V3(float64(v[0]), float64(v[1]), float64(v[2])),
		})
	}
	for _, face := range g.Faces {
		// Fan-triangulate polygons; indices outside the vertex list are skipped.
		for k := 1; k+1 < len(face); k++ {
			tri := [3]int{face[0], face[k], face[k+1]}
			ok := true
			for _, vi := range tri {
				if vi < 0 || vi >= len(mesh.Vertices) {
					ok = false
				}
			}
			if ok {
				mesh.Faces = append(mesh.Faces, models.Face{V: tri, Material: -1})
			}
		}
	}
	mesh.CalculateSmoothNormals()
	mesh.CalculateBounds()
	return mesh
}

func fbxMaterial(mt *fbx.Material) models.Material {
	m := models.DefaultMaterial()
	m.Name = fbxName(mt.Name())
	d, e := mt.DiffuseColor, mt.EmissiveColor
	m.BaseColor = [4]float64{float64(d.R), float64(d.G), float64(d.B), 1}
	m.Emissive = [3]float64{float64(e.R), float64(e.G), float64(e.B)}
	return m
}

// fbxName drops the "\x00\x01Class" suffix binary FBX appends to object names.
func fbxName(raw string) string {
	if i := strings.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

func columnMajor[T float32 | float64](a []T) math3d.Mat4 {
	f := make([]float64, len(a))
	for i, v := range a {
		f[i] = float64(v)
	}
	return math3d.Mat4FromColumnMajor(f)
}
