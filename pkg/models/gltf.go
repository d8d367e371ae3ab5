package models

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/meshview/pkg/math3d"
)

// GLTFMaterials converts the document's materials. The slice is freshly
// allocated so callers may hand a copy to each mesh.
func GLTFMaterials(doc *gltf.Document) []Material {
	out := make([]Material, len(doc.Materials))
	for i, mat := range doc.Materials {
		m := Material{
			Name:      mat.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Emissive:  mat.EmissiveFactor,
			Roughness: 1,
		}
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				m.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				m.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				m.Roughness = *pbr.RoughnessFactor
			}
		}
		out[i] = m
	}
	return out
}

// GLTFMesh extracts mesh index as a single local-space Mesh. Every
// triangle-list primitive is appended; other topologies are skipped.
func GLTFMesh(doc *gltf.Document, index int) (*Mesh, error) {
	if index < 0 || index >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", index)
	}
	src := doc.Meshes[index]
	mesh := NewMesh(src.Name)
	mesh.Materials = GLTFMaterials(doc)

	hasNormals := true
	for pi, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		acc, err := accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("primitive %d positions: %w", pi, err)
		}
		positions, err := modeler.ReadPosition(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("primitive %d positions: %w", pi, err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if acc, err = accessor(doc, idx); err != nil {
				return nil, fmt.Errorf("primitive %d normals: %w", pi, err)
			}
			if normals, err = modeler.ReadNormal(doc, acc, nil); err != nil {
				return nil, fmt.Errorf("primitive %d normals: %w", pi, err)
			}
		} else {
			hasNormals = false
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if acc, err = accessor(doc, idx); err != nil {
				return nil, fmt.Errorf("primitive %d uvs: %w", pi, err)
			}
			if uvs, err = modeler.ReadTextureCoord(doc, acc, nil); err != nil {
				return nil, fmt.Errorf("primitive %d uvs: %w", pi, err)
			}
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: vec3f(p)}
			if i < len(normals) {
				v.Normal = vec3f(normals[i])
			}
			if i < len(uvs) {
				v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1])).FlipV()
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []uint32
		if prim.Indices != nil {
			if acc, err = accessor(doc, *prim.Indices); err != nil {
				return nil, fmt.Errorf("primitive %d indices: %w", pi, err)
			}
			if indices, err = modeler.ReadIndices(doc, acc, nil); err != nil {
				return nil, fmt.Errorf("primitive %d indices: %w", pi, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material}
			for k := range 3 {
				vi := int(indices[i+k])
				if vi >= len(positions) {
					return nil, fmt.Errorf("primitive %d: index %d out of range", pi, vi)
				}
				f.V[k] = base + vi
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	if !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

func vec3f(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}
