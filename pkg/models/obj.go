package models

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/taigrr/meshview/pkg/math3d"
)

// OBJLoader parses Wavefront OBJ. Each "o" or "g" statement starts a new
// mesh so named parts survive as separate scene nodes.
type OBJLoader struct {
	CalculateNormals bool // fill normals when the file has none
	SmoothNormals    bool
}

// NewOBJLoader creates an OBJ loader with default settings.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{CalculateNormals: true}
}

type objVertexKey struct {
	pos, uv, normal int
}

type objGroup struct {
	mesh      *Mesh
	vertices  map[objVertexKey]int
	materials map[string]int
}

// Load parses an OBJ stream into one mesh per group, in file order.
// Groups without faces are dropped. name labels faces that precede any
// group statement.
func (l *OBJLoader) Load(r io.Reader, name string) ([]*Mesh, error) {
	var (
		positions []math3d.Vec3
		normals   []math3d.Vec3
		uvs       []math3d.Vec2
		groups    []*objGroup
		cur       *objGroup
		material  = -1
		mtlName   string
	)
	start := func(n string) {
		cur = &objGroup{
			mesh:      NewMesh(n),
			vertices:  make(map[objVertexKey]int),
			materials: make(map[string]int),
		}
		groups = append(groups, cur)
		material = -1
		if mtlName != "" {
			material = cur.useMaterial(mtlName)
		}
	}

	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v", "vn":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: %s needs x y z", lineNum, fields[0])
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v.Normalize())
			}

		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: vt needs u v", lineNum)
			}
			u, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			v, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			uvs = append(uvs, math3d.V2(u, v))

		case "o", "g":
			n := name
			if len(fields) > 1 {
				n = strings.Join(fields[1:], " ")
			}
			start(n)

		case "usemtl":
			if len(fields) > 1 {
				mtlName = fields[1]
				if cur != nil {
					material = cur.useMaterial(mtlName)
				}
			}

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
			}
			if cur == nil {
				start(name)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				p, t, n, err := parseFaceVertex(f)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				key := objVertexKey{
					pos:    resolveIndex(p, len(positions)),
					uv:     resolveIndex(t, len(uvs)),
					normal: resolveIndex(n, len(normals)),
				}
				if key.pos < 0 || key.pos >= len(positions) {
					return nil, fmt.Errorf("line %d: position index %d out of range", lineNum, p)
				}
				vi, ok := cur.vertices[key]
				if !ok {
					vert := MeshVertex{Position: positions[key.pos]}
					if key.uv >= 0 && key.uv < len(uvs) {
						vert.UV = uvs[key.uv]
					}
					if key.normal >= 0 && key.normal < len(normals) {
						vert.Normal = normals[key.normal]
					}
					vi = len(cur.mesh.Vertices)
					cur.mesh.Vertices = append(cur.mesh.Vertices, vert)
					cur.vertices[key] = vi
				}
				idx = append(idx, vi)
			}
			// Fan triangulation; OBJ polygons are convex in practice.
			for i := 1; i+1 < len(idx); i++ {
				cur.mesh.Faces = append(cur.mesh.Faces, Face{
					V:        [3]int{idx[0], idx[i], idx[i+1]},
					Material: material,
				})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read OBJ: %w", err)
	}

	meshes := make([]*Mesh, 0, len(groups))
	for _, g := range groups {
		if len(g.mesh.Faces) == 0 {
			continue
		}
		g.mesh.CalculateBounds()
		if l.CalculateNormals && len(normals) == 0 {
			if l.SmoothNormals {
				g.mesh.CalculateSmoothNormals()
			} else {
				g.mesh.CalculateNormals()
			}
		}
		meshes = append(meshes, g.mesh)
	}
	if len(meshes) == 0 {
		return nil, ErrEmptyMesh
	}
	return meshes, nil
}

func (g *objGroup) useMaterial(name string) int {
	if i, ok := g.materials[name]; ok {
		return i
	}
	m := DefaultMaterial()
	m.Name = name
	g.mesh.Materials = append(g.mesh.Materials, m)
	i := len(g.mesh.Materials) - 1
	g.materials[name] = i
	return i
}

// parseFaceVertex splits v, v/vt, v/vt/vn or v//vn. Missing parts are 0.
func parseFaceVertex(s string) (pos, uv, normal int, err error) {
	parts := strings.Split(s, "/")
	if pos, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid vertex index %q", parts[0])
	}
	if len(parts) > 1 && parts[1] != "" {
		if uv, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid texture index %q", parts[1])
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if normal, err = strconv.Atoi(parts[2]); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid normal index %q", parts[2])
		}
	}
	return pos, uv, normal, nil
}

// resolveIndex maps a 1-based or negative OBJ index to 0-based; 0 becomes -1.
func resolveIndex(idx, count int) int {
	switch {
	case idx == 0:
		return -1
	case idx < 0:
		return count + idx
	default:
		return idx - 1
	}
}
