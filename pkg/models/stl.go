package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/taigrr/meshview/pkg/math3d"
)

// ErrEmptyMesh is returned when a file parses but contains no triangles.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// STLLoader parses ASCII and binary STL.
type STLLoader struct {
	SmoothNormals  bool    // average normals per vertex after welding
	MergeTolerance float64 // weld distance; 0 means near-exact
}

// NewSTLLoader creates an STL loader with default settings.
func NewSTLLoader() *STLLoader {
	return &STLLoader{}
}

// Load reads the whole stream and parses it as STL.
func (l *STLLoader) Load(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read STL: %w", err)
	}
	return l.LoadBytes(data, name)
}

// LoadBytes parses STL from memory, detecting the encoding.
func (l *STLLoader) LoadBytes(data []byte, name string) (*Mesh, error) {
	var (
		mesh *Mesh
		err  error
	)
	if isBinarySTL(data) {
		mesh, err = l.loadBinary(data, name)
	} else {
		mesh, err = l.loadASCII(data, name)
	}
	if err != nil {
		return nil, err
	}
	if len(mesh.Faces) == 0 {
		return nil, ErrEmptyMesh
	}
	if l.SmoothNormals {
		mesh.CalculateSmoothNormals()
	}
	return mesh, nil
}

// isBinarySTL treats anything not starting with "solid" as binary. A "solid"
// header is still binary when the declared triangle count matches the size.
func isBinarySTL(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return len(data) >= 84
	}
	if len(data) < 84 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[80:84])
	return uint64(len(data)) == 84+uint64(n)*50
}

func (l *STLLoader) loadBinary(data []byte, name string) (*Mesh, error) {
	n := binary.LittleEndian.Uint32(data[80:84])
	if want := 84 + uint64(n)*50; uint64(len(data)) < want {
		return nil, fmt.Errorf("binary STL truncated: want %d bytes, got %d", want, len(data))
	}

	b := newMeshBuilder(name, l.MergeTolerance)
	off := 84
	for range n {
		normal := readVec3LE(data[off:])
		off += 12
		var idx [3]int
		for k := range 3 {
			idx[k] = b.vertex(MeshVertex{Position: readVec3LE(data[off:]), Normal: normal})
			off += 12
		}
		off += 2 // attribute byte count
		b.triangle(idx[0], idx[1], idx[2], -1)
	}
	return b.finish(), nil
}

func readVec3LE(p []byte) math3d.Vec3 {
	f := func(o int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p[o:])))
	}
	return math3d.V3(f(0), f(4), f(8))
}

func (l *STLLoader) loadASCII(data []byte, name string) (*Mesh, error) {
	b := newMeshBuilder(name, l.MergeTolerance)

	var (
		normal  math3d.Vec3
		pending []int
		inLoop  bool
		lineNum int
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		lineNum++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				b.mesh.Name = fields[1]
			}
		case "facet":
			if len(fields) < 5 || strings.ToLower(fields[1]) != "normal" {
				return nil, fmt.Errorf("line %d: facet without normal", lineNum)
			}
			v, err := parseVec3(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", lineNum, err)
			}
			normal = v.Normalize()
			pending = pending[:0]
		case "outer":
			inLoop = true
		case "vertex":
			if !inLoop || len(fields) < 4 {
				return nil, fmt.Errorf("line %d: misplaced vertex", lineNum)
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNum, err)
			}
			pending = append(pending, b.vertex(MeshVertex{Position: v, Normal: normal}))
		case "endloop":
			inLoop = false
		case "endfacet":
			for i := 1; i+1 < len(pending); i++ {
				b.triangle(pending[0], pending[i], pending[i+1], -1)
			}
			pending = pending[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ASCII STL: %w", err)
	}
	return b.finish(), nil
}

func parseVec3(f []string) (math3d.Vec3, error) {
	var out [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		out[i] = v
	}
	return math3d.FromArray(out), nil
}
