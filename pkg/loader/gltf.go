package loader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/models"
	"github.com/taigrr/meshview/pkg/scene"
)

// GLTFCodec decodes both .gltf and .glb.
type GLTFCodec struct{}

// Decode reads the document, rebuilds the node hierarchy of the default
// scene and converts its animations into clips.
func (c *GLTFCodec) Decode(ctx context.Context, res Resource) (*scene.Scene, error) {
	doc, err := c.document(res)
	if err != nil {
		return nil, err
	}

	s := scene.New(res.Name)
	b := gltfBuilder{
		doc:    doc,
		nodes:  make(map[int]*scene.Node),
		meshes: make(map[int]*models.Mesh),
	}

	for _, idx := range rootNodes(doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := b.node(idx, 0)
		if err != nil {
			return nil, err
		}
		s.Root.Add(n)
	}

	for i, anim := range doc.Animations {
		clip, err := b.clip(i, anim)
		if err != nil {
			return nil, err
		}
		if clip != nil {
			s.Clips = append(s.Clips, clip)
		}
	}
	return s, nil
}

func (c *GLTFCodec) document(res Resource) (*gltf.Document, error) {
	if res.Path != "" {
		doc, err := gltf.Open(res.Path)
		if err != nil {
			return nil, fmt.Errorf("open gltf: %w", err)
		}
		return doc, nil
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(res.Data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	return doc, nil
}

// rootNodes returns the default scene's roots, or every parentless node when
// the document declares no scene.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		i := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			i = *doc.Scene
		}
		return doc.Scenes[i].Nodes
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

type gltfBuilder struct {
	doc    *gltf.Document
	nodes  map[int]*scene.Node
	meshes map[int]*models.Mesh
}

// maxDepth bounds recursion on malformed documents with node cycles.
const maxDepth = 256

func (b *gltfBuilder) node(idx, depth int) (*scene.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d", maxDepth)
	}
	if _, seen := b.nodes[idx]; seen {
		return nil, fmt.Errorf("node %d has more than one parent", idx)
	}
	src := b.doc.Nodes[idx]
	n := scene.NewNode(src.Name)
	b.nodes[idx] = n

	identity := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if src.Matrix != identity && src.Matrix != ([16]float64{}) {
		m := math3d.Mat4FromColumnMajor(src.Matrix[:])
		n.Matrix = &m
	} else {
		n.Translation = math3d.FromArray(src.Translation)
		if src.Rotation != ([4]float64{}) {
			n.Rotation = math3d.Quat{X: src.Rotation[0], Y: src.Rotation[1], Z: src.Rotation[2], W: src.Rotation[3]}.Normalize()
		}
		if src.Scale != ([3]float64{}) {
			n.Scale = math3d.FromArray(src.Scale)
		}
	}

	if src.Mesh != nil {
		mesh, err := b.mesh(*src.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", src.Name, err)
		}
		n.Mesh = mesh
		mat := models.DefaultMaterial()
		if len(mesh.Faces) > 0 && mesh.Faces[0].Material >= 0 && mesh.Faces[0].Material < len(mesh.Materials) {
			mat = mesh.Materials[mesh.Faces[0].Material]
		}
		n.SetMaterial(mat)
		if n.Name == "" {
			n.Name = mesh.Name
		}
	}

	for _, ci := range src.Children {
		child, err := b.node(ci, depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func (b *gltfBuilder) mesh(idx int) (*models.Mesh, error) {
	if m, ok := b.meshes[idx]; ok {
		return m, nil
	}
	m, err := models.GLTFMesh(b.doc, idx)
	if err != nil {
		return nil, err
	}
	b.meshes[idx] = m
	return m, nil
}

func (b *gltfBuilder) clip(i int, anim *gltf.Animation) (*scene.Clip, error) {
	clip := &scene.Clip{Name: anim.Name}
	if clip.Name == "" {
		clip.Name = fmt.Sprintf("animation_%d", i)
	}
	for ci, ch := range anim.Channels {
		if ch.Target.Node == nil {
			continue
		}
		target, ok := b.nodes[*ch.Target.Node]
		if !ok {
			continue
		}
		var path scene.ChannelPath
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			path = scene.PathTranslation
		case gltf.TRSRotation:
			path = scene.PathRotation
		case gltf.TRSScale:
			path = scene.PathScale
		default:
			continue // morph weights
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: sampler %d out of range", clip.Name, ci, ch.Sampler)
		}
		smp := anim.Samplers[ch.Sampler]
		times, err := b.floats(smp.Input)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d input: %w", clip.Name, ci, err)
		}
		values, err := b.vectors(smp.Output)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d output: %w", clip.Name, ci, err)
		}
		if smp.Interpolation == gltf.InterpolationCubicSpline {
			// Keep only the value of each (in-tangent, value, out-tangent) triple.
			kept := make([][4]float64, 0, len(values)/3)
			for k := 1; k < len(values); k += 3 {
				kept = append(kept, values[k])
			}
			values = kept
		}
		if len(times) > 0 && times[len(times)-1] > clip.Duration {
			clip.Duration = times[len(times)-1]
		}
		clip.Channels = append(clip.Channels, scene.Channel{
			Target: target,
			Path:   path,
			Times:  times,
			Values: values,
			Step:   smp.Interpolation == gltf.InterpolationStep,
		})
	}
	if len(clip.Channels) == 0 {
		return nil, nil
	}
	return clip, nil
}

func (b *gltfBuilder) accessor(idx int) (any, error) {
	if idx < 0 || idx >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return modeler.ReadAccessor(b.doc, b.doc.Accessors[idx], nil)
}

func (b *gltfBuilder) floats(idx int) ([]float64, error) {
	data, err := b.accessor(idx)
	if err != nil {
		return nil, err
	}
	v, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("want float scalars, got %T", data)
	}
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out, nil
}

func (b *gltfBuilder) vectors(idx int) ([][4]float64, error) {
	data, err := b.accessor(idx)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case [][3]float32:
		out := make([][4]float64, len(v))
		for i, f := range v {
			out[i] = [4]float64{float64(f[0]), float64(f[1]), float64(f[2])}
		}
		return out, nil
	case [][4]float32:
		out := make([][4]float64, len(v))
		for i, f := range v {
			out[i] = [4]float64{float64(f[0]), float64(f[1]), float64(f[2]), float64(f[3])}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported keyframe type %T", data)
	}
}
