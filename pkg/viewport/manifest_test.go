package viewport

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/scene"
)

func TestManifestShape(t *testing.T) {
	s := scene.New("model")
	a := scene.NewNode("A")
	b := boxNode("B", math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
	a.Add(b)
	s.Root.Add(a)

	m := GenerateManifest(s, "model_local_001")
	require.Len(t, m.Nodes, 3)

	assert.Equal(t, "model", m.Nodes[0].Name)
	assert.Nil(t, m.Nodes[0].Parent)
	assert.Equal(t, "/model", m.Nodes[0].Path)

	assert.Equal(t, "A", m.Nodes[1].Name)
	require.NotNil(t, m.Nodes[1].Parent)
	assert.Equal(t, "model", *m.Nodes[1].Parent)
	assert.Equal(t, "/model/A", m.Nodes[1].Path)

	assert.Equal(t, "B", m.Nodes[2].Name)
	assert.Equal(t, "A", *m.Nodes[2].Parent)
	assert.Equal(t, "/A/B", m.Nodes[2].Path)

	require.Len(t, m.Geometry, 1)
	assert.Equal(t, math3d.Box3{Min: math3d.V3(-1, -1, -1), Max: math3d.V3(1, 1, 1)}, m.Geometry["B"].AABB)
}

func TestManifestUnnamedNodesUseID(t *testing.T) {
	s := scene.New("")
	child := scene.NewNode("")
	s.Root.Add(child)

	m := GenerateManifest(s, "id")
	assert.Equal(t, s.Root.ID, m.Nodes[0].Name)
	assert.Equal(t, child.ID, m.Nodes[1].Name)
	assert.Equal(t, "/"+s.Root.ID+"/"+child.ID, m.Nodes[1].Path)
	assert.Empty(t, m.Geometry)
}

func TestManifestJSON(t *testing.T) {
	s := scene.New("root")
	s.Root.Add(boxNode("cube", math3d.V3(0, 0, 0), math3d.V3(1, 2, 3)))

	var buf bytes.Buffer
	require.NoError(t, GenerateManifest(s, "m1").WriteJSON(&buf))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "m1", raw["modelId"])
	nodes := raw["nodes"].([]any)
	assert.Equal(t, map[string]any{"node_name": "root", "parent": nil, "path": "/root"}, nodes[0])
	geo := raw["geometry"].(map[string]any)["cube"].(map[string]any)
	assert.Equal(t, map[string]any{"min": []any{0.0, 0.0, 0.0}, "max": []any{1.0, 2.0, 3.0}}, geo["aabb"])
}

func TestManifestIsPure(t *testing.T) {
	s := twoBoxScene()
	first := GenerateManifest(s, "x")
	second := GenerateManifest(s, "x")
	assert.Equal(t, first, second)
}
