package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/meshview/pkg/viewport"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInfoCommand(t *testing.T) {
	out, err := run(t, "info", "res:bike.obj")
	require.NoError(t, err)
	assert.Contains(t, out, "Format:     OBJ")
	assert.Contains(t, out, "Meshes:     4")
}

func TestInfoShowsClips(t *testing.T) {
	out, err := run(t, "info", "res:lamp.gltf")
	require.NoError(t, err)
	assert.Contains(t, out, "Clip:       Spin")
}

func TestManifestCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	_, err := run(t, "manifest", "res:cube.stl", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m viewport.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotEmpty(t, m.ModelID)
	require.Len(t, m.Geometry, 1)
	for _, g := range m.Geometry {
		assert.InDelta(t, 0, g.AABB.Center().Len(), 1e-9, "normalized to origin")
	}
}

func TestSearchCommand(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "annotations.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[{"label":"Chain Guard","meshName":"Chain_Guard"}]`), 0o644))

	out, err := run(t, "search", "res:bike.obj", "chain", "--annotations", seed)
	require.NoError(t, err)
	var res struct {
		Focus  viewport.FocusInfo   `json:"focus"`
		Camera viewport.CameraState `json:"camera"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Chain_Guard", res.Focus.Name)
	assert.True(t, res.Camera.Target.ApproxEqual(res.Focus.Center, 1e-9))

	_, err = run(t, "search", "res:bike.obj", "xyz", "--annotations", seed)
	assert.ErrorIs(t, err, viewport.ErrSearchNotFound)
}

func TestSamplesCommand(t *testing.T) {
	out, err := run(t, "samples")
	require.NoError(t, err)
	assert.Contains(t, out, "res:bike.obj")
	assert.Contains(t, out, "res:lamp.gltf")
}

func TestConfigCommandWritesFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshview.yaml")
	out, err := run(t, "config", "--fps", "30", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fps: 30")
}

func TestUnknownModel(t *testing.T) {
	_, err := run(t, "info", "model.ply")
	assert.Error(t, err)
}
