package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/scene"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"models/bike.glb", FormatGLB, true},
		{"https://cdn.example.com/a/Lamp.GLTF?v=3", FormatGLTF, true},
		{"res:bike.obj", FormatOBJ, true},
		{"part.fbx", FormatFBX, true},
		{"C:\\parts\\cube.stl", FormatSTL, true},
		{"scan.ply", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultCodecsCoverEveryFormat(t *testing.T) {
	codecs := DefaultCodecs()
	for _, f := range Formats {
		assert.NotNil(t, codecs[f], "format %s", f)
	}
	assert.Len(t, codecs, len(Formats))
}

func TestLoadSampleOBJ(t *testing.T) {
	s, err := New().Load(context.Background(), ModelDescriptor{URL: "res:bike.obj"})
	require.NoError(t, err)
	assert.Equal(t, "obj", s.Format)
	assert.Equal(t, "bike", s.Root.Name)

	var names []string
	for _, n := range s.Meshes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Frame", "Wheel_Front", "Wheel_Rear", "Chain_Guard"}, names)

	b := s.Bounds()
	assert.InDelta(t, -1.9, b.Min.X, 1e-9)
	assert.InDelta(t, 1.9, b.Max.X, 1e-9)
}

func TestLoadSampleSTLIsWrapped(t *testing.T) {
	s, err := New().Load(context.Background(), ModelDescriptor{URL: "res:cube.stl", Format: FormatSTL})
	require.NoError(t, err)
	require.Len(t, s.Root.Children, 1)
	mesh := s.Root.Children[0]
	assert.NotNil(t, mesh.Mesh)
	assert.Equal(t, 12, mesh.Mesh.TriangleCount())
	assert.True(t, s.Bounds().Center().ApproxEqual(math3d.V3(5, 5, 5), 1e-6))
}

func TestLoadSampleGLTF(t *testing.T) {
	s, err := New().Load(context.Background(), ModelDescriptor{URL: "res:lamp.gltf"})
	require.NoError(t, err)

	lamp := s.FindByName("Lamp")
	require.NotNil(t, lamp)
	require.Len(t, lamp.Children, 2)
	assert.Equal(t, "Base", lamp.Children[0].Name)
	assert.Equal(t, "Shade", lamp.Children[1].Name)
	assert.Equal(t, "brass", lamp.Children[0].Material.Name)

	b := s.Bounds()
	assert.True(t, b.Min.ApproxEqual(math3d.V3(-1, -0.1, -1), 1e-6), "min %v", b.Min)
	assert.True(t, b.Max.ApproxEqual(math3d.V3(1, 2.5, 1), 1e-6), "max %v", b.Max)

	require.Len(t, s.Clips, 1)
	assert.Equal(t, "Spin", s.Clips[0].Name)
	assert.InDelta(t, 2.0, s.Clips[0].Duration, 1e-6)
	assert.Same(t, lamp.Children[1], s.Clips[0].Channels[0].Target)
}

func TestLoadSampleFBX(t *testing.T) {
	s, err := New().Load(context.Background(), ModelDescriptor{URL: "res:cube.fbx"})
	require.NoError(t, err)
	assert.Equal(t, "fbx", s.Format)

	meshes := s.Meshes()
	require.Len(t, meshes, 1)
	cube := meshes[0]
	assert.Equal(t, "Cube", cube.Name)
	assert.Equal(t, 12, cube.Mesh.TriangleCount())
	assert.Len(t, cube.Mesh.Vertices, 8)
	require.NotNil(t, cube.Matrix, "global transform kept on the node")

	// Unit cube under a 100x scale and a rotation about X.
	assert.InDelta(t, 200, s.Bounds().Size().X, 1e-3)
}

func TestLoadGLB(t *testing.T) {
	data, err := samples.ReadFile("samples/lamp.gltf")
	require.NoError(t, err)
	doc := new(gltf.Document)
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(data)).Decode(doc))
	doc.Buffers[0].URI = ""

	var glb bytes.Buffer
	enc := gltf.NewEncoder(&glb)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	require.True(t, bytes.HasPrefix(glb.Bytes(), []byte("glTF")))

	path := filepath.Join(t.TempDir(), "lamp.glb")
	require.NoError(t, os.WriteFile(path, glb.Bytes(), 0o644))

	fromFile, err := New().Load(context.Background(), ModelDescriptor{URL: path})
	require.NoError(t, err)
	assert.Equal(t, "glb", fromFile.Format)

	fromBytes, err := (&GLTFCodec{}).Decode(context.Background(), Resource{Name: "lamp", Data: glb.Bytes()})
	require.NoError(t, err)

	for _, s := range []*scene.Scene{fromFile, fromBytes} {
		require.NotNil(t, s.FindByName("Shade"))
		assert.Len(t, s.Meshes(), 2)
		require.Len(t, s.Clips, 1)
		assert.Equal(t, "Spin", s.Clips[0].Name)
		assert.True(t, s.Bounds().Max.ApproxEqual(math3d.V3(1, 2.5, 1), 1e-6), "max %v", s.Bounds().Max)
	}
}

func TestLoadMalformedEveryFormat(t *testing.T) {
	fbxHeader := append([]byte("Kaydara FBX Binary  \x00\x1a\x00"), 0xe8, 0x1c, 0, 0)
	stlHeader := make([]byte, 84)
	stlHeader[80] = 5 // five triangles declared, none present

	tests := []struct {
		file string
		data []byte
	}{
		{"bad.gltf", []byte(`{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],` +
			`"nodes":[{"mesh":0}],"meshes":[{"primitives":[{"attributes":{"POSITION":5}}]}]}`)},
		{"bad.glb", append([]byte("glTF\x02\x00\x00\x00"), bytes.Repeat([]byte{0xff}, 16)...)},
		{"bad.obj", []byte("v 0 0 0\nf 1 2 3\n")},
		{"empty.obj", []byte("# nothing here\n")},
		{"bad.stl", stlHeader},
		{"bad.fbx", append(fbxHeader, make([]byte, 40)...)},
	}
	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))

			_, err := New().Load(context.Background(), ModelDescriptor{URL: path})
			var le *LoadError
			require.True(t, errors.As(err, &le), "error %v is not *LoadError", err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestLoadRecoversCodecPanic(t *testing.T) {
	boom := CodecFunc(func(context.Context, Resource) (*scene.Scene, error) {
		var nodes []*scene.Node
		return scene.New(nodes[3].Name), nil
	})
	_, err := New(WithCodec(FormatOBJ, boom)).Load(context.Background(), ModelDescriptor{URL: "res:bike.obj"})
	assert.ErrorIs(t, err, ErrMalformed)
	assert.ErrorContains(t, err, "codec panic")
}

func TestLoadFromFileAndHTTP(t *testing.T) {
	data, err := samples.ReadFile("samples/bike.obj")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bike.obj")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	s, err := New().Load(context.Background(), ModelDescriptor{URL: path})
	require.NoError(t, err)
	assert.Len(t, s.Meshes(), 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bike.obj" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	s, err = New().Load(context.Background(), ModelDescriptor{URL: srv.URL + "/bike.obj"})
	require.NoError(t, err)
	assert.Len(t, s.Meshes(), 4)

	_, err = New().Load(context.Background(), ModelDescriptor{URL: srv.URL + "/gone.obj"})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.gltf")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))

	tests := []struct {
		name string
		desc ModelDescriptor
		want error
	}{
		{"missing file", ModelDescriptor{URL: filepath.Join(dir, "nope.stl")}, ErrUnreachable},
		{"malformed", ModelDescriptor{URL: bad}, ErrMalformed},
		{"unknown format", ModelDescriptor{URL: "x.ply"}, ErrUnsupportedFormat},
		{"unregistered format", ModelDescriptor{URL: "x.bin", Format: "bin"}, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Load(context.Background(), tt.desc)
			require.Error(t, err)
			var le *LoadError
			require.True(t, errors.As(err, &le), "error %T is not *LoadError", err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.desc.URL, le.URL)
		})
	}
}

func TestLoadHonorsContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	slow := CodecFunc(func(ctx context.Context, _ Resource) (*scene.Scene, error) {
		<-block
		return scene.New("late"), nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(WithCodec(FormatOBJ, slow))
	_, err := l.Load(ctx, ModelDescriptor{URL: "res:bike.obj"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSamples(t *testing.T) {
	assert.ElementsMatch(t, []string{"res:bike.obj", "res:cube.fbx", "res:cube.stl", "res:lamp.gltf"}, Samples())
}
