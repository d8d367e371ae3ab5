package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/scene"
)

func TestNormalizeCentersScene(t *testing.T) {
	s := scene.New("far")
	s.Root.Add(boxNode("box", math3d.V3(10, 10, 10), math3d.V3(12, 14, 12)))

	bounds, mixer := Normalize(s)
	assert.True(t, s.Bounds().Center().ApproxEqual(math3d.Zero3(), 1e-12))
	assert.True(t, bounds.Center().ApproxEqual(math3d.Zero3(), 1e-12))
	assert.Equal(t, math3d.V3(2, 4, 2), bounds.Size())
	assert.Equal(t, math3d.V3(-11, -12, -11), s.Root.Translation)
	assert.Equal(t, math3d.V3(1, 1, 1), s.Root.Scale, "translation only")
	assert.False(t, mixer.Playing(), "no clips to play")
}

func TestNormalizeRespectsRootMatrix(t *testing.T) {
	s := scene.New("matrix")
	m := math3d.Scale(math3d.V3(2, 2, 2))
	s.Root.Matrix = &m
	s.Root.Add(boxNode("box", math3d.V3(1, 1, 1), math3d.V3(2, 2, 2)))

	bounds, _ := Normalize(s)
	assert.True(t, s.Bounds().Center().ApproxEqual(math3d.Zero3(), 1e-12))
	assert.Equal(t, math3d.V3(2, 2, 2), bounds.Size())
}

func TestNormalizeStartsClips(t *testing.T) {
	s := scene.New("anim")
	n := boxNode("spin", math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
	s.Root.Add(n)
	s.Clips = []*scene.Clip{{
		Name:     "slide",
		Duration: 2,
		Channels: []scene.Channel{{
			Target: n,
			Path:   scene.PathTranslation,
			Times:  []float64{0, 2},
			Values: [][4]float64{{0, 0, 0}, {4, 0, 0}},
		}},
	}}

	_, mixer := Normalize(s)
	assert.True(t, mixer.Playing())
	mixer.Update(1)
	assert.InDelta(t, 2.0, n.Translation.X, 1e-12)
	mixer.Update(2)
	assert.InDelta(t, 2.0, n.Translation.X, 1e-12, "loops")
}

func TestNormalizeEmptyScene(t *testing.T) {
	s := scene.New("empty")
	bounds, _ := Normalize(s)
	assert.True(t, bounds.IsEmpty())
	assert.Equal(t, math3d.Zero3(), s.Root.Translation)
}
