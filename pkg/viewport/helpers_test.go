package viewport

import (
	"context"
	"time"

	"github.com/taigrr/meshview/pkg/loader"
	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/models"
	"github.com/taigrr/meshview/pkg/scene"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// boxMesh builds a closed axis-aligned box.
func boxMesh(name string, lo, hi math3d.Vec3) *models.Mesh {
	m := models.NewMesh(name)
	for i := 0; i < 8; i++ {
		p := lo
		if i&1 != 0 {
			p.X = hi.X
		}
		if i&2 != 0 {
			p.Y = hi.Y
		}
		if i&4 != 0 {
			p.Z = hi.Z
		}
		m.Vertices = append(m.Vertices, models.MeshVertex{Position: p})
	}
	quads := [][4]int{
		{0, 2, 3, 1}, {4, 5, 7, 6}, // -z, +z
		{0, 1, 5, 4}, {2, 6, 7, 3}, // -y, +y
		{0, 4, 6, 2}, {1, 3, 7, 5}, // -x, +x
	}
	for _, q := range quads {
		m.Faces = append(m.Faces,
			models.Face{V: [3]int{q[0], q[1], q[2]}},
			models.Face{V: [3]int{q[0], q[2], q[3]}},
		)
	}
	m.CalculateBounds()
	return m
}

func boxNode(name string, lo, hi math3d.Vec3) *scene.Node {
	return scene.NewMeshNode(name, boxMesh(name, lo, hi))
}

// twoBoxScene holds A over x in [0,2] and B over x in [4,6], off-center so
// normalization has something to do.
func twoBoxScene() *scene.Scene {
	s := scene.New("pair")
	s.Root.Add(
		boxNode("A", math3d.V3(0, 0, 0), math3d.V3(2, 2, 2)),
		boxNode("B", math3d.V3(4, 0, 0), math3d.V3(6, 2, 2)),
	)
	return s
}

type loaderFunc func(ctx context.Context, desc loader.ModelDescriptor) (*scene.Scene, error)

func (f loaderFunc) Load(ctx context.Context, desc loader.ModelDescriptor) (*scene.Scene, error) {
	return f(ctx, desc)
}

func staticLoader(build func() *scene.Scene) loaderFunc {
	return func(context.Context, loader.ModelDescriptor) (*scene.Scene, error) {
		return build(), nil
	}
}
