package viewport

import (
	"errors"
	"math"

	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/scene"
)

// ErrPickMiss means a click hit no mesh.
var ErrPickMiss = errors.New("no mesh under pointer")

// Hit is the nearest intersection of a pick ray.
type Hit struct {
	Node     *scene.Node
	Distance float64
	Point    math3d.Vec3
}

// Raycaster resolves the topmost mesh along a ray.
type Raycaster interface {
	Intersect(s *scene.Scene, ray math3d.Ray) (Hit, error)
}

// ScreenRay unprojects a pixel into a world-space ray from the camera.
// (x, y) is measured from the top-left of a width x height viewport.
func ScreenRay(cam CameraState, x, y, width, height float64) math3d.Ray {
	aspect := 1.0
	if width > 0 && height > 0 {
		aspect = width / height
	}
	ndc := math3d.PixelToNDC(x, y, width, height)
	inv := cam.Projection(aspect).Mul(cam.View()).Inverse()
	near := math3d.Unproject(inv, ndc, -1)
	far := math3d.Unproject(inv, ndc, 1)
	return math3d.Ray{Origin: near, Dir: far.Sub(near).Normalize()}
}

// SceneRaycaster tests each mesh's world box first, then its triangles.
type SceneRaycaster struct{}

func (SceneRaycaster) Intersect(s *scene.Scene, ray math3d.Ray) (Hit, error) {
	best := Hit{Distance: math.Inf(1)}
	for _, n := range s.Meshes() {
		world := n.WorldMatrix()
		box := n.Mesh.Bounds.Transform(world)
		if d, ok := ray.IntersectBox(box); !ok || d > best.Distance {
			continue
		}
		for i := range n.Mesh.Faces {
			a, b, c := n.Mesh.Triangle(i)
			d, ok := ray.IntersectTriangle(world.MulVec3(a), world.MulVec3(b), world.MulVec3(c))
			if ok && d < best.Distance {
				best = Hit{Node: n, Distance: d, Point: ray.At(d)}
			}
		}
	}
	if best.Node == nil {
		return Hit{}, ErrPickMiss
	}
	return best, nil
}
