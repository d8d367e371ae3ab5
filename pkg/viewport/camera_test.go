package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/meshview/pkg/math3d"
)

func TestFitSceneFramesAlongZ(t *testing.T) {
	box := math3d.Box3{Min: math3d.V3(-1, -2, -1), Max: math3d.V3(1, 2, 1)}
	cam := FitScene(box, DefaultCamera())

	assert.InDelta(t, 6.0, cam.Distance(), 1e-12)
	assert.Equal(t, math3d.V3(0, 0, 6), cam.Position)
	assert.Equal(t, math3d.Zero3(), cam.Target)
	assert.InDelta(t, 0.06, cam.Near, 1e-12)
	assert.InDelta(t, 600.0, cam.Far, 1e-9)
	assert.Equal(t, DefaultFOV, cam.FOV)
}

func TestFitSceneDistanceIsLinear(t *testing.T) {
	base := math3d.Box3{Min: math3d.V3(-0.5, -0.25, -1), Max: math3d.V3(0.5, 0.25, 1)}
	d0 := FitScene(base, DefaultCamera()).Distance()
	for _, k := range []float64{0.01, 0.5, 3, 250} {
		scaled := math3d.Box3{Min: base.Min.Scale(k), Max: base.Max.Scale(k)}
		got := FitScene(scaled, DefaultCamera())
		assert.InEpsilon(t, k*d0, got.Distance(), 1e-9, "k=%v", k)
		assert.InEpsilon(t, got.Distance()/100, got.Near, 1e-9)
		assert.InEpsilon(t, got.Distance()*100, got.Far, 1e-9)
	}
}

func TestFitSceneIgnoresEmptyBounds(t *testing.T) {
	cam := DefaultCamera()
	assert.Equal(t, cam, FitScene(math3d.EmptyBox(), cam))
	point := math3d.Box3{Min: math3d.V3(1, 1, 1), Max: math3d.V3(1, 1, 1)}
	assert.Equal(t, cam, FitScene(point, cam))
}

func TestFocusBoxKeepsDirection(t *testing.T) {
	cam := DefaultCamera()
	cam.Position = math3d.V3(10, 0, 0)
	cam.Near, cam.Far = 0.5, 50

	box := math3d.Box3{Min: math3d.V3(2, 2, 2), Max: math3d.V3(4, 3, 3)}
	got := FocusBox(box, cam)

	want := 2 / math.Tan(cam.FOVRadians()/2) * FocusDistanceFactor
	assert.InDelta(t, want, got.Distance(), 1e-9)
	assert.Equal(t, box.Center(), got.Target)
	assert.True(t, got.Direction().ApproxEqual(math3d.V3(1, 0, 0), 1e-12))
	assert.Equal(t, 0.5, got.Near)
	assert.Equal(t, 50.0, got.Far)
}

func TestCameraLerpTakesLensFromTarget(t *testing.T) {
	a := DefaultCamera()
	b := a
	b.Position = math3d.V3(0, 10, 5)
	b.Target = math3d.V3(0, 10, 0)
	b.FOV = 60

	mid := a.Lerp(b, 0.5)
	assert.Equal(t, math3d.V3(0, 5, 5), mid.Position)
	assert.Equal(t, math3d.V3(0, 5, 0), mid.Target)
	assert.Equal(t, 60.0, mid.FOV)
	assert.Equal(t, b, a.Lerp(b, 1))
}

func TestDirectionFallback(t *testing.T) {
	cam := CameraState{Position: math3d.V3(1, 1, 1), Target: math3d.V3(1, 1, 1)}
	assert.Equal(t, math3d.V3(0, 0, 1), cam.Direction())
}
