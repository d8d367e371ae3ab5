package viewport

import (
	"math"

	"github.com/taigrr/meshview/pkg/math3d"
)

const (
	// FitDistanceFactor frames a whole scene with headroom.
	FitDistanceFactor = 1.5
	// FocusDistanceFactor pads the single-mesh framing distance.
	FocusDistanceFactor = 1.8
	// clipRatio sets near = d/clipRatio and far = d*clipRatio.
	clipRatio = 100.0
)

// FitScene frames bounds head-on along +Z. Lens FOV is kept from cam.
// Empty or zero-size bounds leave the camera unchanged.
func FitScene(bounds math3d.Box3, cam CameraState) CameraState {
	if bounds.IsEmpty() {
		return cam
	}
	maxDim := bounds.MaxDim()
	if maxDim <= 0 {
		return cam
	}
	center := bounds.Center()
	distance := maxDim * FitDistanceFactor

	out := cam
	out.Position = center.Add(math3d.V3(0, 0, distance))
	out.Target = center
	out.Near = distance / clipRatio
	out.Far = distance * clipRatio
	return out
}

// FocusBox frames bounds from the camera's current viewing direction, so
// the orbit angle survives the move. Near and far are kept from cam.
func FocusBox(bounds math3d.Box3, cam CameraState) CameraState {
	if bounds.IsEmpty() {
		return cam
	}
	center := bounds.Center()
	distance := bounds.MaxDim() / math.Tan(cam.FOVRadians()/2)

	out := cam
	out.Position = center.Add(cam.Direction().Scale(distance * FocusDistanceFactor))
	out.Target = center
	return out
}
