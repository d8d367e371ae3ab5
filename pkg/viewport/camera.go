// Package viewport is the headless 3D viewport controller: camera fitting,
// orbit navigation, focus transitions, mesh picking, annotations and
// manifest export over a scene.Scene. It renders nothing; hosts supply a
// Scheduler, a Raycaster and a Display and draw from CameraState.
package viewport

import (
	"math"

	"github.com/taigrr/meshview/pkg/math3d"
)

// DefaultFOV is the vertical field of view in degrees.
const DefaultFOV = 45.0

// CameraState is the single camera shared by every writer.
type CameraState struct {
	Position math3d.Vec3 `json:"position"`
	Target   math3d.Vec3 `json:"target"`
	FOV      float64     `json:"fov"`
	Near     float64     `json:"near"`
	Far      float64     `json:"far"`
}

// DefaultCamera is the pose before any model is fitted.
func DefaultCamera() CameraState {
	return CameraState{
		Position: math3d.V3(0, 0, 5),
		FOV:      DefaultFOV,
		Near:     0.1,
		Far:      1000,
	}
}

// Distance is the camera-to-target distance.
func (c CameraState) Distance() float64 {
	return c.Position.Distance(c.Target)
}

// Direction is the unit vector from target to camera. A degenerate pose
// falls back to +Z.
func (c CameraState) Direction() math3d.Vec3 {
	d := c.Position.Sub(c.Target)
	if d.LenSq() == 0 {
		return math3d.V3(0, 0, 1)
	}
	return d.Normalize()
}

// FOVRadians converts the vertical field of view.
func (c CameraState) FOVRadians() float64 {
	return c.FOV * math.Pi / 180
}

// View returns the world-to-camera matrix.
func (c CameraState) View() math3d.Mat4 {
	return math3d.LookAt(c.Position, c.Target, math3d.Up())
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c CameraState) Projection(aspect float64) math3d.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math3d.Perspective(c.FOVRadians(), aspect, c.Near, c.Far)
}

// Lerp interpolates position and target; lens parameters come from b.
func (c CameraState) Lerp(b CameraState, t float64) CameraState {
	out := b
	out.Position = c.Position.Lerp(b.Position, t)
	out.Target = c.Target.Lerp(b.Target, t)
	return out
}
