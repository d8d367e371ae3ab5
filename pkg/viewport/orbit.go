package viewport

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/meshview/pkg/math3d"
)

const (
	// ZoomStep is the fraction of distance removed or added by a discrete zoom.
	ZoomStep = 0.1
	// RotateStep is the discrete rotation about world up, 22.5 degrees.
	RotateStep = math.Pi / 8

	polarEps = 1e-6
)

const (
	inertiaFrequency = 4.0
	inertiaDamping   = 1.0
)

// orbitAxis carries an angular velocity that a critically damped spring
// decays toward zero after each drag impulse.
type orbitAxis struct {
	velocity float64
	accel    float64
	spring   harmonica.Spring
	// gain scales an impulse so the coasting frames add up to it.
	gain float64
}

func newOrbitAxis(fps int) orbitAxis {
	return orbitAxis{
		spring: harmonica.NewSpring(harmonica.FPS(fps), inertiaFrequency, inertiaDamping),
		gain:   inertiaFrequency / (2 * float64(fps)),
	}
}

// push adds an impulse whose total travel is roughly angle.
func (a *orbitAxis) push(angle float64) {
	a.velocity += angle * a.gain
}

// step returns the angle to apply this frame and decays the velocity.
func (a *orbitAxis) step() float64 {
	d := a.velocity
	a.velocity, a.accel = a.spring.Update(a.velocity, a.accel, 0)
	if math.Abs(a.velocity) < 1e-6 {
		a.velocity, a.accel = 0, 0
	}
	return d
}

func (a *orbitAxis) stop() {
	a.velocity, a.accel = 0, 0
}

// OrbitController rotates and dollies the camera about a fixed target.
// It keeps its own spherical state; after anyone else moves the camera,
// call Sync before the next input. Panning is not offered.
type OrbitController struct {
	target  math3d.Vec3
	radius  float64
	azimuth float64 // around +Y, 0 looking down -Z
	polar   float64 // from +Y

	MinDistance float64
	MaxDistance float64
	RotateSpeed float64
	ZoomSpeed   float64
	Damping     bool

	theta, phi orbitAxis
}

// NewOrbitController creates a controller with an unbounded distance range.
func NewOrbitController(fps int) *OrbitController {
	if fps <= 0 {
		fps = 60
	}
	o := &OrbitController{
		MinDistance: 0,
		MaxDistance: math.Inf(1),
		RotateSpeed: 1,
		ZoomSpeed:   1,
		theta:       newOrbitAxis(fps),
		phi:         newOrbitAxis(fps),
	}
	o.Sync(DefaultCamera())
	return o
}

// Sync reloads the spherical state from cam and drops any residual inertia.
func (o *OrbitController) Sync(cam CameraState) {
	o.target = cam.Target
	off := cam.Position.Sub(cam.Target)
	o.radius = off.Len()
	if o.radius == 0 {
		o.azimuth, o.polar = 0, math.Pi/2
	} else {
		o.azimuth = math.Atan2(off.X, off.Z)
		o.polar = math.Acos(math.Max(-1, math.Min(1, off.Y/o.radius)))
	}
	o.theta.stop()
	o.phi.stop()
}

// Target is the orbit center.
func (o *OrbitController) Target() math3d.Vec3 {
	return o.target
}

// Distance is the current orbit radius.
func (o *OrbitController) Distance() float64 {
	return o.radius
}

// Apply writes the controller pose into cam. Lens fields are untouched.
func (o *OrbitController) Apply(cam *CameraState) {
	sinP := math.Sin(o.polar)
	off := math3d.V3(
		o.radius*sinP*math.Sin(o.azimuth),
		o.radius*math.Cos(o.polar),
		o.radius*sinP*math.Cos(o.azimuth),
	)
	cam.Position = o.target.Add(off)
	cam.Target = o.target
}

func (o *OrbitController) clampRadius() {
	o.radius = math.Max(o.MinDistance, math.Min(o.MaxDistance, o.radius))
}

func (o *OrbitController) rotate(dAzimuth, dPolar float64) {
	o.azimuth += dAzimuth
	o.polar = math.Max(polarEps, math.Min(math.Pi-polarEps, o.polar+dPolar))
}

// Drag turns a pointer delta in pixels into rotation. A drag across the full
// viewport height is one full turn at RotateSpeed 1. With Damping the
// same rotation is spread over the following Updates, easing out.
func (o *OrbitController) Drag(dx, dy, viewportHeight float64) {
	if viewportHeight <= 0 {
		viewportHeight = 1
	}
	dAz := -2 * math.Pi * dx / viewportHeight * o.RotateSpeed
	dPol := -2 * math.Pi * dy / viewportHeight * o.RotateSpeed
	if o.Damping {
		o.theta.push(dAz)
		o.phi.push(dPol)
		return
	}
	o.rotate(dAz, dPol)
}

// Wheel dollies by 0.95^ZoomSpeed per notch. Negative deltaY moves closer.
func (o *OrbitController) Wheel(deltaY float64) {
	scale := math.Pow(0.95, o.ZoomSpeed)
	switch {
	case deltaY < 0:
		o.radius *= scale
	case deltaY > 0:
		o.radius /= scale
	}
	o.clampRadius()
}

// ZoomBy multiplies the distance by factor, clamped to the allowed range.
func (o *OrbitController) ZoomBy(factor float64) {
	o.radius *= factor
	o.clampRadius()
}

// RotateAboutUp turns the camera about the world up axis through the target.
func (o *OrbitController) RotateAboutUp(angle float64) {
	o.azimuth += angle
}

// Moving reports whether inertia is still rotating the camera.
func (o *OrbitController) Moving() bool {
	return o.theta.velocity != 0 || o.phi.velocity != 0
}

// Update advances inertia by one frame and reports whether the pose changed.
func (o *OrbitController) Update() bool {
	if !o.Moving() {
		return false
	}
	o.rotate(o.theta.step(), o.phi.step())
	return true
}

// Stop drops residual inertia.
func (o *OrbitController) Stop() {
	o.theta.stop()
	o.phi.stop()
}
