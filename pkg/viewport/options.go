package viewport

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/meshview/pkg/loader"
	"github.com/taigrr/meshview/pkg/scene"
)

// Settings tunes navigation and appearance.
type Settings struct {
	FPS         int
	FOV         float64
	Transition  time.Duration
	ZoomStep    float64
	RotateStep  float64
	MinDistance float64
	MaxDistance float64
	RotateSpeed float64
	ZoomSpeed   float64
	Damping     bool
	PickColor   [3]float64
	FocusColor  [3]float64
	// ModelID stamps manifests and annotations. Empty uses the scene id.
	ModelID string
}

// DefaultSettings returns the stock navigation settings.
func DefaultSettings() Settings {
	return Settings{
		FPS:         60,
		FOV:         DefaultFOV,
		Transition:  DefaultTransition,
		ZoomStep:    ZoomStep,
		RotateStep:  RotateStep,
		MinDistance: 0,
		MaxDistance: math.Inf(1),
		RotateSpeed: 1,
		ZoomSpeed:   1,
		PickColor:   [3]float64{1, 0, 0},
		FocusColor:  [3]float64{0, 1, 0},
	}
}

// ModelLoader resolves a descriptor into a scene. *loader.Loader satisfies it.
type ModelLoader interface {
	Load(ctx context.Context, desc loader.ModelDescriptor) (*scene.Scene, error)
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(v *Viewer) { v.settings = s }
}

// WithLogger sets the viewer logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Viewer) { v.log = l }
}

// WithScheduler sets the frame scheduler. The default is a FrameLoop at the
// configured FPS, owned and closed by the viewer.
func WithScheduler(s Scheduler) Option {
	return func(v *Viewer) { v.sched = s }
}

// WithLoader sets the model loader.
func WithLoader(l ModelLoader) Option {
	return func(v *Viewer) { v.loader = l }
}

// WithRaycaster replaces the triangle-exact scene raycaster.
func WithRaycaster(r Raycaster) Option {
	return func(v *Viewer) { v.ray = r }
}

// WithDisplay sets the fullscreen-capable host surface.
func WithDisplay(d Display) Option {
	return func(v *Viewer) { v.display = d }
}

// WithAnnotations shares an existing annotation store.
func WithAnnotations(s *AnnotationStore) Option {
	return func(v *Viewer) { v.store = s }
}
