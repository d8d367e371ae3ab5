package viewport

import (
	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/scene"
)

// Normalize moves the scene so its world bounds are centred on the origin
// and starts every embedded clip looping. It only translates the root; scale
// and rotation are untouched. Call it once per load. The returned bounds are
// the centred box, measured before any clip moves the nodes.
func Normalize(s *scene.Scene) (math3d.Box3, *scene.Mixer) {
	bounds := s.Bounds()
	if !bounds.IsEmpty() {
		shift := bounds.Center().Negate()
		if s.Root.Matrix != nil {
			m := math3d.Translate(shift).Mul(*s.Root.Matrix)
			s.Root.Matrix = &m
		} else {
			s.Root.Translation = s.Root.Translation.Add(shift)
		}
		bounds = bounds.Translate(shift)
	}
	mixer := scene.NewMixer(s.Clips)
	mixer.PlayAll()
	return bounds, mixer
}
