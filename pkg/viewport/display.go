package viewport

import "errors"

// ErrFullscreenUnsupported is reported when the host cannot go fullscreen.
var ErrFullscreenUnsupported = errors.New("fullscreen not supported")

// Display is the host surface the viewport is drawn into.
type Display interface {
	ToggleFullscreen() error
}

type headless struct{}

func (headless) ToggleFullscreen() error {
	return ErrFullscreenUnsupported
}
