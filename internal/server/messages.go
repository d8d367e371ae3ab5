package server

import (
	"github.com/taigrr/meshview/pkg/viewport"
)

// Request is one client message. Type selects which fields matter.
type Request struct {
	Type string `json:"type"`
	ID   int    `json:"id,omitempty"`

	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Query       string            `json:"query,omitempty"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	URL         string            `json:"url,omitempty"`
	Mesh        *viewport.MeshRef `json:"mesh,omitempty"`
}

// Request types.
const (
	MsgDrag        = "drag"
	MsgWheel       = "wheel"
	MsgClick       = "click"
	MsgViewport    = "viewport"
	MsgZoomIn      = "zoomIn"
	MsgZoomOut     = "zoomOut"
	MsgRotateLeft  = "rotateLeft"
	MsgRotateRight = "rotateRight"
	MsgFullscreen  = "fullscreen"
	MsgSearch      = "search"
	MsgFocus       = "focus"
	MsgSelect      = "select"
	MsgEdit        = "edit"
	MsgSave        = "save"
	MsgCancel      = "cancel"
	MsgLoad        = "load"
	MsgState       = "state"
)

// Response types.
const (
	MsgHello  = "hello"
	MsgFrame  = "frame"
	MsgResult = "result"
	MsgError  = "error"
)

// Response is a reply to a Request or a pushed event.
type Response struct {
	Type  string `json:"type"`
	ID    int    `json:"id,omitempty"`
	Error string `json:"error,omitempty"`

	Status     string                `json:"status,omitempty"`
	Model      string                `json:"model,omitempty"`
	Camera     *viewport.CameraState `json:"camera,omitempty"`
	Selection  string                `json:"selection,omitempty"`
	Mesh       *viewport.MeshRef     `json:"mesh,omitempty"`
	Focus      *viewport.FocusInfo   `json:"focus,omitempty"`
	Annotation *viewport.Annotation  `json:"annotation,omitempty"`
	// Fullscreen asks the browser to toggle its canvas.
	Fullscreen bool `json:"fullscreen,omitempty"`
}
