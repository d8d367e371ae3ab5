package viewport

import "errors"

var (
	// ErrNoScene is returned by operations that need a loaded model.
	ErrNoScene = errors.New("no model loaded")
	// ErrNoSelection is returned when editing or saving without a picked mesh.
	ErrNoSelection = errors.New("no mesh selected")
	// ErrEmptyLabel rejects saving an annotation without a label.
	ErrEmptyLabel = errors.New("annotation label is empty")
	// ErrSuperseded is returned when a newer load replaced this one.
	ErrSuperseded = errors.New("load superseded by a newer model")
	// ErrMeshNotFound means a reference no longer matches any mesh.
	ErrMeshNotFound = errors.New("mesh not found in scene")
)
