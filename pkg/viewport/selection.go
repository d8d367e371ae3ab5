package viewport

import (
	"strings"
	"time"

	"github.com/taigrr/meshview/pkg/scene"
)

// SelectionState is the picking state machine.
type SelectionState int

const (
	Idle SelectionState = iota
	MeshSelected
)

func (s SelectionState) String() string {
	if s == MeshSelected {
		return "meshSelected"
	}
	return "idle"
}

// MeshRef names a mesh node by display name and id.
type MeshRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

func refOf(n *scene.Node) MeshRef {
	return MeshRef{Name: n.DisplayName(), ID: n.ID}
}

// highlight owns the single glowing node.
type highlight struct {
	node *scene.Node
}

func (h *highlight) set(n *scene.Node, rgb [3]float64) {
	h.clear()
	h.node = n
	n.SetEmissive(rgb)
}

func (h *highlight) clear() {
	if h.node != nil {
		h.node.ResetAppearance()
		h.node = nil
	}
}

// Selection tracks the picked mesh and the label being written for it.
// Picking and focusing share one highlight, so at most one node glows.
type Selection struct {
	hl          highlight
	selected    *scene.Node
	label       string
	description string

	PickColor  [3]float64
	FocusColor [3]float64
}

// NewSelection returns an idle selection with red pick and green focus colors.
func NewSelection() *Selection {
	return &Selection{
		PickColor:  [3]float64{1, 0, 0},
		FocusColor: [3]float64{0, 1, 0},
	}
}

// State reports idle or meshSelected.
func (s *Selection) State() SelectionState {
	if s.selected != nil {
		return MeshSelected
	}
	return Idle
}

// Selected returns the picked mesh, if any.
func (s *Selection) Selected() (MeshRef, bool) {
	if s.selected == nil {
		return MeshRef{}, false
	}
	return refOf(s.selected), true
}

// Highlighted returns the node currently glowing, or nil.
func (s *Selection) Highlighted() *scene.Node {
	return s.hl.node
}

// Pending returns the unsaved label and description.
func (s *Selection) Pending() (label, description string) {
	return s.label, s.description
}

// Select picks n, replacing any previous selection and its draft.
func (s *Selection) Select(n *scene.Node) {
	s.Clear()
	s.selected = n
	s.hl.set(n, s.PickColor)
}

// Focus highlights n as a search result. Any pick in progress is dropped.
func (s *Selection) Focus(n *scene.Node) {
	s.Clear()
	s.hl.set(n, s.FocusColor)
}

// Edit stores the draft label and description for the selected mesh.
func (s *Selection) Edit(label, description string) error {
	if s.selected == nil {
		return ErrNoSelection
	}
	s.label, s.description = label, description
	return nil
}

// Commit turns the draft into an annotation carrying the mesh's world box
// and returns to idle. The label is stored as typed; the draft is kept when
// it is blank.
func (s *Selection) Commit(modelID string, now time.Time) (Annotation, error) {
	if s.selected == nil {
		return Annotation{}, ErrNoSelection
	}
	if strings.TrimSpace(s.label) == "" {
		return Annotation{}, ErrEmptyLabel
	}
	n := s.selected
	a := Annotation{
		ID:          scene.NewID(),
		ModelID:     modelID,
		MeshName:    n.DisplayName(),
		MeshID:      n.ID,
		Label:       s.label,
		Description: s.description,
		BoundingBox: n.WorldBounds(),
		CreatedAt:   now.UTC(),
	}
	s.Clear()
	return a, nil
}

// Clear drops the selection, its draft and the highlight.
func (s *Selection) Clear() {
	s.hl.clear()
	s.selected = nil
	s.label, s.description = "", ""
}
