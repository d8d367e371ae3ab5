package viewport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/meshview/pkg/loader"
	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/scene"
)

// Status is the model lifecycle of a Viewer.
type Status int

const (
	StatusEmpty Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "empty"
	}
}

// FocusInfo reports the mesh a focus request moved to.
type FocusInfo struct {
	Name   string      `json:"name"`
	ID     string      `json:"id"`
	Center math3d.Vec3 `json:"center"`
}

// Controls is the imperative handle hosts bind to buttons.
type Controls struct {
	ZoomIn           func()
	ZoomOut          func()
	RotateLeft       func()
	RotateRight      func()
	ToggleFullscreen func() error
}

// LoadTicket identifies one load request. Installing a ticket that a newer
// BeginLoad has replaced discards its scene.
type LoadTicket struct {
	gen  uint64
	Desc loader.ModelDescriptor
}

// Viewer owns the camera, the loaded scene and everything that writes to
// them. It is not safe for concurrent use: every method, and every frame
// callback, must run on the scheduler's goroutine.
type Viewer struct {
	settings Settings
	log      *zap.Logger
	sched    Scheduler
	ownLoop  *FrameLoop
	loader   ModelLoader
	ray      Raycaster
	display  Display
	store    *AnnotationStore

	status  Status
	desc    loader.ModelDescriptor
	gen     uint64
	lastErr error
	scene   *scene.Scene
	bounds  math3d.Box3
	mixer   *scene.Mixer

	cam    CameraState
	orbit  *OrbitController
	anim   *Animator
	sel    *Selection
	width  float64
	height float64

	frame     FrameID
	lastFrame time.Time
	listeners []func(time.Time, CameraState)
	closed    bool
}

// New creates an empty viewer.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		settings: DefaultSettings(),
		log:      zap.NewNop(),
		ray:      SceneRaycaster{},
		display:  headless{},
		width:    1,
		height:   1,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.sched == nil {
		v.ownLoop = NewFrameLoop(v.settings.FPS)
		v.sched = v.ownLoop
	}
	if v.loader == nil {
		v.loader = loader.New(loader.WithLogger(v.log))
	}
	if v.store == nil {
		v.store = NewAnnotationStore()
	}

	v.cam = DefaultCamera()
	v.cam.FOV = v.settings.FOV
	v.orbit = NewOrbitController(v.settings.FPS)
	v.orbit.MinDistance = v.settings.MinDistance
	v.orbit.MaxDistance = v.settings.MaxDistance
	v.orbit.RotateSpeed = v.settings.RotateSpeed
	v.orbit.ZoomSpeed = v.settings.ZoomSpeed
	v.orbit.Damping = v.settings.Damping
	v.orbit.Sync(v.cam)

	v.sel = NewSelection()
	v.sel.PickColor = v.settings.PickColor
	v.sel.FocusColor = v.settings.FocusColor
	v.anim = NewAnimator(v.sched, v.applyTransition)
	return v
}

// Status reports the model lifecycle state.
func (v *Viewer) Status() Status { return v.status }

// Err is the error of the last failed load.
func (v *Viewer) Err() error { return v.lastErr }

// Scene is the loaded scene, or nil.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Descriptor is the model currently shown or loading.
func (v *Viewer) Descriptor() loader.ModelDescriptor { return v.desc }

// Bounds is the normalized scene box.
func (v *Viewer) Bounds() math3d.Box3 { return v.bounds }

// Camera is the current camera.
func (v *Viewer) Camera() CameraState { return v.cam }

// Annotations is the viewer's annotation store.
func (v *Viewer) Annotations() *AnnotationStore { return v.store }

// Selection is the picking state.
func (v *Viewer) Selection() *Selection { return v.sel }

// Transitioning reports whether a focus animation is running.
func (v *Viewer) Transitioning() bool { return v.anim.Active() }

// ModelID stamps manifests and annotations.
func (v *Viewer) ModelID() string {
	if v.settings.ModelID != "" {
		return v.settings.ModelID
	}
	if v.scene != nil {
		return v.scene.ID
	}
	return ""
}

// OnFrame registers fn to run after every frame the viewer draws.
func (v *Viewer) OnFrame(fn func(now time.Time, cam CameraState)) {
	v.listeners = append(v.listeners, fn)
}

// SeedAnnotations reads path into the store once. A missing file is fine.
func (v *Viewer) SeedAnnotations(path string) error {
	if path == "" {
		return nil
	}
	n, err := v.store.LoadSeed(path)
	if err != nil {
		return err
	}
	v.log.Info("seeded annotations", zap.String("path", path), zap.Int("count", n))
	return nil
}

// Load fetches desc and installs it. It blocks until the model resolves.
func (v *Viewer) Load(ctx context.Context, desc loader.ModelDescriptor) error {
	t := v.BeginLoad(desc)
	sc, err := v.loader.Load(ctx, desc)
	return v.Install(t, sc, err)
}

// BeginLoad marks a new load in flight and supersedes any earlier one. The
// current scene is released at once, so picking, search and manifests see
// no model until Install succeeds. The fetch itself may run on another
// goroutine; hand the result back through Install on the scheduler's
// goroutine.
func (v *Viewer) BeginLoad(desc loader.ModelDescriptor) LoadTicket {
	v.release()
	v.gen++
	v.desc = desc
	v.status = StatusLoading
	v.lastErr = nil
	v.log.Info("loading model", zap.String("url", desc.URL), zap.String("format", string(desc.Format)))
	return LoadTicket{gen: v.gen, Desc: desc}
}

// Loader exposes the configured loader so hosts can fetch off-loop.
func (v *Viewer) Loader() ModelLoader { return v.loader }

// Install shows sc, or records err and leaves the viewer without a model.
func (v *Viewer) Install(t LoadTicket, sc *scene.Scene, err error) error {
	if t.gen != v.gen || v.closed {
		if sc != nil {
			sc.Release()
		}
		return ErrSuperseded
	}
	if err != nil {
		v.status = StatusFailed
		v.lastErr = err
		v.log.Error("model load failed", zap.String("url", t.Desc.URL), zap.Error(err))
		return err
	}

	v.scene = sc
	v.bounds, v.mixer = Normalize(sc)
	v.log.Debug("normalized scene",
		zap.Any("min", v.bounds.Min),
		zap.Any("max", v.bounds.Max),
		zap.Int("clips", len(sc.Clips)))

	v.setCamera(FitScene(v.bounds, v.cam))
	v.status = StatusReady
	st := sc.Stats()
	v.log.Info("model ready",
		zap.String("url", t.Desc.URL),
		zap.Int("nodes", st.Nodes),
		zap.Int("meshes", st.Meshes),
		zap.Float64("distance", v.cam.Distance()))
	return nil
}

func (v *Viewer) release() {
	v.anim.Cancel()
	v.orbit.Stop()
	v.sel.Clear()
	if v.mixer != nil {
		v.mixer.Stop()
		v.mixer = nil
	}
	if v.scene != nil {
		v.scene.Release()
		v.scene = nil
	}
	v.bounds = math3d.EmptyBox()
}

// Fit reframes the whole scene.
func (v *Viewer) Fit() {
	v.anim.Cancel()
	v.setCamera(FitScene(v.bounds, v.cam))
}

// SetViewport records the canvas size used for picking and drag scaling.
func (v *Viewer) SetViewport(width, height float64) {
	if width > 0 {
		v.width = width
	}
	if height > 0 {
		v.height = height
	}
}

// Drag rotates the orbit by a pointer delta in pixels.
func (v *Viewer) Drag(dx, dy float64) {
	v.takeCamera()
	v.orbit.Drag(dx, dy, v.height)
	v.orbit.Apply(&v.cam)
	v.wake()
}

// Wheel dollies by one wheel notch per unit sign of deltaY.
func (v *Viewer) Wheel(deltaY float64) {
	v.takeCamera()
	v.orbit.Wheel(deltaY)
	v.orbit.Apply(&v.cam)
	v.wake()
}

// ZoomIn moves ZoomStep of the distance closer.
func (v *Viewer) ZoomIn() { v.zoom(1 - v.settings.ZoomStep) }

// ZoomOut moves ZoomStep of the distance away.
func (v *Viewer) ZoomOut() { v.zoom(1 + v.settings.ZoomStep) }

// RotateLeft turns the camera RotateStep about world up.
func (v *Viewer) RotateLeft() { v.rotate(v.settings.RotateStep) }

// RotateRight turns the camera RotateStep the other way.
func (v *Viewer) RotateRight() { v.rotate(-v.settings.RotateStep) }

func (v *Viewer) zoom(factor float64) {
	v.takeCamera()
	v.orbit.ZoomBy(factor)
	v.orbit.Apply(&v.cam)
	v.wake()
}

func (v *Viewer) rotate(angle float64) {
	v.takeCamera()
	v.orbit.RotateAboutUp(angle)
	v.orbit.Apply(&v.cam)
	v.wake()
}

// ToggleFullscreen asks the display to switch modes.
func (v *Viewer) ToggleFullscreen() error {
	if err := v.display.ToggleFullscreen(); err != nil {
		v.log.Warn("fullscreen toggle failed", zap.Error(err))
		return err
	}
	return nil
}

// Controls returns the imperative navigation handle.
func (v *Viewer) Controls() Controls {
	return Controls{
		ZoomIn:           v.ZoomIn,
		ZoomOut:          v.ZoomOut,
		RotateLeft:       v.RotateLeft,
		RotateRight:      v.RotateRight,
		ToggleFullscreen: v.ToggleFullscreen,
	}
}

// Click picks the topmost mesh under (x, y). A miss leaves the selection
// as it was and reports false.
func (v *Viewer) Click(x, y float64) (MeshRef, bool) {
	if v.scene == nil {
		return MeshRef{}, false
	}
	ray := ScreenRay(v.cam, x, y, v.width, v.height)
	hit, err := v.ray.Intersect(v.scene, ray)
	if err != nil {
		if !errors.Is(err, ErrPickMiss) {
			v.log.Warn("pick failed", zap.Error(err))
		}
		return MeshRef{}, false
	}
	v.sel.Select(hit.Node)
	v.wake()
	ref := refOf(hit.Node)
	v.log.Debug("picked mesh", zap.String("name", ref.Name), zap.String("id", ref.ID), zap.Float64("distance", hit.Distance))
	return ref, true
}

// Select picks a mesh by reference without a ray.
func (v *Viewer) Select(ref MeshRef) error {
	n, err := v.find(ref)
	if err != nil {
		return err
	}
	v.sel.Select(n)
	v.wake()
	return nil
}

// Edit sets the draft label and description of the selected mesh.
func (v *Viewer) Edit(label, description string) error {
	return v.sel.Edit(label, description)
}

// SaveAnnotation commits the draft and clears the highlight.
func (v *Viewer) SaveAnnotation() (Annotation, error) {
	a, err := v.sel.Commit(v.ModelID(), v.sched.Now())
	if err != nil {
		return Annotation{}, err
	}
	v.store.Add(a)
	v.wake()
	v.log.Info("saved annotation", zap.String("label", a.Label), zap.String("mesh", a.MeshName))
	return a, nil
}

// CancelSelection drops the selection and its draft.
func (v *Viewer) CancelSelection() {
	v.sel.Clear()
	v.wake()
}

// Search focuses the mesh of the first annotation whose label contains
// query. On any error the camera is left exactly as it was.
func (v *Viewer) Search(query string) (FocusInfo, error) {
	a, err := v.store.Search(query)
	if err != nil {
		v.log.Info("search miss", zap.String("query", query))
		return FocusInfo{}, err
	}
	return v.FocusMesh(a.Ref())
}

// FocusMesh animates the camera to frame one mesh, keeping the current
// viewing direction, and highlights it.
func (v *Viewer) FocusMesh(ref MeshRef) (FocusInfo, error) {
	n, err := v.find(ref)
	if err != nil {
		return FocusInfo{}, err
	}
	box := n.WorldBounds()
	target := FocusBox(box, v.cam)
	info := FocusInfo{Name: n.DisplayName(), ID: n.ID, Center: box.Center()}

	v.orbit.Stop()
	v.sel.Focus(n)
	v.anim.AnimateTo(v.cam, target, v.settings.Transition, func() {
		v.log.Debug("focus settled", zap.String("mesh", info.Name))
	})
	v.log.Info("focusing mesh", zap.String("name", info.Name), zap.String("id", info.ID))
	return info, nil
}

func (v *Viewer) find(ref MeshRef) (*scene.Node, error) {
	if v.scene == nil {
		return nil, ErrNoScene
	}
	var n *scene.Node
	if ref.ID != "" {
		n = v.scene.FindByID(ref.ID)
	}
	if n == nil && ref.Name != "" {
		n = v.scene.FindByName(ref.Name)
	}
	if n == nil || n.Mesh == nil {
		return nil, fmt.Errorf("%s: %w", ref.Name, ErrMeshNotFound)
	}
	return n, nil
}

// Manifest describes the current scene.
func (v *Viewer) Manifest() (Manifest, error) {
	if v.scene == nil {
		return Manifest{}, ErrNoScene
	}
	return GenerateManifest(v.scene, v.ModelID()), nil
}

// WriteManifest writes manifest.json content to w.
func (v *Viewer) WriteManifest(w io.Writer) error {
	m, err := v.Manifest()
	if err != nil {
		return err
	}
	return m.WriteJSON(w)
}

// WriteAnnotations writes annotations.json content to w.
func (v *Viewer) WriteAnnotations(w io.Writer) error {
	return v.store.WriteJSON(w)
}

// Close releases the scene and cancels every pending frame callback.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.release()
	if v.frame != 0 {
		v.sched.CancelFrame(v.frame)
		v.frame = 0
	}
	if v.ownLoop != nil {
		v.ownLoop.Close()
	}
}

// takeCamera makes user input the camera's writer, preempting a focus.
func (v *Viewer) takeCamera() {
	if v.anim.Active() {
		v.anim.Cancel()
		v.orbit.Sync(v.cam)
	}
}

func (v *Viewer) setCamera(c CameraState) {
	v.cam = c
	v.orbit.Sync(c)
	v.wake()
}

func (v *Viewer) applyTransition(c CameraState) {
	v.setCamera(c)
}

// wake requests a frame unless one is already queued.
func (v *Viewer) wake() {
	if v.closed || v.frame != 0 {
		return
	}
	v.frame = v.sched.RequestFrame(v.tick)
}

func (v *Viewer) tick(now time.Time) {
	v.frame = 0
	if v.closed {
		return
	}
	dt := 0.0
	if !v.lastFrame.IsZero() {
		dt = now.Sub(v.lastFrame).Seconds()
	}
	v.lastFrame = now

	if v.orbit.Update() {
		v.orbit.Apply(&v.cam)
	}
	if v.mixer != nil {
		v.mixer.Update(dt)
	}
	for _, fn := range v.listeners {
		fn(now, v.cam)
	}
	if v.orbit.Moving() || (v.mixer != nil && v.mixer.Playing()) {
		v.wake()
	} else {
		v.lastFrame = time.Time{}
	}
}
