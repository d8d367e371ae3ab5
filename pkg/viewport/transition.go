package viewport

import (
	"time"
)

// DefaultTransition is the focus animation length.
const DefaultTransition = 600 * time.Millisecond

// Smoothstep eases t in [0, 1].
func Smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Animator moves a camera to a new pose over a fixed duration, one frame
// callback at a time. At most one run is active; starting another cancels
// the first.
type Animator struct {
	sched Scheduler
	// apply receives every interpolated pose, including the exact final one.
	apply func(CameraState)

	frame  FrameID
	active bool
	from   CameraState
	to     CameraState
	start  time.Time
	dur    time.Duration
	done   func()
}

// NewAnimator binds an animator to a scheduler. apply is called on the
// scheduler's goroutine with each pose.
func NewAnimator(s Scheduler, apply func(CameraState)) *Animator {
	return &Animator{sched: s, apply: apply}
}

// AnimateTo starts a run from the current pose to target. A non-positive
// duration jumps straight to target on the next frame. onDone, if not nil,
// runs after the final pose is applied; it does not run for a cancelled run.
func (a *Animator) AnimateTo(from, target CameraState, duration time.Duration, onDone func()) {
	a.Cancel()
	a.active = true
	a.from, a.to = from, target
	a.start = a.sched.Now()
	a.dur = duration
	a.done = onDone
	a.frame = a.sched.RequestFrame(a.step)
}

func (a *Animator) step(now time.Time) {
	if !a.active {
		return
	}
	t := 1.0
	if a.dur > 0 {
		t = float64(now.Sub(a.start)) / float64(a.dur)
		t = max(0, min(1, t))
	}
	if t >= 1 {
		a.active = false
		a.frame = 0
		a.apply(a.to)
		if a.done != nil {
			done := a.done
			a.done = nil
			done()
		}
		return
	}
	a.apply(a.from.Lerp(a.to, Smoothstep(t)))
	a.frame = a.sched.RequestFrame(a.step)
}

// Cancel stops the active run, leaving the camera where the last frame put it.
func (a *Animator) Cancel() {
	if a.frame != 0 {
		a.sched.CancelFrame(a.frame)
		a.frame = 0
	}
	a.active = false
	a.done = nil
}

// Active reports whether a run is in flight.
func (a *Animator) Active() bool {
	return a.active
}
