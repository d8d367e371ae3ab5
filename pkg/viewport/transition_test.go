package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/meshview/pkg/math3d"
)

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, Smoothstep(0))
	assert.Equal(t, 0.5, Smoothstep(0.5))
	assert.Equal(t, 1.0, Smoothstep(1))
	assert.InDelta(t, 0.104, Smoothstep(0.2), 1e-12)
}

func TestAnimatorLandsExactlyOnTarget(t *testing.T) {
	s := NewManualScheduler(epoch)
	var got []CameraState
	a := NewAnimator(s, func(c CameraState) { got = append(got, c) })

	from := DefaultCamera()
	to := from
	to.Position = math3d.V3(1.0/3, 7.1, -2.9)
	to.Target = math3d.V3(0.1, 0.2, 0.3)

	done := 0
	a.AnimateTo(from, to, DefaultTransition, func() { done++ })
	require.True(t, a.Active())

	frames := s.RunUntilIdle(16*time.Millisecond, 1000)
	assert.Equal(t, 38, frames)
	assert.Zero(t, s.Pending(), "no callback after the final frame")
	assert.False(t, a.Active())
	assert.Equal(t, 1, done)
	require.NotEmpty(t, got)
	assert.Equal(t, to, got[len(got)-1])
}

func TestAnimatorEasesThroughMidpoint(t *testing.T) {
	s := NewManualScheduler(epoch)
	var last CameraState
	a := NewAnimator(s, func(c CameraState) { last = c })

	from := DefaultCamera()
	to := from
	to.Position = math3d.V3(0, 0, 15)
	a.AnimateTo(from, to, time.Second, nil)

	s.Step(250 * time.Millisecond)
	assert.InDelta(t, 5+10*Smoothstep(0.25), last.Position.Z, 1e-9)
	s.Step(250 * time.Millisecond)
	assert.InDelta(t, 10.0, last.Position.Z, 1e-9)
	s.Step(500 * time.Millisecond)
	assert.Equal(t, to, last)
}

func TestAnimatorRestartCancelsPrevious(t *testing.T) {
	s := NewManualScheduler(epoch)
	var last CameraState
	a := NewAnimator(s, func(c CameraState) { last = c })

	first := DefaultCamera()
	first.Position = math3d.V3(100, 0, 0)
	second := DefaultCamera()
	second.Position = math3d.V3(0, 100, 0)

	firstDone := false
	a.AnimateTo(DefaultCamera(), first, time.Second, func() { firstDone = true })
	s.Step(100 * time.Millisecond)
	a.AnimateTo(last, second, 200*time.Millisecond, nil)
	assert.Equal(t, 1, s.Pending())

	s.RunUntilIdle(50*time.Millisecond, 100)
	assert.False(t, firstDone)
	assert.Equal(t, second, last)
}

func TestAnimatorCancelLeavesPose(t *testing.T) {
	s := NewManualScheduler(epoch)
	calls := 0
	a := NewAnimator(s, func(CameraState) { calls++ })
	to := DefaultCamera()
	to.Position = math3d.V3(0, 0, 50)
	a.AnimateTo(DefaultCamera(), to, time.Second, nil)
	s.Step(100 * time.Millisecond)
	a.Cancel()
	assert.Zero(t, s.Pending())
	assert.Equal(t, 0, s.Step(100*time.Millisecond))
	assert.Equal(t, 1, calls)
}

func TestAnimatorZeroDuration(t *testing.T) {
	s := NewManualScheduler(epoch)
	var last CameraState
	a := NewAnimator(s, func(c CameraState) { last = c })
	to := DefaultCamera()
	to.Target = math3d.V3(1, 2, 3)
	a.AnimateTo(DefaultCamera(), to, 0, nil)
	assert.Equal(t, 1, s.Step(0))
	assert.Equal(t, to, last)
	assert.Zero(t, s.Pending())
}
