package scene

import (
	"math"
	"sort"

	"github.com/taigrr/meshview/pkg/math3d"
)

// ChannelPath names the node property a channel drives.
type ChannelPath int

const (
	PathTranslation ChannelPath = iota
	PathRotation
	PathScale
)

// Channel is a keyframe track for one property of one node. Values hold
// xyz in the first three components for translation and scale, and a
// quaternion (x, y, z, w) for rotation.
type Channel struct {
	Target *Node
	Path   ChannelPath
	Times  []float64
	Values [][4]float64
	Step   bool
}

// Clip is a named set of channels sharing a timeline in seconds.
type Clip struct {
	Name     string
	Duration float64
	Channels []Channel
}

// Apply poses every channel's target at time t.
func (c *Clip) Apply(t float64) {
	for i := range c.Channels {
		c.Channels[i].apply(t)
	}
}

func (ch *Channel) apply(t float64) {
	n := min(len(ch.Times), len(ch.Values))
	if n == 0 || ch.Target == nil {
		return
	}
	i := sort.SearchFloat64s(ch.Times[:n], t)
	var v [4]float64
	switch {
	case i == 0:
		v = ch.Values[0]
	case i >= n:
		v = ch.Values[n-1]
	case ch.Step:
		v = ch.Values[i-1]
	default:
		t0, t1 := ch.Times[i-1], ch.Times[i]
		f := 0.0
		if t1 > t0 {
			f = (t - t0) / (t1 - t0)
		}
		a, b := ch.Values[i-1], ch.Values[i]
		if ch.Path == PathRotation {
			q := math3d.Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}.
				Slerp(math3d.Quat{X: b[0], Y: b[1], Z: b[2], W: b[3]}, f)
			v = [4]float64{q.X, q.Y, q.Z, q.W}
		} else {
			for k := range 3 {
				v[k] = a[k] + (b[k]-a[k])*f
			}
		}
	}

	switch ch.Path {
	case PathTranslation:
		ch.Target.Translation = math3d.V3(v[0], v[1], v[2])
	case PathRotation:
		ch.Target.Rotation = math3d.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}.Normalize()
	case PathScale:
		ch.Target.Scale = math3d.V3(v[0], v[1], v[2])
	}
}

// Mixer plays clips on a shared clock. Every playing clip loops.
type Mixer struct {
	clips   []*Clip
	time    float64
	playing bool
}

// NewMixer binds a mixer to clips without starting it.
func NewMixer(clips []*Clip) *Mixer {
	return &Mixer{clips: clips}
}

// PlayAll starts every clip from time zero.
func (m *Mixer) PlayAll() {
	m.time = 0
	m.playing = len(m.clips) > 0
	m.pose()
}

// Playing reports whether the mixer advances on Update.
func (m *Mixer) Playing() bool {
	return m != nil && m.playing
}

// Time is the mixer clock in seconds since PlayAll.
func (m *Mixer) Time() float64 {
	return m.time
}

// Update advances the clock by dt seconds and poses the nodes.
func (m *Mixer) Update(dt float64) {
	if !m.Playing() {
		return
	}
	m.time += dt
	m.pose()
}

func (m *Mixer) pose() {
	for _, c := range m.clips {
		t := m.time
		if c.Duration > 0 {
			t = math.Mod(t, c.Duration)
		}
		c.Apply(t)
	}
}

// Stop halts playback and drops the clip references.
func (m *Mixer) Stop() {
	if m == nil {
		return
	}
	m.playing = false
	m.clips = nil
}
