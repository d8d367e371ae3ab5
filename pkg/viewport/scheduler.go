package viewport

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FrameID identifies a requested frame callback. Zero is never issued.
type FrameID uint64

// FrameFunc runs once per requested frame with the frame timestamp.
type FrameFunc func(now time.Time)

// Scheduler is the host's animation-frame mechanism. A callback runs once;
// recurring work requests a new frame from inside its callback.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
	Now() time.Time
}

// ErrLoopClosed is returned when work is posted to a closed FrameLoop.
var ErrLoopClosed = errors.New("frame loop closed")

// frameQueue holds pending callbacks in request order. The batch being run
// is kept in running so a callback can still cancel a later one.
type frameQueue struct {
	next    FrameID
	order   []FrameID
	pending map[FrameID]FrameFunc
	running map[FrameID]FrameFunc
}

func (q *frameQueue) add(fn FrameFunc) FrameID {
	if q.pending == nil {
		q.pending = make(map[FrameID]FrameFunc)
	}
	q.next++
	q.pending[q.next] = fn
	q.order = append(q.order, q.next)
	return q.next
}

func (q *frameQueue) cancel(id FrameID) {
	delete(q.pending, id)
	delete(q.running, id)
}

// take starts a frame: everything queued so far becomes the running batch.
// Callbacks requested while it runs land in the next frame.
func (q *frameQueue) take() []FrameID {
	order := q.order
	q.running = q.pending
	q.order, q.pending = nil, nil
	return order
}

func (q *frameQueue) claim(id FrameID) (FrameFunc, bool) {
	fn, ok := q.running[id]
	delete(q.running, id)
	return fn, ok
}

func (q *frameQueue) len() int {
	return len(q.pending)
}

// ManualScheduler is a deterministic Scheduler for tests and offline
// tools. Frames run only when Step is called.
type ManualScheduler struct {
	now   time.Time
	queue frameQueue
}

// NewManualScheduler starts the clock at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (s *ManualScheduler) RequestFrame(fn FrameFunc) FrameID {
	return s.queue.add(fn)
}

func (s *ManualScheduler) CancelFrame(id FrameID) {
	s.queue.cancel(id)
}

func (s *ManualScheduler) Now() time.Time {
	return s.now
}

// Pending counts queued callbacks.
func (s *ManualScheduler) Pending() int {
	return s.queue.len()
}

// Step advances the clock by dt and runs one frame. It returns the number
// of callbacks run.
func (s *ManualScheduler) Step(dt time.Duration) int {
	s.now = s.now.Add(dt)
	ran := 0
	for _, id := range s.queue.take() {
		if fn, ok := s.queue.claim(id); ok {
			fn(s.now)
			ran++
		}
	}
	return ran
}

// RunUntilIdle steps until nothing is queued or max frames have run, and
// returns the number of frames stepped.
func (s *ManualScheduler) RunUntilIdle(dt time.Duration, max int) int {
	n := 0
	for n < max && s.Pending() > 0 {
		s.Step(dt)
		n++
	}
	return n
}

// FrameLoop is a real-time Scheduler that also serialises arbitrary work:
// frame callbacks and posted functions all run on its one goroutine.
type FrameLoop struct {
	interval time.Duration

	mu     sync.Mutex
	queue  frameQueue
	closed bool

	tasks chan func()
	done  chan struct{}
	stop  chan struct{}
	once  sync.Once
}

// NewFrameLoop starts a loop ticking at fps.
func NewFrameLoop(fps int) *FrameLoop {
	if fps <= 0 {
		fps = 60
	}
	l := &FrameLoop{
		interval: time.Second / time.Duration(fps),
		tasks:    make(chan func(), 64),
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *FrameLoop) run() {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case fn := <-l.tasks:
			fn()
		case now := <-ticker.C:
			l.mu.Lock()
			order := l.queue.take()
			l.mu.Unlock()
			for _, id := range order {
				l.mu.Lock()
				fn, ok := l.queue.claim(id)
				l.mu.Unlock()
				if ok {
					fn(now)
				}
			}
		}
	}
}

func (l *FrameLoop) RequestFrame(fn FrameFunc) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0
	}
	return l.queue.add(fn)
}

func (l *FrameLoop) CancelFrame(id FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue.cancel(id)
}

func (l *FrameLoop) Now() time.Time {
	return time.Now()
}

// Post queues fn to run on the loop goroutine.
func (l *FrameLoop) Post(fn func()) error {
	select {
	case <-l.stop:
		return ErrLoopClosed
	case l.tasks <- fn:
		return nil
	}
}

// Call runs fn on the loop goroutine and waits for it.
func (l *FrameLoop) Call(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)
	if err := l.Post(func() { res <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Close cancels every pending frame and stops the goroutine.
func (l *FrameLoop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = frameQueue{next: l.queue.next}
		l.mu.Unlock()
		close(l.stop)
		<-l.done
	})
}
