package capture

import "sync"

// FrameQueue is a bounded handoff between the capture loop and the inference
// loop. When inference cannot keep up with capture, the oldest undispatched
// frame is dropped and its buffer released, so latency stays bounded at the
// cost of completeness.
type FrameQueue struct {
	mu      sync.Mutex
	frames  []Frame
	cap     int
	dropped uint64
	closed  bool
	ready   chan struct{}
}

// NewFrameQueue creates a queue holding at most capacity frames.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &FrameQueue{
		cap:   capacity,
		ready: make(chan struct{}, 1),
	}
}

// Push enqueues a frame, evicting the oldest one if the queue is full.
// The evicted frame's buffer is closed here. Pushing to a closed queue
// closes the frame and reports false.
func (q *FrameQueue) Push(frame Frame) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		frame.Close()
		return false
	}

	if len(q.frames) == q.cap {
		q.frames[0].Close()
		q.frames = q.frames[1:]
		q.dropped++
	}
	q.frames = append(q.frames, frame)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Pop takes the newest frame, discarding any staler ones still queued, and
// blocks until a frame arrives or the queue is closed. The second return is
// false only after Close.
func (q *FrameQueue) Pop() (Frame, bool) {
	for {
		q.mu.Lock()
		if n := len(q.frames); n > 0 {
			// Newest frame wins; everything older is stale by now.
			for i := 0; i < n-1; i++ {
				q.frames[i].Close()
				q.dropped++
			}
			frame := q.frames[n-1]
			q.frames = q.frames[:0]
			q.mu.Unlock()
			return frame, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return Frame{}, false
		}
		<-q.ready
	}
}

// Dropped returns how many frames have been discarded so far.
func (q *FrameQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Close releases all queued frames and wakes any blocked Pop.
func (q *FrameQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, f := range q.frames {
		f.Close()
	}
	q.frames = nil
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}
