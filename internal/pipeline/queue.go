package pipeline

// boundedQueue is the admitted-but-unbatched FIFO. A buffered channel gives
// the hard capacity bound and the arrival ordering in one structure: the
// channel send either succeeds within capacity or fails immediately, so
// depth can never exceed capacity under any interleaving of producers.
type boundedQueue struct {
	ch       chan *request
	capacity int
}

func newBoundedQueue(capacity int) *boundedQueue {
	return &boundedQueue{
		ch:       make(chan *request, capacity),
		capacity: capacity,
	}
}

// Depth is the live occupancy. It is inherently momentary under concurrent
// producers; the gate re-reads it on every admission decision.
func (q *boundedQueue) Depth() int {
	return len(q.ch)
}

func (q *boundedQueue) Capacity() int {
	return q.capacity
}

// tryEnqueue appends without blocking. A false return means the queue hit
// hard capacity in the race between the gate's watermark read and this send.
func (q *boundedQueue) tryEnqueue(r *request) bool {
	select {
	case q.ch <- r:
		return true
	default:
		return false
	}
}

// items exposes the receive side to the single consumer.
func (q *boundedQueue) items() <-chan *request {
	return q.ch
}
