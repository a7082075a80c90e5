package pipeline

import (
	"github.com/Meesho/BharatMLStack/inferline/internal/errors"
	"github.com/Meesho/BharatMLStack/inferline/pkg/metrics"
)

var (
	overloadedTags = []string{"reason:overloaded"}
	queueFullTags  = []string{"reason:queue_full"}
)

// admit is the backpressure gate. The watermark is recomputed from live
// depth on every call, with no hysteresis band; a request rejected here has
// never touched the queue. The enqueue itself revalidates against hard
// capacity, closing the race left open by the depth read.
func (p *Pipeline) admit(r *request) error {
	if p.queue.Depth() >= p.watermarkDepth {
		metrics.Count(metrics.QueueRejections, 1, overloadedTags)
		return &errors.OverloadedError{ErrorMsg: "inference queue at high watermark"}
	}

	r.advance(stateCreated, stateAdmitted)
	if !p.queue.tryEnqueue(r) {
		metrics.Count(metrics.QueueRejections, 1, queueFullTags)
		return &errors.QueueFullError{ErrorMsg: "inference queue at capacity"}
	}
	r.advance(stateAdmitted, stateQueued)
	metrics.Gauge(metrics.QueueDepth, float64(p.queue.Depth()), nil)
	return nil
}
