package pipeline

import (
	"time"

	"github.com/Meesho/BharatMLStack/inferline/internal/errors"
	"github.com/Meesho/BharatMLStack/inferline/pkg/logger"
	"github.com/Meesho/BharatMLStack/inferline/pkg/metrics"
)

// batch is a cut of queued requests, in arrival order. It only lives
// between the scheduler cut and the executor resolving its members.
type batch struct {
	requests  []*request
	createdAt time.Time
}

// consume is the single logical consumer. It blocks for the first item of
// each batch, then accumulates until the size cap or the window timer wins,
// hands the cut to the executor without waiting for inference, and starts
// over. A window never opens on an empty queue.
func (p *Pipeline) consume() {
	defer close(p.loopDone)

	for {
		var first *request
		select {
		case first = <-p.queue.items():
		case <-p.stopCh:
			p.drain()
			return
		}

		b := p.collect(first)
		p.dispatch(b)
	}
}

// collect accumulates a batch starting from first. It returns early on
// shutdown with whatever was gathered; those requests were admitted before
// the stop and still get inference.
func (p *Pipeline) collect(first *request) batch {
	requests := make([]*request, 0, p.maxBatchSize)
	requests = append(requests, first)

	window := p.clock.NewTimer(p.batchWindow)
	defer window.Stop()

	for len(requests) < p.maxBatchSize {
		select {
		case r := <-p.queue.items():
			requests = append(requests, r)
		case <-window.C():
			return batch{requests: requests, createdAt: p.clock.Now()}
		case <-p.stopCh:
			return batch{requests: requests, createdAt: p.clock.Now()}
		}
	}
	return batch{requests: requests, createdAt: p.clock.Now()}
}

// dispatch marks members batched and offloads inference to its own
// goroutine, so formation of the next batch never waits on the model.
func (p *Pipeline) dispatch(b batch) {
	for _, r := range b.requests {
		r.advance(stateQueued, stateBatched)
	}
	metrics.Histogram(metrics.BatchSize, float64(len(b.requests)), nil)
	metrics.Gauge(metrics.QueueDepth, float64(p.queue.Depth()), nil)

	p.inflight.Add(1)
	go p.runBatch(b)
}

// drain empties the queue at shutdown, giving every still-queued request a
// terminal outcome. Nothing is left waiting.
func (p *Pipeline) drain() {
	drained := 0
	for {
		select {
		case r := <-p.queue.items():
			r.resolve(Outcome{
				Kind: OutcomeFailed,
				Err:  &errors.ShutdownError{ErrorMsg: "pipeline shutting down"},
			})
			drained++
		default:
			if drained > 0 {
				logger.Warn("Drained unserved requests during shutdown")
			}
			metrics.Gauge(metrics.QueueDepth, float64(p.queue.Depth()), nil)
			return
		}
	}
}
