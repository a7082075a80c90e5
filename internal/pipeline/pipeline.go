package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	appconfig "github.com/Meesho/BharatMLStack/inferline/internal/config"
	"github.com/Meesho/BharatMLStack/inferline/internal/errors"
	"github.com/Meesho/BharatMLStack/inferline/pkg/logger"
	"github.com/Meesho/BharatMLStack/inferline/pkg/metrics"
)

// Config carries the five serving knobs. It is decoupled from the env
// config so tests can construct pipelines directly.
type Config struct {
	QueueCapacity         int
	HighWatermarkFraction float64
	BatchWindow           time.Duration
	MaxBatchSize          int
	RequestTimeout        time.Duration
}

func ConfigFromApp(configs *appconfig.AppConfigs) Config {
	return Config{
		QueueCapacity:         configs.Configs.QueueCapacity,
		HighWatermarkFraction: configs.Configs.QueueWatermarkFraction,
		BatchWindow:           configs.Configs.BatchWindow(),
		MaxBatchSize:          configs.Configs.BatchMaxSize,
		RequestTimeout:        configs.Configs.RequestTimeout(),
	}
}

// Pipeline is the admission, micro-batching and deadline enforcement stage
// between the transport and the model. Many callers submit concurrently; a
// single consumer goroutine forms batches; inference runs on per-batch
// goroutines so batch formation is never blocked by the model.
type Pipeline struct {
	queue          *boundedQueue
	predictor      Predictor
	clock          Clock
	watermarkDepth int
	batchWindow    time.Duration
	maxBatchSize   int
	requestTimeout time.Duration

	stopCh   chan struct{}
	stopped  atomic.Bool
	started  atomic.Bool
	loopDone chan struct{}
	inflight sync.WaitGroup
}

func New(cfg Config, predictor Predictor) *Pipeline {
	return newWithClock(cfg, predictor, systemClock{})
}

func newWithClock(cfg Config, predictor Predictor, clock Clock) *Pipeline {
	return &Pipeline{
		queue:          newBoundedQueue(cfg.QueueCapacity),
		predictor:      predictor,
		clock:          clock,
		watermarkDepth: int(float64(cfg.QueueCapacity) * cfg.HighWatermarkFraction),
		batchWindow:    cfg.BatchWindow,
		maxBatchSize:   cfg.MaxBatchSize,
		requestTimeout: cfg.RequestTimeout,
		stopCh:         make(chan struct{}),
		loopDone:       make(chan struct{}),
	}
}

// Start launches the consumer loop. Safe to call once.
func (p *Pipeline) Start() {
	if p.started.Swap(true) {
		return
	}
	go p.consume()
	logger.Info("Inference pipeline started")
}

// Stop shuts the pipeline down: no new admissions, queued requests are
// drained with a shutdown failure, and in-flight batches run to completion
// so every admitted request ends terminal.
func (p *Pipeline) Stop() {
	if p.stopped.Swap(true) {
		return
	}
	close(p.stopCh)
	if p.started.Load() {
		<-p.loopDone
	}
	p.inflight.Wait()
	// Racing producers may have slipped an item in after the consumer
	// drained; sweep once more now that admissions are closed.
	p.drain()
	logger.Info("Inference pipeline stopped")
}

// QueueDepth is exposed for health reporting.
func (p *Pipeline) QueueDepth() int {
	return p.queue.Depth()
}

// Submit admits one feature vector and blocks until its terminal outcome:
// a probability, a rejection, a timeout or a failure. Exactly one of those
// is ever returned per call, and the wait is bounded by the request
// timeout regardless of batch or model progress.
func (p *Pipeline) Submit(features []float32) Outcome {
	start := p.clock.Now()
	defer func() {
		metrics.Timing(metrics.RequestLatency, p.clock.Now().Sub(start), nil)
	}()

	r := newRequest(features, start, p.requestTimeout)
	if p.stopped.Load() {
		r.resolve(Outcome{
			Kind: OutcomeFailed,
			Err:  &errors.ShutdownError{ErrorMsg: "pipeline shutting down"},
		})
		return r.wait()
	}

	if err := p.admit(r); err != nil {
		r.resolve(Outcome{Kind: OutcomeRejected, Err: err})
		return r.wait()
	}

	// The submit path re-checks the stop flag after the enqueue: a request
	// slipped in between the consumer's drain and the final sweep must not
	// wait out its full timeout for an answer that will never come.
	if p.stopped.Load() {
		r.resolve(Outcome{
			Kind: OutcomeFailed,
			Err:  &errors.ShutdownError{ErrorMsg: "pipeline shutting down"},
		})
		return r.wait()
	}

	// Timeout guard: the deadline releases the caller unilaterally. It does
	// not cancel in-flight inference; whichever resolver wins the CAS
	// decides, and the loser's write is discarded.
	guard := p.clock.NewTimer(p.requestTimeout)
	defer guard.Stop()

	select {
	case <-r.done:
		return r.wait()
	case <-guard.C():
		if r.resolve(Outcome{
			Kind: OutcomeTimedOut,
			Err:  &errors.TimeoutError{ErrorMsg: "request deadline elapsed"},
		}) {
			metrics.Count(metrics.RequestTimeouts, 1, nil)
		}
		// If the guard lost the race the real outcome is already published.
		return r.wait()
	}
}
