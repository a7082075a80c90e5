package pipeline

import (
	"fmt"

	"github.com/Meesho/BharatMLStack/inferline/internal/errors"
	"github.com/Meesho/BharatMLStack/inferline/pkg/logger"
	"github.com/Meesho/BharatMLStack/inferline/pkg/metrics"
)

// Predictor is the external batch-predict capability: one synchronous call
// per batch, outputs aligned with inputs.
type Predictor interface {
	Predict(features [][]float32) ([]float64, error)
}

// runBatch invokes the model once for the whole batch and resolves every
// member. It runs on its own goroutine; a slow model call here never blocks
// admission or the formation of later batches. A failed call fails the
// whole batch identically and is not redriven.
func (p *Pipeline) runBatch(b batch) {
	defer p.inflight.Done()

	features := make([][]float32, len(b.requests))
	for i, r := range b.requests {
		features[i] = r.features
	}

	start := p.clock.Now()
	probabilities, err := p.predictor.Predict(features)
	metrics.Timing(metrics.BatchLatency, p.clock.Now().Sub(start), nil)

	if err == nil && len(probabilities) != len(b.requests) {
		err = fmt.Errorf("predictor returned %d probabilities for %d requests",
			len(probabilities), len(b.requests))
	}
	if err != nil {
		logger.PercentError("Batch predict call failed", err, 10)
		out := Outcome{
			Kind: OutcomeFailed,
			Err:  &errors.ModelError{ErrorMsg: "batch predict failed", Cause: err},
		}
		for _, r := range b.requests {
			if !r.resolve(out) {
				metrics.Count(metrics.LateResults, 1, nil)
			}
		}
		return
	}

	// Output order matches arrival order within the batch. A resolve that
	// loses to the timeout guard means the caller is already gone; the
	// value is discarded and only counted.
	for i, r := range b.requests {
		if !r.resolve(Outcome{Kind: OutcomeCompleted, Probability: probabilities[i]}) {
			metrics.Count(metrics.LateResults, 1, nil)
		}
	}
}
