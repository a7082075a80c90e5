package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Lifecycle states of a request. Terminal states are all >= stateCompleted;
// the ordering is what makes the terminal check in resolve a single compare.
const (
	stateCreated int32 = iota
	stateAdmitted
	stateQueued
	stateBatched
	stateCompleted
	stateTimedOut
	stateRejected
	stateFailed
)

func terminalStateFor(kind OutcomeKind) int32 {
	switch kind {
	case OutcomeCompleted:
		return stateCompleted
	case OutcomeTimedOut:
		return stateTimedOut
	case OutcomeRejected:
		return stateRejected
	default:
		return stateFailed
	}
}

// request is a single admitted unit of work. It is owned by the pipeline
// from admission until one resolver wins the terminal transition; the
// outcome slot is written exactly once, before done is closed.
type request struct {
	id       string
	features []float32
	arrival  time.Time
	deadline time.Time

	state   atomic.Int32
	outcome Outcome
	done    chan struct{}
}

func newRequest(features []float32, arrival time.Time, timeout time.Duration) *request {
	return &request{
		id:       uuid.NewString(),
		features: features,
		arrival:  arrival,
		deadline: arrival.Add(timeout),
		done:     make(chan struct{}),
	}
}

// advance moves the request through a non-terminal lifecycle transition.
// It is a no-op once a resolver has made the request terminal.
func (r *request) advance(from, to int32) bool {
	return r.state.CompareAndSwap(from, to)
}

// resolve attempts the exactly-once terminal transition. It reports whether
// this call won; losers must treat their result as discarded. The outcome
// slot is only written by the winner, and the close of done publishes it to
// the waiter.
func (r *request) resolve(out Outcome) bool {
	target := terminalStateFor(out.Kind)
	for {
		s := r.state.Load()
		if s >= stateCompleted {
			return false
		}
		if r.state.CompareAndSwap(s, target) {
			out.RequestID = r.id
			r.outcome = out
			close(r.done)
			return true
		}
	}
}

// wait blocks until a resolver has published the outcome.
func (r *request) wait() Outcome {
	<-r.done
	return r.outcome
}
