package pipeline

import "time"

// Clock abstracts wall-clock reads and deadline timers so the batching and
// timeout paths can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTimer(d time.Duration) Timer {
	return &systemTimer{t: time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (st *systemTimer) C() <-chan time.Time {
	return st.t.C
}

func (st *systemTimer) Stop() bool {
	return st.t.Stop()
}

func (st *systemTimer) Reset(d time.Duration) bool {
	return st.t.Reset(d)
}
