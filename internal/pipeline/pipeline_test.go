package pipeline

import (
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Meesho/BharatMLStack/inferline/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPredictor echoes each row's first feature as its probability, so
// tests can check result-to-request alignment. It records batch sizes and
// can be made slow or failing.
type stubPredictor struct {
	mu         sync.Mutex
	batchSizes []int
	delay      time.Duration
	err        error
}

func (s *stubPredictor) Predict(features [][]float32) ([]float64, error) {
	s.mu.Lock()
	s.batchSizes = append(s.batchSizes, len(features))
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(features))
	for i, row := range features {
		out[i] = float64(row[0])
	}
	return out, nil
}

func (s *stubPredictor) recordedBatches() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.batchSizes...)
}

func testConfig() Config {
	return Config{
		QueueCapacity:         100,
		HighWatermarkFraction: 0.8,
		BatchWindow:           20 * time.Millisecond,
		MaxBatchSize:          32,
		RequestTimeout:        500 * time.Millisecond,
	}
}

func TestSubmit_LoneRequestCompletes(t *testing.T) {
	stub := &stubPredictor{}
	p := New(testConfig(), stub)
	p.Start()
	defer p.Stop()

	start := time.Now()
	out := p.Submit([]float32{0.75, 1, 2})
	elapsed := time.Since(start)

	require.Equal(t, OutcomeCompleted, out.Kind)
	assert.InDelta(t, 0.75, out.Probability, 1e-9)
	assert.NotEmpty(t, out.RequestID)
	// A lone request is cut by the window, well before the request timeout.
	assert.Less(t, elapsed, 300*time.Millisecond)
	assert.Equal(t, []int{1}, stub.recordedBatches())
}

func TestScheduler_CoalescesConcurrentArrivals(t *testing.T) {
	stub := &stubPredictor{}
	cfg := testConfig()
	cfg.BatchWindow = 100 * time.Millisecond
	p := New(cfg, stub)
	p.Start()
	defer p.Stop()

	const n = 5
	outcomes := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = p.Submit([]float32{float32(i)})
		}(i)
	}
	wg.Wait()

	for i, out := range outcomes {
		require.Equal(t, OutcomeCompleted, out.Kind, "request %d", i)
		// Output order matches input order: each caller gets its own echo.
		assert.InDelta(t, float64(i), out.Probability, 1e-9, "request %d", i)
	}
	assert.Equal(t, []int{n}, stub.recordedBatches(),
		"near-simultaneous arrivals should form a single batch")
}

func TestScheduler_NeverExceedsMaxBatchSize(t *testing.T) {
	stub := &stubPredictor{}
	cfg := testConfig()
	cfg.MaxBatchSize = 4
	cfg.BatchWindow = 100 * time.Millisecond
	p := New(cfg, stub)
	p.Start()
	defer p.Stop()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := p.Submit([]float32{float32(i)})
			assert.Equal(t, OutcomeCompleted, out.Kind)
		}(i)
	}
	wg.Wait()

	total := 0
	for _, size := range stub.recordedBatches() {
		assert.LessOrEqual(t, size, 4)
		assert.GreaterOrEqual(t, size, 1)
		total += size
	}
	assert.Equal(t, n, total)
}

func TestGate_RejectsAtHighWatermark(t *testing.T) {
	cfg := testConfig()
	cfg.QueueCapacity = 10
	cfg.HighWatermarkFraction = 0.8
	// Not started: nothing drains the queue, so depth is fully controlled.
	p := New(cfg, &stubPredictor{})

	for i := 0; i < 8; i++ {
		r := newRequest([]float32{1}, time.Now(), cfg.RequestTimeout)
		require.NoError(t, p.admit(r), "request %d is below the watermark", i)
	}
	assert.Equal(t, 8, p.QueueDepth())

	r := newRequest([]float32{1}, time.Now(), cfg.RequestTimeout)
	err := p.admit(r)
	require.Error(t, err)
	var overloaded *apperrors.OverloadedError
	assert.ErrorAs(t, err, &overloaded)
	assert.Equal(t, 8, p.QueueDepth(), "rejected request never touches the queue")
}

func TestGate_QueueFullOnCapacityRace(t *testing.T) {
	cfg := testConfig()
	cfg.QueueCapacity = 4
	// Watermark above capacity forces the hard-capacity branch.
	cfg.HighWatermarkFraction = 2.0
	p := New(cfg, &stubPredictor{})

	for i := 0; i < 4; i++ {
		r := newRequest([]float32{1}, time.Now(), cfg.RequestTimeout)
		require.NoError(t, p.admit(r))
	}

	r := newRequest([]float32{1}, time.Now(), cfg.RequestTimeout)
	err := p.admit(r)
	require.Error(t, err)
	var full *apperrors.QueueFullError
	assert.ErrorAs(t, err, &full)
	assert.Equal(t, 4, p.QueueDepth())
}

func TestSubmit_OverloadSheds(t *testing.T) {
	stub := &stubPredictor{delay: 50 * time.Millisecond}
	cfg := testConfig()
	cfg.QueueCapacity = 20
	cfg.HighWatermarkFraction = 0.5
	cfg.MaxBatchSize = 2
	p := New(cfg, stub)
	p.Start()
	defer p.Stop()

	const n = 60
	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := map[OutcomeKind]int{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := p.Submit([]float32{1})
			mu.Lock()
			counts[out.Kind]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	// Every caller observes exactly one terminal outcome, whatever mix of
	// completions, rejections and timeouts the load produced.
	assert.Equal(t, n, total)
	assert.Greater(t, counts[OutcomeRejected], 0, "a burst this size must shed load")
}

func TestTimeoutGuard_ReleasesCallerBeforeSlowBatch(t *testing.T) {
	stub := &stubPredictor{delay: 200 * time.Millisecond}
	cfg := testConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	cfg.BatchWindow = 5 * time.Millisecond
	p := New(cfg, stub)
	p.Start()

	start := time.Now()
	out := p.Submit([]float32{1})
	elapsed := time.Since(start)

	require.Equal(t, OutcomeTimedOut, out.Kind)
	var timeout *apperrors.TimeoutError
	assert.ErrorAs(t, out.Err, &timeout)
	assert.Less(t, elapsed, 150*time.Millisecond,
		"the guard releases the caller without waiting for inference")

	// Stop waits for the in-flight batch; its late result must be
	// discarded, not redelivered.
	p.Stop()
	assert.Equal(t, OutcomeTimedOut, out.Kind)
}

func TestExecutor_BatchFailureFailsEveryMember(t *testing.T) {
	stub := &stubPredictor{err: fmt.Errorf("backend exploded")}
	cfg := testConfig()
	cfg.BatchWindow = 50 * time.Millisecond
	p := New(cfg, stub)
	p.Start()
	defer p.Stop()

	const n = 10
	outcomes := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = p.Submit([]float32{float32(i)})
		}(i)
	}
	wg.Wait()

	for i, out := range outcomes {
		require.Equal(t, OutcomeFailed, out.Kind, "request %d", i)
		var modelErr *apperrors.ModelError
		require.ErrorAs(t, out.Err, &modelErr, "request %d", i)
		assert.ErrorContains(t, modelErr.Cause, "backend exploded")
	}
}

func TestStop_DrainsQueuedRequestsWithShutdownFailure(t *testing.T) {
	cfg := testConfig()
	p := New(cfg, &stubPredictor{})

	queued := make([]*request, 0, 3)
	for i := 0; i < 3; i++ {
		r := newRequest([]float32{1}, time.Now(), cfg.RequestTimeout)
		require.NoError(t, p.admit(r))
		queued = append(queued, r)
	}

	p.Stop()

	for i, r := range queued {
		out := r.wait()
		require.Equal(t, OutcomeFailed, out.Kind, "request %d", i)
		var shutdown *apperrors.ShutdownError
		assert.ErrorAs(t, out.Err, &shutdown, "request %d", i)
	}
	assert.Equal(t, 0, p.QueueDepth())
}

func TestSubmit_AfterStopFailsImmediately(t *testing.T) {
	p := New(testConfig(), &stubPredictor{})
	p.Start()
	p.Stop()

	out := p.Submit([]float32{1})
	require.Equal(t, OutcomeFailed, out.Kind)
	var shutdown *apperrors.ShutdownError
	assert.ErrorAs(t, out.Err, &shutdown)
}

func TestStop_Idempotent(t *testing.T) {
	p := New(testConfig(), &stubPredictor{})
	p.Start()
	p.Stop()
	assert.NotPanics(t, func() { p.Stop() })
}
