package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// loadgen drives a running inferline instance at a fixed request rate and
// reports latency percentiles and outcome counts, the numbers the serving
// SLA is judged on.

type options struct {
	target      string
	rps         float64
	duration    time.Duration
	workers     int
	featureSize int
}

type results struct {
	mu        sync.Mutex
	latencies []time.Duration
	statuses  map[int]int
	errors    int
}

func (r *results) record(latency time.Duration, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies = append(r.latencies, latency)
	r.statuses[status]++
}

func (r *results) recordError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors++
}

func main() {
	opts := options{}
	flag.StringVar(&opts.target, "target", "http://localhost:8080/predict", "predict endpoint URL")
	flag.Float64Var(&opts.rps, "rps", 500, "request rate to sustain")
	flag.DurationVar(&opts.duration, "duration", 30*time.Second, "test duration")
	flag.IntVar(&opts.workers, "workers", 32, "concurrent request workers")
	flag.IntVar(&opts.featureSize, "features", 10, "feature vector width")
	flag.Parse()

	res := &results{statuses: make(map[int]int)}
	limiter := rate.NewLimiter(rate.Limit(opts.rps), opts.workers)

	ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.workers; i++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(rand.Int63()))
			for {
				if err := limiter.Wait(ctx); err != nil {
					return nil
				}
				fire(ctx, client, opts, rng, res)
			}
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "load run aborted: %v\n", err)
		os.Exit(1)
	}

	report(res, opts)
}

func fire(ctx context.Context, client *http.Client, opts options, rng *rand.Rand, res *results) {
	features := make([]float64, opts.featureSize)
	for i := range features {
		features[i] = rng.NormFloat64()
	}
	body, _ := json.Marshal(map[string]any{"features": features})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.target, bytes.NewReader(body))
	if err != nil {
		res.recordError()
		return
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			res.recordError()
		}
		return
	}
	resp.Body.Close()
	res.record(time.Since(start), resp.StatusCode)
}

func report(res *results, opts options) {
	res.mu.Lock()
	defer res.mu.Unlock()

	total := len(res.latencies)
	fmt.Printf("requests: %d over %s (target %.0f rps)\n", total, opts.duration, opts.rps)
	for _, status := range sortedKeys(res.statuses) {
		fmt.Printf("  status %d: %d\n", status, res.statuses[status])
	}
	if res.errors > 0 {
		fmt.Printf("  transport errors: %d\n", res.errors)
	}
	if total == 0 {
		return
	}

	sort.Slice(res.latencies, func(i, j int) bool { return res.latencies[i] < res.latencies[j] })
	fmt.Printf("latency p50=%s p95=%s p99=%s max=%s\n",
		percentile(res.latencies, 0.50),
		percentile(res.latencies, 0.95),
		percentile(res.latencies, 0.99),
		res.latencies[total-1])
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)-1))
	return sorted[idx]
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
