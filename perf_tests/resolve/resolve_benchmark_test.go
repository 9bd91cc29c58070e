package resolve_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/juruladenbam/bam-sub001/common/clients"
	"github.com/juruladenbam/bam-sub001/common/logger"
)

// Configuration from environment
var (
	kinshipURL  = getEnv("KINSHIP_URL", "http://localhost:8080")
	maxPersonID = getEnvInt("PERF_MAX_PERSON_ID", 500)
	numCalls    = getEnvInt("PERF_NUM_CALLS", 10000)
	concurrency = getEnvInt("PERF_CONCURRENCY", 10)
)

func newClient(tb testing.TB) *clients.KinshipClient {
	tb.Helper()
	c := clients.NewKinshipClient(&clients.ClientConfig{
		KinshipURL: kinshipURL,
		Timeout:    10 * time.Second,
	}, logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := c.Stats(ctx); err != nil {
		tb.Skipf("kinship service not reachable at %s: %v", kinshipURL, err)
	}
	return c
}

// BenchmarkResolveSamePair measures the cached path: after the first call
// every request for the pair is served from the relationship cache.
//
// Usage:
//
//	KINSHIP_URL=http://localhost:8080 go test -bench=BenchmarkResolveSamePair -benchtime=10000x
func BenchmarkResolveSamePair(b *testing.B) {
	c := newClient(b)
	ctx := clients.WithClientID(context.Background(), "perf-bench")

	a, other := int64(getEnvInt("PERF_PERSON_A", 1)), int64(getEnvInt("PERF_PERSON_B", 2))
	if _, err := c.Resolve(ctx, a, other); err != nil {
		b.Fatalf("warm-up resolve failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Resolve(ctx, a, other); err != nil {
			b.Fatalf("resolve failed: %v", err)
		}
	}
	b.StopTimer()

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "ops/sec")
}

// TestResolveRandomPairsConcurrent spreads random pairs over several workers,
// mixing cache misses with hits
func TestResolveRandomPairsConcurrent(t *testing.T) {
	if os.Getenv("PERF_ENABLED") == "" {
		t.Skip("set PERF_ENABLED=1 to run against a live service")
	}
	c := newClient(t)

	t.Logf("Concurrent resolve test:")
	t.Logf("  Total calls: %d", numCalls)
	t.Logf("  Concurrency: %d", concurrency)
	t.Logf("  Person ids:  1..%d", maxPersonID)

	start := time.Now()
	callsPerWorker := numCalls / concurrency
	results := make([]workerStats, concurrency)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			ctx := clients.WithClientID(context.Background(), fmt.Sprintf("perf-%d", workerID))
			stats := &results[workerID]

			for i := 0; i < callsPerWorker; i++ {
				a := rand.Int64N(int64(maxPersonID)) + 1
				b := rand.Int64N(int64(maxPersonID)) + 1

				reqStart := time.Now()
				_, err := c.Resolve(ctx, a, b)
				reqDuration := time.Since(reqStart)

				if err != nil {
					stats.errors++
					continue
				}
				stats.totalCalls++
				stats.totalLatency += reqDuration
				if reqDuration < stats.minLatency || stats.minLatency == 0 {
					stats.minLatency = reqDuration
				}
				if reqDuration > stats.maxLatency {
					stats.maxLatency = reqDuration
				}
			}
		}(w)
	}
	wg.Wait()

	var total workerStats
	for _, s := range results {
		total.totalCalls += s.totalCalls
		total.totalLatency += s.totalLatency
		total.errors += s.errors
		if s.minLatency < total.minLatency || total.minLatency == 0 {
			total.minLatency = s.minLatency
		}
		if s.maxLatency > total.maxLatency {
			total.maxLatency = s.maxLatency
		}
	}

	elapsed := time.Since(start)
	if total.totalCalls == 0 {
		t.Fatalf("all %d requests failed; are person ids 1..%d present?", total.errors, maxPersonID)
	}

	t.Logf("========================================")
	t.Logf("Total calls: %d", total.totalCalls)
	t.Logf("Errors:      %d", total.errors)
	t.Logf("Duration:    %s", elapsed)
	t.Logf("Throughput:  %.2f ops/sec", float64(total.totalCalls)/elapsed.Seconds())
	t.Logf("Latency min/avg/max: %s / %s / %s",
		total.minLatency, total.totalLatency/time.Duration(total.totalCalls), total.maxLatency)
	t.Logf("========================================")
}

type workerStats struct {
	totalCalls   int
	totalLatency time.Duration
	minLatency   time.Duration
	maxLatency   time.Duration
	errors       int
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
