package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jzx17/threadpool/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPool_HighLoad high load integration test
func TestPool_HighLoad(t *testing.T) {
	pool, err := NewFixedPool(50)
	require.NoError(t, err)

	numJobs := 10000
	var completedJobs int64

	start := time.Now()
	for i := 0; i < numJobs; i++ {
		err := pool.Submit(func() {
			atomic.AddInt64(&completedJobs, 1)
		})
		require.NoError(t, err)
	}
	require.NoError(t, pool.Shutdown())
	duration := time.Since(start)

	t.Logf("Processed %d jobs in %v", numJobs, duration)
	t.Logf("Throughput: %.2f jobs/second", float64(numJobs)/duration.Seconds())

	assert.Equal(t, int64(numJobs), atomic.LoadInt64(&completedJobs))
	assert.Equal(t, int64(numJobs), pool.Stats().Completed)
}

// TestPool_SingleWorkerBoundedShutdown checks one worker finishes N jobs
// and shuts down in time proportional to the total job duration
func TestPool_SingleWorkerBoundedShutdown(t *testing.T) {
	pool, err := NewFixedPool(1)
	require.NoError(t, err)

	const (
		numJobs = 20
		jobTime = 2 * time.Millisecond
	)
	for i := 0; i < numJobs; i++ {
		require.NoError(t, pool.Submit(func() {
			time.Sleep(jobTime)
		}))
	}

	testutils.WaitReturns(t, numJobs*jobTime+2*time.Second, func() {
		assert.NoError(t, pool.Shutdown())
	}, "single worker pool deadlocked on shutdown")
	assert.Equal(t, int64(numJobs), pool.Stats().Completed)
}

// TestPool_SubmitRacingShutdown checks every submission is either run or rejected
func TestPool_SubmitRacingShutdown(t *testing.T) {
	for round := 0; round < 20; round++ {
		pool, err := NewFixedPool(4)
		require.NoError(t, err)

		var accepted, rejected, executed int64
		var wg sync.WaitGroup
		for s := 0; s < 4; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					err := pool.Submit(func() {
						atomic.AddInt64(&executed, 1)
					})
					switch {
					case err == nil:
						atomic.AddInt64(&accepted, 1)
					case IsRejection(err):
						atomic.AddInt64(&rejected, 1)
					default:
						t.Errorf("unexpected submit error: %v", err)
					}
				}
			}()
		}

		time.Sleep(100 * time.Microsecond)
		require.NoError(t, pool.Shutdown())
		wg.Wait()

		assert.Equal(t, int64(400), accepted+rejected)
		assert.Equal(t, accepted, atomic.LoadInt64(&executed), "round %d", round)

		stats := pool.Stats()
		assert.Equal(t, accepted, stats.Submitted)
		assert.Equal(t, rejected, stats.Rejected)
		assert.Equal(t, 0, stats.QueueLength)
	}
}

func BenchmarkPool_Submit(b *testing.B) {
	pool, err := NewFixedPool(8)
	require.NoError(b, err)

	job := func() {}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := pool.Submit(job); err != nil {
			b.Fatal(err)
		}
	}
	b.StopTimer()

	require.NoError(b, pool.Shutdown())
}

func BenchmarkPool_SubmitParallel(b *testing.B) {
	pool, err := NewFixedPool(8)
	require.NoError(b, err)

	job := func() {}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := pool.Submit(job); err != nil {
				b.Error(err)
				return
			}
		}
	})
	b.StopTimer()

	require.NoError(b, pool.Shutdown())
}
