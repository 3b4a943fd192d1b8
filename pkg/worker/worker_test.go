package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jzx17/threadpool/internal/testutils"
	"github.com/jzx17/threadpool/pkg/queue"
	"github.com/jzx17/threadpool/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorker(t *testing.T) {
	q := queue.New[*WorkItem]()
	worker := NewWorker(1, q)

	assert.Equal(t, 1, worker.ID())
	assert.Equal(t, WorkerStateWaiting, worker.State())
}

func TestWorkerState(t *testing.T) {
	assert.Equal(t, "waiting", WorkerStateWaiting.String())
	assert.Equal(t, "running", WorkerStateRunning.String())
	assert.Equal(t, "terminated", WorkerStateTerminated.String())
	assert.Equal(t, "unknown", WorkerState(999).String())
}

func TestWorker_ExitsWhenQueueTerminated(t *testing.T) {
	q := queue.New[*WorkItem]()
	worker := NewWorker(1, q)

	go worker.Run()

	testutils.AssertNeverReturns(t, worker.Done(), 20*time.Millisecond, "worker exited on an empty running queue")
	assert.Equal(t, WorkerStateWaiting, worker.State())

	q.Terminate()

	select {
	case <-worker.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after terminate")
	}
	assert.Equal(t, WorkerStateTerminated, worker.State())
}

func TestWorker_DrainsQueuedItemsBeforeExit(t *testing.T) {
	q := queue.New[*WorkItem]()
	worker := NewWorker(3, q)

	var executed int64
	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Push(newWorkItem(uint64(i), func() {
			atomic.AddInt64(&executed, 1)
		}, time.Now())))
	}
	q.Terminate()

	worker.Run()

	assert.Equal(t, int64(5), atomic.LoadInt64(&executed))
	stats := worker.Stats()
	assert.Equal(t, 3, stats.ID)
	assert.Equal(t, int64(5), stats.TotalProcessed)
	assert.Equal(t, WorkerStateTerminated, stats.State)
	assert.False(t, stats.IsActive())
	assert.False(t, stats.IsIdle())
}

func TestWorker_TimingUsesClock(t *testing.T) {
	mock := testutils.NewMockClock(t)
	clock := testutils.NewClockWrapper(mock)

	q := queue.New[*WorkItem]()
	worker := NewWorkerWithClock(1, q, clock)

	var wait, duration time.Duration
	var jobErr error
	worker.SetStartCallback(func(item *WorkItem, w time.Duration) {
		wait = w
	})
	worker.SetCompletionCallback(func(item *WorkItem, d time.Duration, err error) {
		duration = d
		jobErr = err
	})

	require.NoError(t, q.Push(newWorkItem(1, func() {
		clock.Advance(t, 5*time.Millisecond)
	}, clock.Now())))

	clock.Advance(t, 2*time.Millisecond)
	startedAt := clock.Now()

	q.Terminate()
	worker.Run()

	assert.Equal(t, 2*time.Millisecond, wait)
	assert.Equal(t, 5*time.Millisecond, duration)
	assert.NoError(t, jobErr)
	assert.Equal(t, startedAt.UnixNano(), worker.Stats().LastJobTime.UnixNano())
}

func TestWorker_RecoversPanics(t *testing.T) {
	q := queue.New[*WorkItem]()
	worker := NewWorker(7, q)

	var handled []error
	worker.SetErrorHandler(func(err error) error {
		handled = append(handled, err)
		return nil
	})

	var completions []error
	worker.SetCompletionCallback(func(item *WorkItem, d time.Duration, err error) {
		completions = append(completions, err)
	})

	var executed int64
	require.NoError(t, q.Push(newWorkItem(10, func() { panic("job exploded") }, time.Now())))
	require.NoError(t, q.Push(newWorkItem(11, func() { atomic.AddInt64(&executed, 1) }, time.Now())))
	q.Terminate()

	worker.Run()

	assert.Equal(t, int64(1), atomic.LoadInt64(&executed))
	require.Len(t, handled, 1)
	require.Len(t, completions, 2)
	assert.Same(t, handled[0], completions[0])
	assert.NoError(t, completions[1])

	var panicErr *types.PanicError
	require.ErrorAs(t, handled[0], &panicErr)
	assert.Equal(t, uint64(10), panicErr.JobSeq)
	assert.Equal(t, 7, panicErr.WorkerID)
	assert.Contains(t, panicErr.Error(), "job exploded")
	assert.Nil(t, panicErr.Unwrap())

	stats := worker.Stats()
	assert.Equal(t, int64(1), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.TotalPanicked)
}

func TestBind(t *testing.T) {
	assert.Nil(t, bind(nil, 1))

	var got interface{}
	job := bind(func(arg interface{}) { got = arg }, "payload")
	require.NotNil(t, job)
	job()
	assert.Equal(t, "payload", got)
}
