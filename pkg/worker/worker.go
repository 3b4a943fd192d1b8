package worker

import (
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/threadpool/pkg/queue"
	"github.com/jzx17/threadpool/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateWaiting represents a worker blocked on an empty queue
	WorkerStateWaiting WorkerState = iota
	// WorkerStateRunning represents a worker executing a job
	WorkerStateRunning
	// WorkerStateTerminated represents a worker that has exited
	WorkerStateTerminated
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateWaiting:
		return "waiting"
	case WorkerStateRunning:
		return "running"
	case WorkerStateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Worker pulls items off a shared queue until the queue is terminated
type Worker struct {
	id    int
	state int32 // atomic state
	queue *queue.Queue[*WorkItem]
	done  chan struct{}

	// statistics
	totalProcessed int64
	totalPanicked  int64
	lastJobTime    int64 // Unix nanosecond timestamp

	// error handling
	errorHandler types.ErrorHandler

	// pool callbacks
	startCallback      func(item *WorkItem, wait time.Duration)
	completionCallback func(item *WorkItem, duration time.Duration, err error)

	logger *slog.Logger
	clock  types.Clock

	// synchronization
	mu sync.RWMutex
}

// NewWorker creates a new Worker with default real clock
func NewWorker(id int, q *queue.Queue[*WorkItem]) *Worker {
	return NewWorkerWithClock(id, q, types.NewRealClock())
}

// NewWorkerWithClock creates a new Worker with specified clock
func NewWorkerWithClock(id int, q *queue.Queue[*WorkItem], clock types.Clock) *Worker {
	if clock == nil {
		clock = types.NewRealClock()
	}

	return &Worker{
		id:     id,
		state:  int32(WorkerStateWaiting),
		queue:  q,
		done:   make(chan struct{}),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  clock,
	}
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// Done is closed once the worker has exited
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// SetErrorHandler sets the handler that receives recovered job panics
func (w *Worker) SetErrorHandler(handler types.ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errorHandler = handler
}

// SetStartCallback sets the callback invoked right before a job runs
func (w *Worker) SetStartCallback(callback func(item *WorkItem, wait time.Duration)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.startCallback = callback
}

// SetCompletionCallback sets the callback invoked after a job returns or panics
func (w *Worker) SetCompletionCallback(callback func(item *WorkItem, duration time.Duration, err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.completionCallback = callback
}

// SetLogger sets the worker logger
func (w *Worker) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logger = logger
}

// Run executes queued jobs until the queue is terminated and empty.
// The queue lock is never held while a job runs.
func (w *Worker) Run() {
	defer close(w.done)

	logger := w.getLogger()
	logger.Debug("worker started")

	for {
		atomic.StoreInt32(&w.state, int32(WorkerStateWaiting))

		item, ok := w.queue.Pop()
		if !ok {
			atomic.StoreInt32(&w.state, int32(WorkerStateTerminated))
			logger.Debug("worker terminated",
				"processed", atomic.LoadInt64(&w.totalProcessed),
				"panicked", atomic.LoadInt64(&w.totalPanicked))
			return
		}

		w.processItem(item)
	}
}

// processItem runs a single item and records its outcome
func (w *Worker) processItem(item *WorkItem) {
	atomic.StoreInt32(&w.state, int32(WorkerStateRunning))

	startTime := w.clock.Now()
	atomic.StoreInt64(&w.lastJobTime, startTime.UnixNano())

	w.mu.RLock()
	onStart := w.startCallback
	onComplete := w.completionCallback
	w.mu.RUnlock()

	if onStart != nil {
		onStart(item, startTime.Sub(item.EnqueuedAt))
	}

	err := w.executeItem(item)
	executionTime := w.clock.Since(startTime)

	if err != nil {
		atomic.AddInt64(&w.totalPanicked, 1)
		w.handleError(err)
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
	}

	if onComplete != nil {
		onComplete(item, executionTime, err)
	}
}

// executeItem runs the job, converting a panic into a *types.PanicError
func (w *Worker) executeItem(item *WorkItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)
			err = types.NewPanicError(item.Seq, w.id, r, string(buf[:n]))
		}
	}()

	item.Job()
	return nil
}

// handleError logs a recovered panic and passes it to the error handler
func (w *Worker) handleError(err error) {
	w.mu.RLock()
	handler := w.errorHandler
	logger := w.logger
	w.mu.RUnlock()

	logger.Error("job panicked", "error", err)

	if handler != nil {
		if handledErr := handler(err); handledErr != nil {
			logger.Warn("error handler failed", "error", handledErr)
		}
	}
}

func (w *Worker) getLogger() *slog.Logger {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.logger
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	var last time.Time
	if ns := atomic.LoadInt64(&w.lastJobTime); ns != 0 {
		last = time.Unix(0, ns)
	}
	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalPanicked:  atomic.LoadInt64(&w.totalPanicked),
		LastJobTime:    last,
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalPanicked  int64
	LastJobTime    time.Time
}

// IsActive checks if Worker is running a job
func (ws WorkerStats) IsActive() bool {
	return ws.State == WorkerStateRunning
}

// IsIdle checks if Worker is waiting for a job
func (ws WorkerStats) IsIdle() bool {
	return ws.State == WorkerStateWaiting
}

// GetSuccessRate gets the share of jobs that returned without panicking
func (ws WorkerStats) GetSuccessRate() float64 {
	total := ws.TotalProcessed + ws.TotalPanicked
	if total == 0 {
		return 0
	}
	return float64(ws.TotalProcessed) / float64(total)
}
