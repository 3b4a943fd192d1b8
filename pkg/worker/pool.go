package worker

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/threadpool/pkg/queue"
	"github.com/jzx17/threadpool/pkg/types"
)

// Pool runs submitted jobs on a fixed set of workers sharing one FIFO queue.
// Workers start when the pool is created and exit only through Shutdown.
type Pool struct {
	config  PoolConfig
	workers []*Worker
	queue   *queue.Queue[*WorkItem]
	logger  *slog.Logger
	metrics *Metrics

	seq uint64 // guarded by the queue lock

	// statistics
	submitted int64
	rejected  int64
	completed int64
	panicked  int64

	shutdownOnce sync.Once
	closed       int32
}

var _ types.Pool = (*Pool)(nil)

// NewFixedPool creates a pool of size workers with default settings
func NewFixedPool(size int) (*Pool, error) {
	config := DefaultPoolConfig()
	config.PoolSize = size
	return NewPool(config)
}

// NewPool creates a pool and starts its workers
func NewPool(config *PoolConfig) (*Pool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}

	// parameter validation
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	if cfg.Clock == nil {
		cfg.Clock = types.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool := &Pool{
		config:  cfg,
		workers: make([]*Worker, cfg.PoolSize),
		queue:   queue.New[*WorkItem](),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}

	for i := 0; i < cfg.PoolSize; i++ {
		pool.workers[i] = pool.newWorker(i)
	}
	for _, w := range pool.workers {
		go w.Run()
	}

	pool.logger.Info("pool started", "pool_size", cfg.PoolSize)
	return pool, nil
}

// newWorker creates a worker wired to the pool's queue, statistics and hooks
func (p *Pool) newWorker(id int) *Worker {
	w := NewWorkerWithClock(id, p.queue, p.config.Clock)
	w.SetLogger(p.logger.With("worker_id", id))
	if p.config.ErrorHandler != nil {
		w.SetErrorHandler(p.config.ErrorHandler)
	}

	hooks := p.config.Hooks
	w.SetStartCallback(func(item *WorkItem, wait time.Duration) {
		p.metrics.jobStarted(wait)
		if hooks.OnStart != nil {
			hooks.OnStart(id, item.Seq)
		}
	})
	w.SetCompletionCallback(func(item *WorkItem, duration time.Duration, err error) {
		if err != nil {
			atomic.AddInt64(&p.panicked, 1)
		} else {
			atomic.AddInt64(&p.completed, 1)
		}
		p.metrics.jobFinished(duration, err != nil)
		if hooks.OnFinish != nil {
			hooks.OnFinish(id, item.Seq, err)
		}
	})
	return w
}

// Submit enqueues a job. It never waits for the job to run; it returns
// types.ErrNotAccepting once Shutdown has begun.
//
// Sequence numbers are assigned under the queue lock, so they follow
// dequeue order and rejected jobs never consume one.
func (p *Pool) Submit(job types.Job) error {
	if job == nil {
		return types.ErrNilJob
	}

	var item *WorkItem
	err := p.queue.PushFunc(func() *WorkItem {
		p.seq++
		item = newWorkItem(p.seq, job, p.config.Clock.Now())
		// counted before a worker can see the item
		atomic.AddInt64(&p.submitted, 1)
		p.metrics.jobSubmitted()
		return item
	})
	if err != nil {
		atomic.AddInt64(&p.rejected, 1)
		p.metrics.jobRejected()
		p.logger.Debug("job rejected", "error", err)
		return err
	}

	if p.config.Hooks.OnSubmit != nil {
		p.config.Hooks.OnSubmit(item.Seq)
	}
	return nil
}

// Dispatch enqueues action(arg). arg reaches action unmodified.
func (p *Pool) Dispatch(action func(arg interface{}), arg interface{}) error {
	return p.Submit(bind(action, arg))
}

// Shutdown stops accepting jobs, waits for the queue to drain, then stops
// every worker and waits for all of them to exit. Every job accepted before
// Shutdown began runs to completion before it returns.
//
// The first call returns nil. Any other call blocks until the first one has
// finished and returns types.ErrPoolClosed. Calling Shutdown from inside a
// job deadlocks, since the calling worker would wait for itself.
func (p *Pool) Shutdown() error {
	first := false
	p.shutdownOnce.Do(func() {
		first = true
		p.shutdown()
	})
	if !first {
		return types.ErrPoolClosed
	}
	return nil
}

func (p *Pool) shutdown() {
	p.logger.Info("pool shutting down", "queued", p.queue.Len())

	// phase 1: drain
	p.queue.Close()
	p.queue.WaitEmpty()

	// phase 2: terminate
	p.queue.Terminate()

	for _, w := range p.workers {
		<-w.Done()
	}

	atomic.StoreInt32(&p.closed, 1)
	p.logger.Info("pool shut down",
		"completed", atomic.LoadInt64(&p.completed),
		"panicked", atomic.LoadInt64(&p.panicked),
		"rejected", atomic.LoadInt64(&p.rejected))
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.config.PoolSize
}

// QueueLength returns the number of jobs waiting to be picked up
func (p *Pool) QueueLength() int {
	return p.queue.Len()
}

// State returns the lifecycle state of the pool queue
func (p *Pool) State() queue.State {
	return p.queue.State()
}

// IsClosed reports whether Shutdown has finished
func (p *Pool) IsClosed() bool {
	return atomic.LoadInt32(&p.closed) == 1
}

// Stats gets pool statistics
func (p *Pool) Stats() types.PoolStats {
	var activeWorkers int
	for _, w := range p.workers {
		if w.State() == WorkerStateRunning {
			activeWorkers++
		}
	}

	return types.PoolStats{
		PoolSize:      p.config.PoolSize,
		ActiveWorkers: activeWorkers,
		QueueLength:   p.queue.Len(),
		Submitted:     atomic.LoadInt64(&p.submitted),
		Rejected:      atomic.LoadInt64(&p.rejected),
		Completed:     atomic.LoadInt64(&p.completed),
		Panicked:      atomic.LoadInt64(&p.panicked),
		State:         p.queue.State().String(),
	}
}

// GetWorkerStats gets statistics of all workers
func (p *Pool) GetWorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}

// IsRejection reports whether err means a job was refused because the
// pool is shutting down or shut down
func IsRejection(err error) bool {
	return errors.Is(err, types.ErrNotAccepting)
}
