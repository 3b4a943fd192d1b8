// Package types defines core interfaces and types for the pool
package types

// Job is a unit of work. Any data it needs is captured by the closure;
// results are the caller's business and are never seen by the pool.
type Job func()

// Pool defines the worker pool interface
type Pool interface {
	// Submit enqueues a job; it returns ErrNotAccepting once shutdown has begun
	Submit(job Job) error

	// Dispatch enqueues action(arg); arg is passed through unmodified
	Dispatch(action func(arg interface{}), arg interface{}) error

	// Shutdown drains the queue, stops all workers and waits for them to exit
	Shutdown() error

	// Size returns the number of workers
	Size() int

	// Stats returns pool statistics
	Stats() PoolStats
}

// PoolStats defines basic statistics for a pool
type PoolStats struct {
	// PoolSize is the number of workers
	PoolSize int

	// ActiveWorkers is the number of workers currently running a job
	ActiveWorkers int

	// QueueLength is the number of jobs waiting in the queue
	QueueLength int

	// Submitted is the number of accepted jobs
	Submitted int64

	// Rejected is the number of jobs refused because the pool was not accepting
	Rejected int64

	// Completed is the number of jobs that returned normally
	Completed int64

	// Panicked is the number of jobs that panicked
	Panicked int64

	// State is the pool lifecycle state
	State string
}

// Pending returns the number of accepted jobs that have not finished yet
func (s PoolStats) Pending() int64 {
	return s.Submitted - s.Completed - s.Panicked
}

// ErrorHandler receives errors the pool cannot return to a caller,
// such as recovered job panics
type ErrorHandler func(error) error
