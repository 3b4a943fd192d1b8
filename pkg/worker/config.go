package worker

import (
	"fmt"
	"log/slog"

	"github.com/jzx17/threadpool/pkg/types"
)

// MaxPoolSize is the largest accepted PoolSize
const MaxPoolSize = 200

// Hooks let callers observe job lifecycle events. Hooks run on the
// submitting or executing goroutine and must not panic or block for long.
//
// For a given job OnStart always precedes OnFinish, and OnStart calls on one
// worker follow seq order. OnSubmit runs after the job is already visible to
// workers, so it may run after OnStart or OnFinish of the same job.
type Hooks struct {
	// OnSubmit runs after a job is accepted
	OnSubmit func(seq uint64)

	// OnStart runs on the worker right before the job body
	OnStart func(workerID int, seq uint64)

	// OnFinish runs on the worker after the job body; err is a *types.PanicError or nil
	OnFinish func(workerID int, seq uint64, err error)
}

// PoolConfig defines configuration for a Pool
type PoolConfig struct {
	// PoolSize is the fixed number of workers
	PoolSize int

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// ErrorHandler receives recovered job panics (optional)
	ErrorHandler types.ErrorHandler

	// Logger receives pool and worker logs (optional, defaults to discarding)
	Logger *slog.Logger

	// Metrics records Prometheus metrics (optional)
	Metrics *Metrics

	// Hooks observe job lifecycle events (optional)
	Hooks Hooks
}

// DefaultPoolConfig returns default configuration
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		PoolSize: 10,
		Clock:    types.NewRealClock(),
	}
}

// Validate checks the configuration
func (c *PoolConfig) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("%w: pool size must be positive, got %d", types.ErrInvalidConfiguration, c.PoolSize)
	}
	if c.PoolSize > MaxPoolSize {
		return fmt.Errorf("%w: pool size must not exceed %d, got %d", types.ErrInvalidConfiguration, MaxPoolSize, c.PoolSize)
	}
	return nil
}
