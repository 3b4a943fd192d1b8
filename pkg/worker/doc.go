/*
Package worker provides a fixed-size worker pool fed by a single shared FIFO queue.

# Overview

A Pool starts a fixed number of worker goroutines when it is created. Callers
submit jobs without waiting for them to run; workers take jobs off the shared
queue in submission order and run them outside the queue lock, so a slow job
never holds up submitters or other workers.

# Core Components

## Pool

- Fixed number of workers, started by NewPool
- Fire-and-forget submission through Submit and Dispatch
- Two-phase Shutdown: drain the queue, then terminate and join the workers
- Statistics, Prometheus metrics and lifecycle hooks

## Worker

Single worker goroutine responsible for:
- Taking the head of the queue, or exiting once the queue is terminated
- Running the job with panic recovery
- Per-worker statistics

## WorkItem

One queued job plus its submission sequence number and enqueue time.

# Shutdown

Shutdown first stops accepting jobs (Submit returns types.ErrNotAccepting),
then waits for the queue to become empty, then wakes every worker so each one
observes termination and exits. It returns only after every worker has
exited. No accepted job is ever dropped.

Shutdown may be called more than once and from several goroutines. The first
call does the work and returns nil; the others wait for it and return
types.ErrPoolClosed. It must not be called from inside a job.

# Error Handling

There is no result channel. A job that panics is recovered; the panic is
wrapped in a *types.PanicError, logged, counted, and passed to
PoolConfig.ErrorHandler. The worker then carries on with the next job.

# Usage Examples

	pool, err := worker.NewFixedPool(4)
	if err != nil {
		log.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		if err := pool.Dispatch(func(arg interface{}) {
			fmt.Println(arg)
		}, i); err != nil {
			log.Printf("job %d rejected: %v", i, err)
		}
	}

	if err := pool.Shutdown(); err != nil {
		log.Print(err)
	}
*/
package worker
