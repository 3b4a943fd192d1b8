package worker

import (
	"time"

	"github.com/jzx17/threadpool/pkg/types"
)

// WorkItem is a job sitting in, or just taken from, the pool queue.
// It is never shared: the queue owns it until a worker pops it.
type WorkItem struct {
	// Seq is assigned at submission, starting from 1
	Seq uint64

	// Job is the work to run
	Job types.Job

	// EnqueuedAt is when the item was accepted
	EnqueuedAt time.Time
}

func newWorkItem(seq uint64, job types.Job, now time.Time) *WorkItem {
	return &WorkItem{
		Seq:        seq,
		Job:        job,
		EnqueuedAt: now,
	}
}

// bind turns the argument-passing form of a job into a closure
func bind(action func(arg interface{}), arg interface{}) types.Job {
	if action == nil {
		return nil
	}
	return func() {
		action(arg)
	}
}
