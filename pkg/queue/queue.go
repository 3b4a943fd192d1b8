// Package queue provides the synchronized FIFO queue shared by pool workers
package queue

import (
	"sync"

	"github.com/jzx17/threadpool/pkg/types"
)

// State defines the lifecycle state of a Queue
type State int32

const (
	// StateRunning accepts pushes and hands out items
	StateRunning State = iota
	// StateDraining rejects pushes but still hands out queued items
	StateDraining
	// StateTerminated rejects pushes; Pop returns false once the queue is empty
	StateTerminated
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

type node[T any] struct {
	value T
	next  *node[T]
}

// Queue is an unbounded FIFO guarded by a single mutex with two condition
// variables: notEmpty wakes consumers when an item arrives or the queue is
// terminated, empty wakes WaitEmpty callers when the last item is taken.
//
// Invariant under mu: length == 0 iff head == nil iff tail == nil.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	empty    *sync.Cond

	head   *node[T]
	tail   *node[T]
	length int
	state  State
}

// New creates an empty queue in StateRunning
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.notEmpty = sync.NewCond(&q.mu)
	q.empty = sync.NewCond(&q.mu)
	return q
}

// Push appends v to the tail. It returns types.ErrNotAccepting once Close or
// Terminate has been called; v is then dropped and never handed out.
func (q *Queue[T]) Push(v T) error {
	return q.PushFunc(func() T { return v })
}

// PushFunc appends the value returned by build. build runs with the queue
// lock held and only when the push is accepted, so values it numbers or
// timestamps reach the queue in the same order they were built. build must
// not call back into the queue.
func (q *Queue[T]) PushFunc(build func() T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateRunning {
		return types.ErrNotAccepting
	}

	n := &node[T]{value: build()}

	if q.length == 0 {
		q.head = n
		q.tail = n
		q.length = 1
		q.notEmpty.Signal()
		return nil
	}

	q.tail.next = n
	q.tail = n
	q.length++
	return nil
}

// Pop removes and returns the head, blocking while the queue is empty.
// It returns false only when the queue is empty and terminated.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.length == 0 {
		if q.state == StateTerminated {
			var zero T
			return zero, false
		}
		q.notEmpty.Wait()
		// loop re-checks termination before length: a wake-up may come
		// from Terminate on an empty queue
	}

	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	q.length--

	if q.length > 0 {
		// Push only signals on the empty to non-empty transition, so pass
		// the wake-up on to the next parked consumer while items remain
		q.notEmpty.Signal()
	} else if q.state != StateTerminated {
		q.empty.Broadcast()
	}

	v := n.value
	n.next = nil
	return v, true
}

// Close stops accepting pushes. It returns false if the queue was already closed.
func (q *Queue[T]) Close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateRunning {
		return false
	}
	q.state = StateDraining
	return true
}

// WaitEmpty blocks until no items are queued. Items already handed out by
// Pop may still be running when it returns.
func (q *Queue[T]) WaitEmpty() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.length > 0 {
		q.empty.Wait()
	}
}

// Terminate moves the queue to StateTerminated and wakes every blocked Pop.
// Items still queued are handed out before Pop starts returning false.
func (q *Queue[T]) Terminate() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.state = StateTerminated
	q.notEmpty.Broadcast()
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

// State returns the current lifecycle state
func (q *Queue[T]) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}
