// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// DefaultTimeout bounds every blocking wait in tests
const DefaultTimeout = 5 * time.Second

// Recorder collects values from concurrently running jobs
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

// NewRecorder creates an empty recorder
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Record appends v
func (r *Recorder[T]) Record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

// Values returns a copy of everything recorded so far
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of recorded values
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// WaitReturns fails the test if fn does not return within timeout
func WaitReturns(t testing.TB, timeout time.Duration, fn func(), msgAndArgs ...interface{}) bool {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return assert.Fail(t, "call did not return in time", msgAndArgs...)
	}
}

// AssertNeverReturns fails the test if ch is closed or receives within d
func AssertNeverReturns(t testing.TB, ch <-chan struct{}, d time.Duration, msgAndArgs ...interface{}) bool {
	t.Helper()

	select {
	case <-ch:
		return assert.Fail(t, "unexpected return", msgAndArgs...)
	case <-time.After(d):
		return true
	}
}
