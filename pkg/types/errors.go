// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrInvalidConfiguration indicates a pool could not be created from its configuration
	ErrInvalidConfiguration = errors.New("invalid pool configuration")

	// ErrNotAccepting indicates the pool has begun shutting down and rejects new jobs
	ErrNotAccepting = errors.New("pool is not accepting jobs")

	// ErrNilJob indicates a nil job was submitted
	ErrNilJob = errors.New("job cannot be nil")

	// ErrPoolClosed indicates the pool was already shut down
	ErrPoolClosed = errors.New("pool is closed")
)

// PanicError represents a panic recovered while a worker was running a job
type PanicError struct {
	// JobSeq is the submission sequence number of the job
	JobSeq uint64

	// WorkerID is the worker that ran the job
	WorkerID int

	// Value is the value passed to panic
	Value interface{}

	// Stack is the stack trace captured at recovery
	Stack string
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("job %d panicked on worker %d: %v", e.JobSeq, e.WorkerID, e.Value)
}

// Unwrap returns the panic value when it is itself an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// NewPanicError creates a new PanicError
func NewPanicError(jobSeq uint64, workerID int, value interface{}, stack string) *PanicError {
	return &PanicError{
		JobSeq:   jobSeq,
		WorkerID: workerID,
		Value:    value,
		Stack:    stack,
	}
}

// IsPanic checks if an error carries a recovered job panic
func IsPanic(err error) bool {
	var panicErr *PanicError
	return errors.As(err, &panicErr)
}
