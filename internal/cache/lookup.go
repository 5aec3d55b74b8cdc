package cache

import (
	"context"
	"errors"
)

// Status classifies the outcome of a Lookup.
type Status int

const (
	StatusMiss Status = iota
	StatusHit
	StatusBackendError
)

// String returns the label used for metrics and logs.
func (s Status) String() string {
	switch s {
	case StatusHit:
		return "hit"
	case StatusBackendError:
		return "error"
	default:
		return "miss"
	}
}

// Result is the tagged outcome of a cache read: Hit carries Value, BackendError
// carries Err, Miss carries neither. Callers choose how to treat BackendError.
type Result struct {
	Status Status
	Value  []byte
	Err    error
}

// Lookup reads key from c and separates a plain miss from a backend failure.
func Lookup(ctx context.Context, c Cache, key string) Result {
	val, err := c.Get(ctx, key)
	switch {
	case err == nil:
		return Result{Status: StatusHit, Value: val}
	case errors.Is(err, ErrMiss):
		return Result{Status: StatusMiss}
	default:
		return Result{Status: StatusBackendError, Err: err}
	}
}
