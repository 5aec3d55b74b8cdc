package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// ErrCacheBackend is returned when the cache backend could not serve a command,
// as opposed to a plain miss.
type ErrCacheBackend struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *ErrCacheBackend) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache backend %s %q failed: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("cache backend %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying backend error.
func (e *ErrCacheBackend) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrCacheBackend) Is(target error) bool {
	_, ok := target.(*ErrCacheBackend)
	return ok
}

// NewCacheBackendError creates a new ErrCacheBackend.
func NewCacheBackendError(op, key string, err error) *ErrCacheBackend {
	return &ErrCacheBackend{Op: op, Key: key, Err: err}
}

// ErrStoreUnavailable is returned when the property store query fails.
type ErrStoreUnavailable struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ErrStoreUnavailable) Error() string {
	return fmt.Sprintf("property store %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error.
func (e *ErrStoreUnavailable) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrStoreUnavailable) Is(target error) bool {
	_, ok := target.(*ErrStoreUnavailable)
	return ok
}

// NewStoreUnavailableError creates a new ErrStoreUnavailable.
func NewStoreUnavailableError(op string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{Op: op, Err: err}
}
