package library

import (
	"errors"
	"fmt"
)

// StorageError is returned by the store whenever acquiring a connection or
// running a statement fails.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err carries a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Errors raised by LibraryManager. The store never returns them.
var (
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrEmptyAuthor      = errors.New("author cannot be empty")
	ErrBookNotFound     = errors.New("book not found")
	ErrAlreadyBorrowed  = errors.New("book is already borrowed")
	ErrAlreadyAvailable = errors.New("book is already available")
)

// ValidationError rejects user input before it reaches the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }
