package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failure")
	ErrFutureDate  = errors.New("date is in the future")
	ErrNotFound    = errors.New("not found")
)

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// FutureDateError rejects completion of a day that has not happened yet.
type FutureDateError struct {
	Day string
}

func (e *FutureDateError) Error() string {
	return fmt.Sprintf("cannot complete %s: day is in the future", e.Day)
}

func (e *FutureDateError) Is(target error) bool {
	return target == ErrFutureDate
}
