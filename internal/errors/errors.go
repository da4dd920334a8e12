// Package errors holds the sentinels use cases wrap to say what went wrong in
// domain terms. The local API renders each sentinel as one status code.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: no record with the given identifier, or one owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the request repeats or contradicts work already recorded.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput: the request failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized: nobody is signed in on the device.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: the signed-in user does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable: the backend or a local dependency could not be reached.
	ErrUnavailable = errors.New("unavailable")
)

// New returns a domain sentinel. Declare it with a package level var so
// callers can match it with Is.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message, keeping it matchable. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether err wraps target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
