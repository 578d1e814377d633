// Package errors defines the error taxonomy shared by suihei's components.
package errors

import (
	"errors"
)

var (
	// ErrRecordDNE indicates that a process attempted to interact with a record
	// that does not exist.
	ErrRecordDNE = errors.New("record dne")

	// ErrUnknownKind indicates that a record kind name is not registered.
	ErrUnknownKind = errors.New("unknown record kind")
)

// AsValidationError checks to see if the passed error is of type
// ValidationError.
func AsValidationError(err error) *ValidationError {
	validationErr := new(ValidationError)
	if errors.As(err, validationErr) {
		return validationErr
	}
	return nil
}

// ValidationError is a user-correctable failure of a mutation check.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

// AsPermissionError checks to see if the passed error is of type
// PermissionError.
func AsPermissionError(err error) *PermissionError {
	permissionErr := new(PermissionError)
	if errors.As(err, permissionErr) {
		return permissionErr
	}
	return nil
}

// PermissionError indicates an authenticated user lacks the rights to carry
// out an operation.
type PermissionError string

func (e PermissionError) Error() string {
	return string(e)
}

// AsNotFoundError checks to see if the passed error is of type NotFoundError.
func AsNotFoundError(err error) *NotFoundError {
	notFoundErr := new(NotFoundError)
	if errors.As(err, notFoundErr) {
		return notFoundErr
	}
	return nil
}

// NotFoundError indicates a referenced record does not exist.
type NotFoundError string

func (e NotFoundError) Error() string {
	return string(e)
}

// AsDecodingError checks to see if the passed error is of type DecodingError.
func AsDecodingError(err error) *DecodingError {
	decodingErr := new(DecodingError)
	if errors.As(err, decodingErr) {
		return decodingErr
	}
	return nil
}

// DecodingError indicates a malformed reference token.
type DecodingError string

func (e DecodingError) Error() string {
	return string(e)
}

// AsConflictError checks to see if the passed error is of type ConflictError.
func AsConflictError(err error) *ConflictError {
	conflictErr := new(ConflictError)
	if errors.As(err, conflictErr) {
		return conflictErr
	}
	return nil
}

// ConflictError indicates an operation lost a race against a concurrent
// operation on the same record.
type ConflictError string

func (e ConflictError) Error() string {
	return string(e)
}
