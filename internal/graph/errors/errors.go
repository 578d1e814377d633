// Package errors provides GraphQL errors carrying a machine-readable code
// extension alongside their human-readable message.
package errors

import "errors"

var ErrInternalServer = errors.New("internal server error; please contact support")

// Code classifies an Error for clients.
type Code string

const (
	CodeValidation Code = "VALIDATION"
	CodePermission Code = "PERMISSION"
	CodeNotFound   Code = "NOT_FOUND"
	CodeDecoding   Code = "DECODING"
	CodeConflict   Code = "CONFLICT"
	CodeInternal   Code = "INTERNAL"
)

// New creates an Error with the passed code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Error is a client facing GraphQL error.
type Error struct {
	Code    Code
	Message string
}

func (e Error) Error() string {
	return e.Message
}

// Extensions is read by the GraphQL executor and serialized to the error's
// extensions object.
func (e Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}
