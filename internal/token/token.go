// Package token encodes and decodes the opaque reference tokens handed to
// API callers in place of native record identifiers. A token is the relay
// style base64 encoding of "<kind>:<id>".
package token

import (
	"errors"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

var (
	// ErrMalformed indicates the token could not be decoded.
	ErrMalformed = errors.New("malformed token")

	// ErrKindMismatch indicates the token decoded to a kind other than the
	// one expected by the caller.
	ErrKindMismatch = errors.New("token kind mismatch")
)

// Encode creates the token for the record of kind identified by id.
func Encode(kind string, id int64) graphql.ID {
	return relay.MarshalID(kind, id)
}

// Decode decodes token into its kind and native identifier.
func Decode(token graphql.ID) (string, int64, error) {
	kind := relay.UnmarshalKind(token)
	if kind == "" {
		return "", 0, fmt.Errorf("decode %q: %w", token, ErrMalformed)
	}

	var id int64
	if err := relay.UnmarshalSpec(token, &id); err != nil {
		return "", 0, fmt.Errorf("decode %q: %w", token, ErrMalformed)
	}
	if id <= 0 {
		return "", 0, fmt.Errorf("decode %q: %w", token, ErrMalformed)
	}

	return kind, id, nil
}

// DecodeKind decodes token and ensures it references a record of kind.
func DecodeKind(token graphql.ID, kind string) (int64, error) {
	decoded, id, err := Decode(token)
	if err != nil {
		return 0, err
	}
	if decoded != kind {
		return 0, fmt.Errorf("expected %s, got %s: %w", kind, decoded, ErrKindMismatch)
	}
	return id, nil
}
