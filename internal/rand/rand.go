// Package rand generates cryptographically-secure random values.
package rand

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Bytes generates n cryptographically-secure random bytes.
func Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// GenerateString generates a cryptographically-secure value from n random
// bytes, encoded as URL-safe base64. If the value is unable to be generated
// an error is returned.
func GenerateString(n int) (string, error) {
	b, err := Bytes(n)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
