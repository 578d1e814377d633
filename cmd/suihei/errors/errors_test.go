package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("create puzzle; error: %w", ValidationError("Please login!"))

	validationErr := AsValidationError(wrapped)
	require.NotNil(t, validationErr)
	require.Equal(t, "Please login!", validationErr.Error())

	require.Nil(t, AsPermissionError(wrapped))
	require.Nil(t, AsNotFoundError(wrapped))
	require.Nil(t, AsDecodingError(wrapped))
	require.Nil(t, AsConflictError(wrapped))

	require.NotNil(t, AsConflictError(ConflictError("already reviewed")))
	require.NotNil(t, AsPermissionError(PermissionError("nope")))
	require.NotNil(t, AsNotFoundError(NotFoundError("missing")))
	require.NotNil(t, AsDecodingError(DecodingError("bad token")))
}
