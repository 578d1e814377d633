package rand

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateString(t *testing.T) {
	first, err := GenerateString(16)
	require.Nil(t, err)

	decoded, err := base64.URLEncoding.DecodeString(first)
	require.Nil(t, err)
	require.Len(t, decoded, 16)

	second, err := GenerateString(16)
	require.Nil(t, err)
	require.NotEqual(t, first, second)
}
