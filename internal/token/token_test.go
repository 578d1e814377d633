package token

import (
	"encoding/base64"
	"testing"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := map[string]struct {
		token graphql.ID
		kind  string
		id    int64
		err   error
	}{
		"round trip": {
			token: Encode("Puzzle", 42),
			kind:  "Puzzle",
			id:    42,
		},
		"plain kind colon id": {
			token: graphql.ID(base64.URLEncoding.EncodeToString([]byte("User:7"))),
			kind:  "User",
			id:    7,
		},
		"not base64": {
			token: "%%%",
			err:   ErrMalformed,
		},
		"missing separator": {
			token: graphql.ID(base64.URLEncoding.EncodeToString([]byte("User7"))),
			err:   ErrMalformed,
		},
		"non numeric id": {
			token: graphql.ID(base64.URLEncoding.EncodeToString([]byte("User:abc"))),
			err:   ErrMalformed,
		},
		"zero id": {
			token: graphql.ID(base64.URLEncoding.EncodeToString([]byte("User:0"))),
			err:   ErrMalformed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			kind, id, err := Decode(test.token)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				return
			}
			require.Nil(t, err)
			require.Equal(t, test.kind, kind)
			require.Equal(t, test.id, id)
		})
	}
}

func TestDecodeKind(t *testing.T) {
	id, err := DecodeKind(Encode("User", 3), "User")
	require.Nil(t, err)
	require.Equal(t, int64(3), id)

	_, err = DecodeKind(Encode("Puzzle", 3), "User")
	require.ErrorIs(t, err, ErrKindMismatch)
}
