package wiki

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPage(t *testing.T) {
	fsys := fstest.MapFS{
		"rules.md":      {Data: []byte("# Rules\nAsk yes/no questions.")},
		"faq_2018.md":   {Data: []byte("# FAQ")},
		"nested/top.md": {Data: []byte("# Hidden")},
	}

	tests := map[string]struct {
		name string
		exp  string
		err  error
	}{
		"page":            {name: "rules", exp: "# Rules\nAsk yes/no questions."},
		"underscore":      {name: "faq_2018", exp: "# FAQ"},
		"page dne":        {name: "missing", err: ErrPageDNE},
		"path traversal":  {name: "../secrets", err: ErrInvalidName},
		"nested path":     {name: "nested/top", err: ErrInvalidName},
		"empty name":      {name: "", err: ErrInvalidName},
		"extension given": {name: "rules.md", err: ErrInvalidName},
	}

	w, err := New(zap.NewNop(), fsys, time.Minute)
	require.NoError(t, err)
	defer w.Close()

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			page, err := w.Page(test.name)
			if test.err != nil {
				require.True(t, errors.Is(err, test.err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.exp, page)
		})
	}
}

func TestPageCached(t *testing.T) {
	fsys := fstest.MapFS{
		"rules.md": {Data: []byte("v1")},
	}

	w, err := New(zap.NewNop(), fsys, time.Minute)
	require.NoError(t, err)
	defer w.Close()

	page, err := w.Page("rules")
	require.NoError(t, err)
	require.Equal(t, "v1", page)

	// Sets are buffered; wait until the page is admitted before mutating
	// the underlying file.
	w.cache.Wait()
	fsys["rules.md"] = &fstest.MapFile{Data: []byte("v2")}

	page, err = w.Page("rules")
	require.NoError(t, err)
	require.Equal(t, "v1", page)
}
