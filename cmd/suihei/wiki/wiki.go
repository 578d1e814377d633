// Package wiki serves the markdown pages of the site wiki from a directory,
// caching page contents in memory.
package wiki

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"
)

var (
	// ErrInvalidName indicates a page name contains characters other than
	// letters, digits, "-" and "_".
	ErrInvalidName = errors.New("invalid wiki page name")

	// ErrPageDNE indicates the requested page does not exist.
	ErrPageDNE = errors.New("wiki page dne")
)

var nameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// New creates a Wiki serving the "<name>.md" pages of fsys. Cached pages
// expire after ttl.
func New(logger *zap.Logger, fsys fs.FS, ttl time.Duration) (*Wiki, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 1e4,
		MaxCost:     32 << 20,
		BufferItems: 64,
		Cost: func(page string) int64 {
			return int64(len(page))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create wiki cache; error: %w", err)
	}

	return &Wiki{
		logger: logger,
		fsys:   fsys,
		ttl:    ttl,
		cache:  cache,
	}, nil
}

// Wiki reads wiki pages.
type Wiki struct {
	logger *zap.Logger
	fsys   fs.FS
	ttl    time.Duration
	cache  *ristretto.Cache[string, string]
}

// Page retrieves the content of the page called name.
func (w Wiki) Page(name string) (string, error) {
	if !nameRE.MatchString(name) {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if page, ok := w.cache.Get(name); ok {
		return page, nil
	}

	b, err := fs.ReadFile(w.fsys, name+".md")
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%q: %w", name, ErrPageDNE)
	}
	if err != nil {
		return "", fmt.Errorf("read wiki page %q; error: %w", name, err)
	}

	page := string(b)
	if !w.cache.SetWithTTL(name, page, 0, w.ttl) {
		w.logger.Debug("wiki page not cached", zap.String("name", name))
	}
	return page, nil
}

// Close releases the resources held by the Wiki's cache.
func (w Wiki) Close() {
	w.cache.Close()
}
