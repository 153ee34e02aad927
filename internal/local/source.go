package local

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmurray2011/leaf/internal/pager"
	"github.com/jmurray2011/leaf/internal/source"
)

func init() {
	source.Register("file", openSource)
}

// Source implements source.Source for a single local log file.
type Source struct {
	path string
}

// openSource opens a local file source from a parsed URL.
func openSource(u *url.URL, _ source.OpenOptions) (source.Source, error) {
	path := u.Path
	if path == "" {
		// file://laravel.log parses the name into Host.
		path = u.Host
	}
	if path == "" {
		return nil, fmt.Errorf("file:// URI requires a path")
	}

	if strings.HasPrefix(path, "/~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[3:])
		}
	}

	return NewSource(path), nil
}

// NewSource returns a source for the file at path. The file does not have to
// exist yet; Open reports it as unavailable until it does.
func NewSource(path string) *Source {
	return &Source{path: filepath.Clean(path)}
}

// Path returns the file path the source reads.
func (s *Source) Path() string {
	return s.path
}

// Open opens the file for one fetch. The handle's size is fixed at open time
// so bytes appended during the fetch are not seen.
func (s *Source) Open(ctx context.Context) (source.Handle, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pager.ErrSourceUnavailable, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", pager.ErrSourceUnavailable, s.path, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", pager.ErrSourceUnavailable, s.path)
	}

	return &fileHandle{File: f, size: info.Size()}, nil
}

// Type returns "local".
func (s *Source) Type() string {
	return "local"
}

// Metadata returns source metadata.
func (s *Source) Metadata() source.Metadata {
	return source.Metadata{
		Type: "local",
		URI:  "file://" + s.path,
		Name: filepath.Base(s.path),
	}
}

// Close is a no-op; handles are closed by whoever opened them.
func (s *Source) Close() error {
	return nil
}

// fileHandle is an open file with the size it had when opened.
type fileHandle struct {
	*os.File
	size int64
}

func (h *fileHandle) Size() int64 {
	return h.size
}
