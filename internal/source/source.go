package source

import (
	"context"

	"github.com/jmurray2011/leaf/internal/pager"
)

// Handle is an open, size-stable view of a log for random access reads.
type Handle = pager.Handle

// Source is the interface that all log backends must implement. A Source is
// cheap to keep around; bytes are only read through handles returned by Open.
type Source interface {
	// Open returns a fresh handle. Callers close it when done. Every
	// failure wraps pager.ErrSourceUnavailable.
	Open(ctx context.Context) (Handle, error)

	// Type returns the source type identifier (e.g., "local", "s3").
	Type() string

	// Metadata describes where the source points.
	Metadata() Metadata

	// Close releases any resources held by the source.
	Close() error
}
