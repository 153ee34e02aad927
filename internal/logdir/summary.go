package logdir

import (
	"context"
	"errors"

	"github.com/jmurray2011/leaf/internal/local"
	"github.com/jmurray2011/leaf/internal/pager"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many files Summarize reads at once.
const DefaultConcurrency = 8

// Summary pairs a file with its newest entry. Newest is nil for empty or
// unreadable files, in which case Err may say why.
type Summary struct {
	File
	Newest *pager.Entry `json:"newest,omitempty"`
	Err    error        `json:"-"`
}

// PeekFunc returns the newest entry of a file, or nil if it has none.
type PeekFunc func(ctx context.Context, f File) (*pager.Entry, error)

// NewestEntry returns a PeekFunc that reads one page of one entry from the
// end of each file.
func NewestEntry(opts pager.Options) PeekFunc {
	return func(ctx context.Context, f File) (*pager.Entry, error) {
		page, err := pager.New(local.NewSource(f.Path), opts).Fetch(ctx, pager.Request{Lines: 1})
		if err != nil {
			return nil, err
		}
		if len(page.Entries) == 0 {
			return nil, nil
		}
		e := page.Entries[0]
		return &e, nil
	}
}

// Summarize peeks every file concurrently. Per-file failures are recorded
// on the summary; only cancellation of ctx fails the whole call.
func Summarize(ctx context.Context, files []File, peek PeekFunc, concurrency int) ([]Summary, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	out := make([]Summary, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := peek(gctx, f)
			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return err
			}
			out[i] = Summary{File: f, Newest: entry, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
