package pager

import (
	"context"
	"fmt"
	"io"
)

// Tail returns the entries appended since offset, newest first, and the
// offset to poll from next time. A negative offset starts at the current end
// of the file and returns no entries, which is how a follow session begins.
//
// An entry that is still being written when Tail runs is returned as far as
// it got; its remainder arrives with no header and is dropped on the next call.
//
// When more than MaxTailBytes were appended since offset, only the newest
// page is returned and the rest is skipped.
func (p *Paginator) Tail(ctx context.Context, offset int64) ([]Entry, int64, error) {
	h, err := p.open(ctx)
	if err != nil {
		return nil, offset, err
	}
	defer func() { _ = h.Close() }()

	size := h.Size()
	if offset < 0 || offset >= size {
		return nil, size, nil
	}

	if size-offset > p.opts.MaxTailBytes {
		span, err := NewChunkReader(h, size, p.opts.BufferSize).ReadBackward(size, p.opts.Lines)
		if err != nil {
			return nil, offset, fmt.Errorf("read tail at %d: %w", size, err)
		}
		entries := p.parser.Parse(span.Data)
		p.log.WithFields(map[string]interface{}{
			"from": offset,
			"to":   size,
		}).Warn("tail skipped %d bytes, showing the newest %d entries", span.Start-offset, len(entries))
		return entries, size, nil
	}

	data, err := io.ReadAll(io.NewSectionReader(h, offset, size-offset))
	if err != nil {
		return nil, offset, fmt.Errorf("read tail at %d: %w", offset, err)
	}

	entries := p.parser.Parse(data)
	p.log.WithFields(map[string]interface{}{
		"from": offset,
		"to":   size,
	}).Debug("tail read %d entries", len(entries))

	return entries, size, nil
}
