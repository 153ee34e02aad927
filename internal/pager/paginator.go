package pager

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jmurray2011/leaf/internal/logging"
)

// DefaultLines is the number of entries per page when none is requested.
const DefaultLines = 20

// DefaultMaxPages caps how many pages a single filtered fetch may scan.
const DefaultMaxPages = 10000

// DefaultMaxTailBytes caps how much new data a single Tail call reads.
const DefaultMaxTailBytes = 1 << 20

// Handle is an open log source. It must support random access reads and
// report a fixed size for the lifetime of the handle.
type Handle interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Opener opens a fresh Handle. The paginator opens one per fetch and
// always closes it before returning.
type Opener interface {
	Open(ctx context.Context) (Handle, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Handle, error)

// Open calls f(ctx).
func (f OpenerFunc) Open(ctx context.Context) (Handle, error) {
	return f(ctx)
}

// Request selects a page.
//
// Seek is signed: 0 reads the newest page backward from the end of the file,
// a positive value reads forward from that offset, and a negative value reads
// backward from its absolute value.
type Request struct {
	Seek       int64
	Lines      int
	BufferSize int
}

// Page is one fetched page and the byte span it was read from.
type Page struct {
	Entries []Entry `json:"entries"`
	Offset  Offset  `json:"offset"`
	Size    int64   `json:"size"`

	// KeywordActive is set on filtered results. Their page edges no longer
	// match a fixed entry count, so PrevSeek and NextSeek are disabled.
	KeywordActive bool   `json:"keyword_active"`
	Keyword       string `json:"keyword,omitempty"`

	Pages int `json:"pages"`
	Reads int `json:"-"`
}

// PrevSeek returns the Seek that reads the page following this one in the
// file (forward from Offset.End), or 0 when this page already reaches the
// end of the file.
func (p *Page) PrevSeek() int64 {
	if p == nil || p.KeywordActive || p.Offset.End <= 0 || p.Offset.End >= p.Size-1 {
		return 0
	}
	return p.Offset.End
}

// NextSeek returns the Seek that reads the page preceding this one in the
// file (backward from Offset.Start), or 0 when this page starts at offset 0.
func (p *Page) NextSeek() int64 {
	if p == nil || p.KeywordActive || p.Offset.Start <= 0 {
		return 0
	}
	return -p.Offset.Start
}

// HasPrev reports whether PrevSeek leads anywhere.
func (p *Page) HasPrev() bool { return p.PrevSeek() != 0 }

// HasNext reports whether NextSeek leads anywhere.
func (p *Page) HasNext() bool { return p.NextSeek() != 0 }

// Options configures a Paginator.
type Options struct {
	// BufferSize is the default chunk size for requests that do not set one.
	BufferSize int
	// Lines is the default page length for requests that do not set one.
	Lines int
	// Root is stripped from trace paths.
	Root string
	// MaxPages caps the pages scanned by one filtered fetch.
	MaxPages int
	// MaxTailBytes caps the bytes read by one Tail call.
	MaxTailBytes int64
	Logger       logging.Logger
}

// Paginator fetches pages from a single log source. It keeps no state
// between calls and is safe for concurrent use.
type Paginator struct {
	src    Opener
	parser *Parser
	opts   Options
	log    logging.Logger
}

// New returns a paginator over src.
func New(src Opener, opts Options) *Paginator {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Lines <= 0 {
		opts.Lines = DefaultLines
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.MaxTailBytes <= 0 {
		opts.MaxTailBytes = DefaultMaxTailBytes
	}
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	return &Paginator{
		src:    src,
		parser: NewParser(opts.Root),
		opts:   opts,
		log:    log,
	}
}

// Fetch reads one page. When the source cannot be opened it returns an empty
// page together with an error wrapping ErrSourceUnavailable.
func (p *Paginator) Fetch(ctx context.Context, req Request) (*Page, error) {
	req = p.normalize(req)

	h, err := p.open(ctx)
	if err != nil {
		return &Page{}, err
	}
	defer func() { _ = h.Close() }()

	return p.fetch(h, req)
}

// open opens the source, folding every failure into ErrSourceUnavailable.
func (p *Paginator) open(ctx context.Context) (Handle, error) {
	h, err := p.src.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return h, nil
}

func (p *Paginator) normalize(req Request) Request {
	if req.Lines <= 0 {
		req.Lines = p.opts.Lines
	}
	if req.BufferSize <= 0 {
		req.BufferSize = p.opts.BufferSize
	}
	return req
}

// fetch reads and parses one page from an already open handle.
func (p *Paginator) fetch(h Handle, req Request) (*Page, error) {
	size := h.Size()
	r := NewChunkReader(h, size, req.BufferSize)

	var (
		span Span
		err  error
	)
	if req.Seek > 0 {
		span, err = r.ReadForward(req.Seek, req.Lines)
	} else {
		end := size
		if req.Seek < 0 {
			end = -req.Seek
		}
		span, err = r.ReadBackward(end, req.Lines)
	}
	if err != nil {
		return &Page{Size: size}, fmt.Errorf("read page at seek %d: %w", req.Seek, err)
	}

	entries := p.parser.Parse(span.Data)

	p.log.WithFields(map[string]interface{}{
		"seek":  req.Seek,
		"start": span.Start,
		"end":   span.End,
		"reads": span.Reads,
	}).Debug("read %d entries", len(entries))

	return &Page{
		Entries: entries,
		Offset:  Offset{Start: span.Start, End: span.End},
		Size:    size,
		Pages:   1,
		Reads:   span.Reads,
	}, nil
}
