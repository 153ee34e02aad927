package pager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultBufferSize is the chunk size used for each read call.
const DefaultBufferSize = 4096

var marker = []byte(Marker)

// Span is the raw result of one chunked read: the bytes of whole entries and
// the file range [Start, End) they came from.
type Span struct {
	Data  []byte
	Start int64
	End   int64
	Reads int // read calls issued, including peeks
}

// ChunkReader reads entry-aligned spans from a random-access source.
// It holds no position state; every call starts from the offset it is given.
type ChunkReader struct {
	src     io.ReaderAt
	size    int64
	bufSize int
}

// NewChunkReader returns a reader over the first size bytes of src.
// A non-positive bufSize falls back to DefaultBufferSize.
func NewChunkReader(src io.ReaderAt, size int64, bufSize int) *ChunkReader {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if size < 0 {
		size = 0
	}
	return &ChunkReader{src: src, size: size, bufSize: bufSize}
}

// Size returns the source size the reader was created with.
func (r *ChunkReader) Size() int64 {
	return r.size
}

// clamp keeps an offset inside [0, size].
func (r *ChunkReader) clamp(off int64) int64 {
	if off < 0 {
		return 0
	}
	if off > r.size {
		return r.size
	}
	return off
}

// readAt is ReadAt without the io.EOF that accompanies a short final read.
func (r *ChunkReader) readAt(buf []byte, off int64) (int, error) {
	n, err := r.src.ReadAt(buf, off)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}

// ReadForward reads n entries starting at start, walking toward the end of
// the file. The returned End sits on the newline that opens the first entry
// not returned, so it can be passed straight back in for the following page.
func (r *ChunkReader) ReadForward(start int64, n int) (Span, error) {
	start = r.clamp(start)
	span := Span{Start: start, End: start}
	if n < 1 || start >= r.size {
		return span, nil
	}

	// Sitting on the newline of a boundary means the first entry is opened
	// by a marker and gets counted like every other. Anywhere else the
	// leading segment has no marker of its own, so one fewer is needed.
	need := n
	opens, err := r.opensEntry(start)
	span.Reads++
	if err != nil {
		return span, err
	}
	if !opens {
		need--
	}

	var buf []byte
	count, scanned := 0, 0
	pos := start
	for pos < r.size && count <= need {
		chunk := int64(r.bufSize)
		if rem := r.size - pos; rem < chunk {
			chunk = rem
		}

		prev := len(buf)
		buf = append(buf, make([]byte, chunk)...)
		k, err := r.readAt(buf[prev:], pos)
		span.Reads++
		if err != nil {
			return Span{Start: start, End: start, Reads: span.Reads}, fmt.Errorf("read at %d: %w", pos, err)
		}
		buf = buf[:prev+k]
		pos += int64(k)

		// A marker is counted once all of it is in buf, so one that
		// straddles a chunk edge is counted with the later chunk.
		c, reads, err := r.countBoundaries(buf, start, scanned, len(buf))
		span.Reads += reads
		if err != nil {
			return Span{Start: start, End: start, Reads: span.Reads}, err
		}
		count += c
		if len(buf) >= len(marker) {
			scanned = len(buf) - len(marker) + 1
		}

		if int64(k) < chunk {
			break
		}
	}

	// Overshoot: cut at the marker that opens entry need+1 and leave the
	// remainder for the next forward read.
	if count > need {
		cut, reads, err := r.nthBoundary(buf, start, need+1)
		span.Reads += reads
		if err != nil {
			return Span{Start: start, End: start, Reads: span.Reads}, err
		}
		if cut >= 0 {
			buf = buf[:cut]
		}
	}

	span.Data = buf
	span.End = start + int64(len(buf))
	return span, nil
}

// ReadBackward reads n entries ending at end, walking toward the start of
// the file. The returned Start sits on the newline that precedes the first
// returned entry (or is 0), so -Start requests the page before it.
func (r *ChunkReader) ReadBackward(end int64, n int) (Span, error) {
	end = r.clamp(end)
	span := Span{Start: end, End: end}
	if n < 1 || end == 0 {
		return span, nil
	}

	aligned, reads, err := r.onBoundary(end)
	span.Reads += reads
	if err != nil {
		return span, err
	}

	// An end inside an entry leaves a partial entry at the tail; read one
	// extra marker so it can be dropped.
	need := n
	if !aligned {
		need++
	}

	var buf []byte
	count := 0
	pos := end
	for pos > 0 && count < need {
		chunk := int64(r.bufSize)
		if pos < chunk {
			chunk = pos
		}
		pos -= chunk

		part := make([]byte, chunk)
		k, err := r.readAt(part, pos)
		span.Reads++
		if err != nil {
			return Span{Start: end, End: end, Reads: span.Reads}, fmt.Errorf("read at %d: %w", pos, err)
		}
		if int64(k) < chunk {
			return Span{Start: end, End: end, Reads: span.Reads}, fmt.Errorf("short read at %d: %w", pos, io.ErrUnexpectedEOF)
		}
		buf = append(part, buf...)

		// Count markers starting inside the new chunk, including one that
		// runs into the bytes read before it.
		c, reads, err := r.countBoundaries(buf, pos, 0, int(chunk))
		span.Reads += reads
		if err != nil {
			return Span{Start: end, End: end, Reads: span.Reads}, err
		}
		count += c
	}

	span.End = end
	if !aligned {
		last, reads, err := r.lastBoundary(buf, pos)
		span.Reads += reads
		if err != nil {
			return Span{Start: end, End: end, Reads: span.Reads}, err
		}
		if last < 0 {
			// Nothing but a fragment of the file's first entry.
			return Span{Start: pos, End: pos, Reads: span.Reads}, nil
		}
		buf = buf[:last]
		span.End = pos + int64(last)
		count--
	}

	// Keep the last n markers. Bytes before the first kept marker are either
	// a fragment or entries that belong to the previous page.
	start := pos
	if count >= n {
		cut, reads, err := r.nthBoundary(buf, pos, count-n+1)
		span.Reads += reads
		if err != nil {
			return Span{Start: end, End: end, Reads: span.Reads}, err
		}
		if cut >= 0 {
			buf = buf[cut:]
			start += int64(cut)
		}
	}

	span.Data = buf
	span.Start = start
	return span, nil
}

// opensEntry reports whether off is the newline of a marker followed by a
// full entry header.
func (r *ChunkReader) opensEntry(off int64) (bool, error) {
	buf := make([]byte, 1+headerWindow)
	k, err := r.readAt(buf, off)
	if err != nil {
		return false, fmt.Errorf("peek at %d: %w", off, err)
	}
	buf = buf[:k]
	return len(buf) > 1 && buf[0] == '\n' && isHeader(buf[1:]), nil
}

// onBoundary reports whether off sits on an entry boundary: end of file, the
// newline of a marker, or the "[" right after one.
func (r *ChunkReader) onBoundary(off int64) (bool, int, error) {
	if off <= 0 || off >= r.size {
		return true, 0, nil
	}
	buf := make([]byte, 2+headerWindow)
	k, err := r.readAt(buf, off-1)
	if err != nil {
		return false, 1, fmt.Errorf("peek at %d: %w", off-1, err)
	}
	buf = buf[:k]
	if len(buf) > 1 && buf[0] == '\n' && isHeader(buf[1:]) {
		return true, 1, nil
	}
	return len(buf) > 2 && buf[1] == '\n' && isHeader(buf[2:]), 1, nil
}

// boundaryAt reports whether the marker at buf[i] opens an entry. base is
// the file offset of buf[0]. A header running past the end of buf is
// completed from the source.
func (r *ChunkReader) boundaryAt(buf []byte, base int64, i int) (bool, int, error) {
	header := buf[i+1:]
	if len(header) >= headerWindow || base+int64(len(buf)) >= r.size {
		return isHeader(header), 0, nil
	}

	off := base + int64(i) + 1
	window := make([]byte, headerWindow)
	k, err := r.readAt(window, off)
	if err != nil {
		return false, 1, fmt.Errorf("peek at %d: %w", off, err)
	}
	return isHeader(window[:k]), 1, nil
}

// countBoundaries counts the boundaries whose marker starts in buf[from:to].
// It also returns the peeks issued.
func (r *ChunkReader) countBoundaries(buf []byte, base int64, from, to int) (int, int, error) {
	count, reads := 0, 0
	for i := from; i < to; i++ {
		next := bytes.Index(buf[i:], marker)
		if next < 0 || i+next >= to {
			break
		}
		i += next
		ok, n, err := r.boundaryAt(buf, base, i)
		reads += n
		if err != nil {
			return count, reads, err
		}
		if ok {
			count++
		}
	}
	return count, reads, nil
}

// nthBoundary returns the index of the i-th (1-based) boundary in buf,
// or -1.
func (r *ChunkReader) nthBoundary(buf []byte, base int64, i int) (int, int, error) {
	reads := 0
	for idx := 0; idx < len(buf); idx++ {
		next := bytes.Index(buf[idx:], marker)
		if next < 0 {
			break
		}
		idx += next
		ok, n, err := r.boundaryAt(buf, base, idx)
		reads += n
		if err != nil {
			return -1, reads, err
		}
		if !ok {
			continue
		}
		i--
		if i == 0 {
			return idx, reads, nil
		}
	}
	return -1, reads, nil
}

// lastBoundary returns the index of the last boundary in buf, or -1.
func (r *ChunkReader) lastBoundary(buf []byte, base int64) (int, int, error) {
	reads := 0
	for end := len(buf); end > 0; {
		idx := bytes.LastIndex(buf[:end], marker)
		if idx < 0 {
			break
		}
		ok, n, err := r.boundaryAt(buf, base, idx)
		reads += n
		if err != nil {
			return -1, reads, err
		}
		if ok {
			return idx, reads, nil
		}
		end = idx
	}
	return -1, reads, nil
}
