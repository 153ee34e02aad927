package pager

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func newReader(content string, bufSize int) *ChunkReader {
	return NewChunkReader(strings.NewReader(content), int64(len(content)), bufSize)
}

func TestReadBackward_FromEnd(t *testing.T) {
	r := newReader(threeEntries, 0)

	span, err := r.ReadBackward(int64(len(threeEntries)), 2)
	if err != nil {
		t.Fatalf("ReadBackward() error = %v", err)
	}

	wantStart := int64(strings.Index(threeEntries, "\n[2024-01-01 00:00:01"))
	if span.Start != wantStart {
		t.Errorf("Start = %d, want %d", span.Start, wantStart)
	}
	if span.End != int64(len(threeEntries)) {
		t.Errorf("End = %d, want %d", span.End, len(threeEntries))
	}
	if want := threeEntries[wantStart:]; string(span.Data) != want {
		t.Errorf("Data = %q, want %q", span.Data, want)
	}
}

func TestReadBackward_ReachesStart(t *testing.T) {
	r := newReader(threeEntries, 0)

	span, err := r.ReadBackward(int64(len(threeEntries)), 10)
	if err != nil {
		t.Fatalf("ReadBackward() error = %v", err)
	}
	if span.Start != 0 {
		t.Errorf("Start = %d, want 0", span.Start)
	}
	if string(span.Data) != threeEntries {
		t.Errorf("Data = %q, want whole file", span.Data)
	}
}

func TestReadBackward_MidEntryDropsTail(t *testing.T) {
	r := newReader(threeEntries, 0)
	end := int64(strings.Index(threeEntries, "second") + 3)

	span, err := r.ReadBackward(end, 1)
	if err != nil {
		t.Fatalf("ReadBackward() error = %v", err)
	}

	wantEnd := int64(strings.Index(threeEntries, "\n[2024-01-01 00:00:01"))
	if span.End != wantEnd {
		t.Errorf("End = %d, want %d", span.End, wantEnd)
	}
	if span.Start != 0 {
		t.Errorf("Start = %d, want 0", span.Start)
	}
	if got := messages(NewParser("").Parse(span.Data)); len(got) != 1 || got[0] != "first" {
		t.Errorf("entries = %v, want [first]", got)
	}
}

func TestReadBackward_InsideFirstEntry(t *testing.T) {
	r := newReader(threeEntries, 0)

	span, err := r.ReadBackward(5, 3)
	if err != nil {
		t.Fatalf("ReadBackward() error = %v", err)
	}
	if len(span.Data) != 0 {
		t.Errorf("expected no data, got %q", span.Data)
	}
	if span.Start != 0 || span.End != 0 {
		t.Errorf("span = [%d, %d), want [0, 0)", span.Start, span.End)
	}
}

func TestReadBackward_OnBracket(t *testing.T) {
	// An end on the "[" of a header is as good as one on its newline.
	r := newReader(threeEntries, 0)
	nl := int64(strings.Index(threeEntries, "\n[2024-01-01 00:00:02"))

	a, err := r.ReadBackward(nl, 1)
	if err != nil {
		t.Fatalf("ReadBackward(newline) error = %v", err)
	}
	b, err := r.ReadBackward(nl+1, 1)
	if err != nil {
		t.Fatalf("ReadBackward(bracket) error = %v", err)
	}

	got := messages(NewParser("").Parse(a.Data))
	if len(got) != 1 || got[0] != "second" {
		t.Errorf("entries at newline = %v, want [second]", got)
	}
	if a.Start != b.Start {
		t.Errorf("Start differs: %d vs %d", a.Start, b.Start)
	}
	if !bytes.Equal(bytes.TrimSpace(a.Data), bytes.TrimSpace(b.Data)) {
		t.Errorf("Data differs: %q vs %q", a.Data, b.Data)
	}
}

func TestReadForward(t *testing.T) {
	secondNL := int64(strings.Index(threeEntries, "\n[2024-01-01 00:00:01"))
	thirdNL := int64(strings.Index(threeEntries, "\n[2024-01-01 00:00:02"))

	tests := []struct {
		name      string
		start     int64
		n         int
		wantEnd   int64
		wantMsgs  []string
		wantEmpty bool
	}{
		{
			name:     "from newline",
			start:    secondNL,
			n:        1,
			wantEnd:  thirdNL,
			wantMsgs: []string{"second"},
		},
		{
			name:     "from bracket",
			start:    secondNL + 1,
			n:        1,
			wantEnd:  thirdNL,
			wantMsgs: []string{"second"},
		},
		{
			name:     "runs to end of file",
			start:    secondNL,
			n:        5,
			wantEnd:  int64(len(threeEntries)),
			wantMsgs: []string{"third", "second"},
		},
		{
			name:      "past end",
			start:     int64(len(threeEntries)) + 10,
			n:         2,
			wantEnd:   int64(len(threeEntries)),
			wantEmpty: true,
		},
		{
			name:      "zero entries",
			start:     secondNL,
			n:         0,
			wantEnd:   secondNL,
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := newReader(threeEntries, 0).ReadForward(tt.start, tt.n)
			if err != nil {
				t.Fatalf("ReadForward() error = %v", err)
			}
			if span.End != tt.wantEnd {
				t.Errorf("End = %d, want %d", span.End, tt.wantEnd)
			}
			if tt.wantEmpty {
				if len(span.Data) != 0 {
					t.Errorf("expected no data, got %q", span.Data)
				}
				return
			}
			got := messages(NewParser("").Parse(span.Data))
			if strings.Join(got, ",") != strings.Join(tt.wantMsgs, ",") {
				t.Errorf("entries = %v, want %v", got, tt.wantMsgs)
			}
		})
	}
}

func TestChunkReader_BufferSizeIndependent(t *testing.T) {
	content := buildLog(40)
	size := int64(len(content))
	ref := newReader(content, DefaultBufferSize)

	// Offsets on boundaries, inside headers and inside traces.
	offsets := []int64{0, 1, 2, 3, 17, 150, 151, 500, size / 3, size / 2, size - 40, size - 1, size}
	for i := 0; i < len(content); i++ {
		if strings.HasPrefix(content[i:], Marker) {
			offsets = append(offsets, int64(i), int64(i+1), int64(i+2))
		}
	}

	for _, bufSize := range []int{1, 2, 3, 4, 5, 7, 16, 64, 333} {
		r := newReader(content, bufSize)
		for _, off := range offsets {
			for _, n := range []int{1, 2, 7} {
				wantB, err := ref.ReadBackward(off, n)
				if err != nil {
					t.Fatalf("reference ReadBackward(%d, %d) error = %v", off, n, err)
				}
				gotB, err := r.ReadBackward(off, n)
				if err != nil {
					t.Fatalf("buf %d: ReadBackward(%d, %d) error = %v", bufSize, off, n, err)
				}
				if gotB.Start != wantB.Start || gotB.End != wantB.End || !bytes.Equal(gotB.Data, wantB.Data) {
					t.Errorf("buf %d: ReadBackward(%d, %d) = [%d, %d), want [%d, %d)",
						bufSize, off, n, gotB.Start, gotB.End, wantB.Start, wantB.End)
				}

				if off >= size {
					continue
				}
				wantF, err := ref.ReadForward(off, n)
				if err != nil {
					t.Fatalf("reference ReadForward(%d, %d) error = %v", off, n, err)
				}
				gotF, err := r.ReadForward(off, n)
				if err != nil {
					t.Fatalf("buf %d: ReadForward(%d, %d) error = %v", bufSize, off, n, err)
				}
				if gotF.Start != wantF.Start || gotF.End != wantF.End || !bytes.Equal(gotF.Data, wantF.Data) {
					t.Errorf("buf %d: ReadForward(%d, %d) = [%d, %d), want [%d, %d)",
						bufSize, off, n, gotF.Start, gotF.End, wantF.Start, wantF.End)
				}
			}
		}
	}
}

func TestChunkReader_Empty(t *testing.T) {
	r := newReader("", 16)

	b, err := r.ReadBackward(0, 5)
	if err != nil {
		t.Fatalf("ReadBackward() error = %v", err)
	}
	if len(b.Data) != 0 || b.Start != 0 || b.End != 0 {
		t.Errorf("ReadBackward() = %+v, want empty span at 0", b)
	}

	f, err := r.ReadForward(0, 5)
	if err != nil {
		t.Fatalf("ReadForward() error = %v", err)
	}
	if len(f.Data) != 0 || f.Start != 0 || f.End != 0 {
		t.Errorf("ReadForward() = %+v, want empty span at 0", f)
	}
}

func TestChunkReader_ClampsOffsets(t *testing.T) {
	r := newReader(threeEntries, 8)

	span, err := r.ReadBackward(int64(len(threeEntries))*2, 1)
	if err != nil {
		t.Fatalf("ReadBackward() error = %v", err)
	}
	if span.End != int64(len(threeEntries)) {
		t.Errorf("End = %d, want clamped to %d", span.End, len(threeEntries))
	}

	span, err = r.ReadForward(-20, 1)
	if err != nil {
		t.Fatalf("ReadForward() error = %v", err)
	}
	if span.Start != 0 {
		t.Errorf("Start = %d, want clamped to 0", span.Start)
	}
	if got := messages(NewParser("").Parse(span.Data)); len(got) != 1 || got[0] != "first" {
		t.Errorf("entries = %v, want [first]", got)
	}
}

// failingReaderAt fails every read at or beyond failAt.
type failingReaderAt struct {
	r      io.ReaderAt
	failAt int64
}

func (f failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > f.failAt {
		return 0, errBoom
	}
	return f.r.ReadAt(p, off)
}

func TestChunkReader_ReadError(t *testing.T) {
	src := failingReaderAt{r: strings.NewReader(threeEntries), failAt: 10}
	r := NewChunkReader(src, int64(len(threeEntries)), 8)

	if _, err := r.ReadBackward(int64(len(threeEntries)), 1); !errors.Is(err, errBoom) {
		t.Errorf("ReadBackward() error = %v, want %v", err, errBoom)
	}
	if _, err := r.ReadForward(0, 3); !errors.Is(err, errBoom) {
		t.Errorf("ReadForward() error = %v, want %v", err, errBoom)
	}
}

func TestChunkReader_Boundaries(t *testing.T) {
	r := newReader(continuationEntries, 16)
	buf := []byte(continuationEntries)

	second := strings.Index(continuationEntries, "\n[2024-01-01 00:00:01")
	fake := strings.Index(continuationEntries, "\n[2023 budget")
	third := strings.Index(continuationEntries, "\n[2024-01-01 00:00:02")

	tests := []struct {
		i    int
		want int
	}{
		{1, second},
		{2, third},
		{3, -1},
	}
	for _, tt := range tests {
		got, _, err := r.nthBoundary(buf, 0, tt.i)
		if err != nil {
			t.Fatalf("nthBoundary(%d) error = %v", tt.i, err)
		}
		if got != tt.want {
			t.Errorf("nthBoundary(%d) = %d, want %d", tt.i, got, tt.want)
		}
	}

	// Only the bytes up to the fake marker are in hand; the header check
	// has to read past them to see it is not a header.
	last, reads, err := r.lastBoundary(buf[:fake+6], 0)
	if err != nil {
		t.Fatalf("lastBoundary() error = %v", err)
	}
	if last != second {
		t.Errorf("lastBoundary() = %d, want %d", last, second)
	}
	if reads == 0 {
		t.Error("expected a peek past the end of the buffer")
	}

	count, _, err := r.countBoundaries(buf, 0, 0, len(buf))
	if err != nil {
		t.Fatalf("countBoundaries() error = %v", err)
	}
	if count != 2 {
		t.Errorf("countBoundaries() = %d, want 2", count)
	}
}

func TestChunkReader_SkipsContinuationMarkers(t *testing.T) {
	size := int64(len(continuationEntries))
	third := int64(strings.Index(continuationEntries, "\n[2024-01-01 00:00:02"))
	fake := int64(strings.Index(continuationEntries, "\n[2023 budget"))
	wantSecond := continuationEntries[strings.Index(continuationEntries, "\n[2024-01-01 00:00:01"):third]

	for _, bufSize := range []int{1, 2, 5, 16, 33, 4096} {
		r := newReader(continuationEntries, bufSize)

		span, err := r.ReadBackward(third, 1)
		if err != nil {
			t.Fatalf("buf %d: ReadBackward() error = %v", bufSize, err)
		}
		if string(span.Data) != wantSecond {
			t.Errorf("buf %d: ReadBackward() = %q, want %q", bufSize, span.Data, wantSecond)
		}

		// An end on the fake marker is inside the second entry.
		span, err = r.ReadBackward(fake, 1)
		if err != nil {
			t.Fatalf("buf %d: ReadBackward(fake) error = %v", bufSize, err)
		}
		if got := messages(NewParser("").Parse(span.Data)); len(got) != 1 || got[0] != "first" {
			t.Errorf("buf %d: ReadBackward(fake) entries = %v, want [first]", bufSize, got)
		}

		// Starting on the fake marker, the rest of the second entry is a
		// fragment that counts as the first entry of the page.
		span, err = r.ReadForward(fake, 1)
		if err != nil {
			t.Fatalf("buf %d: ReadForward(fake, 1) error = %v", bufSize, err)
		}
		if span.End != third {
			t.Errorf("buf %d: ReadForward(fake, 1) End = %d, want %d", bufSize, span.End, third)
		}
		if got := NewParser("").Parse(span.Data); len(got) != 0 {
			t.Errorf("buf %d: ReadForward(fake, 1) entries = %v, want none", bufSize, messages(got))
		}

		span, err = r.ReadForward(fake, 2)
		if err != nil {
			t.Fatalf("buf %d: ReadForward(fake, 2) error = %v", bufSize, err)
		}
		if span.End != size {
			t.Errorf("buf %d: ReadForward(fake, 2) End = %d, want %d", bufSize, span.End, size)
		}
		if got := messages(NewParser("").Parse(span.Data)); len(got) != 1 || got[0] != "third" {
			t.Errorf("buf %d: ReadForward(fake, 2) entries = %v, want [third]", bufSize, got)
		}
	}
}
