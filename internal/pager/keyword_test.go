package pager

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jmurray2011/leaf/internal/logging"
)

func TestFetchFiltered(t *testing.T) {
	content := buildLog(30)
	ctx := context.Background()

	tests := []struct {
		name    string
		keyword string
		lines   int
		want    []string
	}{
		{
			name:    "spans several pages",
			keyword: "needle",
			lines:   3,
			want:    []string{"message 025 needle", "message 020 needle", "message 015 needle"},
		},
		{
			name:    "fewer matches than requested",
			keyword: "needle",
			lines:   10,
			want: []string{
				"message 025 needle", "message 020 needle", "message 015 needle",
				"message 010 needle", "message 005 needle", "message 000 needle",
			},
		},
		{
			name:    "case sensitive",
			keyword: "NEEDLE",
			lines:   3,
			want:    nil,
		},
		{
			name:    "fields are matched space-joined",
			keyword: "production.WARNING",
			lines:   3,
			want:    nil,
		},
		{
			name:    "matches trace",
			keyword: "Worker.php(27)",
			lines:   5,
			want:    []string{"message 027"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPaginator(content)
			page, err := p.FetchFiltered(ctx, Request{Lines: tt.lines, BufferSize: 64}, tt.keyword)
			if err != nil {
				t.Fatalf("FetchFiltered() error = %v", err)
			}
			got := messages(page.Entries)
			if len(got) == 0 && len(tt.want) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("entries = %v, want %v", got, tt.want)
			}
			if !page.KeywordActive || page.Keyword != tt.keyword {
				t.Errorf("KeywordActive = %v, Keyword = %q", page.KeywordActive, page.Keyword)
			}
			if page.HasNext() || page.HasPrev() {
				t.Errorf("filtered pages must not navigate: prev %d next %d", page.PrevSeek(), page.NextSeek())
			}
		})
	}
}

func TestFetchFiltered_MatchesLevelWord(t *testing.T) {
	p, _ := newTestPaginator(buildLog(12))

	page, err := p.FetchFiltered(context.Background(), Request{Lines: 2}, "WARNING")
	if err != nil {
		t.Fatalf("FetchFiltered() error = %v", err)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(page.Entries))
	}
	for _, e := range page.Entries {
		if e.Level != LevelWarning {
			t.Errorf("unexpected level %q in %q", e.Level, e.Message)
		}
	}
}

func TestFetchFiltered_Subset(t *testing.T) {
	content := buildLog(40)
	p, _ := newTestPaginator(content)
	ctx := context.Background()

	for _, lines := range []int{1, 3, 8} {
		plain, err := p.Fetch(ctx, Request{Lines: lines})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		inPage := 0
		for _, e := range plain.Entries {
			if strings.Contains(e.Text(), "needle") {
				inPage++
			}
		}

		filtered, err := p.FetchFiltered(ctx, Request{Lines: lines}, "needle")
		if err != nil {
			t.Fatalf("FetchFiltered() error = %v", err)
		}
		if len(filtered.Entries) < inPage {
			t.Errorf("lines %d: filtered %d matches, a single page already has %d", lines, len(filtered.Entries), inPage)
		}
		if len(filtered.Entries) > lines {
			t.Errorf("lines %d: filtered returned %d entries", lines, len(filtered.Entries))
		}
		for i, e := range filtered.Entries {
			if !strings.Contains(e.Text(), "needle") {
				t.Errorf("entry %q does not contain keyword", e.Message)
			}
			if i > 0 && e.Time.After(filtered.Entries[i-1].Time) {
				t.Errorf("entries out of order at %d", i)
			}
		}
	}
}

func TestFetchFiltered_Offsets(t *testing.T) {
	content := buildLog(30)
	p, _ := newTestPaginator(content)

	page, err := p.FetchFiltered(context.Background(), Request{Lines: 2}, "needle")
	if err != nil {
		t.Fatalf("FetchFiltered() error = %v", err)
	}
	if page.Offset.End != int64(len(content)) {
		t.Errorf("Offset.End = %d, want %d", page.Offset.End, len(content))
	}
	// The second match is message 020, so the scan stopped on the page
	// that starts right before it.
	want := int64(strings.Index(content, "\n[2024-01-15 08:00:20"))
	if page.Offset.Start != want {
		t.Errorf("Offset.Start = %d, want %d", page.Offset.Start, want)
	}
	if page.Pages < 2 {
		t.Errorf("Pages = %d, want several", page.Pages)
	}
}

func TestFetchFiltered_EmptyKeyword(t *testing.T) {
	p, _ := newTestPaginator(buildLog(10))
	ctx := context.Background()

	plain, err := p.Fetch(ctx, Request{Lines: 4})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	filtered, err := p.FetchFiltered(ctx, Request{Lines: 4}, "")
	if err != nil {
		t.Fatalf("FetchFiltered() error = %v", err)
	}
	if !reflect.DeepEqual(plain, filtered) {
		t.Errorf("empty keyword should match Fetch:\n%+v\n%+v", plain, filtered)
	}
}

func TestFetchFiltered_PageCap(t *testing.T) {
	src := &memSource{content: buildLog(30)}
	p := New(src, Options{MaxPages: 2, Logger: logging.NopLogger{}})

	page, err := p.FetchFiltered(context.Background(), Request{Lines: 1}, "needle")
	if err != nil {
		t.Fatalf("FetchFiltered() error = %v", err)
	}
	if page.Pages != 2 {
		t.Errorf("Pages = %d, want 2", page.Pages)
	}
	if len(page.Entries) != 0 {
		t.Errorf("expected no matches within 2 pages, got %v", messages(page.Entries))
	}
}

func TestFetchFiltered_CapWarning(t *testing.T) {
	tests := []struct {
		name     string
		maxPages int
		lines    int
		wantWarn bool
	}{
		// Entry 25 is the newest match, so five pages of one entry reach it
		// exactly on the last page allowed.
		{"satisfied on last page", 5, 1, false},
		{"file exhausted on last page", 1, 100, false},
		{"cap reached", 2, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			log := logging.NewWithOutput(&logs)
			log.SetLevel(logging.LevelWarn)

			p := New(&memSource{content: buildLog(30)}, Options{MaxPages: tt.maxPages, Logger: log})
			page, err := p.FetchFiltered(context.Background(), Request{Lines: tt.lines}, "needle")
			if err != nil {
				t.Fatalf("FetchFiltered() error = %v", err)
			}
			if page.Pages != tt.maxPages {
				t.Errorf("Pages = %d, want %d", page.Pages, tt.maxPages)
			}
			if got := strings.Contains(logs.String(), "stopped after"); got != tt.wantWarn {
				t.Errorf("warned = %v, want %v: %q", got, tt.wantWarn, logs.String())
			}
		})
	}
}

func TestFetchFiltered_OneHandle(t *testing.T) {
	p, src := newTestPaginator(buildLog(30))

	if _, err := p.FetchFiltered(context.Background(), Request{Lines: 6}, "needle"); err != nil {
		t.Fatalf("FetchFiltered() error = %v", err)
	}
	if src.opens != 1 || src.closes != 1 {
		t.Errorf("opens/closes = %d/%d, want 1/1", src.opens, src.closes)
	}
}

func TestFetchFiltered_SourceUnavailable(t *testing.T) {
	p := New(&memSource{err: errBoom}, Options{Logger: logging.NopLogger{}})

	page, err := p.FetchFiltered(context.Background(), Request{}, "needle")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("FetchFiltered() error = %v, want ErrSourceUnavailable", err)
	}
	if page == nil || len(page.Entries) != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
}
