package pager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmurray2011/leaf/internal/logging"
	"github.com/jmurray2011/leaf/pkg/timeutil"
)

// memHandle serves a byte slice as a Handle.
type memHandle struct {
	*bytes.Reader
	closed *int32
}

func (h memHandle) Close() error {
	if h.closed != nil {
		atomic.AddInt32(h.closed, 1)
	}
	return nil
}

// memSource opens content from memory and counts opens and closes.
type memSource struct {
	content string
	opens   int32
	closes  int32
	err     error
}

func (m *memSource) Open(ctx context.Context) (Handle, error) {
	if m.err != nil {
		return nil, m.err
	}
	atomic.AddInt32(&m.opens, 1)
	return memHandle{Reader: bytes.NewReader([]byte(m.content)), closed: &m.closes}, nil
}

func newTestPaginator(content string) (*Paginator, *memSource) {
	src := &memSource{content: content}
	return New(src, Options{Logger: logging.NopLogger{}}), src
}

var errBoom = errors.New("boom")

// continuationEntries has a middle entry whose trace lines start with "[20".
const continuationEntries = "[2024-01-01 00:00:00] local.INFO: first\n" +
	"[2024-01-01 00:00:01] local.ERROR: second\n" +
	"[2023 budget] continuation that is not a header\n" +
	"more continuation\n" +
	"[2024-01-01 00:00:02] local.INFO: third\n"

// threeEntries is the smallest file with distinct, one-line entries.
const threeEntries = "[2024-01-01 00:00:00] local.INFO: first\n" +
	"[2024-01-01 00:00:01] local.INFO: second\n" +
	"[2024-01-01 00:00:02] local.INFO: third\n"

// buildLog renders n entries one second apart. Every third entry carries a
// multi-line trace, every fifth mentions "needle", and every seventh has
// continuation lines that start like a header but are not one.
func buildLog(n int) string {
	base := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	levels := []string{"INFO", "ERROR", "DEBUG", "WARNING"}

	var b strings.Builder
	for i := 0; i < n; i++ {
		ts := timeutil.FormatEntry(base.Add(time.Duration(i) * time.Second))
		msg := fmt.Sprintf("message %03d", i)
		if i%5 == 0 {
			msg += " needle"
		}
		fmt.Fprintf(&b, "[%s] production.%s: %s", ts, levels[i%len(levels)], msg)
		if i%3 == 0 {
			fmt.Fprintf(&b, " {\"exception\":\"[object] (RuntimeException(code: %d): failed at /var/www/app/Job.php:%d)\"}\n", i, i)
			b.WriteString("[stacktrace]\n")
			fmt.Fprintf(&b, "#0 /var/www/app/Worker.php(%d): run()\n", i)
			b.WriteString("#1 {main}\n")
		} else {
			b.WriteString("\n")
		}
		if i%7 == 4 {
			b.WriteString("[2024 budget] retry window\n")
			fmt.Fprintf(&b, "[%s] retrying\n", ts)
		}
	}
	return b.String()
}

// messages extracts entry messages in order.
func messages(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

// allNewestFirst parses the whole content in one go.
func allNewestFirst(content string) []string {
	return messages(NewParser("").Parse([]byte(content)))
}
