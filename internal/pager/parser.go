package pager

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/jmurray2011/leaf/pkg/timeutil"
)

// Marker is the byte sequence that precedes every entry header except one
// sitting at the very start of a file. A marker only opens an entry when a
// full header follows it. Only years 2000-2099 are recognized; text such as
// "[1999-..." or "[3024-..." stays part of the previous entry.
const Marker = "\n[20"

// headerWindow is the longest an entry header can be: the bracketed
// timestamp, a space, and environment and level names of up to 48
// characters each.
const headerWindow = 120

// headerPattern matches an entry header at the start of a line.
// Groups: timestamp, environment, level.
var headerPattern = regexp.MustCompile(`(?m)^\[(20\d{2}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\] (\w{1,48})\.(\w{1,48}):`)

// headerPrefix is headerPattern anchored to the start of the input.
var headerPrefix = regexp.MustCompile(`\A\[20\d{2}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \w{1,48}\.\w{1,48}:`)

// isHeader reports whether b starts with an entry header. A line that
// starts with "[20" but is not a full header is a continuation line.
func isHeader(b []byte) bool {
	if len(b) > headerWindow {
		b = b[:headerWindow]
	}
	return headerPrefix.Match(b)
}

// exceptionPrefix starts the structured exception context Monolog appends to
// the header line.
const exceptionPrefix = `{"exception"`

// pathSeparators normalizes Windows and JSON-escaped separators. Longer
// sequences are listed first so they win over the single backslash.
var pathSeparators = strings.NewReplacer(`\\`, "/", `\/`, "/", `\`, "/")

// Parser splits raw page bytes into entries.
type Parser struct {
	// Root is the application root stripped from trace paths so traces
	// read the same on every host. Empty disables stripping.
	Root string
}

// NewParser returns a parser that strips root from trace paths.
func NewParser(root string) *Parser {
	return &Parser{Root: root}
}

// Parse splits raw into entries, newest first. Bytes before the first header
// are dropped; they belong to an entry cut off by the read. Text that does not
// look like a header is kept as part of the preceding entry.
func (p *Parser) Parse(raw []byte) []Entry {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	matches := headerPattern.FindAllSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(matches))
	for i, m := range matches {
		bodyEnd := len(raw)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		entries = append(entries, p.build(raw, m, bodyEnd))
	}

	// Reverse first so a stable sort keeps later-in-file entries ahead of
	// earlier ones that share a timestamp.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Time.IsZero() && !b.Time.IsZero() {
			return a.Time.After(b.Time)
		}
		return timeutil.CompareEntry(a.Timestamp, b.Timestamp) > 0
	})

	return entries
}

// build turns one header match and its body into an Entry.
func (p *Parser) build(raw []byte, m []int, bodyEnd int) Entry {
	entry := Entry{
		Timestamp:   string(raw[m[2]:m[3]]),
		Environment: string(raw[m[4]:m[5]]),
		Level:       string(raw[m[6]:m[7]]),
	}
	if ts, err := timeutil.ParseEntry(entry.Timestamp); err == nil {
		entry.Time = ts
	}

	body := string(raw[m[1]:bodyEnd])

	line, rest := body, ""
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		line, rest = body[:nl], body[nl+1:]
	}
	if idx := strings.Index(line, exceptionPrefix); idx >= 0 {
		rest = line[idx:] + "\n" + rest
		line = line[:idx]
	}

	entry.Message = strings.TrimSpace(line)
	entry.Trace = p.normalizeTrace(strings.TrimSpace(rest))
	return entry
}

// normalizeTrace rewrites path separators to "/" and strips the application
// root so traces are comparable across machines.
func (p *Parser) normalizeTrace(trace string) string {
	if trace == "" {
		return ""
	}
	trace = pathSeparators.Replace(trace)
	if root := p.rootPrefix(); root != "" {
		trace = strings.ReplaceAll(trace, root, "")
	}
	return trace
}

func (p *Parser) rootPrefix() string {
	if p.Root == "" {
		return ""
	}
	root := strings.TrimRight(pathSeparators.Replace(p.Root), "/")
	if root == "" {
		return ""
	}
	return root + "/"
}
