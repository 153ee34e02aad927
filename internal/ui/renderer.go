package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jmurray2011/leaf/internal/pager"
)

// Renderer handles all terminal output with consistent styling.
type Renderer struct {
	out       io.Writer
	err       io.Writer
	noColor   bool
	quiet     bool
	highlight *regexp.Regexp
}

// NewRenderer creates a new Renderer with default settings.
func NewRenderer() *Renderer {
	return &Renderer{
		out: os.Stdout,
		err: os.Stderr,
	}
}

// Option is a functional option for configuring the Renderer.
type Option func(*Renderer)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		r.out = w
	}
}

// WithError sets the error writer.
func WithError(w io.Writer) Option {
	return func(r *Renderer) {
		r.err = w
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) Option {
	return func(r *Renderer) {
		r.noColor = noColor
	}
}

// WithQuiet enables quiet mode (suppresses status messages).
func WithQuiet(quiet bool) Option {
	return func(r *Renderer) {
		r.quiet = quiet
	}
}

// WithHighlight highlights every literal, case-sensitive occurrence of
// keyword in rendered entries.
func WithHighlight(keyword string) Option {
	return func(r *Renderer) {
		if keyword != "" {
			r.highlight = regexp.MustCompile(regexp.QuoteMeta(keyword))
		}
	}
}

// NewRendererWithOptions creates a new Renderer with the given options.
func NewRendererWithOptions(opts ...Option) *Renderer {
	r := NewRenderer()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// render applies styling if color is enabled.
func (r *Renderer) render(style lipgloss.Style, text string) string {
	if r.noColor {
		return text
	}
	return style.Render(text)
}

// --- Status and Messages ---

// Status prints a status message (suppressed in quiet mode).
func (r *Renderer) Status(format string, args ...any) {
	if r.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(StatusStyle, msg))
}

// Info prints an informational message.
func (r *Renderer) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.out, msg)
}

// Success prints a success message.
func (r *Renderer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.out, r.render(SuccessStyle, msg))
}

// Warning prints a warning message.
func (r *Renderer) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(WarningStyle, "Warning: "+msg))
}

// Debug prints a debug message (only when verbose).
func (r *Renderer) Debug(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(MutedStyle, "[DEBUG] "+msg))
}

// --- Formatted Output ---

// Section prints a section title.
func (r *Renderer) Section(title string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.render(SectionTitleStyle, title))
}

// Newline prints a blank line.
func (r *Renderer) Newline() {
	fmt.Fprintln(r.out)
}

// --- Log Entry Rendering ---

// Entry renders one log entry: a header line, the message, and the trace
// indented beneath it.
func (r *Renderer) Entry(e pager.Entry) {
	ts := r.render(TimestampStyle, e.Timestamp)
	env := r.render(EnvStyle, e.Environment)
	level := r.render(LevelStyle(e.Level), fmt.Sprintf("%-9s", e.Level))

	fmt.Fprintf(r.out, "%s %s %s\n", ts, level, env)

	for _, line := range strings.Split(r.highlightText(e.Message), "\n") {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
	if e.HasTrace() {
		for _, line := range strings.Split(e.Trace, "\n") {
			fmt.Fprintf(r.out, "    %s\n", r.highlightTrace(line))
		}
	}
}

func (r *Renderer) highlightText(text string) string {
	if r.highlight == nil || r.noColor {
		return text
	}
	return r.highlight.ReplaceAllStringFunc(text, func(match string) string {
		return HighlightStyle.Render(match)
	})
}

// highlightTrace mutes a trace line, keeping keyword matches highlighted.
func (r *Renderer) highlightTrace(line string) string {
	if r.noColor {
		return line
	}
	if r.highlight == nil {
		return TraceStyle.Render(line)
	}
	var b strings.Builder
	last := 0
	for _, m := range r.highlight.FindAllStringIndex(line, -1) {
		b.WriteString(TraceStyle.Render(line[last:m[0]]))
		b.WriteString(HighlightStyle.Render(line[m[0]:m[1]]))
		last = m[1]
	}
	b.WriteString(TraceStyle.Render(line[last:]))
	return b.String()
}

// Cursor prints a labelled page cursor, e.g. "older: file:///x.log#-1234".
func (r *Renderer) Cursor(label, cursor string) {
	fmt.Fprintf(r.out, "%s %s\n", r.render(LabelStyle, label+":"), r.render(CursorStyle, cursor))
}

// --- Table Rendering ---

// Table renders a simple table.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header
	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = r.render(LabelStyle, fmt.Sprintf("%-*s", widths[i], h))
	}
	fmt.Fprintln(r.out, strings.Join(headerParts, "  "))

	// Print separator
	sepParts := make([]string, len(headers))
	for i, w := range widths {
		sepParts[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(r.out, r.render(MutedStyle, strings.Join(sepParts, "  ")))

	// Print rows
	for _, row := range rows {
		rowParts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rowParts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(r.out, strings.Join(rowParts, "  "))
	}
}

// NoResults prints a "no results" message.
func (r *Renderer) NoResults() {
	fmt.Fprintln(r.out, r.render(MutedStyle, "No entries found."))
}
