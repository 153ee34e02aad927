package output

import (
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/jmurray2011/leaf/internal/ui"
	"github.com/mattn/go-isatty"
)

// Format specifies the output format type.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Formats lists the accepted --output values.
var Formats = []string{string(FormatText), string(FormatJSON), string(FormatCSV)}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatText, FormatJSON, FormatCSV:
		return true
	}
	return false
}

// Formatter handles output formatting for different formats.
type Formatter struct {
	format  Format
	writer  io.Writer
	keyword string
	noColor bool
}

// NewFormatter creates a new formatter with the specified format. Colors are
// on only when writer is a terminal.
func NewFormatter(format string, writer io.Writer) *Formatter {
	return &Formatter{
		format:  Format(format),
		writer:  writer,
		noColor: !isTerminal(writer),
	}
}

// WithHighlight highlights literal occurrences of keyword in text output.
func (f *Formatter) WithHighlight(keyword string) *Formatter {
	f.keyword = keyword
	return f
}

// WithColor forces colors on or off.
func (f *Formatter) WithColor(color bool) *Formatter {
	f.noColor = !color
	return f
}

func (f *Formatter) renderer() *ui.Renderer {
	return ui.NewRendererWithOptions(
		ui.WithOutput(f.writer),
		ui.WithNoColor(f.noColor),
		ui.WithHighlight(f.keyword),
	)
}

func (f *Formatter) encodeJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && isatty.IsTerminal(file.Fd())
}
