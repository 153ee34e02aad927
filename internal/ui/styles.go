package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - using ANSI 256 colors for broad terminal support
var (
	ColorCyan    = lipgloss.Color("6")
	ColorYellow  = lipgloss.Color("3")
	ColorRed     = lipgloss.Color("1")
	ColorGreen   = lipgloss.Color("2")
	ColorBlue    = lipgloss.Color("4")
	ColorMagenta = lipgloss.Color("5")
	ColorGray    = lipgloss.Color("8")
	ColorBlack   = lipgloss.Color("0")
)

// Text styles
var (
	// Timestamps in log output
	TimestampStyle = lipgloss.NewStyle().Foreground(ColorCyan)

	// Environment names (production, local)
	EnvStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// Status messages ("Reading page...", "Following...")
	StatusStyle = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	// Warning messages
	WarningStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// Success messages
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	// Muted/secondary text
	MutedStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// Highlighted/matched text
	HighlightStyle = lipgloss.NewStyle().
			Background(ColorYellow).
			Foreground(ColorBlack).
			Bold(true)

	// Labels (field names, headers)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// Stack traces under an entry
	TraceStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// Page cursors ("prev: file:///...#-1234")
	CursorStyle = lipgloss.NewStyle().Foreground(ColorMagenta)
)

// Level styles, most to least severe.
var levelStyles = map[string]lipgloss.Style{
	"EMERGENCY": lipgloss.NewStyle().Background(ColorRed).Foreground(ColorBlack).Bold(true),
	"ALERT":     lipgloss.NewStyle().Foreground(ColorRed).Bold(true),
	"CRITICAL":  lipgloss.NewStyle().Foreground(ColorRed).Bold(true),
	"ERROR":     lipgloss.NewStyle().Foreground(ColorRed),
	"WARNING":   lipgloss.NewStyle().Foreground(ColorYellow),
	"NOTICE":    lipgloss.NewStyle().Foreground(ColorCyan),
	"INFO":      lipgloss.NewStyle().Foreground(ColorBlue),
	"DEBUG":     lipgloss.NewStyle().Foreground(ColorGray),
}

// LevelStyle returns the style for a severity. Unknown levels are unstyled.
func LevelStyle(level string) lipgloss.Style {
	if s, ok := levelStyles[level]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// Box styles for sections
var (
	SectionTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorCyan).
		MarginBottom(1)
)
