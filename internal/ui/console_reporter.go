package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/temirov/gitcheck/internal/repos/shared"
	"github.com/temirov/gitcheck/internal/utils"
)

// ColorMode selects when report lines are coloured.
type ColorMode string

// Supported colour modes.
const (
	ColorModeAuto   ColorMode = "auto"
	ColorModeAlways ColorMode = "always"
	ColorModeNever  ColorMode = "never"
)

const (
	errorColorConstant               = lipgloss.Color("9")
	successColorConstant             = lipgloss.Color("10")
	warningColorConstant             = lipgloss.Color("11")
	reportLineFormatConstant         = "%s\n"
	unsupportedColorTemplateConstant = "%w: %q"
)

// ErrUnsupportedColorMode indicates a colour mode outside auto, always and never.
var ErrUnsupportedColorMode = errors.New("unsupported color mode")

// ColorModes lists the accepted colour mode values.
func ColorModes() []string {
	return []string{string(ColorModeAuto), string(ColorModeAlways), string(ColorModeNever)}
}

// ParseColorMode validates a colour mode value.
func ParseColorMode(rawValue string) (ColorMode, error) {
	normalized := ColorMode(strings.ToLower(strings.TrimSpace(rawValue)))
	switch normalized {
	case ColorModeAuto, ColorModeAlways, ColorModeNever:
		return normalized, nil
	case "":
		return ColorModeAuto, nil
	default:
		return "", fmt.Errorf(unsupportedColorTemplateConstant, ErrUnsupportedColorMode, rawValue)
	}
}

// ConsoleReporter renders report lines with a colour per severity.
type ConsoleReporter struct {
	writer io.Writer
	styles map[shared.Severity]lipgloss.Style
	mutex  sync.Mutex
}

// NewConsoleReporter constructs a reporter writing to writer. In auto mode colours are
// used only when writer is a terminal.
func NewConsoleReporter(writer io.Writer, colorMode ColorMode) *ConsoleReporter {
	renderer := lipgloss.NewRenderer(writer)
	switch colorMode {
	case ColorModeAlways:
		renderer.SetColorProfile(termenv.ANSI)
	case ColorModeNever:
		renderer.SetColorProfile(termenv.Ascii)
	}

	plainStyle := renderer.NewStyle()
	return &ConsoleReporter{
		writer: utils.NewFlushingWriter(writer),
		styles: map[shared.Severity]lipgloss.Style{
			shared.SeverityInfo:    plainStyle,
			shared.SeverityHeading: plainStyle,
			shared.SeveritySuccess: renderer.NewStyle().Foreground(successColorConstant),
			shared.SeverityWarning: renderer.NewStyle().Foreground(warningColorConstant),
			shared.SeverityError:   renderer.NewStyle().Foreground(errorColorConstant),
		},
	}
}

// Report writes one line styled for its severity.
func (reporter *ConsoleReporter) Report(severity shared.Severity, message string) {
	style, known := reporter.styles[severity]
	if !known {
		style = reporter.styles[shared.SeverityInfo]
	}
	rendered := message
	if len(strings.TrimSpace(message)) > 0 {
		rendered = style.Render(message)
	}

	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintf(reporter.writer, reportLineFormatConstant, rendered)
}
