package shared

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	reportIndentConstant  = "    "
	lineSeparatorConstant = "\n"
)

// Severity classifies a report line for rendering.
type Severity int

// Severity values understood by report sinks.
const (
	SeverityInfo Severity = iota
	SeverityHeading
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// Reporter receives user-facing report lines.
type Reporter interface {
	Report(severity Severity, message string)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes undecorated lines to the provided io.Writer.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: writer}
}

func (reporter writerReporter) Report(_ Severity, message string) {
	fmt.Fprintln(reporter.writer, message)
}

// ReportIndented reports every line of text with the per-directory indentation.
// Trailing blank lines are dropped and blank text reports nothing.
func ReportIndented(reporter Reporter, severity Severity, text string) {
	if reporter == nil {
		return
	}
	trimmedText := strings.TrimRight(text, "\r\n")
	if len(strings.TrimSpace(trimmedText)) == 0 {
		return
	}
	for _, line := range strings.Split(trimmedText, lineSeparatorConstant) {
		reporter.Report(severity, reportIndentConstant+strings.TrimRight(line, "\r"))
	}
}
