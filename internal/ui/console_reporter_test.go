package ui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitcheck/internal/repos/shared"
	"github.com/temirov/gitcheck/internal/ui"
)

func TestConsoleReporterWritesPlainLinesWithoutColor(testInstance *testing.T) {
	output := &bytes.Buffer{}
	reporter := ui.NewConsoleReporter(output, ui.ColorModeNever)

	reporter.Report(shared.SeverityInfo, "")
	reporter.Report(shared.SeverityHeading, "-- Checking directory: /workspace/repo --")
	reporter.Report(shared.SeveritySuccess, "    - BRANCH CLEAN -")
	reporter.Report(shared.SeverityError, "    -- BRANCH IS AHEAD REMOTE")

	require.Equal(testInstance, "\n-- Checking directory: /workspace/repo --\n    - BRANCH CLEAN -\n    -- BRANCH IS AHEAD REMOTE\n", output.String())
}

func TestConsoleReporterColorsBySeverity(testInstance *testing.T) {
	output := &bytes.Buffer{}
	reporter := ui.NewConsoleReporter(output, ui.ColorModeAlways)

	reporter.Report(shared.SeverityError, "    -- ERROR: Error in push:")

	rendered := output.String()
	require.Contains(testInstance, rendered, "\x1b[")
	require.Contains(testInstance, rendered, "-- ERROR: Error in push:")
	require.True(testInstance, strings.HasSuffix(rendered, "\n"))
}

func TestConsoleReporterAutoModeIsPlainForNonTerminals(testInstance *testing.T) {
	output := &bytes.Buffer{}
	reporter := ui.NewConsoleReporter(output, ui.ColorModeAuto)

	reporter.Report(shared.SeverityWarning, "-- WARNING: COMMIT MADE BRANCH DIVERGE FROM REMOTE")

	require.Equal(testInstance, "-- WARNING: COMMIT MADE BRANCH DIVERGE FROM REMOTE\n", output.String())
}

func TestParseColorMode(testInstance *testing.T) {
	testCases := []struct {
		name          string
		rawValue      string
		expectedMode  ui.ColorMode
		expectedError bool
	}{
		{name: "Empty", rawValue: "", expectedMode: ui.ColorModeAuto},
		{name: "Always", rawValue: "ALWAYS", expectedMode: ui.ColorModeAlways},
		{name: "Never", rawValue: " never ", expectedMode: ui.ColorModeNever},
		{name: "Unsupported", rawValue: "sometimes", expectedError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			mode, parseError := ui.ParseColorMode(testCase.rawValue)
			if testCase.expectedError {
				require.ErrorIs(testInstance, parseError, ui.ErrUnsupportedColorMode)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedMode, mode)
		})
	}
	require.Equal(testInstance, []string{"auto", "always", "never"}, ui.ColorModes())
}
