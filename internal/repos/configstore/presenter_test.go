package configstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitcheck/internal/repos/shared"
)

type presentedLine struct {
	severity shared.Severity
	message  string
}

type capturingReporter struct {
	lines []presentedLine
}

func (reporter *capturingReporter) Report(severity shared.Severity, message string) {
	reporter.lines = append(reporter.lines, presentedLine{severity: severity, message: message})
}

func (reporter *capturingReporter) messages() []string {
	messages := make([]string, 0, len(reporter.lines))
	for _, line := range reporter.lines {
		messages = append(messages, line.message)
	}
	return messages
}

func TestPresenterListNames(testInstance *testing.T) {
	testCases := []struct {
		name             string
		names            []string
		expectedMessages []string
	}{
		{
			name:             "empty_store",
			names:            nil,
			expectedMessages: []string{"", "There are no saved configurations."},
		},
		{
			name:             "names",
			names:            []string{"home", "work"},
			expectedMessages: []string{"", "Configurations:", "    home", "    work"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			reporter := &capturingReporter{}
			NewPresenter(reporter).ListNames(testCase.names)
			require.Equal(testInstance, testCase.expectedMessages, reporter.messages())
		})
	}
}

func TestPresenterListEntriesSkipsEmptyKinds(testInstance *testing.T) {
	reporter := &capturingReporter{}
	entries := map[string]Entry{
		"work": {Repositories: []string{"/src/alpha"}, Ignore: []string{"/src/vendor", "/src/tmp"}},
	}

	NewPresenter(reporter).ListEntries(entries, []string{"work"})

	require.Equal(testInstance, []string{
		"",
		"Configurations:",
		"",
		"    work",
		"",
		"        Repositories:",
		"            /src/alpha",
		"",
		"        Ignore directories:",
		"            /src/vendor",
		"            /src/tmp",
	}, reporter.messages())
}

func TestPresenterPurge(testInstance *testing.T) {
	testInstance.Run("nothing", func(testInstance *testing.T) {
		reporter := &capturingReporter{}
		NewPresenter(reporter).Purge(PurgeReport{})
		require.Equal(testInstance, []string{"Nothing to purge"}, reporter.messages())
	})

	testInstance.Run("changes", func(testInstance *testing.T) {
		reporter := &capturingReporter{}
		NewPresenter(reporter).Purge(PurgeReport{
			PurgedDirectories:     []PurgedDirectory{{Configuration: "old", Kind: KindSearch, Directory: "/gone"}},
			DeletedConfigurations: []string{"old"},
		})

		require.Equal(testInstance, []string{
			"Purging: old > search > /gone",
			"",
			"The following configurations do not hold valid directories anymore and will be deleted:",
			"    old",
			"",
			"-- Purge complete --",
		}, reporter.messages())
		require.Equal(testInstance, shared.SeverityWarning, reporter.lines[2].severity)
		require.Equal(testInstance, shared.SeveritySuccess, reporter.lines[5].severity)
	})
}
