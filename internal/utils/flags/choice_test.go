package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "console",
			choices:        []string{"console", "structured"},
			description:    "Logger output format.",
			expectedOutput: "`<CONSOLE|structured>` Logger output format.",
		},
		{
			name:           "DefaultSecondChoice",
			defaultChoice:  "all",
			choices:        []string{"n", "all"},
			description:    "Depth of the recursive search.",
			expectedOutput: "`<n|ALL>` Depth of the recursive search.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "error",
			choices:        []string{"debug", "info", "warn", "error"},
			description:    "",
			expectedOutput: "`<debug|info|warn|ERROR>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "n",
			choices:        []string{"n", "N", "all", "all"},
			description:    "Depth.",
			expectedOutput: "`<N|all>` Depth.",
		},
		{
			name:           "WhitespaceTrimmed",
			defaultChoice:  "info",
			choices:        []string{" info ", " debug "},
			description:    "Log level.",
			expectedOutput: "`<INFO|debug>` Log level.",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			actual := FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(t, testCase.expectedOutput, actual)
		})
	}
}
