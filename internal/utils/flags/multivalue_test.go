package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestNormalizeArgumentsExpandsMultiValueFlags(t *testing.T) {
	testCases := []struct {
		name             string
		arguments        []string
		expectedRepos    []string
		expectedIgnores  []string
		expectedToggle   bool
		expectedArgument []string
	}{
		{
			name:          "SeveralValues",
			arguments:     []string{"--mv-repo", "alpha", "beta"},
			expectedRepos: []string{"alpha", "beta"},
		},
		{
			name:          "Shorthand",
			arguments:     []string{"-m", "alpha", "--mv-repo", "beta"},
			expectedRepos: []string{"alpha", "beta"},
		},
		{
			name:          "InlineValue",
			arguments:     []string{"--mv-repo=alpha"},
			expectedRepos: []string{"alpha"},
		},
		{
			name:            "FollowedByOtherFlags",
			arguments:       []string{"--mv-repo", "alpha", "--mv-toggle", "--mv-ignore", "beta", "gamma"},
			expectedRepos:   []string{"alpha"},
			expectedIgnores: []string{"beta", "gamma"},
			expectedToggle:  true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var repositories []string
			var ignores []string
			var toggleValue bool
			AddMultiValueFlag(command.Flags(), &repositories, "mv-repo", "m", "Repositories")
			AddMultiValueFlag(command.Flags(), &ignores, "mv-ignore", "", "Ignores")
			AddToggleFlag(command.Flags(), &toggleValue, "mv-toggle", "", false, "Toggle")

			normalizedArguments, normalizeError := NormalizeArguments(testCase.arguments)
			require.NoError(t, normalizeError)
			require.NoError(t, command.ParseFlags(normalizedArguments))

			require.Equal(t, testCase.expectedRepos, repositories)
			if testCase.expectedIgnores == nil {
				require.Empty(t, ignores)
			} else {
				require.Equal(t, testCase.expectedIgnores, ignores)
			}
			require.Equal(t, testCase.expectedToggle, toggleValue)
		})
	}
}

func TestNormalizeArgumentsReportsMissingValues(t *testing.T) {
	command := &cobra.Command{}

	var searches []string
	AddMultiValueFlag(command.Flags(), &searches, "mv-search", "", "Search roots")

	_, normalizeError := NormalizeArguments([]string{"--mv-search", "--other"})
	require.Error(t, normalizeError)
	require.Equal(t, MissingArgumentError{FlagName: "--mv-search"}, normalizeError)
	require.Equal(t, "Missing argument for --mv-search", normalizeError.Error())

	_, trailingError := NormalizeArguments([]string{"--mv-search"})
	require.Error(t, trailingError)
}
