package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesGitCommands(t *testing.T) {
	formatter := CommandMessageFormatter{}

	testCases := []struct {
		name            string
		command         ShellCommand
		build           func(command ShellCommand) string
		expectedMessage string
	}{
		{
			name:            "fetch_start",
			command:         ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"fetch", "--all", "--prune", "--verbose"}, WorkingDirectory: "/workspace/repo"}},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Fetching from all remotes in /workspace/repo",
		},
		{
			name:            "status_success_without_directory",
			command:         ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"status"}}},
			build:           formatter.BuildSuccessMessage,
			expectedMessage: "Collected working tree status for current directory",
		},
		{
			name:    "push_failure",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"push"}, WorkingDirectory: "/workspace/repo"}},
			build: func(command ShellCommand) string {
				return formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "error: failed to push some refs\nhint: pull first"})
			},
			expectedMessage: "Failed to push current branch from /workspace/repo (exit code 1: error: failed to push some refs)",
		},
		{
			name:            "commit_start",
			command:         ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"commit", "-m", "[Automatic commit]"}, WorkingDirectory: "/workspace/repo"}},
			build:           formatter.BuildStartedMessage,
			expectedMessage: "Creating commit in /workspace/repo with message \"[Automatic commit]\"",
		},
		{
			name:    "unknown_subcommand_execution_failure",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"gc"}, WorkingDirectory: "/workspace/repo"}},
			build: func(command ShellCommand) string {
				return formatter.BuildExecutionFailureMessage(command, errors.New("signal: killed"))
			},
			expectedMessage: "git gc (in /workspace/repo) failed: signal: killed",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedMessage, testCase.build(testCase.command))
		})
	}
}
