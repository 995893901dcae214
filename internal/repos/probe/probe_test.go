package probe

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitcheck/internal/execshell"
	"github.com/temirov/gitcheck/internal/repos/shared"
)

const (
	repositoryCheckOutputConstant = "true\n"
	notRepositoryOutputConstant   = "fatal: not a git repository (or any of the parent directories): .git\n"
	branchNameOutputConstant      = "main\n"
	trackingListingConstant       = "* main 4d5e6f7 [origin/main] initial\n"
	cleanStatusOutputConstant     = "On branch main\nYour branch is up to date with 'origin/main'.\n\nnothing to commit, working tree clean\n"
	behindStatusOutputConstant    = "On branch main\nYour branch is behind 'origin/main' by 1 commit, and can be fast-forwarded.\n\nnothing to commit, working tree clean\n"
	detachedHeadOutputConstant    = "fatal: ref HEAD is not a symbolic ref\n"
)

type scriptedResponse struct {
	result        execshell.ExecutionResult
	executionFail error
}

type scriptedGitExecutor struct {
	responses        map[string]scriptedResponse
	recordedCommands []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	response, exists := executor.responses[details.Arguments[0]]
	if !exists {
		return execshell.ExecutionResult{}, nil
	}
	if response.executionFail != nil {
		return execshell.ExecutionResult{}, response.executionFail
	}
	if response.result.ExitCode != 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  response.result,
		}
	}
	return response.result, nil
}

func (executor *scriptedGitExecutor) subcommands() []string {
	subcommands := make([]string, 0, len(executor.recordedCommands))
	for _, details := range executor.recordedCommands {
		subcommands = append(subcommands, details.Arguments[0])
	}
	return subcommands
}

type reportedLine struct {
	severity shared.Severity
	message  string
}

type recordingReporter struct {
	lines []reportedLine
}

func (reporter *recordingReporter) Report(severity shared.Severity, message string) {
	reporter.lines = append(reporter.lines, reportedLine{severity: severity, message: message})
}

func (reporter *recordingReporter) messages() []string {
	messages := make([]string, 0, len(reporter.lines))
	for _, line := range reporter.lines {
		messages = append(messages, strings.TrimSpace(line.message))
	}
	return messages
}

func trackingRepositoryResponses(statusOutput string) map[string]scriptedResponse {
	return map[string]scriptedResponse{
		"rev-parse":    {result: execshell.ExecutionResult{StandardOutput: repositoryCheckOutputConstant}},
		"symbolic-ref": {result: execshell.ExecutionResult{StandardOutput: branchNameOutputConstant}},
		"branch":       {result: execshell.ExecutionResult{StandardOutput: trackingListingConstant}},
		"fetch":        {result: execshell.ExecutionResult{StandardOutput: "Fetching origin\n", StandardError: "From /srv/origin\n = [up to date]      main       -> origin/main\n"}},
		"status":       {result: execshell.ExecutionResult{StandardOutput: statusOutput}},
	}
}

func newTestProber(testInstance *testing.T, executor shared.GitExecutor, reporter shared.Reporter) *Prober {
	testInstance.Helper()
	prober, creationError := NewProber(Dependencies{GitExecutor: executor, Reporter: reporter})
	require.NoError(testInstance, creationError)
	return prober
}

func testDirectory(testInstance *testing.T) shared.Directory {
	testInstance.Helper()
	directory, directoryError := shared.NewDirectory(testInstance.TempDir())
	require.NoError(testInstance, directoryError)
	return directory
}

func TestNewProberValidatesDependencies(testInstance *testing.T) {
	_, missingExecutorError := NewProber(Dependencies{Reporter: &recordingReporter{}})
	require.ErrorIs(testInstance, missingExecutorError, ErrGitExecutorNotConfigured)

	_, missingReporterError := NewProber(Dependencies{GitExecutor: &scriptedGitExecutor{}})
	require.ErrorIs(testInstance, missingReporterError, ErrReporterNotConfigured)
}

func TestProbeTrackingRepository(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: trackingRepositoryResponses(behindStatusOutputConstant)}
	reporter := &recordingReporter{}
	prober := newTestProber(testInstance, executor, reporter)

	state, probeError := prober.Probe(context.Background(), testDirectory(testInstance), shared.DefaultOperationRequest())
	require.NoError(testInstance, probeError)

	require.True(testInstance, state.IsRepository)
	require.True(testInstance, state.HasUpstream)
	require.Equal(testInstance, "main", state.LocalBranchName)
	require.Equal(testInstance, "origin/main", state.RemoteBranchName)
	require.False(testInstance, state.FetchFailed)
	require.True(testInstance, state.StatusKnown)
	require.True(testInstance, state.IsClean)
	require.True(testInstance, state.IsBehind())
	require.False(testInstance, state.IsAhead())
	require.False(testInstance, state.HasDiverged())

	require.Equal(testInstance, []string{"rev-parse", "symbolic-ref", "branch", "fetch", "status"}, executor.subcommands())
	require.Equal(testInstance, []string{"- BRANCH: main -> origin/main -", "- REMOTE UP TO DATE -"}, reporter.messages())
	for _, details := range executor.recordedCommands {
		require.Equal(testInstance, "0", details.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
	}
}

func TestProbeRunsExpectedFetchCommand(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: trackingRepositoryResponses(cleanStatusOutputConstant)}
	prober := newTestProber(testInstance, executor, &recordingReporter{})
	directory := testDirectory(testInstance)

	_, probeError := prober.Probe(context.Background(), directory, shared.DefaultOperationRequest())
	require.NoError(testInstance, probeError)

	require.Equal(testInstance, []string{"fetch", "--all", "--prune", "--verbose"}, executor.recordedCommands[3].Arguments)
	require.Equal(testInstance, directory.String(), executor.recordedCommands[3].WorkingDirectory)
}

func TestProbeSkipsStatusWhenNotRequested(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: trackingRepositoryResponses(cleanStatusOutputConstant)}
	prober := newTestProber(testInstance, executor, &recordingReporter{})

	state, probeError := prober.Probe(context.Background(), testDirectory(testInstance), shared.OperationRequest{})
	require.NoError(testInstance, probeError)
	require.False(testInstance, state.StatusKnown)
	require.NotContains(testInstance, executor.subcommands(), "status")
}

func TestProbeStatusForcedByMutatingRequest(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: trackingRepositoryResponses(cleanStatusOutputConstant)}
	prober := newTestProber(testInstance, executor, &recordingReporter{})

	state, probeError := prober.Probe(context.Background(), testDirectory(testInstance), shared.OperationRequest{DoPull: true})
	require.NoError(testInstance, probeError)
	require.True(testInstance, state.StatusKnown)
	require.Contains(testInstance, executor.subcommands(), "status")
}

func TestProbeNotARepository(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"rev-parse": {result: execshell.ExecutionResult{StandardError: notRepositoryOutputConstant, ExitCode: 128}},
	}}
	reporter := &recordingReporter{}
	prober := newTestProber(testInstance, executor, reporter)

	state, probeError := prober.Probe(context.Background(), testDirectory(testInstance), shared.DefaultOperationRequest())
	require.NoError(testInstance, probeError)
	require.False(testInstance, state.IsRepository)
	require.Equal(testInstance, []string{"rev-parse"}, executor.subcommands())
	require.Equal(testInstance, []string{"- NOT A GIT REPOSITORY -"}, reporter.messages())
}

func TestProbeFetchOutcomes(testInstance *testing.T) {
	testCases := []struct {
		name                string
		fetchResult         execshell.ExecutionResult
		expectedFailed      bool
		expectedUnreachable bool
		expectedMessages    []string
	}{
		{
			name:             "NoRemote",
			fetchResult:      execshell.ExecutionResult{},
			expectedMessages: []string{"- NO REMOTE CONFIGURED -"},
		},
		{
			name:                "Unreachable",
			fetchResult:         execshell.ExecutionResult{StandardError: "fatal: Could not read from remote repository.\n", ExitCode: 128},
			expectedFailed:      true,
			expectedUnreachable: true,
			expectedMessages:    []string{"-- ERROR: Remote repository could not be reached."},
		},
		{
			name:             "Unknown",
			fetchResult:      execshell.ExecutionResult{StandardError: "fatal: bad object\n", ExitCode: 128},
			expectedFailed:   true,
			expectedMessages: []string{"-- ERROR: Unknown error in fetch:", "fatal: bad object"},
		},
		{
			name:             "Updated",
			fetchResult:      execshell.ExecutionResult{StandardError: "From /srv/origin\n   1a2b3c4..5d6e7f8  main       -> origin/main\n"},
			expectedMessages: []string{"1a2b3c4..5d6e7f8  main       -> origin/main"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			responses := trackingRepositoryResponses(cleanStatusOutputConstant)
			responses["fetch"] = scriptedResponse{result: testCase.fetchResult}
			executor := &scriptedGitExecutor{responses: responses}
			reporter := &recordingReporter{}
			prober := newTestProber(testInstance, executor, reporter)

			state, probeError := prober.Probe(context.Background(), testDirectory(testInstance), shared.OperationRequest{})
			require.NoError(testInstance, probeError)
			require.Equal(testInstance, testCase.expectedFailed, state.FetchFailed)
			require.Equal(testInstance, testCase.expectedUnreachable, state.FetchUnreachable)
			require.Equal(testInstance, testCase.expectedMessages, reporter.messages()[1:])
		})
	}
}

func TestProbeDetachedHead(testInstance *testing.T) {
	responses := trackingRepositoryResponses(cleanStatusOutputConstant)
	responses["symbolic-ref"] = scriptedResponse{result: execshell.ExecutionResult{StandardError: detachedHeadOutputConstant, ExitCode: 128}}
	executor := &scriptedGitExecutor{responses: responses}
	reporter := &recordingReporter{}
	prober := newTestProber(testInstance, executor, reporter)

	state, probeError := prober.Probe(context.Background(), testDirectory(testInstance), shared.DefaultOperationRequest())
	require.NoError(testInstance, probeError)
	require.True(testInstance, state.IsRepository)
	require.False(testInstance, state.HasUpstream)
	require.Empty(testInstance, state.LocalBranchName)
	require.NotContains(testInstance, executor.subcommands(), "branch")
	require.Equal(testInstance, "-- NO UPSTREAM BRANCH CONFIGURED", reporter.messages()[0])
}

func TestProbeMissingDirectory(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	prober := newTestProber(testInstance, executor, &recordingReporter{})
	missingDirectory := shared.Directory(filepath.Join(testInstance.TempDir(), "vanished"))

	_, probeError := prober.Probe(context.Background(), missingDirectory, shared.DefaultOperationRequest())
	require.ErrorIs(testInstance, probeError, ErrDirectoryUnavailable)
	require.Empty(testInstance, executor.recordedCommands)
}

func TestProbeProcessStartFailure(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"rev-parse": {executionFail: execshell.CommandExecutionError{Cause: errors.New("permission denied")}},
	}}
	prober := newTestProber(testInstance, executor, &recordingReporter{})

	_, probeError := prober.Probe(context.Background(), testDirectory(testInstance), shared.DefaultOperationRequest())
	require.ErrorIs(testInstance, probeError, ErrDirectoryUnavailable)
}

func TestProbeReturnsCancellation(testInstance *testing.T) {
	executionContext, cancel := context.WithCancel(context.Background())
	cancel()
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"rev-parse": {executionFail: execshell.CommandExecutionError{Cause: context.Canceled}},
	}}
	prober := newTestProber(testInstance, executor, &recordingReporter{})

	_, probeError := prober.Probe(executionContext, testDirectory(testInstance), shared.DefaultOperationRequest())
	require.ErrorIs(testInstance, probeError, context.Canceled)
	require.NotErrorIs(testInstance, probeError, ErrDirectoryUnavailable)
}

func TestProbeLogsState(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zap.DebugLevel)
	executor := &scriptedGitExecutor{responses: trackingRepositoryResponses(cleanStatusOutputConstant)}
	prober, creationError := NewProber(Dependencies{GitExecutor: executor, Reporter: &recordingReporter{}, Logger: zap.New(observedCore)})
	require.NoError(testInstance, creationError)

	_, probeError := prober.Probe(context.Background(), testDirectory(testInstance), shared.DefaultOperationRequest())
	require.NoError(testInstance, probeError)

	entries := observedLogs.FilterMessage("directory probed").All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "origin/main", entries[0].ContextMap()["upstream"])
}
