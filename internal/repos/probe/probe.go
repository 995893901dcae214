package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitcheck/internal/execshell"
	"github.com/temirov/gitcheck/internal/repos/dependencies"
	"github.com/temirov/gitcheck/internal/repos/shared"
)

const (
	gitRevParseSubcommandConstant            = "rev-parse"
	gitInsideWorkTreeFlagConstant            = "--is-inside-work-tree"
	gitSymbolicRefSubcommandConstant         = "symbolic-ref"
	gitShortFlagConstant                     = "--short"
	gitHeadReferenceConstant                 = "HEAD"
	gitBranchSubcommandConstant              = "branch"
	gitDoubleVerboseFlagConstant             = "-vv"
	gitFetchSubcommandConstant               = "fetch"
	gitAllFlagConstant                       = "--all"
	gitPruneFlagConstant                     = "--prune"
	gitVerboseFlagConstant                   = "--verbose"
	gitStatusSubcommandConstant              = "status"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant   = "0"
	notRepositoryReportConstant              = "- NOT A GIT REPOSITORY -"
	noRemoteReportConstant                   = "- NO REMOTE CONFIGURED -"
	remoteUnreachableReportConstant          = "-- ERROR: Remote repository could not be reached."
	unknownFetchErrorReportConstant          = "-- ERROR: Unknown error in fetch:"
	remoteUpToDateReportConstant             = "- REMOTE UP TO DATE -"
	trackingBranchReportTemplateConstant     = "- BRANCH: %s -> %s -"
	noUpstreamReportConstant                 = "-- NO UPSTREAM BRANCH CONFIGURED"
	directoryUnavailableTemplateConstant     = "%w: %s: %v"
	notDirectoryCauseConstant                = "not a directory"
	probeCompletedLogMessageConstant         = "directory probed"
	directoryFieldNameConstant               = "directory"
	repositoryFieldNameConstant              = "is_repository"
	localBranchFieldNameConstant             = "local_branch"
	upstreamFieldNameConstant                = "upstream"
	fetchFailedFieldNameConstant             = "fetch_failed"
	divergenceFieldNameConstant              = "divergence"
	cleanFieldNameConstant                   = "clean"
	gitExecutorMissingMessageConstant        = "probe: git executor not configured"
	reporterMissingMessageConstant           = "probe: reporter not configured"
	directoryUnavailableMessageConstant      = "could not check directory"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrReporterNotConfigured indicates the reporter dependency was missing.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// ErrDirectoryUnavailable indicates a directory that vanished, is unreadable, or cannot host a git process.
var ErrDirectoryUnavailable = errors.New(directoryUnavailableMessageConstant)

// Dependencies enumerates the collaborators of a Prober.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Reporter    shared.Reporter
	Logger      *zap.Logger
}

// Prober derives the BranchState of a directory from git's textual output.
type Prober struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
	reporter   shared.Reporter
	logger     *zap.Logger
}

// NewProber validates dependencies and constructs a Prober.
func NewProber(dependencySet Dependencies) (*Prober, error) {
	if dependencySet.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencySet.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	return &Prober{
		executor:   dependencySet.GitExecutor,
		fileSystem: dependencies.ResolveFileSystem(dependencySet.FileSystem),
		reporter:   dependencySet.Reporter,
		logger:     dependencies.ResolveLogger(dependencySet.Logger),
	}, nil
}

// Probe checks repository-ness, branch identity, fetch result and, when the request needs it,
// working tree status. Progress is reported as it is learned.
func (prober *Prober) Probe(executionContext context.Context, directory shared.Directory, request shared.OperationRequest) (shared.BranchState, error) {
	directoryInfo, statError := prober.fileSystem.Stat(directory.String())
	if statError != nil {
		return shared.BranchState{}, fmt.Errorf(directoryUnavailableTemplateConstant, ErrDirectoryUnavailable, directory, statError)
	}
	if !directoryInfo.IsDir() {
		return shared.BranchState{}, fmt.Errorf(directoryUnavailableTemplateConstant, ErrDirectoryUnavailable, directory, notDirectoryCauseConstant)
	}

	repositoryCheck, repositoryCheckError := prober.runGit(executionContext, directory, gitRevParseSubcommandConstant, gitInsideWorkTreeFlagConstant)
	if repositoryCheckError != nil {
		return shared.BranchState{}, repositoryCheckError
	}
	if !IsRepositoryOutput(repositoryCheck.CombinedOutput()) {
		prober.report(shared.SeverityInfo, notRepositoryReportConstant)
		prober.logState(directory, shared.BranchState{})
		return shared.BranchState{}, nil
	}

	state := shared.BranchState{IsRepository: true}

	if identityError := prober.resolveBranchIdentity(executionContext, directory, &state); identityError != nil {
		return shared.BranchState{}, identityError
	}

	if fetchError := prober.fetch(executionContext, directory, &state); fetchError != nil {
		return shared.BranchState{}, fetchError
	}

	if request.StatusRequired() {
		statusResult, statusError := prober.runGit(executionContext, directory, gitStatusSubcommandConstant)
		if statusError != nil {
			return shared.BranchState{}, statusError
		}
		state.StatusKnown = true
		state.StatusOutput = statusResult.CombinedOutput()
		state.IsClean, state.Divergence = ClassifyStatus(state.StatusOutput)
	}

	prober.logState(directory, state)
	return state, nil
}

func (prober *Prober) resolveBranchIdentity(executionContext context.Context, directory shared.Directory, state *shared.BranchState) error {
	symbolicReference, symbolicReferenceError := prober.runGit(executionContext, directory, gitSymbolicRefSubcommandConstant, gitShortFlagConstant, gitHeadReferenceConstant)
	if symbolicReferenceError != nil {
		return symbolicReferenceError
	}
	if symbolicReference.ExitCode != 0 {
		prober.report(shared.SeverityWarning, noUpstreamReportConstant)
		return nil
	}
	state.LocalBranchName = strings.TrimSpace(symbolicReference.StandardOutput)

	branchListing, branchListingError := prober.runGit(executionContext, directory, gitBranchSubcommandConstant, gitDoubleVerboseFlagConstant)
	if branchListingError != nil {
		return branchListingError
	}
	if branchListing.ExitCode == 0 {
		state.RemoteBranchName, state.HasUpstream = ParseUpstream(branchListing.StandardOutput)
	}

	if state.HasUpstream {
		prober.report(shared.SeverityInfo, fmt.Sprintf(trackingBranchReportTemplateConstant, state.LocalBranchName, state.RemoteBranchName))
	} else {
		prober.report(shared.SeverityWarning, noUpstreamReportConstant)
	}
	return nil
}

func (prober *Prober) fetch(executionContext context.Context, directory shared.Directory, state *shared.BranchState) error {
	fetchResult, fetchError := prober.runGit(executionContext, directory, gitFetchSubcommandConstant, gitAllFlagConstant, gitPruneFlagConstant, gitVerboseFlagConstant)
	if fetchError != nil {
		return fetchError
	}

	combinedOutput := fetchResult.CombinedOutput()
	classification := ClassifyFetch(combinedOutput, fetchResult.ExitCode)
	state.FetchFailed = classification.Failed()
	state.FetchUnreachable = classification.Outcome == FetchUnreachable

	switch classification.Outcome {
	case FetchNoRemote:
		prober.report(shared.SeverityInfo, noRemoteReportConstant)
	case FetchUnreachable:
		prober.report(shared.SeverityError, remoteUnreachableReportConstant)
	case FetchUnknownError:
		prober.report(shared.SeverityError, unknownFetchErrorReportConstant)
		shared.ReportIndented(prober.reporter, shared.SeverityError, combinedOutput)
	default:
		if len(classification.UpdatedReferences) == 0 {
			prober.report(shared.SeveritySuccess, remoteUpToDateReportConstant)
			return nil
		}
		for _, updatedReference := range classification.UpdatedReferences {
			prober.report(shared.SeverityError, updatedReference)
		}
	}
	return nil
}

// runGit executes git in the directory. Non-zero exits come back as results;
// only cancellation and processes that cannot run are errors.
func (prober *Prober) runGit(executionContext context.Context, directory shared.Directory, arguments ...string) (execshell.ExecutionResult, error) {
	result, executionError := prober.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     directory.String(),
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisabledValueConstant},
	})
	if executionError == nil {
		return result, nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return execshell.ExecutionResult{}, contextError
	}
	var commandFailedError execshell.CommandFailedError
	if errors.As(executionError, &commandFailedError) {
		return commandFailedError.Result, nil
	}
	return execshell.ExecutionResult{}, fmt.Errorf(directoryUnavailableTemplateConstant, ErrDirectoryUnavailable, directory, executionError)
}

func (prober *Prober) report(severity shared.Severity, message string) {
	shared.ReportIndented(prober.reporter, severity, message)
}

func (prober *Prober) logState(directory shared.Directory, state shared.BranchState) {
	prober.logger.Debug(
		probeCompletedLogMessageConstant,
		zap.String(directoryFieldNameConstant, directory.String()),
		zap.Bool(repositoryFieldNameConstant, state.IsRepository),
		zap.String(localBranchFieldNameConstant, state.LocalBranchName),
		zap.String(upstreamFieldNameConstant, state.RemoteBranchName),
		zap.Bool(fetchFailedFieldNameConstant, state.FetchFailed),
		zap.Int(divergenceFieldNameConstant, int(state.Divergence)),
		zap.Bool(cleanFieldNameConstant, state.IsClean),
	)
}
