package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/gitcheck/internal/execshell"
	"github.com/temirov/gitcheck/internal/repos/dependencies"
	"github.com/temirov/gitcheck/internal/repos/shared"
)

const (
	gitAddSubcommandConstant                 = "add"
	gitAllFlagConstant                       = "--all"
	gitCommitSubcommandConstant              = "commit"
	gitMessageFlagConstant                   = "-m"
	gitPushSubcommandConstant                = "push"
	gitPullSubcommandConstant                = "pull"
	gitFastForwardOnlyFlagConstant           = "--ff-only"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant   = "0"

	// AutomaticCommitMessage is the message of every commit made by reconciliation.
	AutomaticCommitMessage = "[Automatic commit]"

	branchCleanReportConstant            = "- BRANCH CLEAN -"
	branchNotCleanReportConstant         = "-- BRANCH NOT CLEAN:"
	branchAheadReportConstant            = "-- BRANCH IS AHEAD REMOTE"
	branchBehindReportConstant           = "-- BRANCH IS BEHIND REMOTE"
	branchDivergedReportConstant         = "-- BRANCH DIVERGED FROM REMOTE"
	commitMadeReportConstant             = "- COMMIT MADE -"
	commitCausedDivergenceReportConstant = "-- WARNING: COMMIT MADE BRANCH DIVERGE FROM REMOTE"
	pushMadeReportConstant               = "- PUSH MADE -"
	pullMadeReportConstant               = "- PULL MADE -"
	stepFailureReportTemplateConstant    = "-- ERROR: Error in %s:"
	skippedReportTemplateConstant        = "-- %s SKIPPED: %s"
	pushActionLabelConstant              = "PUSH"
	pullActionLabelConstant              = "PULL"
	divergedSkipReasonConstant           = "branch diverged from remote"
	fetchFailedSkipReasonConstant        = "fetch failed"
	missingUpstreamSkipReasonConstant    = "no upstream branch configured"

	stepFailedLogMessageConstant    = "reconciliation step failed"
	stepCompletedLogMessageConstant = "reconciliation step completed"
	directoryFieldNameConstant      = "directory"
	stepFieldNameConstant           = "step"

	gitExecutorMissingMessageConstant = "reconcile: git executor not configured"
	reporterMissingMessageConstant    = "reconcile: reporter not configured"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrReporterNotConfigured indicates the reporter dependency was missing.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// Dependencies enumerates the collaborators of an Engine.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	Reporter    shared.Reporter
	Logger      *zap.Logger
}

// Engine decides and performs the commit, push and pull sequence for one directory.
type Engine struct {
	executor shared.GitExecutor
	reporter shared.Reporter
	logger   *zap.Logger
}

// NewEngine validates dependencies and constructs an Engine.
func NewEngine(dependencySet Dependencies) (*Engine, error) {
	if dependencySet.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencySet.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	return &Engine{
		executor: dependencySet.GitExecutor,
		reporter: dependencySet.Reporter,
		logger:   dependencies.ResolveLogger(dependencySet.Logger),
	}, nil
}

// Reconcile reports the status of a probed repository and performs the requested actions.
// Command failures end the sequence for this directory and are reported, not returned;
// the only returned error is the cancellation of the context.
func (engine *Engine) Reconcile(executionContext context.Context, directory shared.Directory, state shared.BranchState, request shared.OperationRequest) (shared.ReconciliationOutcome, error) {
	outcome := shared.ReconciliationOutcome{IsRepository: state.IsRepository}
	if !state.IsRepository || !request.StatusRequired() || !state.StatusKnown {
		return outcome, nil
	}

	engine.reportStatus(state)

	if !state.IsClean && request.CommitRequested() {
		committed, commitError := engine.commit(executionContext, directory)
		if commitError != nil || !committed {
			return outcome, commitError
		}
		outcome.Committed = true
		engine.report(shared.SeveritySuccess, commitMadeReportConstant)
		wasBehind := state.IsBehind()
		state = state.AfterCommit()
		if wasBehind {
			engine.report(shared.SeverityWarning, commitCausedDivergenceReportConstant)
		}
	}

	if request.DoPush {
		if PushAllowed(state, request) {
			pushed, pushError := engine.runStep(executionContext, directory, gitPushSubcommandConstant, gitPushSubcommandConstant)
			if pushError != nil || !pushed {
				return outcome, pushError
			}
			outcome.Pushed = true
			engine.report(shared.SeveritySuccess, pushMadeReportConstant)
		} else {
			engine.reportSkipped(pushActionLabelConstant, state)
		}
	}

	if request.DoPull {
		if PullAllowed(state, request) {
			pulled, pullError := engine.runStep(executionContext, directory, gitPullSubcommandConstant, gitPullSubcommandConstant, gitFastForwardOnlyFlagConstant)
			if pullError != nil || !pulled {
				return outcome, pullError
			}
			outcome.Pulled = true
			engine.report(shared.SeveritySuccess, pullMadeReportConstant)
		} else {
			engine.reportSkipped(pullActionLabelConstant, state)
		}
	}

	return outcome, nil
}

// PushAllowed reports whether a push may be attempted for the state.
func PushAllowed(state shared.BranchState, request shared.OperationRequest) bool {
	return request.DoPush && state.IsClean && state.IsAhead() && !state.HasDiverged() && !state.FetchFailed && state.HasUpstream
}

// PullAllowed reports whether a pull may be attempted for the state.
func PullAllowed(state shared.BranchState, request shared.OperationRequest) bool {
	return request.DoPull && state.IsClean && state.IsBehind() && !state.HasDiverged() && !state.FetchFailed && state.HasUpstream
}

func (engine *Engine) reportStatus(state shared.BranchState) {
	if state.IsClean {
		engine.report(shared.SeveritySuccess, branchCleanReportConstant)
	} else {
		engine.report(shared.SeverityError, branchNotCleanReportConstant)
		shared.ReportIndented(engine.reporter, shared.SeverityError, state.StatusOutput)
	}

	switch state.Divergence {
	case shared.DivergenceAhead:
		engine.report(shared.SeverityError, branchAheadReportConstant)
	case shared.DivergenceBehind:
		engine.report(shared.SeverityError, branchBehindReportConstant)
	case shared.DivergenceDiverged:
		engine.report(shared.SeverityError, branchDivergedReportConstant)
	}
}

func (engine *Engine) commit(executionContext context.Context, directory shared.Directory) (bool, error) {
	added, addError := engine.runStep(executionContext, directory, gitAddSubcommandConstant, gitAddSubcommandConstant, gitAllFlagConstant)
	if addError != nil || !added {
		return false, addError
	}
	return engine.runStep(executionContext, directory, gitCommitSubcommandConstant, gitCommitSubcommandConstant, gitMessageFlagConstant, AutomaticCommitMessage)
}

// reportSkipped explains a requested synchronisation suppressed by a safety rule.
// Nothing is reported when the branch simply has nothing to transfer.
func (engine *Engine) reportSkipped(actionLabel string, state shared.BranchState) {
	var reason string
	switch {
	case state.HasDiverged():
		reason = divergedSkipReasonConstant
	case state.FetchFailed:
		reason = fetchFailedSkipReasonConstant
	case !state.HasUpstream:
		reason = missingUpstreamSkipReasonConstant
	default:
		return
	}
	engine.report(shared.SeverityWarning, fmt.Sprintf(skippedReportTemplateConstant, actionLabel, reason))
}

// runStep executes one side-effecting git command. A failed command is reported with its
// full output and yields false; only context cancellation is returned as an error.
func (engine *Engine) runStep(executionContext context.Context, directory shared.Directory, stepName string, arguments ...string) (bool, error) {
	_, executionError := engine.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     directory.String(),
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisabledValueConstant},
	})
	if executionError == nil {
		engine.logger.Debug(stepCompletedLogMessageConstant, zap.String(directoryFieldNameConstant, directory.String()), zap.String(stepFieldNameConstant, stepName))
		return true, nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return false, contextError
	}

	engine.logger.Warn(stepFailedLogMessageConstant, zap.String(directoryFieldNameConstant, directory.String()), zap.String(stepFieldNameConstant, stepName), zap.Error(executionError))
	engine.report(shared.SeverityError, fmt.Sprintf(stepFailureReportTemplateConstant, stepName))

	var commandFailedError execshell.CommandFailedError
	if errors.As(executionError, &commandFailedError) {
		shared.ReportIndented(engine.reporter, shared.SeverityError, commandFailedError.Result.CombinedOutput())
	} else {
		shared.ReportIndented(engine.reporter, shared.SeverityError, executionError.Error())
	}
	return false, nil
}

func (engine *Engine) report(severity shared.Severity, message string) {
	shared.ReportIndented(engine.reporter, severity, message)
}
