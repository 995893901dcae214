package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CommandName identifies an executable invoked through the ShellExecutor.
type CommandName string

// CommandGit is the git executable.
const CommandGit CommandName = "git"

const (
	commandStartedLogMessageConstant        = "command started"
	commandCompletedLogMessageConstant      = "command completed"
	commandFailedLogMessageConstant         = "command exited with non-zero status"
	commandExecutionFailedMessageConstant   = "command could not be executed"
	commandFieldNameConstant                = "command"
	argumentsFieldNameConstant              = "arguments"
	workingDirectoryFieldNameConstant       = "working_directory"
	exitCodeFieldNameConstant               = "exit_code"
	commandFailedErrorTemplateConstant      = "%s %s exited with code %d"
	commandExecutionErrorTemplateConstant   = "%s %s could not be executed: %v"
	commandArgumentsSeparatorConstant       = " "
	localeEnvironmentVariableNameConstant   = "LC_ALL"
	languageEnvironmentVariableNameConstant = "LANG"
	neutralLocaleValueConstant              = "C"
)

// ErrLoggerNotConfigured indicates a missing logger dependency.
var ErrLoggerNotConfigured = errors.New("execshell: logger not configured")

// ErrCommandRunnerNotConfigured indicates a missing command runner dependency.
var ErrCommandRunnerNotConfigured = errors.New("execshell: command runner not configured")

// CommandDetails describes a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples the executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the output of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CombinedOutput joins standard output and standard error in that order.
func (result ExecutionResult) CombinedOutput() string {
	switch {
	case len(result.StandardError) == 0:
		return result.StandardOutput
	case len(result.StandardOutput) == 0:
		return result.StandardError
	case strings.HasSuffix(result.StandardOutput, "\n"):
		return result.StandardOutput + result.StandardError
	default:
		return result.StandardOutput + "\n" + result.StandardError
	}
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that finished with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failing command.
func (commandFailedError CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedErrorTemplateConstant, commandFailedError.Command.Name, strings.Join(commandFailedError.Command.Details.Arguments, commandArgumentsSeparatorConstant), commandFailedError.Result.ExitCode)
}

// CommandExecutionError reports a command that could not be started or was interrupted.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (commandExecutionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, commandExecutionError.Command.Name, strings.Join(commandExecutionError.Command.Details.Arguments, commandArgumentsSeparatorConstant), commandExecutionError.Cause)
}

// Unwrap exposes the underlying cause.
func (commandExecutionError CommandExecutionError) Unwrap() error {
	return commandExecutionError.Cause
}

// ShellExecutor runs commands through a CommandRunner with logging and observer notifications.
type ShellExecutor struct {
	logger        *zap.Logger
	runner        CommandRunner
	eventObserver CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor without an event observer.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver constructs a ShellExecutor notifying the supplied observer.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, eventObserver CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if eventObserver == nil {
		eventObserver = noopCommandEventObserver{}
	}
	return &ShellExecutor{logger: logger, runner: runner, eventObserver: eventObserver}, nil
}

// ExecuteGit runs git with a neutral locale so that its messages stay untranslated.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	environment := make(map[string]string, len(details.EnvironmentVariables)+2)
	environment[localeEnvironmentVariableNameConstant] = neutralLocaleValueConstant
	environment[languageEnvironmentVariableNameConstant] = neutralLocaleValueConstant
	for environmentKey, environmentValue := range details.EnvironmentVariables {
		environment[environmentKey] = environmentValue
	}
	details.EnvironmentVariables = environment

	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := []zap.Field{
		zap.String(commandFieldNameConstant, string(command.Name)),
		zap.Strings(argumentsFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
	}

	executor.logger.Debug(commandStartedLogMessageConstant, commandFields...)
	executor.eventObserver.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Warn(commandExecutionFailedMessageConstant, append(commandFields, zap.Error(runError))...)
		executor.eventObserver.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Debug(commandFailedLogMessageConstant, append(commandFields, zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode))...)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(commandCompletedLogMessageConstant, append(commandFields, zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode))...)
	return executionResult, nil
}
