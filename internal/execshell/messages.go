package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	commitMessageFlagConstant               = "-m"
)

const (
	gitRevParseSubcommandNameConstant    = "rev-parse"
	gitSymbolicRefSubcommandNameConstant = "symbolic-ref"
	gitBranchSubcommandNameConstant      = "branch"
	gitFetchSubcommandNameConstant       = "fetch"
	gitStatusSubcommandNameConstant      = "status"
	gitAddSubcommandNameConstant         = "add"
	gitCommitSubcommandNameConstant      = "commit"
	gitPushSubcommandNameConstant        = "push"
	gitPullSubcommandNameConstant        = "pull"
)

// gitStageTemplates holds the sentence for each lifecycle stage of one git subcommand.
// Every template receives the working directory first.
type gitStageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var gitSubcommandTemplates = map[string]gitStageTemplates{
	gitRevParseSubcommandNameConstant: {
		start:            "Checking whether %s is a Git repository",
		success:          "%s is a Git repository",
		failure:          "Could not confirm %s is a Git repository (exit code %d%s)",
		executionFailure: "Could not analyze %s: %s",
	},
	gitSymbolicRefSubcommandNameConstant: {
		start:            "Identifying current branch in %s",
		success:          "Identified current branch in %s",
		failure:          "%s is not on a named branch (exit code %d%s)",
		executionFailure: "Unable to identify current branch in %s: %s",
	},
	gitBranchSubcommandNameConstant: {
		start:            "Checking upstream branch configuration in %s",
		success:          "Collected branch tracking information for %s",
		failure:          "Failed to check upstream branch configuration in %s (exit code %d%s)",
		executionFailure: "Unable to check upstream branch configuration in %s: %s",
	},
	gitFetchSubcommandNameConstant: {
		start:            "Fetching from all remotes in %s",
		success:          "Fetched from all remotes in %s",
		failure:          "Failed to fetch from all remotes in %s (exit code %d%s)",
		executionFailure: "Unable to fetch from all remotes in %s: %s",
	},
	gitStatusSubcommandNameConstant: {
		start:            "Reviewing working tree status in %s",
		success:          "Collected working tree status for %s",
		failure:          "Failed to review working tree status in %s (exit code %d%s)",
		executionFailure: "Unable to review working tree status in %s: %s",
	},
	gitAddSubcommandNameConstant: {
		start:            "Staging all changes in %s",
		success:          "Staged all changes in %s",
		failure:          "Failed to stage changes in %s (exit code %d%s)",
		executionFailure: "Unable to stage changes in %s: %s",
	},
	gitPushSubcommandNameConstant: {
		start:            "Pushing current branch from %s",
		success:          "Pushed current branch from %s",
		failure:          "Failed to push current branch from %s (exit code %d%s)",
		executionFailure: "Unable to push current branch from %s: %s",
	},
	gitPullSubcommandNameConstant: {
		start:            "Fast-forwarding current branch in %s",
		success:          "Fast-forwarded current branch in %s",
		failure:          "Failed to fast-forward current branch in %s (exit code %d%s)",
		executionFailure: "Unable to fast-forward current branch in %s: %s",
	},
}

const (
	gitCommitStartTemplateConstant            = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant          = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant          = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant = "Unable to create commit in %s with message %q: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	if subcommand == gitCommitSubcommandNameConstant {
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	}

	templates, known := gitSubcommandTemplates[subcommand]
	if !known {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	commitMessage := formatter.extractCommitMessage(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

// formatStandardErrorSuffix keeps only the first line of standard error.
func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	firstLine, _, _ := strings.Cut(trimmedStandardError, "\n")
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, strings.TrimSpace(firstLine))
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index+1 < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == commitMessageFlagConstant {
			return arguments[index+1]
		}
	}
	return fallbackUnknownValueLabelConstant
}
