package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitSuccessConstant       = 0
	exitFailureConstant       = 1
	exitErrorTemplateConstant = "%v\n"
)

// reportedError marks a failure whose message already reached the report.
type reportedError struct {
	cause error
}

func (failure reportedError) Error() string {
	return failure.cause.Error()
}

func (failure reportedError) Unwrap() error {
	return failure.cause
}

// Run executes git-check with process style arguments, the first being the program
// name, and returns the exit code.
func Run(arguments []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	commandArguments := []string{}
	if len(arguments) > 1 {
		commandArguments = arguments[1:]
	}

	application := NewApplication(Streams{Input: stdin, Output: stdout, Error: stderr})
	return exitCode(application.Execute(commandArguments), stderr)
}

func exitCode(executionError error, stderr io.Writer) int {
	if executionError == nil {
		return exitSuccessConstant
	}
	var alreadyReported reportedError
	if !errors.As(executionError, &alreadyReported) {
		fmt.Fprintf(stderr, exitErrorTemplateConstant, executionError)
	}
	return exitFailureConstant
}

// reportUsageError prints a command line grammar mistake with the ERROR marker.
func (application *Application) reportUsageError(usageError error) error {
	return application.argumentFailure(application.consoleReporter(), errorMessagePrefixConstant+usageError.Error())
}

// notifyOnTermination cancels the derived context on SIGINT or SIGTERM.
func notifyOnTermination(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
