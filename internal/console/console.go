package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/temirov/gitcheck/internal/repos/configstore"
	"github.com/temirov/gitcheck/internal/repos/dependencies"
	"github.com/temirov/gitcheck/internal/repos/shared"
	"github.com/temirov/gitcheck/internal/repos/traversal"
	pathutils "github.com/temirov/gitcheck/internal/utils/path"
)

const (
	promptConstant                   = ">>> "
	commandSeparatorConstant         = ";"
	escapeCharacterConstant          = `\`
	unknownCommandTemplateConstant   = "Unknown command: %s"
	suggestionHeadingConstant        = "Did you mean any of the following?"
	suggestionIndentConstant         = "    "
	suggestionSeparatorConstant      = "  "
	tokenizeFailureTemplateConstant  = "Error: %v"
	keyboardInterruptMessageConstant = "Keyboard interrupt"
	suggestionDistanceConstant       = 1
	commandLogMessageConstant        = "console command"
	commandFieldNameConstant         = "command"
	argumentsFieldNameConstant       = "arguments"
	storeMissingMessageConstant      = "console: configuration store not configured"
	runnerMissingMessageConstant     = "console: runner not configured"
	reporterMissingMessageConstant   = "console: reporter not configured"
	interruptedMessageConstant       = "console interrupted"
)

// ErrStoreNotConfigured indicates the configuration store dependency was missing.
var ErrStoreNotConfigured = errors.New(storeMissingMessageConstant)

// ErrRunnerNotConfigured indicates the traversal runner dependency was missing.
var ErrRunnerNotConfigured = errors.New(runnerMissingMessageConstant)

// ErrReporterNotConfigured indicates the reporter dependency was missing.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// ErrInterrupted indicates the user interrupted the console at the prompt.
var ErrInterrupted = errors.New(interruptedMessageConstant)

var errExitRequested = errors.New("exit requested")

// Runner performs one traversal.
type Runner interface {
	Run(executionContext context.Context, plan traversal.Plan) (traversal.Summary, error)
}

// InterruptNotifier derives a context that is cancelled when the user interrupts.
type InterruptNotifier func(parent context.Context) (context.Context, context.CancelFunc)

// NotifyOnInterrupt cancels the derived context on SIGINT.
func NotifyOnInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// Dependencies enumerates the collaborators of a Console.
type Dependencies struct {
	Store             *configstore.Store
	Runner            Runner
	Reporter          shared.Reporter
	Output            io.Writer
	FileSystem        shared.FileSystem
	Normalizer        *pathutils.DirectoryNormalizer
	InterruptNotifier InterruptNotifier
	Logger            *zap.Logger
}

type commandHandler func(executionContext context.Context, arguments []string) error

// Console is the interactive command interpreter. It keeps a working configuration
// of repository, search and ignore directories for the duration of the session.
type Console struct {
	store      *configstore.Store
	presenter  *configstore.Presenter
	runner     Runner
	reporter   shared.Reporter
	output     io.Writer
	fileSystem shared.FileSystem
	normalizer *pathutils.DirectoryNormalizer
	notify     InterruptNotifier
	logger     *zap.Logger
	session    configstore.Entry
	lines      *lineSource
	verbs      []string
	handlers   map[string]commandHandler
}

// NewConsole validates dependencies and constructs a Console with an empty session.
func NewConsole(dependencySet Dependencies) (*Console, error) {
	if dependencySet.Store == nil {
		return nil, ErrStoreNotConfigured
	}
	if dependencySet.Runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	if dependencySet.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	output := dependencySet.Output
	if output == nil {
		output = os.Stdout
	}
	normalizer := dependencySet.Normalizer
	if normalizer == nil {
		normalizer = pathutils.NewDirectoryNormalizer()
	}
	notify := dependencySet.InterruptNotifier
	if notify == nil {
		notify = NotifyOnInterrupt
	}

	console := &Console{
		store:      dependencySet.Store,
		presenter:  configstore.NewPresenter(dependencySet.Reporter),
		runner:     dependencySet.Runner,
		reporter:   dependencySet.Reporter,
		output:     output,
		fileSystem: dependencies.ResolveFileSystem(dependencySet.FileSystem),
		normalizer: normalizer,
		notify:     notify,
		logger:     dependencies.ResolveLogger(dependencySet.Logger),
	}
	console.registerCommands()
	return console, nil
}

// Run reads commands from input until EXIT or the end of input. An interrupt at the
// prompt returns ErrInterrupted; an interrupt during RUN only ends that run.
func (console *Console) Run(executionContext context.Context, input io.Reader) error {
	console.lines = newLineSource(input)
	defer console.lines.close()

	for {
		if _, writeError := io.WriteString(console.output, promptConstant); writeError != nil {
			return writeError
		}

		promptContext, stopPrompt := console.notify(executionContext)
		line, readError := console.lines.next(promptContext)
		stopPrompt()

		if errors.Is(readError, io.EOF) {
			console.reporter.Report(shared.SeverityInfo, "")
			return nil
		}
		if readError != nil {
			if promptContext.Err() != nil {
				console.reporter.Report(shared.SeverityInfo, "")
				console.reporter.Report(shared.SeverityInfo, keyboardInterruptMessageConstant)
				return ErrInterrupted
			}
			return readError
		}

		interpretError := console.Interpret(executionContext, line)
		if errors.Is(interpretError, errExitRequested) {
			return nil
		}
		if interpretError != nil {
			return interpretError
		}
	}
}

// Interpret executes one input line, which may hold several commands separated by ";".
func (console *Console) Interpret(executionContext context.Context, line string) error {
	for _, command := range splitCommands(line) {
		tokens, tokenizeError := tokenize(command)
		if tokenizeError != nil {
			console.reportError(fmt.Sprintf(tokenizeFailureTemplateConstant, tokenizeError))
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		verb := strings.ToUpper(tokens[0])
		handler, known := console.handlers[verb]
		if !known {
			console.reportUnknown(verb)
			continue
		}
		console.logger.Debug(commandLogMessageConstant, zap.String(commandFieldNameConstant, verb), zap.Strings(argumentsFieldNameConstant, tokens[1:]))
		if handlerError := handler(executionContext, tokens[1:]); handlerError != nil {
			return handlerError
		}
	}
	return nil
}

// Session returns the working configuration.
func (console *Console) Session() configstore.Entry {
	return console.session
}

func (console *Console) reportUnknown(verb string) {
	console.reportError(fmt.Sprintf(unknownCommandTemplateConstant, verb))

	suggestions := make([]string, 0, len(console.verbs))
	for _, candidate := range console.verbs {
		if levenshtein.ComputeDistance(candidate, verb) <= suggestionDistanceConstant {
			suggestions = append(suggestions, candidate)
		}
	}
	if len(suggestions) == 0 {
		return
	}
	console.reporter.Report(shared.SeverityInfo, "")
	console.reporter.Report(shared.SeverityInfo, suggestionHeadingConstant)
	console.reporter.Report(shared.SeverityInfo, suggestionIndentConstant+strings.Join(suggestions, suggestionSeparatorConstant))
}

func (console *Console) reportInfo(message string) {
	console.reporter.Report(shared.SeverityInfo, message)
}

func (console *Console) reportError(message string) {
	console.reporter.Report(shared.SeverityError, message)
}

// splitCommands separates an input line on ";" and drops blank commands.
func splitCommands(line string) []string {
	commands := make([]string, 0)
	for _, command := range strings.Split(line, commandSeparatorConstant) {
		trimmedCommand := strings.TrimSpace(command)
		if len(trimmedCommand) > 0 {
			commands = append(commands, trimmedCommand)
		}
	}
	return commands
}

// tokenize splits a command shell-style. Trailing backslashes are dropped from the
// command and from every argument.
func tokenize(command string) ([]string, error) {
	tokens, splitError := shlex.Split(strings.TrimRight(command, escapeCharacterConstant))
	if splitError != nil {
		return nil, splitError
	}
	for index := 1; index < len(tokens); index++ {
		tokens[index] = strings.TrimRight(tokens[index], escapeCharacterConstant)
	}
	return tokens, nil
}
