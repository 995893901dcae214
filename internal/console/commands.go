package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitcheck/internal/repos/configstore"
	"github.com/temirov/gitcheck/internal/repos/shared"
	"github.com/temirov/gitcheck/internal/repos/traversal"
)

const (
	verbExitConstant    = "EXIT"
	verbHelpConstant    = "HELP"
	verbAddConstant     = "ADD"
	verbDeleteConstant  = "DEL"
	verbUseConstant     = "USE"
	verbSetConstant     = "SET"
	verbShowConstant    = "SHOW"
	verbListConstant    = "LIST"
	verbVerboseConstant = "VERBOSE"
	verbPurgeConstant   = "PURGE"
	verbResetConstant   = "RESET"
	verbRunConstant     = "RUN"

	kindRepositoryArgumentConstant = "REPO"
	kindSearchArgumentConstant     = "SEARCH"
	kindIgnoreArgumentConstant     = "IGNORE"
	verboseAllArgumentConstant     = "all"

	runStatusArgumentConstant   = "STATUS"
	runNoStatusArgumentConstant = "NO-STATUS"
	runCommitArgumentConstant   = "COMMIT"
	runPushArgumentConstant     = "PUSH"
	runPullArgumentConstant     = "PULL"
	runNoCommitArgumentConstant = "NOCOMMIT"
	runNoPushArgumentConstant   = "NOPUSH"
	runNoPullArgumentConstant   = "NOPULL"

	missingKindTemplateConstant        = "Missing arguments for %s. Needs to be REPO, SEARCH or IGNORE"
	invalidKindTemplateConstant        = "Error: %s is not a valid argument for %s"
	missingDirectoriesTemplateConstant = "Missing arguments for %s %s"
	notDirectoryTemplateConstant       = "Error: %s is not a directory."
	notListedTemplateConstant          = "Error: %s is not listed as %s directory"
	missingArgumentsTemplateConstant   = "Missing arguments for %s"
	missingArgumentTemplateConstant    = "Missing argument for %s"
	takesNoArgumentsTemplateConstant   = "%s takes no arguments"
	notConfigurationTemplateConstant   = "Error: %s is not a configuration"
	overwriteTemplateConstant          = "WARNING: Configuration %s already exists. Overwrite? [y/n]"
	storeFailureTemplateConstant       = "Error: %v"
	invalidRunArgumentTemplateConstant = "Error: %s is not a valid argument for RUN"
	runFailureTemplateConstant         = "Error: %v"
	emptySaveMessageConstant           = "Error: Cannot save empty configuration"
	emptyRunMessageConstant            = "Error: Cannot run empty configuration"
	nothingToResetMessageConstant      = "Nothing to reset"
	resetMessageConstant               = "Configuration reset"
	runInterruptedMessageConstant      = "Run interrupted"
	sessionRepositoriesHeadingConstant = "Repository directories:"
	sessionSearchHeadingConstant       = "Search directories:"
	sessionIgnoreHeadingConstant       = "Ignore directories:"
	sessionDirectoryTemplateConstant   = "    %s"
	affirmativeShortAnswerConstant     = "y"
	affirmativeLongAnswerConstant      = "yes"
	negativeShortAnswerConstant        = "n"
	negativeLongAnswerConstant         = "no"
	repositoryKindDescriptionConstant  = "a repository"
	searchKindDescriptionConstant      = "a search"
	ignoreKindDescriptionConstant      = "an ignore"
	helpTextConstant                   = `Commands (case-insensitive, separate several with ";"):
    ADD REPO|SEARCH|IGNORE <dir>...   add directories to the working configuration
    DEL REPO|SEARCH|IGNORE <dir>...   remove directories from the working configuration
    USE <name>...                     add stored configurations to the working configuration
    SET <name>...                     store the working configuration under each name
    SHOW                              print the working configuration
    LIST                              list stored configurations
    VERBOSE all|<name>...             print stored configurations with their directories
    PURGE                             drop missing directories from stored configurations
    RESET                             empty the working configuration
    RUN [STATUS|NO-STATUS|COMMIT|PUSH|PULL|NOCOMMIT|NOPUSH|NOPULL]...
                                      check the working configuration (not recursive)
    HELP                              print this help
    EXIT                              leave the console`
)

var argumentKinds = map[string]configstore.DirectoryKind{
	kindRepositoryArgumentConstant: configstore.KindRepositories,
	kindSearchArgumentConstant:     configstore.KindSearch,
	kindIgnoreArgumentConstant:     configstore.KindIgnore,
}

var kindArguments = map[configstore.DirectoryKind]string{
	configstore.KindRepositories: kindRepositoryArgumentConstant,
	configstore.KindSearch:       kindSearchArgumentConstant,
	configstore.KindIgnore:       kindIgnoreArgumentConstant,
}

var kindDescriptions = map[configstore.DirectoryKind]string{
	configstore.KindRepositories: repositoryKindDescriptionConstant,
	configstore.KindSearch:       searchKindDescriptionConstant,
	configstore.KindIgnore:       ignoreKindDescriptionConstant,
}

var sessionHeadings = map[configstore.DirectoryKind]string{
	configstore.KindRepositories: sessionRepositoriesHeadingConstant,
	configstore.KindSearch:       sessionSearchHeadingConstant,
	configstore.KindIgnore:       sessionIgnoreHeadingConstant,
}

func (console *Console) registerCommands() {
	console.verbs = []string{
		verbExitConstant, verbHelpConstant, verbAddConstant, verbDeleteConstant,
		verbUseConstant, verbSetConstant, verbShowConstant, verbListConstant,
		verbVerboseConstant, verbPurgeConstant, verbResetConstant, verbRunConstant,
	}
	console.handlers = map[string]commandHandler{
		verbExitConstant:    func(context.Context, []string) error { return errExitRequested },
		verbHelpConstant:    console.help,
		verbAddConstant:     console.add,
		verbDeleteConstant:  console.remove,
		verbUseConstant:     console.use,
		verbSetConstant:     console.set,
		verbShowConstant:    console.show,
		verbListConstant:    console.list,
		verbVerboseConstant: console.listVerbose,
		verbPurgeConstant:   console.purge,
		verbResetConstant:   console.reset,
		verbRunConstant:     console.run,
	}
}

func (console *Console) help(context.Context, []string) error {
	for _, line := range strings.Split(helpTextConstant, "\n") {
		console.reportInfo(line)
	}
	return nil
}

func (console *Console) add(_ context.Context, arguments []string) error {
	kind, directories, parsed := console.parseKindArguments(verbAddConstant, arguments)
	if !parsed {
		return nil
	}
	for _, directory := range directories {
		absoluteDirectory := console.normalizer.Absolute(directory)
		info, statError := console.fileSystem.Stat(absoluteDirectory)
		if statError != nil || !info.IsDir() {
			console.reportError(fmt.Sprintf(notDirectoryTemplateConstant, directory))
			continue
		}
		console.session = console.session.With(kind, absoluteDirectory)
	}
	return nil
}

func (console *Console) remove(_ context.Context, arguments []string) error {
	kind, directories, parsed := console.parseKindArguments(verbDeleteConstant, arguments)
	if !parsed {
		return nil
	}
	for _, directory := range directories {
		updated, removed := console.session.Without(kind, console.normalizer.Absolute(directory))
		if !removed {
			console.reportError(fmt.Sprintf(notListedTemplateConstant, directory, kindDescriptions[kind]))
			continue
		}
		console.session = updated
	}
	return nil
}

func (console *Console) parseKindArguments(verb string, arguments []string) (configstore.DirectoryKind, []string, bool) {
	if len(arguments) == 0 {
		console.reportError(fmt.Sprintf(missingKindTemplateConstant, verb))
		return "", nil, false
	}
	kind, known := argumentKinds[strings.ToUpper(arguments[0])]
	if !known {
		console.reportError(fmt.Sprintf(invalidKindTemplateConstant, arguments[0], verb))
		return "", nil, false
	}
	if len(arguments) == 1 {
		console.reportError(fmt.Sprintf(missingDirectoriesTemplateConstant, verb, kindArguments[kind]))
		return "", nil, false
	}
	return kind, arguments[1:], true
}

func (console *Console) use(_ context.Context, arguments []string) error {
	if len(arguments) == 0 {
		console.reportError(fmt.Sprintf(missingArgumentsTemplateConstant, verbUseConstant))
		return nil
	}
	names, known := console.knownConfigurations(arguments)
	if !known || len(names) == 0 {
		return nil
	}
	entry, loadError := console.store.Load(names...)
	if loadError != nil {
		console.reportError(fmt.Sprintf(storeFailureTemplateConstant, loadError))
		return nil
	}
	console.session = console.session.Merge(entry)
	return nil
}

func (console *Console) set(_ context.Context, arguments []string) error {
	if len(arguments) == 0 {
		console.reportError(fmt.Sprintf(missingArgumentsTemplateConstant, verbSetConstant))
		return nil
	}
	if console.session.IsEmpty() {
		console.reportError(emptySaveMessageConstant)
		return nil
	}
	for _, name := range arguments {
		exists, existsError := console.store.Exists(name)
		if existsError != nil {
			console.reportError(fmt.Sprintf(storeFailureTemplateConstant, existsError))
			return nil
		}
		if exists && !console.confirm(fmt.Sprintf(overwriteTemplateConstant, name)) {
			continue
		}
		if saveError := console.store.Save(name, console.session); saveError != nil {
			console.reportError(fmt.Sprintf(storeFailureTemplateConstant, saveError))
			return nil
		}
	}
	return nil
}

func (console *Console) show(_ context.Context, arguments []string) error {
	if len(arguments) > 0 {
		console.reportInfo(fmt.Sprintf(takesNoArgumentsTemplateConstant, verbShowConstant))
	}
	for _, kind := range configstore.Kinds() {
		directories := console.session.Directories(kind)
		if len(directories) == 0 {
			continue
		}
		console.reportInfo(sessionHeadings[kind])
		for _, directory := range directories {
			console.reportInfo(fmt.Sprintf(sessionDirectoryTemplateConstant, directory))
		}
		console.reportInfo("")
	}
	return nil
}

func (console *Console) list(_ context.Context, arguments []string) error {
	if len(arguments) > 0 {
		console.reportInfo(fmt.Sprintf(takesNoArgumentsTemplateConstant, verbListConstant))
		return nil
	}
	names, namesError := console.store.Names()
	if namesError != nil {
		console.reportError(fmt.Sprintf(storeFailureTemplateConstant, namesError))
		return nil
	}
	console.presenter.ListNames(names)
	return nil
}

func (console *Console) listVerbose(_ context.Context, arguments []string) error {
	if len(arguments) == 0 {
		console.reportError(fmt.Sprintf(missingArgumentTemplateConstant, verbVerboseConstant))
		return nil
	}
	entries, entriesError := console.store.Entries()
	if entriesError != nil {
		console.reportError(fmt.Sprintf(storeFailureTemplateConstant, entriesError))
		return nil
	}

	var names []string
	var known bool
	if containsFold(arguments, verboseAllArgumentConstant) {
		names, known = console.knownConfigurations(nil)
	} else {
		names, known = console.knownConfigurations(arguments)
		known = known && len(names) > 0
	}
	if !known {
		return nil
	}
	console.presenter.ListEntries(entries, names)
	return nil
}

func (console *Console) purge(_ context.Context, arguments []string) error {
	if len(arguments) > 0 {
		console.reportInfo(fmt.Sprintf(takesNoArgumentsTemplateConstant, verbPurgeConstant))
		return nil
	}
	report, purgeError := console.store.Purge()
	if purgeError != nil {
		console.reportError(fmt.Sprintf(storeFailureTemplateConstant, purgeError))
		return nil
	}
	console.presenter.Purge(report)
	return nil
}

func (console *Console) reset(_ context.Context, arguments []string) error {
	if len(arguments) > 0 {
		console.reportInfo(fmt.Sprintf(takesNoArgumentsTemplateConstant, verbResetConstant))
		return nil
	}
	if console.session.IsEmpty() {
		console.reportInfo(nothingToResetMessageConstant)
		return nil
	}
	console.session = configstore.Entry{}
	console.reportInfo(resetMessageConstant)
	return nil
}

// run checks the session directories without recursion. An interrupt ends the run
// and returns to the prompt.
func (console *Console) run(executionContext context.Context, arguments []string) error {
	if console.session.IsEmpty() {
		console.reportError(emptyRunMessageConstant)
		return nil
	}
	request, parsed := console.parseRunArguments(arguments)
	if !parsed {
		return nil
	}

	plan := traversal.Plan{
		DirectDirectories: toDirectories(console.session.Repositories),
		SearchRoots:       toDirectories(console.session.Search),
		Ignore:            toDirectories(console.session.Ignore),
		Request:           request,
	}

	runContext, stopRun := console.notify(executionContext)
	_, runError := console.runner.Run(runContext, plan)
	stopRun()

	if runError == nil {
		return nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	if errors.Is(runError, context.Canceled) {
		console.reportInfo("")
		console.reportInfo(runInterruptedMessageConstant)
		return nil
	}
	console.reportError(fmt.Sprintf(runFailureTemplateConstant, runError))
	return nil
}

func (console *Console) parseRunArguments(arguments []string) (shared.OperationRequest, bool) {
	request := shared.DefaultOperationRequest()
	for _, argument := range arguments {
		switch strings.ToUpper(argument) {
		case runStatusArgumentConstant, runNoCommitArgumentConstant, runNoPushArgumentConstant, runNoPullArgumentConstant:
		case runNoStatusArgumentConstant:
			request.CheckStatus = false
		case runCommitArgumentConstant:
			request.DoCommit = true
		case runPushArgumentConstant:
			request.DoPush = true
		case runPullArgumentConstant:
			request.DoPull = true
		default:
			console.reportError(fmt.Sprintf(invalidRunArgumentTemplateConstant, strings.ToUpper(argument)))
			return shared.OperationRequest{}, false
		}
	}
	return request, true
}

// knownConfigurations returns the stored names among candidates, reporting the unknown
// ones. With no candidates every stored name is returned.
func (console *Console) knownConfigurations(candidates []string) ([]string, bool) {
	storedNames, namesError := console.store.Names()
	if namesError != nil {
		console.reportError(fmt.Sprintf(storeFailureTemplateConstant, namesError))
		return nil, false
	}
	if candidates == nil {
		return storedNames, true
	}

	stored := make(map[string]struct{}, len(storedNames))
	for _, name := range storedNames {
		stored[name] = struct{}{}
	}
	known := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if _, exists := stored[candidate]; !exists {
			console.reportError(fmt.Sprintf(notConfigurationTemplateConstant, candidate))
			continue
		}
		known = append(known, candidate)
	}
	return known, true
}

// confirm asks a yes/no question on the console input. The end of input answers no.
func (console *Console) confirm(question string) bool {
	if console.lines == nil {
		return false
	}
	for {
		console.reporter.Report(shared.SeverityWarning, question)
		answer, readError := console.lines.next(context.Background())
		if readError != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
			return true
		case negativeShortAnswerConstant, negativeLongAnswerConstant:
			return false
		}
	}
}

func toDirectories(paths []string) []shared.Directory {
	directories := make([]shared.Directory, 0, len(paths))
	for _, path := range paths {
		directories = append(directories, shared.Directory(path))
	}
	return directories
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}
