package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitcheck/internal/console"
	"github.com/temirov/gitcheck/internal/repos/configstore"
	"github.com/temirov/gitcheck/internal/repos/dependencies"
	"github.com/temirov/gitcheck/internal/repos/discovery"
	"github.com/temirov/gitcheck/internal/repos/filesystem"
	"github.com/temirov/gitcheck/internal/repos/probe"
	"github.com/temirov/gitcheck/internal/repos/prompt"
	"github.com/temirov/gitcheck/internal/repos/reconcile"
	"github.com/temirov/gitcheck/internal/repos/shared"
	"github.com/temirov/gitcheck/internal/repos/traversal"
	"github.com/temirov/gitcheck/internal/ui"
	pathutils "github.com/temirov/gitcheck/internal/utils/path"
)

const (
	errorMessagePrefixConstant         = "ERROR: "
	invalidRecursionMessageConstant    = "ERROR: Argument for --recursive must be an unsigned integer or 'all'"
	noDirectoriesMessageConstant       = "ERROR: No directories specified"
	notDirectoryTemplateConstant       = "ERROR: %s is not a directory"
	optionLineTemplateConstant         = "Executing git-check with options: %s"
	recursionWarningTemplateConstant   = "WARNING: Recursive search set to %s. This can be dangerous."
	repositoriesHeadingConstant        = "Repos to check:"
	searchRootsHeadingConstant         = "Root directories to check:"
	ignoredHeadingConstant             = "Directories to ignore:"
	listedDirectoryIndentConstant      = "    "
	deletionWarningConstant            = "WARNING: The following configurations will be deleted:"
	deletionQuestionConstant           = "Continue? [y/n]"
	overwriteQuestionTemplateConstant  = "WARNING: Configuration %s already exists. Overwrite? [y/n]"
	configurationSavedTemplateConstant = "Configuration %s saved"
	keyboardInterruptMessageConstant   = "Keyboard interrupt"
	helpHintMessageConstant            = "For more detailed information, use flag --help/-h"
	wiringErrorTemplateConstant        = "unable to assemble git-check: %w"
	storeErrorTemplateConstant         = "configuration store: %w"
	checkPlanLogMessageConstant        = "check plan"
	checkCompletedLogMessageConstant   = "check completed"
	repositoriesFieldConstant          = "repositories"
	searchRootsFieldConstant           = "search_roots"
	ignoredFieldConstant               = "ignored"
	recursionFieldConstant             = "recursion"
	probedFieldConstant                = "probed"
	repositoriesCheckedFieldConstant   = "repositories_checked"
	unavailableFieldConstant           = "unavailable"
)

// checkCollaborators bundles what one invocation needs besides its options.
type checkCollaborators struct {
	reporter   shared.Reporter
	store      *configstore.Store
	presenter  *configstore.Presenter
	fileSystem shared.FileSystem
	normalizer *pathutils.DirectoryNormalizer
	policy     shared.ConfirmationPolicy
	prompter   shared.ConfirmationPrompter
}

// checkLists are the directory lists of one invocation, before validation.
type checkLists struct {
	repositories []string
	search       []string
	ignore       []string
}

func (application *Application) runCheck(command *cobra.Command) error {
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	options := &application.checkOptions

	collaborators, wiringError := application.checkCollaborators()
	if wiringError != nil {
		return wiringError
	}

	if options.startConsole {
		return application.runConsole(executionContext, collaborators)
	}

	recursion, recursive, recursionError := application.parseRecursion(command)
	if recursionError != nil {
		return recursionError
	}

	handled, listError := application.listOrPurge(collaborators)
	if handled || listError != nil {
		return listError
	}

	lists := checkLists{
		repositories: expandDirectoryTokens(options.repositories, application.configuration.Check.Repositories),
		search:       expandDirectoryTokens(options.search, application.configuration.Check.Search),
		ignore:       expandIgnoreTokens(options.ignore, application.configuration.Check.Ignore),
	}

	if len(options.useConfigs) > 0 {
		stored, loadError := collaborators.store.Load(options.useConfigs...)
		if loadError != nil {
			return application.storeFailure(collaborators.reporter, loadError)
		}
		lists.repositories = append(lists.repositories, stored.Repositories...)
		lists.search = append(lists.search, stored.Search...)
		lists.ignore = append(lists.ignore, stored.Ignore...)
	}

	if len(options.deleteConfigs) > 0 {
		return application.deleteConfigurations(collaborators)
	}

	if len(lists.repositories) == 0 && len(lists.search) == 0 {
		lists.repositories = application.configuration.Check.Repositories
		lists.search = application.configuration.Check.Search
		if len(lists.repositories) == 0 && len(lists.search) == 0 {
			return application.argumentFailure(collaborators.reporter, noDirectoriesMessageConstant)
		}
	}

	for _, rawDirectories := range [][]string{lists.repositories, lists.search, lists.ignore} {
		for _, rawDirectory := range rawDirectories {
			info, statError := collaborators.fileSystem.Stat(collaborators.normalizer.Absolute(rawDirectory))
			if statError != nil || !info.IsDir() {
				return application.argumentFailure(collaborators.reporter, fmt.Sprintf(notDirectoryTemplateConstant, rawDirectory))
			}
		}
	}

	normalized := checkLists{
		repositories: collaborators.normalizer.Normalize(lists.repositories),
		search:       collaborators.normalizer.Normalize(lists.search),
		ignore:       collaborators.normalizer.Normalize(lists.ignore),
	}

	application.reportPlan(collaborators.reporter, normalized, recursion, recursive)

	if len(options.setConfigs) > 0 {
		return application.saveConfigurations(collaborators, normalized)
	}

	controller, controllerError := application.buildController(collaborators)
	if controllerError != nil {
		return controllerError
	}

	plan := traversal.Plan{
		DirectDirectories: toDirectories(normalized.repositories),
		SearchRoots:       toDirectories(normalized.search),
		Ignore:            toDirectories(normalized.ignore),
		Request:           options.request,
		Recursive:         recursive,
		MaxDepth:          recursion,
	}

	runContext, stopRun := application.interruptNotifier(executionContext)
	defer stopRun()

	summary, runError := controller.Run(runContext, plan)
	if errors.Is(runError, context.Canceled) {
		collaborators.reporter.Report(shared.SeverityInfo, "")
		collaborators.reporter.Report(shared.SeverityInfo, keyboardInterruptMessageConstant)
		return reportedError{cause: runError}
	}
	if runError != nil {
		return runError
	}

	application.logger.Info(
		checkCompletedLogMessageConstant,
		zap.Int(probedFieldConstant, summary.Probed),
		zap.Int(repositoriesCheckedFieldConstant, summary.Repositories),
		zap.Int(unavailableFieldConstant, summary.Unavailable),
	)
	return nil
}

func (application *Application) checkCollaborators() (checkCollaborators, error) {
	fileSystem := filesystem.OSFileSystem{}
	store, storeError := configstore.NewStore(application.configuration.Check.StorePath, configstore.Dependencies{
		FileSystem: fileSystem,
		Logger:     application.logger,
	})
	if storeError != nil {
		return checkCollaborators{}, fmt.Errorf(storeErrorTemplateConstant, storeError)
	}

	reporter := application.consoleReporter()
	return checkCollaborators{
		reporter:   reporter,
		store:      store,
		presenter:  configstore.NewPresenter(reporter),
		fileSystem: fileSystem,
		normalizer: pathutils.NewDirectoryNormalizer(),
		policy:     shared.ConfirmationPolicyFromBool(application.checkOptions.assumeYes),
		prompter:   prompt.NewIOConfirmationPrompter(application.streams.Input, application.streams.Output),
	}, nil
}

func (application *Application) buildController(collaborators checkCollaborators) (*traversal.Controller, error) {
	gitExecutor, executorError := dependencies.ResolveGitExecutor(nil, application.logger, ui.NewConsoleCommandEventLogger(application.logger))
	if executorError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, executorError)
	}

	prober, proberError := probe.NewProber(probe.Dependencies{
		GitExecutor: gitExecutor,
		FileSystem:  collaborators.fileSystem,
		Reporter:    collaborators.reporter,
		Logger:      application.logger,
	})
	if proberError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, proberError)
	}

	engine, engineError := reconcile.NewEngine(reconcile.Dependencies{
		GitExecutor: gitExecutor,
		Reporter:    collaborators.reporter,
		Logger:      application.logger,
	})
	if engineError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, engineError)
	}

	controller, controllerError := traversal.NewController(traversal.Dependencies{
		Prober:             prober,
		Reconciler:         engine,
		SubdirectoryLister: discovery.NewFilesystemSubdirectoryLister(collaborators.fileSystem),
		FileSystem:         collaborators.fileSystem,
		Reporter:           collaborators.reporter,
		Logger:             application.logger,
	})
	if controllerError != nil {
		return nil, fmt.Errorf(wiringErrorTemplateConstant, controllerError)
	}
	return controller, nil
}

func (application *Application) runConsole(executionContext context.Context, collaborators checkCollaborators) error {
	controller, controllerError := application.buildController(collaborators)
	if controllerError != nil {
		return controllerError
	}

	interactiveConsole, consoleError := console.NewConsole(console.Dependencies{
		Store:             collaborators.store,
		Runner:            controller,
		Reporter:          collaborators.reporter,
		Output:            application.streams.Output,
		FileSystem:        collaborators.fileSystem,
		Normalizer:        collaborators.normalizer,
		InterruptNotifier: application.interruptNotifier,
		Logger:            application.logger,
	})
	if consoleError != nil {
		return fmt.Errorf(wiringErrorTemplateConstant, consoleError)
	}

	runError := interactiveConsole.Run(executionContext, application.streams.Input)
	if errors.Is(runError, console.ErrInterrupted) {
		return reportedError{cause: runError}
	}
	return runError
}

func (application *Application) parseRecursion(command *cobra.Command) (shared.RecursionBudget, bool, error) {
	if !command.Flags().Changed(recursiveFlagNameConstant) {
		return shared.RecursionBudget{}, false, nil
	}
	recursion, parseError := shared.ParseRecursionBudget(application.checkOptions.recursive)
	if parseError != nil {
		return shared.RecursionBudget{}, false, application.argumentFailure(application.consoleReporter(), invalidRecursionMessageConstant)
	}
	return recursion, true, nil
}

// listOrPurge serves the listing and purge flags. handled reports that the invocation
// ends here.
func (application *Application) listOrPurge(collaborators checkCollaborators) (bool, error) {
	options := &application.checkOptions
	switch {
	case options.purgeConfigs:
		report, purgeError := collaborators.store.Purge()
		if purgeError != nil {
			return true, application.storeFailure(collaborators.reporter, purgeError)
		}
		collaborators.presenter.Purge(report)
		return true, nil
	case len(options.listConfigs) > 0:
		entries, entriesError := collaborators.store.Entries()
		if entriesError != nil {
			return true, application.storeFailure(collaborators.reporter, entriesError)
		}
		for _, name := range options.listConfigs {
			if _, exists := entries[name]; !exists {
				return true, application.storeFailure(collaborators.reporter, configstore.MissingConfigurationError{Name: name})
			}
		}
		collaborators.presenter.ListEntries(entries, options.listConfigs)
		return true, nil
	case options.listAllVerbose:
		entries, entriesError := collaborators.store.Entries()
		if entriesError != nil {
			return true, application.storeFailure(collaborators.reporter, entriesError)
		}
		names, namesError := collaborators.store.Names()
		if namesError != nil {
			return true, application.storeFailure(collaborators.reporter, namesError)
		}
		if len(names) == 0 {
			collaborators.presenter.ListNames(names)
			return true, nil
		}
		collaborators.presenter.ListEntries(entries, names)
		return true, nil
	case options.listAll:
		names, namesError := collaborators.store.Names()
		if namesError != nil {
			return true, application.storeFailure(collaborators.reporter, namesError)
		}
		collaborators.presenter.ListNames(names)
		return true, nil
	}
	return false, nil
}

func (application *Application) deleteConfigurations(collaborators checkCollaborators) error {
	names := application.checkOptions.deleteConfigs
	storedNames, namesError := collaborators.store.Names()
	if namesError != nil {
		return application.storeFailure(collaborators.reporter, namesError)
	}
	for _, name := range names {
		if !containsName(storedNames, name) {
			return application.storeFailure(collaborators.reporter, configstore.MissingConfigurationError{Name: name})
		}
	}

	collaborators.reporter.Report(shared.SeverityWarning, deletionWarningConstant)
	for _, name := range names {
		collaborators.reporter.Report(shared.SeverityWarning, listedDirectoryIndentConstant+name)
	}

	confirmed, confirmError := collaborators.policy.Confirm(collaborators.prompter, deletionQuestionConstant)
	if confirmError != nil {
		return confirmError
	}
	if !confirmed {
		return nil
	}
	if deleteError := collaborators.store.Delete(names...); deleteError != nil {
		return application.storeFailure(collaborators.reporter, deleteError)
	}
	return nil
}

func (application *Application) saveConfigurations(collaborators checkCollaborators, lists checkLists) error {
	entry := configstore.Entry{}.
		With(configstore.KindRepositories, lists.repositories...).
		With(configstore.KindSearch, lists.search...).
		With(configstore.KindIgnore, lists.ignore...)

	for _, name := range application.checkOptions.setConfigs {
		exists, existsError := collaborators.store.Exists(name)
		if existsError != nil {
			return application.storeFailure(collaborators.reporter, existsError)
		}
		if exists {
			confirmed, confirmError := collaborators.policy.Confirm(collaborators.prompter, fmt.Sprintf(overwriteQuestionTemplateConstant, name))
			if confirmError != nil {
				return confirmError
			}
			if !confirmed {
				continue
			}
		}
		if saveError := collaborators.store.Save(name, entry); saveError != nil {
			return application.storeFailure(collaborators.reporter, saveError)
		}
		collaborators.reporter.Report(shared.SeveritySuccess, fmt.Sprintf(configurationSavedTemplateConstant, name))
	}
	return nil
}

func (application *Application) reportPlan(reporter shared.Reporter, lists checkLists, recursion shared.RecursionBudget, recursive bool) {
	reporter.Report(shared.SeverityInfo, fmt.Sprintf(optionLineTemplateConstant, application.checkOptions.optionLine()))
	if recursive && (recursion.IsUnbounded() || recursion.Depth() > 0) {
		reporter.Report(shared.SeverityInfo, "")
		reporter.Report(shared.SeverityWarning, fmt.Sprintf(recursionWarningTemplateConstant, recursion.String()))
	}

	reportDirectoryList(reporter, repositoriesHeadingConstant, lists.repositories)
	reportDirectoryList(reporter, searchRootsHeadingConstant, lists.search)
	reportDirectoryList(reporter, ignoredHeadingConstant, lists.ignore)

	application.logger.Debug(
		checkPlanLogMessageConstant,
		zap.Strings(repositoriesFieldConstant, lists.repositories),
		zap.Strings(searchRootsFieldConstant, lists.search),
		zap.Strings(ignoredFieldConstant, lists.ignore),
		zap.Stringer(recursionFieldConstant, recursion),
	)
}

func reportDirectoryList(reporter shared.Reporter, heading string, directories []string) {
	if len(directories) == 0 {
		return
	}
	reporter.Report(shared.SeverityInfo, "")
	reporter.Report(shared.SeverityInfo, heading)
	for _, directory := range directories {
		reporter.Report(shared.SeverityInfo, listedDirectoryIndentConstant+directory)
	}
}

// argumentFailure reports a command line mistake followed by the help hint.
func (application *Application) argumentFailure(reporter shared.Reporter, message string) error {
	reporter.Report(shared.SeverityError, message)
	reporter.Report(shared.SeverityInfo, "")
	reporter.Report(shared.SeverityInfo, helpHintMessageConstant)
	return reportedError{cause: errors.New(message)}
}

// storeFailure reports a configuration store problem with the ERROR marker.
func (application *Application) storeFailure(reporter shared.Reporter, failure error) error {
	reporter.Report(shared.SeverityError, errorMessagePrefixConstant+failure.Error())
	return reportedError{cause: failure}
}

func toDirectories(paths []string) []shared.Directory {
	directories := make([]shared.Directory, 0, len(paths))
	for _, path := range paths {
		directories = append(directories, shared.Directory(path))
	}
	return directories
}

func containsName(names []string, target string) bool {
	for _, name := range names {
		if name == target {
			return true
		}
	}
	return false
}
