package cli

import (
	"github.com/spf13/pflag"

	"github.com/temirov/gitcheck/internal/repos/shared"
	"github.com/temirov/gitcheck/internal/utils/flags"
)

const (
	statusFlagNameConstant             = "status"
	commitFlagNameConstant             = "commit"
	pushFlagNameConstant               = "push"
	pullFlagNameConstant               = "pull"
	repositoryFlagNameConstant         = "repo"
	repositoryFlagShorthandConstant    = "r"
	searchFlagNameConstant             = "search"
	searchFlagShorthandConstant        = "s"
	ignoreFlagNameConstant             = "ignore"
	ignoreFlagShorthandConstant        = "i"
	recursiveFlagNameConstant          = "recursive"
	useConfigFlagNameConstant          = "use-config"
	setConfigFlagNameConstant          = "set-config"
	deleteConfigFlagNameConstant       = "del-config"
	listConfigFlagNameConstant         = "list-config"
	listConfigsFlagNameConstant        = "list-configs"
	listConfigsVerboseFlagNameConstant = "list-configs-verbose"
	purgeConfigsFlagNameConstant       = "purge-configs"
	consoleFlagNameConstant            = "console"
	assumeYesFlagNameConstant          = "yes"
	assumeYesFlagShorthandConstant     = "y"

	statusFlagUsageConstant             = "Fetch every repository and report its status."
	noStatusFlagUsageConstant           = "Skip the status report."
	commitFlagUsageConstant             = "Commit uncommitted changes."
	noCommitFlagUsageConstant           = "Do not commit."
	pushFlagUsageConstant               = "Commit and push when the branch is ahead of its upstream."
	noPushFlagUsageConstant             = "Do not push."
	pullFlagUsageConstant               = "Commit and pull when the branch is behind its upstream."
	noPullFlagUsageConstant             = "Do not pull."
	repositoryFlagUsageConstant         = "Repository directories to check. \"default\" adds the configured repositories."
	searchFlagUsageConstant             = "Directories whose subdirectories are checked. \"default\" adds the configured search directories."
	ignoreFlagUsageConstant             = "Directories never checked or searched. \"none\" clears the ignores given so far."
	recursiveFlagUsageConstant          = "Search below non-repository subdirectories up to `n|all` levels."
	useConfigFlagUsageConstant          = "Add the directories of saved configurations."
	setConfigFlagUsageConstant          = "Save the resulting directories under these names instead of checking them."
	deleteConfigFlagUsageConstant       = "Delete saved configurations."
	listConfigFlagUsageConstant         = "Show the directories of the named configurations."
	listConfigsFlagUsageConstant        = "List the names of saved configurations."
	listConfigsVerboseFlagUsageConstant = "List saved configurations with their directories."
	purgeConfigsFlagUsageConstant       = "Remove directories that no longer exist from saved configurations."
	consoleFlagUsageConstant            = "Start the interactive console."
	assumeYesFlagUsageConstant          = "Answer yes to confirmation prompts."

	defaultDirectoryTokenConstant = "default"
	clearIgnoreTokenConstant      = "none"
)

// checkOptions holds the parsed command line of one check invocation.
type checkOptions struct {
	request        shared.OperationRequest
	repositories   []string
	search         []string
	ignore         []string
	recursive      string
	useConfigs     []string
	setConfigs     []string
	deleteConfigs  []string
	listConfigs    []string
	listAll        bool
	listAllVerbose bool
	purgeConfigs   bool
	startConsole   bool
	assumeYes      bool
}

func (options *checkOptions) bind(flagSet *pflag.FlagSet) {
	flags.AddNegatableToggleFlag(flagSet, &options.request.CheckStatus, statusFlagNameConstant, true, statusFlagUsageConstant, noStatusFlagUsageConstant)
	flags.AddNegatableToggleFlag(flagSet, &options.request.DoCommit, commitFlagNameConstant, false, commitFlagUsageConstant, noCommitFlagUsageConstant)
	flags.AddNegatableToggleFlag(flagSet, &options.request.DoPush, pushFlagNameConstant, false, pushFlagUsageConstant, noPushFlagUsageConstant)
	flags.AddNegatableToggleFlag(flagSet, &options.request.DoPull, pullFlagNameConstant, false, pullFlagUsageConstant, noPullFlagUsageConstant)

	flags.AddMultiValueFlag(flagSet, &options.repositories, repositoryFlagNameConstant, repositoryFlagShorthandConstant, repositoryFlagUsageConstant)
	flags.AddMultiValueFlag(flagSet, &options.search, searchFlagNameConstant, searchFlagShorthandConstant, searchFlagUsageConstant)
	flags.AddMultiValueFlag(flagSet, &options.ignore, ignoreFlagNameConstant, ignoreFlagShorthandConstant, ignoreFlagUsageConstant)
	flags.AddMultiValueFlag(flagSet, &options.useConfigs, useConfigFlagNameConstant, "", useConfigFlagUsageConstant)
	flags.AddMultiValueFlag(flagSet, &options.setConfigs, setConfigFlagNameConstant, "", setConfigFlagUsageConstant)
	flags.AddMultiValueFlag(flagSet, &options.deleteConfigs, deleteConfigFlagNameConstant, "", deleteConfigFlagUsageConstant)
	flags.AddMultiValueFlag(flagSet, &options.listConfigs, listConfigFlagNameConstant, "", listConfigFlagUsageConstant)

	flagSet.StringVar(&options.recursive, recursiveFlagNameConstant, "", recursiveFlagUsageConstant)
	flagSet.BoolVar(&options.listAll, listConfigsFlagNameConstant, false, listConfigsFlagUsageConstant)
	flagSet.BoolVar(&options.listAllVerbose, listConfigsVerboseFlagNameConstant, false, listConfigsVerboseFlagUsageConstant)
	flagSet.BoolVar(&options.purgeConfigs, purgeConfigsFlagNameConstant, false, purgeConfigsFlagUsageConstant)
	flagSet.BoolVar(&options.startConsole, consoleFlagNameConstant, false, consoleFlagUsageConstant)
	flagSet.BoolVarP(&options.assumeYes, assumeYesFlagNameConstant, assumeYesFlagShorthandConstant, false, assumeYesFlagUsageConstant)
}

// optionLine renders the effective toggles the way they would be spelled on the command line.
func (options *checkOptions) optionLine() string {
	return toggleSpelling(statusFlagNameConstant, options.request.CheckStatus) + " " +
		toggleSpelling(commitFlagNameConstant, options.request.DoCommit) + " " +
		toggleSpelling(pushFlagNameConstant, options.request.DoPush) + " " +
		toggleSpelling(pullFlagNameConstant, options.request.DoPull)
}

func toggleSpelling(name string, enabled bool) string {
	if enabled {
		return "--" + name
	}
	return "--no-" + name
}

// expandDirectoryTokens replaces every "default" token with the configured defaults.
func expandDirectoryTokens(arguments []string, defaults []string) []string {
	expanded := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if argument == defaultDirectoryTokenConstant {
			expanded = append(expanded, defaults...)
			continue
		}
		expanded = append(expanded, argument)
	}
	return expanded
}

// expandIgnoreTokens starts from the configured seeds; "none" drops everything gathered so far.
func expandIgnoreTokens(arguments []string, seeds []string) []string {
	expanded := append([]string(nil), seeds...)
	for _, argument := range arguments {
		if argument == clearIgnoreTokenConstant {
			expanded = expanded[:0]
			continue
		}
		expanded = append(expanded, argument)
	}
	return expanded
}
