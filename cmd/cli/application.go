package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitcheck/internal/console"
	"github.com/temirov/gitcheck/internal/ui"
	"github.com/temirov/gitcheck/internal/utils"
	"github.com/temirov/gitcheck/internal/utils/flags"
)

const (
	applicationNameConstant                       = "git-check"
	applicationConfigurationDirectoryNameConstant = "gitcheck"
	applicationShortDescriptionConstant           = "Check and synchronise many git repositories at once"
	applicationLongDescriptionConstant            = "git-check fetches every listed repository, reports its working tree and upstream status, and optionally commits, pushes, and pulls when it is safe to do so."
	configFileFlagNameConstant                    = "config"
	configFileFlagUsageConstant                   = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                      = "log-level"
	logLevelFlagUsageConstant                     = "Override the configured log level."
	logFormatFlagNameConstant                     = "log-format"
	logFormatFlagUsageConstant                    = "Override the configured log format (structured or console)."
	colorFlagNameConstant                         = "color"
	colorFlagUsageConstant                        = "When to colour the report."
	commonConfigurationKeyConstant                = "common"
	commonLogLevelConfigKeyConstant               = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant              = commonConfigurationKeyConstant + ".log_format"
	commonColorConfigKeyConstant                  = commonConfigurationKeyConstant + ".color"
	checkConfigurationKeyConstant                 = "check"
	checkStorePathConfigKeyConstant               = checkConfigurationKeyConstant + ".store_path"
	environmentPrefixConstant                     = "GITCHECK"
	configurationNameConstant                     = "config"
	configurationTypeConstant                     = "yaml"
	storeFileNameConstant                         = "configs.json"
	configurationInitializedMessageConstant       = "configuration initialized"
	configurationLogLevelFieldConstant            = "log_level"
	configurationLogFormatFieldConstant           = "log_format"
	configurationFileFieldConstant                = "config_file"
	configurationStoreFieldConstant               = "store_path"
	configurationLoadErrorTemplateConstant        = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant           = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant               = "unable to flush logger: %w"
	colorModeErrorTemplateConstant                = "unable to configure colours: %w"
	storePathErrorTemplateConstant                = "unable to locate the configuration store: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Check  CheckConfiguration             `mapstructure:"check"`
}

// ApplicationCommonConfiguration stores logging and rendering configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Color     string `mapstructure:"color"`
}

// CheckConfiguration holds the default directories and the location of the configuration store.
type CheckConfiguration struct {
	Repositories []string `mapstructure:"repos"`
	Search       []string `mapstructure:"search"`
	Ignore       []string `mapstructure:"ignore"`
	StorePath    string   `mapstructure:"store_path"`
}

// Streams carries the standard streams of one invocation.
type Streams struct {
	Input  io.Reader
	Output io.Writer
	Error  io.Writer
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	colorFlagValue        string
	colorMode             ui.ColorMode
	reporter              *ui.ConsoleReporter
	streams               Streams
	interruptNotifier     console.InterruptNotifier
	checkOptions          checkOptions
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(streams Streams) *Application {
	if streams.Input == nil {
		streams.Input = os.Stdin
	}
	if streams.Output == nil {
		streams.Output = os.Stdout
	}
	if streams.Error == nil {
		streams.Error = os.Stderr
	}

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.DefaultSearchPaths(applicationConfigurationDirectoryNameConstant),
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactoryWithWriter(streams.Error),
		logger:              zap.NewNop(),
		colorMode:           ui.ColorModeAuto,
		streams:             streams,
		interruptNotifier:   notifyOnTermination,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runCheck(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetIn(streams.Input)
	cobraCommand.SetOut(streams.Output)
	cobraCommand.SetErr(streams.Error)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.colorFlagValue, colorFlagNameConstant, "", flags.FormatChoiceUsage(string(ui.ColorModeAuto), ui.ColorModes(), colorFlagUsageConstant))
	application.checkOptions.bind(cobraCommand.Flags())

	application.rootCommand = cobraCommand

	return application
}

// SetInterruptNotifier replaces the source of user interrupts.
func (application *Application) SetInterruptNotifier(notifier console.InterruptNotifier) {
	if notifier != nil {
		application.interruptNotifier = notifier
	}
}

// Execute parses arguments, runs the root command, and ensures logger flushing.
func (application *Application) Execute(arguments []string) error {
	normalizedArguments, normalizationError := flags.NormalizeArguments(arguments)
	if normalizationError != nil {
		return application.reportUsageError(normalizationError)
	}
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		commonColorConfigKeyConstant:     string(ui.ColorModeAuto),
		checkStorePathConfigKeyConstant:  "",
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, colorFlagNameConstant) {
		application.configuration.Common.Color = application.colorFlagValue
	}

	colorMode, colorModeError := ui.ParseColorMode(application.configuration.Common.Color)
	if colorModeError != nil {
		return fmt.Errorf(colorModeErrorTemplateConstant, colorModeError)
	}
	application.colorMode = colorMode
	application.reporter = nil

	if len(strings.TrimSpace(application.configuration.Check.StorePath)) == 0 {
		defaultStorePath, storePathError := defaultConfigurationStorePath()
		if storePathError != nil {
			return fmt.Errorf(storePathErrorTemplateConstant, storePathError)
		}
		application.configuration.Check.StorePath = defaultStorePath
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationStoreFieldConstant, application.configuration.Check.StorePath),
	)

	return nil
}

// consoleReporter returns the report sink for standard output, created on first use
// with the configured colour mode.
func (application *Application) consoleReporter() *ui.ConsoleReporter {
	if application.reporter == nil {
		application.reporter = ui.NewConsoleReporter(application.streams.Output, application.colorMode)
	}
	return application.reporter
}

func (application *Application) flushLogger() error {
	return application.syncLoggerInstance(application.logger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func defaultConfigurationStorePath() (string, error) {
	userConfigurationDirectory, userConfigurationError := os.UserConfigDir()
	if userConfigurationError != nil {
		return "", userConfigurationError
	}
	return filepath.Join(userConfigurationDirectory, applicationConfigurationDirectoryNameConstant, storeFileNameConstant), nil
}
