// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/helptree/internal/config"
	"github.com/temirov/helptree/internal/services/clipboard"
	"github.com/temirov/helptree/internal/utils"
)

const (
	versionFlagName       = "version"
	configFlagName        = "config"
	logFileFlagName       = "log-file"
	verboseFlagName       = "verbose"
	versionTemplate       = "helptree version: %s\n"
	rootUse               = utils.ApplicationName
	rootShortDescription  = "map a CLI's command hierarchy from its help text"
	rootLongDescription   = `helptree runs a program's --help output, follows the commands it lists two levels deep,
and assembles a command tree with aliases and flags.
Use tree to print the hierarchy as json, yaml, xml, or raw text and generate to emit bash or fish completions.`
	versionFlagDescription = "display application version"
	configFlagDescription  = "configuration file overriding ./" + utils.LocalConfigFileName
	logFileFlagDescription = "also write logs to this rotated file"
	verboseFlagDescription = "log debug diagnostics"
	verboseLogLevel        = "debug"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	loadConfigurationFormat     = "load configuration: %w"
	createLoggerFormat          = "create logger: %w"
	clipboardErrorFormat        = "copy to clipboard: %w"
)

// errVersionRequested stops command execution once the version has been printed.
var errVersionRequested = errors.New("version requested")

// runtimeEnvironment carries the process resources commands write to.
type runtimeEnvironment struct {
	standardOutput   io.Writer
	standardError    io.Writer
	workingDirectory string
	copier           clipboard.Copier
}

// commandSession holds state prepared by the root command for its subcommands.
type commandSession struct {
	environment   runtimeEnvironment
	configuration config.ApplicationConfiguration
	logger        *zap.Logger
	closeLogger   func() error
}

type rootOptions struct {
	showVersion bool
	configPath  string
	logFilePath string
	verbose     bool
}

// Execute runs the helptree application.
func Execute() error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	rootCommand, session := createRootCommand(runtimeEnvironment{
		standardOutput:   os.Stdout,
		standardError:    os.Stderr,
		workingDirectory: workingDirectory,
		copier:           clipboard.NewService(),
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return executeRootCommand(ctx, rootCommand, session)
}

// executeRootCommand runs rootCommand and releases the session logger whether or not it succeeded.
func executeRootCommand(ctx context.Context, rootCommand *cobra.Command, session *commandSession) error {
	executionError := rootCommand.ExecuteContext(ctx)
	if closeError := session.close(); closeError != nil && executionError == nil {
		executionError = closeError
	}
	if executionError != nil && !errors.Is(executionError, errVersionRequested) {
		return executionError
	}
	return nil
}

// createRootCommand builds the root Cobra command and the session its subcommands share.
func createRootCommand(environment runtimeEnvironment) (*cobra.Command, *commandSession) {
	var options rootOptions
	session := &commandSession{environment: environment, logger: zap.NewNop()}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				fmt.Fprintf(environment.standardOutput, versionTemplate, utils.GetApplicationVersion())
				return errVersionRequested
			}
			return session.prepare(options)
		},
	}
	rootCommand.SetOut(environment.standardOutput)
	rootCommand.SetErr(environment.standardError)

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)
	persistentFlags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	persistentFlags.StringVar(&options.logFilePath, logFileFlagName, "", logFileFlagDescription)
	registerBooleanFlag(persistentFlags, &options.verbose, verboseFlagName, false, verboseFlagDescription)

	rootCommand.AddCommand(
		createTreeCommand(session),
		createGenerateCommand(session),
		createInitCommand(session),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand, session
}

// prepare loads configuration and builds the logger shared by subcommands.
func (session *commandSession) prepare(options rootOptions) error {
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: session.environment.workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if loadError != nil {
		return fmt.Errorf(loadConfigurationFormat, loadError)
	}
	session.configuration = configuration

	loggerOptions := utils.LoggerOptions{
		Level:            configuration.Logging.Level,
		Console:          session.environment.standardError,
		FilePath:         configuration.Logging.File,
		MaxSizeMegabytes: config.IntValue(configuration.Logging.MaxSizeMegabytes, 0),
		MaxBackups:       config.IntValue(configuration.Logging.MaxBackups, 0),
		MaxAgeDays:       config.IntValue(configuration.Logging.MaxAgeDays, 0),
	}
	if options.verbose {
		loggerOptions.Level = verboseLogLevel
	}
	if options.logFilePath != "" {
		loggerOptions.FilePath = options.logFilePath
	}
	logger, closeLogger, loggerError := utils.NewApplicationLogger(loggerOptions)
	if loggerError != nil {
		return fmt.Errorf(createLoggerFormat, loggerError)
	}
	session.logger = logger
	session.closeLogger = closeLogger
	return nil
}

// close flushes the logger and releases its log file; the session logs nowhere afterwards.
func (session *commandSession) close() error {
	closeLogger := session.closeLogger
	session.logger = zap.NewNop()
	session.closeLogger = nil
	if closeLogger == nil {
		return nil
	}
	return closeLogger()
}

// emit writes rendered text to standard output and optionally to the clipboard.
func (session *commandSession) emit(rendered string, copyToClipboard bool) error {
	if _, err := io.WriteString(session.environment.standardOutput, rendered); err != nil {
		return err
	}
	return session.copy(rendered, copyToClipboard)
}

func (session *commandSession) copy(rendered string, copyToClipboard bool) error {
	if !copyToClipboard || session.environment.copier == nil {
		return nil
	}
	if err := session.environment.copier.Copy(rendered); err != nil {
		return fmt.Errorf(clipboardErrorFormat, err)
	}
	return nil
}
