package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/helptree/internal/alias"
	"github.com/temirov/helptree/internal/builder"
	"github.com/temirov/helptree/internal/config"
	"github.com/temirov/helptree/internal/provider"
	"github.com/temirov/helptree/internal/types"
)

const (
	fixturesFlagName    = "fixtures"
	timeoutFlagName     = "timeout"
	retriesFlagName     = "retries"
	concurrencyFlagName = "concurrency"
	helpFlagFlagName    = "help-flag"

	fixturesFlagDescription    = "read help text from <dir>/<program>_<command>.txt files instead of running the program"
	timeoutFlagDescription     = "timeout of a single help invocation"
	retriesFlagDescription     = "retries of a help invocation that timed out or printed nothing"
	concurrencyFlagDescription = "parallel help invocations per depth level"
	helpFlagFlagDescription    = "flag appended to every invocation"

	defaultRetries     = 2
	defaultConcurrency = 1

	negativeRetriesErrorFormat = "--%s must not be negative, got %d"
	buildTreeErrorFormat       = "build command tree for %s: %w"

	treeBuiltMessage    = "help tree built"
	commandsLogField    = "commands"
	requestsLogField    = "requests"
	failuresLogField    = "failures"
	truncatedLogField   = "truncated"
	sourceLogField      = "source"
	fixturesSourceValue = "fixtures"
	execSourceValue     = "exec"
)

// buildOptions stores the flags shared by commands that assemble a tree.
type buildOptions struct {
	fixturesDirectory string
	timeout           time.Duration
	retries           int
	concurrency       int
	helpFlag          string
}

// buildSettings are buildOptions after configuration and defaults have been applied.
type buildSettings struct {
	fixturesDirectory string
	timeout           time.Duration
	retries           int
	concurrency       int
	helpFlag          string
	patterns          []alias.Pattern
}

// addBuildFlags registers tree building flags on the command.
func addBuildFlags(command *cobra.Command, options *buildOptions) {
	flagSet := command.Flags()
	flagSet.StringVar(&options.fixturesDirectory, fixturesFlagName, "", fixturesFlagDescription)
	flagSet.DurationVar(&options.timeout, timeoutFlagName, provider.DefaultTimeout, timeoutFlagDescription)
	flagSet.IntVar(&options.retries, retriesFlagName, defaultRetries, retriesFlagDescription)
	flagSet.IntVar(&options.concurrency, concurrencyFlagName, defaultConcurrency, concurrencyFlagDescription)
	flagSet.StringVar(&options.helpFlag, helpFlagFlagName, provider.DefaultHelpFlag, helpFlagFlagDescription)
}

// resolve applies configuration values to every flag the user did not set explicitly.
func (options buildOptions) resolve(flagSet *pflag.FlagSet, configuration config.BuildConfiguration, workingDirectory string) (buildSettings, error) {
	settings := buildSettings{
		fixturesDirectory: options.fixturesDirectory,
		timeout:           options.timeout,
		retries:           options.retries,
		concurrency:       options.concurrency,
		helpFlag:          options.helpFlag,
	}
	if !flagSet.Changed(fixturesFlagName) && configuration.Fixtures != "" {
		settings.fixturesDirectory = configuration.Fixtures
	}
	if !flagSet.Changed(timeoutFlagName) {
		configuredTimeout, timeoutError := configuration.TimeoutDuration()
		if timeoutError != nil {
			return buildSettings{}, timeoutError
		}
		if configuredTimeout > 0 {
			settings.timeout = configuredTimeout
		}
	}
	if !flagSet.Changed(retriesFlagName) {
		settings.retries = config.IntValue(configuration.Retries, settings.retries)
	}
	if !flagSet.Changed(concurrencyFlagName) {
		settings.concurrency = config.IntValue(configuration.Concurrency, settings.concurrency)
	}
	if !flagSet.Changed(helpFlagFlagName) && configuration.HelpFlag != "" {
		settings.helpFlag = configuration.HelpFlag
	}
	if settings.retries < 0 {
		return buildSettings{}, fmt.Errorf(negativeRetriesErrorFormat, retriesFlagName, settings.retries)
	}
	if settings.fixturesDirectory != "" && !filepath.IsAbs(settings.fixturesDirectory) {
		settings.fixturesDirectory = filepath.Join(workingDirectory, settings.fixturesDirectory)
	}
	patterns, patternsError := configuration.Patterns()
	if patternsError != nil {
		return buildSettings{}, patternsError
	}
	settings.patterns = patterns
	return settings, nil
}

// helpProvider selects fixture files or program execution, memoized per command path.
func (settings buildSettings) helpProvider(logger *zap.Logger) provider.Provider {
	if settings.fixturesDirectory != "" {
		return provider.NewCachingProvider(provider.DirectoryProvider{Directory: settings.fixturesDirectory})
	}
	return provider.NewCachingProvider(provider.NewExecProvider(provider.ExecOptions{
		HelpFlag: settings.helpFlag,
		Timeout:  settings.timeout,
		Retries:  uint64(settings.retries),
		Logger:   logger,
	}))
}

func (settings buildSettings) source() string {
	if settings.fixturesDirectory != "" {
		return fixturesSourceValue
	}
	return execSourceValue
}

// buildTree assembles the command tree of program using the command's build flags.
func (session *commandSession) buildTree(ctx context.Context, command *cobra.Command, options buildOptions, program string) (types.CommandTree, error) {
	settings, settingsError := options.resolve(command.Flags(), session.configuration.Build, session.environment.workingDirectory)
	if settingsError != nil {
		return types.CommandTree{}, settingsError
	}
	treeBuilder := builder.NewBuilder(settings.helpProvider(session.logger), builder.Options{
		Concurrency: settings.concurrency,
		Resolver:    alias.NewResolver(settings.patterns...),
		Logger:      session.logger,
	})
	tree, report, buildError := treeBuilder.Build(ctx, program)
	if buildError != nil {
		return types.CommandTree{}, fmt.Errorf(buildTreeErrorFormat, program, buildError)
	}
	session.logger.Info(treeBuiltMessage,
		zap.String(sourceLogField, settings.source()),
		zap.Int(commandsLogField, countCommands(tree.Commands())),
		zap.Int(requestsLogField, report.Requests),
		zap.Int(failuresLogField, len(report.FetchFailures)),
		zap.Int(truncatedLogField, report.TruncatedCommands))
	return tree, nil
}

func countCommands(commands []types.Command) int {
	total := len(commands)
	for _, command := range commands {
		total += countCommands(command.Subcommands)
	}
	return total
}
