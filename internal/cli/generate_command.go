package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/helptree/internal/generator"
	"github.com/temirov/helptree/internal/output"
	"github.com/temirov/helptree/internal/types"
)

const (
	shellFlagName            = "shell"
	outputFlagName           = "output"
	fromFlagName             = "from"
	generateUse              = types.GenerateCommandName + " [program]"
	generateAlias            = "g"
	generateShortDescription = "emit a shell completion script (" + generateAlias + ")"
	// generateLongDescription provides detailed help for the generate command.
	generateLongDescription = `Build the command tree of a program, or load one saved by the tree command, and emit
a completion script for it. Use --shell to choose bash or fish and --output to write the script to a file.`
	// generateUsageExample demonstrates generate command usage.
	generateUsageExample = `  # Install fish completions for gh
  helptree generate gh --shell fish --output ~/.config/fish/completions/gh.fish

  # Generate bash completions from a saved tree
  helptree tree bd --format yaml > bd.yaml
  helptree generate --from bd.yaml --shell bash`
	shellFlagDescription  = "target shell: bash or fish"
	outputFlagDescription = "write the script to this file instead of standard output"
	fromFlagDescription   = "load a tree saved as json, yaml, or xml instead of running the program"

	scriptFilePermissions = 0o644

	missingProgramErrorMessage = "a program argument is required unless --from is set"
	programWithFromErrorFormat = "program %q conflicts with --from %s"
	writeScriptErrorFormat     = "write completion script to %s: %w"
	scriptWrittenMessage       = "completion script written"
	pathLogField               = "path"
	shellLogField              = "shell"
)

var errMissingProgram = errors.New(missingProgramErrorMessage)

// createGenerateCommand returns the generate subcommand.
func createGenerateCommand(session *commandSession) *cobra.Command {
	var build buildOptions
	var shell string
	var outputPath string
	var fromPath string
	var copyToClipboard bool

	generateCommand := &cobra.Command{
		Use:     generateUse,
		Aliases: []string{generateAlias},
		Short:   generateShortDescription,
		Long:    generateLongDescription,
		Example: generateUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			generateConfiguration := session.configuration.Generate
			flagSet := command.Flags()
			if !flagSet.Changed(shellFlagName) && generateConfiguration.Shell != "" {
				shell = generateConfiguration.Shell
			}
			if !flagSet.Changed(outputFlagName) && generateConfiguration.Output != "" {
				outputPath = generateConfiguration.Output
			}
			if !flagSet.Changed(copyFlagName) && generateConfiguration.Clipboard != nil {
				copyToClipboard = *generateConfiguration.Clipboard
			}
			scriptGenerator, shellError := generator.ForShell(shell)
			if shellError != nil {
				return shellError
			}

			var tree types.CommandTree
			switch {
			case fromPath != "" && len(arguments) > 0:
				return fmt.Errorf(programWithFromErrorFormat, arguments[0], fromPath)
			case fromPath != "":
				loadedTree, loadError := output.LoadTree(session.resolvePath(fromPath))
				if loadError != nil {
					return loadError
				}
				tree = loadedTree
			case len(arguments) == 0:
				return errMissingProgram
			default:
				builtTree, buildError := session.buildTree(command.Context(), command, build, arguments[0])
				if buildError != nil {
					return buildError
				}
				tree = builtTree
			}

			var script strings.Builder
			if err := scriptGenerator.Generate(&script, tree); err != nil {
				return err
			}
			if outputPath == "" {
				return session.emit(script.String(), copyToClipboard)
			}
			destination := session.resolvePath(outputPath)
			if err := os.WriteFile(destination, []byte(script.String()), scriptFilePermissions); err != nil {
				return fmt.Errorf(writeScriptErrorFormat, destination, err)
			}
			session.logger.Info(scriptWrittenMessage, zap.String(pathLogField, destination), zap.String(shellLogField, shell))
			return session.copy(script.String(), copyToClipboard)
		},
	}

	addBuildFlags(generateCommand, &build)
	generateCommand.Flags().StringVar(&shell, shellFlagName, types.ShellBash, shellFlagDescription)
	generateCommand.Flags().StringVar(&outputPath, outputFlagName, "", outputFlagDescription)
	generateCommand.Flags().StringVar(&fromPath, fromFlagName, "", fromFlagDescription)
	registerBooleanFlag(generateCommand.Flags(), &copyToClipboard, copyFlagName, false, copyFlagDescription)
	return generateCommand
}

// resolvePath interprets relative paths against the session's working directory.
func (session *commandSession) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(session.environment.workingDirectory, path)
}
