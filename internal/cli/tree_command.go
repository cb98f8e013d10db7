package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/helptree/internal/output"
	"github.com/temirov/helptree/internal/types"
)

const (
	formatFlagName       = "format"
	copyFlagName         = "copy"
	treeUse              = types.TreeCommandName + " <program>"
	treeAlias            = "t"
	treeShortDescription = "print the command tree of a program (" + treeAlias + ")"
	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Run <program> --help, follow every listed command two levels deep, and print the
resulting command tree. Use --format to select json, yaml, xml, or raw output.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Print the tree of kubectl as YAML
  helptree tree kubectl --format yaml

  # Render captured help text from testdata/bd.txt, testdata/bd_create.txt, ...
  helptree tree bd --fixtures testdata --format raw`
	formatFlagDescription = "output format: json, yaml, xml, or raw"
	copyFlagDescription   = "copy the output to the system clipboard"
)

// createTreeCommand returns the tree subcommand.
func createTreeCommand(session *commandSession) *cobra.Command {
	var build buildOptions
	var outputFormat string
	var copyToClipboard bool

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			treeConfiguration := session.configuration.Tree
			if !command.Flags().Changed(formatFlagName) && treeConfiguration.Format != "" {
				outputFormat = treeConfiguration.Format
			}
			format, formatError := output.NormalizeFormat(outputFormat)
			if formatError != nil {
				return formatError
			}
			if !command.Flags().Changed(copyFlagName) && treeConfiguration.Clipboard != nil {
				copyToClipboard = *treeConfiguration.Clipboard
			}

			tree, buildError := session.buildTree(command.Context(), command, build, arguments[0])
			if buildError != nil {
				return buildError
			}
			var rendered strings.Builder
			if err := output.WriteTree(&rendered, format, tree); err != nil {
				return err
			}
			return session.emit(rendered.String(), copyToClipboard)
		},
	}

	addBuildFlags(treeCommand, &build)
	treeCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatJSON, formatFlagDescription)
	registerBooleanFlag(treeCommand.Flags(), &copyToClipboard, copyFlagName, false, copyFlagDescription)
	return treeCommand
}
