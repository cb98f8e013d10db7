package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/helptree/internal/config"
	"github.com/temirov/helptree/internal/types"
	"github.com/temirov/helptree/internal/utils"
)

const (
	globalFlagName             = "global"
	forceFlagName              = "force"
	initUse                    = types.InitCommandName
	initShortDescription       = "write a default configuration file"
	initLongDescription        = "Write the default configuration to ./" + utils.LocalConfigFileName + " or, with --global, to ~/" + utils.GlobalConfigDirectoryName + "/" + utils.GlobalConfigFileName + "."
	globalFlagDescription      = "write the global configuration instead of the local one"
	forceFlagDescription       = "overwrite an existing configuration file"
	configurationWrittenFormat = "configuration written to %s\n"
)

// createInitCommand returns the init subcommand.
func createInitCommand(session *commandSession) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: session.environment.workingDirectory,
			})
			if err != nil {
				return err
			}
			_, writeError := fmt.Fprintf(session.environment.standardOutput, configurationWrittenFormat, path)
			return writeError
		},
	}

	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
