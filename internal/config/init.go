package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/helptree/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	initWorkingDirectoryErrorFormat = "determine working directory for configuration: %w"
	initHomeDirectoryErrorFormat    = "resolve home directory for configuration: %w"
	initCreateDirectoryErrorFormat  = "create configuration directory %s: %w"
	initUnsupportedTargetFormat     = "unsupported init target %q"
	initExistsErrorFormat           = "configuration file already exists at %s"
	initInspectErrorFormat          = "inspect configuration path %s: %w"
	initWriteErrorFormat            = "write configuration to %s: %w"

	defaultConfigurationTemplate = `build:
  timeout: 5s
  retries: 2
  concurrency: 1
  help_flag: --help
  alias_patterns:
    - parenthetical
    - comma
    - slash
tree:
  format: json
  copy: false
generate:
  shell: bash
  copy: false
logging:
  level: info
  max_size: 10
  max_backups: 3
  max_age: 28
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(initWorkingDirectoryErrorFormat, err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.LocalConfigFileName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf(initHomeDirectoryErrorFormat, err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf(initCreateDirectoryErrorFormat, configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.GlobalConfigFileName)
	default:
		return "", fmt.Errorf(initUnsupportedTargetFormat, target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf(initExistsErrorFormat, destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf(initInspectErrorFormat, destinationPath, err)
	}

	if err := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); err != nil {
		return "", fmt.Errorf(initWriteErrorFormat, destinationPath, err)
	}

	return destinationPath, nil
}
