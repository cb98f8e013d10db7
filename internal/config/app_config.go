// Package config loads helptree's layered YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/helptree/internal/alias"
	"github.com/temirov/helptree/internal/utils"
)

const (
	workingDirectoryErrorFormat = "determine working directory: %w"
	resolvePathErrorFormat      = "resolve configuration path %s: %w"
	statErrorFormat             = "stat configuration %s: %w"
	directoryPathErrorFormat    = "configuration path %s is a directory"
	readErrorFormat             = "read configuration from %s: %w"
	decodeErrorFormat           = "decode configuration from %s: %w"
	timeoutErrorFormat          = "parse build.timeout %q: %w"
	aliasPatternErrorFormat     = "unknown alias pattern %q in build.alias_patterns"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Build    BuildConfiguration    `mapstructure:"build"`
	Tree     TreeConfiguration     `mapstructure:"tree"`
	Generate GenerateConfiguration `mapstructure:"generate"`
	Logging  LoggingConfiguration  `mapstructure:"logging"`
}

// BuildConfiguration controls how help text is obtained and the tree assembled.
type BuildConfiguration struct {
	Timeout       string   `mapstructure:"timeout"`
	Retries       *int     `mapstructure:"retries"`
	Concurrency   *int     `mapstructure:"concurrency"`
	HelpFlag      string   `mapstructure:"help_flag"`
	Fixtures      string   `mapstructure:"fixtures"`
	AliasPatterns []string `mapstructure:"alias_patterns"`
}

// TreeConfiguration defines defaults for the tree command.
type TreeConfiguration struct {
	Format    string `mapstructure:"format"`
	Clipboard *bool  `mapstructure:"copy"`
}

// GenerateConfiguration defines defaults for the generate command.
type GenerateConfiguration struct {
	Shell     string `mapstructure:"shell"`
	Output    string `mapstructure:"output"`
	Clipboard *bool  `mapstructure:"copy"`
}

// LoggingConfiguration controls the console level and the optional rotated log file.
type LoggingConfiguration struct {
	Level            string `mapstructure:"level"`
	File             string `mapstructure:"file"`
	MaxSizeMegabytes *int   `mapstructure:"max_size"`
	MaxBackups       *int   `mapstructure:"max_backups"`
	MaxAgeDays       *int   `mapstructure:"max_age"`
}

// LoadApplicationConfiguration loads configuration from the global file and then
// the local (or explicitly named) file, the latter taking precedence.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(workingDirectoryErrorFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(resolvePathErrorFormat, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(statErrorFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(directoryPathErrorFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(readErrorFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(decodeErrorFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Build = result.Build.merge(override.Build)
	result.Tree = result.Tree.merge(override.Tree)
	result.Generate = result.Generate.merge(override.Generate)
	result.Logging = result.Logging.merge(override.Logging)
	return result
}

func (config BuildConfiguration) merge(override BuildConfiguration) BuildConfiguration {
	result := config
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.Retries != nil {
		result.Retries = cloneInt(override.Retries)
	}
	if override.Concurrency != nil {
		result.Concurrency = cloneInt(override.Concurrency)
	}
	if override.HelpFlag != "" {
		result.HelpFlag = override.HelpFlag
	}
	if override.Fixtures != "" {
		result.Fixtures = override.Fixtures
	}
	if len(override.AliasPatterns) > 0 {
		result.AliasPatterns = append([]string{}, override.AliasPatterns...)
	}
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config GenerateConfiguration) merge(override GenerateConfiguration) GenerateConfiguration {
	result := config
	if override.Shell != "" {
		result.Shell = override.Shell
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config LoggingConfiguration) merge(override LoggingConfiguration) LoggingConfiguration {
	result := config
	if override.Level != "" {
		result.Level = override.Level
	}
	if override.File != "" {
		result.File = override.File
	}
	if override.MaxSizeMegabytes != nil {
		result.MaxSizeMegabytes = cloneInt(override.MaxSizeMegabytes)
	}
	if override.MaxBackups != nil {
		result.MaxBackups = cloneInt(override.MaxBackups)
	}
	if override.MaxAgeDays != nil {
		result.MaxAgeDays = cloneInt(override.MaxAgeDays)
	}
	return result
}

// TimeoutDuration parses Timeout; zero when unset.
func (config BuildConfiguration) TimeoutDuration() (time.Duration, error) {
	if config.Timeout == "" {
		return 0, nil
	}
	duration, parseError := time.ParseDuration(config.Timeout)
	if parseError != nil {
		return 0, fmt.Errorf(timeoutErrorFormat, config.Timeout, parseError)
	}
	return duration, nil
}

// Patterns resolves AliasPatterns by name; nil when unset so the resolver defaults apply.
func (config BuildConfiguration) Patterns() ([]alias.Pattern, error) {
	if len(config.AliasPatterns) == 0 {
		return nil, nil
	}
	patterns := make([]alias.Pattern, 0, len(config.AliasPatterns))
	for _, name := range config.AliasPatterns {
		pattern, known := alias.PatternsByName[name]
		if !known {
			return nil, fmt.Errorf(aliasPatternErrorFormat, name)
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// IntValue dereferences value, returning fallback when it is unset.
func IntValue(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

// BoolValue dereferences value, returning fallback when it is unset.
func BoolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
