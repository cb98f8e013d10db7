// Package types defines every cross‑package data structure used by the helptree CLI.
package types

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

const (
	TreeCommandName     = "tree"
	GenerateCommandName = "generate"
	InitCommandName     = "init"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"

	ShellBash = "bash"
	ShellFish = "fish"

	// MaxCommandDepth is the deepest Command.Depth a tree may contain.
	MaxCommandDepth = 2
)

const (
	flagShortPrefix     = "-"
	flagLongPrefix      = "--"
	flagSpellingJoiner  = ", "
	entryIndent         = "  "
	descriptionBoundary = "  "
	defaultAnnotation   = "(default %s)"
)

// Flag is one option declared in help text.
type Flag struct {
	Short       string  `json:"short,omitempty" yaml:"short,omitempty" xml:"short,attr,omitempty"`
	Long        string  `json:"long" yaml:"long" xml:"long,attr"`
	ValueType   string  `json:"valueType,omitempty" yaml:"valueType,omitempty" xml:"valueType,attr,omitempty"`
	Default     *string `json:"default,omitempty" yaml:"default,omitempty" xml:"default,attr,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" xml:"description,omitempty"`
}

// TakesValue reports whether the flag expects an argument.
func (flag Flag) TakesValue() bool {
	return flag.ValueType != ""
}

// Spellings returns the dash-prefixed forms of the flag, long form first.
func (flag Flag) Spellings() []string {
	spellings := []string{flagLongPrefix + flag.Long}
	if flag.Short != "" {
		spellings = append(spellings, flagShortPrefix+flag.Short)
	}
	return spellings
}

// HelpLine renders the flag back into the cobra help entry shape it was parsed from.
func (flag Flag) HelpLine() string {
	var nameField strings.Builder
	if flag.Short != "" {
		nameField.WriteString(flagShortPrefix + flag.Short + flagSpellingJoiner)
	}
	nameField.WriteString(flagLongPrefix + flag.Long)
	if flag.ValueType != "" {
		nameField.WriteString(" " + flag.ValueType)
	}

	descriptionParts := make([]string, 0, 2)
	if flag.Description != "" {
		descriptionParts = append(descriptionParts, flag.Description)
	}
	if flag.Default != nil {
		descriptionParts = append(descriptionParts, fmt.Sprintf(defaultAnnotation, strconv.Quote(*flag.Default)))
	}
	if len(descriptionParts) == 0 {
		return entryIndent + nameField.String()
	}
	return entryIndent + nameField.String() + descriptionBoundary + strings.Join(descriptionParts, " ")
}

// Command is one invocable subcommand.
type Command struct {
	Name        string    `json:"name" yaml:"name" xml:"name,attr"`
	Aliases     []string  `json:"aliases,omitempty" yaml:"aliases,omitempty" xml:"aliases>alias,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" xml:"description,omitempty"`
	Usage       string    `json:"usage,omitempty" yaml:"usage,omitempty" xml:"usage,omitempty"`
	Flags       []Flag    `json:"flags,omitempty" yaml:"flags,omitempty" xml:"flags>flag,omitempty"`
	Subcommands []Command `json:"subcommands,omitempty" yaml:"subcommands,omitempty" xml:"subcommands>command,omitempty"`
	Depth       int       `json:"depth" yaml:"depth" xml:"depth,attr"`
}

// Names returns the canonical name followed by every alias.
func (command Command) Names() []string {
	return append([]string{command.Name}, command.Aliases...)
}

// HasName reports whether name invokes the command.
func (command Command) HasName(name string) bool {
	for _, candidate := range command.Names() {
		if candidate == name {
			return true
		}
	}
	return false
}

// Subcommand returns the nested command invoked by name.
func (command Command) Subcommand(name string) (Command, bool) {
	for _, subcommand := range command.Subcommands {
		if subcommand.HasName(name) {
			return subcommand, true
		}
	}
	return Command{}, false
}

// Flag returns the flag with the provided long name.
func (command Command) Flag(long string) (Flag, bool) {
	return findFlag(command.Flags, long)
}

// CommandGroup is a named help section listing commands.
type CommandGroup struct {
	Name     string    `json:"name" yaml:"name" xml:"name,attr"`
	Commands []Command `json:"commands" yaml:"commands" xml:"command"`
}

// CommandTree is the parsed help hierarchy of one program.
type CommandTree struct {
	XMLName     xml.Name       `json:"-" yaml:"-" xml:"commandTree"`
	Program     string         `json:"program" yaml:"program" xml:"program,attr"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" xml:"description,omitempty"`
	Usage       string         `json:"usage,omitempty" yaml:"usage,omitempty" xml:"usage,omitempty"`
	Groups      []CommandGroup `json:"groups" yaml:"groups" xml:"groups>group"`
	GlobalFlags []Flag         `json:"globalFlags,omitempty" yaml:"globalFlags,omitempty" xml:"globalFlags>flag,omitempty"`
}

// Commands returns the top-level commands of every group in document order.
func (tree CommandTree) Commands() []Command {
	var commands []Command
	for _, group := range tree.Groups {
		commands = append(commands, group.Commands...)
	}
	return commands
}

// Lookup resolves a command path below the program, matching aliases as well as names.
func (tree CommandTree) Lookup(path ...string) (Command, bool) {
	if len(path) == 0 {
		return Command{}, false
	}
	var current Command
	found := false
	for _, candidate := range tree.Commands() {
		if candidate.HasName(path[0]) {
			current = candidate
			found = true
			break
		}
	}
	if !found {
		return Command{}, false
	}
	for _, segment := range path[1:] {
		next, ok := current.Subcommand(segment)
		if !ok {
			return Command{}, false
		}
		current = next
	}
	return current, true
}

// GlobalFlag returns the global flag with the provided long name.
func (tree CommandTree) GlobalFlag(long string) (Flag, bool) {
	return findFlag(tree.GlobalFlags, long)
}

func findFlag(flags []Flag, long string) (Flag, bool) {
	for _, flag := range flags {
		if flag.Long == long {
			return flag, true
		}
	}
	return Flag{}, false
}
