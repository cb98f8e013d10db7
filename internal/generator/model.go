package generator

import (
	"path/filepath"
	"regexp"

	"github.com/temirov/helptree/internal/types"
)

const (
	rootCommandPath    = ""
	commandPathJoiner  = "/"
	identifierFallback = "program"
)

var identifierUnsafeCharacters = regexp.MustCompile(`[^A-Za-z0-9_]`)

// completionCommand is a command flattened out of the tree together with the
// completion state path that selects it, for example "/epic/status".
type completionCommand struct {
	path        string
	parent      string
	names       []string
	description string
	flags       []types.Flag
	children    []string
}

// completionModel is the shell-independent view every generator renders.
type completionModel struct {
	program     string
	identifier  string
	globalFlags []types.Flag
	rootWords   []string
	commands    []completionCommand
	valueFlags  []string
}

func newCompletionModel(tree types.CommandTree) completionModel {
	program := filepath.Base(tree.Program)
	identifier := identifierUnsafeCharacters.ReplaceAllString(program, "_")
	if identifier == "" || identifier == "_" {
		identifier = identifierFallback
	}
	model := completionModel{
		program:     program,
		identifier:  identifier,
		globalFlags: tree.GlobalFlags,
	}
	topLevel := tree.Commands()
	model.rootWords = commandWords(topLevel)
	seenPaths := map[string]struct{}{}
	model.collect(topLevel, rootCommandPath, seenPaths)

	seenValueFlags := map[string]struct{}{}
	model.addValueFlags(tree.GlobalFlags, seenValueFlags)
	for _, command := range model.commands {
		model.addValueFlags(command.flags, seenValueFlags)
	}
	return model
}

// collect flattens commands depth first. A command listed under several groups is emitted once.
func (model *completionModel) collect(commands []types.Command, parentPath string, seenPaths map[string]struct{}) {
	for _, command := range commands {
		commandPath := parentPath + commandPathJoiner + command.Name
		if _, seen := seenPaths[commandPath]; seen {
			continue
		}
		seenPaths[commandPath] = struct{}{}
		model.commands = append(model.commands, completionCommand{
			path:        commandPath,
			parent:      parentPath,
			names:       command.Names(),
			description: command.Description,
			flags:       command.Flags,
			children:    commandWords(command.Subcommands),
		})
		model.collect(command.Subcommands, commandPath, seenPaths)
	}
}

func (model *completionModel) addValueFlags(flags []types.Flag, seen map[string]struct{}) {
	for _, flag := range flags {
		if !flag.TakesValue() {
			continue
		}
		for _, spelling := range flag.Spellings() {
			if _, exists := seen[spelling]; exists {
				continue
			}
			seen[spelling] = struct{}{}
			model.valueFlags = append(model.valueFlags, spelling)
		}
	}
}

// transitions lists the state paths reached by typing any name of the command after its parent.
func (command completionCommand) transitions() []string {
	transitions := make([]string, 0, len(command.names))
	for _, name := range command.names {
		transitions = append(transitions, command.parent+commandPathJoiner+name)
	}
	return transitions
}

func commandWords(commands []types.Command) []string {
	var words []string
	seen := map[string]struct{}{}
	for _, command := range commands {
		for _, name := range command.Names() {
			if _, exists := seen[name]; exists {
				continue
			}
			seen[name] = struct{}{}
			words = append(words, name)
		}
	}
	return words
}

func flagSpellings(flags []types.Flag) []string {
	var spellings []string
	for _, flag := range flags {
		spellings = append(spellings, flag.Spellings()...)
	}
	return spellings
}
