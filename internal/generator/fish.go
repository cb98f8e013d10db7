package generator

import (
	"strings"

	"github.com/temirov/helptree/internal/types"
)

const (
	fishFunctionPrefix = "__"
	fishPathSuffix     = "_path"
	fishPathIsSuffix   = "_path_is"
	fishWordSeparator  = " "
)

var fishSingleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

type fishTransition struct {
	Patterns string
	Path     string
}

type fishScript struct {
	Program        string
	PathFunction   string
	PathIsFunction string
	Transitions    []fishTransition
	Completions    []string
}

func newFishScript(model completionModel) any {
	script := fishScript{
		Program:        fishQuote(model.program),
		PathFunction:   fishFunctionPrefix + model.identifier + fishPathSuffix,
		PathIsFunction: fishFunctionPrefix + model.identifier + fishPathIsSuffix,
	}
	for _, flag := range model.globalFlags {
		script.Completions = append(script.Completions, fishFlagArguments(flag))
	}
	for _, command := range model.commands {
		script.Transitions = append(script.Transitions, fishTransition{
			Patterns: fishWords(command.transitions()),
			Path:     fishQuote(command.path),
		})
		parentCondition := "-n " + fishQuote(script.PathIsFunction+" "+fishQuote(command.parent))
		for _, name := range command.names {
			script.Completions = append(script.Completions, parentCondition+" -a "+fishQuote(name)+fishDescription(command.description))
		}
		commandCondition := "-n " + fishQuote(script.PathIsFunction+" "+fishQuote(command.path))
		for _, flag := range command.flags {
			script.Completions = append(script.Completions, commandCondition+" "+fishFlagArguments(flag))
		}
	}
	return script
}

// fishFlagArguments renders the option part of a complete invocation for flag.
func fishFlagArguments(flag types.Flag) string {
	var arguments strings.Builder
	if flag.Short != "" {
		arguments.WriteString("-s " + fishQuote(flag.Short) + " ")
	}
	arguments.WriteString("-l " + fishQuote(flag.Long))
	if flag.TakesValue() {
		arguments.WriteString(" -r")
	}
	arguments.WriteString(fishDescription(flag.Description))
	return arguments.String()
}

func fishDescription(description string) string {
	if description == "" {
		return ""
	}
	return " -d " + fishQuote(description)
}

// fishQuote renders value as a single-quoted fish word.
func fishQuote(value string) string {
	return `'` + fishSingleQuoteEscaper.Replace(value) + `'`
}

func fishWords(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, fishQuote(value))
	}
	return strings.Join(quoted, fishWordSeparator)
}
