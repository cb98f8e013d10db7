package generator

import "strings"

const (
	bashFunctionPrefix   = "_"
	bashWordSeparator    = " "
	bashPatternSeparator = "|"
)

var bashDoubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

type bashTransition struct {
	Pattern string
	Path    string
}

type bashCase struct {
	Path  string
	Words string
}

type bashScript struct {
	Program     string
	Function    string
	ValueFlags  string
	GlobalFlags string
	RootWords   string
	Transitions []bashTransition
	Cases       []bashCase
}

func newBashScript(model completionModel) any {
	script := bashScript{
		Program:     model.program,
		Function:    bashFunctionPrefix + model.identifier,
		ValueFlags:  bashAlternatives(model.valueFlags),
		GlobalFlags: bashWords(flagSpellings(model.globalFlags)),
		RootWords:   bashWords(model.rootWords),
	}
	for _, command := range model.commands {
		script.Transitions = append(script.Transitions, bashTransition{
			Pattern: bashAlternatives(command.transitions()),
			Path:    bashQuote(command.path),
		})
		words := append(append([]string{}, command.children...), flagSpellings(command.flags)...)
		script.Cases = append(script.Cases, bashCase{
			Path:  bashQuote(command.path),
			Words: bashWords(words),
		})
	}
	return script
}

// bashQuote renders value as a double-quoted bash word.
func bashQuote(value string) string {
	return `"` + bashDoubleQuoteEscaper.Replace(value) + `"`
}

// bashWords joins values for use inside a double-quoted compgen word list.
func bashWords(values []string) string {
	escaped := make([]string, 0, len(values))
	for _, value := range values {
		escaped = append(escaped, bashDoubleQuoteEscaper.Replace(value))
	}
	return strings.Join(escaped, bashWordSeparator)
}

// bashAlternatives renders a case pattern matching any of values literally.
func bashAlternatives(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, bashQuote(value))
	}
	return strings.Join(quoted, bashPatternSeparator)
}
