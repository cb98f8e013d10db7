// Package alias recognizes alternate command spellings and folds duplicate command entries.
package alias

import (
	"regexp"
	"strings"
)

// Pattern recognizes one way help text spells alternate invocations of a command.
type Pattern interface {
	// Split returns every name in field when the pattern applies.
	Split(field string) ([]string, bool)
}

type separatorPattern struct {
	separator string
}

// Split implements Pattern for "create, new" and "rm/remove" spellings.
func (pattern separatorPattern) Split(field string) ([]string, bool) {
	if !strings.Contains(field, pattern.separator) {
		return nil, false
	}
	var names []string
	for _, token := range strings.Split(field, pattern.separator) {
		trimmedToken := strings.TrimSpace(token)
		if trimmedToken == "" {
			return nil, false
		}
		names = append(names, trimmedToken)
	}
	return names, len(names) > 1
}

var parentheticalExpression = regexp.MustCompile(`^([^()]+?)\s*\(([^()]+)\)$`)

type parentheticalPattern struct{}

// Split implements Pattern for "list (ls, l)" spellings.
func (parentheticalPattern) Split(field string) ([]string, bool) {
	matches := parentheticalExpression.FindStringSubmatch(field)
	if matches == nil {
		return nil, false
	}
	names := []string{strings.TrimSpace(matches[1])}
	for _, token := range strings.FieldsFunc(matches[2], isParentheticalSeparator) {
		names = append(names, token)
	}
	return names, len(names) > 1
}

func isParentheticalSeparator(character rune) bool {
	return character == ',' || character == ' ' || character == '|'
}

var (
	// CommaPattern splits "create, new".
	CommaPattern Pattern = separatorPattern{separator: ","}
	// SlashPattern splits "rm/remove".
	SlashPattern Pattern = separatorPattern{separator: "/"}
	// ParentheticalPattern splits "list (ls)".
	ParentheticalPattern Pattern = parentheticalPattern{}
)

// DefaultPatterns returns the patterns recognized when none are configured.
func DefaultPatterns() []Pattern {
	return []Pattern{ParentheticalPattern, CommaPattern, SlashPattern}
}

// PatternsByName maps configuration names onto patterns.
var PatternsByName = map[string]Pattern{
	"comma":         CommaPattern,
	"slash":         SlashPattern,
	"parenthetical": ParentheticalPattern,
}
