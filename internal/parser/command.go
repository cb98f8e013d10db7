package parser

import (
	"strings"

	"github.com/temirov/helptree/internal/alias"
	"github.com/temirov/helptree/internal/types"
)

// ParseCommandEntry builds a Command from the name field and description of a command entry.
// Alternate spellings recognized by the resolver become aliases of the first name.
func ParseCommandEntry(nameField, description string, resolver alias.Resolver) (types.Command, error) {
	names := resolver.SplitNames(nameField)
	if len(names) == 0 || strings.HasPrefix(names[0], flagEntryPrefix) {
		return types.Command{}, MalformedLineError{Text: nameField, Reason: ReasonInvalidCommand}
	}
	command := types.Command{
		Name:        names[0],
		Description: description,
	}
	if len(names) > 1 {
		command.Aliases = append([]string(nil), names[1:]...)
	}
	return command, nil
}
