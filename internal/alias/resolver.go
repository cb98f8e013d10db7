package alias

import (
	"strings"

	"github.com/temirov/helptree/internal/types"
)

// Resolver splits alias spellings and merges command entries that share a name.
type Resolver struct {
	patterns []Pattern
}

// NewResolver constructs a Resolver; without patterns the defaults apply.
func NewResolver(patterns ...Pattern) Resolver {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return Resolver{patterns: patterns}
}

// SplitNames returns the names listed in a command name field, canonical first.
// The first matching pattern wins; a field no pattern recognizes is a single name.
func (resolver Resolver) SplitNames(field string) []string {
	trimmedField := strings.TrimSpace(field)
	if trimmedField == "" {
		return nil
	}
	for _, pattern := range resolver.activePatterns() {
		if names, matched := pattern.Split(trimmedField); matched {
			return names
		}
	}
	return []string{trimmedField}
}

func (resolver Resolver) activePatterns() []Pattern {
	if len(resolver.patterns) == 0 {
		return DefaultPatterns()
	}
	return resolver.patterns
}

// Resolve folds entries whose name sets intersect into one command, keeping the
// position of the first entry. The result is stable under repeated application.
func (resolver Resolver) Resolve(commands []types.Command) []types.Command {
	if len(commands) == 0 {
		return commands
	}
	resolved := make([]types.Command, 0, len(commands))
	for _, incoming := range commands {
		incoming = normalizeAliases(incoming)
		var matchingIndexes []int
		for index, existing := range resolved {
			if namesIntersect(existing, incoming) {
				matchingIndexes = append(matchingIndexes, index)
			}
		}
		if len(matchingIndexes) == 0 {
			resolved = append(resolved, incoming)
			continue
		}
		primaryIndex := matchingIndexes[0]
		resolved[primaryIndex] = merge(resolved[primaryIndex], incoming)
		for offset := len(matchingIndexes) - 1; offset >= 1; offset-- {
			duplicateIndex := matchingIndexes[offset]
			resolved[primaryIndex] = merge(resolved[primaryIndex], resolved[duplicateIndex])
			resolved = append(resolved[:duplicateIndex], resolved[duplicateIndex+1:]...)
		}
	}
	for index := range resolved {
		resolved[index].Subcommands = resolver.Resolve(resolved[index].Subcommands)
	}
	return resolved
}

// ResolveGroups folds duplicate entries within every group and merges groups that repeat a name.
func (resolver Resolver) ResolveGroups(groups []types.CommandGroup) []types.CommandGroup {
	var resolved []types.CommandGroup
	positions := make(map[string]int, len(groups))
	for _, group := range groups {
		if position, seen := positions[group.Name]; seen {
			resolved[position].Commands = append(resolved[position].Commands, group.Commands...)
			continue
		}
		positions[group.Name] = len(resolved)
		resolved = append(resolved, types.CommandGroup{
			Name:     group.Name,
			Commands: append([]types.Command(nil), group.Commands...),
		})
	}
	for index := range resolved {
		resolved[index].Commands = resolver.Resolve(resolved[index].Commands)
	}
	return resolved
}

func namesIntersect(first, second types.Command) bool {
	for _, name := range second.Names() {
		if first.HasName(name) {
			return true
		}
	}
	return false
}

// merge folds secondary into primary. The primary keeps its canonical name and
// position; an empty description or usage is filled from the secondary.
func merge(primary, secondary types.Command) types.Command {
	result := primary
	result.Aliases = append(append([]string{}, primary.Aliases...), secondary.Names()...)
	result = normalizeAliases(result)
	if result.Description == "" {
		result.Description = secondary.Description
	}
	if result.Usage == "" {
		result.Usage = secondary.Usage
	}
	result.Flags = UnionFlags(primary.Flags, secondary.Flags)
	result.Subcommands = append(append([]types.Command{}, primary.Subcommands...), secondary.Subcommands...)
	return result
}

// normalizeAliases drops the canonical name and repeated entries from the aliases.
func normalizeAliases(command types.Command) types.Command {
	if len(command.Aliases) == 0 {
		command.Aliases = nil
		return command
	}
	seen := map[string]struct{}{command.Name: {}}
	aliases := make([]string, 0, len(command.Aliases))
	for _, aliasName := range command.Aliases {
		if _, duplicate := seen[aliasName]; duplicate || aliasName == "" {
			continue
		}
		seen[aliasName] = struct{}{}
		aliases = append(aliases, aliasName)
	}
	if len(aliases) == 0 {
		aliases = nil
	}
	command.Aliases = aliases
	return command
}

// UnionFlags appends flags from extra whose long name is not present in base.
func UnionFlags(base, extra []types.Flag) []types.Flag {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	result := append([]types.Flag{}, base...)
	present := make(map[string]struct{}, len(base)+len(extra))
	for _, flag := range base {
		present[flag.Long] = struct{}{}
	}
	for _, flag := range extra {
		if _, exists := present[flag.Long]; exists {
			continue
		}
		present[flag.Long] = struct{}{}
		result = append(result, flag)
	}
	return result
}
