package parser

import (
	"errors"
	"strings"

	"github.com/temirov/helptree/internal/alias"
	"github.com/temirov/helptree/internal/types"
)

// Section headers with a fixed meaning in cobra help output. Every other header
// names a command group.
const (
	UsageHeader       = "Usage"
	AliasesHeader     = "Aliases"
	ExamplesHeader    = "Examples"
	FlagsHeader       = "Flags"
	GlobalFlagsHeader = "Global Flags"

	footerPrefix   = `Use "`
	lineSeparator  = "\n"
	preambleJoiner = " "
)

type sectionKind int

const (
	sectionPreamble sectionKind = iota
	sectionUsage
	sectionAliases
	sectionExamples
	sectionFlags
	sectionGlobalFlags
	sectionCommands
)

var fixedSections = map[string]sectionKind{
	UsageHeader:       sectionUsage,
	AliasesHeader:     sectionAliases,
	ExamplesHeader:    sectionExamples,
	"Example":         sectionExamples,
	FlagsHeader:       sectionFlags,
	GlobalFlagsHeader: sectionGlobalFlags,
}

// Document is the parsed content of one help text.
type Document struct {
	Description string
	Usage       string
	// Names lists the entries of the Aliases section, the command's own name included.
	Names          []string
	Groups         []types.CommandGroup
	LocalFlags     []types.Flag
	InheritedFlags []types.Flag
	// HasInheritedSection reports whether a Global Flags header was present.
	HasInheritedSection bool
	Malformed           []MalformedLineError
}

// Commands returns the commands of every group in document order.
func (document Document) Commands() []types.Command {
	var commands []types.Command
	for _, group := range document.Groups {
		commands = append(commands, group.Commands...)
	}
	return commands
}

// documentParser holds the state of a single pass over help text.
type documentParser struct {
	resolver        alias.Resolver
	document        Document
	section         sectionKind
	groupIndex      int
	preambleLines   []string
	localLongNames  map[string]struct{}
	globalLongNames map[string]struct{}
}

// ParseHelpText classifies every line of text and assembles the sections into a Document.
// Malformed entries are recorded on the document and never stop the pass.
func ParseHelpText(text string, resolver alias.Resolver) Document {
	state := &documentParser{
		resolver:        resolver,
		section:         sectionPreamble,
		groupIndex:      -1,
		localLongNames:  map[string]struct{}{},
		globalLongNames: map[string]struct{}{},
	}
	for lineIndex, rawLine := range strings.Split(text, lineSeparator) {
		state.consume(lineIndex+1, strings.TrimRight(rawLine, "\r"))
	}
	state.document.Description = strings.Join(state.preambleLines, preambleJoiner)
	state.document.Groups = dropEmptyGroups(resolver.ResolveGroups(state.document.Groups))
	return state.document
}

func dropEmptyGroups(groups []types.CommandGroup) []types.CommandGroup {
	var populated []types.CommandGroup
	for _, group := range groups {
		if len(group.Commands) > 0 {
			populated = append(populated, group)
		}
	}
	return populated
}

func (state *documentParser) consume(lineNumber int, line string) {
	kind := ClassifyLine(line)
	if kind == LineHeader {
		state.enterSection(HeaderName(line))
		return
	}
	trimmedLine := strings.TrimSpace(line)
	if state.section == sectionPreamble {
		if trimmedLine != "" && !strings.HasPrefix(trimmedLine, footerPrefix) {
			state.preambleLines = append(state.preambleLines, trimmedLine)
		}
		return
	}
	if kind != LineEntry {
		return
	}

	switch state.section {
	case sectionUsage:
		if state.document.Usage == "" {
			state.document.Usage = trimmedLine
		}
	case sectionAliases:
		state.document.Names = append(state.document.Names, state.resolver.SplitNames(trimmedLine)...)
	case sectionExamples:
	case sectionFlags:
		state.consumeFlag(lineNumber, trimmedLine, false)
	case sectionGlobalFlags:
		state.consumeFlag(lineNumber, trimmedLine, true)
	case sectionCommands:
		if IsFlagEntry(trimmedLine) {
			state.consumeFlag(lineNumber, trimmedLine, false)
			return
		}
		state.consumeCommand(lineNumber, trimmedLine)
	}
}

func (state *documentParser) enterSection(headerName string) {
	if kind, fixed := fixedSections[headerName]; fixed {
		state.section = kind
		if kind == sectionGlobalFlags {
			state.document.HasInheritedSection = true
		}
		return
	}
	state.section = sectionCommands
	for index, group := range state.document.Groups {
		if group.Name == headerName {
			state.groupIndex = index
			return
		}
	}
	state.document.Groups = append(state.document.Groups, types.CommandGroup{Name: headerName})
	state.groupIndex = len(state.document.Groups) - 1
}

func (state *documentParser) consumeFlag(lineNumber int, trimmedLine string, inherited bool) {
	if !IsFlagEntry(trimmedLine) {
		state.recordMalformed(lineNumber, trimmedLine, ReasonExpectedFlagEntry)
		return
	}
	nameField, description := SplitDescription(trimmedLine)
	flag, parseError := ParseFlagEntry(nameField, description)
	if parseError != nil {
		state.recordParseError(lineNumber, trimmedLine, parseError)
		return
	}
	longNames := state.localLongNames
	if inherited {
		longNames = state.globalLongNames
	}
	if _, duplicate := longNames[flag.Long]; duplicate {
		state.recordMalformed(lineNumber, trimmedLine, ReasonDuplicateFlag)
		return
	}
	longNames[flag.Long] = struct{}{}
	if inherited {
		state.document.InheritedFlags = append(state.document.InheritedFlags, flag)
		return
	}
	state.document.LocalFlags = append(state.document.LocalFlags, flag)
}

func (state *documentParser) consumeCommand(lineNumber int, trimmedLine string) {
	nameField, description := SplitDescription(trimmedLine)
	command, parseError := ParseCommandEntry(nameField, description, state.resolver)
	if parseError != nil {
		state.recordParseError(lineNumber, trimmedLine, parseError)
		return
	}
	group := &state.document.Groups[state.groupIndex]
	group.Commands = append(group.Commands, command)
}

func (state *documentParser) recordParseError(lineNumber int, trimmedLine string, parseError error) {
	var malformed MalformedLineError
	reason := parseError.Error()
	if errors.As(parseError, &malformed) {
		reason = malformed.Reason
	}
	state.recordMalformed(lineNumber, trimmedLine, reason)
}

func (state *documentParser) recordMalformed(lineNumber int, trimmedLine, reason string) {
	state.document.Malformed = append(state.document.Malformed, MalformedLineError{
		LineNumber: lineNumber,
		Text:       trimmedLine,
		Reason:     reason,
	})
}
