// Package parser turns cobra-style help text into command and flag entries.
package parser

import (
	"strings"
	"unicode"
)

// LineKind categorizes a raw help text line.
type LineKind int

const (
	// LineNoise is a blank or otherwise unrecognized line.
	LineNoise LineKind = iota
	// LineHeader introduces a section, for example "Flags:".
	LineHeader
	// LineEntry is an indented command or flag candidate.
	LineEntry
)

const (
	headerSuffix       = ":"
	flagEntryPrefix    = "-"
	minimumEntryIndent = 2
)

// String returns the lowercase name of the kind.
func (kind LineKind) String() string {
	switch kind {
	case LineHeader:
		return "header"
	case LineEntry:
		return "entry"
	default:
		return "noise"
	}
}

// ClassifyLine determines the category of one line without looking at its neighbours.
func ClassifyLine(line string) LineKind {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return LineNoise
	}
	firstCharacter := []rune(line)[0]
	if !unicode.IsSpace(firstCharacter) {
		if strings.HasSuffix(line, headerSuffix) {
			return LineHeader
		}
		return LineNoise
	}
	if leadingWhitespace(line) >= minimumEntryIndent && strings.TrimSpace(line) != "" {
		return LineEntry
	}
	return LineNoise
}

// IsFlagEntry reports whether a trimmed entry declares a flag rather than a command.
func IsFlagEntry(trimmedEntry string) bool {
	return strings.HasPrefix(trimmedEntry, flagEntryPrefix)
}

// HeaderName strips the trailing colon from a section header line.
func HeaderName(line string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimRight(line, "\r"), headerSuffix))
}

func leadingWhitespace(line string) int {
	count := 0
	for _, character := range line {
		if !unicode.IsSpace(character) {
			break
		}
		count++
	}
	return count
}
