package parser

import "strings"

const (
	spaceCharacter = ' '
	tabCharacter   = '\t'
	boundaryRun    = 2
)

// SplitDescription separates a trimmed entry into its name field and description.
// The boundary is the first run of two or more spaces, or a tab; single spaces
// belong to the name field. Without a boundary the description is empty.
func SplitDescription(entry string) (string, string) {
	runLength := 0
	for index := 0; index < len(entry); index++ {
		switch entry[index] {
		case tabCharacter:
			return strings.TrimSpace(entry[:index]), strings.TrimSpace(entry[index:])
		case spaceCharacter:
			runLength++
			if runLength == boundaryRun {
				runStart := index - boundaryRun + 1
				return strings.TrimSpace(entry[:runStart]), strings.TrimSpace(entry[runStart:])
			}
		default:
			runLength = 0
		}
	}
	return strings.TrimSpace(entry), ""
}
