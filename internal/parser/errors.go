package parser

import "fmt"

const malformedLineFormat = "line %d: %s: %q"

// Reasons attached to MalformedLineError.
const (
	ReasonMissingLongFlag   = "missing long flag"
	ReasonUnexpectedToken   = "unexpected token"
	ReasonDuplicateFlag     = "duplicate flag"
	ReasonInvalidCommand    = "invalid command name"
	ReasonExpectedFlagEntry = "expected flag entry"
)

// MalformedLineError describes an entry that matched no recognized shape. It is
// collected as a diagnostic; parsing continues past it.
type MalformedLineError struct {
	LineNumber int
	Text       string
	Reason     string
}

// Error implements error.
func (malformed MalformedLineError) Error() string {
	return fmt.Sprintf(malformedLineFormat, malformed.LineNumber, malformed.Reason, malformed.Text)
}
