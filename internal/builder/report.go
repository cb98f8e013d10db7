package builder

import (
	"errors"
	"fmt"

	"github.com/temirov/helptree/internal/parser"
	"github.com/temirov/helptree/internal/provider"
	"github.com/temirov/helptree/internal/types"
)

const (
	rootHelpUnavailableMessage = "root help text unavailable"
	fetchErrorFormat           = "fetch help for %q at depth %d: %v"
)

// ErrRootHelpUnavailable is returned by Build when the program's own help text cannot be fetched.
var ErrRootHelpUnavailable = errors.New(rootHelpUnavailableMessage)

// FetchError records a command whose help text could not be fetched. The command
// stays in the tree as a leaf.
type FetchError struct {
	Path  []string
	Depth int
	Err   error
}

func (fetchError *FetchError) Error() string {
	return fmt.Sprintf(fetchErrorFormat, provider.JoinPath(fetchError.Path), fetchError.Depth, fetchError.Err)
}

func (fetchError *FetchError) Unwrap() error {
	return fetchError.Err
}

// MalformedLine is a skipped help line together with the command path whose help contained it.
type MalformedLine struct {
	Path []string
	parser.MalformedLineError
}

// Report collects the non-fatal diagnostics of one build.
type Report struct {
	// Requests counts external help fetches, the root included.
	Requests       int
	FetchFailures  []*FetchError
	MalformedLines []MalformedLine
	// TruncatedCommands counts commands attached at the depth ceiling without being expanded.
	TruncatedCommands int
}

// Err joins every fetch failure; nil when all fetches succeeded.
func (report Report) Err() error {
	if len(report.FetchFailures) == 0 {
		return nil
	}
	failures := make([]error, 0, len(report.FetchFailures))
	for _, fetchFailure := range report.FetchFailures {
		failures = append(failures, fetchFailure)
	}
	return errors.Join(failures...)
}

func (report *Report) recordMalformed(commandPath []string, malformedLines []parser.MalformedLineError) {
	for _, malformedLine := range malformedLines {
		report.MalformedLines = append(report.MalformedLines, MalformedLine{
			Path:               commandPath,
			MalformedLineError: malformedLine,
		})
	}
}

// dropFoldedFailures forgets failures of entries that were later folded into another
// command as one of its aliases; only failures of commands still present by name remain.
func (report *Report) dropFoldedFailures(tree types.CommandTree) {
	remaining := report.FetchFailures[:0]
	for _, fetchFailure := range report.FetchFailures {
		if len(fetchFailure.Path) < 2 {
			remaining = append(remaining, fetchFailure)
			continue
		}
		command, found := tree.Lookup(fetchFailure.Path[1:]...)
		if found && command.Name == fetchFailure.Path[len(fetchFailure.Path)-1] {
			remaining = append(remaining, fetchFailure)
		}
	}
	report.FetchFailures = remaining
}
