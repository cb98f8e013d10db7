package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	fixtureExtension        = ".txt"
	fixtureSegmentSeparator = "_"
	fixtureWordSeparator    = "-"
	readFixtureErrorFormat  = "read help fixture %s: %w"
)

// DirectoryProvider reads captured help text from files named after the command
// path: "bd.txt" for the program, "bd_epic_close-eligible.txt" for "bd epic close eligible".
type DirectoryProvider struct {
	Directory string
}

// FixtureName returns the file name holding the help text of commandPath.
func FixtureName(commandPath []string) string {
	segments := make([]string, 0, len(commandPath))
	for index, segment := range commandPath {
		if index == 0 {
			segment = filepath.Base(segment)
		}
		segments = append(segments, strings.Join(strings.Fields(segment), fixtureWordSeparator))
	}
	return strings.Join(segments, fixtureSegmentSeparator) + fixtureExtension
}

// Fetch implements Provider.
//
// #nosec G304
func (directory DirectoryProvider) Fetch(ctx context.Context, commandPath []string) (string, error) {
	if len(commandPath) == 0 {
		return "", ErrEmptyCommandPath
	}
	if contextError := ctx.Err(); contextError != nil {
		return "", contextError
	}
	fixturePath := filepath.Join(directory.Directory, FixtureName(commandPath))
	content, readError := os.ReadFile(fixturePath)
	if readError != nil {
		return "", fmt.Errorf(readFixtureErrorFormat, fixturePath, readError)
	}
	return string(content), nil
}

var _ Provider = DirectoryProvider{}
