// Package provider supplies raw help text for a command path.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	pathSeparator         = " "
	emptyCommandPathError = "empty command path"
	missingHelpTextFormat = "no help text for %q"
)

// ErrEmptyCommandPath is returned when Fetch receives no program name.
var ErrEmptyCommandPath = errors.New(emptyCommandPathError)

// Provider returns the help text of a command path. The first element of the
// path is the program; the remaining elements are subcommand names.
type Provider interface {
	Fetch(ctx context.Context, commandPath []string) (string, error)
}

// Func adapts a function to Provider.
type Func func(ctx context.Context, commandPath []string) (string, error)

// Fetch implements Provider.
func (function Func) Fetch(ctx context.Context, commandPath []string) (string, error) {
	return function(ctx, commandPath)
}

// JoinPath renders a command path the way a user would type it.
func JoinPath(commandPath []string) string {
	return strings.Join(commandPath, pathSeparator)
}

// MapProvider serves help text from memory, keyed by the space-joined command path.
type MapProvider map[string]string

// Fetch implements Provider.
func (texts MapProvider) Fetch(ctx context.Context, commandPath []string) (string, error) {
	if len(commandPath) == 0 {
		return "", ErrEmptyCommandPath
	}
	if contextError := ctx.Err(); contextError != nil {
		return "", contextError
	}
	key := JoinPath(commandPath)
	text, found := texts[key]
	if !found {
		return "", fmt.Errorf(missingHelpTextFormat, key)
	}
	return text, nil
}

type cachedHelp struct {
	text      string
	fetchErr  error
	completed chan struct{}
}

// CachingProvider memoizes the first answer for every command path so that
// repeated requests within one build observe identical text.
type CachingProvider struct {
	next    Provider
	mutex   sync.Mutex
	entries map[string]*cachedHelp
}

// NewCachingProvider wraps next with a per-path cache.
func NewCachingProvider(next Provider) *CachingProvider {
	return &CachingProvider{
		next:    next,
		entries: make(map[string]*cachedHelp),
	}
}

// Fetch implements Provider. Concurrent requests for one path share a single call.
func (caching *CachingProvider) Fetch(ctx context.Context, commandPath []string) (string, error) {
	key := JoinPath(commandPath)
	caching.mutex.Lock()
	entry, exists := caching.entries[key]
	if !exists {
		entry = &cachedHelp{completed: make(chan struct{})}
		caching.entries[key] = entry
	}
	caching.mutex.Unlock()

	if exists {
		select {
		case <-entry.completed:
			return entry.text, entry.fetchErr
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	entry.text, entry.fetchErr = caching.next.Fetch(ctx, commandPath)
	close(entry.completed)
	return entry.text, entry.fetchErr
}

var (
	_ Provider = Func(nil)
	_ Provider = MapProvider(nil)
	_ Provider = (*CachingProvider)(nil)
)
