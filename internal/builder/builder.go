// Package builder assembles a command tree by fetching and parsing help text level by level.
package builder

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/helptree/internal/alias"
	"github.com/temirov/helptree/internal/parser"
	"github.com/temirov/helptree/internal/provider"
	"github.com/temirov/helptree/internal/types"
)

const (
	defaultConcurrency = 1
	maximumConcurrency = 16

	rootFetchErrorFormat = "%w: %s: %w"
	requestKeyFormat     = "%d|%s"

	fetchingLevelMessage   = "fetching help level"
	fetchFailedMessage     = "help fetch failed, keeping command as leaf"
	malformedLineMessage   = "skipped malformed help line"
	buildCompletedMessage  = "command tree built"
	programLogField        = "program"
	depthLogField          = "depth"
	requestsLogField       = "requests"
	commandLogField        = "command"
	lineLogField           = "line"
	reasonLogField         = "reason"
	failuresLogField       = "failures"
	truncatedLogField      = "truncated"
	malformedLinesLogField = "malformed"
)

// Options configures a Builder.
type Options struct {
	// Concurrency bounds the parallel fetches within one depth level. Values below one mean sequential.
	Concurrency int
	// MaxDepth is the depth of the deepest commands attached to the tree. Commands at
	// MaxDepth are listed but never fetched. Values outside 1..types.MaxCommandDepth
	// select types.MaxCommandDepth.
	MaxDepth int
	Resolver alias.Resolver
	Logger   *zap.Logger
}

// Builder drives help fetching and parsing for one program.
type Builder struct {
	provider provider.Provider
	options  Options
	logger   *zap.Logger
}

// pendingCommand is a worklist entry: a command in the tree under construction
// waiting for its own help text.
type pendingCommand struct {
	command *types.Command
	path    []string
	key     string
}

type fetchResult struct {
	helpText string
	fetchErr error
}

// NewBuilder constructs a Builder over helpProvider.
func NewBuilder(helpProvider provider.Provider, options Options) *Builder {
	if options.Concurrency < 1 {
		options.Concurrency = defaultConcurrency
	}
	if options.Concurrency > maximumConcurrency {
		options.Concurrency = maximumConcurrency
	}
	if options.MaxDepth < 1 || options.MaxDepth > types.MaxCommandDepth {
		options.MaxDepth = types.MaxCommandDepth
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{provider: helpProvider, options: options, logger: logger}
}

// Build fetches the root help of program, then expands every listed command one
// depth level at a time. Per-command failures are reported, never returned; the
// error result is reserved for an unavailable root help text and cancellation.
func (builder *Builder) Build(ctx context.Context, program string) (types.CommandTree, Report, error) {
	var report Report
	rootPath := []string{program}

	report.Requests++
	rootHelpText, rootError := builder.provider.Fetch(ctx, rootPath)
	if rootError != nil {
		return types.CommandTree{}, report, fmt.Errorf(rootFetchErrorFormat, ErrRootHelpUnavailable, program, rootError)
	}
	rootDocument := parser.ParseHelpText(rootHelpText, builder.options.Resolver)
	builder.recordMalformed(&report, rootPath, rootDocument.Malformed)

	tree := types.CommandTree{
		Program:     program,
		Description: rootDocument.Description,
		Usage:       rootDocument.Usage,
		Groups:      rootDocument.Groups,
		GlobalFlags: alias.UnionFlags(rootDocument.LocalFlags, rootDocument.InheritedFlags),
	}

	var pending []pendingCommand
	for groupIndex := range tree.Groups {
		commands := tree.Groups[groupIndex].Commands
		for commandIndex := range commands {
			commands[commandIndex].Depth = 0
			pending = builder.enqueue(pending, &report, &commands[commandIndex], rootPath)
		}
	}

	for len(pending) > 0 {
		results, fetchError := builder.fetchLevel(ctx, pending, &report)
		if fetchError != nil {
			return types.CommandTree{}, report, fetchError
		}
		var next []pendingCommand
		for _, item := range pending {
			result := results[item.key]
			if result.fetchErr != nil {
				failure := &FetchError{Path: item.path, Depth: item.command.Depth, Err: result.fetchErr}
				report.FetchFailures = append(report.FetchFailures, failure)
				builder.logger.Warn(fetchFailedMessage,
					zap.String(commandLogField, provider.JoinPath(item.path)),
					zap.Int(depthLogField, item.command.Depth),
					zap.Error(result.fetchErr))
				continue
			}
			document := parser.ParseHelpText(result.helpText, builder.options.Resolver)
			builder.recordMalformed(&report, item.path, document.Malformed)
			builder.apply(item.command, document)
			for subcommandIndex := range item.command.Subcommands {
				next = builder.enqueue(next, &report, &item.command.Subcommands[subcommandIndex], item.path)
			}
		}
		pending = next
	}

	tree.Groups = builder.options.Resolver.ResolveGroups(tree.Groups)
	report.dropFoldedFailures(tree)
	builder.logger.Debug(buildCompletedMessage,
		zap.String(programLogField, program),
		zap.Int(requestsLogField, report.Requests),
		zap.Int(failuresLogField, len(report.FetchFailures)),
		zap.Int(malformedLinesLogField, len(report.MalformedLines)),
		zap.Int(truncatedLogField, report.TruncatedCommands))
	return tree, report, nil
}

// enqueue appends command to the worklist unless it sits at the depth ceiling.
func (builder *Builder) enqueue(worklist []pendingCommand, report *Report, command *types.Command, parentPath []string) []pendingCommand {
	if command.Depth >= builder.options.MaxDepth {
		report.TruncatedCommands++
		return worklist
	}
	commandPath := append(append([]string{}, parentPath...), command.Name)
	return append(worklist, pendingCommand{
		command: command,
		path:    commandPath,
		key:     fmt.Sprintf(requestKeyFormat, command.Depth, provider.JoinPath(commandPath)),
	})
}

// fetchLevel issues one request per distinct key of the level. Fetch failures are
// returned as results so that siblings keep running; only cancellation aborts the level.
func (builder *Builder) fetchLevel(ctx context.Context, level []pendingCommand, report *Report) (map[string]fetchResult, error) {
	var requests []pendingCommand
	seen := make(map[string]struct{}, len(level))
	for _, item := range level {
		if _, duplicate := seen[item.key]; duplicate {
			continue
		}
		seen[item.key] = struct{}{}
		requests = append(requests, item)
	}
	builder.logger.Debug(fetchingLevelMessage,
		zap.Int(depthLogField, level[0].command.Depth),
		zap.Int(requestsLogField, len(requests)))

	responses := make([]fetchResult, len(requests))
	var group errgroup.Group
	group.SetLimit(builder.options.Concurrency)
	for requestIndex, request := range requests {
		requestIndex, request := requestIndex, request
		group.Go(func() error {
			helpText, fetchErr := builder.provider.Fetch(ctx, request.path)
			responses[requestIndex] = fetchResult{helpText: helpText, fetchErr: fetchErr}
			return nil
		})
	}
	_ = group.Wait()
	report.Requests += len(requests)

	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}
	results := make(map[string]fetchResult, len(requests))
	for requestIndex, request := range requests {
		results[request.key] = responses[requestIndex]
	}
	return results, nil
}

// apply attaches the content of a command's own help to it. Inherited flags are
// not copied; aliases announced by the command itself are merged.
func (builder *Builder) apply(command *types.Command, document parser.Document) {
	command.Flags = alias.UnionFlags(command.Flags, document.LocalFlags)
	command.Aliases = append(command.Aliases, document.Names...)
	if document.Usage != "" {
		command.Usage = document.Usage
	}
	if command.Description == "" {
		command.Description = document.Description
	}
	subcommands := document.Commands()
	for index := range subcommands {
		subcommands[index].Depth = command.Depth + 1
	}
	command.Subcommands = append(command.Subcommands, subcommands...)
	*command = builder.options.Resolver.Resolve([]types.Command{*command})[0]
}

func (builder *Builder) recordMalformed(report *Report, commandPath []string, malformedLines []parser.MalformedLineError) {
	for _, malformedLine := range malformedLines {
		builder.logger.Debug(malformedLineMessage,
			zap.String(commandLogField, provider.JoinPath(commandPath)),
			zap.Int(lineLogField, malformedLine.LineNumber),
			zap.String(reasonLogField, malformedLine.Reason))
	}
	report.recordMalformed(commandPath, malformedLines)
}
