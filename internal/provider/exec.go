package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	// DefaultHelpFlag is appended to every command path.
	DefaultHelpFlag = "--help"
	// DefaultTimeout bounds a single help invocation.
	DefaultTimeout = 5 * time.Second
	// DefaultRetryBackoff is the first delay of the fibonacci retry schedule.
	DefaultRetryBackoff = 100 * time.Millisecond

	processWaitDelay = time.Second

	helpTimeoutMessage     = "help invocation timed out"
	emptyHelpMessage       = "help invocation produced no output"
	startCommandFormat     = "run %s: %w"
	timeoutDetailFormat    = "%w: %s after %s"
	emptyHelpDetailFormat  = "%w: %s"
	attemptLogMessage      = "requesting help text"
	attemptFailedMessage   = "help attempt failed"
	commandPathLogField    = "command"
	attemptTimeoutLogField = "timeout"
)

var (
	// ErrHelpTimeout marks an invocation that exceeded its timeout.
	ErrHelpTimeout = errors.New(helpTimeoutMessage)
	// ErrEmptyHelp marks an invocation that printed nothing on stdout or stderr.
	ErrEmptyHelp = errors.New(emptyHelpMessage)
)

// pagerEnvironment keeps programs from waiting on an interactive pager or emitting color codes.
var pagerEnvironment = []string{
	"PAGER=cat",
	"GIT_PAGER=cat",
	"MANPAGER=cat",
	"TERM=dumb",
	"NO_COLOR=1",
	"GIT_TERMINAL_PROMPT=0",
}

// ExecOptions configures ExecProvider.
type ExecOptions struct {
	HelpFlag     string
	Timeout      time.Duration
	Retries      uint64
	RetryBackoff time.Duration
	Environment  []string
	Logger       *zap.Logger
}

// ExecProvider obtains help text by running "<program> <subcommands...> --help".
type ExecProvider struct {
	options ExecOptions
	logger  *zap.Logger
}

// NewExecProvider constructs an ExecProvider, filling unset options with defaults.
func NewExecProvider(options ExecOptions) *ExecProvider {
	if strings.TrimSpace(options.HelpFlag) == "" {
		options.HelpFlag = DefaultHelpFlag
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	if options.RetryBackoff <= 0 {
		options.RetryBackoff = DefaultRetryBackoff
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecProvider{options: options, logger: logger}
}

// Fetch implements Provider. Timeouts and empty output are retried with a
// fibonacci backoff; a program that cannot be started fails immediately.
func (provider *ExecProvider) Fetch(ctx context.Context, commandPath []string) (string, error) {
	if len(commandPath) == 0 {
		return "", ErrEmptyCommandPath
	}
	program := commandPath[0]
	var arguments []string
	for _, segment := range commandPath[1:] {
		arguments = append(arguments, strings.Fields(segment)...)
	}
	arguments = append(arguments, provider.options.HelpFlag)

	backoff := retry.WithMaxRetries(provider.options.Retries, retry.NewFibonacci(provider.options.RetryBackoff))
	var helpText string
	retryError := retry.Do(ctx, backoff, func(attemptContext context.Context) error {
		provider.logger.Debug(attemptLogMessage,
			zap.String(commandPathLogField, JoinPath(commandPath)),
			zap.Duration(attemptTimeoutLogField, provider.options.Timeout))
		text, runError := provider.runOnce(attemptContext, program, arguments)
		if runError != nil {
			provider.logger.Debug(attemptFailedMessage, zap.String(commandPathLogField, JoinPath(commandPath)), zap.Error(runError))
			if errors.Is(runError, ErrHelpTimeout) || errors.Is(runError, ErrEmptyHelp) {
				return retry.RetryableError(runError)
			}
			return runError
		}
		helpText = text
		return nil
	})
	if retryError != nil {
		return "", retryError
	}
	return helpText, nil
}

func (provider *ExecProvider) runOnce(ctx context.Context, program string, arguments []string) (string, error) {
	attemptContext, cancel := context.WithTimeout(ctx, provider.options.Timeout)
	defer cancel()

	// #nosec G204
	command := exec.CommandContext(attemptContext, program, arguments...)
	command.Env = append(append(os.Environ(), pagerEnvironment...), provider.options.Environment...)
	var standardOutput, standardError bytes.Buffer
	command.Stdout = &standardOutput
	command.Stderr = &standardError
	command.WaitDelay = processWaitDelay

	runError := command.Run()
	invocation := JoinPath(append([]string{program}, arguments...))
	if errors.Is(attemptContext.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf(timeoutDetailFormat, ErrHelpTimeout, invocation, provider.options.Timeout)
	}

	// cobra prints help on stdout and falls back to stderr for usage errors.
	output := standardOutput.String()
	if strings.TrimSpace(output) == "" {
		output = standardError.String()
	}
	if strings.TrimSpace(output) != "" {
		return output, nil
	}
	if runError != nil && command.ProcessState == nil {
		return "", fmt.Errorf(startCommandFormat, invocation, runError)
	}
	return "", fmt.Errorf(emptyHelpDetailFormat, ErrEmptyHelp, invocation)
}

var _ Provider = (*ExecProvider)(nil)
