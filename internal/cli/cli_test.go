package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/helptree/internal/builder"
	"github.com/temirov/helptree/internal/generator"
	"github.com/temirov/helptree/internal/output"
	"github.com/temirov/helptree/internal/services/clipboard"
	"github.com/temirov/helptree/internal/types"
	"github.com/temirov/helptree/internal/utils"
)

const fixturesDirectoryName = "fixtures"

var helpFixtures = map[string]string{
	"bd.txt": `Issues chained together like beads.

Usage:
  bd [flags]
  bd [command]

Working With Issues:
  create, new      Create a new issue
  epic             Epic management commands

Flags:
      --db string   Database path (default: auto-discover .beads/*.db)
  -h, --help        help for bd
  -v, --verbose     Enable verbose/debug output

Use "bd [command] --help" for more information about a command.
`,
	"bd_create.txt": `Create a new issue

Usage:
  bd create [title] [flags]

Aliases:
  create, new

Flags:
  -h, --help              help for create
  -p, --priority string   Priority (0-4 or P0-P4, 0=highest) (default "2")
`,
	"bd_epic.txt": `Epic management commands

Usage:
  bd epic [command]

Available Commands:
  close-eligible  Close epics where all children are complete
  status          Show epic completion status

Flags:
  -h, --help   help for epic
`,
	"bd_epic_close-eligible.txt": `Close epics where all children are complete

Flags:
      --dry-run   Preview without closing
`,
	"bd_epic_status.txt": `Show epic completion status

Flags:
      --here   only the current epic
`,
}

// newWorkspace creates a working directory holding help fixtures and isolates the home directory.
func newWorkspace(t *testing.T) string {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)

	workingDirectory := t.TempDir()
	fixturesDirectory := filepath.Join(workingDirectory, fixturesDirectoryName)
	if err := os.Mkdir(fixturesDirectory, 0o755); err != nil {
		t.Fatalf("create fixtures directory: %v", err)
	}
	for fileName, content := range helpFixtures {
		if err := os.WriteFile(filepath.Join(fixturesDirectory, fileName), []byte(content), 0o600); err != nil {
			t.Fatalf("write fixture %s: %v", fileName, err)
		}
	}
	return workingDirectory
}

type cliResult struct {
	standardOutput string
	standardError  string
	err            error
}

func runCLI(workingDirectory string, copier clipboard.Copier, arguments ...string) cliResult {
	var standardOutput, standardError bytes.Buffer
	rootCommand, session := createRootCommand(runtimeEnvironment{
		standardOutput:   &standardOutput,
		standardError:    &standardError,
		workingDirectory: workingDirectory,
		copier:           copier,
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	err := executeRootCommand(context.Background(), rootCommand, session)
	return cliResult{standardOutput: standardOutput.String(), standardError: standardError.String(), err: err}
}

func TestTreeCommandPrintsJSONTree(t *testing.T) {
	workingDirectory := newWorkspace(t)

	result := runCLI(workingDirectory, nil, "tree", "bd", "--fixtures", fixturesDirectoryName)
	if result.err != nil {
		t.Fatalf("tree error: %v\n%s", result.err, result.standardError)
	}
	tree, readError := output.ReadTree(strings.NewReader(result.standardOutput), types.FormatJSON)
	if readError != nil {
		t.Fatalf("decode tree: %v\n%s", readError, result.standardOutput)
	}
	if _, found := tree.Lookup("new"); !found {
		t.Fatalf("alias new did not resolve: %+v", tree)
	}
	status, found := tree.Lookup("epic", "status")
	if !found {
		t.Fatalf("nested command epic status missing: %+v", tree)
	}
	if _, hasFlag := status.Flag("here"); !hasFlag {
		t.Fatalf("epic status lost its flags: %+v", status)
	}
	if _, hasGlobal := tree.GlobalFlag("db"); !hasGlobal {
		t.Fatalf("global flag --db missing: %+v", tree.GlobalFlags)
	}
	if !strings.Contains(result.standardError, treeBuiltMessage) {
		t.Fatalf("expected a build summary on standard error, got %q", result.standardError)
	}
}

func TestTreeCommandHonorsConfiguration(t *testing.T) {
	workingDirectory := newWorkspace(t)
	configuration := "build:\n  fixtures: " + fixturesDirectoryName + "\ntree:\n  format: raw\n"
	if err := os.WriteFile(filepath.Join(workingDirectory, utils.LocalConfigFileName), []byte(configuration), 0o600); err != nil {
		t.Fatalf("write configuration: %v", err)
	}

	configured := runCLI(workingDirectory, nil, "t", "bd")
	if configured.err != nil {
		t.Fatalf("tree error: %v", configured.err)
	}
	if !strings.HasPrefix(configured.standardOutput, "bd: Issues chained together like beads.\n") {
		t.Fatalf("expected raw output, got:\n%s", configured.standardOutput)
	}

	overridden := runCLI(workingDirectory, nil, "tree", "bd", "--format", "yaml")
	if overridden.err != nil {
		t.Fatalf("tree error: %v", overridden.err)
	}
	if !strings.HasPrefix(overridden.standardOutput, "program: bd\n") {
		t.Fatalf("expected the flag to override the configured format, got:\n%s", overridden.standardOutput)
	}
}

func TestTreeCommandFailures(t *testing.T) {
	workingDirectory := newWorkspace(t)

	missing := runCLI(workingDirectory, nil, "tree", "gh", "--fixtures", fixturesDirectoryName)
	if !errors.Is(missing.err, builder.ErrRootHelpUnavailable) || !errors.Is(missing.err, os.ErrNotExist) {
		t.Fatalf("expected an unavailable root help error, got %v", missing.err)
	}

	badFormat := runCLI(workingDirectory, nil, "tree", "bd", "--fixtures", fixturesDirectoryName, "--format", "toml")
	if !errors.Is(badFormat.err, output.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", badFormat.err)
	}

	negativeRetries := runCLI(workingDirectory, nil, "tree", "bd", "--retries", "-1")
	if negativeRetries.err == nil {
		t.Fatalf("expected an error for negative retries")
	}
}

func TestTreeCommandCopiesOutput(t *testing.T) {
	workingDirectory := newWorkspace(t)
	recorder := &clipboard.Recorder{}

	result := runCLI(workingDirectory, recorder, "tree", "bd", "--fixtures", fixturesDirectoryName, "--copy", "yes")
	if result.err != nil {
		t.Fatalf("tree error: %v", result.err)
	}
	if len(recorder.Copies) != 1 || recorder.Copies[0] != result.standardOutput {
		t.Fatalf("expected the printed tree on the clipboard, got %d copies", len(recorder.Copies))
	}
}

func TestGenerateCommandWritesScript(t *testing.T) {
	workingDirectory := newWorkspace(t)
	recorder := &clipboard.Recorder{}

	result := runCLI(workingDirectory, recorder,
		"generate", "bd", "--fixtures", fixturesDirectoryName, "--shell", "fish", "--output", "bd.fish", "--copy")
	if result.err != nil {
		t.Fatalf("generate error: %v\n%s", result.err, result.standardError)
	}
	if result.standardOutput != "" {
		t.Fatalf("expected nothing on standard output, got %q", result.standardOutput)
	}
	script, readError := os.ReadFile(filepath.Join(workingDirectory, "bd.fish"))
	if readError != nil {
		t.Fatalf("read script: %v", readError)
	}
	if !strings.Contains(string(script), "function __bd_path") {
		t.Fatalf("unexpected fish script:\n%s", script)
	}
	if len(recorder.Copies) != 1 || recorder.Copies[0] != string(script) {
		t.Fatalf("expected the written script on the clipboard")
	}
}

func TestGenerateCommandLoadsSavedTree(t *testing.T) {
	workingDirectory := newWorkspace(t)

	saved := runCLI(workingDirectory, nil, "tree", "bd", "--fixtures", fixturesDirectoryName, "--format", "yaml")
	if saved.err != nil {
		t.Fatalf("tree error: %v", saved.err)
	}
	if err := os.WriteFile(filepath.Join(workingDirectory, "bd.yaml"), []byte(saved.standardOutput), 0o600); err != nil {
		t.Fatalf("write saved tree: %v", err)
	}

	result := runCLI(workingDirectory, nil, "g", "--from", "bd.yaml")
	if result.err != nil {
		t.Fatalf("generate error: %v", result.err)
	}
	for _, fragment := range []string{`"/create"|"/new") path="/create" ;;`, "complete -o default -F _bd bd"} {
		if !strings.Contains(result.standardOutput, fragment) {
			t.Fatalf("bash script is missing %q:\n%s", fragment, result.standardOutput)
		}
	}
}

func TestGenerateCommandArgumentErrors(t *testing.T) {
	workingDirectory := newWorkspace(t)

	testCases := []struct {
		name      string
		arguments []string
		expected  error
	}{
		{name: "missing_program", arguments: []string{"generate"}, expected: errMissingProgram},
		{name: "unknown_shell", arguments: []string{"generate", "bd", "--shell", "tcsh"}, expected: generator.ErrUnsupportedShell},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := runCLI(workingDirectory, nil, testCase.arguments...); !errors.Is(result.err, testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, result.err)
			}
		})
	}

	if result := runCLI(workingDirectory, nil, "generate", "bd", "--from", "bd.yaml"); result.err == nil {
		t.Fatalf("expected an error when both a program and --from are given")
	}
}

func TestInitCommand(t *testing.T) {
	workingDirectory := newWorkspace(t)
	expectedPath := filepath.Join(workingDirectory, utils.LocalConfigFileName)

	first := runCLI(workingDirectory, nil, "init")
	if first.err != nil {
		t.Fatalf("init error: %v", first.err)
	}
	if !strings.Contains(first.standardOutput, expectedPath) {
		t.Fatalf("expected the configuration path in the output, got %q", first.standardOutput)
	}
	if second := runCLI(workingDirectory, nil, "init"); second.err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	if forced := runCLI(workingDirectory, nil, "init", "--force"); forced.err != nil {
		t.Fatalf("init --force error: %v", forced.err)
	}
}

func TestVersionFlag(t *testing.T) {
	workingDirectory := newWorkspace(t)

	result := runCLI(workingDirectory, nil, "--version")
	if result.err != nil {
		t.Fatalf("--version error: %v", result.err)
	}
	if !strings.HasPrefix(result.standardOutput, "helptree version: ") {
		t.Fatalf("unexpected version output %q", result.standardOutput)
	}
}

func TestLogFileReceivesDebugDiagnostics(t *testing.T) {
	workingDirectory := newWorkspace(t)
	logPath := filepath.Join(t.TempDir(), "helptree.log")

	result := runCLI(workingDirectory, nil, "tree", "bd", "--fixtures", fixturesDirectoryName, "--verbose", "--log-file", logPath)
	if result.err != nil {
		t.Fatalf("tree error: %v", result.err)
	}
	content, readError := os.ReadFile(logPath)
	if readError != nil {
		t.Fatalf("read log file: %v", readError)
	}
	if !strings.Contains(string(content), "fetching help level") || !strings.Contains(result.standardError, "DEBUG") {
		t.Fatalf("expected debug diagnostics in the log file and console, got:\n%s", content)
	}
}

func TestLogFileIsReleasedWhenCommandFails(t *testing.T) {
	workingDirectory := newWorkspace(t)
	logPath := filepath.Join(t.TempDir(), "helptree.log")
	unwritableScript := filepath.Join(workingDirectory, "absent", "bd.bash")

	result := runCLI(workingDirectory, nil,
		"generate", "bd", "--fixtures", fixturesDirectoryName, "--output", unwritableScript, "--verbose", "--log-file", logPath)
	if result.err == nil {
		t.Fatalf("expected the script write to fail")
	}
	content, readError := os.ReadFile(logPath)
	if readError != nil || !strings.Contains(string(content), "fetching help level") {
		t.Fatalf("expected diagnostics in the log file, got %q (%v)", content, readError)
	}
	descriptors, listError := os.ReadDir("/proc/self/fd")
	if listError != nil {
		t.Skip("open descriptors are not observable on this platform")
	}
	for _, descriptor := range descriptors {
		if target, linkError := os.Readlink(filepath.Join("/proc/self/fd", descriptor.Name())); linkError == nil && target == logPath {
			t.Fatalf("log file %s is still open after a failed command", logPath)
		}
	}
}

func TestSubcommandNames(t *testing.T) {
	rootCommand, _ := createRootCommand(runtimeEnvironment{})
	for _, name := range []string{types.TreeCommandName, types.GenerateCommandName, types.InitCommandName} {
		subcommand, _, err := rootCommand.Find([]string{name})
		if err != nil || subcommand.Name() != name {
			t.Fatalf("subcommand %q not registered: %v", name, err)
		}
	}
}
