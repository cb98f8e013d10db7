package main_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/temirov/helptree/internal/output"
	"github.com/temirov/helptree/internal/types"
)

const fakeProgramScript = `#!/bin/sh
name="$(basename "$0")"
for argument in "$@"; do
  [ "$argument" = "--help" ] && continue
  name="${name}_${argument}"
done
cat "$(dirname "$0")/help/${name}.txt"
`

var fakeProgramHelp = map[string]string{
	"todo.txt": `A tiny task list.

Usage:
  todo [command]

Available Commands:
  add (a)       Add a task
  list, ls      List tasks
  project       Manage projects

Flags:
  -h, --help          help for todo
      --store string  Task file (default "~/.todo")
`,
	"todo_add.txt": `Add a task

Usage:
  todo add <title> [flags]

Flags:
  -d, --due string   Due date
  -h, --help         help for add

Global Flags:
      --store string  Task file (default "~/.todo")
`,
	"todo_list.txt": `List tasks

Flags:
      --all   Include finished tasks
`,
	"todo_project.txt": `Manage projects

Available Commands:
  archive     Archive a project
  rename/mv   Rename a project
`,
	"todo_project_archive.txt": `Archive a project

Flags:
      --force   Archive with open tasks
`,
	"todo_project_rename.txt": `Rename a project
`,
}

// #nosec G204
func buildBinary(testingHandle *testing.T) string {
	testingHandle.Helper()
	binaryPath := filepath.Join(testingHandle.TempDir(), "helptree_integration_test_binary")

	currentDirectory, directoryError := os.Getwd()
	if directoryError != nil {
		testingHandle.Fatalf("Failed to get current working directory: %v", directoryError)
	}
	moduleRoot := filepath.Dir(filepath.Dir(currentDirectory))

	buildCommand := exec.Command("go", "build", "-o", binaryPath, "./cmd/helptree")
	buildCommand.Dir = moduleRoot
	if outputData, buildErr := buildCommand.CombinedOutput(); buildErr != nil {
		testingHandle.Fatalf("Failed to build binary in %s: %v\nBuild Output:\n%s", moduleRoot, buildErr, string(outputData))
	}
	return binaryPath
}

// #nosec G204
func runCommand(testingHandle *testing.T, binaryPath string, arguments []string, workingDirectory string) (string, string, error) {
	testingHandle.Helper()
	command := exec.Command(binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(), "HOME="+workingDirectory)

	var standardOutputBuffer, standardErrorBuffer bytes.Buffer
	command.Stdout = &standardOutputBuffer
	command.Stderr = &standardErrorBuffer
	runError := command.Run()
	return standardOutputBuffer.String(), standardErrorBuffer.String(), runError
}

// setupFakeProgram writes an executable that prints captured help text for its arguments.
func setupFakeProgram(testingHandle *testing.T) string {
	testingHandle.Helper()
	programDirectory := testingHandle.TempDir()
	helpDirectory := filepath.Join(programDirectory, "help")
	if err := os.Mkdir(helpDirectory, 0o755); err != nil {
		testingHandle.Fatalf("create help directory: %v", err)
	}
	for fileName, content := range fakeProgramHelp {
		if err := os.WriteFile(filepath.Join(helpDirectory, fileName), []byte(content), 0o600); err != nil {
			testingHandle.Fatalf("write %s: %v", fileName, err)
		}
	}
	programPath := filepath.Join(programDirectory, "todo")
	if err := os.WriteFile(programPath, []byte(fakeProgramScript), 0o700); err != nil {
		testingHandle.Fatalf("write program: %v", err)
	}
	return programPath
}

func TestHelptreeAgainstExecutable(testingHandle *testing.T) {
	if runtime.GOOS == "windows" {
		testingHandle.Skip("the fake program is a POSIX shell script")
	}
	if testing.Short() {
		testingHandle.Skip("builds the binary")
	}
	binaryPath := buildBinary(testingHandle)
	programPath := setupFakeProgram(testingHandle)
	workingDirectory := testingHandle.TempDir()

	testingHandle.Run("tree", func(t *testing.T) {
		standardOutput, standardError, runError := runCommand(t, binaryPath, []string{"tree", programPath, "--format", "yaml", "--concurrency", "3"}, workingDirectory)
		if runError != nil {
			t.Fatalf("tree failed: %v\n%s", runError, standardError)
		}
		tree, readError := output.ReadTree(strings.NewReader(standardOutput), types.FormatYAML)
		if readError != nil {
			t.Fatalf("decode tree: %v\n%s", readError, standardOutput)
		}
		testCases := []struct {
			path []string
			flag string
		}{
			{path: []string{"a"}, flag: "due"},
			{path: []string{"ls"}, flag: "all"},
			{path: []string{"project", "archive"}},
			{path: []string{"project", "mv"}},
		}
		for _, testCase := range testCases {
			command, found := tree.Lookup(testCase.path...)
			if !found {
				t.Fatalf("command %v missing from tree:\n%s", testCase.path, standardOutput)
			}
			if testCase.flag == "" {
				continue
			}
			if _, hasFlag := command.Flag(testCase.flag); !hasFlag {
				t.Fatalf("command %v lacks --%s:\n%s", testCase.path, testCase.flag, standardOutput)
			}
		}
		if storeFlag, hasStore := tree.GlobalFlag("store"); !hasStore || storeFlag.Default == nil || *storeFlag.Default != "~/.todo" {
			t.Fatalf("unexpected --store global flag: %+v", tree.GlobalFlags)
		}
	})

	testingHandle.Run("generate", func(t *testing.T) {
		scriptPath := filepath.Join(workingDirectory, "todo.bash")
		_, standardError, runError := runCommand(t, binaryPath, []string{"generate", programPath, "--shell", "bash", "--output", scriptPath}, workingDirectory)
		if runError != nil {
			t.Fatalf("generate failed: %v\n%s", runError, standardError)
		}
		script, readError := os.ReadFile(scriptPath)
		if readError != nil {
			t.Fatalf("read script: %v", readError)
		}
		expected := "complete -o default -F _todo todo"
		if !strings.Contains(string(script), expected) {
			t.Fatalf("script lacks %q:\n%s", expected, script)
		}
	})

	testingHandle.Run("missing program", func(t *testing.T) {
		_, standardError, runError := runCommand(t, binaryPath, []string{"tree", filepath.Join(workingDirectory, "absent")}, workingDirectory)
		if runError == nil {
			t.Fatalf("expected a failure for a missing program")
		}
		if !strings.Contains(standardError, "root help text unavailable") {
			t.Fatalf("unexpected error output:\n%s", standardError)
		}
	})
}
