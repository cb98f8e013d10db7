// Package generator renders shell completion scripts from a command tree.
package generator

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/temirov/helptree/internal/types"
)

const (
	templatePattern          = "templates/*.tmpl"
	templateFileFormat       = "%s.tmpl"
	unsupportedShellFormat   = "%w: %q (supported: %s)"
	renderTemplateFormat     = "render %s completion: %w"
	supportedShellsSeparator = ", "
)

// ErrUnsupportedShell is returned for a shell without a completion template.
var ErrUnsupportedShell = errors.New("unsupported shell")

//go:embed templates/*.tmpl
var templateFiles embed.FS

var scriptTemplates = template.Must(template.New("completion").ParseFS(templateFiles, templatePattern))

// Generator writes the completion script of one shell.
type Generator interface {
	Generate(writer io.Writer, tree types.CommandTree) error
}

type scriptGenerator struct {
	shell   string
	prepare func(completionModel) any
}

// SupportedShells lists the shells ForShell accepts.
func SupportedShells() []string {
	return []string{types.ShellBash, types.ShellFish}
}

// ForShell returns the generator of shell.
func ForShell(shell string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(shell)) {
	case types.ShellBash:
		return scriptGenerator{shell: types.ShellBash, prepare: newBashScript}, nil
	case types.ShellFish:
		return scriptGenerator{shell: types.ShellFish, prepare: newFishScript}, nil
	default:
		return nil, fmt.Errorf(unsupportedShellFormat, ErrUnsupportedShell, shell, strings.Join(SupportedShells(), supportedShellsSeparator))
	}
}

// Generate writes the completion script of shell for tree.
func Generate(writer io.Writer, shell string, tree types.CommandTree) error {
	generator, generatorError := ForShell(shell)
	if generatorError != nil {
		return generatorError
	}
	return generator.Generate(writer, tree)
}

func (generator scriptGenerator) Generate(writer io.Writer, tree types.CommandTree) error {
	data := generator.prepare(newCompletionModel(tree))
	if executeError := scriptTemplates.ExecuteTemplate(writer, fmt.Sprintf(templateFileFormat, generator.shell), data); executeError != nil {
		return fmt.Errorf(renderTemplateFormat, generator.shell, executeError)
	}
	return nil
}
