package output_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/temirov/helptree/internal/output"
	"github.com/temirov/helptree/internal/types"
)

const rawTreeExpected = `bd: Issue tracker
├── usage: bd [command]
├── Working With Issues
│   ├── create (new): Create a new issue
│   │   └── -p, --priority string: Priority (default "2")
│   └── epic: Epic management
│       └── status: Show status
└── Global Flags
    └── -v, --verbose: Verbose output
`

func stringPointer(value string) *string {
	return &value
}

func sampleTree() types.CommandTree {
	return types.CommandTree{
		Program:     "bd",
		Description: "Issue tracker",
		Usage:       "bd [command]",
		Groups: []types.CommandGroup{
			{
				Name: "Working With Issues",
				Commands: []types.Command{
					{
						Name:        "create",
						Aliases:     []string{"new"},
						Description: "Create a new issue",
						Flags: []types.Flag{
							{Short: "p", Long: "priority", ValueType: "string", Default: stringPointer("2"), Description: "Priority"},
						},
					},
					{
						Name:        "epic",
						Description: "Epic management",
						Subcommands: []types.Command{{Name: "status", Description: "Show status", Depth: 1}},
					},
				},
			},
		},
		GlobalFlags: []types.Flag{{Short: "v", Long: "verbose", Description: "Verbose output"}},
	}
}

func TestWriteTreeRaw(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	if err := output.WriteTree(&buffer, types.FormatRaw, sampleTree()); err != nil {
		t.Fatalf("WriteTree error: %v", err)
	}
	if diff := cmp.Diff(rawTreeExpected, buffer.String()); diff != "" {
		t.Fatalf("raw tree mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistedTreeRoundTrip(t *testing.T) {
	t.Parallel()

	tree := sampleTree()
	tree.GlobalFlags = append(tree.GlobalFlags, types.Flag{Long: "prefix", ValueType: "string", Default: stringPointer("")})

	for _, format := range output.ReadableFormats() {
		format := format
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			var buffer bytes.Buffer
			if err := output.WriteTree(&buffer, format, tree); err != nil {
				t.Fatalf("WriteTree(%s) error: %v", format, err)
			}
			decoded, readError := output.ReadTree(&buffer, format)
			if readError != nil {
				t.Fatalf("ReadTree(%s) error: %v", format, readError)
			}
			options := cmp.Options{cmpopts.EquateEmpty(), cmpopts.IgnoreFields(types.CommandTree{}, "XMLName")}
			if diff := cmp.Diff(tree, decoded, options); diff != "" {
				t.Fatalf("%s round trip mismatch (-want +got):\n%s", format, diff)
			}
		})
	}
}

func TestNormalizeFormat(t *testing.T) {
	t.Parallel()

	if normalized, err := output.NormalizeFormat(" YAML "); err != nil || normalized != types.FormatYAML {
		t.Fatalf("NormalizeFormat(YAML) = %q, %v", normalized, err)
	}
	if _, err := output.NormalizeFormat("toml"); !errors.Is(err, output.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := output.ReadTree(strings.NewReader(""), types.FormatRaw); !errors.Is(err, output.ErrUnsupportedFormat) {
		t.Fatalf("raw trees must not be readable, got %v", err)
	}
}

func TestLoadTreeDetectsFormatFromExtension(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		fileName string
		format   string
	}{
		{fileName: "tree.json", format: types.FormatJSON},
		{fileName: "tree.yml", format: types.FormatYAML},
		{fileName: "tree.YAML", format: types.FormatYAML},
		{fileName: "tree.xml", format: types.FormatXML},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.fileName, func(t *testing.T) {
			t.Parallel()
			if detected := output.FormatForPath(testCase.fileName); detected != testCase.format {
				t.Fatalf("FormatForPath(%s) = %s, want %s", testCase.fileName, detected, testCase.format)
			}
			var buffer bytes.Buffer
			if err := output.WriteTree(&buffer, testCase.format, sampleTree()); err != nil {
				t.Fatalf("WriteTree error: %v", err)
			}
			treePath := filepath.Join(t.TempDir(), testCase.fileName)
			if err := os.WriteFile(treePath, buffer.Bytes(), 0o600); err != nil {
				t.Fatalf("write tree: %v", err)
			}
			loaded, loadError := output.LoadTree(treePath)
			if loadError != nil {
				t.Fatalf("LoadTree error: %v", loadError)
			}
			if _, found := loaded.Lookup("epic", "status"); !found {
				t.Fatalf("loaded tree lost nested commands: %+v", loaded)
			}
		})
	}
}

func TestLoadTreeMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := output.LoadTree(filepath.Join(t.TempDir(), "absent.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}
