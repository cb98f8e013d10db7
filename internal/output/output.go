// Package output renders and reads persisted command trees.
package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/helptree/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
	yamlIndent   = 2

	xmlHeader = xml.Header

	unsupportedFormatFormat = "%w: %q (supported: %s)"
	encodeTreeFormat        = "encode %s tree: %w"
	decodeTreeFormat        = "decode %s tree: %w"
	readTreeFileFormat      = "read tree file %s: %w"
	formatListSeparator     = ", "

	jsonExtension = ".json"
	yamlExtension = ".yaml"
	ymlExtension  = ".yml"
	xmlExtension  = ".xml"
)

// ErrUnsupportedFormat is returned for an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// SupportedFormats lists the formats WriteTree accepts.
func SupportedFormats() []string {
	return []string{types.FormatRaw, types.FormatJSON, types.FormatYAML, types.FormatXML}
}

// ReadableFormats lists the formats ReadTree accepts.
func ReadableFormats() []string {
	return []string{types.FormatJSON, types.FormatYAML, types.FormatXML}
}

// NormalizeFormat lowercases format and reports whether WriteTree supports it.
func NormalizeFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	for _, supported := range SupportedFormats() {
		if normalized == supported {
			return normalized, nil
		}
	}
	return "", fmt.Errorf(unsupportedFormatFormat, ErrUnsupportedFormat, format, strings.Join(SupportedFormats(), formatListSeparator))
}

// WriteTree writes tree to writer in the requested format.
func WriteTree(writer io.Writer, format string, tree types.CommandTree) error {
	normalized, formatError := NormalizeFormat(format)
	if formatError != nil {
		return formatError
	}
	if normalized == types.FormatRaw {
		WriteTreeRaw(writer, tree)
		return nil
	}
	var rendered string
	var renderError error
	switch normalized {
	case types.FormatJSON:
		rendered, renderError = RenderJSON(tree)
	case types.FormatYAML:
		rendered, renderError = RenderYAML(tree)
	case types.FormatXML:
		rendered, renderError = RenderXML(tree)
	}
	if renderError != nil {
		return fmt.Errorf(encodeTreeFormat, normalized, renderError)
	}
	_, writeError := io.WriteString(writer, rendered)
	return writeError
}

// RenderJSON marshals tree as indented JSON.
func RenderJSON(tree types.CommandTree) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(tree, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded) + "\n", nil
}

// RenderYAML marshals tree as YAML.
func RenderYAML(tree types.CommandTree) (string, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndent)
	if yamlEncodeError := encoder.Encode(tree); yamlEncodeError != nil {
		return "", yamlEncodeError
	}
	if closeError := encoder.Close(); closeError != nil {
		return "", closeError
	}
	return buffer.String(), nil
}

// RenderXML marshals tree as an XML document.
func RenderXML(tree types.CommandTree) (string, error) {
	encoded, xmlMarshalError := xml.MarshalIndent(tree, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded) + "\n", nil
}

// ReadTree decodes a tree previously written with WriteTree.
func ReadTree(reader io.Reader, format string) (types.CommandTree, error) {
	var tree types.CommandTree
	var decodeError error
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case types.FormatJSON:
		decodeError = json.NewDecoder(reader).Decode(&tree)
	case types.FormatYAML:
		decodeError = yaml.NewDecoder(reader).Decode(&tree)
	case types.FormatXML:
		decodeError = xml.NewDecoder(reader).Decode(&tree)
	default:
		return types.CommandTree{}, fmt.Errorf(unsupportedFormatFormat, ErrUnsupportedFormat, format, strings.Join(ReadableFormats(), formatListSeparator))
	}
	if decodeError != nil {
		return types.CommandTree{}, fmt.Errorf(decodeTreeFormat, normalized, decodeError)
	}
	return tree, nil
}

// FormatForPath picks the persisted format from the file extension, JSON by default.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case yamlExtension, ymlExtension:
		return types.FormatYAML
	case xmlExtension:
		return types.FormatXML
	default:
		return types.FormatJSON
	}
}

// LoadTree reads a persisted tree from path.
//
// #nosec G304
func LoadTree(path string) (types.CommandTree, error) {
	file, openError := os.Open(path)
	if openError != nil {
		return types.CommandTree{}, fmt.Errorf(readTreeFileFormat, path, openError)
	}
	defer file.Close()
	return ReadTree(file, FormatForPath(path))
}
