package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/temirov/helptree/internal/types"
)

const (
	longFlagPrefix       = "--"
	shortFlagPrefix      = "-"
	optionalValueOpening = "[="
	quoteCharacter       = `"`
)

var (
	shortFlagExpression = regexp.MustCompile(`^-([^-\s,]),?$`)
	valueTypeExpression = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)
	// defaultExpression matches (default "V"), (default: V) and cobra's bare (default V)
	// at the very end of a description. Unquoted values may hold one level of parentheses.
	defaultExpression = regexp.MustCompile(`\s*\(default(?::\s*|\s+)("(?:[^"\\]|\\.)*"|(?:[^()]|\([^()]*\))*?)\)\s*$`)
)

// knownValueTypes lists the pflag type names accepted when a value type was
// pushed past the description boundary by misaligned padding.
var knownValueTypes = map[string]struct{}{
	"string": {}, "strings": {}, "stringArray": {}, "stringSlice": {},
	"int": {}, "ints": {}, "int32": {}, "int64": {}, "uint": {}, "uint8": {}, "uint16": {}, "uint32": {}, "uint64": {},
	"float": {}, "float32": {}, "float64": {}, "duration": {}, "count": {}, "bool": {}, "bools": {},
}

// ParseFlagLine classifies and splits a raw help line before parsing it as a flag.
func ParseFlagLine(line string) (types.Flag, error) {
	nameField, description := SplitDescription(strings.TrimSpace(line))
	return ParseFlagEntry(nameField, description)
}

// ParseFlagEntry builds a Flag from the name field and description of a flag entry.
// The returned error is a MalformedLineError without line number.
func ParseFlagEntry(nameField, description string) (types.Flag, error) {
	tokens := strings.Fields(nameField)
	var flag types.Flag
	tokenIndex := 0

	if tokenIndex < len(tokens) {
		if shortMatch := shortFlagExpression.FindStringSubmatch(tokens[tokenIndex]); shortMatch != nil {
			flag.Short = shortMatch[1]
			tokenIndex++
		}
	}
	if tokenIndex >= len(tokens) || !strings.HasPrefix(tokens[tokenIndex], longFlagPrefix) {
		return types.Flag{}, MalformedLineError{Text: nameField, Reason: ReasonMissingLongFlag}
	}
	flag.Long = strings.TrimPrefix(stripOptionalValue(tokens[tokenIndex]), longFlagPrefix)
	if flag.Long == "" || strings.HasPrefix(flag.Long, shortFlagPrefix) {
		return types.Flag{}, MalformedLineError{Text: nameField, Reason: ReasonMissingLongFlag}
	}
	tokenIndex++

	if tokenIndex < len(tokens) {
		candidate := stripOptionalValue(tokens[tokenIndex])
		if !valueTypeExpression.MatchString(candidate) {
			return types.Flag{}, MalformedLineError{Text: nameField, Reason: ReasonUnexpectedToken}
		}
		flag.ValueType = candidate
		tokenIndex++
	}
	if tokenIndex < len(tokens) {
		return types.Flag{}, MalformedLineError{Text: nameField, Reason: ReasonUnexpectedToken}
	}

	if flag.ValueType == "" {
		head, rest := SplitDescription(description)
		if _, known := knownValueTypes[head]; known && rest != "" {
			flag.ValueType = head
			description = rest
		}
	}

	flag.Description, flag.Default = extractDefault(description)
	return flag, nil
}

// stripOptionalValue drops pflag's "[=value]" no-argument suffix from a token.
func stripOptionalValue(token string) string {
	openingIndex := strings.Index(token, optionalValueOpening)
	if openingIndex < 0 || !strings.HasSuffix(token, "]") {
		return token
	}
	return token[:openingIndex]
}

// extractDefault strips a trailing default annotation from description.
func extractDefault(description string) (string, *string) {
	match := defaultExpression.FindStringSubmatchIndex(description)
	if match == nil {
		return strings.TrimSpace(description), nil
	}
	value := unquote(strings.TrimSpace(description[match[2]:match[3]]))
	return strings.TrimSpace(description[:match[0]]), &value
}

func unquote(value string) string {
	if len(value) < 2 || !strings.HasPrefix(value, quoteCharacter) || !strings.HasSuffix(value, quoteCharacter) {
		return value
	}
	if unquoted, unquoteError := strconv.Unquote(value); unquoteError == nil {
		return unquoted
	}
	return strings.Trim(value, quoteCharacter)
}
