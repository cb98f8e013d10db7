package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName         = "bool"
	booleanFlagImplicitLiteral  = "true"
	booleanFlagAcceptedListing  = "true, false, yes, no, on, off, 1, 0"
	booleanFlagInvalidFormat    = "invalid boolean value %q for --%s; accepted values: %s"
	flagTerminator              = "--"
	longFlagPrefix              = "--"
	flagValueSeparator          = "="
	normalizedBooleanFlagFormat = "--%s=%s"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// parseBooleanLiteral interprets the literals accepted by boolean flags; empty input means true.
func parseBooleanLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	parsed, known := booleanFlagLiterals[normalized]
	return parsed, known
}

// booleanFlagValue is a pflag.Value accepting yes/no/on/off in addition to strconv literals.
type booleanFlagValue struct {
	target *bool
	name   string
}

func (value *booleanFlagValue) Set(input string) error {
	parsed, known := parseBooleanLiteral(input)
	if !known {
		return fmt.Errorf(booleanFlagInvalidFormat, input, value.name, booleanFlagAcceptedListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

// registerBooleanFlag adds a boolean flag that may be given bare, as --name=value, or as --name value.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&booleanFlagValue{target: target, name: name}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = booleanFlagImplicitLiteral
}

// normalizeBooleanFlagArguments joins "--name literal" pairs of boolean flags into
// "--name=literal"; pflag never consumes a separate value for a flag with NoOptDefVal.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == flagTerminator {
			return append(normalized, arguments[index:]...)
		}
		normalized = append(normalized, argument)
		if !strings.HasPrefix(argument, longFlagPrefix) || strings.Contains(argument, flagValueSeparator) {
			continue
		}
		flagName := strings.TrimPrefix(argument, longFlagPrefix)
		if _, isBoolean := booleanFlags[flagName]; !isBoolean || index+1 >= len(arguments) {
			continue
		}
		nextArgument := arguments[index+1]
		if strings.TrimSpace(nextArgument) == "" {
			continue
		}
		if _, known := parseBooleanLiteral(nextArgument); known {
			normalized[len(normalized)-1] = fmt.Sprintf(normalizedBooleanFlagFormat, flagName, nextArgument)
			index++
		}
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if flag.Value.Type() == booleanFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}
