package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func TestRegisterBooleanFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		defaultValue bool
		arguments    []string
		expected     bool
		expectError  bool
	}{
		{name: "keeps_default", defaultValue: true, arguments: []string{}, expected: true},
		{name: "bare_flag_sets_true", arguments: []string{"--copy"}, expected: true},
		{name: "equals_false", defaultValue: true, arguments: []string{"--copy=false"}, expected: false},
		{name: "separate_no_literal", defaultValue: true, arguments: []string{"--copy", "no"}, expected: false},
		{name: "separate_on_literal", arguments: []string{"--copy", "on"}, expected: true},
		{name: "program_argument_is_not_consumed", arguments: []string{"--copy", "kubectl"}, expected: true},
		{name: "invalid_literal", arguments: []string{"--copy=maybe"}, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "boolean-test"}
			flagValue := !testCase.defaultValue
			registerBooleanFlag(command.Flags(), &flagValue, copyFlagName, testCase.defaultValue, copyFlagDescription)
			parseErr := command.ParseFlags(normalizeBooleanFlagArguments(command, testCase.arguments))
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected parse error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, flagValue)
			}
		})
	}
}

func TestNormalizeBooleanFlagArgumentsVisitsSubcommands(t *testing.T) {
	t.Parallel()

	rootCommand, _ := createRootCommand(runtimeEnvironment{})
	arguments := []string{"generate", "bd", "--copy", "yes", "--shell", "fish", "--verbose", "off", "--", "--copy", "no"}
	expected := []string{"generate", "bd", "--copy=yes", "--shell", "fish", "--verbose=off", "--", "--copy", "no"}
	if diff := cmp.Diff(expected, normalizeBooleanFlagArguments(rootCommand, arguments)); diff != "" {
		t.Fatalf("normalized arguments mismatch (-want +got):\n%s", diff)
	}
}
