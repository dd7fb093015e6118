package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRegisterBooleanFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name              string
		arguments         []string
		expected          bool
		expectedPositions []string
		expectError       bool
	}{
		{
			name:      "defaults_to_false",
			arguments: []string{},
			expected:  false,
		},
		{
			name:      "sets_true_without_value",
			arguments: []string{"--copy"},
			expected:  true,
		},
		{
			name:      "sets_false_with_equals",
			arguments: []string{"--copy=false"},
			expected:  false,
		},
		{
			name:      "sets_true_with_yes_literal",
			arguments: []string{"--copy", "yes"},
			expected:  true,
		},
		{
			name:              "keeps_directory_after_bare_flag",
			arguments:         []string{"--copy", "frontend"},
			expected:          true,
			expectedPositions: []string{"frontend"},
		},
		{
			name:        "rejects_unknown_literal_with_equals",
			arguments:   []string{"--copy=maybe"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "boolean-test"}
			var flagValue bool
			registerBooleanFlag(command.Flags(), &flagValue, "copy", "copy output")
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
			remaining := command.Flags().Args()
			if len(remaining) != len(testCase.expectedPositions) {
				t.Fatalf("expected positional arguments %v, got %v", testCase.expectedPositions, remaining)
			}
			for index, position := range testCase.expectedPositions {
				if remaining[index] != position {
					t.Fatalf("expected positional %q at %d, got %q", position, index, remaining[index])
				}
			}
		})
	}
}
