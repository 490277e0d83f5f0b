package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_TEST_TOKEN", "xoxb-secret")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expands set variable",
			input:    "token: {{.EXPAND_TEST_TOKEN}}",
			expected: "token: xoxb-secret",
		},
		{
			name:     "missing variable becomes empty",
			input:    "token: '{{.EXPAND_TEST_UNSET_VAR}}'",
			expected: "token: ''",
		},
		{
			name:     "dollar signs pass through",
			input:    `pattern: "^secret.*$"`,
			expected: `pattern: "^secret.*$"`,
		},
		{
			name:     "no template syntax unchanged",
			input:    "port: 8000",
			expected: "port: 8000",
		},
		{
			name:     "malformed template returns original",
			input:    "value: {{.BROKEN",
			expected: "value: {{.BROKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(ExpandEnv([]byte(tt.input))))
		})
	}
}
