package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"suggestions\": [\"Sounds good\"]}\n```",
			expected: `{"suggestions": ["Sounds good"]}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"summary\": \"Meeting moved\"}\n```",
			expected: `{"summary": "Meeting moved"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"refinedDraft": "Hi Sam"}`,
			expected: `{"refinedDraft": "Hi Sam"}`,
		},
		{
			name:     "preamble before JSON object",
			input:    "As requested, here is the JSON:\n{\"summary\": \"Invoice overdue\"}",
			expected: `{"summary": "Invoice overdue"}`,
		},
		{
			name:     "preamble with array inside object",
			input:    "Here are three options: {\"suggestions\": [\"a\", \"b\", \"c\"]}",
			expected: `{"suggestions": ["a", "b", "c"]}`,
		},
		{
			name:     "preamble before JSON array",
			input:    "Here are the items:\n[\"item1\", \"item2\"]",
			expected: `["item1", "item2"]`,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"key\": \"value\"}\n\nLet me know if you need anything else!",
			expected: `{"key": "value"}`,
		},
		{
			name:     "JSON with escaped quotes",
			input:    "Result: {\"message\": \"He said \\\"hello\\\"\"}",
			expected: `{"message": "He said \"hello\""}`,
		},
		{
			name:     "braces inside strings",
			input:    "Output: {\"refinedDraft\": \"Dear {name}, thanks}\"}",
			expected: `{"refinedDraft": "Dear {name}, thanks}"}`,
		},
		{
			name:     "deeply nested",
			input:    "Here: {\"a\": {\"b\": {\"c\": {\"d\": \"deep\"}}}}",
			expected: `{"a": {"b": {"c": {"d": "deep"}}}}`,
		},
		{
			name:     "no JSON at all",
			input:    "The service is overloaded",
			expected: "The service is overloaded",
		},
		{
			name:     "unbalanced JSON left as is",
			input:    "{\"suggestions\": [\"cut off",
			expected: "{\"suggestions\": [\"cut off",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple object", `{"key": "value"}`, `{"key": "value"}`},
		{"nested objects", `{"outer": {"inner": "value"}}`, `{"outer": {"inner": "value"}}`},
		{"object with array", `{"items": [1, 2, 3]}`, `{"items": [1, 2, 3]}`},
		{"object with trailing text", `{"key": "value"} and some more text`, `{"key": "value"}`},
		{"string with braces inside", `{"template": "Hello {name}!"}`, `{"template": "Hello {name}!"}`},
		{"empty input", "", ""},
		{"not starting with brace", "not json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONObject(tt.input))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple array", `["a", "b", "c"]`, `["a", "b", "c"]`},
		{"nested arrays", `[[1, 2], [3, 4]]`, `[[1, 2], [3, 4]]`},
		{"array of objects", `[{"id": 1}, {"id": 2}]`, `[{"id": 1}, {"id": 2}]`},
		{"array with trailing text", `[1, 2, 3] extra stuff`, `[1, 2, 3]`},
		{"bracket inside string", `["a]", "b"]`, `["a]", "b"]`},
		{"empty input", "", ""},
		{"not starting with bracket", "not array", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONArray(tt.input))
		})
	}
}
