package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare json untouched",
			input:    `{"answer": "ok"}`,
			expected: `{"answer": "ok"}`,
		},
		{
			name:     "json fence stripped",
			input:    "```json\n{\"answer\": \"ok\"}\n```",
			expected: `{"answer": "ok"}`,
		},
		{
			name:     "plain fence stripped",
			input:    "```\n{\"answer\": \"ok\"}\n```",
			expected: `{"answer": "ok"}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n{\"answer\": \"ok\"}\n  ",
			expected: `{"answer": "ok"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONResponse(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		required []string
		want     string
		ok       bool
	}{
		{
			name:     "clean object",
			raw:      `{"answer": "Bali indah"}`,
			required: []string{"answer"},
			want:     `{"answer": "Bali indah"}`,
			ok:       true,
		},
		{
			name:     "object wrapped in prose",
			raw:      `Tentu! Berikut jawabannya: {"answer": "Bali indah"} Semoga membantu.`,
			required: []string{"answer"},
			want:     `{"answer": "Bali indah"}`,
			ok:       true,
		},
		{
			name:     "object inside markdown fence",
			raw:      "```json\n{\"answer\": \"Bali indah\"}\n```",
			required: []string{"answer"},
			want:     `{"answer": "Bali indah"}`,
			ok:       true,
		},
		{
			name:     "nested objects kept whole",
			raw:      `{"answer": "ok", "meta": {"lang": "id"}}`,
			required: []string{"answer"},
			want:     `{"answer": "ok", "meta": {"lang": "id"}}`,
			ok:       true,
		},
		{
			name:     "missing required field",
			raw:      `{"respons": "Bali indah"}`,
			required: []string{"answer"},
			ok:       false,
		},
		{
			name:     "no braces at all",
			raw:      `Bali adalah destinasi yang indah.`,
			required: []string{"answer"},
			ok:       false,
		},
		{
			name:     "malformed json",
			raw:      `{"answer": "Bali indah`,
			required: []string{"answer"},
			ok:       false,
		},
		{
			name:     "array rejected",
			raw:      `[{"answer": "a"}, {"answer": "b"}]`,
			required: []string{"answer"},
			want:     `{"answer": "a"}, {"answer": "b"}`,
			ok:       false,
		},
		{
			name:     "empty input",
			raw:      "",
			required: []string{"answer"},
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ok := ExtractJSONObject(tt.raw, tt.required)
			if !tt.ok {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, string(data))
		})
	}
}
