package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlens/backend/internal/domain"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "fence with surrounding whitespace",
			input: "  \n```json\n{\"a\":1}\n```\n ",
			want:  `{"a":1}`,
		},
		{
			name:  "crlf line endings",
			input: "```json\r\n{\"a\":1}\r\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "single line fence",
			input: "```{\"a\":1}```",
			want:  `{"a":1}`,
		},
		{
			name:  "no fence",
			input: " {\"a\":1} ",
			want:  `{"a":1}`,
		},
		{
			name:  "text before fence is left alone",
			input: "Here you go:\n```json\n{}\n```",
			want:  "Here you go:\n```json\n{}\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.input))
		})
	}
}

func TestIsNotFood(t *testing.T) {
	assert.True(t, isNotFood("not food"))
	assert.True(t, isNotFood("This item is not food."))
	assert.True(t, isNotFood("NOT FOOD"))
	assert.False(t, isNotFood(`{"content":{"item_name":"Apple"}}`))
	assert.False(t, isNotFood(""))
}

func TestParseModelOutput(t *testing.T) {
	t.Run("unwraps the content envelope", func(t *testing.T) {
		raw, err := parseModelOutput("```json\n{\"content\":{\"item_name\":\"Apple\",\"calories\":\"95\"}}\n```")
		require.NoError(t, err)

		result := domain.Normalize(raw)
		assert.Equal(t, "Apple", result.ItemName)
		assert.Equal(t, "95", result.Calories)
	})

	t.Run("accepts a bare object", func(t *testing.T) {
		raw, err := parseModelOutput(`{"item_name":"Pear","fat":"0.2"}`)
		require.NoError(t, err)

		result := domain.Normalize(raw)
		assert.Equal(t, "Pear", result.ItemName)
		assert.Equal(t, "0.2", result.Fat)
	})

	t.Run("empty content object normalizes to defaults", func(t *testing.T) {
		raw, err := parseModelOutput(`{"content":{}}`)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultItemName, domain.Normalize(raw).ItemName)
	})

	failures := map[string]string{
		"free text":          "The image shows an apple with about 95 calories.",
		"truncated json":     `{"content":{"item_name":"Apple"`,
		"array":              `[{"item_name":"Apple"}]`,
		"null":               `null`,
		"string":             `"Apple"`,
		"empty":              "",
		"content not object": `{"content":"Apple"}`,
		"content null":       `{"content":null}`,
	}
	for name, input := range failures {
		t.Run("fails on "+name, func(t *testing.T) {
			_, err := parseModelOutput(input)
			assert.ErrorIs(t, err, domain.ErrUnparsableModelOutput)
		})
	}
}
