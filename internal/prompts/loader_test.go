package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownStage(t *testing.T) {
	prompt, err := Get("topic_generation")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "15 high-quality blog or whitepaper topic ideas")
}

func TestGet_UnknownStage(t *testing.T) {
	_, err := Get("nonexistent-stage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prompt for stage")
}

func TestStages(t *testing.T) {
	names, err := Stages()
	require.NoError(t, err)
	assert.ElementsMatch(t, names, []string{
		"topic_generation",
		"content_planning",
		"writing",
		"editing",
		"seo_optimization",
	})
}

func TestFormat(t *testing.T) {
	template := "Write about {{.Topic}} for {{.Audience}}."
	data := map[string]string{
		"Topic":    "vector databases",
		"Audience": "platform engineers",
	}

	result := Format(template, data)
	assert.Equal(t, "Write about vector databases for platform engineers.", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	result := Format(template, map[string]string{"Key": "Value"})
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Write about {{.Topic}}."
	result := Format(template, map[string]string{})
	assert.Equal(t, template, result, "unmatched placeholders stay in place")
}

func TestStagesCarryPlaceholders(t *testing.T) {
	tests := []struct {
		stage       string
		placeholder string
	}{
		{"topic_generation", "{{.Research}}"},
		{"content_planning", "{{.Details}}"},
		{"writing", "{{.Plan}}"},
		{"editing", "{{.Draft}}"},
		{"seo_optimization", "{{.Edited}}"},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			prompt, err := Get(tt.stage)
			require.NoError(t, err)
			assert.Contains(t, prompt, tt.placeholder)
		})
	}
}
