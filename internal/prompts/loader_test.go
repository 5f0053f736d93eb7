package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get(Optimization, "quick-optimize")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Prompt}}")
	assert.Contains(t, prompt, "optimizedPrompt")

	_, err = Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt file nonexistent.json not found")

	_, err = Get(Questions, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
	assert.NotEmpty(t, MustGet(Details, "extract-details"))
}

func TestEveryTemplateFileLoads(t *testing.T) {
	expected := map[string][]string{
		Optimization: {"build-premium", "conventions-generic", "conventions-image", "conventions-text", "quick-optimize"},
		Questions:    {"generate-questions", "guidance-generic", "guidance-image", "guidance-text"},
		Details:      {"extract-details"},
	}
	all, err := load()
	require.NoError(t, err)
	require.Len(t, all, len(expected))
	for file, keys := range expected {
		assert.Len(t, all[file], len(keys), file)
		for _, key := range keys {
			template, err := Get(file, key)
			require.NoError(t, err, key)
			assert.NotEmpty(t, template, key)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{
			name:     "fills placeholders",
			template: "Rewrite {{.Prompt}} for {{.TargetModel}}!",
			data:     map[string]string{"Prompt": "a cat", "TargetModel": "dall-e-3"},
			want:     "Rewrite a cat for dall-e-3!",
		},
		{
			name:     "values are not expanded",
			template: "{{.A}} and {{.B}}",
			data:     map[string]string{"A": "{{.B}}", "B": "bee"},
			want:     "{{.B}} and bee",
		},
		{
			name:     "unknown placeholders stay",
			template: "Hello {{.Name}}",
			data:     map[string]string{},
			want:     "Hello {{.Name}}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "Media2"}, Placeholders("{{.Media2}} {{.A}} {{.A}} {{ .B }}"))
	assert.Empty(t, Placeholders("no placeholders"))
}

func TestRender(t *testing.T) {
	out, err := Render(Details, "extract-details", map[string]string{"MediaType": "image"})
	require.NoError(t, err)
	assert.Contains(t, out, "image")
	assert.NotContains(t, out, "{{.")

	_, err = Render(Questions, "generate-questions", map[string]string{"Prompt": "a cat"})
	var ue *UnfilledError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"Guidance", "MediaType", "MissingElements", "TargetModel"}, ue.Missing)

	assert.Panics(t, func() {
		MustRender(Optimization, "build-premium", nil)
	})
}
