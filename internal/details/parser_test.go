package details

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/prompt-optimizer/internal/llm/llmtest"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

func TestParse_ExtractsAndDropsEmptyCategories(t *testing.T) {
	ai := llmtest.NewGenerator(llmtest.Result{
		Text: `{"style": "", "colors": ["crimson", " gold ", ""], "mood": "serene", "lighting": null, "other": []}`,
	})
	p := NewParser(ai, zaptest.NewLogger(t))

	got := p.Parse(context.Background(), "crimson and gold colors, serene", types.MediaImage)

	assert.Equal(t, map[string]string{"colors": "crimson, gold", "mood": "serene"}, got)
	calls := ai.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "Extract only what the text explicitly states")
	assert.Contains(t, calls[0].Prompt, "[BEGIN QUOTED ADDITIONAL DETAILS")
}

func TestParse_AllEmptyKeepsVerbatim(t *testing.T) {
	ai := llmtest.NewGenerator(llmtest.Result{Text: `{"style": "", "colors": []}`})
	p := NewParser(ai, zaptest.NewLogger(t))

	got := p.Parse(context.Background(), "  make it pop  ", types.MediaImage)

	assert.Equal(t, map[string]string{"other": "make it pop"}, got)
}

func TestParse_FallbacksKeepVerbatim(t *testing.T) {
	tests := []struct {
		name string
		ai   *llmtest.Generator
	}{
		{"unavailable", llmtest.Offline()},
		{"call error", llmtest.NewGenerator(llmtest.Result{Err: errors.New("timeout")})},
		{"not json", llmtest.NewGenerator(llmtest.Result{Text: "I like it"})},
		{"schema violation", llmtest.NewGenerator(llmtest.Result{Text: `{"colors": 5}`})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(tt.ai, zaptest.NewLogger(t))
			got := p.Parse(context.Background(), "teal walls", types.MediaImage)
			assert.Equal(t, map[string]string{"other": "teal walls"}, got)
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	ai := llmtest.NewGenerator()
	p := NewParser(ai, nil)

	assert.Empty(t, p.Parse(context.Background(), "   ", types.MediaText))
	assert.Equal(t, 0, ai.CallCount())
}

func TestSchema(t *testing.T) {
	s := Schema(types.MediaVideo)

	assert.Equal(t, []string{"style", "colors", "lighting", "mood", "details", "background", "composition", "quality", "other"}, s.FieldNames())
	assert.Contains(t, s.Description, "video prompt")
}
