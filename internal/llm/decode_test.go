package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOptimization_Direct(t *testing.T) {
	raw := "```json\n{\"optimizedPrompt\": \"Create a cat.\", \"isValid\": true, \"improvements\": [\"Fixed grammar\"], \"qualityScore\": 82}\n```"

	res, err := DecodeOptimization(raw)

	require.NoError(t, err)
	assert.Equal(t, StrategyDirect, res.Strategy)
	assert.Equal(t, "Create a cat.", res.Response.OptimizedPrompt)
	assert.True(t, res.Response.IsValid)
	assert.Equal(t, []string{"Fixed grammar"}, res.Response.Improvements)
	assert.Equal(t, 82, res.Response.QualityScore)
	assert.Empty(t, res.Failed)
}

func TestDecodeOptimization_UnescapedInnerQuotes(t *testing.T) {
	raw := `{"optimizedPrompt": "A "great" cat", "isValid": true, "improvements": [], "qualityScore": 80}`

	res, err := DecodeOptimization(raw)

	require.NoError(t, err)
	assert.Equal(t, StrategyRepairQuotes, res.Strategy)
	assert.Equal(t, `A "great" cat`, res.Response.OptimizedPrompt)
	assert.Equal(t, 80, res.Response.QualityScore)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, StrategyDirect, res.Failed[0].Strategy)
}

func TestDecodeOptimization_FieldExtraction(t *testing.T) {
	// Trailing garbage after the improvements array defeats both parse stages.
	raw := `Sure! {"optimizedPrompt": "Paint a "bold" sunset", "isValid": true, "improvements": ["Added detail", "Fixed tone"] oops, "qualityScore": 91.6`

	res, err := DecodeOptimization(raw)

	require.NoError(t, err)
	assert.Equal(t, StrategyFieldExtraction, res.Strategy)
	assert.Equal(t, `Paint a "bold" sunset`, res.Response.OptimizedPrompt)
	assert.Equal(t, []string{"Added detail", "Fixed tone"}, res.Response.Improvements)
	assert.Equal(t, 92, res.Response.QualityScore)
	assert.Len(t, res.Failed, 2)
}

func TestDecodeOptimization_DefaultsOptionalFields(t *testing.T) {
	res, err := DecodeOptimization(`{"optimizedPrompt": "Write a haiku."}`)

	require.NoError(t, err)
	assert.True(t, res.Response.IsValid)
	assert.Equal(t, []string{}, res.Response.Improvements)
	assert.Equal(t, 0, res.Response.QualityScore)
}

func TestDecodeOptimization_RejectionWithoutPrompt(t *testing.T) {
	res, err := DecodeOptimization(`{"isValid": false, "validationMessage": "Not a prompt."}`)

	require.NoError(t, err)
	assert.False(t, res.Response.IsValid)
	assert.Equal(t, "Not a prompt.", res.Response.ValidationMessage)
}

func TestDecodeOptimization_AllStagesFail(t *testing.T) {
	_, err := DecodeOptimization("I could not do that, sorry.")

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "I could not do that, sorry.", de.Excerpt)
	assert.Equal(t, ClassMalformed, Classify(err))
}

func TestDecodeWith_CustomLadder(t *testing.T) {
	ladder := []DecodeStrategy{
		{Name: "never", Decode: func(string) (OptimizationResponse, error) { return OptimizationResponse{}, errors.New("no") }},
		{Name: "constant", Decode: func(string) (OptimizationResponse, error) {
			return OptimizationResponse{OptimizedPrompt: "x", IsValid: true}, nil
		}},
	}

	res, err := DecodeWith(ladder, "anything")

	require.NoError(t, err)
	assert.Equal(t, "constant", res.Strategy)
	assert.Len(t, res.Failed, 1)
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Questions []struct {
			Question string `json:"question"`
		} `json:"questions"`
	}

	err := DecodeJSON("Here you go:\n```json\n{\"questions\": [{\"question\": \"Which \"style\" do you want?\"}]}\n```", &out)

	require.NoError(t, err)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, `Which "style" do you want?`, out.Questions[0].Question)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	var out map[string]any
	err := DecodeJSON("not json at all", &out)

	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestRepairQuotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already valid", `{"a": "b", "c": ["d"]}`, `{"a": "b", "c": ["d"]}`},
		{"inner quotes escaped", `{"a": "say "hi" now"}`, `{"a": "say \"hi\" now"}`},
		{"existing escapes kept", `{"a": "x \"y\" z"}`, `{"a": "x \"y\" z"}`},
		{"raw newline escaped", "{\"a\": \"line1\nline2\"}", `{"a": "line1\nline2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairQuotes(tt.input))
		})
	}
}
