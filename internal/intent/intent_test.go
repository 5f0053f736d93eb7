package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

func TestNewAllowList_SkipsNoPreferenceAnswers(t *testing.T) {
	al := NewAllowList(" a cat ", map[string]types.Answer{
		"style":    {Type: types.AnswerCustom, Value: "watercolor"},
		"mood":     {Type: types.AnswerOption, Value: types.OptionNoPreference},
		"lighting": {Type: types.AnswerDefault, Value: "studio"},
		"framing":  {Type: types.AnswerSkipped},
		"colors":   {Type: types.AnswerCustom, Value: types.OptionOther, CustomText: "soft pastels"},
	}, "  ")

	assert.Equal(t, "a cat", al.Original)
	assert.Equal(t, []LabeledAnswer{
		{QuestionID: "colors", Text: "soft pastels"},
		{QuestionID: "style", Text: "watercolor"},
	}, al.Answers)
	assert.Empty(t, al.Details)
	assert.True(t, al.HasPreferences())
	assert.Equal(t, "a cat\nsoft pastels\nwatercolor", al.Text())
}

func TestCheck_NoAdditions(t *testing.T) {
	al := NewAllowList("a cat in a forest", map[string]types.Answer{
		"style": {Type: types.AnswerCustom, Value: "watercolor"},
	}, "crimson and teal colors")

	res := Check("A watercolor painting of a cat in a forest, crimson and teal palette.", al)

	assert.True(t, res.Preserved)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Violations)
}

func TestCheck_FlagsUnsanctionedTerms(t *testing.T) {
	al := NewAllowList("a cat", map[string]types.Answer{
		"style": {Type: types.AnswerCustom, Value: "watercolor"},
	}, "crimson tones")

	res := Check("A serene watercolor cat with gold accents on a beach, crimson tones.", al)

	assert.False(t, res.Preserved)
	assert.Equal(t, []string{"gold (color)", "beach (background)", "serene (mood)"}, res.Violations)
	assert.Equal(t, 40, res.Score)
}

func TestCheck_PluralsAndPhrases(t *testing.T) {
	al := NewAllowList("snowy mountains", nil, "")

	assert.True(t, Check("A snowy mountain range.", al).Preserved)
	assert.Equal(t, []string{"oil painting (style)"}, Check("An oil painting of snowy mountains.", al).Violations)
	// "redwood" is not the color red
	assert.True(t, Check("Snowy mountains above a redwood grove.", al).Preserved)
}

func TestCheck_ScoreFloor(t *testing.T) {
	res := Check("red blue green yellow purple pink", NewAllowList("flowers", nil, ""))

	assert.Len(t, res.Violations, 6)
	assert.Equal(t, 0, res.Score)
}

func TestRender(t *testing.T) {
	al := NewAllowList("a cat", map[string]types.Answer{
		"style": {Type: types.AnswerOption, Value: "anime"},
	}, "blue eyes")
	quote := func(text, label string) string { return "<" + label + ">" + text + "</" + label + ">" }

	out := al.Render(quote)

	assert.Contains(t, out, "<original prompt>a cat</original prompt>")
	assert.Contains(t, out, "- style: anime")
	assert.Contains(t, out, "<additional details>blue eyes</additional details>")
}
