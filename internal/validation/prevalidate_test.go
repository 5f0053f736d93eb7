package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreValidate_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		res := PreValidate(input)
		assert.False(t, res.IsAcceptable)
		assert.False(t, res.IsValid)
		assert.Equal(t, "Prompt cannot be empty.", res.ValidationMessage)
	}
}

func TestPreValidate_Rules(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		acceptable bool
		valid      bool
		issue      string
	}{
		{name: "normal prompt", input: "draw me a very very nice cat image please", acceptable: true, valid: true},
		{name: "single char", input: "a", acceptable: true, issue: IssueExtremelyShort},
		{name: "gibberish symbols", input: "ab!!@@##$$%%^^", acceptable: false, issue: IssueGibberish},
		{name: "only punctuation short", input: "?!", acceptable: false, issue: IssueOnlyPunctuation},
		{name: "repeated char", input: "hello aaaaaaaaaa world", acceptable: false, issue: IssueRepeatedChar},
		{name: "long alphabetic run", input: "qwertyuiopasdfghjklzxcvbnm is it", acceptable: false, issue: IssueLongAlphaRun},
		{name: "inappropriate flagged not blocked", input: "a gore scene in a horror movie poster", acceptable: true, issue: IssueInappropriate},
		{name: "vague single word", input: "sunset", acceptable: true, issue: IssueVague},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := PreValidate(tt.input)
			assert.Equal(t, tt.acceptable, res.IsAcceptable)
			assert.Equal(t, tt.valid, res.IsValid)
			if tt.issue != "" {
				assert.Contains(t, res.Issues, tt.issue)
			}
		})
	}
}

func TestPreValidate_VagueSurfacesWarning(t *testing.T) {
	res := PreValidate("dragon")
	assert.True(t, res.IsAcceptable)
	assert.Equal(t, MsgVague, res.ValidationMessage)
}

func TestPreValidate_RepeatedXUsesAlphabeticRun(t *testing.T) {
	res := PreValidate(strings.Repeat("x", 200))
	assert.False(t, res.IsAcceptable)
	assert.Contains(t, res.Issues, IssueLongAlphaRun)
}

func TestPreValidate_UnspacedScriptsAreNotAlphabeticRuns(t *testing.T) {
	for _, input := range []string{
		"画一只在沙发上睡觉的可爱橘色小猫咪和一只小狗",
		"ソファの上で眠るかわいいオレンジ色の子猫を描いて",
	} {
		res := PreValidate(input)
		assert.True(t, res.IsAcceptable, input)
		assert.NotContains(t, res.Issues, IssueLongAlphaRun, input)
	}

	res := PreValidate(strings.Repeat("x", 200))
	assert.False(t, res.IsAcceptable)
	assert.Contains(t, res.Issues, IssueLongAlphaRun)
}

func TestPreValidate_HighSymbolRatioAlwaysRejected(t *testing.T) {
	inputs := []string{
		"#### $$$$ %%%% a",
		"<<<>>>{}{}[]()ok",
		"1!2@3#4$5%6^7&8*(",
		"x.y.z.!.?.,.;.:.",
	}
	for _, input := range inputs {
		assert.Greater(t, nonAlphanumericRatio(input), gibberishMaxRatio, input)
		assert.False(t, PreValidate(input).IsAcceptable, input)
	}
}

func TestNonAlphanumericRatio_IgnoresWhitespace(t *testing.T) {
	assert.Equal(t, 0.0, nonAlphanumericRatio("a b c d e f g"))
	assert.Equal(t, 0.5, nonAlphanumericRatio("a! b?"))
}
