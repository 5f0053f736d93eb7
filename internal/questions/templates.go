package questions

import "github.com/jonathan/prompt-optimizer/internal/types"

var (
	noPreference = types.Option{Value: types.OptionNoPreference, Label: "No preference"}
	other        = types.Option{Value: types.OptionOther, Label: "Other (describe your own)"}
)

func choice(id, question, priority, def string, options ...types.Option) types.Question {
	return types.Question{
		ID:       id,
		Question: question,
		Type:     types.QuestionChoice,
		Priority: priority,
		Options:  append(options, noPreference, other),
		Default:  def,
	}
}

func opt(value, label string) types.Option {
	return types.Option{Value: value, Label: label}
}

// imageTemplate is the fallback set for image prompts
func imageTemplate() []types.Question {
	return []types.Question{
		choice("style", "What art style should the image have?", types.PriorityHigh, types.OptionNoPreference,
			opt("photorealistic", "Photorealistic"),
			opt("digital_art", "Digital art"),
			opt("watercolor", "Watercolor"),
			opt("oil_painting", "Oil painting"),
			opt("anime", "Anime"),
		),
		choice("composition", "How should the subject be framed?", types.PriorityMedium, types.OptionNoPreference,
			opt("close_up", "Close-up"),
			opt("medium_shot", "Medium shot"),
			opt("wide_shot", "Wide shot"),
			opt("overhead", "Overhead view"),
		),
		choice("lighting", "What lighting do you want?", types.PriorityMedium, types.OptionNoPreference,
			opt("natural", "Natural daylight"),
			opt("golden_hour", "Golden hour"),
			opt("studio", "Studio lighting"),
			opt("dramatic", "Dramatic shadows"),
		),
		{
			ID:       "background",
			Question: "Describe the background or setting, if any.",
			Type:     types.QuestionText,
			Priority: types.PriorityLow,
			Default:  types.OptionNoPreference,
		},
	}
}

// genericTemplate is the fallback set for text, video and audio prompts
func genericTemplate() []types.Question {
	return []types.Question{
		choice("tone", "What tone should the result have?", types.PriorityHigh, types.OptionNoPreference,
			opt("formal", "Formal"),
			opt("casual", "Casual"),
			opt("friendly", "Friendly"),
			opt("persuasive", "Persuasive"),
		),
		choice("format", "What format should the output take?", types.PriorityMedium, types.OptionNoPreference,
			opt("paragraphs", "Paragraphs"),
			opt("bullet_list", "Bullet list"),
			opt("step_by_step", "Step by step"),
			opt("short_summary", "Short summary"),
		),
		{
			ID:       "audience",
			Question: "Who is the intended audience?",
			Type:     types.QuestionText,
			Priority: types.PriorityMedium,
			Default:  types.OptionNoPreference,
		},
		choice("length", "How long should it be?", types.PriorityLow, types.OptionNoPreference,
			opt("short", "Short"),
			opt("medium", "Medium"),
			opt("long", "Long"),
		),
	}
}

// Template returns the hand-authored questions for media
func Template(media types.MediaType) []types.Question {
	if media == types.MediaImage {
		return imageTemplate()
	}
	return genericTemplate()
}
