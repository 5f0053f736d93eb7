package types

// QuestionType is the input widget a question expects
type QuestionType string

// QuestionType constants
const (
	QuestionChoice QuestionType = "choice"
	QuestionText   QuestionType = "text"
)

// Priority constants for clarifying questions
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Option values every AI-generated question carries
const (
	OptionNoPreference = "no_preference"
	OptionOther        = "other"
)

// Option is a selectable answer of a choice question
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is a clarifying question shown to the user before a premium build
type Question struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
	Priority string       `json:"priority"`
	Options  []Option     `json:"options,omitempty"`
	Default  string       `json:"default"`
	Answered bool         `json:"answered"`
	Answer   string       `json:"answer,omitempty"`
}

// HasOption reports whether the question offers an option with the given value
func (q *Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// AnswerType describes how a user answered a question
type AnswerType string

// AnswerType constants
const (
	AnswerOption  AnswerType = "option"
	AnswerCustom  AnswerType = "custom"
	AnswerDefault AnswerType = "default"
	AnswerSkipped AnswerType = "skipped"
)

// Answer is a user's answer to one question
type Answer struct {
	Type       AnswerType `json:"type" validate:"required,oneof=option custom default skipped"`
	Value      string     `json:"value,omitempty" validate:"max=500"`
	CustomText string     `json:"custom_text,omitempty" validate:"max=1000"`
}

// Text returns the user-supplied content of the answer, or "" when the answer
// carries no preference (defaulted, skipped or "no preference"). The value decides
// exclusion before any custom text is considered.
func (a Answer) Text() string {
	switch a.Type {
	case AnswerDefault, AnswerSkipped:
		return ""
	}
	switch a.Value {
	case OptionNoPreference, "default", "skipped":
		return ""
	}
	if a.CustomText != "" {
		return a.CustomText
	}
	if a.Value == OptionOther {
		return ""
	}
	return a.Value
}
