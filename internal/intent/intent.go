// Package intent checks that an optimized prompt adds nothing the user did not ask for. The
// check is advisory: violations are reported, never enforced.
package intent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/prompt-optimizer/internal/analysis"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

// AllowList is the user-supplied content an optimized prompt may draw on
type AllowList struct {
	Original string
	Answers  []LabeledAnswer
	Details  string
}

// LabeledAnswer is one answer that carries a real preference
type LabeledAnswer struct {
	QuestionID string
	Text       string
}

// NewAllowList collects the original prompt, every answer with content and the additional details
func NewAllowList(original string, answers map[string]types.Answer, details string) AllowList {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	al := AllowList{Original: strings.TrimSpace(original), Details: strings.TrimSpace(details)}
	for _, id := range ids {
		if text := strings.TrimSpace(answers[id].Text()); text != "" {
			al.Answers = append(al.Answers, LabeledAnswer{QuestionID: id, Text: text})
		}
	}
	return al
}

// HasPreferences reports whether any answer carries a real preference
func (a AllowList) HasPreferences() bool {
	return len(a.Answers) > 0
}

// Text joins every allowed fragment
func (a AllowList) Text() string {
	parts := []string{a.Original}
	for _, ans := range a.Answers {
		parts = append(parts, ans.Text)
	}
	if a.Details != "" {
		parts = append(parts, a.Details)
	}
	return strings.Join(parts, "\n")
}

// Render formats the allow-list as labelled sections for an AI instruction. quote wraps each
// user-supplied fragment.
func (a AllowList) Render(quote func(text, label string) string) string {
	var sb strings.Builder
	sb.WriteString("ALLOW-LIST\n")
	sb.WriteString(quote(a.Original, "original prompt"))
	sb.WriteString("\n")
	if len(a.Answers) > 0 {
		sb.WriteString("\nUser answers:\n")
		for _, ans := range a.Answers {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", ans.QuestionID, ans.Text))
		}
	}
	if a.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(quote(a.Details, "additional details"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Result of an intent check
type Result struct {
	Preserved  bool     `json:"preserved"`
	Score      int      `json:"score"`
	Violations []string `json:"violations"`
}

// Category is a guarded vocabulary whose terms may only appear when the user supplied them
type Category struct {
	Name  string
	Terms []string
}

// GuardedCategories are checked in order
var GuardedCategories = []Category{
	{Name: "color", Terms: []string{
		"red", "orange", "yellow", "green", "blue", "purple", "violet", "pink", "brown", "black",
		"white", "gray", "grey", "gold", "golden", "silver", "crimson", "teal", "turquoise", "navy",
		"beige", "magenta", "cyan", "pastel", "neon", "monochrome", "sepia",
	}},
	{Name: "background", Terms: []string{
		"forest", "beach", "city", "cityscape", "mountain", "ocean", "desert", "outer space", "studio",
		"garden", "street", "meadow", "jungle", "skyline", "countryside", "underwater",
	}},
	{Name: "mood", Terms: []string{
		"serene", "dramatic", "moody", "cheerful", "melancholic", "mysterious", "whimsical", "eerie",
		"romantic", "peaceful", "gloomy", "joyful", "ominous", "nostalgic", "dreamy",
	}},
	{Name: "style", Terms: []string{
		"watercolor", "photorealistic", "oil painting", "anime", "cartoon", "cyberpunk", "steampunk",
		"impressionist", "surreal", "minimalist", "vintage", "retro", "pixel art", "3d render", "noir",
		"sketch", "baroque", "digital art", "art deco",
	}},
}

const violationPenalty = 20

// Check reports guarded terms in optimized that the allow-list never mentions
func Check(optimized string, allow AllowList) Result {
	out := normalize(optimized)
	allowed := normalize(allow.Text())

	violations := []string{}
	for _, cat := range GuardedCategories {
		for _, term := range cat.Terms {
			if mentions(out, term) && !mentions(allowed, term) {
				violations = append(violations, fmt.Sprintf("%s (%s)", term, cat.Name))
			}
		}
	}

	score := 100 - violationPenalty*len(violations)
	if score < 0 {
		score = 0
	}
	return Result{Preserved: len(violations) == 0, Score: score, Violations: violations}
}

func normalize(text string) string {
	return " " + strings.Join(analysis.Tokenize(text), " ") + " "
}

// mentions matches term as whole words, allowing a plural "s"
func mentions(normalized, term string) bool {
	return analysis.ContainsPhrase(normalized, term) || analysis.ContainsPhrase(normalized, term+"s")
}
