// Package validation gates raw prompts before any paid work and guards user text embedded in AI instructions.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Messages surfaced to callers
const (
	MsgEmpty     = "Prompt cannot be empty."
	MsgGibberish = "Prompt appears to be gibberish. Please describe what you want in words."
	MsgNonsense  = "Prompt does not look like meaningful text. Please rephrase it."
	MsgVague     = "Prompt is very vague. Adding a few descriptive words will give much better results."
)

// Issue labels recorded in Result.Issues
const (
	IssueExtremelyShort  = "extremely short"
	IssueGibberish       = "gibberish"
	IssueOnlyPunctuation = "only punctuation"
	IssueRepeatedChar    = "repeated character"
	IssueLongAlphaRun    = "long alphabetic run"
	IssueInappropriate   = "possibly inappropriate content"
	IssueVague           = "vague"
)

const (
	gibberishMinLength = 10
	gibberishMaxRatio  = 0.5
	repeatedCharRun    = 10
	vagueMaxLength     = 20
)

// Result is the outcome of pre-validation.
// IsAcceptable gates the pipeline; IsValid is true only when nothing at all was flagged.
type Result struct {
	IsAcceptable      bool     `json:"is_acceptable"`
	IsValid           bool     `json:"is_valid"`
	ValidationMessage string   `json:"validation_message,omitempty"`
	Issues            []string `json:"issues,omitempty"`
}

type nonsensePattern struct {
	issue string
	match func(string) bool
}

var (
	onlyPunctuation = regexp.MustCompile(`^[\p{P}\p{S}\s]+$`)
	longAlphaRun    = regexp.MustCompile(`\p{Latin}{20,}`)
)

// nonsensePatterns are evaluated together; any match rejects the prompt
var nonsensePatterns = []nonsensePattern{
	{issue: IssueOnlyPunctuation, match: onlyPunctuation.MatchString},
	{issue: IssueRepeatedChar, match: hasRepeatedRun},
	{issue: IssueLongAlphaRun, match: longAlphaRun.MatchString},
}

// inappropriateKeywords is a coarse list. Matches are flagged but never block;
// the AI makes the final call on quick optimizations.
var inappropriateKeywords = []string{
	"nude", "naked", "gore", "porn", "nsfw", "kill", "murder", "terrorist", "suicide", "explicit",
}

// PreValidate checks a raw prompt. Rules run in order and the first hard failure short-circuits.
func PreValidate(prompt string) Result {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return Result{ValidationMessage: MsgEmpty, Issues: []string{"empty"}}
	}

	res := Result{IsAcceptable: true}
	length := utf8.RuneCountInString(trimmed)

	if length < 2 {
		res.Issues = append(res.Issues, IssueExtremelyShort)
	}

	if length > gibberishMinLength && nonAlphanumericRatio(trimmed) > gibberishMaxRatio {
		res.IsAcceptable = false
		res.ValidationMessage = MsgGibberish
		res.Issues = append(res.Issues, IssueGibberish)
		return res
	}

	var nonsense []string
	for _, p := range nonsensePatterns {
		if p.match(trimmed) {
			nonsense = append(nonsense, p.issue)
		}
	}
	if len(nonsense) > 0 {
		res.IsAcceptable = false
		res.ValidationMessage = MsgNonsense
		res.Issues = append(res.Issues, nonsense...)
		return res
	}

	if containsKeyword(strings.ToLower(trimmed), inappropriateKeywords) {
		res.Issues = append(res.Issues, IssueInappropriate)
	}

	if len(strings.Fields(trimmed)) == 1 && length < vagueMaxLength {
		res.Issues = append(res.Issues, IssueVague)
		res.ValidationMessage = MsgVague
	}

	res.IsValid = len(res.Issues) == 0
	return res
}

// nonAlphanumericRatio is the share of non-letter, non-digit runes among non-whitespace runes
func nonAlphanumericRatio(s string) float64 {
	var total, other int
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			other++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(other) / float64(total)
}

// hasRepeatedRun reports whether one character repeats repeatedCharRun times in a row.
// RE2 has no backreferences, so this is a scan rather than a pattern.
func hasRepeatedRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= repeatedCharRun {
			return true
		}
	}
	return false
}

var wordSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func containsKeyword(lower string, keywords []string) bool {
	words := make(map[string]bool)
	for _, w := range wordSplit.Split(lower, -1) {
		if w != "" {
			words[w] = true
		}
	}
	for _, k := range keywords {
		if words[k] {
			return true
		}
	}
	return false
}
