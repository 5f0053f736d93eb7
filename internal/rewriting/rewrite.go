// Package rewriting provides the local, rule-based rewrite used by quick optimization when the
// AI is unavailable or fails. It only fixes phrasing and punctuation and never adds content.
package rewriting

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/prompt-optimizer/internal/analysis"
)

// Replacement rewrites an informal phrase
type Replacement struct {
	Pattern *regexp.Regexp
	With    string
}

func phrase(words, with string) Replacement {
	return Replacement{Pattern: regexp.MustCompile(`(?i)\b` + words + `\b`), With: with}
}

// Replacements are applied in order
var Replacements = []Replacement{
	phrase(`draw me`, "create"),
	phrase(`make me`, "create"),
	phrase(`give me`, "provide"),
	phrase(`show me`, "show"),
	phrase(`(?:can|could|would) you(?: please)?`, ""),
	phrase(`i (?:want|need|would like)(?: you)?(?: to)?`, ""),
	phrase(`please`, ""),
	phrase(`kindly`, ""),
}

var (
	spaces         = regexp.MustCompile(`\s+`)
	spaceBeforeEnd = regexp.MustCompile(`\s+([,.;:!?])`)
	doubledPunct   = regexp.MustCompile(`([,;:])[,;:]+`)
)

// Apply rewrites prompt with the local rules. The result starts with a capital letter and ends
// with terminal punctuation; an empty result falls back to the tidied original.
func Apply(prompt string) string {
	text := prompt
	for _, r := range Replacements {
		text = r.Pattern.ReplaceAllString(text, r.With)
	}
	text = insertArticles(dedupeWords(text))
	text = tidy(text)

	if strings.Trim(text, ".,;:!? ") == "" {
		text = tidy(prompt)
	}
	return Finalize(text)
}

// Finalize capitalizes the first letter and guarantees terminal punctuation
func Finalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	text = strings.TrimRight(text, ",;: ")
	if text == "" {
		return text
	}
	if !EndsWithTerminal(text) {
		text += "."
	}

	r, size := utf8.DecodeRuneInString(text)
	if unicode.IsLower(r) {
		text = string(unicode.ToUpper(r)) + text[size:]
	}
	return text
}

// EndsWithTerminal reports whether text ends with . ! ? or a closing quote after one
func EndsWithTerminal(text string) bool {
	text = strings.TrimRight(strings.TrimSpace(text), `"')]`)
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// StartsCapitalized reports whether the first letter of text is not lowercase
func StartsCapitalized(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return !unicode.IsLower(r)
		}
	}
	return true
}

func tidy(text string) string {
	text = spaces.ReplaceAllString(text, " ")
	text = spaceBeforeEnd.ReplaceAllString(text, "$1")
	text = doubledPunct.ReplaceAllString(text, "$1")
	return strings.Trim(strings.TrimSpace(text), ",;: ")
}

// dedupeWords drops a word that repeats the previous one ("very very")
func dedupeWords(text string) string {
	words := strings.Fields(text)
	out := words[:0]
	prev := ""
	for _, w := range words {
		key := strings.ToLower(strings.Trim(w, ".,;:!?"))
		if key != "" && key == prev {
			// keep the later copy so its punctuation survives
			out[len(out)-1] = w
			prev = key
			continue
		}
		out = append(out, w)
		prev = key
		if strings.TrimRight(w, ".,;:!?") != w {
			// a sentence or clause ended, so "cat. Cat" is not a repeat
			prev = ""
		}
	}
	return strings.Join(out, " ")
}

// insertArticles adds "a"/"an" between an imperative verb and a bare common noun ("draw cat")
func insertArticles(text string) string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words)+2)
	for i, w := range words {
		out = append(out, w)
		if i+1 >= len(words) || !analysis.IsImperativeVerb(strings.ToLower(w)) {
			continue
		}
		next := strings.ToLower(strings.Trim(words[i+1], ".,;:!?"))
		if analysis.IsCommonNoun(next) {
			out = append(out, article(next))
		}
	}
	return strings.Join(out, " ")
}

func article(noun string) string {
	if strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an"
	}
	return "a"
}
