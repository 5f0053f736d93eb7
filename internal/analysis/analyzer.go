package analysis

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

// Result is the output of the heuristic analyzer
type Result struct {
	CompletenessScore int      `json:"completeness_score"`
	MissingElements   []string `json:"missing_elements"`
	GrammarFixed      bool     `json:"grammar_fixed"`
	StructureImproved bool     `json:"structure_improved"`
	WordCount         int      `json:"word_count"`
	ClarityScore      int      `json:"clarity_score"`
	SpecificityScore  int      `json:"specificity_score"`
	StructureScore    int      `json:"structure_score"`
	Issues            []string `json:"issues"`
	GrammarIssues     []string `json:"grammar_issues,omitempty"`
	StructureIssues   []string `json:"structure_issues,omitempty"`
}

var (
	tokenSplit  = regexp.MustCompile(`[^\p{L}\p{N}:'-]+`)
	punctuation = regexp.MustCompile(`[.,;:!?]`)
)

const (
	shortPromptChars   = 10
	minWords           = 3
	punctuationMinWord = 5
	specificityWords   = 20.0
)

// Analyze scores a prompt for the given media type. It is a pure function.
func Analyze(prompt string, media types.MediaType) Result {
	text := strings.TrimSpace(prompt)
	tokens := Tokenize(text)
	normalized := " " + strings.Join(tokens, " ") + " "
	wordCount := len(strings.Fields(text))
	hasPunct := punctuation.MatchString(text)

	missing := missingElements(normalized, media)
	grammar := grammarIssues(tokens, normalized)
	structure := structureIssues(wordCount, hasPunct)

	res := Result{
		MissingElements: missing,
		WordCount:       wordCount,
		GrammarIssues:   grammar,
		StructureIssues: structure,
		// Both flags report that the rewrite has something to fix.
		GrammarFixed:      len(grammar) > 0,
		StructureImproved: len(structure) > 0,
	}
	res.Issues = append(append([]string{}, grammar...), structure...)

	maxMissing := len(rulesFor(media))
	completeness := 100.0
	if maxMissing > 0 {
		completeness = 100 - float64(len(missing))/float64(maxMissing)*100
	}
	res.CompletenessScore = clamp(completeness)

	clarity := 100.0 - 15*float64(len(grammar))
	if utf8.RuneCountInString(text) < shortPromptChars {
		clarity -= 20
	}
	if !hasPunct && wordCount > punctuationMinWord {
		clarity -= 10
	}
	res.ClarityScore = clamp(clarity)

	specificity := float64(wordCount)/specificityWords*100 + 5*float64(countDescriptive(tokens))
	res.SpecificityScore = clamp(math.Min(100, specificity))

	structureScore := 100.0 - 20*float64(len(structure))
	if hasPunct {
		structureScore += 10
	}
	if wordCount > punctuationMinWord {
		structureScore += 5
	}
	res.StructureScore = clamp(structureScore)

	return res
}

// Composite blends the sub-scores into one overall score in [0,100]
func Composite(r Result) int {
	return clamp(0.25*float64(r.CompletenessScore) +
		0.30*float64(r.ClarityScore) +
		0.25*float64(r.SpecificityScore) +
		0.20*float64(r.StructureScore))
}

// SubScores converts a result into the stored sub-score record
func SubScores(r Result) types.SubScores {
	return types.SubScores{
		WordCount:    r.WordCount,
		Completeness: r.CompletenessScore,
		Clarity:      r.ClarityScore,
		Specificity:  r.SpecificityScore,
		Structure:    r.StructureScore,
	}
}

// Tokenize lowercases text and splits it into word tokens
func Tokenize(text string) []string {
	parts := tokenSplit.Split(strings.ToLower(text), -1)
	tokens := parts[:0]
	for _, p := range parts {
		p = strings.Trim(p, ":'-")
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// ContainsPhrase reports whether the space-padded normalized text contains phrase as whole words
func ContainsPhrase(normalized, phrase string) bool {
	return strings.Contains(normalized, " "+phrase+" ")
}

func rulesFor(media types.MediaType) []ElementRule {
	if rules, ok := ElementRules[media]; ok {
		return rules
	}
	return ElementRules[types.MediaText]
}

func missingElements(normalized string, media types.MediaType) []string {
	missing := []string{}
	for _, rule := range rulesFor(media) {
		found := false
		for _, kw := range rule.Keywords {
			if ContainsPhrase(normalized, kw) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, rule.Name)
		}
	}
	return missing
}

func grammarIssues(tokens []string, normalized string) []string {
	var issues []string
	for _, phrase := range InformalPhrases {
		if ContainsPhrase(normalized, phrase) {
			issues = append(issues, fmt.Sprintf("informal phrasing %q", phrase))
		}
	}
	for i := 1; i < len(tokens); i++ {
		if imperativeVerbs[tokens[i-1]] && commonNouns[tokens[i]] {
			issues = append(issues, fmt.Sprintf("missing article before %q", tokens[i]))
		}
	}
	return issues
}

func structureIssues(wordCount int, hasPunct bool) []string {
	var issues []string
	if wordCount < minWords {
		issues = append(issues, "prompt is under 3 words")
	}
	if wordCount > punctuationMinWord && !hasPunct {
		issues = append(issues, "long prompt without punctuation")
	}
	return issues
}

func countDescriptive(tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if descriptiveWords[tok] {
			n++
		}
	}
	return n
}

func clamp(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
