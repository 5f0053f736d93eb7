// Package scoring turns analyzer runs on the original and optimized prompts into the quality
// score, metadata and analysis summary stored on an optimization.
package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/prompt-optimizer/internal/analysis"
	"github.com/jonathan/prompt-optimizer/internal/intent"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

// Improvement messages
const (
	ImprovedGrammar   = "Fixed informal language"
	ImprovedStructure = "Improved structure"
	AddedSpecificity  = "Added specificity"
	AppliedAnswers    = "Applied user preferences"
	AppliedDetails    = "Incorporated additional details"
)

// IntentPenalty is subtracted from a premium after-score per intent violation
const IntentPenalty = 5

// Deltas lists the improvements detected between two analyzer runs
func Deltas(before, after analysis.Result) []string {
	var out []string
	if len(after.GrammarIssues) < len(before.GrammarIssues) {
		out = append(out, ImprovedGrammar)
	}
	if len(after.StructureIssues) < len(before.StructureIssues) {
		out = append(out, ImprovedStructure)
	}
	if after.SpecificityScore > before.SpecificityScore {
		out = append(out, AddedSpecificity)
	}
	if resolved := resolvedElements(before, after); len(resolved) > 0 {
		out = append(out, "Addressed missing elements: "+strings.Join(resolved, ", "))
	}
	return out
}

// PenaltyNote is the improvements entry recorded when the intent check fails
func PenaltyNote(check intent.Result) string {
	return fmt.Sprintf("Intent check flagged content not in your input: %s", strings.Join(check.Violations, ", "))
}

// Premium scores a completed premium build. The after score is the analyzer composite of the
// optimized text, reduced by IntentPenalty per violation.
func Premium(before, after analysis.Result, check intent.Result, allow intent.AllowList) types.QualityScore {
	improvements := Deltas(before, after)
	if allow.HasPreferences() {
		improvements = append(improvements, AppliedAnswers)
	}
	if allow.Details != "" {
		improvements = append(improvements, AppliedDetails)
	}

	afterScore := analysis.Composite(after)
	if !check.Preserved {
		improvements = append(improvements, PenaltyNote(check))
		afterScore = clamp(afterScore - IntentPenalty*len(check.Violations))
	}

	return types.QualityScore{
		Before:                  analysis.Composite(before),
		After:                   afterScore,
		Improvements:            nonNil(improvements),
		IntentPreserved:         check.Preserved,
		IntentPreservationScore: check.Score,
		Violations:              nonNil(check.Violations),
	}
}

// Quick scores a quick optimization. When the AI produced the rewrite and reported a positive
// score, that score is used as the after score.
func Quick(before, after analysis.Result, check intent.Result, aiUsed bool, aiScore int, aiImprovements []string) types.QualityScore {
	improvements := Deltas(before, after)
	if aiUsed {
		improvements = mergeUnique(improvements, aiImprovements)
	}
	if !check.Preserved {
		improvements = append(improvements, PenaltyNote(check))
	}

	afterScore := analysis.Composite(after)
	if aiUsed && aiScore > 0 {
		afterScore = clamp(aiScore)
	}

	return types.QualityScore{
		Before:                  analysis.Composite(before),
		After:                   afterScore,
		Improvements:            nonNil(improvements),
		IntentPreserved:         check.Preserved,
		IntentPreservationScore: check.Score,
		Violations:              nonNil(check.Violations),
	}
}

// Baseline is the score of a record that has not completed: before only
func Baseline(before analysis.Result) types.QualityScore {
	return types.QualityScore{
		Before:                  analysis.Composite(before),
		Improvements:            []string{},
		IntentPreserved:         true,
		IntentPreservationScore: 100,
		Violations:              []string{},
	}
}

// Metadata records word counts and sub-scores of both texts
func Metadata(before, after analysis.Result) types.Metadata {
	return types.Metadata{
		Before: analysis.SubScores(before),
		After:  analysis.SubScores(after),
	}
}

// Summary converts an analyzer run into the stored analysis summary
func Summary(r analysis.Result) types.Analysis {
	return types.Analysis{
		CompletenessScore: r.CompletenessScore,
		MissingElements:   nonNil(r.MissingElements),
		GrammarFixed:      r.GrammarFixed,
		StructureImproved: r.StructureImproved,
	}
}

func resolvedElements(before, after analysis.Result) []string {
	still := make(map[string]bool, len(after.MissingElements))
	for _, e := range after.MissingElements {
		still[e] = true
	}
	var resolved []string
	for _, e := range before.MissingElements {
		if !still[e] {
			resolved = append(resolved, e)
		}
	}
	return resolved
}

func mergeUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	for _, s := range base {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		base = append(base, s)
	}
	return base
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
