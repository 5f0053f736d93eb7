// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/types"
	"github.com/jonathan/prompt-optimizer/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4)))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

func pad(s string) string {
	n := boxWidth - 4 - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	return s + strings.Repeat(" ", n)
}

// wrap breaks text into lines of at most width runes on word boundaries
func wrap(text string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// PrintValidation outputs the pre-validation verdict.
func (p *Printer) PrintValidation(r validation.Result) {
	var sb strings.Builder
	verdict := "✅ acceptable"
	if !r.IsAcceptable {
		verdict = "❌ rejected"
	}
	sb.WriteString(fmt.Sprintf("Verdict:  %s\n", verdict))
	if r.ValidationMessage != "" {
		sb.WriteString(fmt.Sprintf("Message:  %s\n", r.ValidationMessage))
	}
	for _, issue := range r.Issues {
		sb.WriteString(fmt.Sprintf("  ⚠ %s\n", issue))
	}

	p.printBox("PROMPT CHECK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQuestions outputs the clarifying questions of a premium analysis.
func (p *Printer) PrintQuestions(o *types.Optimization) {
	if o == nil || len(o.Questions) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Completeness: %d  Missing: %s\n\n", o.Analysis.CompletenessScore,
		orNone(o.Analysis.MissingElements)))

	for i, q := range o.Questions {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, q.ID, q.Question))
		if len(q.Options) > 0 {
			values := make([]string, 0, len(q.Options))
			for _, opt := range q.Options {
				values = append(values, opt.Value)
			}
			sb.WriteString(fmt.Sprintf("   options: %s\n", strings.Join(values, ", ")))
		}
		if i < len(o.Questions)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CLARIFYING QUESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOptimization outputs the optimized prompt with its scores.
func (p *Printer) PrintOptimization(o *types.Optimization) {
	if o == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:   %s (%s)\n", o.Status, o.OptimizationType))
	sb.WriteString(fmt.Sprintf("Target:   %s / %s\n", o.TargetModel, o.MediaType))
	sb.WriteString(fmt.Sprintf("Score:    %d → %d\n", o.QualityScore.Before, o.QualityScore.After))
	sb.WriteString("\n")

	for _, line := range wrap(o.OptimizedPrompt, boxWidth-4) {
		sb.WriteString(line + "\n")
	}

	if len(o.QualityScore.Improvements) > 0 {
		sb.WriteString("\nImprovements:\n")
		count := min(len(o.QualityScore.Improvements), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", o.QualityScore.Improvements[i]))
		}
		if len(o.QualityScore.Improvements) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(o.QualityScore.Improvements)-maxItemsToShow))
		}
	}

	if !o.QualityScore.IntentPreserved {
		sb.WriteString(fmt.Sprintf("\n⚠ Intent %d/100: %s\n", o.QualityScore.IntentPreservationScore,
			strings.Join(o.QualityScore.Violations, ", ")))
	}
	if o.FailureReason != "" {
		sb.WriteString(fmt.Sprintf("\n❌ %s\n", o.FailureReason))
	}

	p.printBox("OPTIMIZED PROMPT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReceipt outputs a publishing receipt.
func (p *Printer) PrintReceipt(r publishing.Receipt) {
	p.printBox("PUBLISHED", fmt.Sprintf("ID:       %s\nAt:       %s", r.ID, r.PublishedAt.Format("2006-01-02 15:04:05")))
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
