package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/types"
	"github.com/jonathan/prompt-optimizer/internal/validation"
)

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidation(validation.Result{
		IsAcceptable:      false,
		ValidationMessage: "Prompt is empty",
		Issues:            []string{"empty prompt"},
	})
	output := buf.String()

	assert.Contains(t, output, "PROMPT CHECK")
	assert.Contains(t, output, "rejected")
	assert.Contains(t, output, "Prompt is empty")
	assert.Contains(t, output, "empty prompt")
}

func TestPrintQuestions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuestions(&types.Optimization{
		Analysis: types.Analysis{CompletenessScore: 25, MissingElements: []string{"style", "background"}},
		Questions: []types.Question{
			{ID: "style", Question: "Which art style?", Options: []types.Option{{Value: "watercolor"}, {Value: "anime"}}},
			{ID: "details", Question: "Anything else?"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "CLARIFYING QUESTIONS")
	assert.Contains(t, output, "Missing: style, background")
	assert.Contains(t, output, "1. [style] Which art style?")
	assert.Contains(t, output, "options: watercolor, anime")
	assert.Contains(t, output, "2. [details]")
}

func TestPrintQuestions_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuestions(nil)
	p.PrintQuestions(&types.Optimization{})

	assert.Empty(t, buf.String())
}

func TestPrintOptimization(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	long := strings.Repeat("a watercolor cat resting on a sunny windowsill ", 4)
	p.PrintOptimization(&types.Optimization{
		Status:           types.StatusCompleted,
		OptimizationType: types.TypePremium,
		TargetModel:      "dall-e-3",
		MediaType:        types.MediaImage,
		OptimizedPrompt:  long,
		QualityScore: types.QualityScore{
			Before:                  42,
			After:                   81,
			Improvements:            []string{"Fixed informal language", "Added specificity"},
			IntentPreserved:         false,
			IntentPreservationScore: 80,
			Violations:              []string{"gold (color)"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "OPTIMIZED PROMPT")
	assert.Contains(t, output, "42 → 81")
	assert.Contains(t, output, "Added specificity")
	assert.Contains(t, output, "gold (color)")
	// the prompt is wrapped, not truncated
	assert.Equal(t, 4, strings.Count(output, "windowsill"))
	assert.NotContains(t, output, "...")
}

func TestPrintOptimization_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintOptimization(nil)
	assert.Empty(t, buf.String())
}

func TestPrintReceipt(t *testing.T) {
	var buf bytes.Buffer
	id := uuid.New()

	NewPrinter(&buf).PrintReceipt(publishing.Receipt{ID: id, PublishedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})

	assert.Contains(t, buf.String(), id.String())
	assert.Contains(t, buf.String(), "2026-01-02 03:04:05")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 7))
	assert.Empty(t, wrap("   ", 10))
}
