// Package details extracts categorized preferences from the free-form notes a user adds to a
// premium optimization.
package details

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/llm"
	"github.com/jonathan/prompt-optimizer/internal/prompts"
	"github.com/jonathan/prompt-optimizer/internal/schemas"
	"github.com/jonathan/prompt-optimizer/internal/types"
	"github.com/jonathan/prompt-optimizer/internal/validation"
)

// Categories in extraction order
const (
	CategoryStyle       = "style"
	CategoryColors      = "colors"
	CategoryLighting    = "lighting"
	CategoryMood        = "mood"
	CategoryDetails     = "details"
	CategoryBackground  = "background"
	CategoryComposition = "composition"
	CategoryQuality     = "quality"
	CategoryOther       = "other"
)

// Categories lists every category in extraction order
var Categories = []string{
	CategoryStyle, CategoryColors, CategoryLighting, CategoryMood, CategoryDetails,
	CategoryBackground, CategoryComposition, CategoryQuality, CategoryOther,
}

// Schema returns the extraction schema over the fixed categories
func Schema(media types.MediaType) llm.ExtractionSchema {
	if media == "" {
		media = types.MediaImage
	}
	field := func(name, desc string) llm.SchemaField {
		return llm.SchemaField{Name: name, Type: `"string" or ["string"]`, Description: desc}
	}
	return llm.ExtractionSchema{
		Name: "PromptDetails",
		Description: prompts.MustRender(prompts.Details, "extract-details", map[string]string{
			"MediaType": string(media),
		}),
		Fields: []llm.SchemaField{
			field(CategoryStyle, "art or writing style"),
			field(CategoryColors, "colors or palette"),
			field(CategoryLighting, "lighting"),
			field(CategoryMood, "mood, atmosphere or tone"),
			field(CategoryDetails, "specific objects, features or details to include"),
			field(CategoryBackground, "background or setting"),
			field(CategoryComposition, "framing, perspective or layout"),
			field(CategoryQuality, "quality, resolution or level of detail"),
			field(CategoryOther, "anything stated that fits no other category"),
		},
	}
}

// Parser turns free text into category -> value
type Parser struct {
	ai     llm.Generator
	logger *zap.Logger
}

// NewParser returns a Parser
func NewParser(ai llm.Generator, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{ai: ai, logger: logger}
}

// Parse extracts categories from text. Empty text yields an empty map. When the AI is unavailable
// or fails, or extracts nothing, the whole text is kept under "other".
func (p *Parser) Parse(ctx context.Context, text string, media types.MediaType) map[string]string {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]string{}
	}
	verbatim := map[string]string{CategoryOther: text}

	if p.ai == nil || !p.ai.Available() {
		return verbatim
	}

	parsed, err := p.extract(ctx, text, media)
	if err != nil {
		p.logger.Warn("detail extraction failed, keeping text verbatim", zap.Error(err))
		return verbatim
	}
	if len(parsed) == 0 {
		return verbatim
	}
	return parsed
}

func (p *Parser) extract(ctx context.Context, text string, media types.MediaType) (map[string]string, error) {
	schema := Schema(media)
	instruction := llm.BuildExtractionPrompt(schema, validation.GuardUserContent(p.logger, text, "additional details"))

	raw, err := p.ai.GenerateJSON(ctx, instruction, llm.TierLite)
	if err != nil {
		return nil, err
	}
	doc, err := llm.NormalizeJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.Details, []byte(doc)); err != nil {
		return nil, &llm.DecodeError{Message: "detail payload failed schema validation", Excerpt: llm.Excerpt(raw, 200), Cause: err}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		return nil, &llm.DecodeError{Message: "detail payload has an unexpected shape", Cause: err}
	}

	out := make(map[string]string)
	for _, name := range schema.FieldNames() {
		value, err := flatten(payload[name])
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", name, err)
		}
		if value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// flatten renders a string or string-array category as text
func flatten(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", err
	}
	kept := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ", "), nil
}
