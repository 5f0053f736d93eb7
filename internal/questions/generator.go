// Package questions produces the clarifying questions asked before a premium build, from the AI
// when it is available and from static templates otherwise.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/cache"
	"github.com/jonathan/prompt-optimizer/internal/llm"
	"github.com/jonathan/prompt-optimizer/internal/modelfamily"
	"github.com/jonathan/prompt-optimizer/internal/prompts"
	"github.com/jonathan/prompt-optimizer/internal/schemas"
	"github.com/jonathan/prompt-optimizer/internal/types"
	"github.com/jonathan/prompt-optimizer/internal/validation"
)

// Source says where a question set came from
type Source string

const (
	SourceAI       Source = "ai"
	SourceTemplate Source = "template"
	SourceCache    Source = "cache"
)

// Bounds on an accepted AI question set
const (
	MinQuestions = 3
	MaxQuestions = 5
)

// Result is a generated question set
type Result struct {
	Questions []types.Question
	Source    Source
}

// Generator builds clarifying questions
type Generator struct {
	ai     llm.Generator
	cache  cache.Store[[]types.Question]
	logger *zap.Logger
}

// NewGenerator returns a Generator. store may be nil to disable caching.
func NewGenerator(ai llm.Generator, store cache.Store[[]types.Question], logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{ai: ai, cache: store, logger: logger}
}

// CacheKey is the fingerprint of the question-generation inputs
func CacheKey(prompt string, media types.MediaType, targetModel string) string {
	return cache.Fingerprint(prompt, string(media), targetModel)
}

// Generate returns 3-5 questions for the prompt. AI failures fall back to the template for
// media; only a cancelled context is returned as an error.
func (g *Generator) Generate(ctx context.Context, prompt string, media types.MediaType, targetModel string, missing []string) (Result, error) {
	key := CacheKey(prompt, media, targetModel)
	if g.cache != nil {
		if cached, ok := g.cache.Get(key); ok {
			return Result{Questions: clone(cached), Source: SourceCache}, nil
		}
	}

	if g.ai != nil && g.ai.Available() {
		qs, err := g.fromAI(ctx, prompt, media, targetModel, missing)
		if err == nil {
			if g.cache != nil {
				g.cache.Set(key, clone(qs))
			}
			return Result{Questions: qs, Source: SourceAI}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		g.logger.Warn("question generation failed, using template",
			zap.String("media_type", string(media)),
			zap.String("target_model", targetModel),
			zap.Error(err))
	}

	return Result{Questions: Template(media), Source: SourceTemplate}, nil
}

func (g *Generator) fromAI(ctx context.Context, prompt string, media types.MediaType, targetModel string, missing []string) ([]types.Question, error) {
	missingText := "none"
	if len(missing) > 0 {
		missingText = strings.Join(missing, ", ")
	}

	instruction := prompts.MustRender(prompts.Questions, "generate-questions", map[string]string{
		"TargetModel":     targetModel,
		"MediaType":       string(media),
		"Guidance":        Guidance(targetModel),
		"MissingElements": missingText,
		"Prompt":          validation.GuardUserContent(g.logger, prompt, "user prompt"),
	})

	raw, err := g.ai.GenerateJSON(ctx, instruction, llm.TierStandard)
	if err != nil {
		return nil, err
	}

	doc, err := llm.NormalizeJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.Questions, []byte(doc)); err != nil {
		return nil, &llm.DecodeError{Message: "question payload failed schema validation", Excerpt: llm.Excerpt(raw, 200), Cause: err}
	}

	var payload struct {
		Questions []wireQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		return nil, &llm.DecodeError{Message: "question payload has an unexpected shape", Cause: err}
	}

	qs := normalize(payload.Questions)
	if len(qs) < MinQuestions {
		return nil, fmt.Errorf("AI returned %d usable questions, need at least %d", len(qs), MinQuestions)
	}
	return qs, nil
}

// Guidance returns the model-family specific guidance block for targetModel
func Guidance(targetModel string) string {
	switch modelfamily.Classify(targetModel) {
	case modelfamily.Image:
		return prompts.MustGet(prompts.Questions, "guidance-image")
	case modelfamily.Text:
		return prompts.MustGet(prompts.Questions, "guidance-text")
	default:
		return prompts.MustGet(prompts.Questions, "guidance-generic")
	}
}

type wireQuestion struct {
	ID       string         `json:"id"`
	Question string         `json:"question"`
	Type     string         `json:"type"`
	Priority string         `json:"priority"`
	Options  []types.Option `json:"options"`
	Default  *string        `json:"default"`
}

// normalize cleans an AI question list: unique ids, known type and priority, a default and the
// explicit no-preference and other options. At most MaxQuestions are kept.
func normalize(in []wireQuestion) []types.Question {
	seen := make(map[string]bool)
	out := make([]types.Question, 0, len(in))
	for _, w := range in {
		id := slug(w.ID)
		text := strings.TrimSpace(w.Question)
		if id == "" || text == "" || seen[id] {
			continue
		}
		seen[id] = true

		q := types.Question{
			ID:       id,
			Question: text,
			Type:     types.QuestionType(strings.ToLower(strings.TrimSpace(w.Type))),
			Priority: strings.ToLower(strings.TrimSpace(w.Priority)),
			Default:  types.OptionNoPreference,
		}
		if w.Default != nil && strings.TrimSpace(*w.Default) != "" {
			q.Default = strings.TrimSpace(*w.Default)
		}

		for _, o := range w.Options {
			value := strings.TrimSpace(o.Value)
			if value == "" || value == types.OptionNoPreference || value == types.OptionOther {
				continue
			}
			label := strings.TrimSpace(o.Label)
			if label == "" {
				label = value
			}
			q.Options = append(q.Options, types.Option{Value: value, Label: label})
		}

		if q.Type != types.QuestionChoice && q.Type != types.QuestionText {
			q.Type = types.QuestionText
			if len(q.Options) > 0 {
				q.Type = types.QuestionChoice
			}
		}
		switch q.Priority {
		case types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
		default:
			q.Priority = types.PriorityMedium
		}
		q.Options = append(q.Options, noPreference, other)

		out = append(out, q)
		if len(out) == MaxQuestions {
			break
		}
	}
	return out
}

func slug(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r == ' ' || r == '-':
			return '_'
		default:
			return -1
		}
	}, id)
}

func clone(qs []types.Question) []types.Question {
	out := make([]types.Question, len(qs))
	for i, q := range qs {
		q.Options = append([]types.Option(nil), q.Options...)
		out[i] = q
	}
	return out
}
