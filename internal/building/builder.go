// Package building writes the premium optimized prompt from the user's allow-listed content.
package building

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/details"
	"github.com/jonathan/prompt-optimizer/internal/intent"
	"github.com/jonathan/prompt-optimizer/internal/llm"
	"github.com/jonathan/prompt-optimizer/internal/modelfamily"
	"github.com/jonathan/prompt-optimizer/internal/prompts"
	"github.com/jonathan/prompt-optimizer/internal/types"
	"github.com/jonathan/prompt-optimizer/internal/validation"
)

// Request is the input of a premium build
type Request struct {
	TargetModel   string
	MediaType     types.MediaType
	AllowList     intent.AllowList
	ParsedDetails map[string]string
}

// Builder issues the single generation call of a premium build
type Builder struct {
	ai     llm.Generator
	logger *zap.Logger
}

// NewBuilder returns a Builder
func NewBuilder(ai llm.Generator, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{ai: ai, logger: logger}
}

// Available reports whether builds can run
func (b *Builder) Available() bool {
	return b.ai != nil && b.ai.Available()
}

// Build returns the trimmed model response as the optimized prompt. There is no offline path:
// without the AI it returns *llm.UnavailableError.
func (b *Builder) Build(ctx context.Context, req Request) (string, error) {
	if !b.Available() {
		return "", &llm.UnavailableError{}
	}

	instruction := Instruction(req, func(text, label string) string {
		return validation.GuardUserContent(b.logger, text, label)
	})

	out, err := b.ai.Generate(ctx, instruction, llm.TierAdvanced)
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", &llm.DecodeError{Message: "AI returned an empty prompt"}
	}
	return out, nil
}

// Instruction renders the build instruction for req
func Instruction(req Request, quote func(text, label string) string) string {
	allow := req.AllowList.Render(quote)
	if len(req.ParsedDetails) > 0 {
		var sb strings.Builder
		sb.WriteString(allow)
		sb.WriteString("\nAdditional details by category:\n")
		for _, name := range details.Categories {
			if v, ok := req.ParsedDetails[name]; ok {
				sb.WriteString("- " + name + ": " + v + "\n")
			}
		}
		allow = sb.String()
	}

	return prompts.MustRender(prompts.Optimization, "build-premium", map[string]string{
		"TargetModel": req.TargetModel,
		"MediaType":   string(req.MediaType),
		"Conventions": Conventions(req.TargetModel, req.MediaType),
		"AllowList":   allow,
	})
}

// Conventions returns the structuring conventions of the target model family. An unknown model
// falls back to the media type.
func Conventions(targetModel string, media types.MediaType) string {
	family := modelfamily.Classify(targetModel)
	if family == modelfamily.Generic {
		switch media {
		case types.MediaImage:
			family = modelfamily.Image
		case types.MediaText:
			family = modelfamily.Text
		}
	}
	return prompts.MustGet(prompts.Optimization, "conventions-"+string(family))
}
