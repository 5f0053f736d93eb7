package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/analysis"
	"github.com/jonathan/prompt-optimizer/internal/cache"
	"github.com/jonathan/prompt-optimizer/internal/intent"
	"github.com/jonathan/prompt-optimizer/internal/llm"
	"github.com/jonathan/prompt-optimizer/internal/pipeline/steps"
	"github.com/jonathan/prompt-optimizer/internal/prompts"
	"github.com/jonathan/prompt-optimizer/internal/rewriting"
	"github.com/jonathan/prompt-optimizer/internal/scoring"
	"github.com/jonathan/prompt-optimizer/internal/types"
	"github.com/jonathan/prompt-optimizer/internal/validation"
)

// QuickCacheKey is the fingerprint of the quick-optimization inputs
func QuickCacheKey(prompt string, media types.MediaType, targetModel string) string {
	return cache.Fingerprint(prompt, string(media), targetModel, string(types.TypeQuick))
}

// QuickOptimize runs the single-pass flow: gate, analyze, rewrite and score, then stores a
// completed record. AI failures fall back to the local rewrite rules.
func (o *Optimizer) QuickOptimize(ctx context.Context, req types.QuickRequest) (*types.Optimization, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}

	if _, err := o.gate(req.OriginalPrompt); err != nil {
		return nil, err
	}
	o.emitProgress(steps.FlowQuick, steps.StageValidate, "Prompt accepted", uuid.Nil, nil)

	before := analysis.Analyze(req.OriginalPrompt, req.MediaType)
	o.emitProgress(steps.FlowQuick, steps.StageAnalyze,
		fmt.Sprintf("Completeness %d%%", before.CompletenessScore), uuid.Nil, before)

	outcome, aiUsed, err := o.rewrite(ctx, req, before)
	if err != nil {
		return nil, err
	}

	after := analysis.Analyze(outcome.OptimizedPrompt, req.MediaType)
	check := intent.Check(outcome.OptimizedPrompt, intent.NewAllowList(req.OriginalPrompt, nil, ""))
	if !check.Preserved {
		o.logger.Warn("quick rewrite introduced unrequested content",
			zap.Strings("violations", check.Violations))
	}

	rec := &types.Optimization{
		UserID:           req.UserID,
		OriginalPrompt:   req.OriginalPrompt,
		TargetModel:      req.TargetModel,
		MediaType:        req.MediaType,
		OptimizationType: types.TypeQuick,
		OptimizationMode: types.ModeComplete,
		Status:           types.StatusPending,
		OptimizedPrompt:  outcome.OptimizedPrompt,
		QualityScore:     scoring.Quick(before, after, check, aiUsed, outcome.QualityScore, outcome.Improvements),
		Metadata:         scoring.Metadata(before, after),
		Analysis:         scoring.Summary(before),
	}
	if err := rec.Advance(types.StatusCompleted); err != nil {
		return nil, err
	}
	if err := o.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save optimization: %w", err)
	}

	o.emitProgress(steps.FlowQuick, steps.StageQuickRewrite, "Prompt optimized", rec.ID, rec.OptimizedPrompt)
	o.logger.Info("quick optimization completed",
		zap.String("id", rec.ID.String()),
		zap.Bool("ai_used", aiUsed),
		zap.Int("before", rec.QualityScore.Before),
		zap.Int("after", rec.QualityScore.After))
	return rec, nil
}

// rewrite returns the optimized text and whether the AI produced it. Only a cancelled context
// or an AI verdict that the prompt is unusable is returned as an error.
func (o *Optimizer) rewrite(ctx context.Context, req types.QuickRequest, before analysis.Result) (QuickOutcome, bool, error) {
	key := QuickCacheKey(req.OriginalPrompt, req.MediaType, req.TargetModel)
	if o.quickCache != nil {
		if cached, ok := o.quickCache.Get(key); ok {
			o.logger.Debug("quick cache hit")
			return cached, true, nil
		}
	}

	if o.AIAvailable() {
		outcome, err := o.rewriteWithAI(ctx, req, before)
		if err == nil {
			if o.quickCache != nil {
				o.quickCache.Set(key, outcome)
			}
			return outcome, true, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return QuickOutcome{}, false, ctxErr
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			return QuickOutcome{}, false, verr
		}
		o.logger.Warn("AI rewrite failed, using local rules",
			zap.String("class", string(llm.Classify(err))),
			zap.Error(err))
	}

	return QuickOutcome{OptimizedPrompt: rewriting.Apply(req.OriginalPrompt)}, false, nil
}

func (o *Optimizer) rewriteWithAI(ctx context.Context, req types.QuickRequest, before analysis.Result) (QuickOutcome, error) {
	instruction, err := prompts.Render(prompts.Optimization, "quick-optimize", map[string]string{
		"TargetModel": req.TargetModel,
		"MediaType":   string(req.MediaType),
		"Findings":    findings(before),
		"Prompt":      validation.GuardUserContent(o.logger, req.OriginalPrompt, "prompt"),
	})
	if err != nil {
		return QuickOutcome{}, err
	}

	raw, err := o.ai.GenerateJSON(ctx, instruction, llm.TierStandard)
	if err != nil {
		return QuickOutcome{}, err
	}

	decoded, err := llm.DecodeOptimization(raw)
	if err != nil {
		o.logger.Warn("could not decode AI rewrite", zap.String("excerpt", llm.Excerpt(raw, 200)))
		return QuickOutcome{}, err
	}
	if len(decoded.Failed) > 0 {
		o.logger.Debug("AI rewrite decoded after fallback",
			zap.String("strategy", decoded.Strategy),
			zap.Int("failed_strategies", len(decoded.Failed)))
	}

	resp := decoded.Response
	if !resp.IsValid {
		msg := strings.TrimSpace(resp.ValidationMessage)
		if msg == "" {
			msg = "The prompt could not be optimized."
		}
		return QuickOutcome{}, &ValidationError{Message: msg}
	}

	text := rewriting.Finalize(resp.OptimizedPrompt)
	if text == "" {
		return QuickOutcome{}, &llm.DecodeError{Message: "AI returned an empty prompt"}
	}
	return QuickOutcome{
		OptimizedPrompt: text,
		Improvements:    resp.Improvements,
		QualityScore:    resp.QualityScore,
	}, nil
}

// findings summarizes analyzer issues for the rewrite instruction
func findings(r analysis.Result) string {
	var parts []string
	parts = append(parts, r.Issues...)
	if len(r.MissingElements) > 0 {
		parts = append(parts, "missing: "+strings.Join(r.MissingElements, ", "))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "; ")
}
