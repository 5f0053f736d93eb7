package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/analysis"
	"github.com/jonathan/prompt-optimizer/internal/building"
	"github.com/jonathan/prompt-optimizer/internal/intent"
	"github.com/jonathan/prompt-optimizer/internal/llm"
	"github.com/jonathan/prompt-optimizer/internal/pipeline/steps"
	"github.com/jonathan/prompt-optimizer/internal/scoring"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

// Analyze starts a premium optimization. The returned record is questions_ready and carries the
// clarifying questions and the baseline score.
func (o *Optimizer) Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.Optimization, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	if _, err := o.gate(req.OriginalPrompt); err != nil {
		return nil, err
	}
	o.emitProgress(steps.FlowAnalyze, steps.StageValidate, "Prompt accepted", uuid.Nil, nil)

	rec := &types.Optimization{
		UserID:           req.UserID,
		OriginalPrompt:   req.OriginalPrompt,
		TargetModel:      req.TargetModel,
		MediaType:        req.MediaType,
		OptimizationType: types.TypePremium,
		OptimizationMode: types.ModeAnalyze,
		Status:           types.StatusPending,
	}
	if err := rec.Advance(types.StatusAnalyzing); err != nil {
		return nil, err
	}
	if err := o.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save optimization: %w", err)
	}

	before := analysis.Analyze(req.OriginalPrompt, req.MediaType)
	rec.Analysis = scoring.Summary(before)
	rec.QualityScore = scoring.Baseline(before)
	rec.Metadata = types.Metadata{Before: analysis.SubScores(before)}
	o.emitProgress(steps.FlowAnalyze, steps.StageAnalyze,
		fmt.Sprintf("Completeness %d%%", before.CompletenessScore), rec.ID, rec.Analysis)

	generated, err := o.questions.Generate(ctx, req.OriginalPrompt, req.MediaType, req.TargetModel, before.MissingElements)
	if err != nil {
		o.fail(ctx, rec, err)
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}
	rec.Questions = generated.Questions

	if err := rec.Advance(types.StatusQuestionsReady); err != nil {
		return nil, err
	}
	if err := o.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save questions: %w", err)
	}

	o.emitProgress(steps.FlowAnalyze, steps.StageGenerateQuestions,
		fmt.Sprintf("%d questions ready", len(rec.Questions)), rec.ID, rec.Questions)
	o.logger.Info("premium analysis ready",
		zap.String("id", rec.ID.String()),
		zap.String("question_source", string(generated.Source)),
		zap.Int("questions", len(rec.Questions)))
	return rec, nil
}

// Build completes a premium optimization from the user's answers. The record awaiting build is
// found by its identifying tuple and claimed atomically; when the AI is unavailable nothing is
// touched.
func (o *Optimizer) Build(ctx context.Context, req types.BuildRequest) (*types.Optimization, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	if !o.builder.Available() {
		return nil, &llm.UnavailableError{}
	}

	key := req.Key(types.TypePremium)
	rec, err := o.store.ClaimByKey(ctx, key, types.StatusQuestionsReady, types.StatusBuilding)
	if err != nil {
		return nil, fmt.Errorf("failed to claim optimization: %w", err)
	}
	if rec == nil {
		nf := &NotFoundError{Key: &key}
		if latest, err := o.store.FindByKey(ctx, key); err == nil && latest != nil {
			nf.ID = latest.ID
			nf.Status = latest.Status
		}
		return nil, nf
	}

	rec.UserAnswers = req.Answers
	rec.AdditionalDetails = req.AdditionalDetails
	rec.OptimizationMode = types.ModeBuild
	markAnswered(rec.Questions, req.Answers)

	if req.AdditionalDetails != "" {
		rec.ParsedDetails = o.details.Parse(ctx, req.AdditionalDetails, req.MediaType)
		o.emitProgress(steps.FlowBuild, steps.StageParseDetails,
			fmt.Sprintf("%d detail categories", len(rec.ParsedDetails)), rec.ID, rec.ParsedDetails)
	}

	allow := intent.NewAllowList(rec.OriginalPrompt, req.Answers, req.AdditionalDetails)
	optimized, err := o.builder.Build(ctx, building.Request{
		TargetModel:   rec.TargetModel,
		MediaType:     rec.MediaType,
		AllowList:     allow,
		ParsedDetails: rec.ParsedDetails,
	})
	if err != nil {
		o.fail(ctx, rec, err)
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}
	rec.OptimizedPrompt = optimized
	o.emitProgress(steps.FlowBuild, steps.StageBuildPrompt, "Prompt built", rec.ID, optimized)

	check := intent.Check(optimized, allow)
	if !check.Preserved {
		o.logger.Warn("built prompt introduced unrequested content",
			zap.String("id", rec.ID.String()),
			zap.Strings("violations", check.Violations))
	}

	before := analysis.Analyze(rec.OriginalPrompt, rec.MediaType)
	after := analysis.Analyze(optimized, rec.MediaType)
	rec.QualityScore = scoring.Premium(before, after, check, allow)
	rec.Metadata = scoring.Metadata(before, after)
	rec.Analysis = scoring.Summary(before)
	rec.OptimizationMode = types.ModeComplete
	if err := rec.Advance(types.StatusCompleted); err != nil {
		return nil, err
	}
	if err := o.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save optimization: %w", err)
	}

	o.emitProgress(steps.FlowBuild, steps.StageEvaluate,
		fmt.Sprintf("Intent score %d", check.Score), rec.ID, rec.QualityScore)
	o.logger.Info("premium optimization completed",
		zap.String("id", rec.ID.String()),
		zap.Bool("intent_preserved", check.Preserved),
		zap.Int("before", rec.QualityScore.Before),
		zap.Int("after", rec.QualityScore.After))
	return rec, nil
}

// markAnswered records an answer on every question that received one with content
func markAnswered(qs []types.Question, answers map[string]types.Answer) {
	for i := range qs {
		ans, ok := answers[qs[i].ID]
		if !ok {
			continue
		}
		text := ans.Text()
		qs[i].Answered = text != ""
		qs[i].Answer = text
	}
}
