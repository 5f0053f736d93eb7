package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/pipeline/steps"
	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

// Get returns the user's optimization. Records owned by someone else are reported as missing.
func (o *Optimizer) Get(ctx context.Context, userID, id uuid.UUID) (*types.Optimization, error) {
	rec, err := o.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load optimization: %w", err)
	}
	if rec == nil || rec.UserID != userID {
		return nil, &NotFoundError{ID: id}
	}
	return rec, nil
}

// List returns the user's most recent optimizations, newest first
func (o *Optimizer) List(ctx context.Context, userID uuid.UUID, limit int) ([]types.Optimization, error) {
	if userID == uuid.Nil {
		return nil, &ValidationError{Message: types.ErrMissingUser.Error(), Cause: types.ErrMissingUser}
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	recs, err := o.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimizations: %w", err)
	}
	return recs, nil
}

// SubmitFeedback attaches the user's rating to a completed optimization. Scores are unchanged.
func (o *Optimizer) SubmitFeedback(ctx context.Context, userID, id uuid.UUID, req types.FeedbackRequest) (*types.Optimization, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	rec, err := o.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := steps.CheckStatus(steps.StageFeedback, rec.Status); err != nil {
		return nil, &ValidationError{Message: "Feedback can only be given on completed optimizations.", Cause: err}
	}

	rec.Feedback = &types.Feedback{
		Rating:      req.Rating,
		WasHelpful:  req.WasHelpful,
		Comments:    req.Comments,
		SubmittedAt: o.now().UTC(),
	}
	if err := o.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	o.emitProgress("", steps.StageFeedback, "Feedback recorded", rec.ID, rec.Feedback)
	o.logger.Info("feedback recorded", zap.String("id", rec.ID.String()), zap.Int("rating", req.Rating))
	return rec, nil
}

// Apply publishes a completed optimization as a reusable prompt
func (o *Optimizer) Apply(ctx context.Context, userID, id uuid.UUID, req types.ApplyRequest) (publishing.Receipt, error) {
	if err := req.Validate(); err != nil {
		return publishing.Receipt{}, requestError(err)
	}
	if o.publisher == nil {
		return publishing.Receipt{}, ErrNoPublisher
	}
	rec, err := o.Get(ctx, userID, id)
	if err != nil {
		return publishing.Receipt{}, err
	}
	if err := steps.CheckStatus(steps.StageApply, rec.Status); err != nil {
		return publishing.Receipt{}, &ValidationError{Message: "Only completed optimizations can be applied.", Cause: err}
	}

	receipt, err := o.publisher.Publish(ctx, publishing.NewDraft(rec, req))
	if err != nil {
		return publishing.Receipt{}, fmt.Errorf("failed to publish prompt: %w", err)
	}
	o.emitProgress("", steps.StageApply, "Prompt published", rec.ID, receipt)
	o.logger.Info("optimization applied",
		zap.String("id", rec.ID.String()),
		zap.String("prompt_id", receipt.ID.String()),
		zap.String("visibility", req.Visibility))
	return receipt, nil
}
