// Package pipeline orchestrates prompt optimization: the quick single-pass flow, the premium
// analyze/build flow, and the record lifecycle around them.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-optimizer/internal/building"
	"github.com/jonathan/prompt-optimizer/internal/cache"
	"github.com/jonathan/prompt-optimizer/internal/details"
	"github.com/jonathan/prompt-optimizer/internal/llm"
	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/questions"
	"github.com/jonathan/prompt-optimizer/internal/types"
	"github.com/jonathan/prompt-optimizer/internal/validation"
)

// List limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// QuickOutcome is the cached result of an AI quick rewrite
type QuickOutcome struct {
	OptimizedPrompt string
	Improvements    []string
	QualityScore    int
}

// Options holds the collaborators of an Optimizer. Only Store is required.
type Options struct {
	AI            llm.Generator
	Store         Store
	Publisher     publishing.Publisher
	QuestionCache cache.Store[[]types.Question]
	QuickCache    cache.Store[QuickOutcome]
	Logger        *zap.Logger
	OnProgress    ProgressCallback
	Now           func() time.Time
}

// Optimizer runs optimizations against a store
type Optimizer struct {
	ai         llm.Generator
	store      Store
	publisher  publishing.Publisher
	quickCache cache.Store[QuickOutcome]
	questions  *questions.Generator
	details    *details.Parser
	builder    *building.Builder
	logger     *zap.Logger
	onProgress ProgressCallback
	now        func() time.Time
}

// New returns an Optimizer wired from opts
func New(opts Options) *Optimizer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Optimizer{
		ai:         opts.AI,
		store:      opts.Store,
		publisher:  opts.Publisher,
		quickCache: opts.QuickCache,
		questions:  questions.NewGenerator(opts.AI, opts.QuestionCache, logger.Named("questions")),
		details:    details.NewParser(opts.AI, logger.Named("details")),
		builder:    building.NewBuilder(opts.AI, logger.Named("building")),
		logger:     logger,
		onProgress: opts.OnProgress,
		now:        now,
	}
}

// ValidatePrompt runs the pre-validation gate
func (o *Optimizer) ValidatePrompt(prompt string) validation.Result {
	return validation.PreValidate(prompt)
}

// AIAvailable reports whether AI-assisted stages can run
func (o *Optimizer) AIAvailable() bool {
	return o.ai != nil && o.ai.Available()
}

// gate rejects prompts the pre-validator finds unacceptable
func (o *Optimizer) gate(prompt string) (validation.Result, error) {
	res := validation.PreValidate(prompt)
	if !res.IsAcceptable {
		msg := res.ValidationMessage
		if msg == "" {
			msg = "Prompt was rejected."
		}
		return res, &ValidationError{Message: msg, Issues: res.Issues}
	}
	return res, nil
}

// fail moves rec to failed and persists it. The write survives cancellation of ctx so the record
// keeps its last consistent state.
func (o *Optimizer) fail(ctx context.Context, rec *types.Optimization, cause error) {
	if err := rec.Advance(types.StatusFailed); err != nil {
		o.logger.Error("cannot mark optimization failed", zap.String("id", rec.ID.String()), zap.Error(err))
		return
	}
	rec.FailureReason = llm.UserMessage(cause)
	if err := o.store.Update(context.WithoutCancel(ctx), rec); err != nil {
		o.logger.Error("failed to persist failed optimization", zap.String("id", rec.ID.String()), zap.Error(err))
	}
}
