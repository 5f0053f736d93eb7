package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/prompt-optimizer/internal/cache"
	"github.com/jonathan/prompt-optimizer/internal/db"
	"github.com/jonathan/prompt-optimizer/internal/llm"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	store   *db.MemoryStore
	events  []ProgressEvent
	userID  uuid.UUID
	quick   *cache.Memory[QuickOutcome]
	qstore  *cache.Memory[[]types.Question]
	options Options
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:  db.NewMemoryStore(),
		userID: uuid.New(),
		quick:  cache.NewMemory[QuickOutcome](time.Hour, func() time.Time { return fixedNow }),
		qstore: cache.NewMemory[[]types.Question](time.Hour, func() time.Time { return fixedNow }),
	}
	h.options = Options{
		Store:         h.store,
		Publisher:     h.store,
		QuestionCache: h.qstore,
		QuickCache:    h.quick,
		Logger:        zaptest.NewLogger(t),
		OnProgress:    func(e ProgressEvent) { h.events = append(h.events, e) },
		Now:           func() time.Time { return fixedNow },
	}
	return h
}

// optimizer returns an Optimizer over the shared store using ai
func (h *harness) optimizer(ai llm.Generator) *Optimizer {
	opts := h.options
	opts.AI = ai
	return New(opts)
}

func (h *harness) input(prompt string, media types.MediaType) types.PromptInput {
	return types.PromptInput{
		UserID:         h.userID,
		OriginalPrompt: prompt,
		TargetModel:    "dall-e-3",
		MediaType:      media,
	}
}

func (h *harness) stages() []string {
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Stage)
	}
	return out
}
