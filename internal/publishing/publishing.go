// Package publishing defines the collaborator that turns a completed optimization into a
// published prompt.
package publishing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

// Visibility values accepted for a published prompt
const (
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityUnlisted = "unlisted"
)

// Draft is the prompt handed to a Publisher
type Draft struct {
	OptimizationID  uuid.UUID       `json:"optimization_id"`
	UserID          uuid.UUID       `json:"user_id"`
	OptimizedPrompt string          `json:"optimized_prompt"`
	MediaType       types.MediaType `json:"media_type"`
	TargetModel     string          `json:"target_model"`
	Tags            []string        `json:"tags"`
	Visibility      string          `json:"visibility"`
	Outputs         []string        `json:"outputs"`
}

// Receipt identifies a published prompt
type Receipt struct {
	ID          uuid.UUID `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher stores drafts as published prompts
type Publisher interface {
	Publish(ctx context.Context, draft Draft) (Receipt, error)
}

// NewDraft builds the draft for a completed optimization
func NewDraft(o *types.Optimization, req types.ApplyRequest) Draft {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	outputs := req.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	return Draft{
		OptimizationID:  o.ID,
		UserID:          o.UserID,
		OptimizedPrompt: o.OptimizedPrompt,
		MediaType:       o.MediaType,
		TargetModel:     o.TargetModel,
		Tags:            tags,
		Visibility:      req.Visibility,
		Outputs:         outputs,
	}
}
