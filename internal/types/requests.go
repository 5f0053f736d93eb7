package types

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Field limits enforced on incoming requests
const (
	MaxPromptLength  = 5000
	MaxDetailsLength = 2000
)

var validate = validator.New()

// ErrMissingUser is returned when a request has no owning user
var ErrMissingUser = errors.New("user_id is required")

// PromptInput holds the inputs shared by every optimization request.
type PromptInput struct {
	UserID         uuid.UUID `json:"user_id"`
	OriginalPrompt string    `json:"original_prompt" validate:"required,max=5000"`
	TargetModel    string    `json:"target_model" validate:"required,max=200"`
	MediaType      MediaType `json:"media_type" validate:"required,oneof=text image video audio"`
}

// Key returns the identifying tuple for the given optimization type
func (p PromptInput) Key(t OptimizationType) Key {
	return Key{
		UserID:           p.UserID,
		OriginalPrompt:   p.OriginalPrompt,
		TargetModel:      p.TargetModel,
		MediaType:        p.MediaType,
		OptimizationType: t,
	}
}

// QuickRequest is a request for a single-pass optimization
type QuickRequest struct {
	PromptInput
}

// Validate validates the QuickRequest using the validator.
func (r *QuickRequest) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrMissingUser
	}
	return validate.Struct(r)
}

// AnalyzeRequest starts a premium optimization
type AnalyzeRequest struct {
	PromptInput
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrMissingUser
	}
	return validate.Struct(r)
}

// BuildRequest completes a premium optimization with the user's answers
type BuildRequest struct {
	PromptInput
	Answers           map[string]Answer `json:"answers" validate:"dive"`
	AdditionalDetails string            `json:"additional_details,omitempty" validate:"max=2000"`
}

// Validate validates the BuildRequest using the validator.
func (r *BuildRequest) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrMissingUser
	}
	return validate.Struct(r)
}

// FeedbackRequest carries user feedback on a completed optimization
type FeedbackRequest struct {
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	WasHelpful bool   `json:"was_helpful"`
	Comments   string `json:"comments,omitempty" validate:"max=2000"`
}

// Validate validates the FeedbackRequest using the validator.
func (r *FeedbackRequest) Validate() error {
	return validate.Struct(r)
}

// ApplyRequest publishes a completed optimization as a prompt
type ApplyRequest struct {
	Tags       []string `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	Visibility string   `json:"visibility" validate:"required,oneof=public private unlisted"`
	Outputs    []string `json:"outputs,omitempty" validate:"max=10"`
}

// Validate validates the ApplyRequest using the validator.
func (r *ApplyRequest) Validate() error {
	return validate.Struct(r)
}
