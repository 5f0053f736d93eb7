// Package types provides type definitions for structured data used throughout the prompt optimizer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// MediaType is the output modality a prompt targets
type MediaType string

// MediaType constants
const (
	MediaText  MediaType = "text"
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Valid reports whether m is one of the supported media types
func (m MediaType) Valid() bool {
	switch m {
	case MediaText, MediaImage, MediaVideo, MediaAudio:
		return true
	}
	return false
}

// OptimizationType selects the quick (single pass) or premium (clarification driven) flow
type OptimizationType string

// OptimizationType constants
const (
	TypeQuick   OptimizationType = "quick"
	TypePremium OptimizationType = "premium"
)

// OptimizationMode records which premium stage last wrote the record
type OptimizationMode string

// OptimizationMode constants
const (
	ModeAnalyze  OptimizationMode = "analyze"
	ModeBuild    OptimizationMode = "build"
	ModeComplete OptimizationMode = "complete"
)

// Optimization is the central record of one optimization run.
type Optimization struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	OriginalPrompt string    `json:"original_prompt"`
	TargetModel    string    `json:"target_model"`
	MediaType      MediaType `json:"media_type"`

	OptimizationType OptimizationType `json:"optimization_type"`
	OptimizationMode OptimizationMode `json:"optimization_mode"`
	Status           Status           `json:"status"`

	Questions         []Question        `json:"questions,omitempty"`
	UserAnswers       map[string]Answer `json:"user_answers,omitempty"`
	AdditionalDetails string            `json:"additional_details,omitempty"`
	ParsedDetails     map[string]string `json:"parsed_details,omitempty"`

	OptimizedPrompt string       `json:"optimized_prompt"`
	QualityScore    QualityScore `json:"quality_score"`
	Metadata        Metadata     `json:"metadata"`
	Analysis        Analysis     `json:"analysis"`

	Feedback      *Feedback `json:"feedback,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the identifying tuple used to find the record again
func (o *Optimization) Key() Key {
	return Key{
		UserID:           o.UserID,
		OriginalPrompt:   o.OriginalPrompt,
		TargetModel:      o.TargetModel,
		MediaType:        o.MediaType,
		OptimizationType: o.OptimizationType,
	}
}

// Key identifies an optimization by owner and inputs
type Key struct {
	UserID           uuid.UUID
	OriginalPrompt   string
	TargetModel      string
	MediaType        MediaType
	OptimizationType OptimizationType
}

// QualityScore holds the before/after scores of an optimization. After is zero until completion.
type QualityScore struct {
	Before                  int      `json:"before"`
	After                   int      `json:"after"`
	Improvements            []string `json:"improvements"`
	IntentPreserved         bool     `json:"intent_preserved"`
	IntentPreservationScore int      `json:"intent_preservation_score"`
	Violations              []string `json:"violations,omitempty"`
}

// SubScores are the analyzer sub-scores for one text
type SubScores struct {
	WordCount    int `json:"word_count"`
	Completeness int `json:"completeness"`
	Clarity      int `json:"clarity"`
	Specificity  int `json:"specificity"`
	Structure    int `json:"structure"`
}

// Metadata records analyzer sub-scores before and after optimization
type Metadata struct {
	Before SubScores `json:"before"`
	After  SubScores `json:"after"`
}

// Analysis is the summary of the heuristic analysis of the original prompt
type Analysis struct {
	CompletenessScore int      `json:"completeness_score"`
	MissingElements   []string `json:"missing_elements"`
	GrammarFixed      bool     `json:"grammar_fixed"`
	StructureImproved bool     `json:"structure_improved"`
}

// Feedback is user feedback appended after completion. It never affects scores.
type Feedback struct {
	Rating      int       `json:"rating"`
	WasHelpful  bool      `json:"was_helpful"`
	Comments    string    `json:"comments,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
