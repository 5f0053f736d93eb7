package pipeline

import (
	"github.com/google/uuid"

	"github.com/jonathan/prompt-optimizer/internal/pipeline/steps"
)

// ProgressEvent represents a progress update during an optimization
type ProgressEvent struct {
	Stage    string    `json:"stage"`
	Category string    `json:"category"`
	Message  string    `json:"message"`
	RecordID uuid.UUID `json:"record_id,omitempty"`
	Index    int       `json:"index"`
	Total    int       `json:"total"`
	Content  any       `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// emitProgress calls the progress callback if configured
func (o *Optimizer) emitProgress(flow, stage, message string, id uuid.UUID, content any) {
	if o.onProgress == nil {
		return
	}
	def, _ := steps.Lookup(stage)
	index, total := steps.Position(flow, stage)
	o.onProgress(ProgressEvent{
		Stage:    stage,
		Category: def.Category,
		Message:  message,
		RecordID: id,
		Index:    index,
		Total:    total,
		Content:  content,
	})
}
