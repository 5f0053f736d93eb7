package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/prompt-optimizer/internal/publishing"
)

// Publish stores the draft in the prompts table
func (db *DB) Publish(ctx context.Context, draft publishing.Draft) (publishing.Receipt, error) {
	outputs, err := json.Marshal(draft.Outputs)
	if err != nil {
		return publishing.Receipt{}, fmt.Errorf("failed to marshal outputs: %w", err)
	}
	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}

	receipt := publishing.Receipt{ID: uuid.New()}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO prompts (id, optimization_id, user_id, content, media_type, target_model,
		    tags, visibility, outputs)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING published_at`,
		receipt.ID, draft.OptimizationID, draft.UserID, draft.OptimizedPrompt,
		string(draft.MediaType), draft.TargetModel, tags, draft.Visibility, outputs,
	).Scan(&receipt.PublishedAt)
	if err != nil {
		return publishing.Receipt{}, fmt.Errorf("failed to publish prompt: %w", err)
	}
	return receipt, nil
}

var _ publishing.Publisher = (*DB)(nil)
