package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

// -----------------------------------------------------------------------------
// Optimization Methods
// -----------------------------------------------------------------------------

const optimizationColumns = `id, user_id, original_prompt, target_model, media_type, optimization_type,
	optimization_mode, status, questions, user_answers, additional_details, parsed_details,
	optimized_prompt, quality_score, metadata, analysis, feedback, failure_reason, created_at, updated_at`

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// jsonColumns holds the encoded JSONB columns of a record
type jsonColumns struct {
	questions, answers, parsed, score, metadata, analysis, feedback []byte
}

func encodeColumns(o *types.Optimization) (jsonColumns, error) {
	var cols jsonColumns
	var err error

	questions := o.Questions
	if questions == nil {
		questions = []types.Question{}
	}
	if cols.questions, err = json.Marshal(questions); err != nil {
		return cols, fmt.Errorf("failed to marshal questions: %w", err)
	}
	answers := o.UserAnswers
	if answers == nil {
		answers = map[string]types.Answer{}
	}
	if cols.answers, err = json.Marshal(answers); err != nil {
		return cols, fmt.Errorf("failed to marshal answers: %w", err)
	}
	parsed := o.ParsedDetails
	if parsed == nil {
		parsed = map[string]string{}
	}
	if cols.parsed, err = json.Marshal(parsed); err != nil {
		return cols, fmt.Errorf("failed to marshal parsed details: %w", err)
	}
	if cols.score, err = json.Marshal(o.QualityScore); err != nil {
		return cols, fmt.Errorf("failed to marshal quality score: %w", err)
	}
	if cols.metadata, err = json.Marshal(o.Metadata); err != nil {
		return cols, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if cols.analysis, err = json.Marshal(o.Analysis); err != nil {
		return cols, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if o.Feedback != nil {
		if cols.feedback, err = json.Marshal(o.Feedback); err != nil {
			return cols, fmt.Errorf("failed to marshal feedback: %w", err)
		}
	}
	return cols, nil
}

func scanOptimization(row rowScanner) (*types.Optimization, error) {
	var o types.Optimization
	var media, optType, mode, status string
	var cols jsonColumns

	err := row.Scan(&o.ID, &o.UserID, &o.OriginalPrompt, &o.TargetModel, &media, &optType,
		&mode, &status, &cols.questions, &cols.answers, &o.AdditionalDetails, &cols.parsed,
		&o.OptimizedPrompt, &cols.score, &cols.metadata, &cols.analysis, &cols.feedback,
		&o.FailureReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	o.MediaType = types.MediaType(media)
	o.OptimizationType = types.OptimizationType(optType)
	o.OptimizationMode = types.OptimizationMode(mode)
	o.Status = types.Status(status)

	decode := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"questions", cols.questions, &o.Questions},
		{"user_answers", cols.answers, &o.UserAnswers},
		{"parsed_details", cols.parsed, &o.ParsedDetails},
		{"quality_score", cols.score, &o.QualityScore},
		{"metadata", cols.metadata, &o.Metadata},
		{"analysis", cols.analysis, &o.Analysis},
	}
	for _, d := range decode {
		if len(d.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", d.name, err)
		}
	}
	if len(cols.feedback) > 0 {
		var fb types.Feedback
		if err := json.Unmarshal(cols.feedback, &fb); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
		o.Feedback = &fb
	}
	return &o, nil
}

// Create inserts a new optimization. A nil ID is assigned; timestamps are set by the database.
func (db *DB) Create(ctx context.Context, o *types.Optimization) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cols, err := encodeColumns(o)
	if err != nil {
		return err
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO optimizations (id, user_id, original_prompt, target_model, media_type,
		    optimization_type, optimization_mode, status, questions, user_answers,
		    additional_details, parsed_details, optimized_prompt, quality_score, metadata,
		    analysis, feedback, failure_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.OriginalPrompt, o.TargetModel, string(o.MediaType),
		string(o.OptimizationType), string(o.OptimizationMode), string(o.Status), cols.questions,
		cols.answers, o.AdditionalDetails, cols.parsed, o.OptimizedPrompt, cols.score,
		cols.metadata, cols.analysis, cols.feedback, o.FailureReason,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create optimization: %w", err)
	}
	return nil
}

// GetByID retrieves an optimization by ID. Returns nil, nil when absent.
func (db *DB) GetByID(ctx context.Context, id uuid.UUID) (*types.Optimization, error) {
	o, err := scanOptimization(db.pool.QueryRow(ctx,
		`SELECT `+optimizationColumns+` FROM optimizations WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get optimization: %w", err)
	}
	return o, nil
}

// FindByKey returns the most recent optimization matching key, or nil, nil
func (db *DB) FindByKey(ctx context.Context, key types.Key) (*types.Optimization, error) {
	o, err := scanOptimization(db.pool.QueryRow(ctx,
		`SELECT `+optimizationColumns+`
		 FROM optimizations
		 WHERE user_id = $1 AND original_prompt = $2 AND target_model = $3
		   AND media_type = $4 AND optimization_type = $5
		 ORDER BY created_at DESC LIMIT 1`,
		key.UserID, key.OriginalPrompt, key.TargetModel, string(key.MediaType), string(key.OptimizationType)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find optimization: %w", err)
	}
	return o, nil
}

// ClaimByKey moves the most recent record matching key from one status to another in a single
// statement and returns it. Returns nil, nil when no record is in the from status.
func (db *DB) ClaimByKey(ctx context.Context, key types.Key, from, to types.Status) (*types.Optimization, error) {
	o, err := scanOptimization(db.pool.QueryRow(ctx,
		`UPDATE optimizations SET status = $7, updated_at = NOW()
		 WHERE status = $6 AND id = (
		     SELECT id FROM optimizations
		     WHERE user_id = $1 AND original_prompt = $2 AND target_model = $3
		       AND media_type = $4 AND optimization_type = $5 AND status = $6
		     ORDER BY created_at DESC LIMIT 1)
		 RETURNING `+optimizationColumns,
		key.UserID, key.OriginalPrompt, key.TargetModel, string(key.MediaType),
		string(key.OptimizationType), string(from), string(to)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim optimization: %w", err)
	}
	return o, nil
}

// Update overwrites every mutable column of o. Last writer wins.
func (db *DB) Update(ctx context.Context, o *types.Optimization) error {
	cols, err := encodeColumns(o)
	if err != nil {
		return err
	}

	err = db.pool.QueryRow(ctx,
		`UPDATE optimizations
		 SET optimization_mode = $2, status = $3, questions = $4, user_answers = $5,
		     additional_details = $6, parsed_details = $7, optimized_prompt = $8,
		     quality_score = $9, metadata = $10, analysis = $11, feedback = $12,
		     failure_reason = $13, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		o.ID, string(o.OptimizationMode), string(o.Status), cols.questions, cols.answers,
		o.AdditionalDetails, cols.parsed, o.OptimizedPrompt, cols.score, cols.metadata,
		cols.analysis, cols.feedback, o.FailureReason,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update optimization: %w", err)
	}
	return nil
}

// ListByUser returns the user's most recent optimizations, newest first
func (db *DB) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]types.Optimization, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+optimizationColumns+`
		 FROM optimizations WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimizations: %w", err)
	}
	defer rows.Close()

	out := []types.Optimization{}
	for rows.Next() {
		o, err := scanOptimization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list optimizations: %w", err)
	}
	return out, nil
}

// Delete removes the user's optimization
func (db *DB) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM optimizations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete optimization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
