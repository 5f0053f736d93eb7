//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestOptimizationLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	rec := newRecord(uuid.New(), types.StatusQuestionsReady)
	require.NoError(t, db.Create(ctx, rec))
	defer func() { _ = db.Delete(ctx, rec.UserID, rec.ID) }()

	got, err := db.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.StatusQuestionsReady, got.Status)
	assert.Len(t, got.Questions, 1)
	assert.Nil(t, got.Feedback)

	claimed, err := db.ClaimByKey(ctx, rec.Key(), types.StatusQuestionsReady, types.StatusBuilding)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, rec.ID, claimed.ID)
	assert.Equal(t, types.StatusBuilding, claimed.Status)

	again, err := db.ClaimByKey(ctx, rec.Key(), types.StatusQuestionsReady, types.StatusBuilding)
	require.NoError(t, err)
	assert.Nil(t, again)

	claimed.Status = types.StatusCompleted
	claimed.OptimizationMode = types.ModeComplete
	claimed.OptimizedPrompt = "A cat."
	claimed.QualityScore = types.QualityScore{Before: 40, After: 80, Improvements: []string{"Added specificity"}}
	claimed.Feedback = &types.Feedback{Rating: 5, WasHelpful: true, SubmittedAt: time.Now().UTC()}
	require.NoError(t, db.Update(ctx, claimed))

	found, err := db.FindByKey(ctx, rec.Key())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, types.StatusCompleted, found.Status)
	assert.Equal(t, 80, found.QualityScore.After)
	require.NotNil(t, found.Feedback)
	assert.Equal(t, 5, found.Feedback.Rating)

	list, err := db.ListByUser(ctx, rec.UserID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	receipt, err := db.Publish(ctx, publishing.NewDraft(found, types.ApplyRequest{Visibility: publishing.VisibilityPrivate}))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, receipt.ID)
}

func TestPublishedPromptOutlivesOptimization_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	rec := newRecord(uuid.New(), types.StatusCompleted)
	rec.OptimizedPrompt = "A cat on a sofa."
	require.NoError(t, db.Create(ctx, rec))

	receipt, err := db.Publish(ctx, publishing.NewDraft(rec, types.ApplyRequest{Visibility: publishing.VisibilityPublic}))
	require.NoError(t, err)
	defer func() { _, _ = db.pool.Exec(ctx, `DELETE FROM prompts WHERE id = $1`, receipt.ID) }()

	require.NoError(t, db.Delete(ctx, rec.UserID, rec.ID))

	var content string
	var detached bool
	err = db.pool.QueryRow(ctx, `SELECT content, optimization_id IS NULL FROM prompts WHERE id = $1`, receipt.ID).
		Scan(&content, &detached)
	require.NoError(t, err)
	assert.Equal(t, "A cat on a sofa.", content)
	assert.True(t, detached)
}

func TestGetByID_NotFound_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	got, err := db.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, db.Update(context.Background(), &types.Optimization{ID: uuid.New()}), ErrNotFound)
}
