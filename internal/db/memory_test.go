package db

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prompt-optimizer/internal/publishing"
	"github.com/jonathan/prompt-optimizer/internal/types"
)

func newRecord(user uuid.UUID, status types.Status) *types.Optimization {
	return &types.Optimization{
		UserID:           user,
		OriginalPrompt:   "draw me a cat",
		TargetModel:      "dall-e-3",
		MediaType:        types.MediaImage,
		OptimizationType: types.TypePremium,
		OptimizationMode: types.ModeAnalyze,
		Status:           status,
		Questions:        []types.Question{{ID: "style", Question: "Which style?", Type: types.QuestionText}},
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := newRecord(uuid.New(), types.StatusQuestionsReady)
	require.NoError(t, s.Create(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := s.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.OriginalPrompt, got.OriginalPrompt)
	assert.Len(t, got.Questions, 1)

	// returned copies are independent of the store
	got.Questions[0].Question = "mutated"
	again, err := s.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Which style?", again.Questions[0].Question)

	missing, err := s.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_ClaimByKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := uuid.New()

	older := newRecord(user, types.StatusQuestionsReady)
	require.NoError(t, s.Create(ctx, older))
	newer := newRecord(user, types.StatusQuestionsReady)
	require.NoError(t, s.Create(ctx, newer))

	claimed, err := s.ClaimByKey(ctx, newer.Key(), types.StatusQuestionsReady, types.StatusBuilding)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, newer.ID, claimed.ID)
	assert.Equal(t, types.StatusBuilding, claimed.Status)

	next, err := s.ClaimByKey(ctx, newer.Key(), types.StatusQuestionsReady, types.StatusBuilding)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, older.ID, next.ID)

	none, err := s.ClaimByKey(ctx, newer.Key(), types.StatusQuestionsReady, types.StatusBuilding)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMemoryStore_ClaimByKeyIsExclusive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := newRecord(uuid.New(), types.StatusQuestionsReady)
	require.NoError(t, s.Create(ctx, rec))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.ClaimByKey(ctx, rec.Key(), types.StatusQuestionsReady, types.StatusBuilding)
			if err == nil && got != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemoryStore_FindByKeyReturnsNewest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := uuid.New()

	first := newRecord(user, types.StatusCompleted)
	require.NoError(t, s.Create(ctx, first))
	second := newRecord(user, types.StatusFailed)
	require.NoError(t, s.Create(ctx, second))

	got, err := s.FindByKey(ctx, first.Key())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)

	other := first.Key()
	other.OptimizationType = types.TypeQuick
	got, err = s.FindByKey(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_Update(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := newRecord(uuid.New(), types.StatusBuilding)
	require.NoError(t, s.Create(ctx, rec))

	rec.Status = types.StatusCompleted
	rec.OptimizedPrompt = "A cat."
	rec.OriginalPrompt = "changed"
	require.NoError(t, s.Update(ctx, rec))

	got, err := s.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, got.Status)
	assert.Equal(t, "A cat.", got.OptimizedPrompt)
	assert.Equal(t, "draw me a cat", got.OriginalPrompt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	assert.ErrorIs(t, s.Update(ctx, &types.Optimization{ID: uuid.New()}), ErrNotFound)
}

func TestMemoryStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	user := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		rec := newRecord(user, types.StatusCompleted)
		require.NoError(t, s.Create(ctx, rec))
		ids = append(ids, rec.ID)
	}
	require.NoError(t, s.Create(ctx, newRecord(uuid.New(), types.StatusCompleted)))

	list, err := s.ListByUser(ctx, user, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)

	assert.ErrorIs(t, s.Delete(ctx, uuid.New(), ids[0]), ErrNotFound)
	require.NoError(t, s.Delete(ctx, user, ids[0]))
	all, err := s.ListByUser(ctx, user, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStore_Publish(t *testing.T) {
	s := NewMemoryStore()
	draft := publishing.Draft{OptimizedPrompt: "A cat.", Visibility: publishing.VisibilityPublic}

	receipt, err := s.Publish(context.Background(), draft)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, receipt.ID)
	assert.Equal(t, []publishing.Draft{draft}, s.Published())
}
