package publishing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

func TestNewDraft(t *testing.T) {
	o := &types.Optimization{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		OptimizedPrompt: "A watercolor cat.",
		MediaType:       types.MediaImage,
		TargetModel:     "dall-e-3",
	}

	d := NewDraft(o, types.ApplyRequest{Visibility: VisibilityUnlisted, Tags: []string{"cats"}})

	assert.Equal(t, o.ID, d.OptimizationID)
	assert.Equal(t, o.UserID, d.UserID)
	assert.Equal(t, "A watercolor cat.", d.OptimizedPrompt)
	assert.Equal(t, types.MediaImage, d.MediaType)
	assert.Equal(t, "dall-e-3", d.TargetModel)
	assert.Equal(t, []string{"cats"}, d.Tags)
	assert.Equal(t, VisibilityUnlisted, d.Visibility)
	assert.NotNil(t, d.Outputs)
	assert.Empty(t, d.Outputs)
}
