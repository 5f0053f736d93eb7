package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusAnalyzing, true},
		{StatusPending, StatusCompleted, true},
		{StatusAnalyzing, StatusQuestionsReady, true},
		{StatusQuestionsReady, StatusBuilding, true},
		{StatusBuilding, StatusCompleted, true},
		{StatusAnalyzing, StatusFailed, true},
		{StatusBuilding, StatusFailed, true},
		{StatusQuestionsReady, StatusAnalyzing, false},
		{StatusQuestionsReady, StatusCompleted, false},
		{StatusCompleted, StatusBuilding, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestAdvance_EmptyStatusIsPending(t *testing.T) {
	o := &Optimization{}
	require.NoError(t, o.Advance(StatusAnalyzing))
	assert.Equal(t, StatusAnalyzing, o.Status)
}

func TestAdvance_RejectsBackwards(t *testing.T) {
	o := &Optimization{Status: StatusCompleted}
	err := o.Advance(StatusBuilding)

	var tErr *TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, StatusCompleted, tErr.From)
	assert.Equal(t, StatusCompleted, o.Status)
}
