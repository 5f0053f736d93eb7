package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

func TestStageRegistry(t *testing.T) {
	for name, def := range StageRegistry {
		assert.Equal(t, name, def.Name)
		assert.NotEmpty(t, def.Category, name)
		for _, dep := range def.Dependencies {
			_, ok := StageRegistry[dep]
			assert.True(t, ok, "%s depends on unknown stage %s", name, dep)
		}
	}
}

func TestFlowsAreOrdered(t *testing.T) {
	for flow := range Flows {
		assert.NoError(t, ValidateFlow(flow), flow)
	}
	assert.Error(t, ValidateFlow("missing"))
}

func TestValidateFlow_DetectsOrdering(t *testing.T) {
	Flows["broken"] = []string{StageQuickRewrite, StageAnalyze}
	defer delete(Flows, "broken")

	err := ValidateFlow("broken")

	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, StageQuickRewrite, depErr.Stage)
	assert.Equal(t, []string{StageAnalyze}, depErr.MissingDependencies)
}

func TestFlowTransitionsFollowStateGraph(t *testing.T) {
	for name, def := range StageRegistry {
		if def.Requires == "" || def.Produces == "" || def.Requires == def.Produces {
			continue
		}
		assert.True(t, types.CanTransition(def.Requires, def.Produces),
			"%s: %s -> %s", name, def.Requires, def.Produces)
	}
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, CheckStatus(StageFeedback, types.StatusCompleted))
	assert.NoError(t, CheckStatus(StageValidate, ""))

	err := CheckStatus(StageApply, types.StatusFailed)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, types.StatusCompleted, se.Required)
	assert.Equal(t, types.StatusFailed, se.Status)

	assert.Error(t, CheckStatus("nope", types.StatusCompleted))
}

func TestPosition(t *testing.T) {
	i, n := Position(FlowQuick, StageQuickRewrite)
	assert.Equal(t, 3, i)
	assert.Equal(t, 3, n)

	i, _ = Position(FlowBuild, StageValidate)
	assert.Zero(t, i)
}
