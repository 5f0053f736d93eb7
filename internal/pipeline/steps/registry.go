// Package steps provides the stage definitions of the optimization pipeline and the record
// status each stage requires.
package steps

import (
	"fmt"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

// Stage names
const (
	StageValidate          = "validate_prompt"
	StageAnalyze           = "analyze_prompt"
	StageQuickRewrite      = "quick_rewrite"
	StageGenerateQuestions = "generate_questions"
	StageParseDetails      = "parse_details"
	StageBuildPrompt       = "build_prompt"
	StageEvaluate          = "evaluate_intent"
	StageFeedback          = "submit_feedback"
	StageApply             = "apply_prompt"
)

// Stage categories
const (
	CategoryGate       = "gate"
	CategoryQuick      = "quick"
	CategoryPremium    = "premium"
	CategoryEvaluation = "evaluation"
	CategoryRecord     = "record"
)

// Flows are the ordered stage lists of each operation
const (
	FlowQuick   = "quick"
	FlowAnalyze = "analyze"
	FlowBuild   = "build"
)

// StageDefinition defines metadata for a pipeline stage
type StageDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	// Requires is the status the record must be in before the stage runs; empty when the stage
	// runs before a record exists.
	Requires types.Status
	// Produces is the status the stage leaves the record in; empty when unchanged.
	Produces types.Status
}

// StageRegistry holds all stage definitions
var StageRegistry = map[string]StageDefinition{
	StageValidate: {
		Name:     StageValidate,
		Category: CategoryGate,
	},
	StageAnalyze: {
		Name:         StageAnalyze,
		Category:     CategoryGate,
		Dependencies: []string{StageValidate},
	},
	StageQuickRewrite: {
		Name:         StageQuickRewrite,
		Category:     CategoryQuick,
		Dependencies: []string{StageAnalyze},
		Requires:     types.StatusPending,
		Produces:     types.StatusCompleted,
	},
	StageGenerateQuestions: {
		Name:         StageGenerateQuestions,
		Category:     CategoryPremium,
		Dependencies: []string{StageAnalyze},
		Requires:     types.StatusAnalyzing,
		Produces:     types.StatusQuestionsReady,
	},
	StageParseDetails: {
		Name:     StageParseDetails,
		Category: CategoryPremium,
		Requires: types.StatusBuilding,
	},
	StageBuildPrompt: {
		Name:         StageBuildPrompt,
		Category:     CategoryPremium,
		Dependencies: []string{StageParseDetails},
		Requires:     types.StatusBuilding,
	},
	StageEvaluate: {
		Name:         StageEvaluate,
		Category:     CategoryEvaluation,
		Dependencies: []string{StageBuildPrompt},
		Requires:     types.StatusBuilding,
		Produces:     types.StatusCompleted,
	},
	StageFeedback: {
		Name:     StageFeedback,
		Category: CategoryRecord,
		Requires: types.StatusCompleted,
	},
	StageApply: {
		Name:     StageApply,
		Category: CategoryRecord,
		Requires: types.StatusCompleted,
	},
}

// Flows lists the stages each operation runs, in dependency order
var Flows = map[string][]string{
	FlowQuick:   {StageValidate, StageAnalyze, StageQuickRewrite},
	FlowAnalyze: {StageValidate, StageAnalyze, StageGenerateQuestions},
	FlowBuild:   {StageParseDetails, StageBuildPrompt, StageEvaluate},
}

// StatusError is returned when a record is not in the status a stage requires
type StatusError struct {
	Stage    string
	Status   types.Status
	Required types.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s requires status %s, record is %s", e.Stage, e.Required, e.Status)
}

// Lookup returns the definition of a stage
func Lookup(name string) (StageDefinition, error) {
	def, ok := StageRegistry[name]
	if !ok {
		return StageDefinition{}, fmt.Errorf("unknown stage: %s", name)
	}
	return def, nil
}

// CheckStatus verifies a record in status may enter the stage
func CheckStatus(stage string, status types.Status) error {
	def, err := Lookup(stage)
	if err != nil {
		return err
	}
	if def.Requires != "" && status != def.Requires {
		return &StatusError{Stage: stage, Status: status, Required: def.Requires}
	}
	return nil
}

// Position returns the 1-based index of stage within flow and the flow length. A stage outside
// the flow yields 0.
func Position(flow, stage string) (int, int) {
	stages := Flows[flow]
	for i, name := range stages {
		if name == stage {
			return i + 1, len(stages)
		}
	}
	return 0, len(stages)
}

// ValidateFlow checks that every stage of flow appears after its dependencies
func ValidateFlow(flow string) error {
	stages, ok := Flows[flow]
	if !ok {
		return fmt.Errorf("unknown flow: %s", flow)
	}
	seen := make(map[string]bool, len(stages))
	for _, name := range stages {
		def, err := Lookup(name)
		if err != nil {
			return err
		}
		var missing []string
		for _, dep := range def.Dependencies {
			if inFlow(stages, dep) && !seen[dep] {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Stage: name, MissingDependencies: missing}
		}
		seen[name] = true
	}
	return nil
}

// DependencyError represents a stage ordered before its dependencies
type DependencyError struct {
	Stage               string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.MissingDependencies)
}

func inFlow(stages []string, name string) bool {
	for _, s := range stages {
		if s == name {
			return true
		}
	}
	return false
}
