package textops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoutine(t *testing.T) {
	r := NewRoutine("clean", "")
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, StrategyHeuristic, r.Backend)
	assert.Equal(t, RoutineIdle, r.Status)
	assert.Empty(t, r.Steps)
	assert.Nil(t, r.CompletedAt)
}

func TestRoutine_AppendStep(t *testing.T) {
	r := NewRoutine("r", StrategyHeuristic)
	first := r.AppendStep(StepInput{Text: "a", TaskDescription: "upper"})
	assert.Equal(t, 1, first.StepNumber)
	assert.Equal(t, StepPending, first.Status)

	second := r.AppendEditingStep("carried")
	assert.Equal(t, 2, second.StepNumber)
	assert.Equal(t, StepEditing, second.Status)
	assert.Equal(t, "carried", second.Input.Text)
	assert.Empty(t, second.Input.TaskDescription)
	assert.NotEqual(t, r.Steps[0].ID, r.Steps[1].ID)
	assert.Equal(t, 0, r.CurrentStepIndex)

	last, ok := r.LastStep()
	require.True(t, ok)
	assert.Equal(t, second.ID, last.ID)
}

func TestRoutine_StepLifecycle(t *testing.T) {
	r := NewRoutine("r", StrategyHeuristic)
	step := r.AppendStep(StepInput{Text: "a", TaskDescription: "upper"})
	id := step.ID

	_, err := r.UpdateStep(id, StepUpdate{Status: StepRunning})
	require.NoError(t, err)
	assert.Equal(t, RoutineRunning, r.Status)

	res := &ConversionResult{ConvertedText: "A", ToolUsed: "upper", Confidence: 1}
	_, err = r.UpdateStep(id, StepUpdate{Status: StepCompleted, Result: res})
	require.NoError(t, err)
	assert.Equal(t, RoutineCompleted, r.Status)
	require.NotNil(t, r.CompletedAt)

	_, err = r.UpdateStep(id, StepUpdate{Status: StepError, Error: "late"})
	require.ErrorIs(t, err, ErrStepImmutable)
	s, _ := r.Step(id)
	assert.Equal(t, StepCompleted, s.Status)
	assert.Empty(t, s.Error)

	r.AppendStep(StepInput{Text: "A", TaskDescription: "lower"})
	assert.Equal(t, RoutineIdle, r.Status)
	assert.Nil(t, r.CompletedAt)
	assert.Equal(t, 1, r.CurrentStepIndex)
}

func TestRoutine_UpdateStep_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from StepStatus
		to   StepStatus
	}{
		{"pending to completed", StepPending, StepCompleted},
		{"skipped to error", StepSkipped, StepError},
		{"running to pending", StepRunning, StepPending},
		{"editing to running", StepEditing, StepRunning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRoutine("r", StrategyHeuristic)
			step := r.AppendStep(StepInput{TaskDescription: "x"})
			r.Steps[0].Status = tt.from
			_, err := r.UpdateStep(step.ID, StepUpdate{Status: tt.to})
			require.ErrorIs(t, err, ErrInvalidTransition)
		})
	}

	r := NewRoutine("r", StrategyHeuristic)
	_, err := r.UpdateStep("missing", StepUpdate{Status: StepRunning})
	require.ErrorIs(t, err, ErrStepNotFound)
}

func TestRoutine_SubmitStep(t *testing.T) {
	r := NewRoutine("r", StrategyHeuristic)
	editing := r.AppendEditingStep("text")
	id := editing.ID

	step, err := r.SubmitStep(id, StepInput{Text: "text", TaskDescription: "upper"})
	require.NoError(t, err)
	assert.Equal(t, StepRunning, step.Status)
	assert.Equal(t, "upper", step.Input.TaskDescription)
	assert.Equal(t, RoutineRunning, r.Status)

	_, err = r.SubmitStep(id, StepInput{TaskDescription: "again"})
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = r.UpdateStep(id, StepUpdate{Status: StepError, Error: "boom"})
	require.NoError(t, err)
	_, err = r.SubmitStep(id, StepInput{TaskDescription: "again"})
	require.ErrorIs(t, err, ErrStepImmutable)
	assert.Equal(t, RoutineError, r.Status)
}

func TestRoutine_SkipAndRetry(t *testing.T) {
	r := NewRoutine("r", StrategyHeuristic)
	a := r.AppendStep(StepInput{Text: "a", TaskDescription: "upper"})
	aID := a.ID
	b := r.AppendStep(StepInput{Text: "b", TaskDescription: "lower"})
	bID := b.ID

	_, err := r.SkipStep(bID)
	require.NoError(t, err)
	_, err = r.SkipStep(bID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = r.RetryStep(aID)
	require.ErrorIs(t, err, ErrInvalidTransition, "pending steps cannot be retried")

	_, err = r.UpdateStep(aID, StepUpdate{Status: StepRunning})
	require.NoError(t, err)
	_, err = r.UpdateStep(aID, StepUpdate{Status: StepError, Error: "failed"})
	require.NoError(t, err)
	assert.Equal(t, RoutineError, r.Status)

	retry, err := r.RetryStep(aID)
	require.NoError(t, err)
	assert.Equal(t, 3, retry.StepNumber)
	assert.Equal(t, StepPending, retry.Status)
	assert.Equal(t, StepInput{Text: "a", TaskDescription: "upper"}, retry.Input)
	orig, _ := r.Step(aID)
	assert.Equal(t, StepError, orig.Status)
	assert.Equal(t, "failed", orig.Error)
	assert.Equal(t, RoutineError, r.Status, "the failed step still counts")
	assert.Len(t, r.Steps, 3)

	_, err = r.SkipStep("missing")
	require.ErrorIs(t, err, ErrStepNotFound)
	_, err = r.RetryStep("missing")
	require.ErrorIs(t, err, ErrStepNotFound)
}

func TestRoutine_Clone(t *testing.T) {
	r := NewRoutine("r", StrategyHeuristic)
	step := r.AppendStep(StepInput{Text: "a", TaskDescription: "upper"})
	id := step.ID
	_, err := r.UpdateStep(id, StepUpdate{Status: StepRunning})
	require.NoError(t, err)
	_, err = r.UpdateStep(id, StepUpdate{
		Status:     StepCompleted,
		Result:     &ConversionResult{ConvertedText: "A", ToolArgs: []Arg{{Name: "x", Value: "1"}}},
		Evaluation: &ToolEvaluation{Tool: "upper", Args: []Arg{{Name: "x", Value: "1"}}},
	})
	require.NoError(t, err)

	cp := r.Clone()
	cp.Steps[0].Output.Result.ConvertedText = "changed"
	cp.Steps[0].Output.Result.ToolArgs[0].Value = "2"
	cp.Steps[0].Output.Evaluation.Args[0].Value = "2"
	*cp.CompletedAt = cp.CompletedAt.Add(1)
	shifted := *cp.CompletedAt
	cp.AppendStep(StepInput{TaskDescription: "more"})

	assert.Equal(t, "A", r.Steps[0].Output.Result.ConvertedText)
	assert.Equal(t, "1", r.Steps[0].Output.Result.ToolArgs[0].Value)
	assert.Equal(t, "1", r.Steps[0].Output.Evaluation.Args[0].Value)
	assert.Len(t, r.Steps, 1)
	assert.NotEqual(t, shifted, *r.CompletedAt)
}
