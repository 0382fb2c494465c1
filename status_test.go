package textops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func steps(statuses ...StepStatus) []WorkflowStep {
	out := make([]WorkflowStep, len(statuses))
	for i, s := range statuses {
		out[i] = WorkflowStep{StepNumber: i + 1, Status: s}
	}
	return out
}

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name  string
		steps []WorkflowStep
		want  RoutineStatus
	}{
		{"empty", nil, RoutineIdle},
		{"all pending", steps(StepPending, StepPending), RoutineIdle},
		{"running wins over error", steps(StepError, StepRunning), RoutineRunning},
		{"running wins over completed", steps(StepCompleted, StepRunning, StepPending), RoutineRunning},
		{"error with pending", steps(StepCompleted, StepError, StepPending), RoutineError},
		{"error with completed", steps(StepCompleted, StepError), RoutineError},
		{"all completed", steps(StepCompleted, StepCompleted), RoutineCompleted},
		{"completed then pending", steps(StepCompleted, StepPending), RoutineIdle},
		{"skipped is unsettled", steps(StepCompleted, StepSkipped), RoutineIdle},
		{"editing is unsettled", steps(StepCompleted, StepEditing), RoutineIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.steps))
		})
	}
}

func TestStepStatus(t *testing.T) {
	for _, s := range []StepStatus{StepPending, StepRunning, StepSkipped, StepEditing} {
		assert.False(t, s.Terminal(), s)
		assert.True(t, s.Valid(), s)
	}
	assert.True(t, StepCompleted.Terminal())
	assert.True(t, StepError.Terminal())
	assert.False(t, StepStatus("paused").Valid())
}
