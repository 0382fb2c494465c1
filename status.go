package textops

// StepStatus is the lifecycle state of a WorkflowStep.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
	StepSkipped   StepStatus = "skipped"
	// StepEditing marks a step whose input was carried forward from a previous step and
	// awaits user completion. It only leaves this state through an explicit submit.
	StepEditing StepStatus = "editing"
)

// Terminal reports whether a step in this status can no longer change.
func (s StepStatus) Terminal() bool {
	return s == StepCompleted || s == StepError
}

// Valid reports whether s is a known status.
func (s StepStatus) Valid() bool {
	switch s {
	case StepPending, StepRunning, StepCompleted, StepError, StepSkipped, StepEditing:
		return true
	}
	return false
}

// RoutineStatus is the aggregate state of a routine.
type RoutineStatus string

const (
	RoutineIdle      RoutineStatus = "idle"
	RoutineRunning   RoutineStatus = "running"
	RoutineCompleted RoutineStatus = "completed"
	RoutineError     RoutineStatus = "error"
)

// ComputeStatus derives a routine's status from its steps with fixed precedence:
// running if any step is running; otherwise error if any step failed (even while
// others are still pending); otherwise completed if every step is completed or
// failed; otherwise idle. No steps means idle.
func ComputeStatus(steps []WorkflowStep) RoutineStatus {
	if len(steps) == 0 {
		return RoutineIdle
	}
	hasError := false
	allSettled := true
	for _, s := range steps {
		switch s.Status {
		case StepRunning:
			return RoutineRunning
		case StepError:
			hasError = true
		case StepCompleted:
		default:
			allSettled = false
		}
	}
	switch {
	case hasError:
		return RoutineError
	case allSettled:
		return RoutineCompleted
	default:
		return RoutineIdle
	}
}
