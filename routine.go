package textops

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// StepInput is what a step runs against.
type StepInput struct {
	Text            string `json:"text"`
	TaskDescription string `json:"task_description"`
	ExampleOutput   string `json:"example_output,omitempty"`
}

// StepOutput holds the result of a step run.
type StepOutput struct {
	Result     *ConversionResult `json:"result,omitempty"`
	Evaluation *ToolEvaluation   `json:"evaluation,omitempty"`
}

// WorkflowStep is one evaluate-then-execute run inside a routine. Steps in a terminal
// status (completed, error) never change; retries append new steps.
type WorkflowStep struct {
	ID         string        `json:"id"`
	StepNumber int           `json:"step_number"`
	Status     StepStatus    `json:"status"`
	Input      StepInput     `json:"input"`
	Output     StepOutput    `json:"output"`
	Error      string        `json:"error,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	Duration   time.Duration `json:"duration"`
}

// Routine is an ordered, append-only sequence of steps (a conversion routine
// execution). Status is recomputed from the steps after every mutation.
// Routine is not safe for concurrent use; RoutineService serializes access.
type Routine struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	OwnerID          string         `json:"owner_id,omitempty"`
	TemplateID       string         `json:"template_id,omitempty"`
	Steps            []WorkflowStep `json:"steps"`
	CurrentStepIndex int            `json:"current_step_index"`
	Status           RoutineStatus  `json:"status"`
	Backend          string         `json:"backend"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

// StepUpdate replaces the mutable fields of a step.
type StepUpdate struct {
	Status     StepStatus
	Result     *ConversionResult
	Evaluation *ToolEvaluation
	Error      string
	Duration   time.Duration
}

// allowedTransitions lists the statuses UpdateStep may move a step to. Editing steps
// leave their state only through SubmitStep.
var allowedTransitions = map[StepStatus][]StepStatus{
	StepPending: {StepRunning, StepSkipped, StepEditing, StepError},
	StepSkipped: {StepPending, StepRunning},
	StepRunning: {StepCompleted, StepError},
	StepEditing: {},
}

// NewRoutine returns an empty idle routine with a fresh id.
func NewRoutine(name, backend string) *Routine {
	now := time.Now().UTC()
	if backend == "" {
		backend = StrategyHeuristic
	}
	return &Routine{
		ID:        uuid.NewString(),
		Name:      name,
		Steps:     []WorkflowStep{},
		Status:    RoutineIdle,
		Backend:   backend,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Step returns the step with the given id.
func (r *Routine) Step(id string) (*WorkflowStep, bool) {
	i := r.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return &r.Steps[i], true
}

// LastStep returns the most recently appended step.
func (r *Routine) LastStep() (*WorkflowStep, bool) {
	if len(r.Steps) == 0 {
		return nil, false
	}
	return &r.Steps[len(r.Steps)-1], true
}

// AppendStep adds a pending step numbered len(steps)+1.
func (r *Routine) AppendStep(input StepInput) *WorkflowStep {
	return r.appendStep(StepPending, input)
}

// AppendEditingStep carries text forward into a new step awaiting a task description.
func (r *Routine) AppendEditingStep(text string) *WorkflowStep {
	return r.appendStep(StepEditing, StepInput{Text: text})
}

func (r *Routine) appendStep(status StepStatus, input StepInput) *WorkflowStep {
	r.Steps = append(r.Steps, WorkflowStep{
		ID:         uuid.NewString(),
		StepNumber: len(r.Steps) + 1,
		Status:     status,
		Input:      input,
		Timestamp:  time.Now().UTC(),
	})
	r.recompute()
	return &r.Steps[len(r.Steps)-1]
}

// UpdateStep replaces status, output, error and duration of the step and recomputes
// the routine status. Terminal steps return ErrStepImmutable; transitions outside the
// step lifecycle return ErrInvalidTransition.
func (r *Routine) UpdateStep(id string, upd StepUpdate) (*WorkflowStep, error) {
	step, ok := r.Step(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	if step.Status.Terminal() {
		return nil, fmt.Errorf("%w: step %d is %s", ErrStepImmutable, step.StepNumber, step.Status)
	}
	if upd.Status != step.Status && !slices.Contains(allowedTransitions[step.Status], upd.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, step.Status, upd.Status)
	}
	step.Status = upd.Status
	step.Output = StepOutput{Result: upd.Result, Evaluation: upd.Evaluation}
	step.Error = upd.Error
	step.Duration = upd.Duration
	r.recompute()
	return step, nil
}

// SubmitStep finalizes the input of an editing or pending step and marks it running.
func (r *Routine) SubmitStep(id string, input StepInput) (*WorkflowStep, error) {
	step, ok := r.Step(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	switch step.Status {
	case StepEditing, StepPending, StepSkipped:
	default:
		if step.Status.Terminal() {
			return nil, fmt.Errorf("%w: step %d is %s", ErrStepImmutable, step.StepNumber, step.Status)
		}
		return nil, fmt.Errorf("%w: cannot submit a %s step", ErrInvalidTransition, step.Status)
	}
	step.Input = input
	step.Status = StepRunning
	step.Timestamp = time.Now().UTC()
	r.recompute()
	return step, nil
}

// SkipStep marks a pending or editing step as skipped.
func (r *Routine) SkipStep(id string) (*WorkflowStep, error) {
	step, ok := r.Step(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	if step.Status != StepPending && step.Status != StepEditing {
		return nil, fmt.Errorf("%w: cannot skip a %s step", ErrInvalidTransition, step.Status)
	}
	step.Status = StepSkipped
	r.recompute()
	return step, nil
}

// RetryStep appends a new pending step with the input of a terminal step. The
// original step is left untouched.
func (r *Routine) RetryStep(id string) (*WorkflowStep, error) {
	step, ok := r.Step(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	if !step.Status.Terminal() {
		return nil, fmt.Errorf("%w: only completed or failed steps can be retried", ErrInvalidTransition)
	}
	return r.AppendStep(step.Input), nil
}

// Clone returns a deep copy safe to hand out while the original keeps changing.
func (r *Routine) Clone() *Routine {
	cp := *r
	cp.Steps = make([]WorkflowStep, len(r.Steps))
	for i, s := range r.Steps {
		if s.Output.Result != nil {
			res := *s.Output.Result
			res.ToolArgs = slices.Clone(res.ToolArgs)
			s.Output.Result = &res
		}
		if s.Output.Evaluation != nil {
			eval := cloneEvaluation(*s.Output.Evaluation)
			s.Output.Evaluation = &eval
		}
		cp.Steps[i] = s
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

func (r *Routine) indexOf(id string) int {
	return slices.IndexFunc(r.Steps, func(s WorkflowStep) bool { return s.ID == id })
}

// recompute refreshes the derived fields: status, current step and timestamps.
func (r *Routine) recompute() {
	now := time.Now().UTC()
	r.Status = ComputeStatus(r.Steps)
	r.UpdatedAt = now
	switch r.Status {
	case RoutineCompleted, RoutineError:
		if r.CompletedAt == nil {
			r.CompletedAt = &now
		}
	default:
		r.CompletedAt = nil
	}
	r.CurrentStepIndex = max(len(r.Steps)-1, 0)
	for i, s := range r.Steps {
		if !s.Status.Terminal() && s.Status != StepSkipped {
			r.CurrentStepIndex = i
			break
		}
	}
}
