package textops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRoutineLimit is the number of live routines a RoutineService keeps in memory.
const DefaultRoutineLimit = 10000

// ServiceOption configures a RoutineService.
type ServiceOption func(*RoutineService)

// WithStore persists routines, steps and templates in st. Defaults to NopStore.
func WithStore(st Store) ServiceOption {
	return func(s *RoutineService) {
		if st != nil {
			s.store = st
		}
	}
}

// WithServiceLogger sets the service logger. Defaults to slog.Default().
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *RoutineService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrategy makes ev available to routines whose backend is name.
func WithStrategy(name string, ev Evaluator) ServiceOption {
	return func(s *RoutineService) {
		if name != "" && ev != nil {
			s.strategies[name] = ev
		}
	}
}

// WithRoutineLimit keeps at most n live routines in memory. Past the limit the least
// recently used routine is dropped; its rows stay in the store.
func WithRoutineLimit(n int) ServiceOption {
	return func(s *RoutineService) {
		if n > 0 {
			s.routineLimit = n
		}
	}
}

type routineEntry struct {
	mu      sync.Mutex
	routine *Routine
}

// RoutineService owns live routines and drives their steps through the engine.
// Operations on one routine are serialized; a step is always evaluated before it is
// executed and never overlaps another step of the same routine. Store failures are
// logged and never fail the operation.
type RoutineService struct {
	engine     *Engine
	store      Store
	logger     *slog.Logger
	strategies map[string]Evaluator

	routineLimit int
	routines     *lru.Cache[string, *routineEntry]
}

// NewRoutineService returns a service running steps on engine. The heuristic strategy
// is always available.
func NewRoutineService(engine *Engine, opts ...ServiceOption) *RoutineService {
	s := &RoutineService{
		engine:     engine,
		store:      NopStore{},
		logger:     slog.Default(),
		strategies:   make(map[string]Evaluator),
		routineLimit: DefaultRoutineLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	// routineLimit is always positive, the only case lru rejects.
	s.routines, _ = lru.NewWithEvict(s.routineLimit, func(id string, _ *routineEntry) {
		s.logger.Debug("routine evicted", "routine_id", id)
	})
	if _, ok := s.strategies[StrategyHeuristic]; !ok {
		s.strategies[StrategyHeuristic] = NewHeuristicEvaluator()
	}
	return s
}

// Strategies returns the names of the available evaluation strategies, sorted.
func (s *RoutineService) Strategies() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Strategy returns the evaluator registered under name.
func (s *RoutineService) Strategy(name string) (Evaluator, bool) {
	if name == "" {
		name = StrategyHeuristic
	}
	ev, ok := s.strategies[name]
	return ev, ok
}

// Create starts an empty routine for ownerID. backend selects the evaluation
// strategy; empty means heuristic.
func (s *RoutineService) Create(ctx context.Context, ownerID, name, backend string) (*Routine, error) {
	if backend == "" {
		backend = StrategyHeuristic
	}
	if _, ok := s.strategies[backend]; !ok {
		return nil, &ClientError{Reason: fmt.Sprintf("unknown backend %q", backend), Err: ErrValidation}
	}
	r := NewRoutine(name, backend)
	r.OwnerID = ownerID
	s.add(r)
	s.persist(ctx, "create_execution", s.store.CreateExecution(ctx, r))
	return r.Clone(), nil
}

// Get returns a snapshot of the routine.
func (s *RoutineService) Get(id string) (*Routine, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.routine.Clone(), nil
}

// List returns snapshots of every routine owned by ownerID, oldest first.
func (s *RoutineService) List(ownerID string) []*Routine {
	entries := s.routines.Values()
	out := make([]*Routine, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.routine.OwnerID == ownerID {
			out = append(out, e.routine.Clone())
		}
		e.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b *Routine) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// AppendStep adds a pending step with input.
func (s *RoutineService) AppendStep(ctx context.Context, routineID string, input StepInput) (*WorkflowStep, error) {
	return s.mutate(ctx, routineID, func(r *Routine) (*WorkflowStep, bool, error) {
		return r.AppendStep(input), true, nil
	})
}

// AppendFromPrevious carries the converted text of the last completed step into a new
// editing step.
func (s *RoutineService) AppendFromPrevious(ctx context.Context, routineID string) (*WorkflowStep, error) {
	return s.mutate(ctx, routineID, func(r *Routine) (*WorkflowStep, bool, error) {
		for i := len(r.Steps) - 1; i >= 0; i-- {
			prev := r.Steps[i]
			if prev.Status == StepCompleted && prev.Output.Result != nil {
				return r.AppendEditingStep(prev.Output.Result.ConvertedText), true, nil
			}
		}
		return nil, false, &ClientError{Reason: "no completed step to continue from", Err: ErrInvalidTransition}
	})
}

// SkipStep marks a pending or editing step as skipped.
func (s *RoutineService) SkipStep(ctx context.Context, routineID, stepID string) (*WorkflowStep, error) {
	return s.mutate(ctx, routineID, func(r *Routine) (*WorkflowStep, bool, error) {
		step, err := r.SkipStep(stepID)
		return step, false, err
	})
}

// RetryStep appends a pending copy of a completed or failed step.
func (s *RoutineService) RetryStep(ctx context.Context, routineID, stepID string) (*WorkflowStep, error) {
	return s.mutate(ctx, routineID, func(r *Routine) (*WorkflowStep, bool, error) {
		step, err := r.RetryStep(stepID)
		return step, true, err
	})
}

// RunStep submits the step and runs it to a terminal status. When input is nil the
// step's current input is used. A result carrying an error fails the step; tool
// argument errors are ordinary output and complete it.
func (s *RoutineService) RunStep(ctx context.Context, routineID, stepID string, input *StepInput) (*WorkflowStep, error) {
	e, err := s.entry(routineID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.routine

	step, ok := r.Step(stepID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}
	in := step.Input
	if input != nil {
		in = *input
	}
	if strings.TrimSpace(in.TaskDescription) == "" {
		return nil, &ClientError{Reason: "task description is required", Err: ErrValidation}
	}
	if _, err = r.SubmitStep(stepID, in); err != nil {
		return nil, err
	}
	s.persistStep(ctx, r, stepID)

	start := time.Now()
	engine := s.engine.WithEvaluator(s.evaluatorFor(r.Backend))
	res, eval := engine.Process(ctx, Request{
		Text:            in.Text,
		TaskDescription: in.TaskDescription,
		ExampleOutput:   in.ExampleOutput,
	})
	upd := StepUpdate{
		Status:   StepCompleted,
		Result:   &res,
		Duration: time.Since(start),
	}
	if eval.Tool != "" {
		upd.Evaluation = &eval
	}
	if res.Failed() {
		upd.Status = StepError
		upd.Error = res.Error
	}
	step, err = r.UpdateStep(stepID, upd)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "step finished",
		"routine_id", r.ID, "step", step.StepNumber, "status", step.Status,
		"tool", res.ToolUsed, "duration", upd.Duration)
	s.persistStep(ctx, r, stepID)
	out := *step
	return &out, nil
}

// SubmitStep finalizes the input of an editing or pending step and runs it.
func (s *RoutineService) SubmitStep(ctx context.Context, routineID, stepID string, input StepInput) (*WorkflowStep, error) {
	return s.RunStep(ctx, routineID, stepID, &input)
}

// SaveTemplate stores t for its owner. Unlike step persistence, template writes
// surface store errors since the store is their only home.
func (s *RoutineService) SaveTemplate(ctx context.Context, t RoutineTemplate) (RoutineTemplate, error) {
	if err := t.Validate(); err != nil {
		return RoutineTemplate{}, &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
		t.CreatedAt = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if err := s.store.SaveTemplate(ctx, &t); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return RoutineTemplate{}, err
		}
		return RoutineTemplate{}, &SystemError{Err: fmt.Errorf("save template: %w", err)}
	}
	return t, nil
}

// SaveRoutineAsTemplate captures the task descriptions of a routine as a template.
func (s *RoutineService) SaveRoutineAsTemplate(ctx context.Context, routineID, name, description string) (RoutineTemplate, error) {
	r, err := s.Get(routineID)
	if err != nil {
		return RoutineTemplate{}, err
	}
	return s.SaveTemplate(ctx, TemplateFromRoutine(r, name, description))
}

// ListTemplates returns the templates of ownerID.
func (s *RoutineService) ListTemplates(ctx context.Context, ownerID string) ([]RoutineTemplate, error) {
	ts, err := s.store.ListTemplates(ctx, ownerID)
	if err != nil {
		return nil, &SystemError{Err: fmt.Errorf("list templates: %w", err)}
	}
	if ts == nil {
		ts = []RoutineTemplate{}
	}
	return ts, nil
}

// DeleteTemplate removes a template of ownerID.
func (s *RoutineService) DeleteTemplate(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteTemplate(ctx, ownerID, id); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return err
		}
		return &SystemError{Err: fmt.Errorf("delete template: %w", err)}
	}
	return nil
}

// ReplayTemplate creates a new routine from a stored template, binding text to its
// first step, and bumps the template's usage count.
func (s *RoutineService) ReplayTemplate(ctx context.Context, ownerID, templateID, backend, text string) (*Routine, error) {
	ts, err := s.ListTemplates(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(ts, func(t RoutineTemplate) bool { return t.ID == templateID })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	if backend == "" {
		backend = StrategyHeuristic
	}
	if _, ok := s.strategies[backend]; !ok {
		return nil, &ClientError{Reason: fmt.Sprintf("unknown backend %q", backend), Err: ErrValidation}
	}
	t := ts[i]
	t.OwnerID = ownerID
	r := Replay(t, backend)
	if len(r.Steps) > 0 {
		r.Steps[0].Input.Text = text
	}
	s.add(r)
	s.persist(ctx, "create_execution", s.store.CreateExecution(ctx, r))
	for i := range r.Steps {
		s.persist(ctx, "create_step", s.store.CreateStep(ctx, r.ID, &r.Steps[i]))
	}
	s.persist(ctx, "increment_usage", s.store.IncrementUsage(ctx, ownerID, templateID))
	s.logger.InfoContext(ctx, "template replayed", "template_id", templateID, "routine_id", r.ID, "steps", len(r.Steps))
	return r.Clone(), nil
}

func (s *RoutineService) evaluatorFor(backend string) Evaluator {
	if ev, ok := s.strategies[backend]; ok {
		return ev
	}
	return s.strategies[StrategyHeuristic]
}

func (s *RoutineService) add(r *Routine) {
	s.routines.Add(r.ID, &routineEntry{routine: r})
}

func (s *RoutineService) entry(id string) (*routineEntry, error) {
	e, ok := s.routines.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoutineNotFound, id)
	}
	return e, nil
}

// mutate applies fn under the routine lock and persists the touched step. created
// reports whether fn appended the step.
func (s *RoutineService) mutate(ctx context.Context, routineID string, fn func(*Routine) (*WorkflowStep, bool, error)) (*WorkflowStep, error) {
	e, err := s.entry(routineID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	step, created, err := fn(e.routine)
	if err != nil {
		return nil, err
	}
	if created {
		s.persist(ctx, "create_step", s.store.CreateStep(ctx, routineID, step))
		s.persist(ctx, "update_execution", s.store.UpdateExecution(ctx, e.routine))
	} else {
		s.persistStep(ctx, e.routine, step.ID)
	}
	out := *step
	return &out, nil
}

func (s *RoutineService) persistStep(ctx context.Context, r *Routine, stepID string) {
	if step, ok := r.Step(stepID); ok {
		s.persist(ctx, "update_step", s.store.UpdateStep(ctx, r.ID, step))
	}
	s.persist(ctx, "update_execution", s.store.UpdateExecution(ctx, r))
}

func (s *RoutineService) persist(ctx context.Context, op string, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "persistence failed", "op", op, "error", err)
	}
}
