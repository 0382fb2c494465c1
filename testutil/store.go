package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/skosovsky/textops"
)

// MemoryStore is an in-memory textops.Store. Templates are scoped by owner; a
// template of another owner is reported as textops.ErrTemplateNotFound.
type MemoryStore struct {
	mu        sync.Mutex
	routines  map[string]*textops.Routine
	steps     map[string]textops.WorkflowStep
	templates map[string]textops.RoutineTemplate

	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routines:  make(map[string]*textops.Routine),
		steps:     make(map[string]textops.WorkflowStep),
		templates: make(map[string]textops.RoutineTemplate),
	}
}

// CreateExecution implements textops.Store.
func (m *MemoryStore) CreateExecution(_ context.Context, r *textops.Routine) error {
	return m.putRoutine(r)
}

// UpdateExecution implements textops.Store.
func (m *MemoryStore) UpdateExecution(_ context.Context, r *textops.Routine) error {
	return m.putRoutine(r)
}

// CreateStep implements textops.Store.
func (m *MemoryStore) CreateStep(_ context.Context, _ string, step *textops.WorkflowStep) error {
	return m.putStep(step)
}

// UpdateStep implements textops.Store.
func (m *MemoryStore) UpdateStep(_ context.Context, _ string, step *textops.WorkflowStep) error {
	return m.putStep(step)
}

// ListTemplates implements textops.Store, oldest first.
func (m *MemoryStore) ListTemplates(_ context.Context, ownerID string) ([]textops.RoutineTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []textops.RoutineTemplate
	for _, t := range m.templates {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b textops.RoutineTemplate) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// SaveTemplate implements textops.Store.
func (m *MemoryStore) SaveTemplate(_ context.Context, t *textops.RoutineTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if prev, ok := m.templates[t.ID]; ok && prev.OwnerID != t.OwnerID {
		return textops.ErrTemplateNotFound
	}
	cp := *t
	cp.Steps = slices.Clone(t.Steps)
	m.templates[t.ID] = cp
	return nil
}

// DeleteTemplate implements textops.Store.
func (m *MemoryStore) DeleteTemplate(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if t, ok := m.templates[id]; !ok || t.OwnerID != ownerID {
		return textops.ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

// IncrementUsage implements textops.Store.
func (m *MemoryStore) IncrementUsage(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	t, ok := m.templates[id]
	if !ok || t.OwnerID != ownerID {
		return textops.ErrTemplateNotFound
	}
	t.UsageCount++
	m.templates[id] = t
	return nil
}

// Routine returns the last persisted snapshot of a routine.
func (m *MemoryStore) Routine(id string) (*textops.Routine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routines[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Step returns the last persisted snapshot of a step.
func (m *MemoryStore) Step(id string) (textops.WorkflowStep, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.steps[id]
	return s, ok
}

func (m *MemoryStore) putRoutine(r *textops.Routine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.routines[r.ID] = r.Clone()
	return nil
}

func (m *MemoryStore) putStep(step *textops.WorkflowStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.steps[step.ID] = *step
	return nil
}

var _ textops.Store = (*MemoryStore)(nil)
