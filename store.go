package textops

import (
	"context"
)

// Store persists routines, steps and templates. All calls are owner-scoped; ownership
// enforcement is the implementation's concern. RoutineService treats every error as
// non-fatal: it is logged and the in-memory transition stands.
type Store interface {
	CreateExecution(ctx context.Context, r *Routine) error
	UpdateExecution(ctx context.Context, r *Routine) error
	CreateStep(ctx context.Context, routineID string, step *WorkflowStep) error
	UpdateStep(ctx context.Context, routineID string, step *WorkflowStep) error

	ListTemplates(ctx context.Context, ownerID string) ([]RoutineTemplate, error)
	SaveTemplate(ctx context.Context, t *RoutineTemplate) error
	DeleteTemplate(ctx context.Context, ownerID, id string) error
	IncrementUsage(ctx context.Context, ownerID, id string) error
}

// NopStore discards writes and has no templates.
type NopStore struct{}

func (NopStore) CreateExecution(context.Context, *Routine) error { return nil }
func (NopStore) UpdateExecution(context.Context, *Routine) error { return nil }
func (NopStore) CreateStep(context.Context, string, *WorkflowStep) error { return nil }
func (NopStore) UpdateStep(context.Context, string, *WorkflowStep) error { return nil }
func (NopStore) ListTemplates(context.Context, string) ([]RoutineTemplate, error) { return nil, nil }
func (NopStore) SaveTemplate(context.Context, *RoutineTemplate) error { return nil }
func (NopStore) DeleteTemplate(context.Context, string, string) error { return nil }
func (NopStore) IncrementUsage(context.Context, string, string) error { return nil }

var _ Store = NopStore{}
