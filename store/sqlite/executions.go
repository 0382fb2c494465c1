package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/skosovsky/textops"
)

const upsertExecution = `
INSERT INTO executions (id, owner_id, name, template_id, backend, status, current_step_index, created_at, updated_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    status = excluded.status,
    current_step_index = excluded.current_step_index,
    updated_at = excluded.updated_at,
    completed_at = excluded.completed_at`

const upsertStep = `
INSERT INTO steps (id, execution_id, step_number, status, input, output, error, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status = excluded.status,
    input = excluded.input,
    output = excluded.output,
    error = excluded.error,
    started_at = excluded.started_at,
    duration_ms = excluded.duration_ms`

// CreateExecution implements textops.Store.
func (s *Store) CreateExecution(ctx context.Context, r *textops.Routine) error {
	return s.saveExecution(ctx, r)
}

// UpdateExecution implements textops.Store.
func (s *Store) UpdateExecution(ctx context.Context, r *textops.Routine) error {
	return s.saveExecution(ctx, r)
}

func (s *Store) saveExecution(ctx context.Context, r *textops.Routine) error {
	_, err := s.db.ExecContext(ctx, upsertExecution,
		r.ID, r.OwnerID, r.Name, r.TemplateID, r.Backend, string(r.Status), r.CurrentStepIndex,
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt), nullTime(r.CompletedAt))
	if err != nil {
		return fmt.Errorf("save execution %s: %w", r.ID, err)
	}
	return nil
}

// CreateStep implements textops.Store.
func (s *Store) CreateStep(ctx context.Context, routineID string, step *textops.WorkflowStep) error {
	return s.saveStep(ctx, routineID, step)
}

// UpdateStep implements textops.Store.
func (s *Store) UpdateStep(ctx context.Context, routineID string, step *textops.WorkflowStep) error {
	return s.saveStep(ctx, routineID, step)
}

func (s *Store) saveStep(ctx context.Context, routineID string, step *textops.WorkflowStep) error {
	input, err := json.Marshal(step.Input)
	if err != nil {
		return fmt.Errorf("encode step input: %w", err)
	}
	output, err := json.Marshal(step.Output)
	if err != nil {
		return fmt.Errorf("encode step output: %w", err)
	}
	_, err = s.db.ExecContext(ctx, upsertStep,
		step.ID, routineID, step.StepNumber, string(step.Status), string(input), string(output),
		step.Error, formatTime(step.Timestamp), step.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("save step %s: %w", step.ID, err)
	}
	return nil
}

// LoadRoutine reads a routine and its steps back. Unknown ids return
// textops.ErrRoutineNotFound.
func (s *Store) LoadRoutine(ctx context.Context, id string) (*textops.Routine, error) {
	var (
		r                textops.Routine
		status           string
		created, updated string
		completed        sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, template_id, backend, status, current_step_index, created_at, updated_at, completed_at
		FROM executions WHERE id = ?`, id).
		Scan(&r.ID, &r.OwnerID, &r.Name, &r.TemplateID, &r.Backend, &status, &r.CurrentStepIndex, &created, &updated, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", textops.ErrRoutineNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load execution %s: %w", id, err)
	}
	r.Status = textops.RoutineStatus(status)
	if r.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return nil, err
		}
		r.CompletedAt = &t
	}
	if r.Steps, err = s.loadSteps(ctx, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) loadSteps(ctx context.Context, routineID string) ([]textops.WorkflowStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, step_number, status, input, output, error, started_at, duration_ms
		FROM steps WHERE execution_id = ? ORDER BY step_number`, routineID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	steps := []textops.WorkflowStep{}
	for rows.Next() {
		var (
			st             textops.WorkflowStep
			status         string
			input, output  string
			started        string
			durationMillis int64
		)
		if err := rows.Scan(&st.ID, &st.StepNumber, &status, &input, &output, &st.Error, &started, &durationMillis); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		st.Status = textops.StepStatus(status)
		if err := json.Unmarshal([]byte(input), &st.Input); err != nil {
			return nil, fmt.Errorf("decode step input: %w", err)
		}
		if err := json.Unmarshal([]byte(output), &st.Output); err != nil {
			return nil, fmt.Errorf("decode step output: %w", err)
		}
		if st.Timestamp, err = parseTime(started); err != nil {
			return nil, err
		}
		st.Duration = time.Duration(durationMillis) * time.Millisecond
		steps = append(steps, st)
	}
	return steps, rows.Err()
}
