package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/skosovsky/textops"
)

// ListTemplates implements textops.Store, oldest first.
func (s *Store) ListTemplates(ctx context.Context, ownerID string) ([]textops.RoutineTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, description, steps, usage_count, created_at, updated_at
		FROM templates WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []textops.RoutineTemplate{}
	for rows.Next() {
		var (
			t                textops.RoutineTemplate
			steps            string
			created, updated string
		)
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &steps, &t.UsageCount, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		if err := json.Unmarshal([]byte(steps), &t.Steps); err != nil {
			return nil, fmt.Errorf("decode template steps: %w", err)
		}
		if t.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if t.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTemplate implements textops.Store. Overwriting a template of another owner
// returns textops.ErrTemplateNotFound.
func (s *Store) SaveTemplate(ctx context.Context, t *textops.RoutineTemplate) error {
	steps, err := json.Marshal(t.Steps)
	if err != nil {
		return fmt.Errorf("encode template steps: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, owner_id, name, description, steps, usage_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    name = excluded.name,
		    description = excluded.description,
		    steps = excluded.steps,
		    updated_at = excluded.updated_at
		WHERE templates.owner_id = excluded.owner_id`,
		t.ID, t.OwnerID, t.Name, t.Description, string(steps), t.UsageCount, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save template %s: %w", t.ID, err)
	}
	return requireRow(res, t.ID)
}

// DeleteTemplate implements textops.Store.
func (s *Store) DeleteTemplate(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	return requireRow(res, id)
}

// IncrementUsage implements textops.Store.
func (s *Store) IncrementUsage(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE templates SET usage_count = usage_count + 1 WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("increment usage %s: %w", id, err)
	}
	return requireRow(res, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireRow(res rowsAffecter, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", textops.ErrTemplateNotFound, id)
	}
	return nil
}
