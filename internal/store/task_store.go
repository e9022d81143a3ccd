package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/imshahrukh/sitetracker/internal/model"
)

// InsertTask persists a new task after schema validation and notifies
// the owner's live queries.
func (s *SQLiteStore) InsertTask(ctx context.Context, t model.Task) error {
	if err := validateTask(t); err != nil {
		return err
	}

	checklist, err := json.Marshal(t.Checklist)
	if err != nil {
		return fmt.Errorf("marshaling checklist for task %s: %w", t.ID, err)
	}

	var posX, posY *float64
	if t.Position != nil {
		posX, posY = &t.Position.X, &t.Position.Y
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, title, description,
			pos_x, pos_y, checklist, is_blocked,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description,
		posX, posY, string(checklist), boolToInt(t.IsBlocked),
		t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting task %s: %w", t.ID, err)
	}

	s.notifyUser(ctx, t.UserID)
	return nil
}

// FindTaskByID retrieves a single task by its ID, or (nil, nil) when
// absent.
func (s *SQLiteStore) FindTaskByID(
	ctx context.Context,
	id string,
) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT * FROM tasks WHERE id = ?", id)

	task, err := scanTaskRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	return &task, nil
}

// PatchTask merges the patch into the stored task and notifies the
// owner's live queries. Patching a missing task is a silent no-op.
func (s *SQLiteStore) PatchTask(ctx context.Context, id string, p TaskPatch) error {
	if err := validatePatch(p); err != nil {
		return err
	}

	var sets []string
	var args []interface{}

	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Position != nil {
		sets = append(sets, "pos_x = ?", "pos_y = ?")
		args = append(args, p.Position.X, p.Position.Y)
	}
	if p.Checklist != nil {
		checklist, err := json.Marshal(*p.Checklist)
		if err != nil {
			return fmt.Errorf("marshaling checklist for task %s: %w", id, err)
		}
		sets = append(sets, "checklist = ?")
		args = append(args, string(checklist))
	}
	if p.IsBlocked != nil {
		sets = append(sets, "is_blocked = ?")
		args = append(args, boolToInt(*p.IsBlocked))
	}
	if p.UpdatedAt != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, p.UpdatedAt.UTC())
	}

	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	userID, ok, err := s.taskOwner(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		// Document already gone; callers rely on fire-and-forget
		// semantics after optimistic deletions.
		return nil
	}

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("patching task %s: %w", id, err)
	}

	s.notifyUser(ctx, userID)
	return nil
}

// DeleteTask removes the task if present and notifies the owner's live
// queries. Deleting a missing task is a no-op.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	userID, ok, err := s.taskOwner(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}

	s.notifyUser(ctx, userID)
	return nil
}

// TasksByUser returns the user's tasks ordered by creation time
// descending, newest first.
func (s *SQLiteStore) TasksByUser(
	ctx context.Context,
	userID string,
) ([]model.Task, error) {
	return s.queryTasksByUser(ctx, userID)
}

// taskOwner looks up the owning user of a task. The second return
// value reports whether the task exists.
func (s *SQLiteStore) taskOwner(ctx context.Context, id string) (string, bool, error) {
	var userID string
	err := s.db.GetContext(ctx, &userID, "SELECT user_id FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up task %s: %w", id, err)
	}
	return userID, true, nil
}

// queryTasksByUser runs the ordered per-user task query. Ties on
// created_at break by id so the order is deterministic.
func (s *SQLiteStore) queryTasksByUser(
	ctx context.Context,
	userID string,
) ([]model.Task, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for user %s: %w", userID, err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// scanTask scans a task row from a sqlx.Rows result set.
func scanTask(rows *sqlx.Rows) (model.Task, error) {
	return scanTaskFields(rows)
}

// scanTaskRow scans a single task row from a sqlx.Row.
func scanTaskRow(row *sqlx.Row) (model.Task, error) {
	return scanTaskFields(row)
}

// scanTaskFields scans the tasks table columns into a model.Task.
func scanTaskFields(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		task       model.Task
		posX, posY *float64
		checklist  string
		isBlocked  int
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description,
		&posX, &posY, &checklist, &isBlocked,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, err
		}
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	if posX != nil && posY != nil {
		task.Position = &model.Position{X: *posX, Y: *posY}
	}
	if checklist != "" {
		if err := json.Unmarshal([]byte(checklist), &task.Checklist); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling checklist: %w", err)
		}
	}
	task.IsBlocked = isBlocked != 0
	task.CreatedAt = createdAt
	task.UpdatedAt = updatedAt

	return task, nil
}
