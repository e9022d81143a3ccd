package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imshahrukh/sitetracker/internal/model"
)

// ErrUnavailable is returned when the shared store has not been
// initialized or failed to initialize. Callers must treat it as fatal
// for all task and user features.
var ErrUnavailable = errors.New("document store is not available")

// ValidationError reports a schema constraint violation at the insert
// boundary. Inserts are rejected, never silently coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TaskSubscription is a live query over one user's tasks. Snapshots
// observed through it are causally ordered: a snapshot reflecting a
// later-committed mutation is never delivered before an earlier one.
type TaskSubscription interface {
	// Snapshots returns the channel of full result-set snapshots. The
	// channel is closed when the subscription is cancelled or the
	// store shuts down.
	Snapshots() <-chan []model.Task

	// Errors returns the subscription's error channel. A mid-stream
	// storage failure is surfaced here, never on the snapshot channel.
	Errors() <-chan error

	// Unsubscribe cancels the live query. It is idempotent and safe to
	// call after the store has already been closed.
	Unsubscribe()
}

// TaskPatch describes a partial update to a stored task. Nil fields are
// left unchanged. Patching a task that no longer exists is a silent
// no-op: callers fire and forget after optimistic UI deletions.
type TaskPatch struct {
	Title       *string
	Description *string
	Position    *model.Position
	Checklist   *[]model.ChecklistItem
	IsBlocked   *bool
	UpdatedAt   *time.Time
}

// Store defines the persistence contract for users and tasks: durable
// local documents with schema validation, keyed lookup, and a per-user
// change feed over the tasks collection.
type Store interface {
	// InsertUser persists a new user. Returns *ValidationError when a
	// schema constraint is violated.
	InsertUser(ctx context.Context, u model.User) error

	// FindUserByName returns the first user with the given name, or
	// (nil, nil) when no such user exists.
	FindUserByName(ctx context.Context, name string) (*model.User, error)

	// InsertTask persists a new task. Returns *ValidationError when a
	// schema constraint is violated.
	InsertTask(ctx context.Context, t model.Task) error

	// FindTaskByID returns the task with the given id, or (nil, nil)
	// when absent.
	FindTaskByID(ctx context.Context, id string) (*model.Task, error)

	// PatchTask merges the patch into the stored task. A missing id is
	// a silent no-op.
	PatchTask(ctx context.Context, id string, p TaskPatch) error

	// DeleteTask removes the task if present; idempotent otherwise.
	DeleteTask(ctx context.Context, id string) error

	// TasksByUser returns the user's tasks ordered by creation time
	// descending.
	TasksByUser(ctx context.Context, userID string) ([]model.Task, error)

	// SubscribeTasks opens a live query over the user's tasks. An
	// initial snapshot is delivered as soon as available, then a new
	// full snapshot after every committed mutation touching that
	// user's tasks.
	SubscribeTasks(userID string) TaskSubscription

	Close() error
}
