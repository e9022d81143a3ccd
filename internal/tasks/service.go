// Package tasks layers validated, higher-level mutations over the
// document store and owns derived-field recomputation.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/store"
)

// Default checklist contents for newly created tasks.
var defaultChecklistTexts = []string{
	"Initial inspection",
	"Material verification",
}

// Update describes a partial task update. Nil fields are left
// unchanged. When Checklist is set, the blocked flag is re-derived
// from it and any caller-supplied IsBlocked is ignored.
type Update struct {
	Title        *string
	Description  *string
	Position     *model.Position
	Checklist    []model.ChecklistItem
	HasChecklist bool
	IsBlocked    *bool
}

// ItemUpdate describes a partial checklist item update.
type ItemUpdate struct {
	Text   *string
	Status *model.ItemStatus
}

// Service implements the task mutation API and the login flow on top
// of a Store.
type Service struct {
	store store.Store
	now   func() time.Time
}

// New creates a Service backed by the given store.
func New(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Login finds the user with the given name, creating one on first
// login. The first matching user is canonical.
func (s *Service) Login(ctx context.Context, name string) (model.User, error) {
	existing, err := s.store.FindUserByName(ctx, name)
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user %q: %w", name, err)
	}
	if existing != nil {
		return *existing, nil
	}

	u := model.User{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertUser(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("creating user %q: %w", name, err)
	}
	return u, nil
}

// Create inserts a new task for the user with the default checklist,
// every item NOT_STARTED and the blocked flag clear.
func (s *Service) Create(
	ctx context.Context,
	userID, title, description string,
	pos *model.Position,
) error {
	now := s.now().UTC()

	checklist := make([]model.ChecklistItem, 0, len(defaultChecklistTexts))
	for _, text := range defaultChecklistTexts {
		checklist = append(checklist, model.ChecklistItem{
			ID:        uuid.New().String(),
			Text:      text,
			Status:    model.ItemNotStarted,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	var position *model.Position
	if pos != nil {
		p := *pos
		position = &p
	}

	t := model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Position:    position,
		Checklist:   checklist,
		IsBlocked:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.store.InsertTask(ctx, t)
}

// Update applies a partial update to a task. UpdatedAt is always
// overwritten; when the checklist changes, IsBlocked is recomputed
// from the new checklist. Updating a missing task is a silent no-op.
func (s *Service) Update(ctx context.Context, taskID string, upd Update) error {
	now := s.now().UTC()
	patch := store.TaskPatch{
		Title:       upd.Title,
		Description: upd.Description,
		UpdatedAt:   &now,
	}

	if upd.Position != nil {
		// Copy so the store never retains a pointer shared with UI state.
		p := *upd.Position
		patch.Position = &p
	}

	if upd.HasChecklist {
		checklist := model.CloneChecklist(upd.Checklist)
		blocked := anyBlocked(checklist)
		patch.Checklist = &checklist
		// Derived field wins over whatever the caller supplied.
		patch.IsBlocked = &blocked
	} else if upd.IsBlocked != nil {
		b := *upd.IsBlocked
		patch.IsBlocked = &b
	}

	return s.store.PatchTask(ctx, taskID, patch)
}

// Delete removes a task. Deleting an already-absent task succeeds.
func (s *Service) Delete(ctx context.Context, taskID string) error {
	return s.store.DeleteTask(ctx, taskID)
}

// UpdateItem applies a partial update to one checklist item and bumps
// its UpdatedAt. A missing task or item is a silent no-op.
func (s *Service) UpdateItem(
	ctx context.Context,
	taskID, itemID string,
	upd ItemUpdate,
) error {
	t, err := s.store.FindTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	now := s.now().UTC()
	checklist := model.CloneChecklist(t.Checklist)
	for i := range checklist {
		if checklist[i].ID != itemID {
			continue
		}
		if upd.Text != nil {
			checklist[i].Text = *upd.Text
		}
		if upd.Status != nil {
			checklist[i].Status = *upd.Status
		}
		checklist[i].UpdatedAt = now
	}

	return s.Update(ctx, taskID, Update{Checklist: checklist, HasChecklist: true})
}

// AddItem appends a NOT_STARTED checklist item with the given text.
func (s *Service) AddItem(ctx context.Context, taskID, text string) error {
	t, err := s.store.FindTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	now := s.now().UTC()
	checklist := append(model.CloneChecklist(t.Checklist), model.ChecklistItem{
		ID:        uuid.New().String(),
		Text:      text,
		Status:    model.ItemNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	})

	return s.Update(ctx, taskID, Update{Checklist: checklist, HasChecklist: true})
}

// RemoveItem deletes one checklist item by id.
func (s *Service) RemoveItem(ctx context.Context, taskID, itemID string) error {
	t, err := s.store.FindTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	checklist := make([]model.ChecklistItem, 0, len(t.Checklist))
	for _, item := range t.Checklist {
		if item.ID != itemID {
			checklist = append(checklist, item)
		}
	}

	return s.Update(ctx, taskID, Update{Checklist: checklist, HasChecklist: true})
}

// anyBlocked reports whether any checklist item is BLOCKED.
func anyBlocked(items []model.ChecklistItem) bool {
	for _, item := range items {
		if item.Status == model.ItemBlocked {
			return true
		}
	}
	return false
}
