package store

import (
	"strings"

	"github.com/imshahrukh/sitetracker/internal/model"
)

// validateUser enforces the user schema at the insert boundary.
func validateUser(u model.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if len(u.ID) > model.MaxIDLength {
		return &ValidationError{Field: "id", Reason: "exceeds maximum length"}
	}
	if strings.TrimSpace(u.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(u.Name) > model.MaxNameLength {
		return &ValidationError{Field: "name", Reason: "exceeds maximum length"}
	}
	if u.CreatedAt.IsZero() {
		return &ValidationError{Field: "created_at", Reason: "must be set"}
	}
	return nil
}

// validateTask enforces the task schema at the insert boundary.
func validateTask(t model.Task) error {
	if strings.TrimSpace(t.ID) == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if len(t.ID) > model.MaxIDLength {
		return &ValidationError{Field: "id", Reason: "exceeds maximum length"}
	}
	if strings.TrimSpace(t.UserID) == "" {
		return &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if len(t.UserID) > model.MaxIDLength {
		return &ValidationError{Field: "user_id", Reason: "exceeds maximum length"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len(t.Title) > model.MaxTitleLength {
		return &ValidationError{Field: "title", Reason: "exceeds maximum length"}
	}
	if len(t.Description) > model.MaxDescriptionLength {
		return &ValidationError{Field: "description", Reason: "exceeds maximum length"}
	}
	if err := validatePosition(t.Position); err != nil {
		return err
	}
	if err := validateChecklist(t.Checklist); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		return &ValidationError{Field: "created_at", Reason: "must be set"}
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return &ValidationError{Field: "updated_at", Reason: "must not precede created_at"}
	}
	return nil
}

// validatePatch enforces schema constraints on the fields a patch
// actually carries. Absence of the target document is not checked
// here; that is the silent no-op path.
func validatePatch(p TaskPatch) error {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		if len(*p.Title) > model.MaxTitleLength {
			return &ValidationError{Field: "title", Reason: "exceeds maximum length"}
		}
	}
	if p.Description != nil && len(*p.Description) > model.MaxDescriptionLength {
		return &ValidationError{Field: "description", Reason: "exceeds maximum length"}
	}
	if err := validatePosition(p.Position); err != nil {
		return err
	}
	if p.Checklist != nil {
		if err := validateChecklist(*p.Checklist); err != nil {
			return err
		}
	}
	return nil
}

func validatePosition(pos *model.Position) error {
	if pos == nil {
		return nil
	}
	if pos.X < 0 || pos.X > 1 || pos.Y < 0 || pos.Y > 1 {
		return &ValidationError{Field: "position", Reason: "coordinates must be within [0,1]"}
	}
	return nil
}

func validateChecklist(items []model.ChecklistItem) error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return &ValidationError{Field: "checklist", Reason: "item id must not be empty"}
		}
		if seen[item.ID] {
			return &ValidationError{Field: "checklist", Reason: "item ids must be unique"}
		}
		seen[item.ID] = true
		if strings.TrimSpace(item.Text) == "" {
			return &ValidationError{Field: "checklist", Reason: "item text must not be empty"}
		}
		if !item.Status.Valid() {
			return &ValidationError{Field: "checklist", Reason: "unknown item status"}
		}
	}
	return nil
}
