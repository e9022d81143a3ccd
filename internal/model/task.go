package model

import "time"

// ItemStatus is the workflow state of a single checklist item.
type ItemStatus string

const (
	ItemNotStarted         ItemStatus = "NOT_STARTED"
	ItemInProgress         ItemStatus = "IN_PROGRESS"
	ItemBlocked            ItemStatus = "BLOCKED"
	ItemFinalCheckAwaiting ItemStatus = "FINAL_CHECK_AWAITING"
	ItemDone               ItemStatus = "DONE"
)

// ItemStatuses lists every valid checklist item status.
var ItemStatuses = []ItemStatus{
	ItemNotStarted,
	ItemInProgress,
	ItemBlocked,
	ItemFinalCheckAwaiting,
	ItemDone,
}

// Valid reports whether s is one of the known item statuses.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemNotStarted, ItemInProgress, ItemBlocked, ItemFinalCheckAwaiting, ItemDone:
		return true
	}
	return false
}

// Schema limits enforced at the store boundary. Form-level limits
// (minimum lengths, name pattern, checklist item count) are stricter
// and applied by the UI before a mutation is issued.
const (
	MaxIDLength          = 100
	MaxNameLength        = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Position locates a task marker on the floor plan, with both
// coordinates normalized to the [0,1] range. A task without a
// position is unplaced.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChecklistItem is a single stateful step within a task's checklist.
// Its lifecycle is bound to the parent task; items are never shared.
type ChecklistItem struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Status    ItemStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Task is a construction task placed on the floor plan and tracked
// through its checklist.
type Task struct {
	// ID is the unique document identifier.
	ID string `json:"id"`

	// UserID references the user that created the task. The reference
	// is non-owning: deleting a user does not cascade.
	UserID string `json:"user_id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// Description is optional free-form detail text.
	Description string `json:"description,omitempty"`

	// Position is the optional floor-plan marker location.
	Position *Position `json:"position,omitempty"`

	// Checklist holds the task's steps. Item IDs are unique within
	// the task.
	Checklist []ChecklistItem `json:"checklist"`

	// IsBlocked caches whether any checklist item is BLOCKED. It is
	// re-derived on every checklist write; a caller-supplied value is
	// ignored whenever the checklist itself is part of the update.
	IsBlocked bool `json:"is_blocked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the task. Store and service code hand
// out clones so no caller ends up sharing slices with committed state.
func (t Task) Clone() Task {
	c := t
	if t.Position != nil {
		p := *t.Position
		c.Position = &p
	}
	if t.Checklist != nil {
		c.Checklist = make([]ChecklistItem, len(t.Checklist))
		copy(c.Checklist, t.Checklist)
	}
	return c
}

// CloneChecklist returns a deep copy of a checklist slice.
func CloneChecklist(items []ChecklistItem) []ChecklistItem {
	if items == nil {
		return nil
	}
	c := make([]ChecklistItem, len(items))
	copy(c, items)
	return c
}
