// Package view caches the latest live-query snapshot for the UI and
// layers optimistic local patches on top of it. The authoritative
// snapshot is the single source of truth: when it arrives, it replaces
// the cached list wholesale and any optimistic patch is discarded.
package view

import (
	"sync"

	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/store"
)

// Store holds the view-facing task state for the logged-in user. It is
// constructed explicitly and injected into the UI tree, so tests get a
// fresh instance instead of sharing process globals.
type Store struct {
	mu         sync.Mutex
	tasks      []model.Task
	selectedID string
	loading    bool
	err        error

	src    store.Store
	userID string
	sub    store.TaskSubscription

	// updates carries a coalesced change signal for the UI loop.
	updates chan struct{}
}

// New creates an empty view store.
func New() *Store {
	return &Store{
		updates: make(chan struct{}, 1),
	}
}

// Updates returns the coalesced change-notification channel. The UI
// waits on it and re-reads state after each signal.
func (s *Store) Updates() <-chan struct{} {
	return s.updates
}

// Bind subscribes the view to the given user's tasks, first cancelling
// any prior subscription so two users are never observed concurrently.
func (s *Store) Bind(src store.Store, userID string) {
	s.mu.Lock()
	s.releaseLocked()
	s.src = src
	s.userID = userID
	s.loading = true
	s.err = nil
	s.tasks = nil
	s.selectedID = ""
	sub := src.SubscribeTasks(userID)
	s.sub = sub
	s.mu.Unlock()

	s.signal()
	go s.consume(sub)
}

// Release cancels the active subscription, if any. Safe to call
// repeatedly and after the store has shut down.
func (s *Store) Release() {
	s.mu.Lock()
	s.releaseLocked()
	s.src = nil
	s.userID = ""
	s.mu.Unlock()
	s.signal()
}

// Retry re-subscribes after a stream error. It is the only recovery
// path: the view never silently resubscribes on its own.
func (s *Store) Retry() {
	s.mu.Lock()
	src, userID := s.src, s.userID
	s.mu.Unlock()

	if src == nil || userID == "" {
		return
	}
	s.Bind(src, userID)
}

// consume drains one subscription until it is cancelled or fails.
func (s *Store) consume(sub store.TaskSubscription) {
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			s.mu.Lock()
			if s.sub != sub {
				// A newer Bind superseded this subscription; its
				// still-buffered snapshots must not leak into the
				// new user's view.
				s.mu.Unlock()
				return
			}
			s.tasks = cloneTasks(snap)
			s.loading = false
			s.err = nil
			s.mu.Unlock()
			s.signal()
		case err, ok := <-sub.Errors():
			if !ok {
				return
			}
			s.mu.Lock()
			if s.sub == sub {
				s.err = err
				s.loading = false
				s.releaseLocked()
			}
			s.mu.Unlock()
			s.signal()
			return
		}
	}
}

// SetTasks replaces the cached list with an authoritative snapshot,
// discarding any optimistic patches (last snapshot wins).
func (s *Store) SetTasks(tasks []model.Task) {
	s.mu.Lock()
	s.tasks = cloneTasks(tasks)
	s.loading = false
	s.err = nil
	s.mu.Unlock()
	s.signal()
}

// AddLocal optimistically prepends a task ahead of the next snapshot.
func (s *Store) AddLocal(t model.Task) {
	s.mu.Lock()
	s.tasks = append([]model.Task{t.Clone()}, s.tasks...)
	s.mu.Unlock()
	s.signal()
}

// PatchLocal optimistically merges fields into a cached task.
func (s *Store) PatchLocal(id string, patch store.TaskPatch) {
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		applyPatch(&s.tasks[i], patch)
		break
	}
	s.mu.Unlock()
	s.signal()
}

// RemoveLocal optimistically drops a task from the cached list.
func (s *Store) RemoveLocal(id string) {
	s.mu.Lock()
	out := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	s.tasks = out
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.mu.Unlock()
	s.signal()
}

// Select marks a task as the current selection; an empty id clears it.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.selectedID = id
	s.mu.Unlock()
	s.signal()
}

// Selected returns the currently selected task, or nil when the
// selection is empty or no longer present in the cached list.
func (s *Store) Selected() *model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedID == "" {
		return nil
	}
	for _, t := range s.tasks {
		if t.ID == s.selectedID {
			c := t.Clone()
			return &c
		}
	}
	return nil
}

// Tasks returns a copy of the cached task list.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Loading reports whether the initial snapshot is still pending.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the current stream error, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// releaseLocked cancels the active subscription. Caller holds s.mu.
func (s *Store) releaseLocked() {
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
	s.loading = false
}

// signal coalesces change notifications into the updates channel.
func (s *Store) signal() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// applyPatch merges patch fields into the task in place, mirroring the
// store's merge semantics for the optimistic overlay.
func applyPatch(t *model.Task, p store.TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Position != nil {
		pos := *p.Position
		t.Position = &pos
	}
	if p.Checklist != nil {
		t.Checklist = model.CloneChecklist(*p.Checklist)
	}
	if p.IsBlocked != nil {
		t.IsBlocked = *p.IsBlocked
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
}
