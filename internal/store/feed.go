package store

import (
	"context"
	"sync"

	"github.com/imshahrukh/sitetracker/internal/model"
)

// snapshotBuffer is the per-subscriber channel capacity. A slow
// consumer has its oldest snapshots coalesced away: every emission is
// a full consistent list, so the latest one always wins.
const snapshotBuffer = 8

// taskSubscription is the SQLite-backed TaskSubscription.
type taskSubscription struct {
	id     uint64
	userID string
	snaps  chan []model.Task
	errs   chan error
	hub    *feedHub
	once   sync.Once
}

func (sub *taskSubscription) Snapshots() <-chan []model.Task {
	return sub.snaps
}

func (sub *taskSubscription) Errors() <-chan error {
	return sub.errs
}

func (sub *taskSubscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.hub.remove(sub)
	})
}

// feedHub tracks active task subscriptions and fans committed
// snapshots out to them.
type feedHub struct {
	mu     sync.Mutex
	subs   map[uint64]*taskSubscription
	nextID uint64
	closed bool
}

func newFeedHub() *feedHub {
	return &feedHub{subs: make(map[uint64]*taskSubscription)}
}

// add registers a new subscription for the given user.
func (h *feedHub) add(userID string) *taskSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &taskSubscription{
		id:     h.nextID,
		userID: userID,
		snaps:  make(chan []model.Task, snapshotBuffer),
		errs:   make(chan error, 1),
		hub:    h,
	}
	if h.closed {
		// Store already shut down; hand back a terminated subscription.
		close(sub.snaps)
		close(sub.errs)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

// remove unregisters the subscription and closes its channels. Safe to
// call for a subscription that is already gone.
func (h *feedHub) remove(sub *taskSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.snaps)
	close(sub.errs)
}

// closeAll terminates every subscription. Called on store Close.
func (h *feedHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.snaps)
		close(sub.errs)
	}
}

// publish delivers a snapshot to every subscription watching userID.
func (h *feedHub) publish(userID string, snap []model.Task) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if sub.userID != userID {
			continue
		}
		push(sub.snaps, snap)
	}
}

// publishErr delivers a stream error to every subscription watching
// userID.
func (h *feedHub) publishErr(userID string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if sub.userID != userID {
			continue
		}
		select {
		case sub.errs <- err:
		default:
		}
	}
}

// sendTo delivers a snapshot to a single subscription, provided it is
// still registered.
func (h *feedHub) sendTo(sub *taskSubscription, snap []model.Task) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	push(sub.snaps, snap)
}

// sendErrTo delivers an error to a single subscription, provided it is
// still registered.
func (h *feedHub) sendErrTo(sub *taskSubscription, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	select {
	case sub.errs <- err:
	default:
	}
}

// push enqueues a snapshot without blocking, dropping the oldest
// buffered snapshot when the consumer lags.
func push(ch chan []model.Task, snap []model.Task) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// SubscribeTasks opens a live query over the user's tasks. The initial
// snapshot is queried under the write lock so it lines up with the
// mutation order seen by the feed.
func (s *SQLiteStore) SubscribeTasks(userID string) TaskSubscription {
	sub := s.hub.add(userID)

	go func() {
		s.writeMu.Lock()
		snap, err := s.queryTasksByUser(context.Background(), userID)
		if err != nil {
			s.writeMu.Unlock()
			s.hub.sendErrTo(sub, err)
			return
		}
		s.hub.sendTo(sub, snap)
		s.writeMu.Unlock()
	}()

	return sub
}

// notifyUser recomputes the user's snapshot and publishes it to active
// subscribers. Must be called with writeMu held, immediately after a
// committed mutation.
func (s *SQLiteStore) notifyUser(ctx context.Context, userID string) {
	snap, err := s.queryTasksByUser(ctx, userID)
	if err != nil {
		s.hub.publishErr(userID, err)
		return
	}
	s.hub.publish(userID, snap)
}
