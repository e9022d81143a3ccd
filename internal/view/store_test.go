package view_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/store"
	"github.com/imshahrukh/sitetracker/internal/view"
	"github.com/imshahrukh/sitetracker/tests/testutil"
)

func seedUser(t *testing.T, s store.Store, name string) model.User {
	t.Helper()
	u := model.User{ID: uuid.New().String(), Name: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.InsertUser(context.Background(), u))
	return u
}

func seedTask(t *testing.T, s store.Store, userID, title string) model.Task {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	task := model.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Checklist: []model.ChecklistItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.InsertTask(context.Background(), task))
	return task
}

// waitFor polls the view store until cond is satisfied, consuming
// update signals as they arrive.
func waitFor(t *testing.T, vs *view.Store, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-vs.Updates():
		case <-deadline:
			t.Fatal("timed out waiting for view state")
		}
	}
}

func TestBindDeliversSnapshot(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := seedUser(t, s, "Alice")
	seedTask(t, s, u.ID, "existing")

	vs := view.New()
	defer vs.Release()
	vs.Bind(s, u.ID)

	waitFor(t, vs, func() bool { return !vs.Loading() })
	tasks := vs.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "existing", tasks[0].Title)
}

func TestBindObservesLiveMutations(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := seedUser(t, s, "Alice")

	vs := view.New()
	defer vs.Release()
	vs.Bind(s, u.ID)
	waitFor(t, vs, func() bool { return !vs.Loading() })

	seedTask(t, s, u.ID, "created later")
	waitFor(t, vs, func() bool { return len(vs.Tasks()) == 1 })
	assert.Equal(t, "created later", vs.Tasks()[0].Title)
}

func TestRebindSwitchesUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	alice := seedUser(t, s, "Alice")
	bob := seedUser(t, s, "Bob")
	seedTask(t, s, alice.ID, "alice-task")
	seedTask(t, s, bob.ID, "bob-task")

	vs := view.New()
	defer vs.Release()

	vs.Bind(s, alice.ID)
	waitFor(t, vs, func() bool { return !vs.Loading() && len(vs.Tasks()) == 1 })
	assert.Equal(t, "alice-task", vs.Tasks()[0].Title)

	vs.Bind(s, bob.ID)
	waitFor(t, vs, func() bool {
		ts := vs.Tasks()
		return !vs.Loading() && len(ts) == 1 && ts[0].Title == "bob-task"
	})

	// Further writes to Alice's tasks never surface in Bob's view.
	seedTask(t, s, alice.ID, "alice-again")
	seedTask(t, s, bob.ID, "bob-again")
	waitFor(t, vs, func() bool { return len(vs.Tasks()) == 2 })
	for _, task := range vs.Tasks() {
		assert.Equal(t, bob.ID, task.UserID)
	}
}

func TestSnapshotOverridesOptimisticState(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := seedUser(t, s, "Alice")
	task := seedTask(t, s, u.ID, "authoritative")

	vs := view.New()
	defer vs.Release()
	vs.Bind(s, u.ID)
	waitFor(t, vs, func() bool { return len(vs.Tasks()) == 1 })

	optimistic := "optimistic rename"
	vs.PatchLocal(task.ID, store.TaskPatch{Title: &optimistic})
	assert.Equal(t, optimistic, vs.Tasks()[0].Title)

	// A committed write replaces the overlay wholesale.
	committed := "committed rename"
	require.NoError(t, s.PatchTask(context.Background(), task.ID, store.TaskPatch{Title: &committed}))
	waitFor(t, vs, func() bool { return vs.Tasks()[0].Title == committed })
}

func TestRemoveLocalClearsSelection(t *testing.T) {
	vs := view.New()
	vs.SetTasks([]model.Task{{ID: "t1", Title: "one"}, {ID: "t2", Title: "two"}})

	vs.Select("t1")
	require.NotNil(t, vs.Selected())

	vs.RemoveLocal("t1")
	assert.Nil(t, vs.Selected())
	require.Len(t, vs.Tasks(), 1)
	assert.Equal(t, "t2", vs.Tasks()[0].ID)
}

func TestAddLocalPrepends(t *testing.T) {
	vs := view.New()
	vs.SetTasks([]model.Task{{ID: "t1"}})
	vs.AddLocal(model.Task{ID: "t0"})

	tasks := vs.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "t0", tasks[0].ID)
}

func TestSelectedStaleIDReturnsNil(t *testing.T) {
	vs := view.New()
	vs.SetTasks([]model.Task{{ID: "t1"}})
	vs.Select("t1")

	vs.SetTasks([]model.Task{{ID: "t2"}})
	assert.Nil(t, vs.Selected())
}

func TestTasksReturnsCopy(t *testing.T) {
	vs := view.New()
	vs.SetTasks([]model.Task{{ID: "t1", Title: "original"}})

	got := vs.Tasks()
	got[0].Title = "mutated"
	assert.Equal(t, "original", vs.Tasks()[0].Title)
}

func TestRetryResubscribes(t *testing.T) {
	s := testutil.NewTestStore(t)
	u := seedUser(t, s, "Alice")
	seedTask(t, s, u.ID, "existing")

	vs := view.New()
	defer vs.Release()
	vs.Bind(s, u.ID)
	waitFor(t, vs, func() bool { return len(vs.Tasks()) == 1 })

	vs.Retry()
	waitFor(t, vs, func() bool { return !vs.Loading() && len(vs.Tasks()) == 1 })
	assert.Equal(t, "existing", vs.Tasks()[0].Title)
	assert.NoError(t, vs.Err())

	// Retry with no prior binding is a no-op.
	idle := view.New()
	idle.Retry()
	assert.Empty(t, idle.Tasks())
}

// stubSub is a scriptable task subscription for driving the stream
// error path without a real database.
type stubSub struct {
	snaps  chan []model.Task
	errs   chan error
	once   sync.Once
	closed chan struct{}
}

func newStubSub() *stubSub {
	return &stubSub{
		snaps:  make(chan []model.Task, 8),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (s *stubSub) Snapshots() <-chan []model.Task { return s.snaps }
func (s *stubSub) Errors() <-chan error           { return s.errs }

func (s *stubSub) Unsubscribe() {
	s.once.Do(func() {
		close(s.closed)
		close(s.snaps)
		close(s.errs)
	})
}

func (s *stubSub) unsubscribed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// stubStore implements store.Store with no persistence; only
// SubscribeTasks does anything.
type stubStore struct {
	mu   sync.Mutex
	subs []*stubSub
}

func (s *stubStore) InsertUser(context.Context, model.User) error { return nil }
func (s *stubStore) FindUserByName(context.Context, string) (*model.User, error) {
	return nil, nil
}
func (s *stubStore) InsertTask(context.Context, model.Task) error { return nil }
func (s *stubStore) FindTaskByID(context.Context, string) (*model.Task, error) {
	return nil, nil
}
func (s *stubStore) PatchTask(context.Context, string, store.TaskPatch) error { return nil }
func (s *stubStore) DeleteTask(context.Context, string) error                 { return nil }
func (s *stubStore) TasksByUser(context.Context, string) ([]model.Task, error) {
	return nil, nil
}
func (s *stubStore) Close() error { return nil }

func (s *stubStore) SubscribeTasks(string) store.TaskSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := newStubSub()
	s.subs = append(s.subs, sub)
	return sub
}

func (s *stubStore) latest() *stubSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[len(s.subs)-1]
}

func (s *stubStore) subscribeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func TestStreamErrorIsStickyUntilRetry(t *testing.T) {
	src := &stubStore{}
	vs := view.New()
	defer vs.Release()

	vs.Bind(src, "u1")
	sub := src.latest()
	sub.snaps <- []model.Task{{ID: "t1", Title: "one"}}
	waitFor(t, vs, func() bool { return len(vs.Tasks()) == 1 })

	boom := errors.New("live query lost")
	sub.errs <- boom
	waitFor(t, vs, func() bool { return vs.Err() != nil })

	assert.ErrorIs(t, vs.Err(), boom)
	assert.False(t, vs.Loading())
	assert.True(t, sub.unsubscribed())

	// The error sticks: no automatic resubscription, and the last
	// delivered snapshot stays visible behind it.
	assert.Equal(t, 1, src.subscribeCount())
	require.Len(t, vs.Tasks(), 1)
	assert.Equal(t, "one", vs.Tasks()[0].Title)

	vs.Retry()
	assert.NoError(t, vs.Err())
	assert.True(t, vs.Loading())
	require.Equal(t, 2, src.subscribeCount())

	recovered := src.latest()
	recovered.snaps <- []model.Task{{ID: "t1", Title: "one"}, {ID: "t2", Title: "two"}}
	waitFor(t, vs, func() bool { return !vs.Loading() && len(vs.Tasks()) == 2 })
	assert.NoError(t, vs.Err())
}
