package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/tests/testutil"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	return New(testutil.NewTestStore(t)), context.Background()
}

func loginAndCreate(t *testing.T, svc *Service, ctx context.Context, title string) model.Task {
	t.Helper()

	u, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)
	require.NoError(t, svc.Create(ctx, u.ID, title, "", nil))

	tasks, err := svc.store.TasksByUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, tasks)
	return tasks[0]
}

func TestLoginCreatesUserOnce(t *testing.T) {
	svc, ctx := newTestService(t)

	first, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Alice", first.Name)

	second, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestLoginDistinctNames(t *testing.T) {
	svc, ctx := newTestService(t)

	alice, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)
	bob, err := svc.Login(ctx, "Bob")
	require.NoError(t, err)
	assert.NotEqual(t, alice.ID, bob.ID)
}

func TestCreateDefaults(t *testing.T) {
	svc, ctx := newTestService(t)

	task := loginAndCreate(t, svc, ctx, "Pour foundation")

	assert.NotEmpty(t, task.ID)
	assert.False(t, task.IsBlocked)
	assert.Nil(t, task.Position)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)

	require.Len(t, task.Checklist, 2)
	assert.Equal(t, "Initial inspection", task.Checklist[0].Text)
	assert.Equal(t, "Material verification", task.Checklist[1].Text)
	for _, item := range task.Checklist {
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, model.ItemNotStarted, item.Status)
	}
	assert.NotEqual(t, task.Checklist[0].ID, task.Checklist[1].ID)
}

func TestCreateCopiesPosition(t *testing.T) {
	svc, ctx := newTestService(t)

	u, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)

	pos := &model.Position{X: 0.5, Y: 0.5}
	require.NoError(t, svc.Create(ctx, u.ID, "Placed", "", pos))
	pos.X = 0.9

	tasks, err := svc.store.TasksByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Position)
	assert.InDelta(t, 0.5, tasks[0].Position.X, 1e-9)
}

func TestUpdateBumpsUpdatedAt(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Frame walls")

	later := task.UpdatedAt.Add(time.Hour)
	svc.now = func() time.Time { return later }

	title := "Frame interior walls"
	require.NoError(t, svc.Update(ctx, task.ID, Update{Title: &title}))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, title, got.Title)
	assert.True(t, got.UpdatedAt.After(task.UpdatedAt))
	assert.Equal(t, task.CreatedAt, got.CreatedAt)
}

func TestUpdateChecklistDerivesBlocked(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Roofing")

	checklist := model.CloneChecklist(task.Checklist)
	checklist[0].Status = model.ItemBlocked

	// The caller explicitly claims unblocked; the derived value wins.
	unblocked := false
	require.NoError(t, svc.Update(ctx, task.ID, Update{
		Checklist:    checklist,
		HasChecklist: true,
		IsBlocked:    &unblocked,
	}))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsBlocked)

	// Unblocking the item clears the flag again.
	checklist[0].Status = model.ItemDone
	require.NoError(t, svc.Update(ctx, task.ID, Update{Checklist: checklist, HasChecklist: true}))

	got, err = svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsBlocked)
}

func TestUpdateWithoutChecklistKeepsCallerBlocked(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Electrical")

	blocked := true
	require.NoError(t, svc.Update(ctx, task.ID, Update{IsBlocked: &blocked}))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsBlocked)
}

func TestUpdateDoesNotAliasCallerChecklist(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Plumbing")

	checklist := model.CloneChecklist(task.Checklist)
	require.NoError(t, svc.Update(ctx, task.ID, Update{Checklist: checklist, HasChecklist: true}))

	// Mutating the caller's slice after the update must not leak into
	// stored state.
	checklist[0].Text = "tampered"

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Initial inspection", got.Checklist[0].Text)
}

func TestUpdateMissingTaskIsNoOp(t *testing.T) {
	svc, ctx := newTestService(t)

	title := "anything"
	assert.NoError(t, svc.Update(ctx, "no-such-task", Update{Title: &title}))
}

func TestUpdateItemStatus(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Drywall")

	itemID := task.Checklist[0].ID
	status := model.ItemInProgress
	require.NoError(t, svc.UpdateItem(ctx, task.ID, itemID, ItemUpdate{Status: &status}))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.ItemInProgress, got.Checklist[0].Status)
	assert.Equal(t, model.ItemNotStarted, got.Checklist[1].Status)
}

func TestUpdateItemBlockedPropagates(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Inspection")

	status := model.ItemBlocked
	require.NoError(t, svc.UpdateItem(ctx, task.ID, task.Checklist[0].ID, ItemUpdate{Status: &status}))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsBlocked)
}

func TestUpdateItemMissingTaskOrItem(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Painting")

	status := model.ItemDone
	assert.NoError(t, svc.UpdateItem(ctx, "no-such-task", "item", ItemUpdate{Status: &status}))
	assert.NoError(t, svc.UpdateItem(ctx, task.ID, "no-such-item", ItemUpdate{Status: &status}))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	for _, item := range got.Checklist {
		assert.Equal(t, model.ItemNotStarted, item.Status)
	}
}

func TestAddAndRemoveItem(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Landscaping")

	require.NoError(t, svc.AddItem(ctx, task.ID, "Grade the lot"))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Checklist, 3)
	added := got.Checklist[2]
	assert.Equal(t, "Grade the lot", added.Text)
	assert.Equal(t, model.ItemNotStarted, added.Status)

	require.NoError(t, svc.RemoveItem(ctx, task.ID, added.ID))

	got, err = svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Checklist, 2)
}

func TestRemoveBlockedItemUnblocksTask(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Foundation")

	status := model.ItemBlocked
	require.NoError(t, svc.UpdateItem(ctx, task.ID, task.Checklist[0].ID, ItemUpdate{Status: &status}))
	require.NoError(t, svc.RemoveItem(ctx, task.ID, task.Checklist[0].ID))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsBlocked)
	assert.Len(t, got.Checklist, 1)
}

func TestDeleteIdempotent(t *testing.T) {
	svc, ctx := newTestService(t)
	task := loginAndCreate(t, svc, ctx, "Cleanup")

	require.NoError(t, svc.Delete(ctx, task.ID))
	require.NoError(t, svc.Delete(ctx, task.ID))

	got, err := svc.store.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
