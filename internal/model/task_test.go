package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItemStatusValid(t *testing.T) {
	for _, st := range ItemStatuses {
		assert.True(t, st.Valid(), string(st))
	}
	assert.False(t, ItemStatus("").Valid())
	assert.False(t, ItemStatus("done").Valid())
	assert.False(t, ItemStatus("PAUSED").Valid())
}

func TestTaskClone(t *testing.T) {
	now := time.Now()
	orig := Task{
		ID:       "t1",
		Position: &Position{X: 0.1, Y: 0.2},
		Checklist: []ChecklistItem{
			{ID: "c1", Text: "step", Status: ItemNotStarted, CreatedAt: now, UpdatedAt: now},
		},
	}

	c := orig.Clone()
	c.Position.X = 0.9
	c.Checklist[0].Text = "changed"

	assert.InDelta(t, 0.1, orig.Position.X, 1e-9)
	assert.Equal(t, "step", orig.Checklist[0].Text)
}

func TestTaskCloneNilFields(t *testing.T) {
	c := Task{ID: "t1"}.Clone()
	assert.Nil(t, c.Position)
	assert.Nil(t, c.Checklist)
}

func TestCloneChecklist(t *testing.T) {
	items := []ChecklistItem{{ID: "a", Text: "one"}}
	c := CloneChecklist(items)
	c[0].Text = "changed"
	assert.Equal(t, "one", items[0].Text)

	assert.Nil(t, CloneChecklist(nil))
}
