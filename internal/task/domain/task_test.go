package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueDate_JSON(t *testing.T) {
	due := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	b, err := json.Marshal(DueAt(due))
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-01T09:30:00Z"`, string(b))

	b, err = json.Marshal(NoDueDate())
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	var d DueDate
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-01T09:30:00Z"`), &d))
	got, ok := d.Get()
	assert.True(t, ok)
	assert.True(t, got.Equal(due))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.False(t, d.IsSet())
}

func TestDueDate_Equal(t *testing.T) {
	a := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.True(t, NoDueDate().Equal(NoDueDate()))
	assert.True(t, DueAt(a).Equal(DueAt(a.In(time.FixedZone("JST", 9*3600)))))
	assert.False(t, DueAt(a).Equal(NoDueDate()))
	assert.False(t, DueAt(a).Equal(DueAt(a.Add(time.Minute))))
}

func TestAssignee(t *testing.T) {
	uid, ok := AssignedTo("u1").Get()
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)

	assert.False(t, AssignedTo("").IsAssigned())
	assert.False(t, Unassigned().IsAssigned())

	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","title":"x","assignedTo":"u2"}`), &task))
	assert.Equal(t, AssignedTo("u2"), task.AssignedTo)
	assert.False(t, task.DueDate.IsSet())
}

func TestTask_Validate(t *testing.T) {
	assert.NoError(t, (&Task{ID: "t1", Title: "Write report"}).Validate())
	assert.ErrorIs(t, (&Task{ID: "t1"}).Validate(), ErrInvalidTask)
	assert.ErrorIs(t, (&Task{Title: "orphan"}).Validate(), ErrInvalidTask)
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("High"))
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityMedium, ParsePriority(""))
	assert.Equal(t, PriorityMedium, ParsePriority("urgent"))
}
