package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTaskPriorityValid(t *testing.T) {
	for _, p := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		assert.True(t, p.Valid(), "%s should be valid", p)
	}
	assert.False(t, TaskPriority("Urgent").Valid())
	assert.False(t, TaskPriority("low").Valid())
	assert.False(t, TaskPriority("").Valid())
}

func TestTaskIsReporter(t *testing.T) {
	reporter := primitive.NewObjectID()
	task := &Task{Reporter: reporter}

	assert.True(t, task.IsReporter(reporter))
	assert.False(t, task.IsReporter(primitive.NewObjectID()))
}

func TestTaskIsAssignee(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	task := &Task{Assignees: []primitive.ObjectID{a, b}}

	assert.True(t, task.IsAssignee(a))
	assert.True(t, task.IsAssignee(b))
	assert.False(t, task.IsAssignee(primitive.NewObjectID()))

	unassigned := &Task{}
	assert.False(t, unassigned.IsAssignee(a))
}

func TestPersonalTaskStatusValid(t *testing.T) {
	assert.True(t, PersonalTodo.Valid())
	assert.True(t, PersonalInProgress.Valid())
	assert.True(t, PersonalDone.Valid())
	assert.False(t, PersonalTaskStatus("Blocked").Valid())
}
