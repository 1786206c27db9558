package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Comment is an append-only embedded subdocument; individual comments are
// never edited or removed.
type Comment struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Task is the central work item. ParentTask links subtasks into a tree of
// arbitrary depth within the same project; Sprint is the single
// authoritative reference tying a task to a sprint.
type Task struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title            string              `bson:"title" json:"title"`
	Description      string              `bson:"description" json:"description"`
	Project          primitive.ObjectID  `bson:"project" json:"project"`
	ParentTask       *primitive.ObjectID `bson:"parentTask,omitempty" json:"parentTask,omitempty"`
	Sprint           *primitive.ObjectID `bson:"sprint,omitempty" json:"sprint,omitempty"`
	Assignees        []primitive.ObjectID `bson:"assignee" json:"assignee"`
	Reporter         primitive.ObjectID  `bson:"reporter" json:"reporter"`
	Priority         TaskPriority        `bson:"priority" json:"priority"`
	Status           string              `bson:"status" json:"status"`
	PlannedDateStart *time.Time          `bson:"plannedDateStart,omitempty" json:"plannedDateStart,omitempty"`
	PlannedDateEnd   *time.Time          `bson:"plannedDateEnd,omitempty" json:"plannedDateEnd,omitempty"`
	Attachments      []Attachment        `bson:"attachments" json:"attachments"`
	Comments         []Comment           `bson:"comments" json:"comments"`
	Company          primitive.ObjectID  `bson:"company" json:"company"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
}

func (t *Task) IsReporter(userID primitive.ObjectID) bool {
	return t.Reporter == userID
}

func (t *Task) IsAssignee(userID primitive.ObjectID) bool {
	for _, id := range t.Assignees {
		if id == userID {
			return true
		}
	}
	return false
}
