package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PersonalTaskStatus string

const (
	PersonalTodo       PersonalTaskStatus = "Todo"
	PersonalInProgress PersonalTaskStatus = "In Progress"
	PersonalDone       PersonalTaskStatus = "Done"
)

func (s PersonalTaskStatus) Valid() bool {
	switch s {
	case PersonalTodo, PersonalInProgress, PersonalDone:
		return true
	}
	return false
}

// PersonalTask is a private to-do item. It never references projects or
// sprints and is visible only to the user that owns it.
type PersonalTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Priority    TaskPriority       `bson:"priority" json:"priority"`
	Status      PersonalTaskStatus `bson:"status" json:"status"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Company     primitive.ObjectID `bson:"company" json:"company"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
