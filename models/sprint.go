package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SprintStatus string

const (
	SprintCreated   SprintStatus = "Created"
	SprintStarted   SprintStatus = "Started"
	SprintCompleted SprintStatus = "Completed"
)

// CanTransitionTo reports whether the sprint status machine permits moving
// from s to next. The machine is strictly forward: Created → Started →
// Completed, no skipping, no reopening.
func (s SprintStatus) CanTransitionTo(next SprintStatus) bool {
	switch {
	case s == SprintCreated && next == SprintStarted:
		return true
	case s == SprintStarted && next == SprintCompleted:
		return true
	}
	return false
}

func (s SprintStatus) Valid() bool {
	switch s {
	case SprintCreated, SprintStarted, SprintCompleted:
		return true
	}
	return false
}

// Sprint membership is owned by Task.Sprint; Issues is filled in from a
// query when a sprint is read and never persisted.
type Sprint struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Goal      string             `bson:"goal" json:"goal"`
	Duration  int                `bson:"duration" json:"duration"` // weeks
	Project   primitive.ObjectID `bson:"project" json:"project"`
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	EndDate   time.Time          `bson:"endDate" json:"endDate"`
	Status    SprintStatus       `bson:"status" json:"status"`
	Company   primitive.ObjectID `bson:"company" json:"company"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Issues    []Task             `bson:"-" json:"issues"`
}
